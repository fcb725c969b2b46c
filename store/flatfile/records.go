package flatfile

import (
	"errors"
	"fmt"
	"time"

	"github.com/careledger/ledger/bill"
	"github.com/careledger/ledger/codec"
	"github.com/careledger/ledger/payment"
	"github.com/careledger/ledger/types"
)

// Wire layouts. Bills carry bare dates; payments carry a full timestamp.
const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
	nullLiteral    = "NULL"
)

const (
	billFieldCount    = 8
	paymentFieldCount = 6
)

// encodeBillRecord renders one bills.txt line:
// id,patientId,issueDate,datePaid,status,totalAmount,amountPaid,items
func encodeBillRecord(b *bill.Bill) string {
	datePaid := nullLiteral
	if b.DatePaid != nil {
		datePaid = b.DatePaid.Format(dateLayout)
	}

	domItems := b.Items()
	items := make([]codec.Item, len(domItems))
	for i, it := range domItems {
		items[i] = codec.Item{Description: it.Description, Amount: it.Amount.String()}
	}

	return codec.EncodeRecord([]string{
		b.ID,
		b.PatientID,
		b.IssueDate.Format(dateLayout),
		datePaid,
		string(b.Status),
		b.Total().String(),
		b.AmountPaid.String(),
		codec.EncodeItems(items),
	})
}

func decodeBillRecord(line string) (*bill.Bill, error) {
	fields := codec.DecodeRecord(line)
	if len(fields) != billFieldCount {
		return nil, fmt.Errorf("got %d fields, want %d", len(fields), billFieldCount)
	}
	if fields[0] == "" {
		return nil, errors.New("empty bill id")
	}

	issueDate, err := time.Parse(dateLayout, fields[2])
	if err != nil {
		return nil, fmt.Errorf("issue date: %w", err)
	}

	var datePaid *time.Time
	if fields[3] != nullLiteral {
		dp, err := time.Parse(dateLayout, fields[3])
		if err != nil {
			return nil, fmt.Errorf("date paid: %w", err)
		}
		datePaid = &dp
	}

	status, err := bill.ParseStatus(fields[4])
	if err != nil {
		return nil, err
	}

	// The total column must parse, but the restored bill derives its total
	// from the items so the two can never drift apart.
	if _, err := types.ParseAmount(fields[5]); err != nil {
		return nil, fmt.Errorf("total amount: %w", err)
	}
	amountPaid, err := types.ParseAmount(fields[6])
	if err != nil {
		return nil, fmt.Errorf("amount paid: %w", err)
	}

	rawItems, err := codec.DecodeItems(fields[7])
	if err != nil {
		return nil, fmt.Errorf("items: %w", err)
	}
	items := make([]bill.Item, len(rawItems))
	for i, it := range rawItems {
		amount, err := types.ParseAmount(it.Amount)
		if err != nil {
			return nil, fmt.Errorf("item %d amount: %w", i+1, err)
		}
		items[i] = bill.Item{Description: it.Description, Amount: amount}
	}

	return bill.Restore(fields[0], fields[1], issueDate, datePaid, status, amountPaid, items), nil
}

// encodePaymentRecord renders one payments.txt line:
// id,billId,amount,paymentDateTime,paymentMethod,status
func encodePaymentRecord(p *payment.Payment) string {
	return codec.EncodeRecord([]string{
		p.ID,
		p.BillID,
		p.Amount.String(),
		p.PaidAt.Format(dateTimeLayout),
		p.Method,
		string(p.Status),
	})
}

func decodePaymentRecord(line string) (*payment.Payment, error) {
	fields := codec.DecodeRecord(line)
	if len(fields) != paymentFieldCount {
		return nil, fmt.Errorf("got %d fields, want %d", len(fields), paymentFieldCount)
	}
	if fields[0] == "" {
		return nil, errors.New("empty payment id")
	}
	if fields[1] == "" {
		return nil, errors.New("empty bill id")
	}

	amount, err := types.ParseAmount(fields[2])
	if err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	paidAt, err := time.Parse(dateTimeLayout, fields[3])
	if err != nil {
		return nil, fmt.Errorf("payment time: %w", err)
	}
	status, err := payment.ParseStatus(fields[5])
	if err != nil {
		return nil, err
	}

	return &payment.Payment{
		ID:     fields[0],
		BillID: fields[1],
		Amount: amount,
		PaidAt: paidAt,
		Method: fields[4],
		Status: status,
	}, nil
}
