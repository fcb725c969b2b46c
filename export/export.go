// Package export renders patient statements for delivery outside the
// ledger: printable PDFs and plain text for terminals.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/careledger/ledger/bill"
	"github.com/careledger/ledger/patient"
	"github.com/careledger/ledger/payment"
	"github.com/careledger/ledger/types"
)

// Statement is a fully assembled view of one bill: the bill itself, the
// patient it belongs to, and every payment recorded against it.
type Statement struct {
	Bill     *bill.Bill
	Patient  *patient.Patient
	Payments []*payment.Payment

	// DueDate is zero for bills created in an earlier session; due dates
	// are not persisted.
	DueDate time.Time
}

// AmountDue is the remaining balance, floored at zero so an overpaid
// statement never asks for a negative amount.
func (s *Statement) AmountDue() types.Money {
	due := s.Bill.Total().Sub(s.Bill.AmountPaid)
	if due.IsNegative() {
		return types.Money{}
	}
	return due
}

// Formatter renders statements for export.
type Formatter interface {
	Format() string
	Render(w io.Writer, st *Statement) error
}

// ByFormat resolves a built-in formatter by its Format string.
func ByFormat(format string) (Formatter, bool) {
	switch format {
	case "pdf":
		return &PDFFormatter{}, true
	case "text", "txt":
		return &TextFormatter{}, true
	}
	return nil, false
}

// TextFormatter renders a fixed-width statement for terminals and plain
// text files.
type TextFormatter struct{}

// Format returns "text".
func (f *TextFormatter) Format() string { return "text" }

// Render writes the statement to w.
func (f *TextFormatter) Render(w io.Writer, st *Statement) error {
	var b strings.Builder

	fmt.Fprintf(&b, "PATIENT STATEMENT\n\n")
	fmt.Fprintf(&b, "Bill:     %s\n", st.Bill.ID)
	fmt.Fprintf(&b, "Status:   %s\n", st.Bill.Status)
	if st.Patient != nil {
		fmt.Fprintf(&b, "Patient:  %s (%s)\n", st.Patient.Name, st.Patient.ID)
	} else {
		fmt.Fprintf(&b, "Patient:  %s\n", st.Bill.PatientID)
	}
	fmt.Fprintf(&b, "Issued:   %s\n", st.Bill.IssueDate.Format("2006-01-02"))
	if !st.DueDate.IsZero() {
		fmt.Fprintf(&b, "Due:      %s\n", st.DueDate.Format("2006-01-02"))
	}
	if st.Bill.DatePaid != nil {
		fmt.Fprintf(&b, "Paid on:  %s\n", st.Bill.DatePaid.Format("2006-01-02"))
	}

	fmt.Fprintf(&b, "\nCHARGES\n")
	fmt.Fprintf(&b, "  %-42s %12s\n", "Description", "Amount")
	fmt.Fprintf(&b, "  %s\n", strings.Repeat("-", 55))
	for _, item := range st.Bill.Items() {
		fmt.Fprintf(&b, "  %-42s %12s\n", item.Description, item.Amount)
	}
	fmt.Fprintf(&b, "  %s\n", strings.Repeat("-", 55))
	fmt.Fprintf(&b, "  %-42s %12s\n", "Total", st.Bill.Total())

	if len(st.Payments) > 0 {
		fmt.Fprintf(&b, "\nPAYMENTS\n")
		fmt.Fprintf(&b, "  %-21s %-20s %12s\n", "Date", "Method", "Amount")
		fmt.Fprintf(&b, "  %s\n", strings.Repeat("-", 55))
		for _, p := range st.Payments {
			fmt.Fprintf(&b, "  %-21s %-20s %12s\n", p.PaidAt.Format("2006-01-02 15:04:05"), p.Method, p.Amount)
		}
	}

	fmt.Fprintf(&b, "\nAmount paid: %s\n", st.Bill.AmountPaid)
	fmt.Fprintf(&b, "Amount due:  %s\n", st.AmountDue())

	_, err := io.WriteString(w, b.String())
	return err
}
