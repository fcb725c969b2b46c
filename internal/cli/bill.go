package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/careledger/ledger"
	"github.com/careledger/ledger/bill"
	"github.com/careledger/ledger/export"
	"github.com/careledger/ledger/patient"
	"github.com/careledger/ledger/payment"
	"github.com/careledger/ledger/types"
)

func newBillCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bill",
		Short: "Create and manage patient bills",
	}
	cmd.AddCommand(newBillCreateCmd(opts))
	cmd.AddCommand(newBillAddItemCmd(opts))
	cmd.AddCommand(newBillPayCmd(opts))
	cmd.AddCommand(newBillShowCmd(opts))
	cmd.AddCommand(newBillListCmd(opts))
	cmd.AddCommand(newBillExportCmd(opts))
	return cmd
}

func newBillCreateCmd(opts *rootOptions) *cobra.Command {
	var due string

	cmd := &cobra.Command{
		Use:   "create <patient-id> <description>",
		Short: "Open a new bill for a patient",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dueDate, err := time.Parse("2006-01-02", due)
			if err != nil {
				return fmt.Errorf("parsing --due: %w", err)
			}

			l, _, stop, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer stop()

			b, err := l.CreateBill(cmd.Context(), args[0], args[1], dueDate)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created bill %s for %s, due %s\n",
				b.ID, b.PatientID, dueDate.Format("2006-01-02"))
			return nil
		},
	}
	cmd.Flags().StringVar(&due, "due", "", "due date, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func newBillAddItemCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add-item <bill-id> <description> <amount>",
		Short: "Add a charge to a bill",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := types.ParseAmount(args[2])
			if err != nil {
				return fmt.Errorf("parsing amount: %w", err)
			}

			l, _, stop, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer stop()

			b, err := l.AddItemToBill(cmd.Context(), args[0], args[1], amount)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) to %s, total now %s\n",
				args[1], amount, b.ID, b.Total())
			return nil
		},
	}
}

func newBillPayCmd(opts *rootOptions) *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "pay <bill-id> <amount>",
		Short: "Record a payment against a bill",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := types.ParseAmount(args[1])
			if err != nil {
				return fmt.Errorf("parsing amount: %w", err)
			}

			l, _, stop, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer stop()

			p, err := l.ProcessPayment(cmd.Context(), args[0], amount, method)
			if err != nil {
				return err
			}
			b, err := l.GetBill(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Recorded payment %s of %s against %s, now %s\n",
				p.ID, p.Amount, b.ID, statusCell(b.Status, 0))
			return nil
		},
	}
	cmd.Flags().StringVar(&method, "method", "cash", "payment method")
	return cmd
}

func newBillShowCmd(opts *rootOptions) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <bill-id>",
		Short: "Show one bill with its charges and payments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, patients, stop, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer stop()

			st, err := buildStatement(cmd, l, patients, args[0])
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, struct {
					Bill     *bill.Bill         `json:"bill"`
					Payments []*payment.Payment `json:"payments"`
				}{st.Bill, st.Payments})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderStatement(st))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

func newBillListCmd(opts *rootOptions) *cobra.Command {
	var (
		patientID string
		paid      bool
		unpaid    bool
		overdue   bool
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, _, stop, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer stop()

			ctx := cmd.Context()
			var bills []*bill.Bill
			switch {
			case patientID != "":
				bills, err = l.ListBillsByPatient(ctx, patientID)
			case paid:
				bills, err = l.ListBillsByPaid(ctx, true)
			case unpaid:
				bills, err = l.ListBillsByPaid(ctx, false)
			case overdue:
				bills, err = l.ListOverdueBills(ctx)
			default:
				bills, err = l.ListBills(ctx)
			}
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, bills)
			}
			if len(bills) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No bills.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), renderBillTable(bills, func(billID string) string {
				if due, ok := l.DueDate(billID); ok {
					return due.Format("2006-01-02")
				}
				return ""
			}))
			return nil
		},
	}
	cmd.Flags().StringVar(&patientID, "patient", "", "only bills for this patient")
	cmd.Flags().BoolVar(&paid, "paid", false, "only fully paid bills")
	cmd.Flags().BoolVar(&unpaid, "unpaid", false, "only unpaid bills (partially paid bills match neither filter)")
	cmd.Flags().BoolVar(&overdue, "overdue", false, "only overdue bills")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	cmd.MarkFlagsMutuallyExclusive("patient", "paid", "unpaid", "overdue")
	return cmd
}

func newBillExportCmd(opts *rootOptions) *cobra.Command {
	var (
		format  string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "export <bill-id>",
		Short: "Export a bill as a printable statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, ok := export.ByFormat(format)
			if !ok {
				return fmt.Errorf("unknown format %q (want pdf or text)", format)
			}

			l, patients, stop, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer stop()

			st, err := buildStatement(cmd, l, patients, args[0])
			if err != nil {
				return err
			}

			if outPath == "" && f.Format() == "pdf" {
				outPath = args[0] + ".pdf"
			}
			if outPath == "" {
				return f.Render(cmd.OutOrStdout(), st)
			}

			file, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", outPath, err)
			}
			if err := f.Render(file, st); err != nil {
				_ = file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s statement to %s\n", f.Format(), outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "statement format: text or pdf")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout for text, <bill-id>.pdf for pdf)")
	return cmd
}

// buildStatement assembles the full view of one bill. A missing patient
// record degrades to the raw patient id rather than failing the command.
func buildStatement(cmd *cobra.Command, l *ledger.Ledger, patients *patient.FileDirectory, billID string) (*export.Statement, error) {
	ctx := cmd.Context()

	b, err := l.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	pays, err := l.ListPayments(ctx, billID)
	if err != nil {
		return nil, err
	}

	st := &export.Statement{Bill: b, Payments: pays}
	if p, err := patients.FindByID(ctx, b.PatientID); err == nil {
		st.Patient = p
	}
	if due, ok := l.DueDate(billID); ok {
		st.DueDate = due
	}
	return st, nil
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
