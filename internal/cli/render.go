package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/careledger/ledger/bill"
	"github.com/careledger/ledger/export"
	"github.com/careledger/ledger/patient"
)

// ── Status palette ──
var (
	success = lipgloss.Color("#22C55E") // green
	warning = lipgloss.Color("#F59E0B") // amber
	danger  = lipgloss.Color("#EF4444") // red
	dim     = lipgloss.Color("#6B7280") // muted gray
)

var (
	paidStyle     = lipgloss.NewStyle().Foreground(success)
	partialStyle  = lipgloss.NewStyle().Foreground(warning)
	unpaidStyle   = lipgloss.NewStyle().Foreground(danger)
	refundedStyle = lipgloss.NewStyle().Foreground(dim)
	headerStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(dim)
)

// statusCell pads first and styles second, so ANSI codes never upset the
// column widths.
func statusCell(s bill.Status, width int) string {
	padded := fmt.Sprintf("%-*s", width, string(s))
	switch s {
	case bill.StatusPaid:
		return paidStyle.Render(padded)
	case bill.StatusPartial:
		return partialStyle.Render(padded)
	case bill.StatusUnpaid:
		return unpaidStyle.Render(padded)
	default:
		return refundedStyle.Render(padded)
	}
}

// renderBillTable lays out bills in fixed columns. dueOf returns the
// formatted due date for a bill, or "" when none is tracked.
func renderBillTable(bills []*bill.Bill, dueOf func(string) string) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-6s %-8s %-9s %10s %10s  %-10s %-10s",
		"ID", "PATIENT", "STATUS", "TOTAL", "PAID", "ISSUED", "DUE")))
	b.WriteString("\n")
	for _, bl := range bills {
		due := dueOf(bl.ID)
		if due == "" {
			due = "-"
		}
		b.WriteString(fmt.Sprintf("%-6s %-8s %s %10s %10s  %-10s %-10s\n",
			bl.ID,
			bl.PatientID,
			statusCell(bl.Status, 9),
			bl.Total(),
			bl.AmountPaid,
			bl.IssueDate.Format("2006-01-02"),
			due,
		))
	}
	return b.String()
}

// renderStatement is the interactive bill view: the same shape as the
// text export, with status coloring.
func renderStatement(st *export.Statement) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Bill "+st.Bill.ID) + "  " + statusCell(st.Bill.Status, 0) + "\n")
	if st.Patient != nil {
		b.WriteString(fmt.Sprintf("Patient:  %s (%s)\n", st.Patient.Name, st.Patient.ID))
	} else {
		b.WriteString(fmt.Sprintf("Patient:  %s\n", st.Bill.PatientID))
	}
	b.WriteString(fmt.Sprintf("Issued:   %s\n", st.Bill.IssueDate.Format("2006-01-02")))
	if !st.DueDate.IsZero() {
		b.WriteString(fmt.Sprintf("Due:      %s\n", st.DueDate.Format("2006-01-02")))
	}
	if st.Bill.DatePaid != nil {
		b.WriteString(fmt.Sprintf("Paid on:  %s\n", st.Bill.DatePaid.Format("2006-01-02")))
	}

	b.WriteString("\n" + headerStyle.Render("CHARGES") + "\n")
	for _, item := range st.Bill.Items() {
		b.WriteString(fmt.Sprintf("  %-42s %12s\n", item.Description, item.Amount))
	}
	b.WriteString(fmt.Sprintf("  %-42s %12s\n", "Total", st.Bill.Total()))

	if len(st.Payments) > 0 {
		b.WriteString("\n" + headerStyle.Render("PAYMENTS") + "\n")
		for _, p := range st.Payments {
			b.WriteString(fmt.Sprintf("  %-21s %-12s %12s  %s\n",
				p.PaidAt.Format("2006-01-02 15:04:05"), p.Method, p.Amount, dimStyle.Render(p.ID)))
		}
	}

	b.WriteString(fmt.Sprintf("\nAmount paid: %s\n", st.Bill.AmountPaid))
	b.WriteString(fmt.Sprintf("Amount due:  %s\n", st.AmountDue()))
	return b.String()
}

func renderPatientTable(patients []*patient.Patient) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-6s %s", "ID", "NAME")))
	b.WriteString("\n")
	for _, p := range patients {
		b.WriteString(fmt.Sprintf("%-6s %s\n", p.ID, p.Name))
	}
	return b.String()
}
