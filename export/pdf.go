package export

import (
	"io"

	"github.com/jung-kurt/gofpdf"
)

// PDFFormatter renders a printable A4 statement.
type PDFFormatter struct{}

// Format returns "pdf".
func (f *PDFFormatter) Format() string { return "pdf" }

// Render writes the statement to w as a PDF document.
func (f *PDFFormatter) Render(w io.Writer, st *Statement) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Patient Statement")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 11)
	infoRow(pdf, "Bill", st.Bill.ID)
	infoRow(pdf, "Status", string(st.Bill.Status))
	if st.Patient != nil {
		infoRow(pdf, "Patient", st.Patient.Name+" ("+st.Patient.ID+")")
	} else {
		infoRow(pdf, "Patient", st.Bill.PatientID)
	}
	infoRow(pdf, "Issued", st.Bill.IssueDate.Format("2006-01-02"))
	if !st.DueDate.IsZero() {
		infoRow(pdf, "Due", st.DueDate.Format("2006-01-02"))
	}
	if st.Bill.DatePaid != nil {
		infoRow(pdf, "Paid on", st.Bill.DatePaid.Format("2006-01-02"))
	}
	pdf.Ln(6)

	// Charges table
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(140, 8, "Description", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, "Amount", "1", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	for _, item := range st.Bill.Items() {
		pdf.CellFormat(140, 8, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, item.Amount.String(), "1", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(140, 8, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, st.Bill.Total().String(), "1", 1, "R", false, 0, "")
	pdf.Ln(6)

	if len(st.Payments) > 0 {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(60, 8, "Payment Date", "1", 0, "L", false, 0, "")
		pdf.CellFormat(80, 8, "Method", "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, "Amount", "1", 1, "R", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		for _, p := range st.Payments {
			pdf.CellFormat(60, 8, p.PaidAt.Format("2006-01-02 15:04:05"), "1", 0, "L", false, 0, "")
			pdf.CellFormat(80, 8, p.Method, "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 8, p.Amount.String(), "1", 1, "R", false, 0, "")
		}
		pdf.Ln(6)
	}

	pdf.SetFont("Arial", "B", 12)
	infoRow(pdf, "Amount paid", st.Bill.AmountPaid.String())
	infoRow(pdf, "Amount due", st.AmountDue().String())

	return pdf.Output(w)
}

func infoRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.CellFormat(35, 7, label+":", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
}
