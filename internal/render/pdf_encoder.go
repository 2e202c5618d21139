package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/hoa-manager/hoa-backend/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	pdfFont       = "Helvetica"
	pdfLineHeight = 7.0
	pdfBodyWidth  = 180.0
)

// PDFEncoder lays reports out as A4 tables
type PDFEncoder struct{}

func (e *PDFEncoder) Format() domain.ReportFormat { return domain.ReportFormatPDF }

func (e *PDFEncoder) ContentType() string { return "application/pdf" }

func (e *PDFEncoder) Encode(w io.Writer, doc *Document) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	p := &pdfWriter{pdf: pdf, tr: tr}

	pdf.SetTitle(doc.Title, true)
	pdf.SetAuthor(doc.Organization, true)
	pdf.SetCreator("hoa-backend", true)
	pdf.SetCreationDate(doc.GeneratedAt)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(pdfFont, "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	p.header(doc)

	s := doc.Summary
	if doc.Placeholder() {
		p.paragraph(insufficientDataMessage(s))
		p.degradedNote(s)
		return finish(pdf, w)
	}

	p.section("Financial Summary")
	rows := [][]string{{"Total revenue", money(s.TotalRevenue)}}
	if s.Kind == domain.ReportKindAnnualComparative {
		rows = append(rows, []string{"Total expenses", money(s.TotalExpense)})
	} else {
		rows = append(rows,
			[]string{"Invoices", money(s.TotalInvoices)},
			[]string{"Recurring bills", money(s.TotalRecurringBills)},
			[]string{"Total expenses", money(s.TotalExpense)},
		)
	}
	rows = append(rows, []string{"Balance", money(s.Balance)})
	p.table([]string{"Item", "Amount"}, []float64{120, 60}, []string{"L", "R"}, rows)

	p.section("Expenses by Category")
	categoryRows := make([][]string, 0, len(s.Categories))
	for _, c := range s.Categories {
		categoryRows = append(categoryRows, []string{c.Name, money(c.Amount), c.Percentage.StringFixed(2) + "%"})
	}
	p.table([]string{"Category", "Amount", "%"}, []float64{100, 50, 30}, []string{"L", "R", "R"}, categoryRows)

	switch {
	case s.Kind == domain.ReportKindAnnualComparative:
		p.section("Annual Evolution")
		yearRows := make([][]string, 0, len(s.Years))
		for _, y := range s.Years {
			yearRows = append(yearRows, []string{strconv.Itoa(y.Year), money(y.Revenue), money(y.Expense), money(y.Balance)})
		}
		p.table([]string{"Year", "Revenue", "Expenses", "Balance"}, []float64{30, 50, 50, 50}, []string{"C", "R", "R", "R"}, yearRows)
	case s.Kind.IsTransparency():
		p.section("Operational Information")
		p.table([]string{"Indicator", "Value"}, []float64{120, 60}, []string{"L", "R"}, [][]string{
			{"Maintenance requests", strconv.Itoa(s.MaintenanceCount)},
			{"Active staff", strconv.Itoa(s.ActiveAssociateCount)},
			{"Monthly payroll", money(s.Payroll)},
		})
	default:
		p.section("Operational Information")
		p.table([]string{"Indicator", "Value"}, []float64{120, 60}, []string{"L", "R"}, [][]string{
			{"Residents", strconv.FormatInt(s.ResidentCount, 10)},
			{"Vendors", strconv.FormatInt(s.VendorCount, 10)},
			{"Payments received", strconv.Itoa(s.PaymentCount)},
			{"Invoices recorded", strconv.Itoa(s.InvoiceCount)},
			{"Active recurring bills", strconv.Itoa(s.RecurringBillCount)},
			{"Cost per unit", money(s.CostPerUnit)},
		})
	}

	p.degradedNote(s)
	return finish(pdf, w)
}

func finish(pdf *fpdf.Fpdf, w io.Writer) error {
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

type pdfWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (p *pdfWriter) header(doc *Document) {
	p.pdf.SetTextColor(0, 0, 0)
	p.pdf.SetFont(pdfFont, "B", 16)
	p.pdf.CellFormat(pdfBodyWidth, 9, p.tr(doc.Organization), "", 1, "C", false, 0, "")
	p.pdf.SetFont(pdfFont, "B", 13)
	p.pdf.CellFormat(pdfBodyWidth, 8, p.tr(doc.Title), "", 1, "C", false, 0, "")
	p.pdf.SetFont(pdfFont, "", 10)
	p.pdf.CellFormat(pdfBodyWidth, 6, p.tr("Period: "+doc.Summary.PeriodLabel), "", 1, "C", false, 0, "")
	p.pdf.CellFormat(pdfBodyWidth, 6, "Generated: "+doc.GeneratedAt.Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	p.pdf.Ln(6)
}

func (p *pdfWriter) section(title string) {
	p.pdf.Ln(3)
	p.pdf.SetFont(pdfFont, "B", 12)
	p.pdf.SetTextColor(30, 60, 110)
	p.pdf.CellFormat(pdfBodyWidth, 8, p.tr(title), "", 1, "L", false, 0, "")
	p.pdf.SetTextColor(0, 0, 0)
}

func (p *pdfWriter) paragraph(text string) {
	p.pdf.SetFont(pdfFont, "", 11)
	p.pdf.MultiCell(pdfBodyWidth, 6, p.tr(text), "", "L", false)
	p.pdf.Ln(2)
}

func (p *pdfWriter) table(headers []string, widths []float64, aligns []string, rows [][]string) {
	p.pdf.SetFont(pdfFont, "B", 10)
	p.pdf.SetFillColor(220, 228, 240)
	for i, h := range headers {
		p.pdf.CellFormat(widths[i], pdfLineHeight, p.tr(h), "1", 0, "C", true, 0, "")
	}
	p.pdf.Ln(-1)

	p.pdf.SetFont(pdfFont, "", 10)
	p.pdf.SetFillColor(245, 247, 250)
	for r, row := range rows {
		fill := r%2 == 1
		for i, cell := range row {
			p.pdf.CellFormat(widths[i], pdfLineHeight, p.tr(cell), "1", 0, aligns[i], fill, 0, "")
		}
		p.pdf.Ln(-1)
	}
}

func (p *pdfWriter) degradedNote(s *domain.Summary) {
	if len(s.DegradedSources) == 0 {
		return
	}
	p.pdf.Ln(4)
	p.pdf.SetFont(pdfFont, "I", 9)
	p.pdf.SetTextColor(150, 60, 60)
	p.pdf.MultiCell(pdfBodyWidth, 5, p.tr("Unavailable data sources: "+strings.Join(s.DegradedSources, ", ")), "", "L", false)
	p.pdf.SetTextColor(0, 0, 0)
}

// money formats an amount with two decimals and thousands separators
func money(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	out := b.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}
