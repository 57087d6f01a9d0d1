package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/elvenwooddev-web/designquote/internal/clients"
	"github.com/elvenwooddev-web/designquote/internal/quotes"
	"github.com/elvenwooddev-web/designquote/internal/quotes/pricing"
	"github.com/elvenwooddev-web/designquote/internal/templates"
)

// Renderer produces quote PDFs with gofpdf, styled by a template.
type Renderer struct {
	printer *message.Printer
}

func NewRenderer() *Renderer {
	return &Renderer{printer: message.NewPrinter(language.English)}
}

func (g *Renderer) Render(_ context.Context, q *quotes.Quote, client clients.Client, tpl templates.Template) ([]byte, error) {
	doc := gofpdf.New("P", "mm", pageSize(tpl.PageSize), "")
	doc.SetTitle("Quotation "+q.QuoteNumber, false)
	ar, ag, ab := accentRGB(tpl.AccentColor)
	doc.AddPage()

	doc.SetTextColor(ar, ag, ab)
	doc.SetFont("Helvetica", "B", 18)
	title := "Quotation"
	if tpl.HeaderText != nil && *tpl.HeaderText != "" {
		title = *tpl.HeaderText
	}
	doc.Cell(0, 10, title)
	doc.Ln(10)

	doc.SetTextColor(0, 0, 0)
	doc.SetFont("Helvetica", "", 10)
	doc.Cell(0, 5, fmt.Sprintf("No. %s (rev %d), %s", q.QuoteNumber, q.Version, q.CreatedAt.Format("02 Jan 2006")))
	doc.Ln(5)
	doc.Cell(0, 5, "For: "+client.Name)
	doc.Ln(5)
	if client.Email != "" {
		doc.Cell(0, 5, client.Email)
		doc.Ln(5)
	}
	doc.Ln(4)

	doc.SetFillColor(ar, ag, ab)
	doc.SetTextColor(255, 255, 255)
	doc.SetFont("Helvetica", "B", 9)
	doc.CellFormat(72, 7, "Item", "", 0, "L", true, 0, "")
	doc.CellFormat(28, 7, "Category", "", 0, "L", true, 0, "")
	doc.CellFormat(20, 7, "Qty", "", 0, "R", true, 0, "")
	doc.CellFormat(12, 7, "Unit", "", 0, "L", true, 0, "")
	doc.CellFormat(24, 7, "Rate", "", 0, "R", true, 0, "")
	doc.CellFormat(14, 7, "Disc %", "", 0, "R", true, 0, "")
	doc.CellFormat(24, 7, "Total", "", 1, "R", true, 0, "")

	doc.SetTextColor(0, 0, 0)
	doc.SetFont("Helvetica", "", 9)
	for _, line := range q.Lines {
		doc.CellFormat(72, 6, trim(line.Name, 44), "B", 0, "L", false, 0, "")
		doc.CellFormat(28, 6, trim(line.CategoryName, 16), "B", 0, "L", false, 0, "")
		doc.CellFormat(20, 6, g.printer.Sprintf("%.2f", line.Quantity), "B", 0, "R", false, 0, "")
		doc.CellFormat(12, 6, line.UnitCode, "B", 0, "L", false, 0, "")
		doc.CellFormat(24, 6, g.money(line.Rate), "B", 0, "R", false, 0, "")
		doc.CellFormat(14, 6, g.printer.Sprintf("%.1f", line.DiscountPercent), "B", 0, "R", false, 0, "")
		doc.CellFormat(24, 6, g.money(line.LineTotal), "B", 1, "R", false, 0, "")
	}
	doc.Ln(3)

	g.totalRow(doc, "Subtotal", q.Subtotal, false)
	if q.DiscountAmount > 0 {
		g.totalRow(doc, "Discount", -q.DiscountAmount, false)
		g.totalRow(doc, "Taxable amount", q.TaxableAmount, false)
	}
	g.totalRow(doc, fmt.Sprintf("Tax (%.1f%%)", q.TaxRatePercent), q.Tax, false)
	doc.SetTextColor(ar, ag, ab)
	g.totalRow(doc, "Grand total", q.GrandTotal, true)
	doc.SetTextColor(0, 0, 0)

	if tpl.ShowCategoryBreakdown && len(q.Lines) > 0 {
		g.categoryBreakdown(doc, q)
	}

	if q.Notes != nil && *q.Notes != "" {
		doc.Ln(6)
		doc.SetFont("Helvetica", "B", 9)
		doc.Cell(0, 5, "Notes")
		doc.Ln(5)
		doc.SetFont("Helvetica", "", 9)
		doc.MultiCell(0, 4.5, *q.Notes, "", "L", false)
	}

	if tpl.FooterText != nil && *tpl.FooterText != "" {
		doc.SetY(-20)
		doc.SetFont("Helvetica", "I", 8)
		doc.SetTextColor(120, 120, 120)
		doc.CellFormat(0, 5, *tpl.FooterText, "T", 0, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Renderer) totalRow(doc *gofpdf.Fpdf, label string, amount float64, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	doc.SetFont("Helvetica", style, 10)
	doc.CellFormat(146, 6, label, "", 0, "R", false, 0, "")
	doc.CellFormat(48, 6, g.money(amount), "", 1, "R", false, 0, "")
}

func (g *Renderer) categoryBreakdown(doc *gofpdf.Fpdf, q *quotes.Quote) {
	items := make([]pricing.LineItem, 0, len(q.Lines))
	for _, l := range q.Lines {
		items = append(items, pricing.LineItem{
			Quantity:        l.Quantity,
			Rate:            l.Rate,
			DiscountPercent: l.DiscountPercent,
			CategoryID:      l.CategoryID,
			CategoryName:    l.CategoryName,
		})
	}
	totals := pricing.ComputeTotals(items, q.DiscountMode, q.OverallDiscountPercent, q.TaxRatePercent)

	doc.Ln(6)
	doc.SetFont("Helvetica", "B", 9)
	doc.Cell(0, 5, "Breakdown by category")
	doc.Ln(6)
	doc.SetFont("Helvetica", "", 9)
	for _, c := range totals.CategoryContributions {
		doc.CellFormat(60, 5, c.CategoryName, "B", 0, "L", false, 0, "")
		doc.CellFormat(40, 5, g.money(c.Total), "B", 1, "R", false, 0, "")
	}
}

// money renders an amount with thousands separators, e.g. 1,234.50.
func (g *Renderer) money(v float64) string {
	return g.printer.Sprintf("%.2f", v)
}

func pageSize(size string) string {
	switch size {
	case "Letter", "Legal", "A4":
		return size
	default:
		return "A4"
	}
}

// accentRGB parses a #rrggbb color, falling back to near-black.
func accentRGB(hex string) (int, int, int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 31, 41, 55
	}
	r, err1 := strconv.ParseInt(hex[1:3], 16, 32)
	g, err2 := strconv.ParseInt(hex[3:5], 16, 32)
	b, err3 := strconv.ParseInt(hex[5:7], 16, 32)
	if err1 != nil || err2 != nil || err3 != nil {
		return 31, 41, 55
	}
	return int(r), int(g), int(b)
}

func trim(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "..."
}
