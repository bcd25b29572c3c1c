// Package report renders dashboards as printable documents.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/reciclamais/waste-service/internal/domain"
)

const maxRankingRows = 20

// DashboardPDF writes an A4 report of the dashboard to w.
func DashboardPDF(w io.Writer, title string, d *domain.Dashboard) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(14, 14, 14)
	pdf.SetTitle(tr(title), false)
	pdf.AddPage()

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(title))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, "Period: "+periodLabel(d.From, d.To))
	pdf.Ln(5)
	pdf.Cell(0, 6, "Generated: "+d.GeneratedAt.UTC().Format(time.RFC3339))
	pdf.Ln(10)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 11)

	sumW := []float64{62, 62, 62}
	pdf.CellFormat(sumW[0], 10, "Total (kg)", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[1], 10, "Recycled (kg)", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[2], 10, "Recycling rate", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(sumW[0], 10, formatKg(d.TotalWaste), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[1], 10, formatKg(d.WasteRecycled), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[2], 10, formatPct(d.RecyclingRate), "1", 1, "C", false, 0, "")
	pdf.Ln(6)

	section(pdf, "By type")
	typeW := []float64{70, 40, 36, 40}
	header(pdf, typeW, "TYPE", "WEIGHT (KG)", "QUANTITY", "SHARE")
	if len(d.TypeBreakdown) == 0 {
		emptyRow(pdf)
	}
	for _, b := range d.TypeBreakdown {
		pdf.CellFormat(typeW[0], 8, string(b.Type), "1", 0, "L", false, 0, "")
		pdf.CellFormat(typeW[1], 8, formatKg(b.Weight), "1", 0, "R", false, 0, "")
		pdf.CellFormat(typeW[2], 8, fmt.Sprintf("%d", b.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(typeW[3], 8, formatPct(b.Percentage), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	section(pdf, "Top recyclers")
	rankW := []float64{16, 120, 50}
	header(pdf, rankW, "#", "NAME", "RECYCLED (KG)")
	if len(d.UserRankings) == 0 {
		emptyRow(pdf)
	}
	for i, r := range d.UserRankings {
		if i >= maxRankingRows {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.CellFormat(0, 8, fmt.Sprintf("%d more not shown", len(d.UserRankings)-maxRankingRows), "1", 1, "C", false, 0, "")
			break
		}
		pdf.CellFormat(rankW[0], 8, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(rankW[1], 8, tr(trimTo(r.Name, 60)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(rankW[2], 8, formatKg(r.TotalRecycled), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	section(pdf, "Forecast")
	pdf.SetFont("Helvetica", "", 10)
	if d.Forecast.Month == "" {
		pdf.Cell(0, 6, "Not enough monthly history for a forecast.")
	} else {
		pdf.Cell(0, 6, fmt.Sprintf("%s: %s kg expected (R2 %.2f, %d months observed)",
			d.Forecast.Month, formatKg(d.Forecast.PredictedAmount), d.Forecast.Confidence, d.Forecast.MonthsObserved))
	}
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.Cell(0, 5, fmt.Sprintf("%d records", d.RecordCount))

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(20, 20, 20)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
}

func header(pdf *gofpdf.Fpdf, widths []float64, cols ...string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(245, 245, 245)
	for i, col := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 8, col, "1", ln, "C", true, 0, "")
	}
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(30, 30, 30)
}

func emptyRow(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 8, "No records", "1", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
}

func periodLabel(from, to *time.Time) string {
	switch {
	case from == nil && to == nil:
		return "all records"
	case from == nil:
		return "up to " + to.Format(time.DateOnly)
	case to == nil:
		return "from " + from.Format(time.DateOnly)
	default:
		return from.Format(time.DateOnly) + " to " + to.Format(time.DateOnly)
	}
}

func formatKg(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatPct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func trimTo(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "..."
}
