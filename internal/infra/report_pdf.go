package infra

// report_pdf.go — PDF rendering of the monthly retention report using
// go-pdf/fpdf. A4 portrait: header, per-type table, per-tenant table,
// integrity status line.

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"

	"farmasys/internal/retention"
)

// RenderMonthlyReportPDF renders the report and returns the PDF bytes.
func RenderMonthlyReportPDF(report *retention.MonthlyReport) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "FarmaSys - Relatorio de Retencao", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Periodo: %02d/%d", report.Month, report.Year), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Per-type counts
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Arquivamentos por tipo", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(90, 7, "Tipo", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 7, "Registros", "1", 1, "R", true, 0, "")
	for _, t := range sortedTypes(report.PerType) {
		pdf.CellFormat(90, 7, string(t), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%d", report.PerType[t]), "1", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(90, 7, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, fmt.Sprintf("%d", report.TotalArchived), "1", 1, "R", false, 0, "")
	pdf.Ln(6)

	// Per-tenant breakdown
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Detalhamento por farmacia", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(80, 7, "Tenant", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 7, "Registros", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 7, "Valor (R$)", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 7, "Controlados", "1", 1, "R", true, 0, "")
	for _, t := range report.Tenants {
		pdf.CellFormat(80, 7, t.TenantID.String()[:8], "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", t.ArchivedCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, t.TotalValue.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, fmt.Sprintf("%d", t.ControlledCount), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Integridade no periodo: "+report.Integrity, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "I", 8)
	pdf.Ln(4)
	pdf.CellFormat(0, 5, "Gerado em "+time.Now().Format("02/01/2006 15:04"), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func sortedTypes(perType map[retention.EntityType]int64) []retention.EntityType {
	types := make([]retention.EntityType, 0, len(perType))
	for t := range perType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
