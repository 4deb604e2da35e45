package infra

// report_xlsx.go — XLSX export of the monthly retention report using
// excelize. One sheet per section: totals per type, per-tenant breakdown.

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"farmasys/internal/retention"
)

// RenderMonthlyReportXLSX renders the report and returns the workbook bytes.
func RenderMonthlyReportXLSX(report *retention.MonthlyReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Resumo"
	f.SetSheetName(f.GetSheetName(0), sheet)

	rows := [][]interface{}{
		{"Relatorio de Retencao FarmaSys"},
		{"Periodo", fmt.Sprintf("%02d/%d", report.Month, report.Year)},
		{"Integridade", report.Integrity},
		{},
		{"Tipo", "Registros arquivados"},
	}
	for _, t := range sortedTypes(report.PerType) {
		rows = append(rows, []interface{}{string(t), report.PerType[t]})
	}
	rows = append(rows,
		[]interface{}{"Total", report.TotalArchived},
		[]interface{}{"Valor total (R$)", report.TotalValue.StringFixed(2)},
	)
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("xlsx: %w", err)
		}
	}

	tenantSheet := "Farmacias"
	if _, err := f.NewSheet(tenantSheet); err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	header := []interface{}{"Tenant", "Registros", "Valor (R$)", "Itens controlados"}
	if err := f.SetSheetRow(tenantSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	for i, t := range report.Tenants {
		row := []interface{}{t.TenantID.String(), t.ArchivedCount, t.TotalValue.StringFixed(2), t.ControlledCount}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(tenantSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("xlsx: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
