package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/auditguard/auditguard/internal/domain"
)

const (
	sheetSummary  = "Summary"
	sheetAging    = "Aging"
	sheetFindings = "Findings"
	sheetLedger   = "Ledger"
)

var bucketLabels = map[domain.AgingBucket]string{
	domain.BucketCurrent: "0-30 days",
	domain.BucketDays30:  "31-60 days",
	domain.BucketDays60:  "61-90 days",
	domain.BucketDays90:  "91-120 days",
	domain.BucketOver90:  "> 120 days",
}

// BucketLabel returns the display name of an aging bucket.
func BucketLabel(b domain.AgingBucket) string {
	return bucketLabels[b]
}

// WorkbookData is everything exported to the xlsx workbook.
type WorkbookData struct {
	Upload   domain.LedgerUpload
	Summary  domain.AuditSummary
	Findings []domain.Finding
	Entries  []domain.LedgerEntry
}

// WriteWorkbook writes an xlsx workbook with Summary, Aging, Findings and
// Ledger sheets.
func WriteWorkbook(w io.Writer, data WorkbookData) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{sheetAging, sheetFindings, sheetLedger} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := writeSummarySheet(f, data, header); err != nil {
		return err
	}
	if err := writeAgingSheet(f, data.Summary, header); err != nil {
		return err
	}

	findingRows := make([][]string, len(data.Findings))
	for i := range data.Findings {
		findingRows[i] = findingRow(&data.Findings[i])
	}
	if err := writeTable(f, sheetFindings, findingColumns, findingRows, header); err != nil {
		return err
	}

	ledgerRows := make([][]string, len(data.Entries))
	for i := range data.Entries {
		ledgerRows[i] = ledgerRow(&data.Entries[i])
	}
	if err := writeTable(f, sheetLedger, ledgerColumns, ledgerRows, header); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, data WorkbookData, header int) error {
	s := data.Summary
	rows := [][]any{
		{"Metric", "Value"},
		{"File", data.Upload.Filename},
		{"Cutoff Date", data.Upload.CutoffDate.Format("2006-01-02")},
		{"Entries", s.EntryCount},
		{"Total AR", s.TotalAR.InexactFloat64()},
		{"Total Collections", s.TotalCollections.InexactFloat64()},
		{"Net Exposure", s.NetExposure.InexactFloat64()},
		{"High Risk Entries", s.CountHighRisk},
		{"Bad Debt Provision (CKPN)", s.BadDebtProvision.InexactFloat64()},
		{"Entries With Unknown Age", s.CountUnknownAge},
		{"Generated At", time.Now().UTC().Format(time.RFC3339)},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheetSummary, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i, err)
		}
	}
	if err := f.SetColWidth(sheetSummary, "A", "A", 28); err != nil {
		return err
	}
	return f.SetCellStyle(sheetSummary, "A1", "B1", header)
}

func writeAgingSheet(f *excelize.File, s domain.AuditSummary, header int) error {
	if err := f.SetSheetRow(sheetAging, "A1", &[]any{"Bucket", "Net Exposure"}); err != nil {
		return err
	}
	for i, b := range domain.AllBuckets {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{BucketLabel(b), s.AgingBuckets.Get(b).InexactFloat64()}
		if err := f.SetSheetRow(sheetAging, cell, &row); err != nil {
			return fmt.Errorf("write aging row %s: %w", b, err)
		}
	}
	total := []any{"Total", s.AgingBuckets.Total().InexactFloat64()}
	cell, _ := excelize.CoordinatesToCellName(1, len(domain.AllBuckets)+2)
	if err := f.SetSheetRow(sheetAging, cell, &total); err != nil {
		return err
	}
	return f.SetCellStyle(sheetAging, "A1", "B1", header)
}

func writeTable(f *excelize.File, sheet string, columns []string, rows [][]string, header int) error {
	if err := f.SetSheetRow(sheet, "A1", &columns); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i, err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	return f.SetCellStyle(sheet, "A1", last, header)
}
