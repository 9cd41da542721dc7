package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/auditguard/auditguard/internal/audit"
	"github.com/auditguard/auditguard/internal/domain"
)

var (
	cutoff   = time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	memoDate = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
)

func sampleEntries() []domain.LedgerEntry {
	return []domain.LedgerEntry{
		{
			Line: 2, CustomerID: "C1", CustomerName: "Acme", InvoiceNo: "INV1", InvoiceDate: "2023-08-01",
			BilledAmount: decimal.NewFromInt(15_000_000), AmountReceived: decimal.Zero,
			ConfirmationStatus: domain.StatusNoReply, DaysOverdue: 152, Risk: domain.RiskHigh,
			Flags: []domain.RiskFlag{domain.FlagAgedOver90, domain.FlagUnconfirmedBalance},
		},
		{
			Line: 3, CustomerID: "C2", CustomerName: "Beta", InvoiceNo: "INV2", InvoiceDate: "2023-12-20",
			BilledAmount: decimal.NewFromInt(5_000_000), AmountReceived: decimal.Zero,
			ConfirmationStatus: "Confirmed", DaysOverdue: 11, Risk: domain.RiskLow,
		},
	}
}

func TestRenderMemorandum_Text(t *testing.T) {
	entries := sampleEntries()
	memo := NewMemo(audit.CalculateSummary(entries), entries, cutoff, memoDate)

	var buf bytes.Buffer
	require.NoError(t, RenderMemorandum(&buf, memo, FormatText))
	out := buf.String()

	assert.Contains(t, out, "INTERNAL AUDIT MEMORANDUM")
	assert.Contains(t, out, "Ref: AR-2023-FINAL")
	assert.Contains(t, out, "Date: 15 January 2024")
	assert.Contains(t, out, "as of 31 December 2023")
	assert.Contains(t, out, "20.000.000")
	assert.Contains(t, out, "7.500.000")
	assert.Contains(t, out, "75")
	assert.Contains(t, out, "1 customers are identified as High Risk")
	assert.Contains(t, out, "Most significant: Acme.")
	assert.Contains(t, out, `1 outstanding balances returned "No Reply"`)
	assert.NotContains(t, out, "Data Quality")
}

func TestRenderMemorandum_ZeroExposure(t *testing.T) {
	memo := NewMemo(audit.CalculateSummary(nil), nil, cutoff, memoDate)

	var buf bytes.Buffer
	require.NoError(t, RenderMemorandum(&buf, memo, FormatText))
	assert.True(t, memo.Over90Share.IsZero())
	assert.NotContains(t, buf.String(), "NaN")
	assert.NotContains(t, buf.String(), "Most significant")
}

func TestRenderMemorandum_HTMLEscapes(t *testing.T) {
	entries := sampleEntries()
	entries[0].CustomerName = "<script>Acme</script>"
	memo := NewMemo(audit.CalculateSummary(entries), entries, cutoff, memoDate)

	var buf bytes.Buffer
	require.NoError(t, RenderMemorandum(&buf, memo, FormatHTML))
	out := buf.String()
	assert.Contains(t, out, "<h1>INTERNAL AUDIT MEMORANDUM</h1>")
	assert.NotContains(t, out, "<script>Acme")
	assert.Contains(t, out, "&lt;script&gt;Acme")
}

func TestRenderMemorandum_UnknownFormat(t *testing.T) {
	err := RenderMemorandum(&bytes.Buffer{}, MemoData{}, Format("pdf"))
	assert.Error(t, err)
}

func TestWriteFindingsCSV(t *testing.T) {
	findings := audit.DetectFindings(sampleEntries(), memoDate)

	var buf bytes.Buffer
	require.NoError(t, WriteFindingsCSV(&buf, findings))
	require.True(t, bytes.HasPrefix(buf.Bytes(), BOM))

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, findingColumns, records[0])
	assert.Equal(t, "FND-AG-INV1-2", records[1][0])
	assert.Equal(t, "15000000.00", records[1][8])
}

func TestWriteWorkbook(t *testing.T) {
	entries := sampleEntries()
	summary := audit.CalculateSummary(entries)
	data := WorkbookData{
		Upload:   domain.LedgerUpload{Filename: "ledger.csv", CutoffDate: cutoff},
		Summary:  summary,
		Findings: audit.DetectFindings(entries, memoDate),
		Entries:  entries,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, data))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{sheetSummary, sheetAging, sheetFindings, sheetLedger}, f.GetSheetList())

	aging, err := f.GetRows(sheetAging)
	require.NoError(t, err)
	require.Len(t, aging, 7)
	assert.Equal(t, "> 120 days", aging[5][0])
	assert.Equal(t, "Total", aging[6][0])

	ledger, err := f.GetRows(sheetLedger)
	require.NoError(t, err)
	require.Len(t, ledger, 3)
	assert.Equal(t, "Acme", ledger[1][2])
	assert.True(t, strings.Contains(ledger[1][11], "AGED_OVER_90"))

	findings, err := f.GetRows(sheetFindings)
	require.NoError(t, err)
	assert.Len(t, findings, 3)
}
