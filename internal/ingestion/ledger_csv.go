package ingestion

import (
	"strings"
	"time"

	"github.com/auditguard/auditguard/internal/currency"
	"github.com/auditguard/auditguard/internal/domain"
)

// Column positions of the fixed ledger schema. The header row is only checked
// for the presence of RequiredColumns; data is always read by position.
const (
	colCustomerID = iota
	colCustomerName
	colInvoiceNo
	colInvoiceDate
	colDueDate
	colBilledAmount
	colAmountReceived
	colPaymentDate
	colConfirmationStatus
)

// LedgerColumns is the positional schema of a ledger file.
var LedgerColumns = []string{
	"Customer_ID",
	"Nama_Pelanggan",
	"No_Invoice",
	"Tanggal_Invoice",
	"Tanggal_Jatuh_Tempo",
	"Jumlah_Tagihan",
	"Pembayaran_Diterima",
	"Tanggal_Bayar",
	"Status_Konfirmasi",
}

// RequiredColumns must each appear, case-sensitively, inside some header cell.
var RequiredColumns = []string{"Customer_ID", "Nama_Pelanggan", "Jumlah_Tagihan", "Tanggal_Invoice"}

// DefaultCutoff is the period-end the ledgers are aged against unless
// configured otherwise.
var DefaultCutoff = time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)

// ParseLedgerCSV parses an Accounts-Receivable ledger.
//
// Expected header:
//
//	Customer_ID,Nama_Pelanggan,No_Invoice,Tanggal_Invoice,Tanggal_Jatuh_Tempo,Jumlah_Tagihan,Pembayaran_Diterima,Tanggal_Bayar,Status_Konfirmasi
//
// Fields are split on bare commas; quoted fields are not supported. Blank lines
// are skipped. Unparsable amounts read as zero and never fail the parse; only a
// missing or incomplete header does.
func ParseLedgerCSV(data []byte, cutoff time.Time) ([]domain.LedgerEntry, error) {
	lines := strings.Split(string(data), "\n")

	headerIdx := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, domain.ErrEmptyLedger
	}
	if err := checkHeader(lines[headerIdx]); err != nil {
		return nil, err
	}

	entries := make([]domain.LedgerEntry, 0, len(lines)-headerIdx-1)
	for i := headerIdx + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		entries = append(entries, parseRow(strings.Split(lines[i], ","), i+1, cutoff))
	}

	return entries, nil
}

func checkHeader(line string) error {
	cells := strings.Split(line, ",")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}

	var missing []string
	for _, req := range RequiredColumns {
		found := false
		for _, c := range cells {
			if strings.Contains(c, req) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return &domain.FormatError{Missing: missing}
	}
	return nil
}

func parseRow(row []string, lineNum int, cutoff time.Time) domain.LedgerEntry {
	field := func(i int) string {
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	e := domain.LedgerEntry{
		Line:               lineNum,
		CustomerID:         field(colCustomerID),
		CustomerName:       field(colCustomerName),
		InvoiceNo:          field(colInvoiceNo),
		InvoiceDate:        field(colInvoiceDate),
		DueDate:            field(colDueDate),
		BilledAmount:       currency.ParseAmount(field(colBilledAmount)),
		AmountReceived:     currency.ParseAmount(field(colAmountReceived)),
		PaymentDate:        field(colPaymentDate),
		ConfirmationStatus: field(colConfirmationStatus),
	}

	if invoiceDate, ok := ParseLedgerDate(e.InvoiceDate); ok {
		e.DaysOverdue = DaysBetween(cutoff, invoiceDate)
	} else {
		e.AgeUnknown = true
	}

	e.Risk, e.Flags = ClassifyRisk(e)
	return e
}
