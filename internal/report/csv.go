package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/auditguard/auditguard/internal/domain"
)

// BOM makes Excel on Windows read the export as UTF-8.
var BOM = []byte{0xEF, 0xBB, 0xBF}

var findingColumns = []string{
	"Finding ID",
	"Type",
	"Severity",
	"Line",
	"Customer ID",
	"Customer Name",
	"Invoice No",
	"Days Overdue",
	"Net Exposure",
	"Description",
}

var ledgerColumns = []string{
	"Line",
	"Customer ID",
	"Customer Name",
	"Invoice No",
	"Invoice Date",
	"Billed Amount",
	"Amount Received",
	"Net",
	"Confirmation Status",
	"Days Overdue",
	"Risk Level",
	"Risk Flags",
}

// WriteFindingsCSV writes findings as CSV, prefixed with a UTF-8 BOM.
func WriteFindingsCSV(w io.Writer, findings []domain.Finding) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(findingColumns); err != nil {
		return err
	}
	for i := range findings {
		if err := cw.Write(findingRow(&findings[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func findingRow(f *domain.Finding) []string {
	return []string{
		f.ID,
		string(f.Type),
		string(f.Severity),
		strconv.Itoa(f.Line),
		f.CustomerID,
		f.CustomerName,
		f.InvoiceNo,
		strconv.Itoa(f.DaysOverdue),
		f.NetExposure.StringFixed(2),
		f.Description,
	}
}

func ledgerRow(e *domain.LedgerEntry) []string {
	flags := make([]string, len(e.Flags))
	for i, f := range e.Flags {
		flags[i] = string(f)
	}
	days := strconv.Itoa(e.DaysOverdue)
	if e.AgeUnknown {
		days = ""
	}
	return []string{
		strconv.Itoa(e.Line),
		e.CustomerID,
		e.CustomerName,
		e.InvoiceNo,
		e.InvoiceDate,
		e.BilledAmount.StringFixed(2),
		e.AmountReceived.StringFixed(2),
		e.Net().StringFixed(2),
		e.ConfirmationStatus,
		days,
		string(e.Risk),
		strings.Join(flags, ";"),
	}
}
