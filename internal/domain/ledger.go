package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

func (r RiskLevel) rank() int {
	switch r {
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}

// Escalate returns the higher of r and to. A level is never lowered.
func (r RiskLevel) Escalate(to RiskLevel) RiskLevel {
	if to.rank() > r.rank() {
		return to
	}
	return r
}

// AtLeast reports whether r is the same as or above other.
func (r RiskLevel) AtLeast(other RiskLevel) bool {
	return r.rank() >= other.rank()
}

type RiskFlag string

const (
	FlagAgedOver60         RiskFlag = "AGED_OVER_60"
	FlagAgedOver90         RiskFlag = "AGED_OVER_90"
	FlagLappingIndication  RiskFlag = "LAPPING_INDICATION"
	FlagUnconfirmedBalance RiskFlag = "UNCONFIRMED_BALANCE"
	FlagUnknownInvoiceDate RiskFlag = "UNKNOWN_INVOICE_DATE"
)

// StatusNoReply is the confirmation label that marks an unanswered
// positive confirmation request.
const StatusNoReply = "No Reply"

// LedgerEntry is one parsed row of an Accounts-Receivable ledger. DaysOverdue,
// AgeUnknown, Risk and Flags are derived once while parsing.
type LedgerEntry struct {
	Line               int             `json:"line"`
	CustomerID         string          `json:"customer_id"`
	CustomerName       string          `json:"customer_name"`
	InvoiceNo          string          `json:"invoice_no"`
	InvoiceDate        string          `json:"invoice_date"`
	DueDate            string          `json:"due_date"`
	BilledAmount       decimal.Decimal `json:"billed_amount"`
	AmountReceived     decimal.Decimal `json:"amount_received"`
	PaymentDate        string          `json:"payment_date"`
	ConfirmationStatus string          `json:"confirmation_status"`
	DaysOverdue        int             `json:"days_overdue"`
	AgeUnknown         bool            `json:"age_unknown,omitempty"`
	Risk               RiskLevel       `json:"risk_level"`
	Flags              []RiskFlag      `json:"risk_flags,omitempty"`
}

// Net returns billed minus received. It may be zero or negative.
func (e LedgerEntry) Net() decimal.Decimal {
	return e.BilledAmount.Sub(e.AmountReceived)
}

// Outstanding reports whether the entry still carries positive net exposure.
func (e LedgerEntry) Outstanding() bool {
	return e.Net().IsPositive()
}

func (e LedgerEntry) HasFlag(f RiskFlag) bool {
	for _, got := range e.Flags {
		if got == f {
			return true
		}
	}
	return false
}

// LedgerUpload records one analyzed ledger file.
type LedgerUpload struct {
	ID               string          `json:"id"`
	FileHash         string          `json:"file_hash"`
	Filename         string          `json:"filename"`
	CutoffDate       time.Time       `json:"cutoff_date"`
	RowCount         int             `json:"row_count"`
	TotalAR          decimal.Decimal `json:"total_ar"`
	TotalCollections decimal.Decimal `json:"total_collections"`
	NetExposure      decimal.Decimal `json:"net_exposure"`
	CountHighRisk    int             `json:"count_high_risk"`
	BadDebtProvision decimal.Decimal `json:"bad_debt_provision"`
	UploadedAt       time.Time       `json:"uploaded_at"`
}
