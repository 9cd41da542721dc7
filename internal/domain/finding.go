package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type FindingType string

const (
	FindingAgedReceivable     FindingType = "AGED_RECEIVABLE"
	FindingLapping            FindingType = "LAPPING_INDICATION"
	FindingUnconfirmedBalance FindingType = "UNCONFIRMED_BALANCE"
	FindingUnknownInvoiceDate FindingType = "UNKNOWN_INVOICE_DATE"
)

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

type Finding struct {
	ID           string          `json:"id"`
	UploadID     string          `json:"upload_id,omitempty"`
	Type         FindingType     `json:"type"`
	Severity     Severity        `json:"severity"`
	Line         int             `json:"line"`
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	InvoiceNo    string          `json:"invoice_no"`
	DaysOverdue  int             `json:"days_overdue"`
	NetExposure  decimal.Decimal `json:"net_exposure"`
	Description  string          `json:"description"`
	DetectedAt   time.Time       `json:"detected_at"`
}
