package ingestion

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/auditguard/auditguard/internal/currency"
	"github.com/auditguard/auditguard/internal/domain"
)

const (
	mediumAgeDays  = 60
	highAgeDays    = 90
	lappingAgeDays = 45
)

// unconfirmedThreshold is the billed amount above which an unanswered
// confirmation makes an entry High risk.
var unconfirmedThreshold = decimal.NewFromInt(10_000_000)

// ClassifyRisk derives the risk level of an entry from its age, payment and
// confirmation status. Rules run in order and can only raise the level:
//
//  1. Medium past 60 days overdue, High past 90.
//  2. High when a round-million payment was received on an invoice more than
//     45 days old (lapping indication).
//  3. High when a confirmation got "No Reply" on a balance above 10,000,000.
//
// Entries with an unknown invoice date never trigger the age-based rules.
func ClassifyRisk(e domain.LedgerEntry) (domain.RiskLevel, []domain.RiskFlag) {
	risk := domain.RiskLow
	var flags []domain.RiskFlag

	if e.AgeUnknown {
		flags = append(flags, domain.FlagUnknownInvoiceDate)
	} else {
		if e.DaysOverdue > highAgeDays {
			risk = risk.Escalate(domain.RiskHigh)
			flags = append(flags, domain.FlagAgedOver90)
		} else if e.DaysOverdue > mediumAgeDays {
			risk = risk.Escalate(domain.RiskMedium)
			flags = append(flags, domain.FlagAgedOver60)
		}

		if currency.IsRoundPayment(e.AmountReceived) && e.DaysOverdue > lappingAgeDays {
			risk = risk.Escalate(domain.RiskHigh)
			flags = append(flags, domain.FlagLappingIndication)
		}
	}

	if e.ConfirmationStatus == domain.StatusNoReply && e.BilledAmount.GreaterThan(unconfirmedThreshold) {
		risk = risk.Escalate(domain.RiskHigh)
		flags = append(flags, domain.FlagUnconfirmedBalance)
	}

	return risk, flags
}

// ledgerDateLayouts accept unpadded months and days too ("2023-8-1").
var ledgerDateLayouts = []string{
	"2006-1-2",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/1/2",
}

// ParseLedgerDate parses a ledger date cell. Dates without a zone are UTC.
func ParseLedgerDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range ledgerDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DaysBetween returns the absolute distance between a and b in whole days,
// rounded up.
func DaysBetween(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(math.Ceil(d.Hours() / 24))
}
