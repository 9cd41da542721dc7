package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/auditguard/auditguard/internal/currency"
	"github.com/auditguard/auditguard/internal/domain"
)

var (
	criticalExposure = decimal.NewFromInt(100_000_000)
	highExposure     = decimal.NewFromInt(10_000_000)
	mediumExposure   = decimal.NewFromInt(1_000_000)
)

// DetectFindings turns the risk flags of each entry into findings, in ledger
// order. Medium ageing alone is not a finding.
func DetectFindings(entries []domain.LedgerEntry, detectedAt time.Time) []domain.Finding {
	var findings []domain.Finding
	for i := range entries {
		e := &entries[i]
		for _, flag := range e.Flags {
			f, ok := findingFor(e, flag)
			if !ok {
				continue
			}
			f.DetectedAt = detectedAt
			findings = append(findings, f)
		}
	}
	return findings
}

func findingFor(e *domain.LedgerEntry, flag domain.RiskFlag) (domain.Finding, bool) {
	net := decimal.Max(e.Net(), decimal.Zero)
	f := domain.Finding{
		Line:         e.Line,
		CustomerID:   e.CustomerID,
		CustomerName: e.CustomerName,
		InvoiceNo:    e.InvoiceNo,
		DaysOverdue:  e.DaysOverdue,
		NetExposure:  net,
		Severity:     severityByExposure(net),
	}

	switch flag {
	case domain.FlagAgedOver90:
		f.Type = domain.FindingAgedReceivable
		f.ID = fmt.Sprintf("FND-AG-%s-%d", e.InvoiceNo, e.Line)
		f.Description = fmt.Sprintf(
			"Invoice %s for %s is %d days old at cutoff with %s outstanding",
			e.InvoiceNo, e.CustomerName, e.DaysOverdue, currency.FormatIDR(net),
		)
	case domain.FlagLappingIndication:
		f.Type = domain.FindingLapping
		f.ID = fmt.Sprintf("FND-LP-%s-%d", e.InvoiceNo, e.Line)
		f.Severity = atLeast(f.Severity, domain.SeverityHigh)
		f.Description = fmt.Sprintf(
			"Round payment of %s received on invoice %s (%d days old); possible lapping",
			currency.FormatIDR(e.AmountReceived), e.InvoiceNo, e.DaysOverdue,
		)
	case domain.FlagUnconfirmedBalance:
		f.Type = domain.FindingUnconfirmedBalance
		f.ID = fmt.Sprintf("FND-UC-%s-%d", e.InvoiceNo, e.Line)
		f.Description = fmt.Sprintf(
			"Confirmation for %s (%s billed on %s) returned No Reply; perform alternative procedures",
			e.CustomerName, currency.FormatIDR(e.BilledAmount), e.InvoiceNo,
		)
	case domain.FlagUnknownInvoiceDate:
		f.Type = domain.FindingUnknownInvoiceDate
		f.ID = fmt.Sprintf("FND-UD-%s-%d", e.InvoiceNo, e.Line)
		f.Severity = atLeast(f.Severity, domain.SeverityMedium)
		f.Description = fmt.Sprintf(
			"Invoice date %q on line %d could not be read; entry aged as current",
			e.InvoiceDate, e.Line,
		)
	default:
		return domain.Finding{}, false
	}

	return f, true
}

func severityByExposure(net decimal.Decimal) domain.Severity {
	switch {
	case net.GreaterThan(criticalExposure):
		return domain.SeverityCritical
	case net.GreaterThan(highExposure):
		return domain.SeverityHigh
	case net.GreaterThan(mediumExposure):
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

var severityRank = map[domain.Severity]int{
	domain.SeverityLow:      0,
	domain.SeverityMedium:   1,
	domain.SeverityHigh:     2,
	domain.SeverityCritical: 3,
}

func atLeast(s, floor domain.Severity) domain.Severity {
	if severityRank[s] < severityRank[floor] {
		return floor
	}
	return s
}

// TopHighRisk returns up to n High risk entries in ledger order.
func TopHighRisk(entries []domain.LedgerEntry, n int) []domain.LedgerEntry {
	var out []domain.LedgerEntry
	for _, e := range entries {
		if len(out) >= n {
			break
		}
		if e.Risk == domain.RiskHigh {
			out = append(out, e)
		}
	}
	return out
}

// RiskDistribution counts entries per risk level.
func RiskDistribution(entries []domain.LedgerEntry) map[domain.RiskLevel]int {
	dist := map[domain.RiskLevel]int{
		domain.RiskLow:    0,
		domain.RiskMedium: 0,
		domain.RiskHigh:   0,
	}
	for _, e := range entries {
		dist[e.Risk]++
	}
	return dist
}

// EntryFilter selects ledger rows for the findings table.
type EntryFilter struct {
	Risk   string // "", "All", "Low", "Medium" or "High"
	Search string // matched against customer name and invoice number
	Page   int
	Limit  int
}

// FilterEntries applies f and returns the requested page plus the total
// number of matches.
func FilterEntries(entries []domain.LedgerEntry, f EntryFilter) ([]domain.LedgerEntry, int) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))

	var matched []domain.LedgerEntry
	for _, e := range entries {
		if f.Risk != "" && f.Risk != "All" && string(e.Risk) != f.Risk {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(e.CustomerName), q) &&
			!strings.Contains(strings.ToLower(e.InvoiceNo), q) {
			continue
		}
		matched = append(matched, e)
	}

	total := len(matched)
	start := (f.Page - 1) * f.Limit
	if start >= total {
		return []domain.LedgerEntry{}, total
	}
	end := start + f.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total
}
