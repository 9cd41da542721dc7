package audit

import (
	"github.com/shopspring/decimal"

	"github.com/auditguard/auditguard/internal/domain"
)

// ProvisionRate is the share of net exposure reserved as bad-debt provision
// (CKPN) for High risk entries.
var ProvisionRate = decimal.RequireFromString("0.5")

// CalculateSummary folds entries into an AuditSummary in a single pass. Totals
// cover every entry; net exposure, aging buckets, the high-risk count and the
// provision only cover entries with positive net exposure.
func CalculateSummary(entries []domain.LedgerEntry) domain.AuditSummary {
	s := domain.AuditSummary{
		TotalAR:          decimal.Zero,
		TotalCollections: decimal.Zero,
		NetExposure:      decimal.Zero,
		BadDebtProvision: decimal.Zero,
		AgingBuckets: domain.AgingBuckets{
			Current: decimal.Zero,
			Days30:  decimal.Zero,
			Days60:  decimal.Zero,
			Days90:  decimal.Zero,
			Over90:  decimal.Zero,
		},
	}

	for i := range entries {
		e := &entries[i]
		s.EntryCount++
		s.TotalAR = s.TotalAR.Add(e.BilledAmount)
		s.TotalCollections = s.TotalCollections.Add(e.AmountReceived)
		if e.AgeUnknown {
			s.CountUnknownAge++
		}

		net := e.Net()
		if !net.IsPositive() {
			continue
		}
		s.NetExposure = s.NetExposure.Add(net)
		s.AgingBuckets.Add(domain.BucketFor(e.DaysOverdue), net)

		if e.Risk == domain.RiskHigh {
			s.CountHighRisk++
			s.BadDebtProvision = s.BadDebtProvision.Add(net.Mul(ProvisionRate))
		}
	}

	return s
}

// Over90Share returns the over-90 bucket as a fraction of net exposure, or
// zero when there is no net exposure.
func Over90Share(s domain.AuditSummary) decimal.Decimal {
	if !s.NetExposure.IsPositive() {
		return decimal.Zero
	}
	return s.AgingBuckets.Over90.Div(s.NetExposure)
}
