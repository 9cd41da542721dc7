package domain

import "github.com/shopspring/decimal"

type AgingBucket string

const (
	BucketCurrent AgingBucket = "current"
	BucketDays30  AgingBucket = "days30"
	BucketDays60  AgingBucket = "days60"
	BucketDays90  AgingBucket = "days90"
	BucketOver90  AgingBucket = "over90"
)

// AllBuckets lists the aging buckets from youngest to oldest.
var AllBuckets = []AgingBucket{BucketCurrent, BucketDays30, BucketDays60, BucketDays90, BucketOver90}

// BucketFor maps days overdue to its aging bucket. Boundaries are inclusive on
// the lower bucket.
func BucketFor(daysOverdue int) AgingBucket {
	switch {
	case daysOverdue <= 30:
		return BucketCurrent
	case daysOverdue <= 60:
		return BucketDays30
	case daysOverdue <= 90:
		return BucketDays60
	case daysOverdue <= 120:
		return BucketDays90
	default:
		return BucketOver90
	}
}

type AgingBuckets struct {
	Current decimal.Decimal `json:"current"`
	Days30  decimal.Decimal `json:"days30"`
	Days60  decimal.Decimal `json:"days60"`
	Days90  decimal.Decimal `json:"days90"`
	Over90  decimal.Decimal `json:"over90"`
}

func (b AgingBuckets) Get(bucket AgingBucket) decimal.Decimal {
	switch bucket {
	case BucketCurrent:
		return b.Current
	case BucketDays30:
		return b.Days30
	case BucketDays60:
		return b.Days60
	case BucketDays90:
		return b.Days90
	default:
		return b.Over90
	}
}

func (b *AgingBuckets) Add(bucket AgingBucket, amount decimal.Decimal) {
	switch bucket {
	case BucketCurrent:
		b.Current = b.Current.Add(amount)
	case BucketDays30:
		b.Days30 = b.Days30.Add(amount)
	case BucketDays60:
		b.Days60 = b.Days60.Add(amount)
	case BucketDays90:
		b.Days90 = b.Days90.Add(amount)
	default:
		b.Over90 = b.Over90.Add(amount)
	}
}

// Total sums all five buckets.
func (b AgingBuckets) Total() decimal.Decimal {
	return b.Current.Add(b.Days30).Add(b.Days60).Add(b.Days90).Add(b.Over90)
}

// AuditSummary aggregates a full ledger. NetExposure and the aging buckets only
// include entries whose billed amount exceeds the amount received.
type AuditSummary struct {
	EntryCount       int             `json:"entry_count"`
	TotalAR          decimal.Decimal `json:"total_ar"`
	TotalCollections decimal.Decimal `json:"total_collections"`
	NetExposure      decimal.Decimal `json:"net_exposure"`
	CountHighRisk    int             `json:"count_high_risk"`
	BadDebtProvision decimal.Decimal `json:"bad_debt_provision"`
	CountUnknownAge  int             `json:"count_unknown_age"`
	AgingBuckets     AgingBuckets    `json:"aging_buckets"`
}
