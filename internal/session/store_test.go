package session

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditguard/auditguard/internal/domain"
)

func sampleAnalysis() Analysis {
	return Analysis{
		Upload: domain.LedgerUpload{ID: "upl-1", Filename: "ledger.csv", RowCount: 1},
		Entries: []domain.LedgerEntry{{
			Line:         2,
			CustomerName: "Acme",
			InvoiceNo:    "INV1",
			BilledAmount: decimal.NewFromInt(15_000_000),
			Risk:         domain.RiskHigh,
		}},
		Summary:  domain.AuditSummary{EntryCount: 1, CountHighRisk: 1},
		Findings: []domain.Finding{{ID: "FND-AG-INV1-2"}},
	}
}

func TestStore_CreateOpensInfoDashboard(t *testing.T) {
	st := NewStore(10, time.Hour)
	s := st.Create(sampleAnalysis())

	assert.NotEmpty(t, s.ID())
	assert.Equal(t, ViewDashboardInfo, s.View())
	assert.Equal(t, 1, s.Summary().EntryCount)

	got, err := st.Get(s.ID())
	require.NoError(t, err)
	assert.Equal(t, s.ID(), got.ID())
	assert.Len(t, got.Entries(), 1)
}

func TestStore_NavigateReturnsNewValue(t *testing.T) {
	st := NewStore(10, time.Hour)
	s := st.Create(sampleAnalysis())

	next, err := st.Navigate(s.ID(), ViewDashboardFindings)
	require.NoError(t, err)
	assert.Equal(t, ViewDashboardFindings, next.View())
	// The earlier value is untouched.
	assert.Equal(t, ViewDashboardInfo, s.View())

	stored, err := st.Get(s.ID())
	require.NoError(t, err)
	assert.Equal(t, ViewDashboardFindings, stored.View())
}

func TestStore_NavigateRejectsUnknownView(t *testing.T) {
	st := NewStore(10, time.Hour)
	s := st.Create(sampleAnalysis())

	_, err := st.Navigate(s.ID(), View("SETTINGS"))
	assert.Error(t, err)
	_, err = st.Navigate(s.ID(), ViewLanding)
	assert.Error(t, err)

	_, err = st.Navigate("missing", ViewDashboardReport)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStore_Reset(t *testing.T) {
	st := NewStore(10, time.Hour)
	s := st.Create(sampleAnalysis())

	require.NoError(t, st.Reset(s.ID()))
	_, err := st.Get(s.ID())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, st.Reset(s.ID()), domain.ErrSessionNotFound)
	assert.Equal(t, 0, st.Len())
}

func TestSession_AccessorsReturnCopies(t *testing.T) {
	st := NewStore(10, time.Hour)
	s := st.Create(sampleAnalysis())

	entries := s.Entries()
	entries[0].CustomerName = "changed"
	findings := s.Findings()
	findings[0].ID = "changed"

	assert.Equal(t, "Acme", s.Entries()[0].CustomerName)
	assert.Equal(t, "FND-AG-INV1-2", s.Findings()[0].ID)
}

func TestStore_EvictsLeastRecentlyUsed(t *testing.T) {
	st := NewStore(2, time.Hour)
	first := st.Create(sampleAnalysis())
	st.Create(sampleAnalysis())
	st.Create(sampleAnalysis())

	_, err := st.Get(first.ID())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Equal(t, 2, st.Len())
}

func TestSession_Snapshot(t *testing.T) {
	st := NewStore(10, time.Hour)
	s := st.Create(sampleAnalysis())

	snap := s.Snapshot()
	assert.Equal(t, s.ID(), snap.ID)
	assert.Equal(t, ViewDashboardInfo, snap.View)
	assert.Equal(t, 1, snap.FindingCount)
	assert.Equal(t, "upl-1", snap.Upload.ID)
}

func TestSession_FlagsAreNotShared(t *testing.T) {
	a := sampleAnalysis()
	a.Entries[0].Flags = []domain.RiskFlag{domain.FlagAgedOver90, domain.FlagUnconfirmedBalance}

	st := NewStore(10, time.Hour)
	s := st.Create(a)

	// Changing the source analysis after Create leaves the session alone.
	a.Entries[0].Flags[0] = domain.FlagLappingIndication

	entries := s.Entries()
	entries[0].Flags[1] = domain.FlagUnknownInvoiceDate

	got, err := st.Get(s.ID())
	require.NoError(t, err)
	assert.Equal(t,
		[]domain.RiskFlag{domain.FlagAgedOver90, domain.FlagUnconfirmedBalance},
		got.Entries()[0].Flags,
	)
}
