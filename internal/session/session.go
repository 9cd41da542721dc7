// Package session holds the per-upload dashboard state. A Session is an
// immutable value; navigation produces a new value that replaces the old one
// in the Store.
package session

import (
	"time"

	"github.com/auditguard/auditguard/internal/domain"
)

type View string

const (
	ViewLanding           View = "LANDING"
	ViewDashboardInfo     View = "DASHBOARD_INFO"
	ViewDashboardAnalysis View = "DASHBOARD_ANALYSIS"
	ViewDashboardFindings View = "DASHBOARD_FINDINGS"
	ViewDashboardReport   View = "DASHBOARD_REPORT"
)

var dashboardViews = map[View]bool{
	ViewDashboardInfo:     true,
	ViewDashboardAnalysis: true,
	ViewDashboardFindings: true,
	ViewDashboardReport:   true,
}

// Valid reports whether v is a view a loaded session can navigate to.
// LANDING is only reachable through Reset.
func (v View) Valid() bool {
	return dashboardViews[v]
}

// Session is the state of one analyzed ledger. Fields are unexported so a
// value handed out by the Store cannot be changed by its holder.
type Session struct {
	id        string
	upload    domain.LedgerUpload
	entries   []domain.LedgerEntry
	summary   domain.AuditSummary
	findings  []domain.Finding
	view      View
	createdAt time.Time
	updatedAt time.Time
}

func (s Session) ID() string { return s.id }
func (s Session) Upload() domain.LedgerUpload { return s.upload }
func (s Session) Summary() domain.AuditSummary { return s.summary }
func (s Session) View() View { return s.view }
func (s Session) CreatedAt() time.Time { return s.createdAt }
func (s Session) UpdatedAt() time.Time { return s.updatedAt }

// Entries returns a copy of the parsed ledger.
func (s Session) Entries() []domain.LedgerEntry {
	return cloneEntries(s.entries)
}

// cloneEntries deep-copies entries, including each entry's flag slice.
func cloneEntries(entries []domain.LedgerEntry) []domain.LedgerEntry {
	out := make([]domain.LedgerEntry, len(entries))
	copy(out, entries)
	for i := range out {
		if out[i].Flags != nil {
			out[i].Flags = append([]domain.RiskFlag(nil), out[i].Flags...)
		}
	}
	return out
}

// Findings returns a copy of the detected findings.
func (s Session) Findings() []domain.Finding {
	out := make([]domain.Finding, len(s.findings))
	copy(out, s.findings)
	return out
}

// withView returns a copy of s showing v.
func (s Session) withView(v View, at time.Time) Session {
	s.view = v
	s.updatedAt = at
	return s
}

// Snapshot is the JSON shape of a session without its ledger rows.
type Snapshot struct {
	ID           string              `json:"id"`
	View         View                `json:"view"`
	Upload       domain.LedgerUpload `json:"upload"`
	Summary      domain.AuditSummary `json:"summary"`
	FindingCount int                 `json:"finding_count"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func (s Session) Snapshot() Snapshot {
	return Snapshot{
		ID:           s.id,
		View:         s.view,
		Upload:       s.upload,
		Summary:      s.summary,
		FindingCount: len(s.findings),
		CreatedAt:    s.createdAt,
		UpdatedAt:    s.updatedAt,
	}
}
