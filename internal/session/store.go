package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/auditguard/auditguard/internal/domain"
)

// Store keeps sessions in an expiring LRU. Idle sessions are dropped after the
// TTL and the least recently used one is evicted once capacity is reached.
type Store struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, Session]
	now   func() time.Time
}

func NewStore(capacity int, ttl time.Duration) *Store {
	return &Store{
		cache: expirable.NewLRU[string, Session](capacity, nil, ttl),
		now:   time.Now,
	}
}

// Analysis is everything a new session is built from.
type Analysis struct {
	Upload   domain.LedgerUpload
	Entries  []domain.LedgerEntry
	Summary  domain.AuditSummary
	Findings []domain.Finding
}

// Create stores a new session for a freshly analyzed ledger and opens it on
// the info dashboard.
func (st *Store) Create(a Analysis) Session {
	now := st.now().UTC()
	entries := cloneEntries(a.Entries)
	findings := make([]domain.Finding, len(a.Findings))
	copy(findings, a.Findings)

	s := Session{
		id:        uuid.NewString(),
		upload:    a.Upload,
		entries:   entries,
		summary:   a.Summary,
		findings:  findings,
		view:      ViewDashboardInfo,
		createdAt: now,
		updatedAt: now,
	}
	st.cache.Add(s.id, s)
	return s
}

func (st *Store) Get(id string) (Session, error) {
	s, ok := st.cache.Get(id)
	if !ok {
		return Session{}, domain.ErrSessionNotFound
	}
	return s, nil
}

// Navigate switches the session to view v and returns the new value.
func (st *Store) Navigate(id string, v View) (Session, error) {
	if !v.Valid() {
		return Session{}, fmt.Errorf("invalid view %q", v)
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.cache.Get(id)
	if !ok {
		return Session{}, domain.ErrSessionNotFound
	}
	next := s.withView(v, st.now().UTC())
	st.cache.Add(id, next)
	return next, nil
}

// Reset discards the session. The caller is back on the landing view.
func (st *Store) Reset(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.cache.Remove(id) {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (st *Store) Len() int {
	return st.cache.Len()
}
