package ingestion

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/auditguard/auditguard/internal/audit"
	"github.com/auditguard/auditguard/internal/domain"
	"github.com/auditguard/auditguard/internal/session"
)

// Analysis is the pure result of reading one ledger file.
type Analysis struct {
	Entries  []domain.LedgerEntry
	Summary  domain.AuditSummary
	Findings []domain.Finding
}

// Analyze parses a ledger and derives its summary and findings.
func Analyze(data []byte, cutoff, detectedAt time.Time) (*Analysis, error) {
	entries, err := ParseLedgerCSV(data, cutoff)
	if err != nil {
		return nil, err
	}
	return &Analysis{
		Entries:  entries,
		Summary:  audit.CalculateSummary(entries),
		Findings: audit.DetectFindings(entries, detectedAt),
	}, nil
}

// UploadStore records analyzed uploads. *repository.UploadRepo satisfies it.
type UploadStore interface {
	FindByHash(ctx context.Context, hash string) (*domain.LedgerUpload, error)
	Insert(ctx context.Context, u *domain.LedgerUpload) error
}

// FindingStore records the findings of an upload. *repository.FindingRepo
// satisfies it.
type FindingStore interface {
	BulkInsert(ctx context.Context, uploadID string, findings []domain.Finding) (int, error)
}

// Result is returned from a successful ingestion.
type Result struct {
	SessionID    string              `json:"session_id"`
	UploadID     string              `json:"upload_id"`
	View         session.View        `json:"view"`
	Duplicate    bool                `json:"duplicate"`
	Summary      domain.AuditSummary `json:"summary"`
	FindingCount int                 `json:"finding_count"`

	Session session.Session `json:"-"`
}

type Options struct {
	Cutoff    time.Time
	CacheSize int
	// Uploads and Findings are optional; without them nothing is persisted.
	Uploads  UploadStore
	Findings FindingStore
	Logger   zerolog.Logger
}

// Service turns uploaded ledger files into dashboard sessions.
type Service struct {
	cutoff   time.Time
	uploads  UploadStore
	findings FindingStore
	sessions *session.Store
	cache    *lru.Cache[string, *Analysis]
	group    singleflight.Group
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(sessions *session.Store, opts Options) (*Service, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 64
	}
	if opts.Cutoff.IsZero() {
		opts.Cutoff = DefaultCutoff
	}
	cache, err := lru.New[string, *Analysis](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create analysis cache: %w", err)
	}
	return &Service{
		cutoff:   opts.Cutoff,
		uploads:  opts.Uploads,
		findings: opts.Findings,
		sessions: sessions,
		cache:    cache,
		log:      opts.Logger.With().Str("component", "ingestion").Logger(),
		now:      time.Now,
	}, nil
}

func (s *Service) Cutoff() time.Time {
	return s.cutoff
}

// Ingest analyzes a ledger file and opens a session for it. Identical files
// share one cached analysis; concurrent uploads of the same file are parsed
// once. Failing to write the upload log never fails the ingestion.
func (s *Service) Ingest(ctx context.Context, data []byte, filename string) (*Result, error) {
	hash := s.fileHash(data)

	a, err := s.analysis(hash, data)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	upload := domain.LedgerUpload{
		ID:               uuid.NewString(),
		FileHash:         hash,
		Filename:         filename,
		CutoffDate:       s.cutoff,
		RowCount:         a.Summary.EntryCount,
		TotalAR:          a.Summary.TotalAR,
		TotalCollections: a.Summary.TotalCollections,
		NetExposure:      a.Summary.NetExposure,
		CountHighRisk:    a.Summary.CountHighRisk,
		BadDebtProvision: a.Summary.BadDebtProvision,
		UploadedAt:       now,
	}

	// The cached analysis may be older than this upload.
	findings := make([]domain.Finding, len(a.Findings))
	for i, f := range a.Findings {
		f.DetectedAt = now
		findings[i] = f
	}

	duplicate := s.persist(ctx, &upload, findings)
	for i := range findings {
		findings[i].UploadID = upload.ID
	}

	sess := s.sessions.Create(session.Analysis{
		Upload:   upload,
		Entries:  a.Entries,
		Summary:  a.Summary,
		Findings: findings,
	})

	s.log.Info().
		Str("session_id", sess.ID()).
		Str("upload_id", upload.ID).
		Str("filename", filename).
		Int("entries", a.Summary.EntryCount).
		Int("high_risk", a.Summary.CountHighRisk).
		Int("findings", len(findings)).
		Bool("duplicate", duplicate).
		Msg("ledger ingested")

	return &Result{
		SessionID:    sess.ID(),
		UploadID:     upload.ID,
		View:         sess.View(),
		Duplicate:    duplicate,
		Summary:      a.Summary,
		FindingCount: len(findings),
		Session:      sess,
	}, nil
}

// fileHash covers the cutoff too; the same file aged to another period-end is
// a different analysis.
func (s *Service) fileHash(data []byte) string {
	h := sha256.New()
	h.Write([]byte(s.cutoff.Format("2006-01-02")))
	h.Write([]byte{'\n'})
	h.Write(data)
	return fmt.Sprintf("%x", h.Sum(nil))
}

func (s *Service) analysis(hash string, data []byte) (*Analysis, error) {
	if a, ok := s.cache.Get(hash); ok {
		return a, nil
	}

	v, err, _ := s.group.Do(hash, func() (any, error) {
		a, err := Analyze(data, s.cutoff, s.now().UTC())
		if err != nil {
			return nil, err
		}
		s.cache.Add(hash, a)
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Analysis), nil
}

// persist writes the upload log and reports whether the file was seen before.
// A known hash reuses the stored upload id and timestamp.
func (s *Service) persist(ctx context.Context, upload *domain.LedgerUpload, findings []domain.Finding) bool {
	if s.uploads == nil {
		return false
	}

	existing, err := s.uploads.FindByHash(ctx, upload.FileHash)
	switch {
	case err == nil:
		upload.ID = existing.ID
		upload.UploadedAt = existing.UploadedAt
		return true
	case !errors.Is(err, domain.ErrUploadNotFound):
		s.log.Warn().Err(err).Str("hash", upload.FileHash).Msg("upload lookup failed")
		return false
	}

	if err := s.uploads.Insert(ctx, upload); err != nil {
		// A concurrent upload of the same file may have won the insert.
		if existing, ferr := s.uploads.FindByHash(ctx, upload.FileHash); ferr == nil {
			upload.ID = existing.ID
			upload.UploadedAt = existing.UploadedAt
			return true
		}
		s.log.Warn().Err(err).Str("upload_id", upload.ID).Msg("could not record upload")
		return false
	}
	if s.findings == nil || len(findings) == 0 {
		return false
	}
	if _, err := s.findings.BulkInsert(ctx, upload.ID, findings); err != nil {
		s.log.Warn().Err(err).Str("upload_id", upload.ID).Msg("could not record findings")
	}
	return false
}
