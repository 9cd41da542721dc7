package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/auditguard/auditguard/internal/assistant"
	"github.com/auditguard/auditguard/internal/ingestion"
	"github.com/auditguard/auditguard/internal/repository"
	"github.com/auditguard/auditguard/internal/session"
)

// Deps are the collaborators the HTTP layer serves. Uploads, Findings and Live
// are optional.
type Deps struct {
	Ingestion *ingestion.Service
	Sessions  *session.Store
	Uploads   *repository.UploadRepo
	Findings  *repository.FindingRepo
	Insight   *assistant.Insight
	Live      assistant.Connector
	LiveModel string
	LiveVoice string

	MaxUploadBytes  int64
	RateLimitPerMin int
	Production      bool
	Logger          zerolog.Logger
}

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(d Deps) http.Handler {
	if d.RateLimitPerMin <= 0 {
		d.RateLimitPerMin = 120
	}
	h := &Handlers{
		ingestionSvc:   d.Ingestion,
		sessions:       d.Sessions,
		uploadRepo:     d.Uploads,
		findingRepo:    d.Findings,
		insight:        d.Insight,
		live:           d.Live,
		liveModel:      d.LiveModel,
		liveVoice:      d.LiveVoice,
		maxUploadBytes: d.MaxUploadBytes,
		validate:       validator.New(),
		log:            d.Logger.With().Str("component", "api").Logger(),
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(d.Logger))
	r.Use(Recoverer(d.Logger))
	r.Use(SecureHeaders(d.Production))

	r.Get("/healthz", h.Healthz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.Limit(d.RateLimitPerMin, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			}),
		))

		// Ingestion.
		r.Post("/ledger/upload", h.UploadLedger)

		// Sessions.
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Put("/view", h.NavigateSession)
			r.Delete("/", h.ResetSession)

			r.Get("/summary", h.GetSummary)
			r.Get("/entries", h.ListEntries)
			r.Get("/findings", h.ListSessionFindings)
			r.Get("/dashboard", h.GetDashboard)
			r.Get("/report", h.GetReport)
			r.Get("/export.csv", h.ExportFindingsCSV)
			r.Get("/export.xlsx", h.ExportWorkbook)

			// Assistant.
			r.Get("/digest", h.GetDigest)
			r.Post("/insight", h.AskInsight)
			r.Get("/live", h.LiveRelay)
		})

		// Upload history.
		r.Get("/uploads", h.ListUploads)
		r.Get("/uploads/{id}/findings", h.ListUploadFindings)
		r.Get("/uploads/{id}/findings/summary", h.GetUploadFindingSummary)
	})

	return r
}
