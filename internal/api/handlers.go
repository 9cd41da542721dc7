package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/auditguard/auditguard/internal/assistant"
	"github.com/auditguard/auditguard/internal/audit"
	"github.com/auditguard/auditguard/internal/domain"
	"github.com/auditguard/auditguard/internal/ingestion"
	"github.com/auditguard/auditguard/internal/logger"
	"github.com/auditguard/auditguard/internal/report"
	"github.com/auditguard/auditguard/internal/repository"
	"github.com/auditguard/auditguard/internal/session"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	ingestionSvc   *ingestion.Service
	sessions       *session.Store
	uploadRepo     *repository.UploadRepo
	findingRepo    *repository.FindingRepo
	insight        *assistant.Insight
	live           assistant.Connector
	liveModel      string
	liveVoice      string
	maxUploadBytes int64
	validate       *validator.Validate
	log            zerolog.Logger
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidFormat), errors.Is(err, domain.ErrEmptyLedger):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrUploadNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrAssistantUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeError(w, status, err.Error())
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	return v
}

func (h *Handlers) loadSession(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return session.Session{}, false
	}
	return s, true
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

// exportName derives a download name from the uploaded file name.
func exportName(s session.Session, suffix string) string {
	base := strings.TrimSuffix(s.Upload().Filename, ".csv")
	if base == "" {
		base = "ledger"
	}
	return base + suffix
}

// --- Healthz ---

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"sessions":  h.sessions.Len(),
		"assistant": h.insight.Enabled(),
		"history":   h.uploadRepo != nil,
	})
}

// --- UploadLedger ---

func (h *Handlers) UploadLedger(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, r, domain.ErrFileTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required: "+err.Error())
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		h.fail(w, r, domain.ErrFileTooLarge)
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read file: "+err.Error())
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		h.fail(w, r, domain.ErrFileTooLarge)
		return
	}

	result, err := h.ingestionSvc.Ingest(r.Context(), data, header.Filename)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// --- Sessions ---

func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

type navigateRequest struct {
	View string `json:"view" validate:"required,oneof=DASHBOARD_INFO DASHBOARD_ANALYSIS DASHBOARD_FINDINGS DASHBOARD_REPORT"`
}

func (h *Handlers) NavigateSession(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid view: "+req.View)
		return
	}

	s, err := h.sessions.Navigate(chi.URLParam(r, "id"), session.View(req.View))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handlers) ResetSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Reset(chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"view": session.ViewLanding})
}

func (h *Handlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Summary())
}

// --- ListEntries ---

type entryQuery struct {
	Risk string `validate:"omitempty,oneof=All Low Medium High"`
	Q    string `validate:"max=200"`
}

func (h *Handlers) ListEntries(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	eq := entryQuery{Risk: q.Get("risk"), Q: q.Get("q")}
	if err := h.validate.Struct(eq); err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter: "+err.Error())
		return
	}
	filter := audit.EntryFilter{
		Risk:   eq.Risk,
		Search: eq.Q,
		Page:   parseIntDefault(q.Get("page"), 1),
		Limit:  parseIntDefault(q.Get("limit"), 50),
	}

	entries, total := audit.FilterEntries(s.Entries(), filter)
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"total":   total,
		"page":    filter.Page,
		"limit":   filter.Limit,
	})
}

// --- ListSessionFindings ---

func (h *Handlers) ListSessionFindings(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	ftype, sev := q.Get("type"), q.Get("severity")
	findings := []domain.Finding{}
	for _, f := range s.Findings() {
		if ftype != "" && string(f.Type) != ftype {
			continue
		}
		if sev != "" && string(f.Severity) != sev {
			continue
		}
		findings = append(findings, f)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"findings": findings,
		"total":    len(findings),
	})
}

// --- GetDashboard ---

type agingPoint struct {
	Bucket domain.AgingBucket `json:"bucket"`
	Label  string             `json:"label"`
	Amount decimal.Decimal    `json:"amount"`
}

func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	summary := s.Summary()
	entries := s.Entries()

	aging := make([]agingPoint, 0, len(domain.AllBuckets))
	for _, b := range domain.AllBuckets {
		aging = append(aging, agingPoint{
			Bucket: b,
			Label:  report.BucketLabel(b),
			Amount: summary.AgingBuckets.Get(b),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"view":              s.View(),
		"summary":           summary,
		"aging":             aging,
		"over90_share":      audit.Over90Share(summary),
		"risk_distribution": audit.RiskDistribution(entries),
		"top_high_risk":     audit.TopHighRisk(entries, 5),
	})
}

// --- Report and exports ---

func (h *Handlers) GetReport(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	format := report.Format(r.URL.Query().Get("format"))
	switch format {
	case "", report.FormatText:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	case report.FormatHTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	default:
		writeError(w, http.StatusBadRequest, "format must be text or html")
		return
	}

	memo := report.NewMemo(s.Summary(), s.Entries(), s.Upload().CutoffDate, time.Now())
	if err := report.RenderMemorandum(w, memo, format); err != nil {
		h.log.Error().Err(err).Str("session_id", s.ID()).Msg("render memorandum")
	}
}

func (h *Handlers) ExportFindingsCSV(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	attachment(w, "text/csv; charset=utf-8", exportName(s, "-findings.csv"))
	if err := report.WriteFindingsCSV(w, s.Findings()); err != nil {
		h.log.Error().Err(err).Str("session_id", s.ID()).Msg("write findings csv")
	}
}

func (h *Handlers) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	attachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", exportName(s, "-audit.xlsx"))
	err := report.WriteWorkbook(w, report.WorkbookData{
		Upload:   s.Upload(),
		Summary:  s.Summary(),
		Findings: s.Findings(),
		Entries:  s.Entries(),
	})
	if err != nil {
		h.log.Error().Err(err).Str("session_id", s.ID()).Msg("write workbook")
	}
}

// --- Assistant ---

func (h *Handlers) GetDigest(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, assistant.BuildSystemInstruction(s.Summary(), s.Entries()))
}

type insightRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
}

func (h *Handlers) AskInsight(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	var req insightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "question is required and must be at most 2000 characters")
		return
	}

	answer, err := h.insight.Ask(r.Context(), req.Question, s.Summary(), s.Entries())
	if err != nil {
		if errors.Is(err, domain.ErrAssistantUnavailable) {
			h.fail(w, r, err)
			return
		}
		writeError(w, http.StatusBadGateway, "Error generating insight.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// --- Upload history ---

func (h *Handlers) historyEnabled(w http.ResponseWriter) bool {
	if h.uploadRepo == nil || h.findingRepo == nil {
		writeError(w, http.StatusServiceUnavailable, "upload history is disabled")
		return false
	}
	return true
}

func (h *Handlers) ListUploads(w http.ResponseWriter, r *http.Request) {
	if !h.historyEnabled(w) {
		return
	}

	q := r.URL.Query()
	filter := repository.UploadFilter{
		Page:  parseIntDefault(q.Get("page"), 1),
		Limit: parseIntDefault(q.Get("limit"), 50),
	}

	uploads, total, err := h.uploadRepo.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if uploads == nil {
		uploads = []domain.LedgerUpload{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"uploads": uploads,
		"total":   total,
		"page":    filter.Page,
		"limit":   filter.Limit,
	})
}

func (h *Handlers) ListUploadFindings(w http.ResponseWriter, r *http.Request) {
	if !h.historyEnabled(w) {
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := h.uploadRepo.GetByID(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	q := r.URL.Query()
	filter := repository.FindingFilter{
		UploadID: id,
		Type:     q.Get("type"),
		Severity: q.Get("severity"),
		Page:     parseIntDefault(q.Get("page"), 1),
		Limit:    parseIntDefault(q.Get("limit"), 50),
	}

	findings, total, err := h.findingRepo.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if findings == nil {
		findings = []domain.Finding{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"findings": findings,
		"total":    total,
		"page":     filter.Page,
		"limit":    filter.Limit,
	})
}

func (h *Handlers) GetUploadFindingSummary(w http.ResponseWriter, r *http.Request) {
	if !h.historyEnabled(w) {
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := h.uploadRepo.GetByID(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	summary, err := h.findingRepo.GetSummary(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
