package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/auditguard/auditguard/internal/domain"
)

type FindingRepo struct {
	db *sql.DB
}

func NewFindingRepo(db *sql.DB) *FindingRepo {
	return &FindingRepo{db: db}
}

const findingColumns = `id, upload_id, type, severity, line, customer_id, customer_name,
	invoice_no, days_overdue, net_exposure, description, detected_at`

// BulkInsert stores the findings of one upload. Findings already stored for
// the same upload are skipped.
func (r *FindingRepo) BulkInsert(ctx context.Context, uploadID string, findings []domain.Finding) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO audit_findings (`+findingColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i := range findings {
		f := &findings[i]
		res, err := stmt.ExecContext(ctx,
			f.ID, uploadID, string(f.Type), string(f.Severity), f.Line,
			f.CustomerID, f.CustomerName, f.InvoiceNo, f.DaysOverdue,
			f.NetExposure, f.Description, f.DetectedAt.Format(time.RFC3339),
		)
		if err != nil {
			return inserted, fmt.Errorf("insert %d: %w", i, err)
		}
		ra, _ := res.RowsAffected()
		inserted += int(ra)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

type FindingFilter struct {
	UploadID string
	Type     string
	Severity string
	Page     int
	Limit    int
}

// List returns findings in ledger order together with the total count.
func (r *FindingRepo) List(ctx context.Context, f FindingFilter) ([]domain.Finding, int, error) {
	where, args := buildFindingWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_findings"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	offset := (f.Page - 1) * f.Limit

	q := "SELECT " + findingColumns + " FROM audit_findings" + where +
		" ORDER BY upload_id, line, id LIMIT ? OFFSET ?"
	args = append(args, f.Limit, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	findings, err := scanFindings(rows)
	return findings, total, err
}

type FindingSummary struct {
	TotalCount  int             `json:"total_count"`
	NetExposure decimal.Decimal `json:"net_exposure"`
	ByType      map[string]int  `json:"by_type"`
	BySeverity  map[string]int  `json:"by_severity"`
}

// GetSummary counts the findings of one upload by type and severity. Net
// exposure is summed in Go since it is stored as exact decimal text.
func (r *FindingRepo) GetSummary(ctx context.Context, uploadID string) (*FindingSummary, error) {
	s := &FindingSummary{
		NetExposure: decimal.Zero,
		ByType:      make(map[string]int),
		BySeverity:  make(map[string]int),
	}

	if err := scanGroupCount(ctx, r.db, "type", uploadID, s.ByType); err != nil {
		return nil, err
	}
	if err := scanGroupCount(ctx, r.db, "severity", uploadID, s.BySeverity); err != nil {
		return nil, err
	}

	// Every finding of a line carries the same exposure; count it once.
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT line, net_exposure FROM audit_findings WHERE upload_id = ?", uploadID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var line int
		var v decimal.Decimal
		if err := rows.Scan(&line, &v); err != nil {
			return nil, err
		}
		s.NetExposure = s.NetExposure.Add(v)
	}
	for _, n := range s.ByType {
		s.TotalCount += n
	}

	return s, rows.Err()
}

// --- helpers ---

func buildFindingWhere(f FindingFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.UploadID != "" {
		clauses = append(clauses, "upload_id = ?")
		args = append(args, f.UploadID)
	}
	if f.Type != "" {
		clauses = append(clauses, "type = ?")
		args = append(args, f.Type)
	}
	if f.Severity != "" {
		clauses = append(clauses, "severity = ?")
		args = append(args, f.Severity)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanGroupCount(ctx context.Context, db *sql.DB, col, uploadID string, m map[string]int) error {
	rows, err := db.QueryContext(ctx,
		"SELECT "+col+", COUNT(*) FROM audit_findings WHERE upload_id = ? GROUP BY "+col, uploadID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var k string
		var v int
		if err := rows.Scan(&k, &v); err != nil {
			return err
		}
		m[k] = v
	}
	return rows.Err()
}

func scanFindings(rows *sql.Rows) ([]domain.Finding, error) {
	var findings []domain.Finding
	for rows.Next() {
		var f domain.Finding
		var ftype, sev, detectedAt string

		err := rows.Scan(
			&f.ID, &f.UploadID, &ftype, &sev, &f.Line, &f.CustomerID, &f.CustomerName,
			&f.InvoiceNo, &f.DaysOverdue, &f.NetExposure, &f.Description, &detectedAt,
		)
		if err != nil {
			return nil, err
		}

		f.Type = domain.FindingType(ftype)
		f.Severity = domain.Severity(sev)
		f.DetectedAt, _ = time.Parse(time.RFC3339, detectedAt)
		findings = append(findings, f)
	}
	return findings, rows.Err()
}
