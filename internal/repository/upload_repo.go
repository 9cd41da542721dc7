package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/auditguard/auditguard/internal/domain"
)

type UploadRepo struct {
	db *sql.DB
}

func NewUploadRepo(db *sql.DB) *UploadRepo {
	return &UploadRepo{db: db}
}

const uploadColumns = `id, file_hash, filename, cutoff_date, row_count, total_ar, total_collections,
	net_exposure, count_high_risk, bad_debt_provision, uploaded_at`

// FindByHash returns the upload previously stored for a file hash. The hash
// covers the cutoff date too, so re-analyzing a file under another cutoff is a
// new upload.
func (r *UploadRepo) FindByHash(ctx context.Context, hash string) (*domain.LedgerUpload, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+uploadColumns+" FROM ledger_uploads WHERE file_hash = ?", hash,
	)
	return scanUpload(row)
}

func (r *UploadRepo) GetByID(ctx context.Context, id string) (*domain.LedgerUpload, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+uploadColumns+" FROM ledger_uploads WHERE id = ?", id,
	)
	return scanUpload(row)
}

func (r *UploadRepo) Insert(ctx context.Context, u *domain.LedgerUpload) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ledger_uploads (`+uploadColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		u.ID, u.FileHash, u.Filename, u.CutoffDate.Format(time.RFC3339), u.RowCount,
		u.TotalAR, u.TotalCollections, u.NetExposure, u.CountHighRisk, u.BadDebtProvision,
		u.UploadedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

type UploadFilter struct {
	Page  int
	Limit int
}

// List returns uploads newest first together with the total count.
func (r *UploadRepo) List(ctx context.Context, f UploadFilter) ([]domain.LedgerUpload, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ledger_uploads").Scan(&total); err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	offset := (f.Page - 1) * f.Limit

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+uploadColumns+" FROM ledger_uploads ORDER BY uploaded_at DESC, id LIMIT ? OFFSET ?",
		f.Limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var uploads []domain.LedgerUpload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, 0, err
		}
		uploads = append(uploads, *u)
	}
	return uploads, total, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUpload(s scanner) (*domain.LedgerUpload, error) {
	var u domain.LedgerUpload
	var cutoff, uploadedAt string

	err := s.Scan(
		&u.ID, &u.FileHash, &u.Filename, &cutoff, &u.RowCount,
		&u.TotalAR, &u.TotalCollections, &u.NetExposure, &u.CountHighRisk,
		&u.BadDebtProvision, &uploadedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUploadNotFound
	}
	if err != nil {
		return nil, err
	}

	u.CutoffDate, _ = time.Parse(time.RFC3339, cutoff)
	u.UploadedAt, _ = time.Parse(time.RFC3339, uploadedAt)
	return &u, nil
}
