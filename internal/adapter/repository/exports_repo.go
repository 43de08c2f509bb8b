package repository

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v4/pgxpool"

	"linguacv/internal/domain"
)

// ExportsRepo stores export metadata. A nil pool turns every call into a
// no-op so the service runs without a database.
type ExportsRepo struct {
	pool *pgxpool.Pool
}

func NewExportsRepo(pool *pgxpool.Pool) *ExportsRepo {
	return &ExportsRepo{pool: pool}
}

func (r *ExportsRepo) Save(ctx context.Context, rec domain.ExportRecord) error {
	if r == nil || r.pool == nil {
		return nil
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO resume_exports (id, filename, pages, size_bytes, created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.Filename, rec.Pages, rec.SizeBytes, rec.CreatedAt)
	return errors.Wrap(err, "insert export record")
}

// Recent returns the latest exports, newest first.
func (r *ExportsRepo) Recent(ctx context.Context, limit int) ([]domain.ExportRecord, error) {
	if r == nil || r.pool == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `SELECT id, filename, pages, size_bytes, created_at
		FROM resume_exports ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query exports")
	}
	defer rows.Close()

	var out []domain.ExportRecord
	for rows.Next() {
		var rec domain.ExportRecord
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.Pages, &rec.SizeBytes, &rec.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan export")
		}
		out = append(out, rec)
	}
	return out, errors.Wrap(rows.Err(), "iterate exports")
}
