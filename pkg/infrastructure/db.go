package infrastructure

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v4/pgxpool"
)

// NewExportsPool connects to the export log database. An empty dsn means
// the log is disabled and yields a nil pool.
func NewExportsPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, nil
	}
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect exports database")
	}
	return pool, nil
}
