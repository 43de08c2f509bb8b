package migration

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

// Migration is one idempotent schema step.
type Migration struct {
	Name string
	SQL  string
}

// Migrations lists the export log schema in apply order.
var Migrations = []Migration{
	{
		Name: "create_resume_exports",
		SQL: `CREATE TABLE IF NOT EXISTS resume_exports (
			id UUID PRIMARY KEY,
			filename TEXT NOT NULL,
			pages INTEGER NOT NULL,
			size_bytes INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	},
	{
		Name: "index_resume_exports_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS resume_exports_created_at_idx ON resume_exports (created_at DESC)`,
	},
}

// RunMigrations applies every migration on startup. A nil pool means the
// export log is disabled.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, log *zap.SugaredLogger) error {
	if pool == nil {
		return nil
	}
	log.Infow("Starting database migrations", "count", len(Migrations))
	for _, m := range Migrations {
		if _, err := pool.Exec(ctx, m.SQL); err != nil {
			log.Errorw("Migration failed", "name", m.Name, "error", err)
			return errors.Wrapf(err, "migration %s", m.Name)
		}
		log.Infow("Migration completed", "name", m.Name)
	}
	return nil
}
