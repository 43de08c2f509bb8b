package migration

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestMigrationsAreIdempotent(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Migrations {
		assert.False(t, seen[m.Name], "duplicate migration %s", m.Name)
		seen[m.Name] = true
		assert.Contains(t, strings.ToUpper(m.SQL), "IF NOT EXISTS", m.Name)
	}
}

func TestRunMigrations_NilPool(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, zaptest.NewLogger(t).Sugar()))
}
