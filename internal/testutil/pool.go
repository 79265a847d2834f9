package testutil

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool starts a postgres container, applies the schema, and returns
// the raw pool. Convenience for repository tests that do not need the
// container handle itself.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pc := NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return pc.Pool
}
