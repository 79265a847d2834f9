// Package testutil provides test helpers including container
// management for storage integration tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mume/mapcore/internal/config"
	"github.com/mume/mapcore/internal/storage/postgres"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance.
type PostgresContainer struct {
	container testcontainers.Container
	Pool      *pgxpool.Pool
	Config    config.DatabaseConfig
}

// NewPostgresContainer starts a PostgreSQL test container and returns
// a connected Pool.
//
// Precondition: Docker must be available.
// Postcondition: Returns a running container with a connected pool,
// or fails the test.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v [%s]", err, time.Since(start))
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("getting container host: %v", err)
	}

	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("getting mapped port: %v", err)
	}

	dbCfg := config.DatabaseConfig{
		Host:            host,
		Port:            mappedPort.Int(),
		User:            "test",
		Password:        "test",
		Name:            "test",
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}

	pool, err := postgres.Connect(ctx, dbCfg)
	if err != nil {
		t.Fatalf("connecting to test postgres: %v [%s]", err, time.Since(start))
	}

	t.Logf("postgres container started [%s]", time.Since(start))

	pc := &PostgresContainer{
		container: container,
		Pool:      pool,
		Config:    dbCfg,
	}

	t.Cleanup(func() {
		pool.Close()
		_ = container.Terminate(ctx)
	})

	return pc
}

// ApplyMigrations runs the schema creation SQL directly for tests.
// This avoids requiring the migrate tool in the test environment.
//
// Precondition: Pool must be connected.
// Postcondition: The map snapshot tables exist in the test database.
func (pc *PostgresContainer) ApplyMigrations(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	schema := `
		CREATE TABLE IF NOT EXISTS map_snapshots (
			id         UUID         PRIMARY KEY,
			name       VARCHAR(128) NOT NULL,
			room_count INTEGER      NOT NULL,
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS map_rooms (
			snapshot_id UUID    NOT NULL REFERENCES map_snapshots (id) ON DELETE CASCADE,
			external_id BIGINT  NOT NULL,
			server_id   BIGINT  NOT NULL DEFAULT 0,
			name        TEXT    NOT NULL,
			description TEXT    NOT NULL,
			contents    TEXT    NOT NULL DEFAULT '',
			note        TEXT    NOT NULL DEFAULT '',
			area        TEXT    NOT NULL DEFAULT '',
			pos_x       INTEGER NOT NULL,
			pos_y       INTEGER NOT NULL,
			pos_z       INTEGER NOT NULL,
			terrain     SMALLINT NOT NULL DEFAULT 0,
			align       SMALLINT NOT NULL DEFAULT 0,
			light       SMALLINT NOT NULL DEFAULT 0,
			portable    SMALLINT NOT NULL DEFAULT 0,
			ridable     SMALLINT NOT NULL DEFAULT 0,
			sundeath    SMALLINT NOT NULL DEFAULT 0,
			mob_flags   BIGINT   NOT NULL DEFAULT 0,
			load_flags  BIGINT   NOT NULL DEFAULT 0,
			PRIMARY KEY (snapshot_id, external_id)
		);
		CREATE TABLE IF NOT EXISTS map_exits (
			snapshot_id      UUID     NOT NULL REFERENCES map_snapshots (id) ON DELETE CASCADE,
			room_external_id BIGINT   NOT NULL,
			direction        SMALLINT NOT NULL,
			door_name        TEXT     NOT NULL DEFAULT '',
			door_flags       INTEGER  NOT NULL DEFAULT 0,
			exit_flags       INTEGER  NOT NULL DEFAULT 0,
			to_external_ids  BIGINT[] NOT NULL DEFAULT '{}',
			PRIMARY KEY (snapshot_id, room_external_id, direction),
			FOREIGN KEY (snapshot_id, room_external_id)
				REFERENCES map_rooms (snapshot_id, external_id) ON DELETE CASCADE
		);
		CREATE TABLE IF NOT EXISTS map_infomarks (
			snapshot_id    UUID     NOT NULL REFERENCES map_snapshots (id) ON DELETE CASCADE,
			mark_id        BIGINT   NOT NULL,
			mark_type      SMALLINT NOT NULL,
			mark_class     SMALLINT NOT NULL DEFAULT 0,
			text           TEXT     NOT NULL DEFAULT '',
			pos1_x         INTEGER  NOT NULL,
			pos1_y         INTEGER  NOT NULL,
			pos1_z         INTEGER  NOT NULL,
			pos2_x         INTEGER  NOT NULL DEFAULT 0,
			pos2_y         INTEGER  NOT NULL DEFAULT 0,
			pos2_z         INTEGER  NOT NULL DEFAULT 0,
			rotation_angle INTEGER  NOT NULL DEFAULT 0,
			PRIMARY KEY (snapshot_id, mark_id)
		);
	`

	_, err := pc.Pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	t.Logf("migrations applied [%s]", time.Since(start))
}

// DSN returns the connection string for the test database.
func (pc *PostgresContainer) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pc.Config.User, pc.Config.Password,
		pc.Config.Host, pc.Config.Port,
		pc.Config.Name, pc.Config.SSLMode,
	)
}
