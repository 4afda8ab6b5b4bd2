package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB returns an in-memory sqlite database for unit tests.
func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	db, err := NewDB(Config{Type: "sqlite", SQLitePath: ":memory:"})
	if err != nil {
		t.Fatalf("Failed to open sqlite test database: %v", err)
	}
	return db, func() { db.Close() }
}

// setupPostgresTestDB starts a disposable postgres container. Skipped
// unless VERIFRAME_PG_TESTS is set, since it needs a Docker daemon.
func setupPostgresTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	if os.Getenv("VERIFRAME_PG_TESTS") == "" {
		t.Skip("set VERIFRAME_PG_TESTS=1 to run postgres tests")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("veriframe_test"),
		postgres.WithUsername("veriframe_test"),
		postgres.WithPassword("veriframe_test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	config := Config{
		Type:     "postgres",
		Host:     host,
		Port:     port.Int(),
		User:     "veriframe_test",
		Password: "veriframe_test_password",
		Name:     "veriframe_test",
	}

	db, err := NewDB(config)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	cleanup := func() {
		db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}
