//go:build integration_pg

package db

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	dbmigrate "github.com/roivaz/repometa/internal/db/migrate"
)

func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mapped.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

func TestRepositoryStore_Integration(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	database, err := NewDatabase(Config{DSN: dsn, DialTimeout: 10 * time.Second})
	if err != nil {
		t.Fatalf("new database: %v", err)
	}
	defer database.Close()

	if err := database.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := dbmigrate.EnsureCurrent(ctx, database.Bun(), "", false); err == nil {
		t.Fatalf("expected pending migrations on a fresh database")
	}
	if err := dbmigrate.EnsureCurrent(ctx, database.Bun(), "", true); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if err := dbmigrate.EnsureCurrent(ctx, database.Bun(), "", false); err != nil {
		t.Fatalf("expected schema to be current: %v", err)
	}

	first, err := FromOutputRecord(projected(t, fullRecord))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	other := first
	other.NameWithOwner, other.Owner, other.Name, other.URL = "a/b", "a", "b", "https://github.com/a/b"
	other.Language, other.License, other.PullRequests = nil, nil, json.RawMessage("5")

	store := NewRepositoryStore(database, WithBatchSize(1))
	n, err := store.UpsertRepositories(ctx, []Repository{first, other})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows written, got %d", n)
	}

	first.Stars = 130000
	if _, err := store.UpsertRepositories(ctx, []Repository{first}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	count, err := store.CountRepositories(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 repositories, got %d", count)
	}

	got, err := store.GetRepository(ctx, "golang/go")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Stars != 130000 {
		t.Fatalf("expected refreshed stars, got %+v", got)
	}
	if got.Language == nil || *got.Language != "Go" {
		t.Fatalf("unexpected language %v", got.Language)
	}

	kinds := map[string]string{"golang/go": "object", "a/b": "number"}
	for name, want := range kinds {
		var got string
		err := database.Bun().NewSelect().
			ColumnExpr("jsonb_typeof(pull_requests)").
			Table("repositories").
			Where("name_with_owner = ?", name).
			Scan(ctx, &got)
		if err != nil {
			t.Fatalf("jsonb_typeof %s: %v", name, err)
		}
		if got != want {
			t.Fatalf("pull_requests of %s stored as %s, want %s", name, got, want)
		}
	}

	missing, err := store.GetRepository(ctx, "nobody/nothing")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown repository, got %+v", missing)
	}
}
