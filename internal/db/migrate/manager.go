package dbmigrate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/roivaz/repometa/internal/db/migrations"
)

type Manager struct {
	migrator *migrate.Migrator
}

func NewManagerWithFS(db *bun.DB, fsys fs.FS) (*Manager, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	if fsys == nil {
		return nil, errors.New("migrations filesystem is required")
	}

	migs := migrate.NewMigrations()
	if err := migs.Discover(fsys); err != nil {
		return nil, fmt.Errorf("discover migrations: %w", err)
	}

	return &Manager{migrator: migrate.NewMigrator(db, migs)}, nil
}

// NewManager reads migrations from dir, or from the set embedded in the
// binary when dir is empty.
func NewManager(db *bun.DB, dir string) (*Manager, error) {
	if dir == "" {
		return NewManagerWithFS(db, migrations.FS)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve migrations dir: %w", err)
	}
	return NewManagerWithFS(db, os.DirFS(abs))
}

func (m *Manager) Init(ctx context.Context) error {
	return m.migrator.Init(ctx)
}

// MigrateUp applies pending migrations under the migration lock and returns
// the names applied.
func (m *Manager) MigrateUp(ctx context.Context) ([]string, error) {
	if err := m.migrator.Lock(ctx); err != nil {
		return nil, fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() { _ = m.migrator.Unlock(ctx) }()

	group, err := m.migrator.Migrate(ctx)
	if err != nil {
		return nil, err
	}
	if group.IsZero() {
		return nil, nil
	}
	names := make([]string, 0, len(group.Migrations))
	for _, mig := range group.Migrations {
		names = append(names, mig.String())
	}
	return names, nil
}

func (m *Manager) MigrateDownSteps(ctx context.Context, steps int) error {
	if steps < 0 {
		return errors.New("steps must be >= 0")
	}

	status, err := m.migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return err
	}

	applied := status.Applied()
	if len(applied) == 0 {
		return nil
	}

	count := steps
	if steps <= 0 || steps > len(applied) {
		count = len(applied)
	}

	for i := 0; i < count; i++ {
		if _, err := m.migrator.Rollback(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (m *Manager) MigrateDownTo(ctx context.Context, target string) error {
	if target == "" {
		return errors.New("target version is required")
	}

	status, err := m.migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return err
	}

	found := false
	for _, mig := range status {
		if mig.Name == target {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("migration %s not found", target)
	}

	steps := 0
	for _, mig := range status.Applied() {
		if mig.Name > target {
			steps++
		}
	}

	if steps == 0 {
		return nil
	}

	return m.MigrateDownSteps(ctx, steps)
}

func (m *Manager) Status(ctx context.Context) (migrate.MigrationSlice, error) {
	return m.migrator.MigrationsWithStatus(ctx)
}

// Pending lists migrations that have not been applied yet.
func (m *Manager) Pending(ctx context.Context) ([]string, error) {
	status, err := m.Status(ctx)
	if err != nil {
		return nil, err
	}
	var pending []string
	for _, mig := range status {
		if !mig.IsApplied() {
			pending = append(pending, mig.String())
		}
	}
	return pending, nil
}

func (m *Manager) Reset(ctx context.Context) error {
	return m.migrator.Reset(ctx)
}
