package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
)

const defaultBatchSize = 500

// upsertColumns are overwritten when a repository is loaded again.
var upsertColumns = []string{
	"owner", "name", "url", "stars", "forks", "is_archived", "language",
	"disk_usage_kb", "pull_requests", "watchers", "created_at", "pushed_at", "license",
}

type RepositoryStore struct {
	BatchSize int
	db        *bun.DB
}

func NewRepositoryStore(database *Database, opts ...func(*RepositoryStore)) *RepositoryStore {
	store := &RepositoryStore{BatchSize: defaultBatchSize, db: database.Bun()}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func WithBatchSize(n int) func(*RepositoryStore) {
	return func(s *RepositoryStore) {
		if n > 0 {
			s.BatchSize = n
		}
	}
}

// UpsertRepositories inserts or refreshes repos in batches inside a single
// transaction and returns the number of rows written. When the same
// repository appears more than once the last occurrence wins.
func (s *RepositoryStore) UpsertRepositories(ctx context.Context, repos []Repository) (int, error) {
	rows := dedupeByName(repos)
	if len(rows) == 0 {
		return 0, nil
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, batch := range batches(rows, s.BatchSize) {
			q := tx.NewInsert().Model(&batch).On("CONFLICT (name_with_owner) DO UPDATE")
			for _, col := range upsertColumns {
				q = q.Set("? = EXCLUDED.?", bun.Ident(col), bun.Ident(col))
			}
			q = q.Set("loaded_at = current_timestamp")
			if _, err := q.Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *RepositoryStore) GetRepository(ctx context.Context, nameWithOwner string) (*Repository, error) {
	repo := new(Repository)
	err := s.db.NewSelect().Model(repo).Where("name_with_owner = ?", nameWithOwner).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return repo, nil
}

func (s *RepositoryStore) CountRepositories(ctx context.Context) (int, error) {
	return s.db.NewSelect().Model((*Repository)(nil)).Count(ctx)
}

func dedupeByName(repos []Repository) []Repository {
	pos := make(map[string]int, len(repos))
	out := make([]Repository, 0, len(repos))
	for _, r := range repos {
		if i, ok := pos[r.NameWithOwner]; ok {
			out[i] = r
			continue
		}
		pos[r.NameWithOwner] = len(out)
		out = append(out, r)
	}
	return out
}

func batches(rows []Repository, size int) [][]Repository {
	if size <= 0 {
		size = defaultBatchSize
	}
	var out [][]Repository
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		out = append(out, rows[start:end])
	}
	return out
}
