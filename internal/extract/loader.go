package extract

import (
	"context"
	"fmt"

	"github.com/roivaz/repometa/internal/db"
	"github.com/roivaz/repometa/internal/logging"
)

// RepositoryWriter persists converted rows and reports how many were written.
type RepositoryWriter interface {
	UpsertRepositories(ctx context.Context, repos []db.Repository) (int, error)
}

type LoadStats struct {
	Stats
	Written int
}

// Loader mirrors the accepted repositories into a RepositoryWriter instead of
// a CSV file.
type Loader struct {
	extractor *Extractor
	store     RepositoryWriter
	log       logging.Logger
}

func NewLoader(extractor *Extractor, store RepositoryWriter, log logging.Logger) *Loader {
	return &Loader{extractor: extractor, store: store, log: log.WithName("load")}
}

// Load scans the input, converts every accepted record and upserts the rows.
// Nothing is written when the scan or a conversion fails.
func (l *Loader) Load(ctx context.Context) (LoadStats, error) {
	records, stats, err := l.extractor.Collect()
	if err != nil {
		return LoadStats{Stats: stats}, err
	}

	rows := make([]db.Repository, 0, len(records))
	for i, rec := range records {
		row, err := db.FromOutputRecord(rec)
		if err != nil {
			return LoadStats{Stats: stats}, fmt.Errorf("convert record %d: %w", i, err)
		}
		rows = append(rows, row)
	}

	l.log.Info("upserting repositories", "rows", len(rows))
	written, err := l.store.UpsertRepositories(ctx, rows)
	if err != nil {
		return LoadStats{Stats: stats}, fmt.Errorf("upsert repositories: %w", err)
	}

	l.log.Info("load complete", "scanned", stats.Scanned, "accepted", stats.Accepted, "written", written)
	return LoadStats{Stats: stats, Written: written}, nil
}
