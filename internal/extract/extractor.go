package extract

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/roivaz/repometa/internal/logging"
	"github.com/roivaz/repometa/internal/repometa"
)

type Stats struct {
	Scanned  int
	Accepted int
}

// Extractor runs the read, filter, project and write pass over the dataset.
type Extractor struct {
	cfg    Config
	keep   repometa.Predicate
	stdout io.Writer
	log    logging.Logger
}

func NewExtractor(cfg Config, stdout io.Writer, log logging.Logger) *Extractor {
	return &Extractor{
		cfg:    cfg,
		keep:   repometa.MinStars(cfg.StarThreshold),
		stdout: stdout,
		log:    log.WithName("extract"),
	}
}

// Run scans the input file and writes the accepted repositories to the
// output file. Nothing is written if the scan fails or accepts nothing.
func (e *Extractor) Run() (Stats, error) {
	records, stats, err := e.Collect()
	if err != nil {
		return stats, err
	}

	e.log.Info("writing csv", "path", e.cfg.OutputPath, "records", len(records))
	if err := WriteCSV(e.cfg.OutputPath, records); err != nil {
		return stats, err
	}

	e.log.Info("export complete", "scanned", stats.Scanned, "accepted", stats.Accepted, "output", e.cfg.OutputPath)
	return stats, nil
}

// Collect scans the input file and returns the accepted records without
// writing anything. It fails with repometa.ErrEmptyResult when no record
// passes the filter.
func (e *Extractor) Collect() ([]repometa.OutputRecord, Stats, error) {
	f, err := os.Open(e.cfg.InputPath)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	e.log.Info("scanning repositories", "path", e.cfg.InputPath, "min_stars", e.cfg.StarThreshold)
	records, stats, err := e.Scan(f)
	if err != nil {
		return nil, stats, err
	}
	if len(records) == 0 {
		return nil, stats, repometa.ErrEmptyResult
	}
	return records, stats, nil
}

// Scan decodes r, keeping the projection of every record that passes the
// star filter. The first error aborts the scan.
func (e *Extractor) Scan(r io.Reader) ([]repometa.OutputRecord, Stats, error) {
	dec := repometa.NewDecoder(r)
	progress := NewProgress(e.cfg.ProgressEvery, e.stdout, e.log)

	var records []repometa.OutputRecord
	for {
		src, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, e.stats(progress, records), err
		}

		ok, err := e.keep(src)
		if err != nil {
			return nil, e.stats(progress, records), err
		}
		if ok {
			rec, err := repometa.Project(src)
			if err != nil {
				return nil, e.stats(progress, records), err
			}
			records = append(records, rec)
		}

		progress.Tick()
	}

	stats := e.stats(progress, records)
	e.log.Debug("scan finished", "scanned", stats.Scanned, "accepted", stats.Accepted)
	return records, stats, nil
}

func (e *Extractor) stats(p *Progress, records []repometa.OutputRecord) Stats {
	return Stats{Scanned: p.Count(), Accepted: len(records)}
}
