package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	pgdriver "github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

const applicationName = "repometa"

type Config struct {
	DSN         string
	Debug       bool          // log every query through bundebug
	DialTimeout time.Duration // zero keeps the driver default
}

// Database owns the bun handle used by the repository mirror.
type Database struct {
	bun *bun.DB
}

// NewDatabase prepares a connection pool; nothing is dialed until first use.
func NewDatabase(cfg Config) (*Database, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("postgres DSN is required (set POSTGRES_URL)")
	}

	opts := []pgdriver.Option{
		pgdriver.WithDSN(cfg.DSN),
		pgdriver.WithApplicationName(applicationName),
	}
	if cfg.DialTimeout > 0 {
		opts = append(opts, pgdriver.WithDialTimeout(cfg.DialTimeout))
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(opts...))
	db := bun.NewDB(sqldb, pgdialect.New())

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	return &Database{bun: db}, nil
}

func (d *Database) Bun() *bun.DB {
	return d.bun
}

func (d *Database) Close() error {
	return d.bun.Close()
}

func (d *Database) Ping(ctx context.Context) error {
	return d.bun.PingContext(ctx)
}
