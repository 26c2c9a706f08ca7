package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hr-approvals/internal/db/dbstore"
)

// Options selects and sizes the backing store.
type Options struct {
	// PostgresDSN, when set, selects PostgreSQL; otherwise SQLitePath is used.
	PostgresDSN string
	SQLitePath  string
	MaxConns    int
}

// Pools holds the connection pools of an opened store. On PostgreSQL Write
// and Read are the same pool.
type Pools struct {
	Write   *sql.DB
	Read    *sql.DB
	Dialect dbstore.Dialect
}

// Open opens the store described by opts and applies pending migrations.
func Open(ctx context.Context, opts Options) (*Pools, error) {
	var p Pools
	switch {
	case opts.PostgresDSN != "":
		pg, err := OpenPostgres(ctx, opts.PostgresDSN, opts.MaxConns)
		if err != nil {
			return nil, err
		}
		p = Pools{Write: pg, Read: pg, Dialect: dbstore.DialectPostgres}
	case opts.SQLitePath != "":
		w, r, err := OpenSQLitePair(opts.SQLitePath, opts.MaxConns)
		if err != nil {
			return nil, err
		}
		p = Pools{Write: w, Read: r, Dialect: dbstore.DialectSQLite}
	default:
		return nil, errors.New("no database configured: set a postgres DSN or a sqlite path")
	}

	if err := RunMigrations(p.Write, p.Dialect); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &p, nil
}

// Close closes both pools.
func (p *Pools) Close() error {
	err := p.Write.Close()
	if p.Read != p.Write {
		err = errors.Join(err, p.Read.Close())
	}
	return err
}
