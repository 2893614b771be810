package database

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"todoapi/internal/adapter/database/postgres"
	pgrepository "todoapi/internal/adapter/database/postgres/repository"
	"todoapi/internal/adapter/database/sqlite"
	sqliterepository "todoapi/internal/adapter/database/sqlite/repository"
	"todoapi/internal/core/port"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Store bundles the repository with the handle it runs on.
type Store struct {
	Dialect  Dialect
	TodoRepo port.TodoRepository
	Health   port.HealthChecker
	close    func() error
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}

	return s.close()
}

type Options struct {
	URL           string
	RunMigrations bool
	Telemetry     port.Telemetry
	QueryLogger   *zerolog.Logger
}

// ParseURL resolves the dialect of a connection string and the DSN handed to
// its driver. postgres:// and postgresql:// select PostgreSQL, everything
// else is a SQLite path with an optional sqlite:// or sqlite3:// prefix.
func ParseURL(url string) (Dialect, string) {
	lower := strings.ToLower(url)

	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DialectPostgres, url
	}

	for _, prefix := range []string{"sqlite3://", "sqlite://"} {
		if strings.HasPrefix(lower, prefix) {
			return DialectSQLite, url[len(prefix):]
		}
	}

	return DialectSQLite, url
}

func Open(ctx context.Context, opts Options) (*Store, error) {
	dialect, dsn := ParseURL(opts.URL)

	if dialect == DialectPostgres {
		db, err := postgres.NewDB(ctx, postgres.Config{URL: dsn, RunMigrations: opts.RunMigrations})

		if err != nil {
			return nil, err
		}

		return &Store{
			Dialect:  dialect,
			TodoRepo: pgrepository.NewTodoRepository(db),
			Health:   db,
			close:    db.Close,
		}, nil
	}

	db, err := sqlite.NewDB(ctx, sqlite.Config{
		DSN:           dsn,
		RunMigrations: opts.RunMigrations,
		QueryLogger:   opts.QueryLogger,
	})

	if err != nil {
		return nil, err
	}

	return &Store{
		Dialect:  dialect,
		TodoRepo: sqliterepository.NewTodoRepository(db, opts.Telemetry),
		Health:   db,
		close:    db.Close,
	}, nil
}
