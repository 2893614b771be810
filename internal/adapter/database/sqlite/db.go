package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	migrations "todoapi/db"
)

const DefaultPath = "todos.db"

type Config struct {
	// DSN is a mattn/go-sqlite3 data source: a file path, ":memory:" or a
	// "file:" URI.
	DSN           string
	RunMigrations bool
	// QueryLogger receives one entry per statement. Nil disables statement logging.
	QueryLogger *zerolog.Logger
	// MeterProvider receives connection pool metrics. Defaults to the global
	// provider.
	MeterProvider metric.MeterProvider
}

type DB struct {
	*sql.DB
	QueryBuilder *squirrel.StatementBuilderType
}

func New(cfg Config) (*sql.DB, error) {
	dsn := cfg.DSN

	if dsn == "" {
		dsn = DefaultPath
	}

	// otelsql reports pool stats for every handle it opens, so the handle
	// that only lends its driver reports into a no-op meter.
	tracedDB, err := otelsql.Open("sqlite3", dsn,
		otelsql.WithDBSystem("sqlite"),
		otelsql.WithDBName("todoapi"),
		otelsql.WithMeterProvider(noop.NewMeterProvider()),
	)

	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	logger := zerolog.Nop()

	if cfg.QueryLogger != nil {
		logger = *cfg.QueryLogger
	}

	db := sqldblogger.OpenDriver(dsn, tracedDB.Driver(), zerologadapter.New(logger))

	// the traced handle only lent its driver and never opened a connection
	tracedDB.Close()

	// SQLite has a single writer; one connection also keeps ":memory:"
	// databases alive for the lifetime of the pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	meterProvider := cfg.MeterProvider

	if meterProvider == nil {
		meterProvider = otel.GetMeterProvider()
	}

	otelsql.ReportDBStatsMetrics(db,
		otelsql.WithDBSystem("sqlite"),
		otelsql.WithDBName("todoapi"),
		otelsql.WithMeterProvider(meterProvider),
	)

	return db, nil
}

func NewDB(ctx context.Context, cfg Config) (*DB, error) {
	sqlDB, err := New(cfg)

	if err != nil {
		return nil, err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if cfg.RunMigrations {
		if err := RunMigrations(sqlDB); err != nil {
			sqlDB.Close()
			return nil, err
		}
	}

	queryBuilder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

	return &DB{
		DB:           sqlDB,
		QueryBuilder: &queryBuilder,
	}, nil
}

func RunMigrations(db *sql.DB) error {
	source, err := iofs.New(migrations.Migrations, migrations.SQLiteMigrations)

	if err != nil {
		return fmt.Errorf("load sqlite migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})

	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)

	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
