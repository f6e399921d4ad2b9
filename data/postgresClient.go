package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/gold_tracker/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

const (
	connAttempts = 10
	connRetryGap = time.Second
	pingTimeout  = 5 * time.Second

	// LedgerTable holds one row per collection snapshot.
	LedgerTable = "ledger_collections"
)

var ErrLedgerSchemaMissing = errors.New("ledger schema missing after migration")

// NewPostgresClient connects, migrates and checks that the ledger table is
// usable. Any failure is fatal at startup.
func NewPostgresClient(cfg *config.Config) *sqlx.DB {
	db, err := connectPostgres(postgresDSN(cfg))
	if err != nil {
		slog.Error("Postgres connect failed", slog.String("host", cfg.Postgres.Host), slog.String("err", err.Error()))
		panic(err)
	}

	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxIdleTime(time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second)

	version, err := migrateLedgerSchema(db, cfg.Postgres.MigrationDir)
	if err != nil {
		slog.Error("ledger schema migration failed", slog.String("dir", cfg.Postgres.MigrationDir), slog.String("err", err.Error()))
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err = checkLedgerSchema(ctx, db); err != nil {
		slog.Error("ledger schema check failed", slog.String("err", err.Error()))
		panic(err)
	}

	slog.Info(
		"Postgres ledger store ready",
		slog.String("host", cfg.Postgres.Host),
		slog.String("db", cfg.Postgres.DbName),
		slog.Uint64("schemaVersion", uint64(version)),
	)
	return db
}

func postgresDSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable password=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.DbName,
		cfg.Postgres.Password,
	)
}

// connectPostgres retries while the database is still starting up.
func connectPostgres(dsn string) (*sqlx.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= connAttempts; attempt++ {
		db, err := sqlx.Connect("pgx", dsn)
		if err == nil {
			return db, nil
		}
		lastErr = err
		slog.Info("Postgres is not ready", slog.Int("attempt", attempt), slog.Int("of", connAttempts), slog.String("err", err.Error()))
		time.Sleep(connRetryGap)
	}
	return nil, fmt.Errorf("postgres unreachable after %d attempts: %w", connAttempts, lastErr)
}

// migrateLedgerSchema applies pending migrations and returns the schema version.
func migrateLedgerSchema(db *sqlx.DB, migrationDir string) (uint, error) {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return 0, fmt.Errorf("migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationDir, "postgres", driver)
	if err != nil {
		return 0, fmt.Errorf("migrate source %s: %w", migrationDir, err)
	}

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrate up: %w", err)
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("migrate version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty, fix it with migrate force", version)
	}
	return version, nil
}

func checkLedgerSchema(ctx context.Context, db *sqlx.DB) error {
	var exists bool
	if err := db.GetContext(ctx, &exists, `SELECT to_regclass($1) IS NOT NULL`, LedgerTable); err != nil {
		return fmt.Errorf("lookup %s: %w", LedgerTable, err)
	}
	if !exists {
		return fmt.Errorf("%w: table %s", ErrLedgerSchemaMissing, LedgerTable)
	}
	return nil
}
