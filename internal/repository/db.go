package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/vsplit/vsplit/internal/common"
)

// Store wraps the session database. Two backends are supported: a shared
// Postgres via pgx when a DSN is configured, and an embedded SQLite file for
// single-host deployments. Both speak database/sql and both accept $N
// placeholders, so the query layer does not branch on the driver.
type Store struct {
	DB     *sql.DB
	pool   *pgxpool.Pool // nil for sqlite
	logger *slog.Logger
}

// Open connects to the configured backend and applies the schema.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{logger: logger}
	if cfg.DSN != "" {
		logger.Info("connecting to database", "backend", "postgres")
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			logger.Error("failed to parse database config", "error", err)
			return nil, err
		}
		pc.MaxConns = cfg.MaxConns
		pc.MinConns = cfg.MinConns
		pc.MaxConnLifetime = cfg.MaxConnLifetime
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
		pc.ConnConfig.RuntimeParams["application_name"] = "vsplit"
		if cfg.StatementTimeout > 0 {
			pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
		}

		dialCtx := ctx
		if cfg.DialTimeout > 0 {
			var cancel context.CancelFunc
			dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
			defer cancel()
		}
		pool, err := pgxpool.NewWithConfig(dialCtx, pc)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			return nil, err
		}
		s.pool = pool
		s.DB = stdlib.OpenDBFromPool(pool)
	} else {
		logger.Info("connecting to database", "backend", "sqlite", "path", cfg.SQLitePath)
		db, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			logger.Error("failed to open sqlite database", "error", err)
			return nil, err
		}
		// modernc sqlite serializes writes; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		s.DB = db
	}

	if err := s.migrate(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	logger.Info("successfully connected to database")
	return s, nil
}

// migrate applies the schema. The DDL sticks to the dialect intersection of
// Postgres and SQLite.
func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			document   TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS history (
			id          TEXT PRIMARY KEY,
			session_id  TEXT NOT NULL,
			group_name  TEXT NOT NULL,
			bill_date   TEXT NOT NULL,
			total       DOUBLE PRECISION NOT NULL,
			recorded_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_recorded_at ON history (recorded_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// HealthCheck pings the backend to catch connection issues early.
func (s *Store) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := s.DB.PingContext(ctx); err != nil {
		s.logger.Error("database ping failed", "error", err)
		return err
	}
	return nil
}

// Close closes the database connections gracefully.
func (s *Store) Close() {
	s.logger.Info("closing database connections")
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			s.logger.Error("failed to close database", "error", err)
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
	s.logger.Info("database connections closed")
}
