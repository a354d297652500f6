// Package pgexec runs provisioning SQL over a direct Postgres connection instead of the RPC endpoint.
package pgexec

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/lib/pq"

	apperrors "github.com/Proton-105/zaza-provision/internal/errors"
)

// Executor applies each statement in its own transaction; statements are never grouped.
type Executor struct {
	db  *sql.DB
	log *slog.Logger
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string, log *slog.Logger) (*Executor, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, apperrors.NewDatabaseError("open", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, apperrors.NewDatabaseError("ping", err)
	}

	return New(db, log), nil
}

// New wraps an existing handle.
func New(db *sql.DB, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}

	return &Executor{db: db, log: log}
}

// Exec runs statement inside a single transaction.
func (e *Executor) Exec(ctx context.Context, statement string) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewDatabaseError("begin transaction", err)
	}

	if _, execErr := tx.ExecContext(ctx, statement); execErr != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			e.log.Error("rollback error", "error", rbErr)
		}
		return apperrors.NewDatabaseError("execute statement", execErr)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			e.log.Error("rollback error after commit failure", "error", rbErr)
		}
		return apperrors.NewDatabaseError("commit statement", commitErr)
	}

	return nil
}

// QueryJSON runs a SELECT and decodes its rows, aggregated server-side into a JSON array, into out.
func (e *Executor) QueryJSON(ctx context.Context, query string, out any) error {
	wrapped := fmt.Sprintf("SELECT coalesce(json_agg(q), '[]'::json) FROM (%s) q", trimStatement(query))

	var payload []byte
	if err := e.db.QueryRowContext(ctx, wrapped).Scan(&payload); err != nil {
		return apperrors.NewDatabaseError("query", err)
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return apperrors.NewDatabaseError("decode query result", err)
	}

	return nil
}

// Close releases the connection pool.
func (e *Executor) Close() error {
	if e == nil || e.db == nil {
		return nil
	}
	return e.db.Close()
}

func trimStatement(query string) string {
	return strings.TrimRight(strings.TrimSpace(query), ";")
}
