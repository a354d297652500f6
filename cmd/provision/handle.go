package main

import (
	"context"
	"log/slog"

	"github.com/Proton-105/zaza-provision/internal/pgexec"
	"github.com/Proton-105/zaza-provision/internal/supabase"
	"github.com/Proton-105/zaza-provision/internal/verify"
	"github.com/Proton-105/zaza-provision/pkg/config"
)

type statementExecutor interface {
	Exec(ctx context.Context, statement string) error
}

// stageHandle holds the clients one stage uses. Stages never share a handle.
type stageHandle struct {
	exec    statementExecutor
	reader  verify.RowReader
	querier verify.Querier
	close   func() error
}

func openHandle(ctx context.Context, cfg *config.Config, log *slog.Logger) (*stageHandle, error) {
	client := supabase.NewClient(cfg.Supabase, log)
	h := &stageHandle{
		exec:   client,
		reader: client,
		close:  func() error { return nil },
	}

	if cfg.UseDirectDatabase() {
		db, err := pgexec.Open(ctx, cfg.Database.DSN, log)
		if err != nil {
			return nil, err
		}
		h.exec = db
		h.querier = db
		h.close = db.Close
	}

	return h, nil
}

func withHandle(ctx context.Context, cfg *config.Config, log *slog.Logger, fn func(h *stageHandle) error) error {
	h, err := openHandle(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := h.close(); cerr != nil {
			log.Warn("failed to close stage handle", slog.Any("error", cerr))
		}
	}()

	return fn(h)
}
