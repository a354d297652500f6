package main

import (
	"context"
	"log/slog"

	"github.com/Proton-105/zaza-provision/internal/admin"
	"github.com/Proton-105/zaza-provision/internal/pipeline"
	"github.com/Proton-105/zaza-provision/internal/report"
	"github.com/Proton-105/zaza-provision/internal/schema"
	"github.com/Proton-105/zaza-provision/internal/verify"
	"github.com/Proton-105/zaza-provision/pkg/config"
)

// stages holds the three stage bodies of one run. Each opens its own handle.
type stages struct {
	cfg     *config.Config
	log     *slog.Logger
	printer *report.Printer

	verifyResult *verify.Result
}

func (s *stages) provisionSchema(ctx context.Context) error {
	s.printer.Say("schema.start")
	return withHandle(ctx, s.cfg, s.log, func(h *stageHandle) error {
		provisioner, err := schema.NewProvisioner(h.exec, s.log, func(index, total int, st schema.Statement) {
			s.printer.Progress(index, total, st.Name)
		})
		if err != nil {
			return err
		}
		if err := provisioner.Apply(ctx); err != nil {
			s.printer.Say("schema.failed", err)
			return err
		}
		s.printer.Say("schema.done")
		return nil
	})
}

func (s *stages) promoteAdmin(ctx context.Context) error {
	s.printer.Say("admin.start")
	return withHandle(ctx, s.cfg, s.log, func(h *stageHandle) error {
		promoter := admin.NewPromoter(h.exec, s.cfg.Admin.Email, s.log)
		if err := promoter.Promote(ctx); err != nil {
			s.printer.Say("admin.failed", err)
			return err
		}
		s.printer.Say("admin.done", promoter.Email())
		return nil
	})
}

func (s *stages) verify(ctx context.Context) error {
	s.printer.Say("verify.start")
	return withHandle(ctx, s.cfg, s.log, func(h *stageHandle) error {
		result, err := verify.NewVerifier(h.reader, h.querier, s.cfg.Admin.Email, s.log).Verify(ctx)
		s.verifyResult = result
		s.printer.Checks(result, s.cfg.Admin.Email)
		if err != nil {
			s.printer.Say("verify.failed", err)
			return err
		}
		return nil
	})
}

func buildRunner(runID string, s *stages, onError func(ctx context.Context, err error)) *pipeline.Runner {
	runner := pipeline.NewRunner(runID, s.log, onError)
	runner.AddStage(pipeline.StageProvisionSchema, s.provisionSchema)
	runner.AddStage(pipeline.StagePromoteAdmin, s.promoteAdmin)
	runner.AddStage(pipeline.StageVerify, s.verify)
	return runner
}

// execute runs every stage, prints the final report and returns its summary.
func execute(ctx context.Context, runID string, cfg *config.Config, log *slog.Logger, printer *report.Printer, onError func(ctx context.Context, err error)) report.Summary {
	s := &stages{cfg: cfg, log: log, printer: printer}
	runReport := buildRunner(runID, s, onError).Run(ctx)

	summary := report.Summary{
		Project:    cfg.Supabase.URL,
		AdminEmail: cfg.Admin.Email,
		Success:    runReport.Success(),
		Run:        runReport,
		Verify:     s.verifyResult,
	}
	if failed, ok := runReport.FailedStage(); ok {
		summary.Error = failed.Error
	}

	if err := printer.Final(summary); err != nil {
		log.Error("failed to write report", slog.Any("error", err))
	}

	return summary
}

func exitCode(summary report.Summary) int {
	if summary.Success {
		return 0
	}
	return 1
}
