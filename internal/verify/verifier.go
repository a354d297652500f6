// Package verify confirms the provisioned tables are reachable and reports the admin role.
package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Proton-105/zaza-provision/internal/admin"
	"github.com/Proton-105/zaza-provision/internal/domain"
)

// Status is the outcome of a single check.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusWarning Status = "warning"
	StatusSkipped Status = "skipped"
)

// AdminCheckName names the admin role check in a Result.
const AdminCheckName = "admin_role"

// RowReader reads a bounded, unfiltered page of a table.
type RowReader interface {
	SelectRows(ctx context.Context, table string, limit int, out any) error
}

// Querier runs a SELECT and decodes the rows as a JSON array.
type Querier interface {
	QueryJSON(ctx context.Context, query string, out any) error
}

// Checkable represents a component that can report its health status.
type Checkable interface {
	HealthCheck(ctx context.Context) error
}

// CheckResult is one line of the verification report.
type CheckResult struct {
	Name   string `json:"name" yaml:"name"`
	Status Status `json:"status" yaml:"status"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Result aggregates every check of one verification.
type Result struct {
	Checks     []CheckResult `json:"checks" yaml:"checks"`
	AdminQuery string        `json:"admin_query" yaml:"admin_query"`
}

// OK reports whether no check failed. Warnings and skips do not count as failures.
func (r *Result) OK() bool {
	if r == nil {
		return false
	}
	for _, c := range r.Checks {
		if c.Status == StatusFailed {
			return false
		}
	}
	return true
}

type namedCheck struct {
	name  string
	check Checkable
}

// Verifier runs table reachability checks in registration order, then the admin check.
type Verifier struct {
	log     *slog.Logger
	checks  []namedCheck
	querier Querier
	email   string
}

// NewVerifier builds a Verifier with a table check for both settings tables.
// querier may be nil, in which case the admin check is reported as skipped.
func NewVerifier(reader RowReader, querier Querier, email string, log *slog.Logger) *Verifier {
	v := &Verifier{
		log:     log,
		querier: querier,
		email:   email,
	}
	if v.log == nil {
		v.log = slog.Default()
	}

	v.AddCheck(domain.NotificationSettingsTable, NewTableCheck[domain.NotificationSettings](reader, domain.NotificationSettingsTable))
	v.AddCheck(domain.GeneralSettingsTable, NewTableCheck[domain.GeneralSettings](reader, domain.GeneralSettingsTable))

	return v
}

// AddCheck registers a checkable component by name.
func (v *Verifier) AddCheck(name string, check Checkable) {
	if name == "" || check == nil {
		return
	}
	v.checks = append(v.checks, namedCheck{name: name, check: check})
}

// Verify stops at the first failing table check and returns its error alongside the partial result.
func (v *Verifier) Verify(ctx context.Context) (*Result, error) {
	result := &Result{AdminQuery: admin.CheckSQL(v.email)}

	for _, c := range v.checks {
		if err := c.check.HealthCheck(ctx); err != nil {
			v.log.Warn("verification check failed", slog.String("check", c.name), slog.Any("error", err))
			result.Checks = append(result.Checks, CheckResult{Name: c.name, Status: StatusFailed, Detail: err.Error()})
			return result, fmt.Errorf("check %s: %w", c.name, err)
		}

		v.log.Info("verification check passed", slog.String("check", c.name))
		result.Checks = append(result.Checks, CheckResult{Name: c.name, Status: StatusOK})
	}

	result.Checks = append(result.Checks, v.checkAdmin(ctx, result.AdminQuery))

	return result, nil
}

func (v *Verifier) checkAdmin(ctx context.Context, query string) CheckResult {
	if v.querier == nil {
		v.log.Info("admin check needs a direct database connection; run it manually", slog.String("query", query))
		return CheckResult{Name: AdminCheckName, Status: StatusSkipped}
	}

	var roles []domain.AdminRole
	if err := v.querier.QueryJSON(ctx, query, &roles); err != nil {
		v.log.Warn("admin check query failed", slog.Any("error", err))
		return CheckResult{Name: AdminCheckName, Status: StatusWarning, Detail: err.Error()}
	}

	if len(roles) == 0 {
		v.log.Warn("admin user not found", slog.String("email", v.email))
		return CheckResult{Name: AdminCheckName, Status: StatusWarning, Detail: fmt.Sprintf("no user with email %s", v.email)}
	}

	for _, r := range roles {
		if !r.IsAdmin() {
			detail := fmt.Sprintf("user %s has app_role=%q user_role=%q", r.Email, r.AppRole, r.UserRole)
			v.log.Warn("admin role not applied", slog.String("email", r.Email))
			return CheckResult{Name: AdminCheckName, Status: StatusWarning, Detail: detail}
		}
	}

	return CheckResult{Name: AdminCheckName, Status: StatusOK}
}

// TableCheck reads at most one row of a table and decodes it into T.
type TableCheck[T any] struct {
	reader RowReader
	table  string
}

// NewTableCheck constructs a TableCheck.
func NewTableCheck[T any](reader RowReader, table string) *TableCheck[T] {
	return &TableCheck[T]{reader: reader, table: table}
}

type validatable interface {
	Validate() error
}

// HealthCheck confirms the table answers a limit-1 read and that any row returned
// satisfies the same bounds as the table constraints.
func (c *TableCheck[T]) HealthCheck(ctx context.Context) error {
	if c == nil || c.reader == nil {
		return errors.New("table check is not configured")
	}

	var rows []T
	if err := c.reader.SelectRows(ctx, c.table, 1, &rows); err != nil {
		return err
	}

	for i := range rows {
		v, ok := any(rows[i]).(validatable)
		if !ok {
			continue
		}
		if err := v.Validate(); err != nil {
			return fmt.Errorf("row %d of %s: %w", i, c.table, err)
		}
	}

	return nil
}
