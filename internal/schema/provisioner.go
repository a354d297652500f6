// Package schema provisions the settings tables, their trigger, row-level security and policies.
package schema

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/Proton-105/zaza-provision/pkg/metrics"
)

//go:embed sql/*.up.sql
var embedded embed.FS

const embeddedRoot = "sql"

// Executor sends one SQL statement to the database.
type Executor interface {
	Exec(ctx context.Context, statement string) error
}

// Statement is one provisioning step, named after its file without the .up.sql suffix.
type Statement struct {
	Name string
	SQL  string
}

// ProgressFunc is told about each statement just before it is sent; index is 1-based.
type ProgressFunc func(index, total int, st Statement)

// Provisioner applies statements in lexical order, one call per statement.
// Nothing is rolled back: statements applied before a failure stay applied.
type Provisioner struct {
	exec       Executor
	log        *slog.Logger
	statements []Statement
	progress   ProgressFunc
}

// NewProvisioner builds a Provisioner over the embedded statements.
func NewProvisioner(exec Executor, log *slog.Logger, progress ProgressFunc) (*Provisioner, error) {
	statements, err := Statements()
	if err != nil {
		return nil, err
	}

	return NewProvisionerWithStatements(exec, log, progress, statements), nil
}

// NewProvisionerWithStatements builds a Provisioner over an explicit statement list.
func NewProvisionerWithStatements(exec Executor, log *slog.Logger, progress ProgressFunc, statements []Statement) *Provisioner {
	if log == nil {
		log = slog.Default()
	}

	return &Provisioner{
		exec:       exec,
		log:        log,
		statements: statements,
		progress:   progress,
	}
}

// Apply sends every statement in order and stops at the first failure.
func (p *Provisioner) Apply(ctx context.Context) error {
	total := len(p.statements)
	baseLog := p.log.With(slog.Int("total", total))

	if total == 0 {
		baseLog.Info("no statements to apply")
		return nil
	}

	for i, st := range p.statements {
		index := i + 1
		if err := p.applyStatement(ctx, baseLog, index, total, st); err != nil {
			return fmt.Errorf("apply statement %d/%d %q: %w", index, total, st.Name, err)
		}
	}

	return nil
}

func (p *Provisioner) applyStatement(ctx context.Context, baseLog *slog.Logger, index, total int, st Statement) error {
	scopedLog := baseLog.With(
		slog.Int("index", index),
		slog.String("statement", st.Name),
	)

	if p.progress != nil {
		p.progress(index, total, st)
	}

	body := strings.TrimSpace(st.SQL)
	if len(body) == 0 {
		scopedLog.Warn("statement is empty, skipping")
		metrics.RecordStatement(st.Name, "skipped")
		return nil
	}

	scopedLog.Info("applying statement")

	if err := ctx.Err(); err != nil {
		metrics.RecordStatement(st.Name, "failed")
		return err
	}

	if err := p.exec.Exec(ctx, body); err != nil {
		metrics.RecordStatement(st.Name, "failed")
		return err
	}

	metrics.RecordStatement(st.Name, "ok")
	return nil
}

// Statements returns the embedded provisioning statements in application order.
func Statements() ([]Statement, error) {
	return LoadStatements(embedded, embeddedRoot)
}

// LoadStatements reads every *.up.sql file under root in lexical order.
func LoadStatements(fsys fs.FS, root string) ([]Statement, error) {
	names, err := ListStatements(fsys, root)
	if err != nil {
		return nil, err
	}

	statements := make([]Statement, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, path.Join(root, name))
		if err != nil {
			return nil, fmt.Errorf("read statement %q: %w", name, err)
		}

		statements = append(statements, Statement{
			Name: strings.TrimSuffix(name, upSuffix),
			SQL:  string(data),
		})
	}

	return statements, nil
}

// ListStatements returns all .up.sql files in root in lexical order.
func ListStatements(fsys fs.FS, root string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("read statements dir %q: %w", root, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if isUpStatement(e.Name()) {
			names = append(names, e.Name())
		}
	}

	sort.Strings(names)

	return names, nil
}

const upSuffix = ".up.sql"

func isUpStatement(name string) bool {
	return strings.HasSuffix(name, upSuffix)
}
