// Package report writes run progress and the final summary to the console.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Proton-105/zaza-provision/internal/i18n"
	"github.com/Proton-105/zaza-provision/internal/pipeline"
	"github.com/Proton-105/zaza-provision/internal/verify"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Summary is the document rendered at the end of a run.
type Summary struct {
	Project    string           `json:"project" yaml:"project"`
	AdminEmail string           `json:"admin_email" yaml:"admin_email"`
	Success    bool             `json:"success" yaml:"success"`
	Run        *pipeline.Report `json:"run" yaml:"run"`
	Verify     *verify.Result   `json:"verify,omitempty" yaml:"verify,omitempty"`
	Error      string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// Printer writes localized progress lines in text mode.
// In json and yaml modes only the final summary is written.
type Printer struct {
	mu     sync.Mutex
	w      io.Writer
	t      i18n.Translator
	format string
}

// NewPrinter constructs a Printer. An unknown format falls back to text.
func NewPrinter(w io.Writer, t i18n.Translator, format string) *Printer {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case FormatJSON, FormatYAML:
	default:
		format = FormatText
	}

	return &Printer{w: w, t: t, format: format}
}

// Format returns the effective output format.
func (p *Printer) Format() string {
	return p.format
}

// Banner prints the title block.
func (p *Printer) Banner() {
	rule := p.t.T("banner.rule")
	p.println(p.t.T("banner.title"))
	p.println(rule)
}

// Say prints a localized message.
func (p *Printer) Say(key string, args ...any) {
	if len(args) == 0 {
		p.println(p.t.T(key))
		return
	}
	p.println(p.t.Tf(key, args...))
}

// Progress prints the per-statement counter.
func (p *Printer) Progress(index, total int, name string) {
	p.Say("schema.step", index, total, name)
}

// Checks prints one line per verification check. email names the promoted user.
func (p *Printer) Checks(result *verify.Result, email string) {
	if result == nil {
		return
	}

	for _, c := range result.Checks {
		switch {
		case c.Name == verify.AdminCheckName && c.Status == verify.StatusSkipped:
			p.Say("verify.admin_skipped")
			p.println(result.AdminQuery)
		case c.Name == verify.AdminCheckName && c.Status == verify.StatusWarning:
			p.Say("verify.admin_warning", c.Detail)
		case c.Name == verify.AdminCheckName && c.Status == verify.StatusOK:
			p.Say("verify.admin_ok", email)
		case c.Status == verify.StatusOK:
			p.Say("verify.table_ok", c.Name)
		}
	}
}

// Final writes the closing lines in text mode or the encoded summary otherwise.
func (p *Printer) Final(s Summary) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode summary: %w", err)
		}
		return enc.Close()
	}

	if s.Success {
		p.Say("verify.done")
		p.Say("verify.ready")
	} else if failed, ok := s.Run.FailedStage(); ok {
		switch failed.Stage {
		case pipeline.StageProvisionSchema:
			p.Say("run.schema_aborted")
		case pipeline.StagePromoteAdmin:
			p.Say("run.admin_aborted")
		}
	}
	p.Say("run.finished")

	return nil
}

func (p *Printer) println(line string) {
	if p.format != FormatText {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	_, _ = fmt.Fprintln(p.w, line)
}
