package pipeline

import "time"

// Stage represents a pipeline state.
type Stage string

const (
	// StageStart is the state before anything has been sent.
	StageStart Stage = "start"
	// StageProvisionSchema creates tables, trigger, row-level security and policies.
	StageProvisionSchema Stage = "provision_schema"
	// StagePromoteAdmin grants the admin role.
	StagePromoteAdmin Stage = "promote_admin"
	// StageVerify reads back both tables.
	StageVerify Stage = "verify"
	// StageEnd is terminal and reachable from every stage.
	StageEnd Stage = "end"
)

// Status is the outcome of one stage.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// StageResult records how one stage ended.
type StageResult struct {
	Stage    Stage         `json:"stage" yaml:"stage"`
	Status   Status        `json:"status" yaml:"status"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Report is the aggregate outcome of a run.
type Report struct {
	RunID      string        `json:"run_id" yaml:"run_id"`
	StartedAt  time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time     `json:"finished_at" yaml:"finished_at"`
	Stages     []StageResult `json:"stages" yaml:"stages"`
	Final      Stage         `json:"final_stage" yaml:"final_stage"`
}

// Success reports whether every stage ran and succeeded.
func (r *Report) Success() bool {
	if r == nil || len(r.Stages) == 0 {
		return false
	}
	for _, s := range r.Stages {
		if s.Status != StatusOK {
			return false
		}
	}
	return true
}

// FailedStage returns the stage that failed, if any.
func (r *Report) FailedStage() (StageResult, bool) {
	if r == nil {
		return StageResult{}, false
	}
	for _, s := range r.Stages {
		if s.Status == StatusFailed {
			return s, true
		}
	}
	return StageResult{}, false
}
