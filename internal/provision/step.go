// SPDX-License-Identifier: MPL-2.0

package provision

import "context"

// Step outcome states recorded in a Result.
const (
	// StepOK means the step completed successfully.
	StepOK StepStatus = "ok"
	// StepFailed means the step reported an error.
	StepFailed StepStatus = "failed"
	// StepSkipped means the step never ran because a required step before it
	// failed.
	StepSkipped StepStatus = "skipped"
)

type (
	// StepStatus is the recorded outcome of a single step.
	StepStatus string

	// Step is a named unit of provisioning work. Steps form an ordered
	// sequence; order is significant because each step depends on state left
	// by the previous one.
	Step struct {
		// Name identifies the step in logs and in the Result.
		Name string
		// Required marks steps whose failure aborts the pipeline. Optional
		// steps log their failure and the run continues.
		Required bool
		// Run performs the work and returns a human-readable outcome message.
		Run func(ctx context.Context) (string, error)
	}

	// StepRecord is the outcome of one executed (or skipped) step.
	StepRecord struct {
		Name    string
		Status  StepStatus
		Message string
	}

	// Result summarizes a full pipeline run. Success is false iff a required
	// step failed; optional-step failures never affect it.
	Result struct {
		Steps   []StepRecord
		Success bool
	}
)

// Attempted returns the records of steps that actually ran (ok or failed),
// excluding steps skipped by an earlier required failure.
func (r *Result) Attempted() []StepRecord {
	var out []StepRecord
	for _, rec := range r.Steps {
		if rec.Status != StepSkipped {
			out = append(out, rec)
		}
	}
	return out
}

// FailedStep returns the record of the first failed step, or nil.
func (r *Result) FailedStep() *StepRecord {
	for i := range r.Steps {
		if r.Steps[i].Status == StepFailed {
			return &r.Steps[i]
		}
	}
	return nil
}
