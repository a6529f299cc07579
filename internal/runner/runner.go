// SPDX-License-Identifier: MPL-2.0

// Package runner provides the collaborator execution interface and implementations.
//
// Every external tool the provisioner talks to (the architecture detector, the
// Python interpreter, pip, and the native sub-installer scripts) is invoked
// through a Runner, so tests can substitute a mock and the pipeline never
// shells out implicitly.
package runner

import (
	"context"
	"io"
	"os/exec"
)

// Runner type constants for different execution environments.
const (
	TypeNative  Type = "native"
	TypeVirtual Type = "virtual"
)

type (
	// Type identifies a runner implementation.
	Type string

	// Spec describes a single collaborator invocation. Paths are always passed
	// explicitly; a Spec never depends on ambient state such as an activated
	// virtualenv.
	Spec struct {
		// Path is the executable (or script, for the virtual runner) to run.
		Path string
		// Args are the arguments passed to the executable.
		Args []string
		// Dir is the working directory. Empty means the process working directory.
		Dir string
		// Env contains additional environment variables as KEY=VALUE pairs.
		// The host environment is always inherited.
		Env []string
		// Stdout receives standard output when set; otherwise output is captured
		// into Result.Output.
		Stdout io.Writer
		// Stderr receives standard error when set; otherwise output is captured
		// into Result.ErrOutput.
		Stderr io.Writer
	}

	// Result contains the result of a collaborator invocation.
	Result struct {
		// ExitCode is the exit code of the process.
		ExitCode int
		// Error contains any infrastructure error (start failure, missing
		// executable). A plain non-zero exit leaves Error nil.
		Error error
		// Output contains captured stdout (when Spec.Stdout was nil).
		Output string
		// ErrOutput contains captured stderr (when Spec.Stderr was nil).
		ErrOutput string
	}

	// Runner executes external collaborators.
	Runner interface {
		// Name returns the runner name.
		Name() string
		// Available returns whether this runner can be used on the current system.
		Available() bool
		// Run executes the given spec and blocks until the process exits.
		Run(ctx context.Context, spec Spec) *Result
	}
)

// Succeeded reports whether the invocation completed with exit code zero and
// no infrastructure error.
func (r *Result) Succeeded() bool {
	return r != nil && r.Error == nil && r.ExitCode == 0
}

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code int, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// lookPath is a test seam for exec.LookPath.
//
//nolint:gochecknoglobals // Test seam for exec.LookPath().
var lookPath = exec.LookPath

// ToolOnPath reports whether an executable with the given name is present on
// the host PATH.
func ToolOnPath(name string) bool {
	_, err := lookPath(name)
	return err == nil
}
