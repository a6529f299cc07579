// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// NativeRunner executes collaborators directly via os/exec.
type NativeRunner struct{}

// NewNativeRunner creates a new native runner.
func NewNativeRunner() *NativeRunner {
	return &NativeRunner{}
}

// Name returns the runner name.
func (r *NativeRunner) Name() string { return string(TypeNative) }

// Available returns whether this runner is available. The native runner only
// depends on the OS process API, so it always is.
func (r *NativeRunner) Available() bool { return true }

// Run executes the spec as a child process and waits for it to exit.
func (r *NativeRunner) Run(ctx context.Context, spec Spec) *Result {
	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)

	if spec.Dir != "" {
		cmd.Dir = spec.Dir
	}

	cmd.Env = append(os.Environ(), spec.Env...)

	var stdout, stderr bytes.Buffer
	if spec.Stdout != nil {
		cmd.Stdout = spec.Stdout
	} else {
		cmd.Stdout = &stdout
	}
	if spec.Stderr != nil {
		cmd.Stderr = spec.Stderr
	} else {
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	result := &Result{
		Output:    stdout.String(),
		ErrOutput: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = 1
			result.Error = fmt.Errorf("failed to execute %s: %w", spec.Path, err)
		}
	}

	return result
}
