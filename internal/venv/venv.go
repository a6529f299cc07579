// SPDX-License-Identifier: MPL-2.0

// Package venv creates and addresses the isolated Python runtime environment
// that all dependencies are installed into.
//
// The environment is wholly owned by the provisioner: it is destroyed and
// rebuilt on every run rather than repaired incrementally, so an interrupted
// run recovers by simply re-running. Nothing here relies on shell activation
// state; callers always address tools inside the environment by explicit path.
package venv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"asrenv-cli/internal/runner"
)

// ErrEnvironmentCreate indicates the environment-creation collaborator failed.
var ErrEnvironmentCreate = errors.New("environment creation failed")

// Builder recreates virtualenvs through the host Python interpreter.
type Builder struct {
	run    runner.Runner
	python string
}

// Option configures a Builder.
type Option func(*Builder)

// WithPython overrides the Python interpreter used to create environments.
func WithPython(python string) Option {
	return func(b *Builder) {
		b.python = python
	}
}

// NewBuilder creates a Builder that invokes the interpreter through run.
func NewBuilder(run runner.Runner, opts ...Option) *Builder {
	b := &Builder{run: run, python: "python3"}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Recreate destroys any existing environment at path and builds a fresh one.
// A missing directory is not an error. A non-zero exit from the interpreter is
// fatal and reported as ErrEnvironmentCreate.
func (b *Builder) Recreate(ctx context.Context, path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("removing existing environment %s: %w", path, err)
	}

	res := b.run.Run(ctx, runner.Spec{Path: b.python, Args: []string{"-m", "venv", path}})
	if res.Error != nil {
		return fmt.Errorf("%w: %s", ErrEnvironmentCreate, res.Error)
	}
	if res.ExitCode != 0 {
		detail := strings.TrimSpace(res.ErrOutput)
		if detail == "" {
			detail = fmt.Sprintf("%s -m venv exited with status %d", b.python, res.ExitCode)
		}
		return fmt.Errorf("%w: %s", ErrEnvironmentCreate, detail)
	}

	return nil
}

// binDir returns the executable directory inside the environment.
func binDir(envDir string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(envDir, "Scripts")
	}
	return filepath.Join(envDir, "bin")
}

// PipPath returns the path to the pip executable inside the environment.
func PipPath(envDir string) string {
	name := "pip3"
	if runtime.GOOS == "windows" {
		name = "pip3.exe"
	}
	return filepath.Join(binDir(envDir), name)
}

// PythonPath returns the path to the Python interpreter inside the environment.
func PythonPath(envDir string) string {
	name := "python3"
	if runtime.GOOS == "windows" {
		name = "python.exe"
	}
	return filepath.Join(binDir(envDir), name)
}
