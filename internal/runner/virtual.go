// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// VirtualRunner executes shell scripts with the mvdan/sh interpreter. It lets
// the sub-installer scripts run on hosts without a usable /bin/sh; external
// commands inside the script still execute natively.
type VirtualRunner struct{}

// NewVirtualRunner creates a new virtual runner.
func NewVirtualRunner() *VirtualRunner {
	return &VirtualRunner{}
}

// Name returns the runner name.
func (r *VirtualRunner) Name() string { return string(TypeVirtual) }

// Available returns whether this runner is available. The interpreter is
// built in, so it always is.
func (r *VirtualRunner) Available() bool { return true }

// Run parses the script at spec.Path and interprets it. spec.Args are exposed
// to the script as positional parameters ($1, $2, ...).
func (r *VirtualRunner) Run(ctx context.Context, spec Spec) *Result {
	f, err := os.Open(spec.Path)
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("failed to open script %s: %w", spec.Path, err))
	}
	defer func() { _ = f.Close() }() // read-only file handle

	prog, err := syntax.NewParser().Parse(f, spec.Path)
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("failed to parse script %s: %w", spec.Path, err))
	}

	var stdout, stderr bytes.Buffer
	var outW io.Writer = &stdout
	var errW io.Writer = &stderr
	if spec.Stdout != nil {
		outW = spec.Stdout
	}
	if spec.Stderr != nil {
		errW = spec.Stderr
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(append(os.Environ(), spec.Env...)...)),
		interp.StdIO(nil, outW, errW),
	}
	if spec.Dir != "" {
		opts = append(opts, interp.Dir(spec.Dir))
	}

	// Prepend "--" so arguments starting with "-" are not interpreted as
	// shell options by interp.Params.
	if len(spec.Args) > 0 {
		params := append([]string{"--"}, spec.Args...)
		opts = append(opts, interp.Params(params...))
	}

	sh, err := interp.New(opts...)
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("failed to create interpreter: %w", err))
	}

	result := &Result{}
	if err := sh.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			result.ExitCode = int(exitStatus)
		} else {
			result.ExitCode = 1
			result.Error = fmt.Errorf("script execution failed: %w", err)
		}
	}

	result.Output = stdout.String()
	result.ErrOutput = stderr.String()
	return result
}

// ScriptRunner selects the runner used for sub-installer shell scripts: native
// execution through the host shell when one exists, otherwise the built-in
// interpreter.
func ScriptRunner() Runner {
	if ToolOnPath("sh") || ToolOnPath("bash") {
		return &shellScriptRunner{native: NewNativeRunner()}
	}
	return NewVirtualRunner()
}

// shellScriptRunner runs a script through the host shell so scripts without an
// executable bit still work.
type shellScriptRunner struct {
	native *NativeRunner
}

func (r *shellScriptRunner) Name() string    { return string(TypeNative) }
func (r *shellScriptRunner) Available() bool { return true }

func (r *shellScriptRunner) Run(ctx context.Context, spec Spec) *Result {
	shell := "sh"
	if !ToolOnPath("sh") {
		shell = "bash"
	}
	shellSpec := spec
	shellSpec.Path = shell
	shellSpec.Args = append([]string{spec.Path}, spec.Args...)
	return r.native.Run(ctx, shellSpec)
}
