// SPDX-License-Identifier: MPL-2.0

// Package nativeinstall runs the opaque sub-installer scripts that unpack
// prebuilt native components (mitlm, phonetisaurus) into the environment.
//
// Each sub-installer is a collaborator with a two-argument contract: it
// receives the component archive path and the install directory, and signals
// success solely through a zero exit code.
package nativeinstall

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"asrenv-cli/internal/runner"
)

// ErrNativeInstall indicates a sub-installer exited non-zero.
var ErrNativeInstall = errors.New("native component install failed")

// Installer invokes sub-installer scripts.
type Installer struct {
	run runner.Runner
}

// NewInstaller creates an Installer that executes scripts through run.
// runner.ScriptRunner is the usual choice: native shell when the host has
// one, built-in interpreter otherwise.
func NewInstaller(run runner.Runner) *Installer {
	return &Installer{run: run}
}

// Install runs the sub-installer at scriptPath with (archivePath, installDir).
// Any non-zero exit is fatal to the provisioning pipeline.
func (i *Installer) Install(ctx context.Context, scriptPath, archivePath, installDir string) error {
	res := i.run.Run(ctx, runner.Spec{
		Path: scriptPath,
		Args: []string{archivePath, installDir},
	})
	if res.Error != nil {
		return fmt.Errorf("%w: %s: %s", ErrNativeInstall, filepath.Base(scriptPath), res.Error)
	}
	if res.ExitCode != 0 {
		detail := strings.TrimSpace(res.ErrOutput)
		if detail != "" {
			return fmt.Errorf("%w: %s exited with status %d: %s",
				ErrNativeInstall, filepath.Base(scriptPath), res.ExitCode, detail)
		}
		return fmt.Errorf("%w: %s exited with status %d",
			ErrNativeInstall, filepath.Base(scriptPath), res.ExitCode)
	}

	return nil
}
