// SPDX-License-Identifier: MPL-2.0

// Package pip drives the package installer inside the provisioned environment.
//
// Every operation runs the environment's own pip by explicit path (never a
// global pip resolved from PATH), with a configurable mode word list so the
// whole run can be switched from plain installs to upgrades via PIP_INSTALL.
package pip

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"asrenv-cli/internal/runner"
	"asrenv-cli/internal/venv"
)

// ErrDependencyInstall indicates the package installer exited non-zero.
var ErrDependencyInstall = errors.New("dependency install failed")

type (
	// Installer invokes pip for a single environment directory.
	Installer struct {
		run    runner.Runner
		envDir string
		mode   []string
	}

	// Option configures an Installer.
	Option func(*Installer)
)

// WithMode overrides the pip mode words (default: "install"). The value of
// the PIP_INSTALL environment variable is split into words and passed here,
// e.g. "install --upgrade".
func WithMode(words ...string) Option {
	return func(i *Installer) {
		if len(words) > 0 {
			i.mode = words
		}
	}
}

// NewInstaller creates an Installer for the environment at envDir.
func NewInstaller(run runner.Runner, envDir string, opts ...Option) *Installer {
	i := &Installer{
		run:    run,
		envDir: envDir,
		mode:   []string{"install"},
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Upgrade upgrades the named packages to their latest versions.
func (i *Installer) Upgrade(ctx context.Context, names ...string) error {
	args := append([]string{"--upgrade"}, names...)
	return i.invoke(ctx, args...)
}

// InstallFile installs a dependency from a local archive file.
func (i *Installer) InstallFile(ctx context.Context, path string) error {
	return i.invoke(ctx, path)
}

// InstallManifest installs every entry of the manifest file.
func (i *Installer) InstallManifest(ctx context.Context, manifestPath string) error {
	return i.invoke(ctx, "-r", manifestPath)
}

// InstallSubset installs the manifest entries whose package name starts with
// namePrefix, using findLinks as an additional package location so entries
// already present in the download cache resolve without network access.
// Selecting zero entries is a successful no-op.
func (i *Installer) InstallSubset(ctx context.Context, manifestPath, namePrefix, findLinks string) error {
	specs, err := ReadManifest(manifestPath)
	if err != nil {
		return err
	}

	var selected []string
	for _, spec := range specs {
		if strings.HasPrefix(SpecName(spec), namePrefix) {
			selected = append(selected, spec)
		}
	}
	if len(selected) == 0 {
		return nil
	}

	args := append([]string{"-f", findLinks}, selected...)
	return i.invoke(ctx, args...)
}

// invoke runs the environment's pip with the configured mode words followed
// by args.
func (i *Installer) invoke(ctx context.Context, args ...string) error {
	full := append(append([]string{}, i.mode...), args...)

	res := i.run.Run(ctx, runner.Spec{Path: venv.PipPath(i.envDir), Args: full})
	if res.Error != nil {
		return fmt.Errorf("%w: %s", ErrDependencyInstall, res.Error)
	}
	if res.ExitCode != 0 {
		detail := lastLine(res.ErrOutput)
		if detail == "" {
			detail = lastLine(res.Output)
		}
		if detail == "" {
			return fmt.Errorf("%w: pip exited with status %d", ErrDependencyInstall, res.ExitCode)
		}
		return fmt.Errorf("%w: pip exited with status %d: %s", ErrDependencyInstall, res.ExitCode, detail)
	}

	return nil
}

// lastLine returns the last non-blank line of s, or "".
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for idx := len(lines) - 1; idx >= 0; idx-- {
		if line := strings.TrimSpace(lines[idx]); line != "" {
			return line
		}
	}
	return ""
}
