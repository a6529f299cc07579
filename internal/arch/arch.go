// SPDX-License-Identifier: MPL-2.0

// Package arch resolves the target CPU architecture for provisioning.
//
// An explicit override always wins and is returned verbatim. Without one, the
// detector asks the host: `dpkg --print-architecture` where available (Debian
// names match the package archive layout), otherwise `uname -m` normalized to
// the same naming scheme.
package arch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"asrenv-cli/internal/runner"
)

// ErrArchitectureUnresolved indicates detection produced no architecture token
// and no override was given.
var ErrArchitectureUnresolved = errors.New("architecture unresolved")

// unameToDebian maps `uname -m` machine names to Debian-style architecture
// identifiers used in dependency archive filenames.
var unameToDebian = map[string]string{
	"x86_64":  "amd64",
	"amd64":   "amd64",
	"aarch64": "arm64",
	"arm64":   "arm64",
	"armv7l":  "armhf",
	"armv7":   "armhf",
	"armv6l":  "armv6l",
	"i386":    "i386",
	"i686":    "i386",
}

// Detector resolves the host architecture via external collaborators.
type Detector struct {
	run   runner.Runner
	probe func(name string) bool
}

// Option configures a Detector.
type Option func(*Detector)

// WithToolProbe overrides the PATH probe used to decide between detection
// commands. Tests use this to avoid depending on the host toolset.
func WithToolProbe(probe func(name string) bool) Option {
	return func(d *Detector) {
		d.probe = probe
	}
}

// NewDetector creates a Detector that invokes detection commands through run.
func NewDetector(run runner.Runner, opts ...Option) *Detector {
	d := &Detector{run: run, probe: runner.ToolOnPath}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Resolve returns the architecture identifier to provision for. When override
// is non-empty it is returned unchanged without invoking any collaborator.
func (d *Detector) Resolve(ctx context.Context, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if d.probe("dpkg") {
		res := d.run.Run(ctx, runner.Spec{Path: "dpkg", Args: []string{"--print-architecture"}})
		if res.Succeeded() {
			if token := firstToken(res.Output); token != "" {
				return token, nil
			}
		}
	}

	res := d.run.Run(ctx, runner.Spec{Path: "uname", Args: []string{"-m"}})
	if res.Error != nil {
		return "", fmt.Errorf("running uname: %w", res.Error)
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%w: uname exited with status %d", ErrArchitectureUnresolved, res.ExitCode)
	}

	machine := firstToken(res.Output)
	if machine == "" {
		return "", ErrArchitectureUnresolved
	}

	if debianName, ok := unameToDebian[machine]; ok {
		return debianName, nil
	}

	// Unknown machine names pass through; the archive lookup will fail with a
	// clearer message than guessing here would produce.
	return machine, nil
}

// firstToken returns the first whitespace-delimited token of s, or "".
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
