// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the asrenv CLI.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd is the base command. Provisioning is the whole program, so the
	// root runs the pipeline directly; the single optional positional argument
	// is the architecture override.
	rootCmd = &cobra.Command{
		Use:   "asrenv [arch]",
		Short: "Provision the speech-recognition development environment",
		Long: TitleStyle.Render("asrenv") + SubtitleStyle.Render(" - speech-stack environment provisioner") + `

asrenv rebuilds an isolated Python environment and installs everything the
speech-recognition toolkit needs: the pocketsphinx native binding (cached in
the download directory), the toolkit libraries and manifest dependencies, and
the prebuilt mitlm and phonetisaurus components via their sub-installers.

The run is idempotent: the environment is destroyed and recreated every time,
and previously downloaded archives are reused from the cache.

` + SubtitleStyle.Render("Examples:") + `
  asrenv              Provision using the detected host architecture
  asrenv amd64        Provision for an explicit architecture
  PIP_INSTALL='install --upgrade' asrenv
                      Switch the package installer into upgrade mode`,
		Args: cobra.MaximumNArgs(1),
		RunE: runProvision,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/asrenv/config.toml)")
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
