// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"asrenv-cli/internal/config"
	"asrenv-cli/internal/issue"
	"asrenv-cli/internal/provision"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// runProvision is the RunE handler for the root command.
func runProvision(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(cfgFile)
	if err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("%s", formatErrorForDisplay(err, verbose))}
	}
	if settings.Verbose {
		verbose = true
	}

	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{ReportTimestamp: true})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	archOverride := ""
	if len(args) > 0 {
		archOverride = args[0]
	}

	cfg := settings.ProvisionConfig(archOverride)
	pipeline := provision.NewPipeline(cfg, provision.Dependencies{
		Logger:     logger,
		Advisories: cmd.OutOrStdout(),
	})

	result := pipeline.Run(cmd.Context())
	renderResult(cmd, result)

	if !result.Success {
		failed := result.FailedStep()
		return &ExitError{
			Code: 1,
			Err:  fmt.Errorf("provisioning failed at step %s", failed.Name),
		}
	}

	return nil
}

// renderResult prints the per-step summary and, on failure, the diagnostic of
// the failed step.
func renderResult(cmd *cobra.Command, result *provision.Result) {
	out := cmd.OutOrStdout()

	for _, rec := range result.Steps {
		switch rec.Status {
		case provision.StepOK:
			fmt.Fprintf(out, "%s %s", SuccessStyle.Render("✓"), rec.Name)
			if rec.Message != "" {
				fmt.Fprintf(out, " %s", SubtitleStyle.Render("("+rec.Message+")"))
			}
			fmt.Fprintln(out)
		case provision.StepFailed:
			fmt.Fprintf(out, "%s %s\n", ErrorStyle.Render("✗"), rec.Name)
		case provision.StepSkipped:
			fmt.Fprintf(out, "%s %s %s\n", SubtitleStyle.Render("-"), rec.Name, SubtitleStyle.Render("(skipped)"))
		}
	}

	if result.Success {
		fmt.Fprintln(out, SuccessStyle.Render("\nEnvironment ready."))
		return
	}

	if failed := result.FailedStep(); failed != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "\n%s %s\n",
			ErrorStyle.Render("Error:"), failed.Message)
	}
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// use their Format method; in verbose mode the full error chain is shown.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
