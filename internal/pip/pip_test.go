// SPDX-License-Identifier: MPL-2.0

package pip

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"asrenv-cli/internal/runner"
)

type mockRunner struct {
	exitCode  int
	errOutput string
	calls     []runner.Spec
}

func (m *mockRunner) Name() string    { return "mock" }
func (m *mockRunner) Available() bool { return true }

func (m *mockRunner) Run(_ context.Context, spec runner.Spec) *runner.Result {
	m.calls = append(m.calls, spec)
	return &runner.Result{ExitCode: m.exitCode, ErrOutput: m.errOutput}
}

func writeManifest(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "requirements.txt")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUpgrade_ArgsAndMode(t *testing.T) {
	t.Parallel()

	run := &mockRunner{}
	i := NewInstaller(run, "/envs/demo")

	if err := i.Upgrade(context.Background(), "pip"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	call := run.calls[0]
	if !strings.HasPrefix(call.Path, filepath.Join("/envs/demo")) {
		t.Errorf("expected the environment's own pip, got %s", call.Path)
	}
	want := []string{"install", "--upgrade", "pip"}
	if len(call.Args) != len(want) {
		t.Fatalf("unexpected args: %v", call.Args)
	}
	for idx, arg := range want {
		if call.Args[idx] != arg {
			t.Errorf("arg %d: expected %q, got %q", idx, arg, call.Args[idx])
		}
	}
}

func TestWithMode_OverridesModeWords(t *testing.T) {
	t.Parallel()

	run := &mockRunner{}
	i := NewInstaller(run, "/envs/demo", WithMode("install", "--upgrade"))

	if err := i.InstallFile(context.Background(), "/cache/pkg.tar.gz"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	args := run.calls[0].Args
	if args[0] != "install" || args[1] != "--upgrade" || args[2] != "/cache/pkg.tar.gz" {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestInstallManifest_Args(t *testing.T) {
	t.Parallel()

	run := &mockRunner{}
	i := NewInstaller(run, "/envs/demo")

	if err := i.InstallManifest(context.Background(), "/src/requirements.txt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	args := run.calls[0].Args
	if args[len(args)-2] != "-r" || args[len(args)-1] != "/src/requirements.txt" {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestInstallSubset_SelectsByPrefix(t *testing.T) {
	t.Parallel()

	manifest := writeManifest(t,
		"# toolkit libraries",
		"rhasspy-nlu==0.1.5",
		"rhasspy-silence>=0.4",
		"",
		"numpy==1.19.0",
		"requests",
	)

	run := &mockRunner{}
	i := NewInstaller(run, "/envs/demo")

	if err := i.InstallSubset(context.Background(), manifest, "rhasspy-", "/cache"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	args := run.calls[0].Args
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-f /cache") {
		t.Errorf("expected find-links location in args: %v", args)
	}
	if !strings.Contains(joined, "rhasspy-nlu==0.1.5") || !strings.Contains(joined, "rhasspy-silence>=0.4") {
		t.Errorf("expected both toolkit entries selected: %v", args)
	}
	if strings.Contains(joined, "numpy") || strings.Contains(joined, "requests") {
		t.Errorf("expected non-matching entries excluded: %v", args)
	}
}

func TestInstallSubset_NoMatchesIsNoOp(t *testing.T) {
	t.Parallel()

	manifest := writeManifest(t, "numpy==1.19.0")

	run := &mockRunner{}
	i := NewInstaller(run, "/envs/demo")

	if err := i.InstallSubset(context.Background(), manifest, "rhasspy-", "/cache"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(run.calls) != 0 {
		t.Errorf("expected no pip invocation without matches, got %d", len(run.calls))
	}
}

func TestInvoke_NonZeroExitWrapsSentinel(t *testing.T) {
	t.Parallel()

	run := &mockRunner{exitCode: 1, errOutput: "ERROR: No matching distribution found for nope\n"}
	i := NewInstaller(run, "/envs/demo")

	err := i.Upgrade(context.Background(), "nope")
	if !errors.Is(err, ErrDependencyInstall) {
		t.Fatalf("expected ErrDependencyInstall, got %v", err)
	}
	if !strings.Contains(err.Error(), "No matching distribution") {
		t.Errorf("expected installer diagnostic in error, got %v", err)
	}
}

func TestReadManifest_SkipsBlanksAndComments(t *testing.T) {
	t.Parallel()

	manifest := writeManifest(t,
		"# header",
		"",
		"  rhasspy-nlu==0.1.5  ",
		"numpy",
	)

	specs, err := ReadManifest(manifest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(specs) != 2 || specs[0] != "rhasspy-nlu==0.1.5" || specs[1] != "numpy" {
		t.Errorf("unexpected specs: %v", specs)
	}
}

func TestSpecName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"rhasspy-nlu==0.1.5":   "rhasspy-nlu",
		"numpy>=1.19,<2":       "numpy",
		"requests[socks]":      "requests",
		"pydash~=4.9":          "pydash",
		"tok ; python_version": "tok",
		"plain":                "plain",
	}

	for spec, want := range cases {
		if got := SpecName(spec); got != want {
			t.Errorf("SpecName(%q): expected %q, got %q", spec, want, got)
		}
	}
}
