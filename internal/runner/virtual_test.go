// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.sh")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVirtualRunner_RunsBuiltins(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "echo hello\n")
	res := NewVirtualRunner().Run(context.Background(), Spec{Path: script})

	if !res.Succeeded() {
		t.Fatalf("expected success, got %+v", res)
	}
	if strings.TrimSpace(res.Output) != "hello" {
		t.Errorf("unexpected output: %q", res.Output)
	}
}

func TestVirtualRunner_PositionalParameters(t *testing.T) {
	t.Parallel()

	script := writeScript(t, `echo "$1|$2"`+"\n")
	res := NewVirtualRunner().Run(context.Background(), Spec{
		Path: script,
		Args: []string{"/cache/dep.tar.gz", "/envs/demo"},
	})

	if !res.Succeeded() {
		t.Fatalf("expected success, got %+v", res)
	}
	if strings.TrimSpace(res.Output) != "/cache/dep.tar.gz|/envs/demo" {
		t.Errorf("unexpected output: %q", res.Output)
	}
}

func TestVirtualRunner_ExitStatusPropagates(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "exit 3\n")
	res := NewVirtualRunner().Run(context.Background(), Spec{Path: script})

	if res.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", res.ExitCode)
	}
	if res.Error != nil {
		t.Errorf("a plain non-zero exit must not set Error, got %v", res.Error)
	}
}

func TestVirtualRunner_MissingScript(t *testing.T) {
	t.Parallel()

	res := NewVirtualRunner().Run(context.Background(), Spec{
		Path: filepath.Join(t.TempDir(), "missing.sh"),
	})

	if res.Succeeded() || res.Error == nil {
		t.Errorf("expected an infrastructure error for a missing script, got %+v", res)
	}
}

func TestVirtualRunner_StdoutWriterReceivesOutput(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "echo streamed\n")
	var buf bytes.Buffer
	res := NewVirtualRunner().Run(context.Background(), Spec{Path: script, Stdout: &buf})

	if !res.Succeeded() {
		t.Fatalf("expected success, got %+v", res)
	}
	if strings.TrimSpace(buf.String()) != "streamed" {
		t.Errorf("unexpected streamed output: %q", buf.String())
	}
}

func TestVirtualRunner_EnvReachesScript(t *testing.T) {
	t.Parallel()

	script := writeScript(t, `echo "mode=$PIP_INSTALL"`+"\n")
	res := NewVirtualRunner().Run(context.Background(), Spec{
		Path: script,
		Env:  []string{"PIP_INSTALL=install --upgrade"},
	})

	if !res.Succeeded() {
		t.Fatalf("expected success, got %+v", res)
	}
	if strings.TrimSpace(res.Output) != "mode=install --upgrade" {
		t.Errorf("unexpected output: %q", res.Output)
	}
}
