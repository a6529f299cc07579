// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"path/filepath"
	"testing"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := NewConfig("/src/project")

	if cfg.EnvDir != filepath.Join("/src/project", ".venv") {
		t.Errorf("unexpected env dir: %s", cfg.EnvDir)
	}
	if cfg.DownloadDir != filepath.Join("/src/project", "download") {
		t.Errorf("unexpected download dir: %s", cfg.DownloadDir)
	}
	if cfg.Architecture != "" {
		t.Errorf("expected no architecture override by default, got %q", cfg.Architecture)
	}
	if len(cfg.PipMode) != 1 || cfg.PipMode[0] != "install" {
		t.Errorf("unexpected pip mode: %v", cfg.PipMode)
	}
}

func TestNewConfig_Options(t *testing.T) {
	t.Parallel()

	cfg := NewConfig("/src/project",
		WithArchitecture("armhf"),
		WithEnvDir("/elsewhere/env"),
		WithDownloadDir("/elsewhere/cache"),
		WithPipMode("install", "--upgrade"),
	)

	if cfg.Architecture != "armhf" {
		t.Errorf("unexpected architecture: %s", cfg.Architecture)
	}
	if cfg.EnvDir != "/elsewhere/env" {
		t.Errorf("unexpected env dir: %s", cfg.EnvDir)
	}
	if cfg.DownloadDir != "/elsewhere/cache" {
		t.Errorf("unexpected download dir: %s", cfg.DownloadDir)
	}
	if len(cfg.PipMode) != 2 || cfg.PipMode[1] != "--upgrade" {
		t.Errorf("unexpected pip mode: %v", cfg.PipMode)
	}
}

func TestConfig_Paths(t *testing.T) {
	t.Parallel()

	cfg := NewConfig("/src/project")

	if got := cfg.RequirementsPath(); got != filepath.Join("/src/project", "requirements.txt") {
		t.Errorf("unexpected requirements path: %s", got)
	}
	if got := cfg.DevRequirementsPath(); got != filepath.Join("/src/project", "requirements_dev.txt") {
		t.Errorf("unexpected dev requirements path: %s", got)
	}
	if got := cfg.ScriptPath("install-mitlm.sh"); got != filepath.Join("/src/project", "scripts", "install-mitlm.sh") {
		t.Errorf("unexpected script path: %s", got)
	}
	if got := cfg.CachePath("x.tar.gz"); got != filepath.Join("/src/project", "download", "x.tar.gz") {
		t.Errorf("unexpected cache path: %s", got)
	}
}

func TestWithPipMode_EmptyKeepsDefault(t *testing.T) {
	t.Parallel()

	cfg := NewConfig("/src/project", WithPipMode())

	if len(cfg.PipMode) != 1 || cfg.PipMode[0] != "install" {
		t.Errorf("empty mode must keep the default, got %v", cfg.PipMode)
	}
}
