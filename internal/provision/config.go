// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"path/filepath"
)

type (
	// Config holds the provisioning inputs. It is constructed once at process
	// start and read-only afterwards; every collaborator receives the paths it
	// needs explicitly instead of relying on ambient activation state.
	Config struct {
		// Architecture is the explicit architecture override. Empty means
		// detect from the host.
		Architecture string

		// SourceDir is the project directory holding the dependency manifests
		// and the sub-installer scripts.
		SourceDir string

		// EnvDir is the isolated environment directory. Wholly owned by the
		// provisioner and recreated on every run.
		EnvDir string

		// DownloadDir is the download cache. Append-only; entries persist
		// across runs keyed by fixed filename.
		DownloadDir string

		// PipMode is the mode word list passed to the package installer
		// (default "install"; overridden via PIP_INSTALL).
		PipMode []string
	}

	// ConfigOption is a functional option for building a Config.
	ConfigOption func(*Config)
)

// WithArchitecture sets the architecture override.
func WithArchitecture(archID string) ConfigOption {
	return func(c *Config) {
		c.Architecture = archID
	}
}

// WithEnvDir overrides the environment directory.
func WithEnvDir(dir string) ConfigOption {
	return func(c *Config) {
		c.EnvDir = dir
	}
}

// WithDownloadDir overrides the download cache directory.
func WithDownloadDir(dir string) ConfigOption {
	return func(c *Config) {
		c.DownloadDir = dir
	}
}

// WithPipMode overrides the package-installer mode words.
func WithPipMode(words ...string) ConfigOption {
	return func(c *Config) {
		if len(words) > 0 {
			c.PipMode = words
		}
	}
}

// NewConfig builds a Config rooted at sourceDir with conventional defaults:
// the environment lives in .venv and the download cache in download, both
// under sourceDir.
func NewConfig(sourceDir string, opts ...ConfigOption) Config {
	c := Config{
		SourceDir:   sourceDir,
		EnvDir:      filepath.Join(sourceDir, ".venv"),
		DownloadDir: filepath.Join(sourceDir, "download"),
		PipMode:     []string{"install"},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// RequirementsPath returns the primary dependency manifest path.
func (c Config) RequirementsPath() string {
	return filepath.Join(c.SourceDir, "requirements.txt")
}

// DevRequirementsPath returns the development dependency manifest path.
func (c Config) DevRequirementsPath() string {
	return filepath.Join(c.SourceDir, "requirements_dev.txt")
}

// ScriptPath returns the path of a sub-installer script under SourceDir.
func (c Config) ScriptPath(name string) string {
	return filepath.Join(c.SourceDir, "scripts", name)
}

// CachePath returns the download-cache path for a fixed archive filename.
func (c Config) CachePath(filename string) string {
	return filepath.Join(c.DownloadDir, filename)
}
