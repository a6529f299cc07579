// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"asrenv-cli/internal/issue"
	"asrenv-cli/internal/provision"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "asrenv"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
	// envPrefix namespaces asrenv environment variables (ASRENV_ENV_DIR etc.).
	envPrefix = "ASRENV"
)

// Settings are the resolved configuration values for a provisioning run.
type Settings struct {
	// SourceDir is the project directory with manifests and installer scripts.
	SourceDir string `mapstructure:"source_dir"`

	// EnvDir is the environment directory. Empty means <source_dir>/.venv.
	EnvDir string `mapstructure:"env_dir"`

	// DownloadDir is the download cache. Empty means <source_dir>/download.
	DownloadDir string `mapstructure:"download_dir"`

	// PipInstall is the installer mode string (the PIP_INSTALL contract of
	// the original shell tooling, e.g. "install" or "install --upgrade").
	PipInstall string `mapstructure:"pip_install"`

	// Verbose enables debug logging.
	Verbose bool `mapstructure:"verbose"`
}

// ConfigDir returns the asrenv configuration directory using platform
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application
// Support, and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// Load resolves Settings. When cfgFile is non-empty it is used exclusively;
// otherwise the platform config directory and the current directory are
// searched for an optional config file, and defaults apply when none exists.
func Load(cfgFile string) (*Settings, error) {
	v := viper.New()
	v.SetConfigType(ConfigFileExt)

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determining working directory: %w", err)
	}

	v.SetDefault("source_dir", cwd)
	v.SetDefault("env_dir", "")
	v.SetDefault("download_dir", "")
	v.SetDefault("pip_install", "install")
	v.SetDefault("verbose", false)

	// PIP_INSTALL is the documented collaborator contract and is honored
	// unprefixed; everything else uses the ASRENV_ namespace.
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("pip_install", "PIP_INSTALL", envPrefix+"_PIP_INSTALL"); err != nil {
		return nil, fmt.Errorf("binding environment: %w", err)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(cfgFile).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file contains valid TOML").
				Wrap(err).
				BuildError()
		}
	} else {
		cfgDir, err := ConfigDir()
		if err == nil {
			v.AddConfigPath(cfgDir)
		}
		v.AddConfigPath(cwd)
		v.SetConfigName(ConfigFileName)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, issue.NewErrorContext().
					WithOperation("load configuration").
					WithResource(v.ConfigFileUsed()).
					WithSuggestion("Check that the file contains valid TOML").
					Wrap(err).
					BuildError()
			}
			// No config file: defaults plus environment.
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &s, nil
}

// ProvisionConfig converts Settings into the immutable pipeline Config,
// applying the optional architecture override from the command line.
func (s *Settings) ProvisionConfig(archOverride string) provision.Config {
	opts := []provision.ConfigOption{
		provision.WithPipMode(strings.Fields(s.PipInstall)...),
	}
	if archOverride != "" {
		opts = append(opts, provision.WithArchitecture(archOverride))
	}
	if s.EnvDir != "" {
		opts = append(opts, provision.WithEnvDir(s.EnvDir))
	}
	if s.DownloadDir != "" {
		opts = append(opts, provision.WithDownloadDir(s.DownloadDir))
	}
	return provision.NewConfig(s.SourceDir, opts...)
}
