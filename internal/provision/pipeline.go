// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"fmt"
	"io"
	"os"

	"asrenv-cli/internal/arch"
	"asrenv-cli/internal/fetch"
	"asrenv-cli/internal/issue"
	"asrenv-cli/internal/nativeinstall"
	"asrenv-cli/internal/pip"
	"asrenv-cli/internal/runner"
	"asrenv-cli/internal/venv"

	"github.com/charmbracelet/log"
)

// Remote dependency catalog. Archive filenames are fixed so the download
// cache stays keyed by name across runs.
const (
	// pocketsphinxArchiveName is the cache filename for the speech-recognition
	// native binding.
	pocketsphinxArchiveName = "pocketsphinx-python.tar.gz"
	// pocketsphinxArchiveURL is the release URL of the pocketsphinx binding.
	pocketsphinxArchiveURL = "https://github.com/synesthesiam/pocketsphinx-python/releases/download/v1.0/pocketsphinx-python.tar.gz"

	// libraryPrefix selects the toolkit's own libraries out of the primary
	// manifest so they can resolve from the download cache offline.
	libraryPrefix = "rhasspy-"

	// advisoryTool is probed by the optional advisory step. The check fires
	// when the tool IS present; this mirrors the behavior of the original
	// provisioning script and is kept as-is rather than second-guessed.
	advisoryTool = "phonetisaurus-apply"
)

// nativeComponents are the prebuilt components unpacked into the environment
// by their sub-installer scripts. Archives are architecture-specific.
var nativeComponents = []nativeComponent{
	{
		name:        "mitlm",
		script:      "install-mitlm.sh",
		archiveName: "mitlm-0.4.2-%s.tar.gz",
		archiveURL:  "https://github.com/synesthesiam/docker-mitlm/releases/download/v0.4.2/mitlm-0.4.2-%s.tar.gz",
	},
	{
		name:        "phonetisaurus",
		script:      "install-phonetisaurus.sh",
		archiveName: "phonetisaurus-2019-%s.tar.gz",
		archiveURL:  "https://github.com/synesthesiam/docker-phonetisaurus/releases/download/2019.1/phonetisaurus-2019-%s.tar.gz",
	},
}

type (
	// nativeComponent describes one prebuilt native component. archiveName and
	// archiveURL carry a %s placeholder for the resolved architecture.
	nativeComponent struct {
		name        string
		script      string
		archiveName string
		archiveURL  string
	}

	// ArchResolver resolves the target architecture.
	ArchResolver interface {
		Resolve(ctx context.Context, override string) (string, error)
	}

	// EnvBuilder destroys and recreates the isolated environment.
	EnvBuilder interface {
		Recreate(ctx context.Context, path string) error
	}

	// PackageInstaller performs the package-installer operations the pipeline
	// needs, one method per dependency-source kind.
	PackageInstaller interface {
		Upgrade(ctx context.Context, names ...string) error
		InstallFile(ctx context.Context, path string) error
		InstallManifest(ctx context.Context, manifestPath string) error
		InstallSubset(ctx context.Context, manifestPath, namePrefix, findLinks string) error
	}

	// ArchiveFetcher downloads archives into the cache unless already present
	// and non-empty.
	ArchiveFetcher interface {
		FetchIfAbsent(ctx context.Context, url, dest string) (bool, error)
	}

	// ComponentInstaller runs a native sub-installer script.
	ComponentInstaller interface {
		Install(ctx context.Context, scriptPath, archivePath, installDir string) error
	}

	// ToolProbe reports whether a tool is present on the host PATH.
	ToolProbe func(name string) bool

	// Dependencies defines the injection points for building a Pipeline. Nil
	// fields are replaced with production defaults by NewPipeline; tests
	// supply mocks to isolate pipeline behavior from the host.
	Dependencies struct {
		Arch       ArchResolver
		Env        EnvBuilder
		Pip        PackageInstaller
		Fetcher    ArchiveFetcher
		Native     ComponentInstaller
		Probe      ToolProbe
		Logger     *log.Logger
		Advisories io.Writer
	}

	// Pipeline executes the ordered provisioning step sequence.
	Pipeline struct {
		cfg        Config
		archRes    ArchResolver
		env        EnvBuilder
		pip        PackageInstaller
		fetcher    ArchiveFetcher
		native     ComponentInstaller
		probe      ToolProbe
		logger     *log.Logger
		advisories io.Writer
	}
)

// NewPipeline wires a Pipeline for cfg, substituting production collaborators
// for any nil Dependencies fields.
func NewPipeline(cfg Config, deps Dependencies) *Pipeline {
	native := runner.NewNativeRunner()

	p := &Pipeline{
		cfg:        cfg,
		archRes:    deps.Arch,
		env:        deps.Env,
		pip:        deps.Pip,
		fetcher:    deps.Fetcher,
		native:     deps.Native,
		probe:      deps.Probe,
		logger:     deps.Logger,
		advisories: deps.Advisories,
	}

	if p.archRes == nil {
		p.archRes = arch.NewDetector(native)
	}
	if p.env == nil {
		p.env = venv.NewBuilder(native)
	}
	if p.pip == nil {
		p.pip = pip.NewInstaller(native, cfg.EnvDir, pip.WithMode(cfg.PipMode...))
	}
	if p.fetcher == nil {
		p.fetcher = fetch.NewFetcher()
	}
	if p.native == nil {
		p.native = nativeinstall.NewInstaller(runner.ScriptRunner())
	}
	if p.probe == nil {
		p.probe = runner.ToolOnPath
	}
	if p.logger == nil {
		p.logger = log.Default()
	}
	if p.advisories == nil {
		p.advisories = os.Stdout
	}

	return p
}

// Run executes the full step sequence and returns a Result summarizing every
// step. The first required-step failure short-circuits the run: later steps
// are recorded as skipped and never invoke their collaborators.
func (p *Pipeline) Run(ctx context.Context) *Result {
	steps := p.steps()
	result := &Result{Success: true}

	aborted := false
	for _, step := range steps {
		if aborted {
			result.Steps = append(result.Steps, StepRecord{
				Name:   step.Name,
				Status: StepSkipped,
			})
			continue
		}

		p.logger.Info("step", "name", step.Name)
		msg, err := step.Run(ctx)
		if err == nil {
			p.logger.Debug("step ok", "name", step.Name, "detail", msg)
			result.Steps = append(result.Steps, StepRecord{
				Name:    step.Name,
				Status:  StepOK,
				Message: msg,
			})
			continue
		}

		result.Steps = append(result.Steps, StepRecord{
			Name:    step.Name,
			Status:  StepFailed,
			Message: err.Error(),
		})

		if step.Required {
			p.logger.Error("step failed", "name", step.Name, "err", err)
			result.Success = false
			aborted = true
			continue
		}

		p.logger.Warn("optional step failed", "name", step.Name, "err", err)
	}

	return result
}

// steps builds the ordered step sequence. The resolved architecture flows
// from the first step into the native-component steps through the shared
// state value.
func (p *Pipeline) steps() []Step {
	state := &struct{ arch string }{}

	steps := []Step{
		{
			Name:     "resolve-architecture",
			Required: true,
			Run: func(ctx context.Context) (string, error) {
				resolved, err := p.archRes.Resolve(ctx, p.cfg.Architecture)
				if err != nil {
					return "", issue.NewErrorContext().
						WithOperation("resolve architecture").
						WithSuggestion("Pass the architecture explicitly, e.g. `asrenv amd64`").
						Wrap(err).
						BuildError()
				}
				state.arch = resolved
				return fmt.Sprintf("architecture %s", resolved), nil
			},
		},
		{
			Name:     "create-environment",
			Required: true,
			Run: func(ctx context.Context) (string, error) {
				if err := p.env.Recreate(ctx, p.cfg.EnvDir); err != nil {
					return "", issue.NewErrorContext().
						WithOperation("create environment").
						WithResource(p.cfg.EnvDir).
						WithSuggestion("Check that python3 with the venv module is installed").
						Wrap(err).
						BuildError()
				}
				return fmt.Sprintf("environment recreated at %s", p.cfg.EnvDir), nil
			},
		},
		{
			Name:     "upgrade-pip",
			Required: true,
			Run: func(ctx context.Context) (string, error) {
				if err := p.pip.Upgrade(ctx, "pip"); err != nil {
					return "", issue.WrapWithOperation(err, "upgrade pip")
				}
				return "pip upgraded", nil
			},
		},
		{
			Name:     "upgrade-build-tools",
			Required: true,
			Run: func(ctx context.Context) (string, error) {
				if err := p.pip.Upgrade(ctx, "wheel", "setuptools"); err != nil {
					return "", issue.WrapWithOperation(err, "upgrade build tooling")
				}
				return "wheel and setuptools upgraded", nil
			},
		},
		{
			Name:     "install-pocketsphinx",
			Required: true,
			Run: func(ctx context.Context) (string, error) {
				dest := p.cfg.CachePath(pocketsphinxArchiveName)
				fetched, err := p.fetcher.FetchIfAbsent(ctx, pocketsphinxArchiveURL, dest)
				if err != nil {
					return "", issue.NewErrorContext().
						WithOperation("download pocketsphinx archive").
						WithResource(dest).
						WithSuggestion("Check network access, or place the archive in the download cache manually").
						Wrap(err).
						BuildError()
				}
				if err := p.pip.InstallFile(ctx, dest); err != nil {
					return "", issue.WrapWithOperation(err, "install pocketsphinx")
				}
				if fetched {
					return "pocketsphinx downloaded and installed", nil
				}
				return "pocketsphinx installed from cache", nil
			},
		},
		{
			Name:     "install-toolkit-libraries",
			Required: true,
			Run: func(ctx context.Context) (string, error) {
				err := p.pip.InstallSubset(ctx, p.cfg.RequirementsPath(), libraryPrefix, p.cfg.DownloadDir)
				if err != nil {
					return "", issue.WrapWithOperation(err, "install toolkit libraries")
				}
				return fmt.Sprintf("%s* entries installed", libraryPrefix), nil
			},
		},
		{
			Name:     "install-requirements",
			Required: true,
			Run: func(ctx context.Context) (string, error) {
				if err := p.pip.InstallManifest(ctx, p.cfg.RequirementsPath()); err != nil {
					return "", issue.NewErrorContext().
						WithOperation("install requirements").
						WithResource(p.cfg.RequirementsPath()).
						Wrap(err).
						BuildError()
				}
				return "requirements installed", nil
			},
		},
		{
			Name:     "install-dev-requirements",
			Required: false,
			Run: func(ctx context.Context) (string, error) {
				if err := p.pip.InstallManifest(ctx, p.cfg.DevRequirementsPath()); err != nil {
					return "", issue.WrapWithOperation(err, "install development requirements")
				}
				return "development requirements installed", nil
			},
		},
		{
			Name:     "check-phonetisaurus-tool",
			Required: false,
			Run: func(_ context.Context) (string, error) {
				if !p.probe(advisoryTool) {
					return "no advisory", nil
				}
				adv := issue.Advisory{
					Title: "note",
					Markdown: fmt.Sprintf(
						"A system-wide `%s` is on PATH. The environment installs its own copy; "+
							"remove or shadow the system install if pronunciation guessing misbehaves.",
						advisoryTool),
				}
				fmt.Fprintln(p.advisories, adv.Render())
				return fmt.Sprintf("%s present, advisory emitted", advisoryTool), nil
			},
		},
	}

	for _, comp := range nativeComponents {
		comp := comp
		steps = append(steps, Step{
			Name:     "install-" + comp.name,
			Required: true,
			Run: func(ctx context.Context) (string, error) {
				archiveName := fmt.Sprintf(comp.archiveName, state.arch)
				dest := p.cfg.CachePath(archiveName)
				url := fmt.Sprintf(comp.archiveURL, state.arch)

				if _, err := p.fetcher.FetchIfAbsent(ctx, url, dest); err != nil {
					return "", issue.NewErrorContext().
						WithOperation("download " + comp.name + " archive").
						WithResource(dest).
						WithSuggestion("Check that prebuilt archives exist for architecture " + state.arch).
						Wrap(err).
						BuildError()
				}

				script := p.cfg.ScriptPath(comp.script)
				if err := p.native.Install(ctx, script, dest, p.cfg.EnvDir); err != nil {
					return "", issue.NewErrorContext().
						WithOperation("install " + comp.name).
						WithResource(script).
						Wrap(err).
						BuildError()
				}
				return comp.name + " installed", nil
			},
		})
	}

	return steps
}
