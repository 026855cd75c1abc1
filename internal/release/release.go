// Package release drives the publish pipeline: version bump, commit and
// push, package build, index upload and versioned documentation deploy.
// Steps run in order and stop at the first failure; every run is journaled
// in the local store.
package release

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dukaforge/cicd/internal/console"
	"github.com/dukaforge/cicd/internal/gitutil"
	"github.com/dukaforge/cicd/internal/logging"
	"github.com/dukaforge/cicd/internal/semver"
	"github.com/dukaforge/cicd/internal/setver"
	"github.com/dukaforge/cicd/internal/shell"
	"github.com/dukaforge/cicd/internal/store"
	"github.com/dukaforge/cicd/pkg/types"
)

// Pipeline step names, as recorded in the run journal.
const (
	StepSetVersion = "set-version"
	StepCommit     = "commit"
	StepPush       = "push"
	StepBuild      = "build"
	StepPublish    = "publish"
	StepDocs       = "docs"
)

// Secret environment variables.
const (
	EnvPyPIToken   = "PYPI_TOKEN"
	EnvPAT         = "PAT"
	EnvGithubToken = "GITHUB_TOKEN"
)

// Defaults for optional configuration values.
const (
	DefaultReleaseBranch = "main"
	DefaultPythonVersion = "3.9"
	DefaultBuildCmd      = "python -m build"
)

// Config is the release configuration, loadable from a YAML file. Unknown
// keys are rejected so typos fail loudly.
type Config struct {
	PackageDir     string `yaml:"package_dir"`
	GitUsername    string `yaml:"git_username"`
	GitEmail       string `yaml:"git_email"`
	ReleaseBranch  string `yaml:"release_branch"`
	PythonVersion  string `yaml:"python_version"`
	UpdateDocs     bool   `yaml:"update_docs"`
	BuildCmd       string `yaml:"build_cmd"`
	TagMessageFile string `yaml:"tag_message_file"`
	Test           bool   `yaml:"test"`
}

// LoadConfig reads a YAML release configuration with strict decoding.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("opening release config: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding release config %s: %v: %w",
			path, err, types.ErrInputParse)
	}
	return cfg, nil
}

// ApplyDefaults fills unset optional values.
func (c *Config) ApplyDefaults() {
	if c.ReleaseBranch == "" {
		c.ReleaseBranch = DefaultReleaseBranch
	}
	if c.PythonVersion == "" {
		c.PythonVersion = DefaultPythonVersion
	}
	if c.BuildCmd == "" {
		c.BuildCmd = DefaultBuildCmd
	}
}

// Validate checks the required fields.
func (c Config) Validate() error {
	if c.PackageDir == "" {
		return fmt.Errorf("package_dir is required: %w", types.ErrInput)
	}
	if c.GitUsername == "" || c.GitEmail == "" {
		return fmt.Errorf("git_username and git_email are required: %w", types.ErrInput)
	}
	return nil
}

// Secrets are the tokens the pipeline publishes with.
type Secrets struct {
	PyPIToken string
	Token     string
}

// SecretsFromEnv collects the publish tokens. The index token is required
// unless this is a test run; the hosting token falls back from PAT to the
// workflow-provided default.
func SecretsFromEnv(test bool) (Secrets, error) {
	s := Secrets{
		PyPIToken: os.Getenv(EnvPyPIToken),
		Token:     os.Getenv(EnvPAT),
	}
	if s.Token == "" {
		s.Token = os.Getenv(EnvGithubToken)
	}
	if s.PyPIToken == "" && !test {
		return Secrets{}, fmt.Errorf("%s is required for a non-test release: %w",
			EnvPyPIToken, types.ErrInput)
	}
	return s, nil
}

// Runner executes the pipeline for one release tag.
type Runner struct {
	cfg     Config
	secrets Secrets
	root    string
	git     *gitutil.Git
	run     shell.Runner
	journal *store.Store
}

// NewRunner builds a Runner rooted at the repository directory. journal may
// be nil to skip run journaling.
func NewRunner(root string, cfg Config, secrets Secrets, journal *store.Store) *Runner {
	return &Runner{
		cfg:     cfg,
		secrets: secrets,
		root:    root,
		git:     gitutil.New(root),
		run:     shell.Default,
		journal: journal,
	}
}

// NewRunnerWithShell is for tests.
func NewRunnerWithShell(root string, cfg Config, secrets Secrets, journal *store.Store, run shell.Runner) *Runner {
	r := NewRunner(root, cfg, secrets, journal)
	r.run = run
	r.git = gitutil.NewWithRunner(root, run)
	return r
}

// Run releases the given tag. The tag must be a full SemVer version with an
// optional leading v.
func (r *Runner) Run(ctx context.Context, tag string) error {
	version, err := semver.ParseTag(tag)
	if err != nil {
		return fmt.Errorf("release tag %q: %w", tag, err)
	}
	if version.CoreParts() != 3 {
		return fmt.Errorf("release tag %q must carry major, minor and patch: %w",
			tag, types.ErrInput)
	}

	runID := ""
	if r.journal != nil {
		runID, err = r.journal.BeginRun(tag, version.String(), r.cfg.PackageDir)
		if err != nil {
			logging.Warn("journaling release start failed: %v", err)
		}
	}

	if step, err := r.steps(ctx, version); err != nil {
		r.finish(runID, store.RunFailed, step)
		return fmt.Errorf("release step %s: %w", step, err)
	}
	r.finish(runID, store.RunSucceeded, "")

	console.Success("Released %s version %s.", r.cfg.PackageDir, version)
	return nil
}

func (r *Runner) finish(runID, status, failedStep string) {
	if r.journal == nil || runID == "" {
		return
	}
	if err := r.journal.FinishRun(runID, status, failedStep); err != nil {
		logging.Warn("journaling release finish failed: %v", err)
	}
}

// steps runs the pipeline and reports the failing step.
func (r *Runner) steps(ctx context.Context, version semver.Version) (string, error) {
	console.Pending("Setting version %s for %s", version, r.cfg.PackageDir)
	err := setver.Run(setver.Options{
		RootRepoPath: r.root,
		PackageDir:   r.cfg.PackageDir,
		Version:      version,
	})
	if err != nil {
		return StepSetVersion, err
	}

	if err := r.commit(ctx, version); err != nil {
		return StepCommit, err
	}

	if r.cfg.Test {
		console.Info("Test mode: skipping push to %s", r.cfg.ReleaseBranch)
	} else {
		if err := r.git.Push(ctx, "origin", r.cfg.ReleaseBranch, false); err != nil {
			return StepPush, err
		}
		if err := r.git.Push(ctx, "origin", "v"+version.String(), true); err != nil {
			return StepPush, err
		}
	}

	console.Pending("Building the package")
	name, args, err := shell.Line(r.cfg.BuildCmd)
	if err != nil {
		return StepBuild, fmt.Errorf("build command: %w: %w", err, types.ErrInput)
	}
	if _, err := r.run(ctx, r.root, name, args...); err != nil {
		return StepBuild, err
	}

	if r.cfg.Test {
		console.Info("Test mode: skipping upload to the package index")
	} else {
		console.Pending("Publishing to the package index")
		if err := r.publish(ctx); err != nil {
			return StepPublish, err
		}
	}

	if r.cfg.UpdateDocs {
		if err := r.deployDocs(ctx, version); err != nil {
			return StepDocs, err
		}
	}
	return "", nil
}

// commit configures the git identity and commits the version bump. The tag
// message file contents, when given, become the commit body.
func (r *Runner) commit(ctx context.Context, version semver.Version) error {
	if err := r.git.ConfigUser(ctx, r.cfg.GitUsername, r.cfg.GitEmail); err != nil {
		return err
	}
	if err := r.git.Add(ctx, "."); err != nil {
		return err
	}

	messages := []string{fmt.Sprintf("Release v%s", version)}
	if r.cfg.TagMessageFile != "" {
		body, err := os.ReadFile(r.cfg.TagMessageFile)
		if err != nil {
			return fmt.Errorf("reading tag message file: %w", err)
		}
		if text := strings.TrimSpace(string(body)); text != "" {
			messages = append(messages, text)
		}
	}
	return r.git.Commit(ctx, messages...)
}

// publish uploads the dist artifacts with twine using the index token.
func (r *Runner) publish(ctx context.Context) error {
	_, err := r.run(ctx, r.root, "twine", "upload",
		"--username", "__token__",
		"--password", r.secrets.PyPIToken,
		"--non-interactive",
		"dist/*")
	return err
}

// deployDocs publishes the versioned documentation, aliasing the MAJOR.MINOR
// line as stable.
func (r *Runner) deployDocs(ctx context.Context, version semver.Version) error {
	console.Pending("Deploying documentation for %s", version.MajorMinor())
	if err := r.git.Fetch(ctx, "origin", "gh-pages"); err != nil {
		logging.Debug("fetching gh-pages failed, mike will create it: %v", err)
	}
	args := []string{"deploy"}
	if !r.cfg.Test {
		args = append(args, "--push")
	}
	args = append(args, "--update-aliases", version.MajorMinor(), "stable")
	_, err := r.run(ctx, r.root, "mike", args...)
	return err
}
