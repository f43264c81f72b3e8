// Package app provides the dependency injection container for the application.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/runoshun/autocrew/internal/domain"
	"github.com/runoshun/autocrew/internal/infra/codegen"
	"github.com/runoshun/autocrew/internal/infra/config"
	"github.com/runoshun/autocrew/internal/infra/eventlog"
	"github.com/runoshun/autocrew/internal/infra/executor"
	"github.com/runoshun/autocrew/internal/infra/gates"
	"github.com/runoshun/autocrew/internal/infra/github"
	"github.com/runoshun/autocrew/internal/infra/gitstore"
	"github.com/runoshun/autocrew/internal/infra/logging"
	"github.com/runoshun/autocrew/internal/infra/statestore"
	"github.com/runoshun/autocrew/internal/infra/taskloader"
	"github.com/runoshun/autocrew/internal/infra/vcs"
	"github.com/runoshun/autocrew/internal/usecase"
)

// Config holds the resolved application paths.
type Config struct {
	RepoRoot  string // Root directory of the git repository
	ConfigDir string // Path to .autocrew directory
	TasksDir  string // Directory holding task definition files
	StateFile string // Completed-task file (file backend)
	EventLog  string // Run-event file
}

// newConfig resolves the configured paths against the repository root.
func newConfig(repoRoot string, appConfig *domain.Config) Config {
	return Config{
		RepoRoot:  repoRoot,
		ConfigDir: domain.RepoConfigDir(repoRoot),
		TasksDir:  domain.ResolvePath(repoRoot, appConfig.Paths.TasksDir),
		StateFile: domain.ResolvePath(repoRoot, appConfig.Paths.StateFile),
		EventLog:  domain.ResolvePath(repoRoot, appConfig.Paths.EventLog),
	}
}

// Options controls how the container is built.
type Options struct {
	Verbose bool // Mirror log entries to stderr
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Loader        domain.TaskSpecLoader
	Store         domain.CompletedTaskStore
	Events        domain.RunEventLog
	Generator     domain.CodeGenerator
	Gates         domain.QualityGate
	VCS           domain.VersionControl
	Publisher     domain.Publisher
	Executor      domain.CommandExecutor
	Clock         domain.Clock
	ConfigLoader  domain.ConfigLoader
	ConfigManager domain.ConfigManager
	Logger        domain.Logger

	// Pointer fields
	AppConfig *domain.Config
	closer    io.Closer

	// Configuration
	Config Config
}

// New creates a new Container by detecting the git repository from the given directory.
func New(dir string, opts Options) (*Container, error) {
	// Detect git repository
	vcsClient, err := vcs.Open(dir)
	if err != nil {
		return nil, err
	}
	repoRoot := vcsClient.RepoRoot()
	configDir := domain.RepoConfigDir(repoRoot)

	// Load app config
	configLoader := config.NewLoader(configDir)
	appConfig, err := configLoader.Load()
	if err != nil {
		return nil, err
	}
	cfg := newConfig(repoRoot, appConfig)

	// Create completed-task store based on config
	var store domain.CompletedTaskStore
	if appConfig.State.Backend == domain.StateBackendGit {
		store = gitstore.NewWithRepo(vcsClient.Repository(), appConfig.State.Namespace)
	} else {
		store = statestore.New(cfg.StateFile)
	}

	// Create logger. File logs are written once the repository is initialized.
	logDir := ""
	if info, err := os.Stat(configDir); err == nil && info.IsDir() {
		logDir = configDir
	}
	logger := logging.New(logDir, logging.ParseLevel(appConfig.Log.Level))
	if opts.Verbose {
		logger.WithMirror(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	clock := domain.RealClock{}
	exec := executor.NewClient()
	vcsClient.WithAuthor(appConfig.Git.AuthorName, appConfig.Git.AuthorEmail).WithClock(clock)

	return &Container{
		Loader:        taskloader.New(cfg.TasksDir),
		Store:         store,
		Events:        eventlog.New(cfg.EventLog, clock),
		Generator:     codegen.NewClient(exec, appConfig.Codegen.Command, repoRoot),
		Gates:         gates.NewRunner(exec, repoRoot, appConfig.GateChecks()),
		VCS:           vcsClient,
		Publisher:     github.NewClient(exec, repoRoot, appConfig.Publish.Remote),
		Executor:      exec,
		Clock:         clock,
		ConfigLoader:  configLoader,
		ConfigManager: config.NewManager(configDir),
		Logger:        logger,
		AppConfig:     appConfig,
		closer:        logger,
		Config:        cfg,
	}, nil
}

// Deps holds the ports used by NewWithDeps.
type Deps struct {
	Loader        domain.TaskSpecLoader
	Store         domain.CompletedTaskStore
	Events        domain.RunEventLog
	Generator     domain.CodeGenerator
	Gates         domain.QualityGate
	VCS           domain.VersionControl
	Publisher     domain.Publisher
	Clock         domain.Clock
	ConfigLoader  domain.ConfigLoader
	ConfigManager domain.ConfigManager
	Logger        domain.Logger
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, appConfig *domain.Config, deps Deps) *Container {
	if appConfig == nil {
		appConfig = domain.NewDefaultConfig()
	}
	logger := deps.Logger
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &Container{
		Loader:        deps.Loader,
		Store:         deps.Store,
		Events:        deps.Events,
		Generator:     deps.Generator,
		Gates:         deps.Gates,
		VCS:           deps.VCS,
		Publisher:     deps.Publisher,
		Clock:         deps.Clock,
		ConfigLoader:  deps.ConfigLoader,
		ConfigManager: deps.ConfigManager,
		Logger:        logger,
		AppConfig:     appConfig,
		Config:        cfg,
	}
}

// Close releases resources held by the container.
func (c *Container) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// UseCase factory methods

// RunBacklogUseCase returns a new RunBacklog use case.
// The system prompt file is read by the run itself, once a task is selected.
func (c *Container) RunBacklogUseCase() *usecase.RunBacklog {
	return usecase.NewRunBacklog(usecase.RunBacklogDeps{
		Loader:    c.Loader,
		Store:     c.Store,
		Events:    c.Events,
		Generator: c.Generator,
		Gates:     c.Gates,
		VCS:       c.VCS,
		Publisher: c.Publisher,
		Logger:    c.Logger,
	}, usecase.RunBacklogSettings{
		SystemPromptFile: c.systemPromptPath(),
		BranchPrefix:     c.AppConfig.Git.BranchPrefix,
		Base:             c.AppConfig.Publish.Base,
		Labels:           c.AppConfig.Publish.Labels,
		Limits:           c.AppConfig.PromptLimits(),
		ProceedOnFailure: c.AppConfig.Gates.ProceedOnFailure,
	})
}

// ListTasksUseCase returns a new ListTasks use case.
func (c *Container) ListTasksUseCase() *usecase.ListTasks {
	return usecase.NewListTasks(c.Loader, c.Store)
}

// ShowTaskUseCase returns a new ShowTask use case.
func (c *Container) ShowTaskUseCase() *usecase.ShowTask {
	return usecase.NewShowTask(c.Loader, c.Store)
}

// NextTaskUseCase returns a new NextTask use case.
func (c *Container) NextTaskUseCase() *usecase.NextTask {
	return usecase.NewNextTask(c.Loader, c.Store)
}

// RenderPromptUseCase returns a new RenderPrompt use case.
func (c *Container) RenderPromptUseCase() *usecase.RenderPrompt {
	return usecase.NewRenderPrompt(c.Loader, c.Store)
}

// CheckCatalogueUseCase returns a new CheckCatalogue use case.
func (c *Container) CheckCatalogueUseCase() *usecase.CheckCatalogue {
	return usecase.NewCheckCatalogue(c.Loader)
}

// MarkTasksUseCase returns a new MarkTasks use case.
func (c *Container) MarkTasksUseCase() *usecase.MarkTasks {
	return usecase.NewMarkTasks(c.Loader, c.Store, c.Logger)
}

// ClearCompletedUseCase returns a new ClearCompleted use case.
func (c *Container) ClearCompletedUseCase() *usecase.ClearCompleted {
	return usecase.NewClearCompleted(c.Store, c.Logger)
}

// ListCompletedUseCase returns a new ListCompleted use case.
func (c *Container) ListCompletedUseCase() *usecase.ListCompleted {
	return usecase.NewListCompleted(c.Store)
}

// ShowEventsUseCase returns a new ShowEvents use case.
func (c *Container) ShowEventsUseCase() *usecase.ShowEvents {
	return usecase.NewShowEvents(c.Events)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigLoader, c.ConfigManager)
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}

// systemPromptPath resolves the configured system prompt file, or "" when unset.
func (c *Container) systemPromptPath() string {
	if c.AppConfig.Paths.SystemPrompt == "" {
		return ""
	}
	return domain.ResolvePath(c.Config.RepoRoot, c.AppConfig.Paths.SystemPrompt)
}

// SystemPrompt returns the content of the configured system prompt file.
func (c *Container) SystemPrompt() (string, error) {
	path := c.systemPromptPath()
	if path == "" {
		return "", nil
	}
	content, err := os.ReadFile(path) // #nosec G304 - path comes from repo config
	if err != nil {
		return "", fmt.Errorf("read system prompt: %w", err)
	}
	return strings.TrimSpace(string(content)), nil
}
