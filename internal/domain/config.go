package domain

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed config_template.toml
var configTemplateContent string

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings  []string        `toml:"-"`
	Paths     PathsConfig     `toml:"paths"`
	State     StateConfig     `toml:"state"`
	Codegen   CodegenConfig   `toml:"codegen"`
	Git       GitConfig       `toml:"git"`
	Publish   PublishConfig   `toml:"publish"`
	Log       LogConfig       `toml:"log"`
	Gates     GatesConfig     `toml:"gates"`
	Selection SelectionConfig `toml:"selection"`
	Run       RunConfig       `toml:"run"`
}

// PathsConfig holds file locations from [paths] section.
// Relative paths are resolved against the repository root.
type PathsConfig struct {
	TasksDir     string `toml:"tasks_dir"`               // Directory holding task definition files
	StateFile    string `toml:"state_file"`              // Completed-task store (file backend)
	EventLog     string `toml:"event_log"`               // Run-event log
	SystemPrompt string `toml:"system_prompt,omitempty"` // Optional file prepended to the generation prompt
}

// StateConfig holds completed-task store settings from [state] section.
type StateConfig struct {
	Backend   string `toml:"backend"`   // "file" (default) or "git"
	Namespace string `toml:"namespace"` // Ref namespace for the git backend
}

// SelectionConfig holds backlog digest limits from [selection] section.
type SelectionConfig struct {
	ReadyLimit   int `toml:"ready_limit"`
	BlockedLimit int `toml:"blocked_limit"`
}

// CodegenConfig holds the code generator command from [codegen] section.
type CodegenConfig struct {
	Command string `toml:"command,omitempty"` // Shell command; reads the prompt on stdin, writes a change set as JSON
}

// GateCheck is one quality gate command from [[gates.check]].
type GateCheck struct {
	Name    string `toml:"name"`
	Command string `toml:"command"`
}

// GatesConfig holds quality gate settings from [gates] section.
type GatesConfig struct {
	Checks           []GateCheck `toml:"check,omitempty"`
	ProceedOnFailure bool        `toml:"proceed_on_failure"`
}

// GitConfig holds branch and commit settings from [git] section.
type GitConfig struct {
	BranchPrefix string `toml:"branch_prefix"`
	AuthorName   string `toml:"author_name"`
	AuthorEmail  string `toml:"author_email"`
}

// PublishConfig holds pull request settings from [publish] section.
type PublishConfig struct {
	Remote  string   `toml:"remote"`
	Base    string   `toml:"base"`
	Labels  []string `toml:"labels"`
	Enabled bool     `toml:"enabled"`
}

// RunConfig holds run controller settings from [run] section.
type RunConfig struct {
	MarkCompleted bool `toml:"mark_completed"`
}

// LogConfig holds logging settings from [log] section.
type LogConfig struct {
	Level string `toml:"level"` // Log level: debug, info, warn, error
}

// Completed-task store backends.
const (
	StateBackendFile = "file"
	StateBackendGit  = "git"
)

// Default configuration values.
const (
	DefaultLogLevel      = "info"
	DefaultTasksDir      = "tasks"
	DefaultBranchPrefix  = "auto/"
	DefaultStateNS       = "autocrew"
	DefaultRemote        = "origin"
	DefaultBase          = "main"
	DefaultPRLabel       = "auto"
	DefaultAuthorName    = "autocrew"
	DefaultAuthorEmail   = "autocrew@localhost"
	DefaultReadyLimit    = 3
	DefaultBlockedLimit  = 3
	stateFileName        = "completed_tasks.json"
	eventLogFileName     = "run_events.json"
	repoConfigDirName    = ".autocrew"
	globalConfigDirName  = "autocrew"
	ConfigFileName       = "config.toml"
	EnvEventLogPath      = "AUTOCREW_EVENT_LOG_PATH"
	EnvTasksDir          = "AUTOCREW_TASKS_DIR"
	defaultGateCheckName = "check"
)

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			TasksDir:  DefaultTasksDir,
			StateFile: filepath.Join(repoConfigDirName, stateFileName),
			EventLog:  filepath.Join(repoConfigDirName, eventLogFileName),
		},
		State: StateConfig{
			Backend:   StateBackendFile,
			Namespace: DefaultStateNS,
		},
		Selection: SelectionConfig{
			ReadyLimit:   DefaultReadyLimit,
			BlockedLimit: DefaultBlockedLimit,
		},
		Git: GitConfig{
			BranchPrefix: DefaultBranchPrefix,
			AuthorName:   DefaultAuthorName,
			AuthorEmail:  DefaultAuthorEmail,
		},
		Publish: PublishConfig{
			Remote: DefaultRemote,
			Base:   DefaultBase,
			Labels: []string{DefaultPRLabel},
		},
		Run: RunConfig{MarkCompleted: true},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

// PromptLimits returns the digest limits from [selection].
func (c *Config) PromptLimits() PromptLimits {
	return PromptLimits{Ready: c.Selection.ReadyLimit, Blocked: c.Selection.BlockedLimit}
}

// Validate checks values that the loader cannot check by type alone.
func (c *Config) Validate() error {
	switch c.State.Backend {
	case StateBackendFile, StateBackendGit:
	default:
		return fmt.Errorf("[state] backend must be %q or %q, got %q", StateBackendFile, StateBackendGit, c.State.Backend)
	}
	if err := c.PromptLimits().Validate(); err != nil {
		return fmt.Errorf("[selection]: %w", err)
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("[log]: %w", err)
	}
	for i, check := range c.Gates.Checks {
		if strings.TrimSpace(check.Command) == "" {
			return fmt.Errorf("[[gates.check]] #%d: command must not be empty", i)
		}
	}
	return nil
}

// GateChecks returns the configured checks with default names filled in.
func (c *Config) GateChecks() []GateCheck {
	checks := make([]GateCheck, 0, len(c.Gates.Checks))
	for i, check := range c.Gates.Checks {
		if check.Name == "" {
			check.Name = fmt.Sprintf("%s-%d", defaultGateCheckName, i+1)
		}
		checks = append(checks, check)
	}
	return checks
}

// ResolvePath resolves p against repoRoot unless it is absolute.
func ResolvePath(repoRoot, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(repoRoot, p)
}

// ParseLogLevel validates a [log] level value.
func ParseLogLevel(level string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return "info", nil
	case "debug":
		return "debug", nil
	case "warn", "warning":
		return "warn", nil
	case "error":
		return "error", nil
	default:
		return "", fmt.Errorf("unknown log level %q", level)
	}
}

// RepoConfigDir returns the autocrew directory of a repository.
func RepoConfigDir(repoRoot string) string {
	return filepath.Join(repoRoot, repoConfigDirName)
}

// RepoConfigPath returns the repo config path.
func RepoConfigPath(repoRoot string) string {
	return filepath.Join(RepoConfigDir(repoRoot), ConfigFileName)
}

// GlobalConfigDir returns the global autocrew directory.
// configHome is typically XDG_CONFIG_HOME or ~/.config (resolved by caller).
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, globalConfigDirName)
}

// GlobalConfigPath returns the global config path.
func GlobalConfigPath(configHome string) string {
	return filepath.Join(GlobalConfigDir(configHome), ConfigFileName)
}

// templateData holds all data for rendering the config template.
type templateData struct {
	Config   *Config
	Backends string
}

// RenderConfigTemplate renders the commented config file written by `autocrew init`,
// using the values of cfg as the documented defaults.
func RenderConfigTemplate(cfg *Config) string {
	tmpl, err := template.New("config").Delims("<<", ">>").Funcs(template.FuncMap{
		"quote": func(s string) string { return fmt.Sprintf("%q", s) },
		"list": func(items []string) string {
			quoted := make([]string, 0, len(items))
			for _, it := range items {
				quoted = append(quoted, fmt.Sprintf("%q", it))
			}
			return "[" + strings.Join(quoted, ", ") + "]"
		},
	}).Parse(configTemplateContent)
	if err != nil {
		// Should never happen with embedded template
		panic(fmt.Sprintf("failed to parse config template: %v", err))
	}

	var buf bytes.Buffer
	data := templateData{Config: cfg, Backends: StateBackendFile + `" or "` + StateBackendGit}
	if err := tmpl.Execute(&buf, data); err != nil {
		// Should never happen with valid data
		panic(fmt.Sprintf("failed to execute config template: %v", err))
	}
	return buf.String()
}

// ConfigInfo describes one configuration file.
type ConfigInfo struct {
	Path    string
	Content string
	Exists  bool
}
