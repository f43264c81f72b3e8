// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/runoshun/autocrew/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// MockLoader is a test double for domain.TaskSpecLoader.
type MockLoader struct {
	Catalogue *domain.Catalogue
	Err       error
	Calls     int
}

// Load returns the configured catalogue or error.
func (m *MockLoader) Load() (*domain.Catalogue, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Catalogue == nil {
		return domain.NewCatalogue(), nil
	}
	return m.Catalogue, nil
}

// MockCompletedStore is an in-memory domain.CompletedTaskStore.
// Fields are ordered to minimize memory padding.
type MockCompletedStore struct {
	Set       domain.CompletedSet
	ReloadErr error
	MarkErr   error
	ClearErr  error
	Writes    int // number of mutations that changed the set
}

// NewMockCompletedStore creates a store holding ids.
func NewMockCompletedStore(ids ...string) *MockCompletedStore {
	set := make(domain.CompletedSet)
	for _, id := range ids {
		set.Add(id)
	}
	return &MockCompletedStore{Set: set}
}

// Completed returns the ids in lexical order.
func (m *MockCompletedStore) Completed() ([]string, error) {
	if m.ReloadErr != nil {
		return nil, m.ReloadErr
	}
	return m.Set.Sorted(), nil
}

// IsCompleted reports whether id is recorded.
func (m *MockCompletedStore) IsCompleted(id string) (bool, error) {
	if m.ReloadErr != nil {
		return false, m.ReloadErr
	}
	return m.Set.Has(id), nil
}

// MarkCompleted records id.
func (m *MockCompletedStore) MarkCompleted(id string) error {
	if m.MarkErr != nil {
		return m.MarkErr
	}
	normalized, err := domain.NormalizeTaskID(id)
	if err != nil {
		return err
	}
	if m.Set.Add(normalized) {
		m.Writes++
	}
	return nil
}

// MarkIncomplete removes id.
func (m *MockCompletedStore) MarkIncomplete(id string) error {
	if m.MarkErr != nil {
		return m.MarkErr
	}
	normalized, err := domain.NormalizeTaskID(id)
	if err != nil {
		return err
	}
	if m.Set.Remove(normalized) {
		m.Writes++
	}
	return nil
}

// Clear empties the set.
func (m *MockCompletedStore) Clear() error {
	if m.ClearErr != nil {
		return m.ClearErr
	}
	if m.Set.Len() > 0 {
		m.Writes++
	}
	m.Set = make(domain.CompletedSet)
	return nil
}

// Reload returns a copy of the set.
func (m *MockCompletedStore) Reload() (domain.CompletedSet, error) {
	if m.ReloadErr != nil {
		return nil, m.ReloadErr
	}
	return m.Set.Clone(), nil
}

// MockEventLog is an in-memory domain.RunEventLog.
type MockEventLog struct {
	AppendErr error
	ListErr   error
	Events    []domain.RunEvent
	nextID    int
}

// Append stores e, assigning a sequential ID when missing.
func (m *MockEventLog) Append(e domain.RunEvent) (domain.RunEvent, error) {
	if m.AppendErr != nil {
		return domain.RunEvent{}, m.AppendErr
	}
	if e.ID == "" {
		m.nextID++
		e.ID = fmt.Sprintf("event-%d", m.nextID)
	}
	m.Events = domain.TrimRunEvents(append(m.Events, e.Clone()))
	return e, nil
}

// List applies q to the stored events.
func (m *MockEventLog) List(q domain.EventQuery) ([]domain.RunEvent, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return domain.SelectRunEvents(m.Events, q), nil
}

// MockCodeGenerator is a test double for domain.CodeGenerator.
type MockCodeGenerator struct {
	ChangeSet *domain.ChangeSet
	Err       error
	Requests  []domain.GenerationRequest
}

// Generate records req and returns the configured result.
func (m *MockCodeGenerator) Generate(_ context.Context, req domain.GenerationRequest) (*domain.ChangeSet, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.ChangeSet, nil
}

// MockQualityGate is a test double for domain.QualityGate.
type MockQualityGate struct {
	Err     error
	Results []domain.GateResult
	Calls   int
}

// Check returns the configured results.
func (m *MockQualityGate) Check(_ context.Context) ([]domain.GateResult, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Results, nil
}

// MockVersionControl is a test double for domain.VersionControl.
// Fields are ordered to minimize memory padding.
type MockVersionControl struct {
	CreateErr  error
	ApplyErr   error
	CommitErr  error
	AbandonErr error
	Branches   []string
	Applied    []*domain.ChangeSet
	Commits    []string
	Abandoned  int
}

// CreateBranch records name.
func (m *MockVersionControl) CreateBranch(name string) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Branches = append(m.Branches, name)
	return nil
}

// Apply records cs and returns its patch paths.
func (m *MockVersionControl) Apply(cs *domain.ChangeSet) ([]string, error) {
	if m.ApplyErr != nil {
		return nil, m.ApplyErr
	}
	m.Applied = append(m.Applied, cs)
	var paths []string
	for _, p := range cs.Patches() {
		paths = append(paths, p.Path)
	}
	return paths, nil
}

// Commit records message.
func (m *MockVersionControl) Commit(message string) error {
	if m.CommitErr != nil {
		return m.CommitErr
	}
	m.Commits = append(m.Commits, message)
	return nil
}

// Abandon counts the call.
func (m *MockVersionControl) Abandon() error {
	m.Abandoned++
	return m.AbandonErr
}

// MockPublisher is a test double for domain.Publisher.
type MockPublisher struct {
	Result   *domain.PublishResult
	Err      error
	Requests []domain.PublishRequest
}

// Publish records req and returns the configured result.
func (m *MockPublisher) Publish(_ context.Context, req domain.PublishRequest) (*domain.PublishResult, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result == nil {
		return &domain.PublishResult{URL: "https://example.com/pr/1", Number: 1}, nil
	}
	return m.Result, nil
}

// MockExecutor is a test double for domain.CommandExecutor.
// Handler, when set, decides the output per command.
type MockExecutor struct {
	Handler  func(cmd *domain.ExecCommand) ([]byte, error)
	Err      error
	Out      []byte
	Commands []*domain.ExecCommand
	mu       sync.Mutex
}

// Execute records cmd and returns the configured output.
func (m *MockExecutor) Execute(_ context.Context, cmd *domain.ExecCommand) ([]byte, error) {
	m.mu.Lock()
	m.Commands = append(m.Commands, cmd)
	m.mu.Unlock()
	if m.Handler != nil {
		return m.Handler(cmd)
	}
	return m.Out, m.Err
}

// Output behaves like Execute.
func (m *MockExecutor) Output(ctx context.Context, cmd *domain.ExecCommand) ([]byte, error) {
	return m.Execute(ctx, cmd)
}

// LogEntry is one message captured by MockLogger.
type LogEntry struct {
	Level    string
	TaskID   string
	Category string
	Msg      string
}

// MockLogger captures log messages.
type MockLogger struct {
	Entries []LogEntry
}

func (m *MockLogger) add(level, taskID, category, msg string) {
	m.Entries = append(m.Entries, LogEntry{Level: level, TaskID: taskID, Category: category, Msg: msg})
}

// Debug records a debug message.
func (m *MockLogger) Debug(taskID, category, msg string) { m.add("debug", taskID, category, msg) }

// Info records an info message.
func (m *MockLogger) Info(taskID, category, msg string) { m.add("info", taskID, category, msg) }

// Warn records a warning.
func (m *MockLogger) Warn(taskID, category, msg string) { m.add("warn", taskID, category, msg) }

// Error records an error.
func (m *MockLogger) Error(taskID, category, msg string) { m.add("error", taskID, category, msg) }

// MockConfigLoader is a test double for domain.ConfigLoader.
type MockConfigLoader struct {
	Config *domain.Config
	Err    error
}

// NewMockConfigLoader returns a loader serving the default config.
func NewMockConfigLoader() *MockConfigLoader {
	return &MockConfigLoader{Config: domain.NewDefaultConfig()}
}

// Load returns the configured config.
func (m *MockConfigLoader) Load() (*domain.Config, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Config, nil
}

// LoadGlobal returns the configured config.
func (m *MockConfigLoader) LoadGlobal() (*domain.Config, error) {
	return m.Load()
}

// MockConfigManager is a test double for domain.ConfigManager.
type MockConfigManager struct {
	Err     error
	Written *domain.Config
	Repo    domain.ConfigInfo
	Global  domain.ConfigInfo
	Path    string
}

// InitRepoConfig records cfg.
func (m *MockConfigManager) InitRepoConfig(cfg *domain.Config) error {
	if m.Err != nil {
		return m.Err
	}
	m.Written = cfg
	return nil
}

// RepoConfigPath returns the configured path.
func (m *MockConfigManager) RepoConfigPath() string {
	return m.Path
}

// GetRepoConfigInfo returns the configured repo info.
func (m *MockConfigManager) GetRepoConfigInfo() domain.ConfigInfo {
	return m.Repo
}

// GetGlobalConfigInfo returns the configured global info.
func (m *MockConfigManager) GetGlobalConfigInfo() domain.ConfigInfo {
	return m.Global
}

var (
	_ domain.Clock              = (*MockClock)(nil)
	_ domain.TaskSpecLoader     = (*MockLoader)(nil)
	_ domain.CompletedTaskStore = (*MockCompletedStore)(nil)
	_ domain.RunEventLog        = (*MockEventLog)(nil)
	_ domain.CodeGenerator      = (*MockCodeGenerator)(nil)
	_ domain.QualityGate        = (*MockQualityGate)(nil)
	_ domain.VersionControl     = (*MockVersionControl)(nil)
	_ domain.Publisher          = (*MockPublisher)(nil)
	_ domain.CommandExecutor    = (*MockExecutor)(nil)
	_ domain.Logger             = (*MockLogger)(nil)
	_ domain.ConfigLoader       = (*MockConfigLoader)(nil)
	_ domain.ConfigManager      = (*MockConfigManager)(nil)
)
