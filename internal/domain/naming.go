package domain

import (
	"path/filepath"
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and collapses every run of other characters into "-".
// An empty result becomes "task".
func Slugify(s string) string {
	slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if slug == "" {
		return "task"
	}
	return slug
}

// BranchName returns the branch name for a task.
// Format: <prefix><slug(task id)>, e.g. auto/add-login.
func BranchName(prefix, taskID string) string {
	return prefix + Slugify(taskID)
}

// CommitMessage returns the commit message for a task.
func CommitMessage(spec *TaskSpec) string {
	return "feat: " + spec.Title()
}

// PRTitle returns the pull request title for a task.
func PRTitle(spec *TaskSpec) string {
	return spec.Title() + " (auto)"
}

// PRBody returns the pull request body for a task.
func PRBody(spec *TaskSpec) string {
	return spec.Summary()
}

// LogsDir returns the directory for log files.
func LogsDir(configDir string) string {
	return filepath.Join(configDir, "logs")
}

// GlobalLogPath returns the path to the global log file.
func GlobalLogPath(configDir string) string {
	return filepath.Join(LogsDir(configDir), "autocrew.log")
}

// TaskLogPath returns the path to the log file of one task.
func TaskLogPath(configDir, taskID string) string {
	return filepath.Join(LogsDir(configDir), "task-"+Slugify(taskID)+".log")
}
