package config

import (
	"fmt"

	"github.com/runoshun/autocrew/internal/domain"
)

// applyRaw copies recognised keys from a decoded TOML document onto cfg.
// Unknown sections, unknown keys and values of the wrong type are reported
// as warnings and otherwise ignored.
func applyRaw(cfg *domain.Config, raw map[string]any) {
	w := &warnings{}

	for section, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			w.add("unknown section: %s", section)
			continue
		}
		switch section {
		case "paths":
			for k, v := range m {
				switch k {
				case "tasks_dir":
					w.str(section, k, v, &cfg.Paths.TasksDir)
				case "state_file":
					w.str(section, k, v, &cfg.Paths.StateFile)
				case "event_log":
					w.str(section, k, v, &cfg.Paths.EventLog)
				case "system_prompt":
					w.str(section, k, v, &cfg.Paths.SystemPrompt)
				default:
					w.unknownKey(section, k)
				}
			}
		case "state":
			for k, v := range m {
				switch k {
				case "backend":
					w.str(section, k, v, &cfg.State.Backend)
				case "namespace":
					w.str(section, k, v, &cfg.State.Namespace)
				default:
					w.unknownKey(section, k)
				}
			}
		case "selection":
			for k, v := range m {
				switch k {
				case "ready_limit":
					w.integer(section, k, v, &cfg.Selection.ReadyLimit)
				case "blocked_limit":
					w.integer(section, k, v, &cfg.Selection.BlockedLimit)
				default:
					w.unknownKey(section, k)
				}
			}
		case "codegen":
			for k, v := range m {
				switch k {
				case "command":
					w.str(section, k, v, &cfg.Codegen.Command)
				default:
					w.unknownKey(section, k)
				}
			}
		case "gates":
			for k, v := range m {
				switch k {
				case "proceed_on_failure":
					w.boolean(section, k, v, &cfg.Gates.ProceedOnFailure)
				case "check":
					if checks, ok := parseChecks(v, w); ok {
						cfg.Gates.Checks = checks
					}
				default:
					w.unknownKey(section, k)
				}
			}
		case "git":
			for k, v := range m {
				switch k {
				case "branch_prefix":
					w.str(section, k, v, &cfg.Git.BranchPrefix)
				case "author_name":
					w.str(section, k, v, &cfg.Git.AuthorName)
				case "author_email":
					w.str(section, k, v, &cfg.Git.AuthorEmail)
				default:
					w.unknownKey(section, k)
				}
			}
		case "publish":
			for k, v := range m {
				switch k {
				case "enabled":
					w.boolean(section, k, v, &cfg.Publish.Enabled)
				case "remote":
					w.str(section, k, v, &cfg.Publish.Remote)
				case "base":
					w.str(section, k, v, &cfg.Publish.Base)
				case "labels":
					w.strList(section, k, v, &cfg.Publish.Labels)
				default:
					w.unknownKey(section, k)
				}
			}
		case "run":
			for k, v := range m {
				switch k {
				case "mark_completed":
					w.boolean(section, k, v, &cfg.Run.MarkCompleted)
				default:
					w.unknownKey(section, k)
				}
			}
		case "log":
			for k, v := range m {
				switch k {
				case "level":
					w.str(section, k, v, &cfg.Log.Level)
				default:
					w.unknownKey(section, k)
				}
			}
		default:
			w.add("unknown section: %s", section)
		}
	}

	cfg.Warnings = append(cfg.Warnings, w.list...)
}

func parseChecks(v any, w *warnings) ([]domain.GateCheck, bool) {
	tables, ok := v.([]any)
	if !ok {
		w.add("invalid value for [gates] check: expected array of tables")
		return nil, false
	}
	checks := make([]domain.GateCheck, 0, len(tables))
	for i, t := range tables {
		m, ok := t.(map[string]any)
		if !ok {
			w.add("invalid value for [[gates.check]] #%d: expected table", i)
			continue
		}
		var check domain.GateCheck
		section := fmt.Sprintf("gates.check #%d", i)
		for k, val := range m {
			switch k {
			case "name":
				w.str(section, k, val, &check.Name)
			case "command":
				w.str(section, k, val, &check.Command)
			default:
				w.unknownKey(section, k)
			}
		}
		checks = append(checks, check)
	}
	return checks, true
}

type warnings struct {
	list []string
}

func (w *warnings) add(format string, args ...any) {
	w.list = append(w.list, fmt.Sprintf(format, args...))
}

func (w *warnings) unknownKey(section, key string) {
	w.add("unknown key in [%s]: %s", section, key)
}

func (w *warnings) mismatch(section, key, want string) {
	w.add("invalid value for [%s] %s: expected %s", section, key, want)
}

func (w *warnings) str(section, key string, v any, dst *string) {
	s, ok := v.(string)
	if !ok {
		w.mismatch(section, key, "string")
		return
	}
	*dst = s
}

func (w *warnings) boolean(section, key string, v any, dst *bool) {
	b, ok := v.(bool)
	if !ok {
		w.mismatch(section, key, "boolean")
		return
	}
	*dst = b
}

func (w *warnings) integer(section, key string, v any, dst *int) {
	n, ok := v.(int64)
	if !ok {
		w.mismatch(section, key, "integer")
		return
	}
	*dst = int(n)
}

func (w *warnings) strList(section, key string, v any, dst *[]string) {
	items, ok := v.([]any)
	if !ok {
		w.mismatch(section, key, "array of strings")
		return
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			w.mismatch(section, key, "array of strings")
			return
		}
		out = append(out, s)
	}
	*dst = out
}
