package domain

// ExecCommand represents an external command to be executed.
// This type is used to pass command information between layers
// without exposing implementation details.
type ExecCommand struct {
	Program string
	Dir     string
	Stdin   string   // written to the command's standard input when non-empty
	Args    []string
	Env     []string // appended to the current environment
}

// NewCommand returns a command running program with args in dir.
func NewCommand(program string, args []string, dir string) *ExecCommand {
	return &ExecCommand{Program: program, Args: args, Dir: dir}
}

// NewShellCommand returns a command running script through sh -c in dir.
func NewShellCommand(script, dir string) *ExecCommand {
	return &ExecCommand{Program: "sh", Args: []string{"-c", script}, Dir: dir}
}
