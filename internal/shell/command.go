package shell

import "context"

// Command defines the interface for shell commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a created user.
	// Commands like user, help and quit return false.
	NeedsAuth() bool

	// Run executes the command. args are the whitespace-separated words
	// after the command name. A returned error is printed to the error
	// stream; ErrQuit ends the shell.
	Run(ctx context.Context, sh *Shell, args []string) error
}
