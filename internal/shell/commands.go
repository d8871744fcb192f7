package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

func init() {
	Register(&UserCmd{})
	Register(&AddCmd{})
	Register(&RmCmd{})
	Register(&ClearCmd{})
	Register(&ListCmd{})
	Register(&HelpCmd{})
	Register(&QuitCmd{})
}

// UserCmd creates the session user.
type UserCmd struct{}

func (c *UserCmd) Name() string      { return "user" }
func (c *UserCmd) Aliases() []string { return []string{"signup"} }
func (c *UserCmd) Synopsis() string  { return "Create the user for this session" }
func (c *UserCmd) Usage() string     { return "user [name]" }
func (c *UserCmd) NeedsAuth() bool   { return false }

func (c *UserCmd) Run(ctx context.Context, sh *Shell, args []string) error {
	ctl := sh.Controller()
	if ctl.Authenticated() {
		return fmt.Errorf("user already created: %s", ctl.State().Username)
	}
	name := sh.Rest()
	if len(args) == 0 {
		// Fall back to the pre-filled name from --user.
		name = ctl.State().Username
	}
	if strings.TrimSpace(name) == "" {
		return errors.New("username required")
	}
	ctl.SetUsername(name)
	ctl.CreateUser(ctx, name)
	return nil
}

// AddCmd adds a task.
type AddCmd struct{}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"a"} }
func (c *AddCmd) Synopsis() string  { return "Add a task" }
func (c *AddCmd) Usage() string     { return "add <label...>" }
func (c *AddCmd) NeedsAuth() bool   { return true }

func (c *AddCmd) Run(ctx context.Context, sh *Shell, args []string) error {
	label := sh.Rest()
	if strings.TrimSpace(label) == "" {
		return errors.New("label required")
	}
	ctl := sh.Controller()
	ctl.SetDraft(label)
	ctl.AddTask(ctx, label)
	return nil
}

// RmCmd deletes one task.
type RmCmd struct{}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"del", "delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "rm <n> | rm #<id>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) Run(ctx context.Context, sh *Shell, args []string) error {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return err
	}
	ctl := sh.Controller()
	task, err := ref.Resolve(ctl.State().Tasks)
	if err != nil {
		return err
	}
	ctl.DeleteTask(ctx, task.ID)
	return nil
}

// ClearCmd deletes every task.
type ClearCmd struct{}

func (c *ClearCmd) Name() string      { return "clear" }
func (c *ClearCmd) Aliases() []string { return []string{"clear-all"} }
func (c *ClearCmd) Synopsis() string  { return "Delete all tasks" }
func (c *ClearCmd) Usage() string     { return "clear" }
func (c *ClearCmd) NeedsAuth() bool   { return true }

func (c *ClearCmd) Run(ctx context.Context, sh *Shell, args []string) error {
	ctl := sh.Controller()
	if !ctl.State().CanClear() {
		return errors.New("no tasks to clear")
	}
	ctl.ClearAllTasks(ctx)
	return nil
}

// ListCmd refetches and prints the list.
type ListCmd struct{}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls", "refresh"} }
func (c *ListCmd) Synopsis() string  { return "Reload and show tasks" }
func (c *ListCmd) Usage() string     { return "list" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) Run(ctx context.Context, sh *Shell, args []string) error {
	sh.Controller().FetchTasks(ctx)
	return nil
}

// HelpCmd prints the commands available in the current state.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return []string{"?"} }
func (c *HelpCmd) Synopsis() string  { return "Show commands" }
func (c *HelpCmd) Usage() string     { return "help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) Run(ctx context.Context, sh *Shell, args []string) error {
	authed := sh.Controller().Authenticated()
	out := sh.Out()
	fmt.Fprintln(out, "Usage:")
	for _, cmd := range sh.Registry().All() {
		if cmd.NeedsAuth() && !authed {
			continue
		}
		fmt.Fprintf(out, "  %-20s %s\n", cmd.Usage(), cmd.Synopsis())
	}
	return nil
}

// QuitCmd ends the shell.
type QuitCmd struct{}

func (c *QuitCmd) Name() string      { return "quit" }
func (c *QuitCmd) Aliases() []string { return []string{"exit", "q"} }
func (c *QuitCmd) Synopsis() string  { return "Leave the shell" }
func (c *QuitCmd) Usage() string     { return "quit" }
func (c *QuitCmd) NeedsAuth() bool   { return false }

func (c *QuitCmd) Run(ctx context.Context, sh *Shell, args []string) error {
	return ErrQuit
}
