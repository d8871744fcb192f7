// Package shell is a line-oriented front end for the task session. It reads
// one command per line and re-renders the task list whenever the session
// reports a change.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode"

	"gtodo/internal/output"
	"gtodo/internal/session"
)

// ErrQuit is returned by a command to end the shell.
var ErrQuit = errors.New("quit")

// Options tune the shell's output.
type Options struct {
	// Prompt prints "> " before each line is read.
	Prompt bool
	// Quiet suppresses hints, notices and the loading indicator.
	Quiet bool
}

// Shell drives a session.Controller from text input.
type Shell struct {
	ctl    *session.Controller
	reg    *Registry
	out    io.Writer
	errOut io.Writer
	opts   Options
	rest   string

	mu         sync.Mutex
	dirty      bool
	loading    bool
	lastNotice string
}

// New creates a shell over ctl using the commands in reg.
func New(ctl *session.Controller, reg *Registry, out, errOut io.Writer, opts Options) *Shell {
	return &Shell{
		ctl:    ctl,
		reg:    reg,
		out:    out,
		errOut: errOut,
		opts:   opts,
	}
}

// Controller returns the session the shell drives.
func (s *Shell) Controller() *session.Controller { return s.ctl }

// Out returns the standard output stream.
func (s *Shell) Out() io.Writer { return s.out }

// Rest returns the text after the command name on the line being executed,
// with its inner whitespace intact.
func (s *Shell) Rest() string { return s.rest }

// Registry returns the command registry.
func (s *Shell) Registry() *Registry { return s.reg }

// Run reads commands from in until EOF, ErrQuit or ctx cancellation.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	unsubscribe := s.ctl.Subscribe(s.onChange)
	defer unsubscribe()

	if !s.opts.Quiet {
		fmt.Fprintln(s.out, "Create a user to begin: user <name>")
	}

	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.opts.Prompt {
			fmt.Fprint(s.out, "> ")
		}
		if !scanner.Scan() {
			break
		}

		err := s.Exec(ctx, scanner.Text())
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(s.errOut, "error: %v\n", err)
		}
		s.render()
	}
	return scanner.Err()
}

// Exec runs a single command line. Blank lines and lines starting with '#'
// are ignored.
func (s *Shell) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]
	s.rest = strings.TrimLeftFunc(line[len(name):], unicode.IsSpace)

	cmd, ok := s.reg.Find(name)
	if !ok {
		return fmt.Errorf("unknown command: %s", name)
	}
	if cmd.NeedsAuth() && !s.ctl.Authenticated() {
		return errors.New("create a user first: user <name>")
	}
	return cmd.Run(ctx, s, args)
}

// onChange is the session subscription. It runs on the goroutine that
// executed the command, which for the shell is always Run's.
func (s *Shell) onChange(st session.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dirty = true
	// A fetch publishes several snapshots while loading; announce it once.
	if st.Loading && !s.loading && !s.opts.Quiet {
		fmt.Fprintln(s.out, output.LoadingMessage)
	}
	s.loading = st.Loading
}

// render prints the session if it changed since the last render.
func (s *Shell) render() {
	s.mu.Lock()
	dirty := s.dirty
	s.dirty = false
	s.mu.Unlock()
	if !dirty {
		return
	}

	st := s.ctl.State()
	if st.Notice != "" && st.Notice != s.lastNotice {
		s.lastNotice = st.Notice
		if !s.opts.Quiet {
			fmt.Fprintln(s.out, st.Notice)
		}
	}
	if !st.UserCreated || st.Loading {
		return
	}

	s.PrintList(st)
	if !s.opts.Quiet {
		fmt.Fprintln(s.out, s.hint(st))
	}
}

// PrintList prints the header and the task list for st.
func (s *Shell) PrintList(st session.State) {
	output.FormatListHeader(s.out, st.Username)
	output.FormatTasks(s.out, st.Tasks)
}

// hint lists the commands currently available. clear is offered only when
// there is something to clear.
func (s *Shell) hint(st session.State) string {
	names := []string{"add", "rm"}
	if st.CanClear() {
		names = append(names, "clear")
	}
	names = append(names, "list", "help", "quit")
	return "commands: " + strings.Join(names, ", ")
}
