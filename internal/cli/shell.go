package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"gtodo/internal/exitcode"
	"gtodo/internal/shell"
)

func (a *app) newShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Line-oriented interface reading commands from stdin",
		Long: `shell reads one command per line. Start with "user <name>", then
use add, rm, clear and list. Type help for the full list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.openStreamLog(cmd.ErrOrStderr()); err != nil {
				return err
			}
			ctl, err := a.newController(cmd.Context())
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			sh := shell.New(ctl, shell.DefaultRegistry, cmd.OutOrStdout(), cmd.ErrOrStderr(), shell.Options{
				Prompt: !a.cfg.Quiet && isTerminal(in),
				Quiet:  a.cfg.Quiet,
			})

			a.logger.Info("starting shell", "base_url", a.cfg.BaseURL)
			err = sh.Run(cmd.Context(), in)
			if err != nil && !errors.Is(err, context.Canceled) {
				return exitcode.Wrap(exitcode.RuntimeError, err)
			}
			return nil
		},
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
