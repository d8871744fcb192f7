package cli

import (
	"github.com/spf13/cobra"

	"gtodo/internal/exitcode"
)

func (a *app) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "gtodo",
		Short: "Per-user to-do list backed by a remote task service",
		Long: `gtodo creates a user on the remote task service and manages that
user's task list. Without a subcommand it starts the full-screen interface.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.openFileLog(); err != nil {
				return err
			}
			ctl, err := a.newController(cmd.Context())
			if err != nil {
				return err
			}
			a.logger.Info("starting interface", "base_url", a.cfg.BaseURL)
			if err := a.opts.TUI(cmd.Context(), ctl, a.cfg.Username); err != nil {
				return exitcode.Wrap(exitcode.RuntimeError, err)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/gtodo/config.yaml)")
	flags.String("base-url", "", "task service root URL")
	flags.String("user", "", "pre-fill the username")
	flags.String("log-level", "", "log level: DEBUG, INFO, WARN, ERROR")
	flags.String("log-file", "", "log file (default is debug.log in the config directory)")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "suppress hints and notices")

	for key, name := range map[string]string{
		"base_url":  "base-url",
		"username":  "user",
		"log.level": "log-level",
		"log.file":  "log-file",
		"debug":     "debug",
		"quiet":     "quiet",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}

	root.AddCommand(a.newShellCommand(), a.newVersionCommand())
	return root
}
