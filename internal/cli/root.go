// Package cli implements focusctl, the command line companion of the tray app.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"focusguard/internal/logging"
	"focusguard/internal/storage"

	"github.com/spf13/cobra"
)

const appName = "focusguard"

type rootOptions struct {
	dir      string
	logLevel string
	logger   *slog.Logger
}

func (options *rootOptions) paths() (storage.Paths, error) {
	if options.dir != "" {
		return storage.PathsIn(options.dir), nil
	}
	paths, err := storage.ResolvePaths(appName)
	if err != nil {
		return storage.Paths{}, fmt.Errorf("resolve paths: %w", err)
	}
	return paths, nil
}

// NewRootCommand builds the focusctl command tree.
func NewRootCommand() *cobra.Command {
	options := &rootOptions{}

	root := &cobra.Command{
		Use:   "focusctl",
		Short: "Manage focusguard tasks, alerts and preferences",
		Long: `focusctl edits the data the focusguard tray app works with.

Tasks live in tasks.db, alert state in session.db and preferences in
settings.yaml, all under the focusguard config directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			options.logger = logging.New(cmd.ErrOrStderr(), options.logLevel)
		},
	}

	root.PersistentFlags().StringVar(&options.dir, "dir", "", "Data directory (default: user config dir)")
	root.PersistentFlags().StringVar(&options.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(newTaskCommand(options))
	root.AddCommand(newAlertsCommand(options))
	root.AddCommand(newPrefsCommand(options))
	return root
}

// Execute runs focusctl with args, writing to out and errOut.
func Execute(args []string, out, errOut io.Writer) error {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(errOut, "Error:", err)
		return err
	}
	return nil
}
