package cli

import (
	"fmt"
	"sort"
	"time"

	"focusguard/internal/core/model"
	"focusguard/internal/core/signals"
	"focusguard/internal/storage"

	"github.com/spf13/cobra"
)

func withSignalStore(options *rootOptions, run func(*signals.Store) error) error {
	paths, err := options.paths()
	if err != nil {
		return err
	}
	kv, err := storage.OpenBoltKV(paths.Session)
	if err != nil {
		return fmt.Errorf("%w (is the tray app running?)", err)
	}
	defer kv.Close()
	return run(signals.NewStore(signals.Options{KV: kv, Logger: options.logger}))
}

func newAlertsCommand(options *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Inspect and reset cognitive alert state",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the tracked signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSignalStore(options, func(store *signals.Store) error {
				printSignals(cmd, store)
				return nil
			})
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget shown alerts so they may appear again",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSignalStore(options, func(store *signals.Store) error {
				store.ResetSession()
				fmt.Fprintln(cmd.OutOrStdout(), "Alert history cleared.")
				return nil
			})
		},
	}

	dismissCmd := &cobra.Command{
		Use:   "dismiss <type>",
		Short: "Remove one alert type from the history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alert := model.AlertType(args[0])
			if !alert.Valid() {
				return fmt.Errorf("unknown alert type %q", args[0])
			}
			return withSignalStore(options, func(store *signals.Store) error {
				store.DismissAlert(alert)
				return nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all stored signals, including focus totals and the session streak",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := options.paths()
			if err != nil {
				return err
			}
			kv, err := storage.OpenBoltKV(paths.Session)
			if err != nil {
				return fmt.Errorf("%w (is the tray app running?)", err)
			}
			defer kv.Close()
			if err := kv.Delete(signals.StorageKey); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Stored signals deleted.")
			return nil
		},
	}

	cmd.AddCommand(showCmd, resetCmd, dismissCmd, clearCmd)
	return cmd
}

func printSignals(cmd *cobra.Command, store *signals.Store) {
	state := store.State()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Shown alerts:          %s\n", joinAlerts(state.AlertHistory))
	fmt.Fprintf(out, "Last alert:            %s\n", formatTime(state.LastAlertTime))
	fmt.Fprintf(out, "Sessions without break: %d\n", state.ConsecutiveSessions)
	if state.Navigating() {
		fmt.Fprintf(out, "Navigating for:        %s\n", store.NavigationTime().Round(time.Second))
	} else {
		fmt.Fprintln(out, "Navigating for:        -")
	}
	fmt.Fprintf(out, "Last user action:      %s\n", formatTime(state.LastUserAction))

	if len(state.TaskFocusTimes) == 0 {
		return
	}
	ids := make([]string, 0, len(state.TaskFocusTimes))
	for id := range state.TaskFocusTimes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	fmt.Fprintln(out, "Focus time per task:")
	for _, id := range ids {
		fmt.Fprintf(out, "  %s  %s\n", id, store.TaskFocusTime(id).Round(time.Second))
	}
}

func joinAlerts(history []model.AlertType) string {
	if len(history) == 0 {
		return "-"
	}
	text := string(history[0])
	for _, alert := range history[1:] {
		text += ", " + string(alert)
	}
	return text
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.Local().Format("2006-01-02 15:04:05")
}
