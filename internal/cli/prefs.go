package cli

import (
	"fmt"
	"time"

	"focusguard/internal/storage"
	"focusguard/internal/ui/preferences"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type prefsView struct {
	FocusMinutes int  `yaml:"focus_duration_minutes"`
	BreakMinutes int  `yaml:"short_break_duration_minutes"`
	Fullscreen   bool `yaml:"fullscreen_prompt"`
	ShowAlerts   bool `yaml:"show_alerts"`
}

func newPrefsCommand(options *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change preferences",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := options.paths()
			if err != nil {
				return err
			}
			settings, err := storage.LoadSettingsFile(paths.Settings)
			if err != nil {
				options.logger.Warn("load settings, showing defaults", "error", err)
			}
			data, err := yaml.Marshal(prefsView{
				FocusMinutes: int(settings.FocusDuration / time.Minute),
				BreakMinutes: int(settings.ShortBreakDuration / time.Minute),
				Fullscreen:   settings.Fullscreen,
				ShowAlerts:   settings.ShowAlerts,
			})
			if err != nil {
				return fmt.Errorf("encode preferences: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	var (
		focusMinutes int
		breakMinutes int
		fullscreen   bool
		showAlerts   bool
	)
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change preferences; unspecified values are kept",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := options.paths()
			if err != nil {
				return err
			}
			settings, err := storage.LoadSettingsFile(paths.Settings)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("focus") {
				if err := validMinutes("focus", focusMinutes); err != nil {
					return err
				}
				settings.FocusDuration = time.Duration(focusMinutes) * time.Minute
			}
			if flags.Changed("break") {
				if err := validMinutes("break", breakMinutes); err != nil {
					return err
				}
				settings.ShortBreakDuration = time.Duration(breakMinutes) * time.Minute
			}
			if flags.Changed("fullscreen") {
				settings.Fullscreen = fullscreen
			}
			if flags.Changed("show-alerts") {
				settings.ShowAlerts = showAlerts
			}
			if err := storage.SaveSettingsFile(paths.Settings, settings); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Preferences saved. Restart focusguard to apply.")
			return nil
		},
	}
	setCmd.Flags().IntVar(&focusMinutes, "focus", 0, "Focus session length in minutes")
	setCmd.Flags().IntVar(&breakMinutes, "break", 0, "Break length in minutes")
	setCmd.Flags().BoolVar(&fullscreen, "fullscreen", false, "Show session prompts fullscreen")
	setCmd.Flags().BoolVar(&showAlerts, "show-alerts", true, "Show gentle reminder banners")

	cmd.AddCommand(showCmd, setCmd)
	return cmd
}

func validMinutes(name string, minutes int) error {
	if minutes < 1 || minutes > preferences.MaxSessionMinutes {
		return fmt.Errorf("%s must be between 1 and %d minutes", name, preferences.MaxSessionMinutes)
	}
	return nil
}
