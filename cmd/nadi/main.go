package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"nadi/internal/bootstrap"
	sessiondomain "nadi/internal/modules/session/domain"
	sessiondto "nadi/internal/modules/session/dto"
	settingsdto "nadi/internal/modules/settings/dto"
	"nadi/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var homePath string

	root := &cobra.Command{
		Use:           "nadi",
		Short:         "Alternate-nostril breathing coach",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&homePath, "home", "", "home directory (defaults to $HOME, data lives under ~/.nadi)")

	root.AddCommand(newTUICmd(&homePath))
	root.AddCommand(newRunCmd(&homePath))
	root.AddCommand(newHistoryCmd(&homePath))
	root.AddCommand(newReindexCmd(&homePath))
	root.AddCommand(newSettingsCmd(&homePath))
	root.AddCommand(newDetectorCmd(&homePath))
	return root
}

func loadApp(homePath, detectorOverride string) (*bootstrap.App, error) {
	if homePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		homePath = home
	}
	cfg, err := config.New(homePath)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg, detectorOverride)
}

func newTUICmd(homePath *string) *cobra.Command {
	var detector string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the nadi terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(*homePath, detector)
			if err != nil {
				return err
			}
			return bootstrap.RunTUI(app)
		},
	}
	cmd.Flags().StringVar(&detector, "detector", "", "detector plugin binary (overrides settings)")
	return cmd
}

func newRunCmd(homePath *string) *cobra.Command {
	var breathSeconds, sessionSeconds int
	var detector string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a guided session in the plain terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*homePath, detector)
			if err != nil {
				return err
			}
			return runHeadless(cmd, app, breathSeconds, sessionSeconds)
		},
	}
	cmd.Flags().IntVar(&breathSeconds, "breath", 0, "seconds per breath phase (defaults to settings)")
	cmd.Flags().IntVar(&sessionSeconds, "session", 0, "session length in seconds (defaults to settings)")
	cmd.Flags().StringVar(&detector, "detector", "", "detector plugin binary (overrides settings)")
	return cmd
}

func runHeadless(cmd *cobra.Command, app *bootstrap.App, breathSeconds, sessionSeconds int) error {
	out := cmd.OutOrStdout()
	phaseColor := color.New(color.FgCyan, color.Bold)
	cycleColor := color.New(color.FgGreen)
	alertColor := color.New(color.FgRed, color.Bold)
	doneColor := color.New(color.FgGreen, color.Bold)
	mutedColor := color.New(color.Faint)

	stopDetection := app.StartDetection()
	defer stopDetection()

	events := app.Events(256)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ctx := context.Background()
	state, err := app.Sessions.Start(ctx, sessiondto.StartInput{BreathSeconds: breathSeconds, SessionSeconds: sessionSeconds})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "session started: %ds per phase, %s total\n\n",
		state.BreathSeconds, clockFormat(state.SessionSeconds))

	for {
		select {
		case <-sigCh:
			summary, err := app.Sessions.Stop(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out)
			printSummary(out, doneColor, summary.ElapsedSeconds, summary.CycleCount, summary.FinalScore, summary.Completed, summary.NotePath)
			return nil

		case event := <-events:
			switch event.Kind {
			case sessiondomain.EventPhaseChanged:
				_, _ = phaseColor.Fprintf(out, "%s", strings.ToUpper(event.Phase.String()))
				_, _ = fmt.Fprintf(out, "  %s\n", event.Phase.Instruction())
			case sessiondomain.EventCycleCompleted:
				_, _ = cycleColor.Fprintf(out, "cycle %d complete\n", event.CycleCount)
			case sessiondomain.EventClockTick:
				if event.ElapsedSeconds%30 == 0 {
					_, _ = mutedColor.Fprintf(out, "%s elapsed\n", clockFormat(event.ElapsedSeconds))
				}
			case sessiondomain.EventPostureAlert:
				_, _ = alertColor.Fprintf(out, "! sit up straight (%s)\n", event.Severity)
			case sessiondomain.EventEyeAlert:
				_, _ = alertColor.Fprintln(out, "! close your eyes")
			case sessiondomain.EventSessionCompleted:
				s := event.Summary
				_, _ = fmt.Fprintln(out)
				// Stop's summary already printed on the signal path; this is
				// the natural-expiry path.
				if s.Expired {
					app.Sessions.Acknowledge(ctx)
					printSummary(out, doneColor, s.ElapsedSeconds, s.CycleCount, s.FinalScore, true, "")
					return nil
				}
			}
		}
	}
}

func printSummary(out io.Writer, done *color.Color, elapsed, cycles, score int, completed bool, notePath string) {
	if completed {
		_, _ = done.Fprintln(out, "session complete")
	} else {
		_, _ = done.Fprintln(out, "session stopped")
	}
	_, _ = fmt.Fprintf(out, "practiced %s, %d cycles", clockFormat(elapsed), cycles)
	if score >= 0 {
		_, _ = fmt.Fprintf(out, ", posture %d", score)
	}
	_, _ = fmt.Fprintln(out)
	if notePath != "" {
		_, _ = fmt.Fprintf(out, "note: %s\n", notePath)
	}
}

func newHistoryCmd(homePath *string) *cobra.Command {
	history := &cobra.Command{Use: "history", Short: "Session history"}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*homePath, "")
			if err != nil {
				return err
			}
			records, err := app.SessionCLI.History(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions recorded")
				return nil
			}
			for _, r := range records {
				outcome := "stopped"
				if r.Completed {
					outcome = "completed"
				}
				score := "n/a"
				if r.FinalScore >= 0 {
					score = fmt.Sprintf("%d", r.FinalScore)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d cycles\t%s\tposture %s\n",
					r.ID, r.StartedAt.Format("2006-01-02 15:04"), outcome, r.CycleCount, clockFormat(r.ElapsedSeconds), score)
			}
			return nil
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "maximum sessions to list")

	var recordID string
	show := &cobra.Command{
		Use:   "show --id <id>",
		Short: "Show one recorded session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(recordID) == "" {
				return fmt.Errorf("--id is required")
			}
			app, err := loadApp(*homePath, "")
			if err != nil {
				return err
			}
			r, err := app.SessionCLI.GetRecord(context.Background(), recordID)
			if err != nil {
				return err
			}
			outcome := "stopped early"
			if r.Completed {
				outcome = "completed"
			}
			score := "n/a"
			if r.FinalScore >= 0 {
				score = fmt.Sprintf("%d", r.FinalScore)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(),
				"id: %s\nstarted: %s\nended: %s\noutcome: %s\npracticed: %s of %s\ncycles: %d\nbreath: %ds per phase\nposture: %s\nnote: %s\n",
				r.ID,
				r.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
				r.EndedAt.Format("2006-01-02T15:04:05Z07:00"),
				outcome,
				clockFormat(r.ElapsedSeconds), clockFormat(r.SessionSeconds),
				r.CycleCount,
				r.BreathSeconds,
				score,
				r.NotePath,
			)
			return nil
		},
	}
	show.Flags().StringVar(&recordID, "id", "", "session record id")

	history.AddCommand(list, show)
	return history
}

func newReindexCmd(homePath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the history index from session notes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*homePath, "")
			if err != nil {
				return err
			}
			count, err := app.SessionCLI.Reindex(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reindexed %d sessions\n", count)
			return nil
		},
	}
}

func newSettingsCmd(homePath *string) *cobra.Command {
	settings := &cobra.Command{Use: "settings", Short: "Practice settings"}

	settings.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*homePath, "")
			if err != nil {
				return err
			}
			s, err := app.SettingsCLI.Show(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(),
				"breath: %ds per phase\nsession: %s\nmax-deviation: %.2f\naudio-feedback: %t\neye-alerts: %t\ndetector: %s\n",
				s.BreathSeconds, clockFormat(s.SessionSeconds), s.MaxDeviation, s.AudioFeedback, s.EyeAlerts, s.DetectorBinary)
			return nil
		},
	})

	var breathSeconds, sessionSeconds int
	var maxDeviation float64
	var audioFeedback, eyeAlerts bool
	var detectorBinary string
	set := &cobra.Command{
		Use:   "set",
		Short: "Update settings (only the flags you pass change)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*homePath, "")
			if err != nil {
				return err
			}
			input := settingsdto.UpdateInput{}
			if cmd.Flags().Changed("breath") {
				input.BreathSeconds = &breathSeconds
			}
			if cmd.Flags().Changed("session") {
				input.SessionSeconds = &sessionSeconds
			}
			if cmd.Flags().Changed("max-deviation") {
				input.MaxDeviation = &maxDeviation
			}
			if cmd.Flags().Changed("audio-feedback") {
				input.AudioFeedback = &audioFeedback
			}
			if cmd.Flags().Changed("eye-alerts") {
				input.EyeAlerts = &eyeAlerts
			}
			if cmd.Flags().Changed("detector") {
				input.DetectorBinary = &detectorBinary
			}
			s, err := app.SettingsCLI.Update(context.Background(), input)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "settings saved: breath=%ds session=%s\n",
				s.BreathSeconds, clockFormat(s.SessionSeconds))
			return nil
		},
	}
	set.Flags().IntVar(&breathSeconds, "breath", 0, "seconds per breath phase")
	set.Flags().IntVar(&sessionSeconds, "session", 0, "session length in seconds")
	set.Flags().Float64Var(&maxDeviation, "max-deviation", 0, "posture deviation tolerance")
	set.Flags().BoolVar(&audioFeedback, "audio-feedback", true, "ring the bell on posture alerts")
	set.Flags().BoolVar(&eyeAlerts, "eye-alerts", false, "alert when eyes are open")
	set.Flags().StringVar(&detectorBinary, "detector", "", "detector plugin binary path")

	settings.AddCommand(set)
	return settings
}

func newDetectorCmd(homePath *string) *cobra.Command {
	detector := &cobra.Command{Use: "detector", Short: "Posture detector plugin"}

	var binary string
	check := &cobra.Command{
		Use:   "check",
		Short: "Verify the detector plugin starts and responds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*homePath, binary)
			if err != nil {
				return err
			}
			info, err := app.DetectorCLI.Check(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "detector ok: %s %s (%s)\n",
				info.Name, info.Version, strings.Join(info.Capabilities, ", "))
			return nil
		},
	}
	check.Flags().StringVar(&binary, "binary", "", "detector plugin binary (overrides settings)")

	detector.AddCommand(check)
	return detector
}

func clockFormat(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
