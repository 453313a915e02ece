package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"urbanpulse/internal/config"
	"urbanpulse/internal/control"
	"urbanpulse/internal/dashboard"
	"urbanpulse/internal/logging"
	"urbanpulse/internal/stream"
	"urbanpulse/internal/tui"
)

var (
	dashConfigPath string
	dashSchemaPath string
	dashDebug      bool
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Run the operator dashboard",
	Long:  "dashboard connects to the telemetry stream and renders the live city state with operator controls.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(dashConfigPath, dashSchemaPath)
		if err != nil {
			return err
		}

		level := slog.LevelInfo
		if dashDebug {
			level = slog.LevelDebug
		}
		// The TUI owns stdout; diagnostics go to stderr.
		log := logging.New(os.Stderr, level)

		store := dashboard.NewStore()
		dispatcher := control.NewDispatcher(cfg.ControlURL, store, log, cfg.SurfaceCommandErrors)

		program := tea.NewProgram(tui.NewModel(store, dispatcher), tea.WithAltScreen())
		pipeline := dashboard.NewPipeline(store, log, func() {
			program.Send(tui.RefreshMsg{})
		})

		min, max, err := cfg.Backoff()
		if err != nil {
			return err
		}
		client := stream.NewClient(cfg.TelemetryURL, pipeline, log, stream.Backoff{
			Enabled: cfg.Reconnect.Enabled,
			Min:     min,
			Max:     max,
		})

		// The stream stops with the program: cancelling the context closes
		// the connection on every exit path, even before it ever opened.
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := client.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("telemetry stream ended", "err", err)
			}
		}()

		_, err = program.Run()
		return err
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashConfigPath, "config", "config/city.yaml", "Path to city configuration YAML")
	dashboardCmd.Flags().StringVar(&dashSchemaPath, "schema", "schemas/city.cue", "Path to CUE schema file")
	dashboardCmd.Flags().BoolVar(&dashDebug, "debug", false, "Enable debug logging on stderr")
}
