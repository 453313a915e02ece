package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"urbanpulse/internal/config"
	"urbanpulse/internal/logging"
	"urbanpulse/internal/server"
	"urbanpulse/internal/sim"
)

var (
	servePrintOnly  bool
	serveConfigPath string
	serveSchemaPath string
	serveLogFile    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the simulated telemetry peer",
	Long:  "serve starts the city simulator, streams telemetry frames over websocket, and accepts control actions.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(serveConfigPath, serveSchemaPath)
		if err != nil {
			return err
		}
		tick, err := cfg.Tick()
		if err != nil {
			return err
		}

		log := logging.Default()
		ctx, cancel := context.WithCancel(logging.NewContext(context.Background(), log))
		defer cancel()

		gen := sim.NewGenerator(cfg)
		srv := server.NewServer(gen, log)

		writer, cleanup, err := newWriters(cfg, srv, servePrintOnly, serveLogFile)
		if err != nil {
			return err
		}
		defer cleanup()

		simulator := sim.NewSimulator(gen, writer, tick)
		go simulator.Run(ctx)

		go func() {
			log.Info("telemetry peer listening", "addr", cfg.Listen)
			if err := srv.Start(ctx, cfg.Listen); err != nil && err != http.ErrServerClosed {
				log.Error("server failed", "err", err)
				cancel()
			}
		}()

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigs:
		case <-ctx.Done():
		}

		cancel()
		log.Info("city simulation stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&servePrintOnly, "print-only", false, "Print telemetry to STDOUT instead of writing to GreptimeDB")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "config/city.yaml", "Path to city configuration YAML")
	serveCmd.Flags().StringVar(&serveSchemaPath, "schema", "schemas/city.cue", "Path to CUE schema file")
	serveCmd.Flags().StringVar(&serveLogFile, "log-file", "", "Path to export telemetry frames (JSONL)")
}
