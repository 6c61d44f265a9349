package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cwbudde/diffevo/internal/config"
	"github.com/cwbudde/diffevo/internal/server"
	"github.com/cwbudde/diffevo/internal/store"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP study service",
	Long: `Starts an HTTP server that launches optimization studies as background
jobs, streams progress over SSE and exposes Prometheus metrics on /metrics.
Settings come from the environment (DIFFEVO_ADDR, DIFFEVO_DATA_DIR, with an
optional .env file); --addr overrides the listen address.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env := config.LoadServerEnv()
		if cmd.Flags().Changed("addr") {
			env.Addr = serveAddr
		}

		recordStore, err := store.NewFSStore(env.DataDir)
		if err != nil {
			return fmt.Errorf("failed to create record store: %w", err)
		}

		slog.Info("Starting study service", "addr", env.Addr, "data_dir", env.DataDir)
		return server.NewServer(env.Addr, env.DataDir, recordStore).Start()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	rootCmd.AddCommand(serveCmd)
}
