/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardadmin/apiserver/config"
	"github.com/cardadmin/apiserver/internal/server"
	"github.com/spf13/cobra"
)

var serverMemory bool

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the card admin API server",
	Long: `Starts the card admin API server. Usage:

	cardadmin server
	cardadmin server --memory    # no database, seeded with the default admin and cards
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		log := newLogger(cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var opts []server.Option
		if serverMemory {
			opts = append(opts, server.WithMemoryStore())
		}

		srv, err := server.New(ctx, cfg, log, opts...)
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}

		if serverMemory {
			report, err := srv.Seed(ctx)
			if err != nil {
				return fmt.Errorf("seed memory store: %w", err)
			}
			log.Info(ctx, "memory store seeded", "admin_id", report.AdminID, "cards", report.CardsCreated)
		}

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		log.Info(context.Background(), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().BoolVar(&serverMemory, "memory", false, "keep users and cards in memory instead of postgres")
}
