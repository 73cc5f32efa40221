/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cardadmin/apiserver/config"
	"github.com/cardadmin/apiserver/internal/mq"
	"github.com/cardadmin/apiserver/types"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect card lifecycle events",
}

var eventsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print card events from the configured broker as JSON lines",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		if cfg.Events.Backend == "" || cfg.Events.Backend == config.EventsBackendNone {
			return errors.New("no events backend configured; set EVENTS_BACKEND")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		backend, err := mq.Open(ctx, cfg.Events)
		if err != nil {
			return err
		}
		events := mq.NewCardEvents(backend, cfg.Events.Channel)
		defer events.Close()

		enc := json.NewEncoder(cmd.OutOrStdout())
		err = events.Watch(ctx, func(_ context.Context, event types.CardEvent) error {
			return enc.Encode(event)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("watch %s: %w", cfg.Events.Channel, err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsWatchCmd)
}
