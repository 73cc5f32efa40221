/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/cardadmin/apiserver/config"
	"github.com/cardadmin/apiserver/internal/db"
	"github.com/cardadmin/apiserver/internal/services"
	"github.com/cardadmin/apiserver/internal/store"
	"github.com/spf13/cobra"
)

// seedCmd creates the bootstrap admin and the default cards.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the initial admin account and default cards",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		log := newLogger(cfg)
		ctx := cmd.Context()

		conn, err := db.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer conn.Close()

		users := services.NewUserService(store.NewUserRepository(conn))
		cards := services.NewCardService(store.NewCardRepository(conn), nil, nil, log)

		report, err := services.Seed(ctx, users, cards, services.DefaultSeedAdmin, services.DefaultCards)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if report.AdminCreated {
			fmt.Fprintf(out, "created admin %q (id %d)\n", services.DefaultSeedAdmin.Username, report.AdminID)
		} else {
			fmt.Fprintf(out, "admin %q already exists (id %d)\n", services.DefaultSeedAdmin.Username, report.AdminID)
		}
		fmt.Fprintf(out, "cards: %d created, %d already present\n", report.CardsCreated, report.CardsSkipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
