/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/cardadmin/apiserver/config"
	"github.com/cardadmin/apiserver/internal/client"
	"github.com/cardadmin/apiserver/internal/logging"
	"github.com/spf13/cobra"
)

var serverURL string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cardadmin",
	Short: "Promotional card admin console",
	Long: `cardadmin runs the card admin API and the console that manages it.

	cardadmin server            start the API
	cardadmin login             open a console session
	cardadmin cards list        list cards
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "API base URL (defaults to CARDADMIN_SERVER_URL)")
}

func newLogger(cfg config.Config) logging.Logger {
	return logging.New(os.Stderr, cfg.LogLevel)
}

// app bundles what the client subcommands need.
type app struct {
	cfg    config.Config
	api    *client.Client
	store  *client.SQLiteStore
	reader *bufio.Reader
}

func openApp(ctx context.Context) (*app, error) {
	cfg := config.LoadConfig()

	path := cfg.Client.SessionFile
	if path == "" {
		p, err := client.DefaultSessionPath()
		if err != nil {
			return nil, fmt.Errorf("locate session file: %w", err)
		}
		path = p
	}
	store, err := client.OpenSQLiteStore(ctx, path)
	if err != nil {
		return nil, err
	}

	session := client.NewSession(store)
	if err := session.Load(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load session: %w", err)
	}

	base := cfg.Client.ServerURL
	if serverURL != "" {
		base = serverURL
	}
	return &app{
		cfg:    cfg,
		api:    client.New(base, session),
		store:  store,
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

func (c *app) Close() error {
	return c.store.Close()
}

// requireLogin fails early when there is no session.
func (c *app) requireLogin() error {
	if _, ok := c.api.Session().CurrentUser(); !ok {
		return fmt.Errorf("not logged in; run `cardadmin login` first")
	}
	return nil
}

// requireAdmin hides admin-only actions from non-admin sessions. The server
// enforces the same rule.
func (c *app) requireAdmin() error {
	claims, ok := c.api.Session().CurrentUser()
	if !ok {
		return fmt.Errorf("not logged in; run `cardadmin login` first")
	}
	if !claims.IsAdmin {
		return client.ErrForbidden
	}
	return nil
}
