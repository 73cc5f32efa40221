/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/cardadmin/apiserver/internal/cli"
	"github.com/cardadmin/apiserver/internal/client"
	"github.com/cardadmin/apiserver/internal/forms"
	"github.com/spf13/cobra"
)

var loginUsername string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and keep the session for later commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		con, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer con.Close()

		out := cmd.OutOrStdout()
		form := forms.LoginForm{Username: loginUsername}
		if form.Username == "" {
			if form.Username, err = cli.GetSimpleText(con.reader, "Username", out); err != nil {
				return err
			}
		}
		if form.Password, err = cli.GetPassword(con.reader, "Password", out); err != nil {
			return err
		}

		engine := forms.NewEngine(forms.LoginRules())
		err = forms.SubmitLogin(cmd.Context(), engine, form, con.api)
		var verr *forms.ValidationError
		switch {
		case errors.As(err, &verr):
			cli.PrintFieldErrors(cmd.ErrOrStderr(), verr.Fields)
			return errors.New("login form is incomplete")
		case errors.Is(err, client.ErrInvalidCredentials):
			return err
		case err != nil:
			return fmt.Errorf("login failed: %w", err)
		}

		claims, _ := con.api.Session().CurrentUser()
		role := "user"
		if claims.IsAdmin {
			role = "admin"
		}
		fmt.Fprintf(out, "logged in as %s (%s)\n", claims.Username, role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		con, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer con.Close()

		if err := con.api.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the account behind the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		con, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer con.Close()

		if err := con.requireLogin(); err != nil {
			return err
		}
		user, err := con.api.Me(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> id=%d admin=%t\n", user.Username, user.Email, user.ID, user.IsAdmin)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "account name")
}
