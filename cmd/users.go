/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/cardadmin/apiserver/internal/cli"
	"github.com/cardadmin/apiserver/internal/forms"
	"github.com/spf13/cobra"
)

var (
	registerUsername string
	registerEmail    string
	registerAdmin    bool
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage console accounts",
}

var usersRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account (admin only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		con, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer con.Close()

		if err := con.requireAdmin(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		form := forms.RegisterForm{Username: registerUsername, Email: registerEmail, IsAdmin: registerAdmin}
		if form.Username == "" {
			if form.Username, err = cli.GetSimpleText(con.reader, "Username", out); err != nil {
				return err
			}
		}
		if form.Email == "" {
			if form.Email, err = cli.GetSimpleText(con.reader, "Email", out); err != nil {
				return err
			}
		}
		if form.Password, err = cli.GetPassword(con.reader, "Password", out); err != nil {
			return err
		}

		engine := forms.NewEngine(forms.RegisterRules())
		user, err := forms.SubmitRegister(cmd.Context(), engine, form, con.api)
		var verr *forms.ValidationError
		if errors.As(err, &verr) {
			cli.PrintFieldErrors(cmd.ErrOrStderr(), verr.Fields)
			return errors.New("registration form is invalid")
		}
		if err != nil {
			return fmt.Errorf("could not register user: %w", err)
		}

		fmt.Fprintf(out, "created %s <%s> id=%d admin=%t\n", user.Username, user.Email, user.ID, user.IsAdmin)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersRegisterCmd)

	usersRegisterCmd.Flags().StringVar(&registerUsername, "username", "", "account name")
	usersRegisterCmd.Flags().StringVar(&registerEmail, "email", "", "email address")
	usersRegisterCmd.Flags().BoolVar(&registerAdmin, "admin", false, "grant admin rights")
}
