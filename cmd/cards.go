/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/cardadmin/apiserver/internal/cli"
	"github.com/cardadmin/apiserver/internal/client"
	"github.com/cardadmin/apiserver/internal/console"
	"github.com/cardadmin/apiserver/internal/forms"
	"github.com/cardadmin/apiserver/types"
	"github.com/spf13/cobra"
)

var (
	listPage  int
	listLimit int
	listQuery string
	listSort  string

	cardTitle       string
	cardDescription string
	cardButtonText  string
	cardLandingPage string
	cardHidden      bool

	deleteYes bool
)

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Manage promotional cards",
}

var cardsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cards",
	RunE: func(cmd *cobra.Command, args []string) error {
		con, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer con.Close()

		if err := con.requireLogin(); err != nil {
			return err
		}
		page, err := con.api.ListCards(cmd.Context(), client.ListOptions{
			Page:  listPage,
			Limit: listLimit,
			Query: listQuery,
			Sort:  listSort,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if err := cli.PrintCards(out, page.Items); err != nil {
			return err
		}
		fmt.Fprintf(out, "\npage %d, %d of %d cards\n", page.Page, len(page.Items), page.Total)
		return nil
	},
}

var cardsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one card with a preview",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseCardID(args[0])
		if err != nil {
			return err
		}
		con, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer con.Close()

		if err := con.requireLogin(); err != nil {
			return err
		}
		card, err := con.api.GetCard(cmd.Context(), id)
		if err != nil {
			return err
		}
		return cli.PrintCard(cmd.OutOrStdout(), card)
	},
}

var cardsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a card (admin only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		con, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer con.Close()

		if err := con.requireAdmin(); err != nil {
			return err
		}

		form := forms.CardForm{IsVisible: true}
		applyCardFlags(cmd, &form)
		card, err := submitCardForm(cmd, con, form, 0)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created card %d\n", card.ID)
		return nil
	},
}

var cardsEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit a card (admin only); unset flags keep the current value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseCardID(args[0])
		if err != nil {
			return err
		}
		con, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer con.Close()

		if err := con.requireAdmin(); err != nil {
			return err
		}

		current, err := con.api.GetCard(cmd.Context(), id)
		if err != nil {
			return err
		}
		form := forms.CardFormFrom(current)
		applyCardFlags(cmd, &form)
		card, err := submitCardForm(cmd, con, form, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated card %d\n", card.ID)
		return nil
	},
}

var cardsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a card (admin only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseCardID(args[0])
		if err != nil {
			return err
		}
		return mutateCard(cmd, id, console.KindDelete)
	},
}

var cardsToggleCmd = &cobra.Command{
	Use:   "toggle ID",
	Short: "Show or hide a card on the public site (admin only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseCardID(args[0])
		if err != nil {
			return err
		}
		return mutateCard(cmd, id, console.KindToggleVisibility)
	},
}

func init() {
	rootCmd.AddCommand(cardsCmd)
	cardsCmd.AddCommand(cardsListCmd, cardsShowCmd, cardsCreateCmd, cardsEditCmd, cardsDeleteCmd, cardsToggleCmd)

	cardsListCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	cardsListCmd.Flags().IntVar(&listLimit, "limit", 20, "cards per page")
	cardsListCmd.Flags().StringVarP(&listQuery, "query", "q", "", "title prefix to search for")
	cardsListCmd.Flags().StringVar(&listSort, "sort", "id", "sort column (id or title), prefix with - for descending")

	for _, c := range []*cobra.Command{cardsCreateCmd, cardsEditCmd} {
		c.Flags().StringVar(&cardTitle, "title", "", "card title")
		c.Flags().StringVar(&cardDescription, "description", "", "card description")
		c.Flags().StringVar(&cardButtonText, "button-text", "", "call to action label")
		c.Flags().StringVar(&cardLandingPage, "landing-page", "", "URL the button opens")
		c.Flags().BoolVar(&cardHidden, "hidden", false, "keep the card off the public site")
	}

	cardsDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "do not ask for confirmation")
}

func parseCardID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid card id %q", raw)
	}
	return id, nil
}

func applyCardFlags(cmd *cobra.Command, form *forms.CardForm) {
	flags := cmd.Flags()
	if flags.Changed("title") {
		form.Title = cardTitle
	}
	if flags.Changed("description") {
		form.Description = cardDescription
	}
	if flags.Changed("button-text") {
		form.ButtonText = cardButtonText
	}
	if flags.Changed("landing-page") {
		form.LandingPage = cardLandingPage
	}
	if flags.Changed("hidden") {
		form.IsVisible = !cardHidden
	}
}

func submitCardForm(cmd *cobra.Command, con *app, form forms.CardForm, id int) (types.Card, error) {
	engine := forms.NewEngine(forms.CardRules())
	card, err := forms.SubmitCard(cmd.Context(), engine, form, id, con.api)
	var verr *forms.ValidationError
	if errors.As(err, &verr) {
		cli.PrintFieldErrors(cmd.ErrOrStderr(), verr.Fields)
		return types.Card{}, errors.New("card form is invalid")
	}
	return card, err
}

// mutateCard applies kind to card id optimistically against the current
// listing. The list is printed as soon as it changes and again if the
// server rejects the change.
func mutateCard(cmd *cobra.Command, id int, kind console.MutationKind) error {
	ctx := cmd.Context()
	con, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer con.Close()

	if err := con.requireAdmin(); err != nil {
		return err
	}

	cards, err := loadAllCards(ctx, con.api)
	if err != nil {
		return err
	}
	target, ok := findCard(cards, id)
	if !ok {
		return fmt.Errorf("card %d: %w", id, client.ErrNotFound)
	}

	out := cmd.OutOrStdout()
	if kind == console.KindDelete && !deleteYes {
		yes, err := cli.Confirm(con.reader, fmt.Sprintf("Delete card %d %q?", target.ID, target.Title), out)
		if err != nil {
			return err
		}
		if !yes {
			fmt.Fprintln(out, "aborted")
			return nil
		}
	}

	notifier := console.NotifierFunc(func(msg string) { fmt.Fprintln(cmd.ErrOrStderr(), msg) })
	list := console.NewCardList(con.api, notifier, cards)
	list.OnChange(func(cards []types.Card) {
		if list.Pending(target.ID) {
			fmt.Fprintf(out, "%s card %d, waiting for the server...\n", kind, target.ID)
		} else {
			fmt.Fprintln(out, "\nchange rolled back:")
		}
		_ = cli.PrintCards(out, cards)
	})

	switch kind {
	case console.KindDelete:
		err = list.Delete(ctx, target)
	case console.KindToggleVisibility:
		err = list.ToggleVisibility(ctx, target)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s card %d: saved\n", kind, target.ID)
	return nil
}

func loadAllCards(ctx context.Context, api *client.Client) ([]types.Card, error) {
	const pageSize = 100
	var all []types.Card
	for page := 1; ; page++ {
		resp, err := api.ListCards(ctx, client.ListOptions{Page: page, Limit: pageSize})
		if err != nil {
			return nil, err
		}
		all = append(all, resp.Items...)
		if len(resp.Items) < pageSize || len(all) >= resp.Total {
			return all, nil
		}
	}
}

func findCard(cards []types.Card, id int) (types.Card, bool) {
	for _, c := range cards {
		if c.ID == id {
			return c, true
		}
	}
	return types.Card{}, false
}
