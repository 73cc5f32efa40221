package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/cardadmin/apiserver/types"
)

// PrintCards writes cards as an aligned table.
func PrintCards(w io.Writer, cards []types.Card) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tVISIBLE\tBUTTON\tLANDING PAGE")
	for _, c := range cards {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", c.ID, truncate(c.Title, 40), yesNo(c.IsVisible), truncate(c.ButtonText, 20), c.LandingPage)
	}
	return tw.Flush()
}

// PrintCard writes every field of card followed by a preview of how it renders.
func PrintCard(w io.Writer, card types.Card) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", card.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", card.Title)
	fmt.Fprintf(tw, "Description:\t%s\n", card.Description)
	fmt.Fprintf(tw, "Button text:\t%s\n", card.ButtonText)
	fmt.Fprintf(tw, "Landing page:\t%s\n", card.LandingPage)
	fmt.Fprintf(tw, "Visible:\t%s\n", yesNo(card.IsVisible))
	if !card.UpdatedAt.IsZero() {
		fmt.Fprintf(tw, "Updated:\t%s\n", card.UpdatedAt.Format("2006-01-02 15:04"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return PrintPreview(w, card, 36)
}

// PrintPreview draws the card the way the public site lays it out.
func PrintPreview(w io.Writer, card types.Card, width int) error {
	inner := width - 4
	border := "+" + strings.Repeat("-", width-2) + "+"

	lines := []string{border}
	for _, l := range wrap(card.Title, inner) {
		lines = append(lines, "| "+pad(strings.ToUpper(l), inner)+" |")
	}
	lines = append(lines, "| "+pad("", inner)+" |")
	for _, l := range wrap(card.Description, inner) {
		lines = append(lines, "| "+pad(l, inner)+" |")
	}
	lines = append(lines, "| "+pad("", inner)+" |")
	button := "[ " + truncate(card.ButtonText, inner-4) + " ]"
	lines = append(lines, "| "+pad(button, inner)+" |", border)

	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// PrintFieldErrors lists form messages in a stable order.
func PrintFieldErrors(w io.Writer, fields map[string]string) {
	names := make([]string, 0, len(fields))
	for name, msg := range fields {
		if msg != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s\n", name, fields[name])
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 2 {
		return s
	}
	return string(r[:n-1]) + "…"
}

func pad(s string, n int) string {
	if l := len([]rune(s)); l < n {
		return s + strings.Repeat(" ", n-l)
	}
	return s
}

func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	current := ""
	for _, word := range words {
		for len([]rune(word)) > width {
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			r := []rune(word)
			lines = append(lines, string(r[:width]))
			word = string(r[width:])
		}
		switch {
		case current == "":
			current = word
		case len([]rune(current))+1+len([]rune(word)) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
