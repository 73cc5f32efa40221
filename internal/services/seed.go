package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/cardadmin/apiserver/internal/store"
	"github.com/cardadmin/apiserver/types"
)

// SeedAdmin is the account created by Seed when no user with its name exists.
type SeedAdmin struct {
	Username string
	Email    string
	Password string
}

// DefaultSeedAdmin matches the bootstrap credentials documented for new installs.
var DefaultSeedAdmin = SeedAdmin{
	Username: "admin",
	Email:    "admin@example.com",
	Password: "admin123",
}

// DefaultCards are the cards a fresh install starts with.
var DefaultCards = []types.Card{
	{
		Title:       "Welcome to Backoffice",
		Description: "This is your first card. You can edit or delete this card from the admin panel.",
		LandingPage: "https://example.com/welcome",
		ButtonText:  "Learn More",
		IsVisible:   true,
	},
	{
		Title:       "Getting Started Guide",
		Description: "Learn how to manage your content effectively. This guide covers all the basic features of the backoffice system.",
		LandingPage: "https://example.com/guide",
		ButtonText:  "Read Guide",
		IsVisible:   true,
	},
	{
		Title:       "Feature Announcement",
		Description: "Check out our latest features and updates. Stay informed about new capabilities and improvements.",
		LandingPage: "https://example.com/features",
		ButtonText:  "Explore",
		IsVisible:   true,
	},
	{
		Title:       "Contact Support",
		Description: "Need help? Our support team is here to assist you 24/7. Reach out anytime for assistance.",
		LandingPage: "https://example.com/support",
		ButtonText:  "Get Help",
		IsVisible:   false,
	},
}

// SeedReport summarises what Seed changed.
type SeedReport struct {
	AdminCreated bool
	AdminID      int
	CardsCreated int
	CardsSkipped int
}

// Seed creates the bootstrap admin and default cards. Existing rows are kept,
// so running it twice is harmless.
func Seed(ctx context.Context, users *UserService, cards *CardService, admin SeedAdmin, defaults []types.Card) (SeedReport, error) {
	var report SeedReport

	existing, err := users.GetByUsername(ctx, admin.Username)
	switch {
	case err == nil:
		report.AdminID = existing.ID
	case errors.Is(err, store.ErrNotFound):
		created, err := users.Register(ctx, admin.Username, admin.Email, admin.Password, true)
		if err != nil {
			return report, fmt.Errorf("seed admin: %w", err)
		}
		report.AdminCreated = true
		report.AdminID = created.ID
	default:
		return report, fmt.Errorf("seed admin: %w", err)
	}

	for _, card := range defaults {
		if _, err := cards.Create(ctx, card); err != nil {
			if errors.Is(err, store.ErrConflict) {
				report.CardsSkipped++
				continue
			}
			return report, fmt.Errorf("seed card %q: %w", card.Title, err)
		}
		report.CardsCreated++
	}
	return report, nil
}
