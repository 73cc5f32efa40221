package types

import "time"

// Card represents a promotional tile shown on the public site.
// Cards are managed by administrators from the console; only cards
// flagged as visible are exposed through the public feed.
type Card struct {
	// ID is the unique identifier of the card.
	ID int `json:"id" db:"id"`

	// Title is the headline rendered on the card.
	Title string `json:"title" db:"title"`

	// Description is the body copy rendered below the title.
	Description string `json:"description" db:"description"`

	// ButtonText is the label of the call-to-action button.
	ButtonText string `json:"buttonText" db:"button_text"`

	// LandingPage is the URL the call-to-action button navigates to.
	LandingPage string `json:"landingPage" db:"landing_page"`

	// IsVisible controls whether the card is published to the public site.
	IsVisible bool `json:"isVisible" db:"is_visible"`

	// CreatedAt is the timestamp at which the card was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the card.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CardEventType names a card lifecycle transition.
type CardEventType string

const (
	CardCreated CardEventType = "card.created"
	CardUpdated CardEventType = "card.updated"
	CardDeleted CardEventType = "card.deleted"
)

// CardEvent is published to the message broker after a card mutation
// has been committed to the database.
type CardEvent struct {
	// ID uniquely identifies the event.
	ID string `json:"id"`

	// Type is the lifecycle transition that produced the event.
	Type CardEventType `json:"type"`

	// CardID is the identifier of the affected card.
	CardID int `json:"card_id"`

	// Card carries the state after the mutation. It is nil for deletions.
	Card *Card `json:"card,omitempty"`

	// OccurredAt is the time the mutation was committed.
	OccurredAt time.Time `json:"occurred_at"`
}
