package console

import (
	"errors"
	"fmt"

	"github.com/cardadmin/apiserver/types"
)

// MutationKind names an optimistic change to the displayed card list.
type MutationKind int

const (
	KindDelete MutationKind = iota + 1
	KindToggleVisibility
)

func (k MutationKind) String() string {
	switch k {
	case KindDelete:
		return "delete"
	case KindToggleVisibility:
		return "toggle visibility"
	default:
		return fmt.Sprintf("MutationKind(%d)", int(k))
	}
}

var (
	// ErrCardNotListed is returned when the target is not in the displayed list.
	ErrCardNotListed = errors.New("card is not in the list")
	// ErrMutationPending is returned when the target already has an unsettled mutation.
	ErrMutationPending = errors.New("a change to this card is still in flight")
	ErrUnknownKind     = errors.New("unknown mutation kind")
)

// MutationIntent records an optimistic change. Previous is the list exactly
// as it was displayed before the change and is what a failed mutation restores.
type MutationIntent struct {
	TargetID int
	Kind     MutationKind
	Previous []types.Card
	Proposed types.Card
}

// Apply computes the list to display once kind is applied to target.
// current is never modified.
func Apply(current []types.Card, target types.Card, kind MutationKind) ([]types.Card, MutationIntent, error) {
	index := -1
	for i, card := range current {
		if card.ID == target.ID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, MutationIntent{}, ErrCardNotListed
	}

	intent := MutationIntent{
		TargetID: target.ID,
		Kind:     kind,
		Previous: cloneCards(current),
	}

	switch kind {
	case KindDelete:
		next := make([]types.Card, 0, len(current)-1)
		next = append(next, current[:index]...)
		next = append(next, current[index+1:]...)
		intent.Proposed = current[index]
		return next, intent, nil
	case KindToggleVisibility:
		next := cloneCards(current)
		toggled := current[index]
		toggled.IsVisible = !toggled.IsVisible
		next[index] = toggled
		intent.Proposed = toggled
		return next, intent, nil
	default:
		return nil, MutationIntent{}, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
}

// MutationFailure is reported when the server rejects an optimistic change.
type MutationFailure struct {
	Intent MutationIntent
	Err    error
}

func (e *MutationFailure) Error() string {
	return fmt.Sprintf("could not %s card %d: %v", e.Intent.Kind, e.Intent.TargetID, e.Err)
}

func (e *MutationFailure) Unwrap() error {
	return e.Err
}

func cloneCards(cards []types.Card) []types.Card {
	if cards == nil {
		return nil
	}
	out := make([]types.Card, len(cards))
	copy(out, cards)
	return out
}
