package console

import (
	"context"
	"sync"

	"github.com/cardadmin/apiserver/types"
)

// Mutator persists card changes. *client.Client satisfies it.
type Mutator interface {
	DeleteCard(ctx context.Context, id int) error
	UpdateCard(ctx context.Context, card types.Card) (types.Card, error)
}

// Notifier shows a message to the operator.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// CardList is the displayed card list. Changes show up immediately and
// are rolled back when the server rejects them.
//
// At most one mutation per card may be in flight. Mutations on different
// cards may overlap; a failure restores the snapshot taken when that
// mutation began, which also undoes any later optimistic change.
type CardList struct {
	mutator  Mutator
	notifier Notifier

	mu       sync.Mutex
	cards    []types.Card
	pending  map[int]MutationIntent
	onChange func([]types.Card)
}

func NewCardList(mutator Mutator, notifier Notifier, initial []types.Card) *CardList {
	if notifier == nil {
		notifier = NotifierFunc(func(string) {})
	}
	return &CardList{
		mutator:  mutator,
		notifier: notifier,
		cards:    cloneCards(initial),
		pending:  make(map[int]MutationIntent),
	}
}

// OnChange registers fn to receive the list after every change. fn runs
// without the list's lock held.
func (l *CardList) OnChange(fn func([]types.Card)) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

// Cards returns a copy of the displayed list.
func (l *CardList) Cards() []types.Card {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneCards(l.cards)
}

// Replace swaps in a freshly fetched list.
func (l *CardList) Replace(cards []types.Card) {
	l.mu.Lock()
	l.cards = cloneCards(cards)
	publish := l.snapshotLocked()
	l.mu.Unlock()
	publish()
}

// Pending reports whether card id has an unsettled mutation.
func (l *CardList) Pending(id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.pending[id]
	return ok
}

// Begin applies kind to target and displays the result.
func (l *CardList) Begin(target types.Card, kind MutationKind) (MutationIntent, error) {
	l.mu.Lock()
	if _, busy := l.pending[target.ID]; busy {
		l.mu.Unlock()
		return MutationIntent{}, ErrMutationPending
	}
	next, intent, err := Apply(l.cards, target, kind)
	if err != nil {
		l.mu.Unlock()
		return MutationIntent{}, err
	}
	l.cards = next
	l.pending[target.ID] = intent
	publish := l.snapshotLocked()
	l.mu.Unlock()

	publish()
	return intent, nil
}

// Settle ends intent with the outcome of the server call. On failure the
// pre-mutation list is restored, the operator is notified and a
// *MutationFailure is returned. Nothing is retried.
func (l *CardList) Settle(intent MutationIntent, outcome error) error {
	l.mu.Lock()
	delete(l.pending, intent.TargetID)
	if outcome == nil {
		l.mu.Unlock()
		return nil
	}
	l.cards = cloneCards(intent.Previous)
	publish := l.snapshotLocked()
	l.mu.Unlock()
	publish()

	failure := &MutationFailure{Intent: intent, Err: outcome}
	l.notifier.Notify(failure.Error())
	return failure
}

// Delete removes card from the list and asks the server to delete it.
func (l *CardList) Delete(ctx context.Context, card types.Card) error {
	intent, err := l.Begin(card, KindDelete)
	if err != nil {
		return err
	}
	return l.Settle(intent, l.mutator.DeleteCard(ctx, card.ID))
}

// ToggleVisibility flips card's visibility and sends the new state.
func (l *CardList) ToggleVisibility(ctx context.Context, card types.Card) error {
	intent, err := l.Begin(card, KindToggleVisibility)
	if err != nil {
		return err
	}
	_, err = l.mutator.UpdateCard(ctx, intent.Proposed)
	return l.Settle(intent, err)
}

// snapshotLocked captures the list and listener while l.mu is held. The
// returned func delivers them and must be called after unlocking, so the
// listener may call back into the list.
func (l *CardList) snapshotLocked() func() {
	fn := l.onChange
	if fn == nil {
		return func() {}
	}
	cards := cloneCards(l.cards)
	return func() { fn(cards) }
}
