package services

import (
	"context"

	"github.com/cardadmin/apiserver/internal/logging"
	"github.com/cardadmin/apiserver/internal/mq"
	"github.com/cardadmin/apiserver/internal/storage"
	"github.com/cardadmin/apiserver/internal/store"
	"github.com/cardadmin/apiserver/types"
)

// CardRepository defines persistence operations for cards.
type CardRepository interface {
	List(ctx context.Context, q store.CardQuery) ([]types.Card, int, error)
	ListVisible(ctx context.Context) ([]types.Card, error)
	Get(ctx context.Context, id int) (types.Card, error)
	Create(ctx context.Context, card types.Card) (types.Card, error)
	Update(ctx context.Context, card types.Card) (types.Card, error)
	Delete(ctx context.Context, id int) error
}

// CardService encapsulates card use-cases. After every committed mutation
// it publishes a lifecycle event and rewrites the visible-card feed; failures
// of either are logged and never undo the mutation.
type CardService struct {
	repo   CardRepository
	events *mq.CardEvents
	feed   *storage.Feed
	log    logging.Logger
}

func NewCardService(repo CardRepository, events *mq.CardEvents, feed *storage.Feed, log logging.Logger) *CardService {
	if events == nil {
		events = mq.NewCardEvents(nil, "")
	}
	if feed == nil {
		feed = storage.NewFeed(nil, "")
	}
	if log == nil {
		log = logging.Discard()
	}
	return &CardService{repo: repo, events: events, feed: feed, log: log.With("component", "cards")}
}

func (s *CardService) List(ctx context.Context, q store.CardQuery) ([]types.Card, int, error) {
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	return s.repo.List(ctx, q)
}

func (s *CardService) ListVisible(ctx context.Context) ([]types.Card, error) {
	return s.repo.ListVisible(ctx)
}

func (s *CardService) Get(ctx context.Context, id int) (types.Card, error) {
	return s.repo.Get(ctx, id)
}

func (s *CardService) Create(ctx context.Context, card types.Card) (types.Card, error) {
	created, err := s.repo.Create(ctx, card)
	if err != nil {
		return types.Card{}, err
	}
	s.afterMutation(ctx, types.CardCreated, created.ID, &created)
	return created, nil
}

func (s *CardService) Update(ctx context.Context, card types.Card) (types.Card, error) {
	updated, err := s.repo.Update(ctx, card)
	if err != nil {
		return types.Card{}, err
	}
	s.afterMutation(ctx, types.CardUpdated, updated.ID, &updated)
	return updated, nil
}

func (s *CardService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.afterMutation(ctx, types.CardDeleted, id, nil)
	return nil
}

// RefreshFeed rewrites the visible-card feed from the database.
func (s *CardService) RefreshFeed(ctx context.Context) error {
	if !s.feed.Enabled() {
		return nil
	}
	visible, err := s.repo.ListVisible(ctx)
	if err != nil {
		return err
	}
	return s.feed.Publish(ctx, visible)
}

func (s *CardService) afterMutation(ctx context.Context, eventType types.CardEventType, cardID int, card *types.Card) {
	if _, err := s.events.Publish(ctx, eventType, cardID, card); err != nil {
		s.log.Warn(ctx, "card event not published", "event", string(eventType), "card_id", cardID, "error", err)
	}
	if err := s.RefreshFeed(ctx); err != nil {
		s.log.Warn(ctx, "visible card feed not refreshed", "card_id", cardID, "error", err)
	}
}
