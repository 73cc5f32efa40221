package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/cardadmin/apiserver/internal/logging"
	"github.com/cardadmin/apiserver/internal/mq"
	"github.com/cardadmin/apiserver/internal/storage"
	"github.com/cardadmin/apiserver/internal/store"
	"github.com/cardadmin/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedEvents struct {
	events []types.CardEvent
	fail   error
}

func (c *capturedEvents) Publish(_ context.Context, _ string, data []byte, _ map[string]string) (string, error) {
	if c.fail != nil {
		return "", c.fail
	}
	event, err := mq.DecodeCardEvent(mq.Message{Data: data})
	if err != nil {
		return "", err
	}
	c.events = append(c.events, event)
	return event.ID, nil
}

func (c *capturedEvents) Subscribe(context.Context, string, mq.Handler) error { return nil }
func (c *capturedEvents) Close() error                                       { return nil }

type feedObjects struct {
	last []byte
}

func (f *feedObjects) EnsureBucket(context.Context) error { return nil }
func (f *feedObjects) Put(_ context.Context, _ string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	f.last = data
	return err
}
func (f *feedObjects) Get(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.last)), nil
}
func (f *feedObjects) Bucket() string { return "cards" }

func newCardService(t *testing.T) (*CardService, *capturedEvents, *storage.Feed) {
	t.Helper()
	events := &capturedEvents{}
	feed := storage.NewFeed(&feedObjects{}, "feed.json")
	svc := NewCardService(store.NewMemoryCardRepository(), mq.NewCardEvents(events, "card-events"), feed, logging.Discard())
	return svc, events, feed
}

func TestCardServiceMutationsPublishEventsAndFeed(t *testing.T) {
	svc, events, feed := newCardService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, types.Card{Title: "Promo", Description: "ok desc", ButtonText: "Go", LandingPage: "http://x", IsVisible: true})
	require.NoError(t, err)
	hidden, err := svc.Create(ctx, types.Card{Title: "Hidden", IsVisible: false})
	require.NoError(t, err)

	created.IsVisible = false
	_, err = svc.Update(ctx, created)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, hidden.ID))

	require.Len(t, events.events, 4)
	assert.Equal(t, types.CardCreated, events.events[0].Type)
	assert.Equal(t, types.CardUpdated, events.events[2].Type)
	assert.False(t, events.events[2].Card.IsVisible)
	assert.Equal(t, types.CardDeleted, events.events[3].Type)
	assert.Equal(t, hidden.ID, events.events[3].CardID)

	doc, err := feed.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, doc.Cards)
}

func TestCardServiceSideEffectFailuresDoNotFailMutation(t *testing.T) {
	events := &capturedEvents{fail: errors.New("broker down")}
	svc := NewCardService(store.NewMemoryCardRepository(), mq.NewCardEvents(events, "card-events"), nil, nil)

	created, err := svc.Create(context.Background(), types.Card{Title: "Promo", IsVisible: true})
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
}

func TestCardServiceDeleteMissingIsNotFound(t *testing.T) {
	svc, events, _ := newCardService(t)

	err := svc.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, events.events)
}

func TestCardServiceListClampsLimit(t *testing.T) {
	svc, _, _ := newCardService(t)
	ctx := context.Background()
	for _, title := range []string{"a", "b", "c"} {
		_, err := svc.Create(ctx, types.Card{Title: title})
		require.NoError(t, err)
	}

	cards, total, err := svc.List(ctx, store.CardQuery{Limit: 0})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, cards, 3)
}
