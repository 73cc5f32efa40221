package mq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cardadmin/apiserver/config"
	"github.com/cardadmin/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBackend struct {
	published []Message
	channels  []string
	fail      error
}

func (b *recordingBackend) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if b.fail != nil {
		return "", b.fail
	}
	b.channels = append(b.channels, channel)
	b.published = append(b.published, Message{ID: "m", Data: data, Attributes: attrs})
	return "m", nil
}

func (b *recordingBackend) Subscribe(ctx context.Context, _ string, handler Handler) error {
	for _, msg := range b.published {
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (b *recordingBackend) Close() error { return nil }

func TestCardEventsPublishAndWatch(t *testing.T) {
	backend := &recordingBackend{}
	events := NewCardEvents(backend, "card-events")
	events.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	card := &types.Card{ID: 4, Title: "Promo", IsVisible: true}
	published, err := events.Publish(context.Background(), types.CardUpdated, 4, card)
	require.NoError(t, err)
	_, err = events.Publish(context.Background(), types.CardDeleted, 5, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, published.ID)
	assert.Equal(t, []string{"card-events", "card-events"}, backend.channels)
	assert.Equal(t, "card.updated", backend.published[0].Attributes[attrEventType])

	var seen []types.CardEvent
	err = events.Watch(context.Background(), func(_ context.Context, event types.CardEvent) error {
		seen = append(seen, event)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, seen, 2)
	assert.Equal(t, types.CardUpdated, seen[0].Type)
	assert.Equal(t, "Promo", seen[0].Card.Title)
	assert.Equal(t, published.OccurredAt, seen[0].OccurredAt)
	assert.Equal(t, types.CardDeleted, seen[1].Type)
	assert.Nil(t, seen[1].Card)
}

func TestCardEventsPublishWrapsBackendError(t *testing.T) {
	boom := errors.New("broker down")
	events := NewCardEvents(&recordingBackend{fail: boom}, "card-events")

	_, err := events.Publish(context.Background(), types.CardCreated, 1, &types.Card{ID: 1})
	assert.ErrorIs(t, err, boom)
}

func TestWatchDropsUndecodableMessages(t *testing.T) {
	backend := &recordingBackend{published: []Message{{Data: []byte("garbage")}, {Data: []byte(`{"type":"card.deleted"}`)}}}
	events := NewCardEvents(backend, "card-events")

	calls := 0
	err := events.Watch(context.Background(), func(context.Context, types.CardEvent) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestNoopBackend(t *testing.T) {
	events := NewCardEvents(nil, "card-events")

	_, err := events.Publish(context.Background(), types.CardCreated, 1, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, events.Watch(context.Background(), nil), ErrDisabled)
	assert.NoError(t, events.Close())
}

func TestOpenSelectsBackend(t *testing.T) {
	backend, err := Open(context.Background(), config.EventsConfig{Backend: config.EventsBackendNone})
	require.NoError(t, err)
	assert.IsType(t, Noop{}, backend)

	_, err = Open(context.Background(), config.EventsConfig{Backend: "kafka"})
	assert.Error(t, err)

	_, err = Open(context.Background(), config.EventsConfig{Backend: config.EventsBackendRabbitMQ})
	assert.Error(t, err)
}

func TestHeadersToAttributes(t *testing.T) {
	attrs := headersToAttributes(map[string]any{"a": "x", "b": []byte("y"), "c": 3})
	assert.Equal(t, map[string]string{"a": "x", "b": "y", "c": "3"}, attrs)
	assert.Nil(t, headersToAttributes(nil))
}
