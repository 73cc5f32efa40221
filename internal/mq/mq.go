package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cardadmin/apiserver/types"
	"github.com/google/uuid"
)

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

const attrEventType = "event_type"

// CardEvents publishes and consumes card lifecycle events on one channel.
type CardEvents struct {
	backend Backend
	channel string
	now     func() time.Time
}

// NewCardEvents binds a backend to the channel card events travel on.
func NewCardEvents(backend Backend, channel string) *CardEvents {
	if backend == nil {
		backend = Noop{}
	}
	return &CardEvents{backend: backend, channel: channel, now: time.Now}
}

// Publish emits an event for a committed card mutation. card is nil for deletions.
func (e *CardEvents) Publish(ctx context.Context, eventType types.CardEventType, cardID int, card *types.Card) (types.CardEvent, error) {
	event := types.CardEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		CardID:     cardID,
		Card:       card,
		OccurredAt: e.now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return types.CardEvent{}, fmt.Errorf("encode card event: %w", err)
	}
	if _, err := e.backend.Publish(ctx, e.channel, data, map[string]string{attrEventType: string(eventType)}); err != nil {
		return types.CardEvent{}, fmt.Errorf("publish %s: %w", eventType, err)
	}
	return event, nil
}

// Watch delivers decoded events to fn until ctx is cancelled or the backend fails.
// Messages that do not decode are acknowledged and dropped.
func (e *CardEvents) Watch(ctx context.Context, fn func(ctx context.Context, event types.CardEvent) error) error {
	return e.backend.Subscribe(ctx, e.channel, func(ctx context.Context, msg Message) error {
		event, err := DecodeCardEvent(msg)
		if err != nil {
			return nil
		}
		return fn(ctx, event)
	})
}

// Close closes the underlying backend.
func (e *CardEvents) Close() error {
	return e.backend.Close()
}

// DecodeCardEvent parses a card event from a broker message.
func DecodeCardEvent(msg Message) (types.CardEvent, error) {
	var event types.CardEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return types.CardEvent{}, fmt.Errorf("decode card event: %w", err)
	}
	if event.Type == "" || event.CardID < 1 {
		return types.CardEvent{}, errors.New("decode card event: missing type or card id")
	}
	return event, nil
}

// ErrDisabled is returned by Noop.Subscribe.
var ErrDisabled = errors.New("events backend disabled")

// Noop drops published messages. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, []byte, map[string]string) (string, error) {
	return "", nil
}

func (Noop) Subscribe(context.Context, string, Handler) error {
	return ErrDisabled
}

func (Noop) Close() error {
	return nil
}
