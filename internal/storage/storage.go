package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/cardadmin/apiserver/config"
	"github.com/cardadmin/apiserver/types"
)

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Bucket() string
}

// Open constructs the backend selected by cfg.Backend. It returns a nil
// backend when the feed is disabled.
func Open(ctx context.Context, cfg config.FeedConfig) (ObjectStorage, error) {
	switch cfg.Backend {
	case "", config.FeedBackendNone:
		return nil, nil
	case config.FeedBackendMinio:
		client, err := NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		return client, nil
	case config.FeedBackendGCS:
		client, err := NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, fmt.Errorf("gcs: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown feed backend %q", cfg.Backend)
	}
}

// FeedDocument is the object the public site reads its cards from.
type FeedDocument struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Cards       []types.Card `json:"cards"`
}

// Feed writes the list of visible cards to a single object.
// A Feed without a backend accepts writes and discards them.
type Feed struct {
	backend ObjectStorage
	key     string
	now     func() time.Time
}

func NewFeed(backend ObjectStorage, key string) *Feed {
	return &Feed{backend: backend, key: key, now: time.Now}
}

// Enabled reports whether the feed has a storage backend.
func (f *Feed) Enabled() bool {
	return f != nil && f.backend != nil
}

// EnsureBucket ensures the configured bucket exists.
func (f *Feed) EnsureBucket(ctx context.Context) error {
	if !f.Enabled() {
		return nil
	}
	return f.backend.EnsureBucket(ctx)
}

// Publish replaces the feed object with the given cards.
func (f *Feed) Publish(ctx context.Context, cards []types.Card) error {
	if !f.Enabled() {
		return nil
	}
	if cards == nil {
		cards = []types.Card{}
	}
	data, err := json.Marshal(FeedDocument{GeneratedAt: f.now().UTC(), Cards: cards})
	if err != nil {
		return fmt.Errorf("encode feed: %w", err)
	}
	if err := f.backend.Put(ctx, f.key, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		return fmt.Errorf("write feed %s/%s: %w", f.backend.Bucket(), f.key, err)
	}
	return nil
}

// Read loads the current feed object.
func (f *Feed) Read(ctx context.Context) (FeedDocument, error) {
	if !f.Enabled() {
		return FeedDocument{}, fmt.Errorf("feed storage disabled")
	}
	rc, err := f.backend.Get(ctx, f.key)
	if err != nil {
		return FeedDocument{}, err
	}
	defer rc.Close()

	var doc FeedDocument
	if err := json.NewDecoder(rc).Decode(&doc); err != nil {
		return FeedDocument{}, fmt.Errorf("decode feed: %w", err)
	}
	return doc, nil
}
