package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cardadmin/apiserver/types"
)

// MemoryCardRepository keeps cards in process memory. It mirrors the
// postgres repository's semantics and is used for local runs and tests.
type MemoryCardRepository struct {
	mu     sync.RWMutex
	nextID int
	cards  map[int]types.Card
}

func NewMemoryCardRepository() *MemoryCardRepository {
	return &MemoryCardRepository{nextID: 1, cards: make(map[int]types.Card)}
}

func (r *MemoryCardRepository) List(_ context.Context, q CardQuery) ([]types.Card, int, error) {
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.Limit < 1 {
		q.Limit = 20
	}
	column, err := orderClause(q.SortBy, q.Descending)
	if err != nil {
		return nil, 0, err
	}
	byTitle := strings.HasPrefix(column, "title")
	prefix := strings.ToLower(strings.TrimSpace(q.TitlePrefix))

	r.mu.RLock()
	matched := make([]types.Card, 0, len(r.cards))
	for _, card := range r.cards {
		if strings.HasPrefix(strings.ToLower(card.Title), prefix) {
			matched = append(matched, card)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if byTitle && a.Title != b.Title {
			if q.Descending {
				return a.Title > b.Title
			}
			return a.Title < b.Title
		}
		if !byTitle && q.Descending {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})

	total := len(matched)
	if q.Offset >= total {
		return []types.Card{}, total, nil
	}
	end := q.Offset + q.Limit
	if end > total {
		end = total
	}
	return matched[q.Offset:end], total, nil
}

func (r *MemoryCardRepository) ListVisible(_ context.Context) ([]types.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	visible := make([]types.Card, 0, len(r.cards))
	for _, card := range r.cards {
		if card.IsVisible {
			visible = append(visible, card)
		}
	}
	sort.Slice(visible, func(i, j int) bool { return visible[i].ID < visible[j].ID })
	return visible, nil
}

func (r *MemoryCardRepository) Get(_ context.Context, id int) (types.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	card, ok := r.cards[id]
	if !ok {
		return types.Card{}, ErrNotFound
	}
	return card, nil
}

func (r *MemoryCardRepository) Create(_ context.Context, card types.Card) (types.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.titleTaken(card.Title, 0) {
		return types.Card{}, ErrConflict
	}
	now := time.Now()
	card.ID = r.nextID
	card.CreatedAt = now
	card.UpdatedAt = now
	r.nextID++
	r.cards[card.ID] = card
	return card, nil
}

func (r *MemoryCardRepository) Update(_ context.Context, card types.Card) (types.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.cards[card.ID]
	if !ok {
		return types.Card{}, ErrNotFound
	}
	if r.titleTaken(card.Title, card.ID) {
		return types.Card{}, ErrConflict
	}
	card.CreatedAt = current.CreatedAt
	card.UpdatedAt = time.Now()
	r.cards[card.ID] = card
	return card, nil
}

func (r *MemoryCardRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cards[id]; !ok {
		return ErrNotFound
	}
	delete(r.cards, id)
	return nil
}

func (r *MemoryCardRepository) titleTaken(title string, exceptID int) bool {
	for id, card := range r.cards {
		if id != exceptID && card.Title == title {
			return true
		}
	}
	return false
}

// MemoryUserRepository keeps accounts in process memory.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int
	users  map[int]types.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{nextID: 1, users: make(map[int]types.User)}
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id int) (types.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (types.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, ErrNotFound
}

func (r *MemoryUserRepository) Create(_ context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return types.User{}, ErrConflict
		}
	}
	now := time.Now()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	r.nextID++
	r.users[user.ID] = user
	return user, nil
}
