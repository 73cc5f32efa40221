package store

import (
	"context"
	"testing"

	"github.com/cardadmin/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMemoryCards(t *testing.T, titles ...string) *MemoryCardRepository {
	t.Helper()
	repo := NewMemoryCardRepository()
	for i, title := range titles {
		_, err := repo.Create(context.Background(), types.Card{Title: title, IsVisible: i%2 == 0})
		require.NoError(t, err)
	}
	return repo
}

func TestMemoryCardListFiltersSortsAndPages(t *testing.T) {
	repo := seedMemoryCards(t, "Promo B", "Welcome", "promo A", "Guide")
	ctx := context.Background()

	cards, total, err := repo.List(ctx, CardQuery{TitlePrefix: "PRO", SortBy: "title", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, cards, 2)
	assert.Equal(t, "Promo B", cards[0].Title)
	assert.Equal(t, "promo A", cards[1].Title)

	cards, total, err = repo.List(ctx, CardQuery{Offset: 2, Limit: 1, Descending: true})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, cards, 1)
	assert.Equal(t, 2, cards[0].ID)

	cards, _, err = repo.List(ctx, CardQuery{Offset: 10, Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestMemoryCardVisibleAndConflicts(t *testing.T) {
	repo := seedMemoryCards(t, "One", "Two", "Three")
	ctx := context.Background()

	visible, err := repo.ListVisible(ctx)
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, []int{1, 3}, []int{visible[0].ID, visible[1].ID})

	_, err = repo.Create(ctx, types.Card{Title: "Two"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = repo.Update(ctx, types.Card{ID: 1, Title: "Three"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemoryCardDeleteTwiceIsNotFound(t *testing.T) {
	repo := seedMemoryCards(t, "One")
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, 1))
	assert.ErrorIs(t, repo.Delete(ctx, 1), ErrNotFound)
	_, err := repo.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.Update(ctx, types.Card{ID: 1, Title: "Back"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUserRepository(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, types.User{Username: "admin", Email: "admin@example.com", IsAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)

	_, err = repo.Create(ctx, types.User{Username: "other", Email: "admin@example.com"})
	assert.ErrorIs(t, err, ErrConflict)

	byName, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	_, err = repo.GetByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}
