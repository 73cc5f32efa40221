package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cardadmin/apiserver/types"
)

// CardQuery narrows and orders a card listing.
type CardQuery struct {
	Offset      int
	Limit       int
	TitlePrefix string
	SortBy      string
	Descending  bool
}

var cardSortColumns = map[string]string{
	"":      "id",
	"id":    "id",
	"title": "title",
}

// CardRepository handles persistence for cards.
type CardRepository struct {
	db *sql.DB
}

func NewCardRepository(db *sql.DB) *CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) List(ctx context.Context, q CardQuery) ([]types.Card, int, error) {
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.Limit < 1 {
		q.Limit = 20
	}
	orderBy, err := orderClause(q.SortBy, q.Descending)
	if err != nil {
		return nil, 0, err
	}
	pattern := escapeLike(strings.TrimSpace(q.TitlePrefix)) + "%"

	const countQuery = `SELECT COUNT(1) FROM cards WHERE title ILIKE $1`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := `
		SELECT id, title, description, button_text, landing_page, is_visible, created_at, updated_at
		FROM cards
		WHERE title ILIKE $1
		ORDER BY ` + orderBy + `
		OFFSET $2 LIMIT $3`
	rows, err := r.db.QueryContext(ctx, listQuery, pattern, q.Offset, q.Limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	cards, err := scanCards(rows, q.Limit)
	if err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

// ListVisible returns every card published to the public site.
func (r *CardRepository) ListVisible(ctx context.Context) ([]types.Card, error) {
	const query = `
		SELECT id, title, description, button_text, landing_page, is_visible, created_at, updated_at
		FROM cards
		WHERE is_visible
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCards(rows, 0)
}

func (r *CardRepository) Get(ctx context.Context, id int) (types.Card, error) {
	const query = `
		SELECT id, title, description, button_text, landing_page, is_visible, created_at, updated_at
		FROM cards
		WHERE id = $1`
	var card types.Card
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&card.ID,
		&card.Title,
		&card.Description,
		&card.ButtonText,
		&card.LandingPage,
		&card.IsVisible,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Card{}, ErrNotFound
		}
		return types.Card{}, err
	}
	return card, nil
}

func (r *CardRepository) Create(ctx context.Context, card types.Card) (types.Card, error) {
	now := time.Now()
	card.CreatedAt = now
	card.UpdatedAt = now

	const query = `
		INSERT INTO cards (title, description, button_text, landing_page, is_visible, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		card.Title,
		card.Description,
		card.ButtonText,
		card.LandingPage,
		card.IsVisible,
		card.CreatedAt,
		card.UpdatedAt,
	).Scan(&card.ID); err != nil {
		return types.Card{}, translateError(err)
	}
	return card, nil
}

func (r *CardRepository) Update(ctx context.Context, card types.Card) (types.Card, error) {
	card.UpdatedAt = time.Now()

	const query = `
		UPDATE cards
		SET title = $1,
			description = $2,
			button_text = $3,
			landing_page = $4,
			is_visible = $5,
			updated_at = $6
		WHERE id = $7
		RETURNING created_at`
	err := r.db.QueryRowContext(
		ctx,
		query,
		card.Title,
		card.Description,
		card.ButtonText,
		card.LandingPage,
		card.IsVisible,
		card.UpdatedAt,
		card.ID,
	).Scan(&card.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Card{}, ErrNotFound
		}
		return types.Card{}, translateError(err)
	}
	return card, nil
}

// Delete removes a card. Deleting an id that no longer exists yields
// ErrNotFound, so repeated deletes are safe.
func (r *CardRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM cards WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCards(rows *sql.Rows, capacity int) ([]types.Card, error) {
	cards := make([]types.Card, 0, capacity)
	for rows.Next() {
		var card types.Card
		if err := rows.Scan(
			&card.ID,
			&card.Title,
			&card.Description,
			&card.ButtonText,
			&card.LandingPage,
			&card.IsVisible,
			&card.CreatedAt,
			&card.UpdatedAt,
		); err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}

func orderClause(sortBy string, descending bool) (string, error) {
	column, ok := cardSortColumns[strings.ToLower(strings.TrimSpace(sortBy))]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrInvalidSort, sortBy)
	}
	direction := "ASC"
	if descending {
		direction = "DESC"
	}
	if column == "id" {
		return "id " + direction, nil
	}
	return column + " " + direction + ", id ASC", nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
