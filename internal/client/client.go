package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cardadmin/apiserver/internal/auth"
	"github.com/cardadmin/apiserver/internal/handlers"
	"github.com/cardadmin/apiserver/types"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("not logged in or session expired")
	ErrForbidden          = errors.New("admin access required")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
)

// APIError is any other non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("server returned %d: %s (%s)", e.StatusCode, e.Message, strings.Join(parts, "; "))
}

// Client talks to the card admin API on behalf of a Session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, session *Session, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		session:    session,
	}
	if c.session == nil {
		c.session = NewSession(nil)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session the client attaches tokens from.
func (c *Client) Session() *Session {
	return c.session
}

// Login exchanges credentials for a token and stores it in the session.
func (c *Client) Login(ctx context.Context, username, password string) error {
	resp, err := c.send(ctx, http.MethodPost, "/login", handlers.LoginRequest{Username: username, Password: password})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return ErrInvalidCredentials
	}
	if err := checkStatus(resp); err != nil {
		return err
	}
	token := resp.Header.Get(auth.TokenHeader)
	if token == "" {
		return errors.New("login response carried no token")
	}
	return c.session.Login(ctx, token)
}

// Logout clears the local session.
func (c *Client) Logout(ctx context.Context) error {
	return c.session.Logout(ctx)
}

func (c *Client) Me(ctx context.Context) (types.User, error) {
	var user types.User
	err := c.doJSON(ctx, http.MethodGet, "/users/me", nil, &user)
	return user, err
}

// RegisterInput describes an account to create.
type RegisterInput = handlers.RegisterRequest

// Register creates an account. The caller's session is left untouched.
func (c *Client) Register(ctx context.Context, in RegisterInput) (types.User, error) {
	var user types.User
	err := c.doJSON(ctx, http.MethodPost, "/users/new", in, &user)
	return user, err
}

// ListOptions mirrors the query parameters of GET /cards.
type ListOptions struct {
	Page  int
	Limit int
	Query string
	Sort  string
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Query != "" {
		v.Set("q", o.Query)
	}
	if o.Sort != "" {
		v.Set("sort", o.Sort)
	}
	return v
}

type CardPage = handlers.CardListResponse

func (c *Client) ListCards(ctx context.Context, opts ListOptions) (CardPage, error) {
	path := "/cards"
	if q := opts.values().Encode(); q != "" {
		path += "?" + q
	}
	var page CardPage
	err := c.doJSON(ctx, http.MethodGet, path, nil, &page)
	return page, err
}

func (c *Client) VisibleCards(ctx context.Context) ([]types.Card, error) {
	var cards []types.Card
	err := c.doJSON(ctx, http.MethodGet, "/cards/visible", nil, &cards)
	return cards, err
}

func (c *Client) GetCard(ctx context.Context, id int) (types.Card, error) {
	var card types.Card
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/cards/%d", id), nil, &card)
	return card, err
}

// CardInput is the writable part of a card.
type CardInput = handlers.CardRequest

// InputFromCard copies the writable fields of card.
func InputFromCard(card types.Card) CardInput {
	visible := card.IsVisible
	return CardInput{
		Title:       card.Title,
		Description: card.Description,
		ButtonText:  card.ButtonText,
		LandingPage: card.LandingPage,
		IsVisible:   &visible,
	}
}

func (c *Client) CreateCard(ctx context.Context, in CardInput) (types.Card, error) {
	var card types.Card
	err := c.doJSON(ctx, http.MethodPost, "/cards/new", in, &card)
	return card, err
}

// UpdateCard replaces the stored card with card's writable fields.
func (c *Client) UpdateCard(ctx context.Context, card types.Card) (types.Card, error) {
	var updated types.Card
	err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/cards/%d", card.ID), InputFromCard(card), &updated)
	return updated, err
}

func (c *Client) DeleteCard(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/cards/%d", id), nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.session.Token(); token != "" {
		req.Header.Set(auth.TokenHeader, token)
	}
	return c.httpClient.Do(req)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var payload handlers.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Error == "" {
		payload.Error = strings.TrimSpace(string(raw))
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, payload.Error)
	default:
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Error, Fields: payload.Fields}
	}
}
