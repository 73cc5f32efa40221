package client

import (
	"context"
	"sync"

	"github.com/cardadmin/apiserver/internal/auth"
	"github.com/golang-jwt/jwt/v5"
)

// TokenKey is the fixed key the token is stored under.
const TokenKey = "cardadmin-token"

// Session owns the console's token. Load restores it from the store,
// Login replaces it and Logout clears it; nothing else writes it.
type Session struct {
	store TokenStore

	mu    sync.RWMutex
	token string
}

func NewSession(store TokenStore) *Session {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Session{store: store}
}

// Load reads a previously persisted token, if any.
func (s *Session) Load(ctx context.Context) error {
	raw, err := s.store.Get(ctx, TokenKey)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.token = string(raw)
	s.mu.Unlock()
	return nil
}

// Token returns the current token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Login persists token and makes it current.
func (s *Session) Login(ctx context.Context, token string) error {
	if err := s.store.Set(ctx, TokenKey, []byte(token)); err != nil {
		return err
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Logout forgets the token locally. The server keeps no session to revoke.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return s.store.Delete(ctx, TokenKey)
}

// CurrentUser decodes the stored token's claims without checking the
// signature. The result only drives what the console offers; the server
// still authorises every request.
func (s *Session) CurrentUser() (auth.Claims, bool) {
	token := s.Token()
	if token == "" {
		return auth.Claims{}, false
	}
	var claims auth.Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return auth.Claims{}, false
	}
	if claims.UserID < 1 {
		return auth.Claims{}, false
	}
	return claims, true
}
