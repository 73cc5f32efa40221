package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/cardadmin/apiserver/internal/store"
	"github.com/cardadmin/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor used for stored password hashes.
const PasswordCost = 10

// IdentityLookup resolves a stored identity by its login name.
type IdentityLookup interface {
	GetByUsername(ctx context.Context, username string) (types.User, error)
}

// CredentialVerifier checks submitted passwords against stored bcrypt hashes.
type CredentialVerifier struct {
	users IdentityLookup
}

func NewCredentialVerifier(users IdentityLookup) *CredentialVerifier {
	return &CredentialVerifier{users: users}
}

// Verify returns the stored identity when password matches its hash.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
func (v *CredentialVerifier) Verify(ctx context.Context, username, password string) (types.User, error) {
	user, err := v.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// burn a comparison so a missing account costs the same as a wrong password
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// HashPassword returns the bcrypt hash stored for a new account.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

var (
	dummyOnce sync.Once
	dummy     []byte
)

func dummyHash() []byte {
	dummyOnce.Do(func() {
		dummy, _ = bcrypt.GenerateFromPassword([]byte("cardadmin-placeholder"), PasswordCost)
	})
	return dummy
}
