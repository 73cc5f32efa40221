package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cardadmin/apiserver/types"
	"github.com/golang-jwt/jwt/v5"
)

// TokenHeader carries the signed token on requests and on the login response.
const TokenHeader = "x-auth-token"

// Claims is the identity embedded in a signed token.
// Tokens carry no expiry: they stay valid until the signing secret changes.
type Claims struct {
	UserID   int    `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// ClaimsFor builds the claim set for a verified identity.
func ClaimsFor(user types.User) Claims {
	return Claims{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}
}

// TokenSigner issues and verifies HS256 tokens with a process-wide secret.
// It holds no per-token state.
type TokenSigner struct {
	secret []byte
	now    func() time.Time
}

func NewTokenSigner(secret string) (*TokenSigner, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("signing secret is required")
	}
	return &TokenSigner{secret: []byte(secret), now: time.Now}, nil
}

// Issue signs the claims of a verified identity.
func (s *TokenSigner) Issue(user types.User) (string, error) {
	claims := ClaimsFor(user)
	claims.IssuedAt = jwt.NewNumericDate(s.now())

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Authenticate verifies the token signature and returns its claims.
// Every failure is reported as ErrUnauthorized.
func (s *TokenSigner) Authenticate(tokenString string) (Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return Claims{}, ErrUnauthorized
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
	)

	claims := Claims{}
	token, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrUnauthorized
	}
	if claims.UserID < 1 {
		return Claims{}, ErrUnauthorized
	}
	return claims, nil
}

// RequireAdmin fails with ErrForbidden unless the verified claims carry the
// admin flag. It must only be called with claims returned by Authenticate.
func RequireAdmin(claims Claims) error {
	if !claims.IsAdmin {
		return ErrForbidden
	}
	return nil
}
