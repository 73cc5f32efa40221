package auth

import "errors"

var (
	// ErrInvalidCredentials is returned for an unknown username or a wrong
	// password. Both cases share the error so callers cannot probe for accounts.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUnauthorized is returned when a token is missing, malformed or its
	// signature does not verify.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when a verified identity lacks admin rights.
	ErrForbidden = errors.New("admin access required")
)
