package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cardadmin/apiserver/internal/auth"
	"github.com/cardadmin/apiserver/internal/logging"
	"github.com/go-chi/chi/v5"
)

// AuthHandler exchanges credentials for a signed token.
type AuthHandler struct {
	verifier *auth.CredentialVerifier
	signer   *auth.TokenSigner
	log      logging.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(verifier *auth.CredentialVerifier, signer *auth.TokenSigner, log logging.Logger) *AuthHandler {
	return &AuthHandler{verifier: verifier, signer: signer, log: log}
}

// LoginRouter registers the login route on the given router.
func LoginRouter(r chi.Router, verifier *auth.CredentialVerifier, signer *auth.TokenSigner, log logging.Logger) {
	handler := NewAuthHandler(verifier, signer, log)

	r.Post("/", handler.Login)
}

// Login verifies credentials and hands the token back in the token header.
// Every credential problem gets the same generic answer.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, auth.ErrInvalidCredentials.Error())
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, auth.ErrInvalidCredentials.Error())
		return
	}

	user, err := h.verifier.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, auth.ErrInvalidCredentials.Error())
			return
		}
		h.log.Error(r.Context(), "login lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	token, err := h.signer.Issue(user)
	if err != nil {
		h.log.Error(r.Context(), "token signing failed", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	setTokenHeader(w, token)
	writeJSON(w, http.StatusOK, true)
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func setTokenHeader(w http.ResponseWriter, token string) {
	w.Header().Set(auth.TokenHeader, token)
	w.Header().Set("Access-Control-Expose-Headers", auth.TokenHeader)
}

// RequireAuth verifies the token header and stores the claims in the
// request context. Claims are trusted as-is; the user table is not consulted.
func RequireAuth(signer *auth.TokenSigner) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := signer.Authenticate(r.Header.Get(auth.TokenHeader))
			if err != nil {
				writeError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAdmin rejects requests whose claims lack the admin flag.
// It must be mounted after RequireAuth; reaching it without claims panics.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			panic(fmt.Sprintf("RequireAdmin mounted without RequireAuth on %s %s", r.Method, r.URL.Path))
		}
		if err := auth.RequireAdmin(claims); err != nil {
			writeError(w, http.StatusForbidden, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
