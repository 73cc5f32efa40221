package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cardadmin/apiserver/internal/auth"
	"github.com/cardadmin/apiserver/internal/logging"
	"github.com/cardadmin/apiserver/internal/services"
	"github.com/cardadmin/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	minPasswordLength = 6
	// bcrypt rejects longer input.
	maxPasswordBytes = 72
)

// UserHandler serves account endpoints.
type UserHandler struct {
	userService *services.UserService
	signer      *auth.TokenSigner
	log         logging.Logger
}

func NewUserHandler(userService *services.UserService, signer *auth.TokenSigner, log logging.Logger) *UserHandler {
	return &UserHandler{userService: userService, signer: signer, log: log}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, userService *services.UserService, signer *auth.TokenSigner, log logging.Logger) {
	handler := NewUserHandler(userService, signer, log)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(signer))
		r.Get("/me", handler.Me)
		r.With(RequireAdmin).Post("/new", handler.Register)
	})
}

// Me returns the account behind the verified token.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	user, err := h.userService.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error(r.Context(), "load user failed", "user_id", claims.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Register creates an account and returns the new user's token in the
// token header. Only administrators can register accounts.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.normalize()
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	user, err := h.userService.Register(r.Context(), req.Username, req.Email, req.Password, req.IsAdmin)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, "username or email already exists")
			return
		}
		h.log.Error(r.Context(), "register user failed", "username", req.Username, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	token, err := h.signer.Issue(user)
	if err != nil {
		h.log.Error(r.Context(), "token signing failed", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	setTokenHeader(w, token)
	writeJSON(w, http.StatusCreated, user)
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
}

func (r *RegisterRequest) normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.RuneLength(1, 255)),
		validation.Field(&r.Email, validation.Required, validation.RuneLength(3, 255), is.Email),
		validation.Field(&r.Password, validation.Required, validation.RuneLength(minPasswordLength, 0), validation.By(passwordFitsHash)),
	)
}

func passwordFitsHash(value interface{}) error {
	password, _ := value.(string)
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("must be at most %d bytes long", maxPasswordBytes)
	}
	return nil
}
