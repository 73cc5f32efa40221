package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cardadmin/apiserver/internal/auth"
	"github.com/cardadmin/apiserver/internal/logging"
	"github.com/cardadmin/apiserver/internal/services"
	"github.com/cardadmin/apiserver/internal/store"
	"github.com/cardadmin/apiserver/types"
	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	maxTitleLength       = 256
	maxDescriptionLength = 2048
	maxButtonTextLength  = 256
	maxLandingPageLength = 256
)

// CardListResponse wraps a page of cards.
type CardListResponse struct {
	Items []types.Card `json:"items"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
	Total int          `json:"total"`
}

// CardRequest is the body accepted by create and update.
type CardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ButtonText  string `json:"buttonText"`
	LandingPage string `json:"landingPage"`
	IsVisible   *bool  `json:"isVisible"`
}

func (r *CardRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.ButtonText = strings.TrimSpace(r.ButtonText)
	r.LandingPage = strings.TrimSpace(r.LandingPage)
}

func (r CardRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(1, maxTitleLength)),
		validation.Field(&r.Description, validation.Required, validation.RuneLength(1, maxDescriptionLength)),
		validation.Field(&r.ButtonText, validation.Required, validation.RuneLength(1, maxButtonTextLength)),
		validation.Field(&r.LandingPage, validation.Required, validation.RuneLength(1, maxLandingPageLength)),
		validation.Field(&r.IsVisible, validation.NotNil),
	)
}

func (r CardRequest) card(id int) types.Card {
	return types.Card{
		ID:          id,
		Title:       r.Title,
		Description: r.Description,
		ButtonText:  r.ButtonText,
		LandingPage: r.LandingPage,
		IsVisible:   *r.IsVisible,
	}
}

// CardHandler provides HTTP handlers for cards.
type CardHandler struct {
	cardService *services.CardService
	log         logging.Logger
}

func NewCardHandler(cardService *services.CardService, log logging.Logger) *CardHandler {
	return &CardHandler{cardService: cardService, log: log}
}

// CardRouter registers card routes on the given router. The visible listing
// is public; reads need a token and writes need an admin token.
func CardRouter(r chi.Router, cardService *services.CardService, signer *auth.TokenSigner, log logging.Logger) {
	handler := NewCardHandler(cardService, log)

	r.Get("/visible", handler.ListVisible)
	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(signer))
		r.Get("/", handler.List)
		r.Get("/{cardID}", handler.Get)

		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Post("/new", handler.Create)
			r.Put("/{cardID}", handler.Update)
			r.Delete("/{cardID}", handler.Delete)
		})
	})
}

func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sortBy, desc := parseSort(r)

	cards, total, err := h.cardService.List(r.Context(), store.CardQuery{
		Offset:      offset,
		Limit:       limit,
		TitlePrefix: r.URL.Query().Get("q"),
		SortBy:      sortBy,
		Descending:  desc,
	})
	if err != nil {
		if errors.Is(err, store.ErrInvalidSort) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error(r.Context(), "list cards failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list cards")
		return
	}

	writeJSON(w, http.StatusOK, CardListResponse{
		Items: cards,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// ListVisible returns every card flagged visible, for the public site.
func (h *CardHandler) ListVisible(w http.ResponseWriter, r *http.Request) {
	cards, err := h.cardService.ListVisible(r.Context())
	if err != nil {
		h.log.Error(r.Context(), "list visible cards failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list cards")
		return
	}
	if cards == nil {
		cards = []types.Card{}
	}
	writeJSON(w, http.StatusOK, cards)
}

func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "cardID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	card, err := h.cardService.Get(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err, "failed to load card")
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.normalize()
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	created, err := h.cardService.Create(r.Context(), req.card(0))
	if err != nil {
		h.writeStoreError(w, r, err, "failed to create card")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *CardHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "cardID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req CardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.normalize()
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	updated, err := h.cardService.Update(r.Context(), req.card(id))
	if err != nil {
		h.writeStoreError(w, r, err, "failed to update card")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "cardID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.cardService.Delete(r.Context(), id); err != nil {
		h.writeStoreError(w, r, err, "failed to delete card")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CardHandler) writeStoreError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "card not found")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "a card with this title already exists")
	default:
		h.log.Error(r.Context(), fallback, "error", err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
