package forms

import (
	"context"
	"errors"

	"github.com/cardadmin/apiserver/internal/client"
	"github.com/cardadmin/apiserver/types"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	maxDescriptionLength = 512
	minPasswordLength    = 6
)

func LoginRules() Rules {
	return Rules{
		"username": Field("Username is required.", validation.Required),
		"password": Secret("Password is required.", validation.Required),
	}
}

func RegisterRules() Rules {
	return Rules{
		"username": Field("Username is required.", validation.Required),
		"email":    Field("Enter a valid email address.", validation.Required, is.Email),
		"password": Secret("Password must be at least 6 characters.", validation.Required, validation.RuneLength(minPasswordLength, 0)),
	}
}

func CardRules() Rules {
	return Rules{
		"title":       Field("Title is required.", validation.Required),
		"description": Field("Description is required and must be at most 512 characters.", validation.Required, validation.RuneLength(0, maxDescriptionLength)),
		"buttonText":  Field("Button text is required.", validation.Required),
		"landingPage": Field("Landing page URL is required.", validation.Required),
	}
}

type LoginForm struct {
	Username string
	Password string
}

func (f LoginForm) Values() map[string]string {
	return map[string]string{"username": f.Username, "password": f.Password}
}

// Authenticator is the login call a LoginForm submits to.
type Authenticator interface {
	Login(ctx context.Context, username, password string) error
}

// SubmitLogin validates f and logs in. A rejected login marks both fields,
// since the server does not say which one was wrong.
func SubmitLogin(ctx context.Context, engine *Engine, f LoginForm, auth Authenticator) error {
	if !engine.OnSubmitAttempt(f.Values()) {
		return engine.Err()
	}
	err := auth.Login(ctx, f.Username, f.Password)
	if errors.Is(err, client.ErrInvalidCredentials) {
		engine.SetError("username", err.Error())
		engine.SetError("password", err.Error())
	}
	return err
}

type RegisterForm struct {
	Username string
	Email    string
	Password string
	IsAdmin  bool
}

func (f RegisterForm) Values() map[string]string {
	return map[string]string{"username": f.Username, "email": f.Email, "password": f.Password}
}

type Registrar interface {
	Register(ctx context.Context, in client.RegisterInput) (types.User, error)
}

func SubmitRegister(ctx context.Context, engine *Engine, f RegisterForm, reg Registrar) (types.User, error) {
	if !engine.OnSubmitAttempt(f.Values()) {
		return types.User{}, engine.Err()
	}
	return reg.Register(ctx, client.RegisterInput{
		Username: f.Username,
		Email:    f.Email,
		Password: f.Password,
		IsAdmin:  f.IsAdmin,
	})
}

type CardForm struct {
	Title       string
	Description string
	ButtonText  string
	LandingPage string
	IsVisible   bool
}

// CardFormFrom prefills a form with an existing card.
func CardFormFrom(card types.Card) CardForm {
	return CardForm{
		Title:       card.Title,
		Description: card.Description,
		ButtonText:  card.ButtonText,
		LandingPage: card.LandingPage,
		IsVisible:   card.IsVisible,
	}
}

func (f CardForm) Values() map[string]string {
	return map[string]string{
		"title":       f.Title,
		"description": f.Description,
		"buttonText":  f.ButtonText,
		"landingPage": f.LandingPage,
	}
}

func (f CardForm) Input() client.CardInput {
	visible := f.IsVisible
	return client.CardInput{
		Title:       f.Title,
		Description: f.Description,
		ButtonText:  f.ButtonText,
		LandingPage: f.LandingPage,
		IsVisible:   &visible,
	}
}

// CardWriter is the part of the API a CardForm submits to.
type CardWriter interface {
	CreateCard(ctx context.Context, in client.CardInput) (types.Card, error)
	UpdateCard(ctx context.Context, card types.Card) (types.Card, error)
}

// SubmitCard validates f and creates the card, or updates card id when id > 0.
func SubmitCard(ctx context.Context, engine *Engine, f CardForm, id int, w CardWriter) (types.Card, error) {
	if !engine.OnSubmitAttempt(f.Values()) {
		return types.Card{}, engine.Err()
	}
	if id > 0 {
		return w.UpdateCard(ctx, types.Card{
			ID:          id,
			Title:       f.Title,
			Description: f.Description,
			ButtonText:  f.ButtonText,
			LandingPage: f.LandingPage,
			IsVisible:   f.IsVisible,
		})
	}
	return w.CreateCard(ctx, f.Input())
}
