package forms

import (
	"context"
	"testing"

	"github.com/cardadmin/apiserver/internal/client"
	"github.com/cardadmin/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	calls int
	err   error
}

func (f *fakeAuth) Login(context.Context, string, string) error {
	f.calls++
	return f.err
}

type fakeCards struct {
	created []client.CardInput
	updated []types.Card
}

func (f *fakeCards) CreateCard(_ context.Context, in client.CardInput) (types.Card, error) {
	f.created = append(f.created, in)
	return types.Card{ID: 10, Title: in.Title}, nil
}

func (f *fakeCards) UpdateCard(_ context.Context, card types.Card) (types.Card, error) {
	f.updated = append(f.updated, card)
	return card, nil
}

func TestFieldChangeTouchesOnlyThatField(t *testing.T) {
	engine := NewEngine(RegisterRules())
	engine.SetError("password", "stale")

	errs := engine.OnFieldChange("email", "not-an-email")
	assert.NotEmpty(t, errs["email"])
	assert.Equal(t, "stale", errs["password"])
	assert.Empty(t, errs["username"])

	errs = engine.OnFieldChange("email", "someone@example.com")
	assert.Empty(t, errs["email"])
	assert.Equal(t, "stale", errs["password"])
}

func TestUnknownFieldIsIgnored(t *testing.T) {
	engine := NewEngine(LoginRules())
	errs := engine.OnFieldChange("remember", "")
	assert.NotContains(t, errs, "remember")
}

func TestEmptyLoginIsBlocked(t *testing.T) {
	engine := NewEngine(LoginRules())
	auth := &fakeAuth{}

	err := SubmitLogin(t.Context(), engine, LoginForm{}, auth)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Fields["username"])
	assert.NotEmpty(t, verr.Fields["password"])
	assert.Zero(t, auth.calls)
}

func TestRejectedLoginMarksBothFields(t *testing.T) {
	engine := NewEngine(LoginRules())
	auth := &fakeAuth{err: client.ErrInvalidCredentials}

	err := SubmitLogin(t.Context(), engine, LoginForm{Username: "admin", Password: "nope"}, auth)
	assert.ErrorIs(t, err, client.ErrInvalidCredentials)
	assert.Equal(t, 1, auth.calls)

	errs := engine.Errors()
	assert.NotEmpty(t, errs["username"])
	assert.NotEmpty(t, errs["password"])
}

func TestRegisterEmailFormat(t *testing.T) {
	engine := NewEngine(RegisterRules())
	form := map[string]string{"username": "newbie", "email": "not-an-email", "password": "secret1"}

	assert.False(t, engine.OnSubmitAttempt(form))
	assert.NotEmpty(t, engine.Errors()["email"])

	form["email"] = "newbie@example.com"
	assert.True(t, engine.OnSubmitAttempt(form))
	assert.Empty(t, engine.Errors()["email"])
}

func TestRegisterPasswordLength(t *testing.T) {
	engine := NewEngine(RegisterRules())
	errs := engine.OnFieldChange("password", "12345")
	assert.NotEmpty(t, errs["password"])
	errs = engine.OnFieldChange("password", "123456")
	assert.Empty(t, errs["password"])
}

func TestRegisterPasswordIsNotTrimmed(t *testing.T) {
	engine := NewEngine(RegisterRules())

	allowed := engine.OnSubmitAttempt(map[string]string{
		"username": "  newbie ",
		"email":    "newbie@example.com",
		"password": "  abc  ",
	})
	assert.True(t, allowed)
	assert.Empty(t, engine.Errors()["password"])

	assert.NotEmpty(t, engine.OnFieldChange("password", "abc  ")["password"])
}

func TestCardScenario(t *testing.T) {
	engine := NewEngine(CardRules())
	cards := &fakeCards{}
	form := CardForm{Title: "", Description: "ok desc", ButtonText: "Go", LandingPage: "http://x", IsVisible: true}

	_, err := SubmitCard(t.Context(), engine, form, 0, cards)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, engine.Errors()["title"])
	assert.Empty(t, engine.Errors()["buttonText"])
	assert.Empty(t, cards.created)

	form.Title = "Promo"
	created, err := SubmitCard(t.Context(), engine, form, 0, cards)
	require.NoError(t, err)
	assert.Equal(t, 10, created.ID)

	require.Len(t, cards.created, 1)
	sent := cards.created[0]
	assert.Equal(t, "Promo", sent.Title)
	assert.Equal(t, "ok desc", sent.Description)
	assert.Equal(t, "Go", sent.ButtonText)
	assert.Equal(t, "http://x", sent.LandingPage)
	require.NotNil(t, sent.IsVisible)
	assert.True(t, *sent.IsVisible)
}

func TestCardUpdateKeepsID(t *testing.T) {
	engine := NewEngine(CardRules())
	cards := &fakeCards{}
	form := CardFormFrom(types.Card{ID: 4, Title: "t", Description: "d", ButtonText: "b", LandingPage: "l"})

	_, err := SubmitCard(t.Context(), engine, form, 4, cards)
	require.NoError(t, err)
	require.Len(t, cards.updated, 1)
	assert.Equal(t, 4, cards.updated[0].ID)
}

func TestDescriptionTooLong(t *testing.T) {
	engine := NewEngine(CardRules())
	long := make([]byte, 513)
	for i := range long {
		long[i] = 'a'
	}
	assert.NotEmpty(t, engine.OnFieldChange("description", string(long))["description"])
	assert.Empty(t, engine.OnFieldChange("description", string(long[:512]))["description"])
}

func TestWhitespaceOnlyIsEmpty(t *testing.T) {
	engine := NewEngine(CardRules())
	assert.NotEmpty(t, engine.OnFieldChange("title", "   ")["title"])
}
