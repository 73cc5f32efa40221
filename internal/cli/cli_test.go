package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/cardadmin/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("  admin \n"), "Username", &out)
	require.NoError(t, err)
	assert.Equal(t, "admin", got)
	assert.Equal(t, "Username: ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "Name", &out)
	assert.Error(t, err)
}

func stubTerminal(t *testing.T, terminal bool, password string, err error) {
	t.Helper()
	oldRead, oldIs := readPassword, isTerminal
	t.Cleanup(func() { readPassword, isTerminal = oldRead, oldIs })
	isTerminal = func(int) bool { return terminal }
	readPassword = func(int) ([]byte, error) { return []byte(password), err }
}

func TestGetPasswordFallsBackToLineWhenNotATerminal(t *testing.T) {
	stubTerminal(t, false, "", nil)
	var out bytes.Buffer
	got, err := GetPassword(rdr("secret\n"), "Password", &out)
	require.NoError(t, err)
	assert.Equal(t, "secret", got)
}

func TestGetPasswordFromTerminal(t *testing.T) {
	stubTerminal(t, true, "hunter2", nil)
	var out bytes.Buffer
	got, err := GetPassword(rdr("ignored\n"), "Password", &out)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)
	assert.Equal(t, "Password: \n", out.String())

	stubTerminal(t, true, "", errors.New("boom"))
	_, err = GetPassword(rdr(""), "Password", &out)
	assert.Error(t, err)
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	for input, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false} {
		got, err := Confirm(rdr(input), "Delete?", &out)
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", input)
	}
}

func TestPrintCards(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, PrintCards(&out, []types.Card{
		{ID: 1, Title: "Welcome", ButtonText: "Go", LandingPage: "https://example.com", IsVisible: true},
		{ID: 2, Title: "Hidden", ButtonText: "Help", LandingPage: "https://example.com/h"},
	}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Welcome")
	assert.Contains(t, lines[1], "yes")
	assert.Contains(t, lines[2], "no")
}

func TestPrintPreviewWrapsToWidth(t *testing.T) {
	var out bytes.Buffer
	card := types.Card{Title: "Promo", Description: strings.Repeat("word ", 20), ButtonText: "Go"}
	require.NoError(t, PrintPreview(&out, card, 30))

	for _, line := range strings.Split(strings.TrimRight(out.String(), "\n"), "\n") {
		assert.Equal(t, 30, len([]rune(line)), "line %q", line)
	}
	assert.Contains(t, out.String(), "PROMO")
	assert.Contains(t, out.String(), "[ Go ]")
}

func TestPrintFieldErrorsSkipsEmpty(t *testing.T) {
	var out bytes.Buffer
	PrintFieldErrors(&out, map[string]string{"title": "Title is required.", "buttonText": ""})
	assert.Equal(t, "  title: Title is required.\n", out.String())
}
