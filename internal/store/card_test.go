package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderClause(t *testing.T) {
	tests := []struct {
		sortBy string
		desc   bool
		want   string
	}{
		{"", false, "id ASC"},
		{"id", true, "id DESC"},
		{"Title", false, "title ASC, id ASC"},
		{" title ", true, "title DESC, id ASC"},
	}
	for _, tc := range tests {
		got, err := orderClause(tc.sortBy, tc.desc)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestOrderClauseRejectsUnknownColumn(t *testing.T) {
	_, err := orderClause("title; DROP TABLE cards", false)
	assert.Error(t, err)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off`, escapeLike("50% off"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\temp`, escapeLike(`c:\temp`))
	assert.Equal(t, "Promo", escapeLike("Promo"))
}
