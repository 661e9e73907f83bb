package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver(t *testing.T) {
	resolver, err := NewResolver()
	require.NoError(t, err)
	assert.Greater(t, resolver.Len(), 50)

	tests := []struct {
		name string
		code string
		want string
	}{
		{"USD", "USD", "$"},
		{"EUR", "EUR", "€"},
		{"GBP", "GBP", "£"},
		{"unknown code falls back", "XYZ", "XYZ"},
		{"empty code", "", ""},
		{"non alphabetic", "123", "123"},
		{"single character", "X", "X"},
		{"whitespace", " ", " "},
		{"crypto code is not mapped", "BTC", "BTC"},
		{"lookup is case sensitive", "usd", "usd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolver.Resolve(tt.code))
		})
	}
}

func TestParse(t *testing.T) {
	resolver, err := Parse([]byte("ABC: \"@\"\nDEF: \"\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "@", resolver.Resolve("ABC"))
	assert.Equal(t, "DEF", resolver.Resolve("DEF"))

	_, err = Parse([]byte("- not\n- a mapping\n"))
	assert.Error(t, err)
}
