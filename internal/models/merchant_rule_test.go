package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMatchKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "SILPO", "silpo"},
		{"strips whitespace", "  Cafe  Aroma ", "cafearoma"},
		{"strips punctuation", "MC'DONALDS #42, KYIV", "mcdonalds42kyiv"},
		{"keeps digits", "NP-2041", "np2041"},
		{"keeps non-ascii runes", "Сільпо Київ", "сільпокиїв"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeMatchKey(tt.in))
		})
	}

	t.Run("truncates long keys", func(t *testing.T) {
		key := NormalizeMatchKey(strings.Repeat("a", 200))
		assert.Len(t, key, 128)
	})
}
