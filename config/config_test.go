package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitURLs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", nil},
		{"single", "https://shop.example.com", []string{"https://shop.example.com"}},
		{
			"multiple with whitespace",
			"https://shop.example.com , https://eu.example.com",
			[]string{"https://shop.example.com", "https://eu.example.com"},
		},
		{
			"trailing slashes trimmed",
			"https://shop.example.com/,https://eu.example.com//",
			[]string{"https://shop.example.com", "https://eu.example.com"},
		},
		{"stray commas", ",https://shop.example.com,,", []string{"https://shop.example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, splitURLs(tt.input))
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("STOREFRONT_URLS", "https://shop.example.com")
	t.Setenv("REVALIDATE_SECRET", "s3cret")

	assert.NoError(t, Load())
	assert.Equal(t, "8080", AppConfig.ServerPort)
	assert.Equal(t, []string{"https://shop.example.com"}, AppConfig.StorefrontURLs)
	assert.Equal(t, "s3cret", AppConfig.RevalidateSecret)
}
