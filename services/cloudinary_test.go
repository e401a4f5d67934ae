package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPublicID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{
			"versioned upload URL",
			"https://res.cloudinary.com/acct/image/upload/v1712345678/products/winter-coat.jpg",
			"products/winter-coat",
		},
		{
			"unversioned upload URL",
			"https://res.cloudinary.com/acct/image/upload/products/winter-coat.png",
			"products/winter-coat",
		},
		{
			"nested folder",
			"https://res.cloudinary.com/acct/image/upload/v1/brands/logos/acme.webp",
			"brands/logos/acme",
		},
		{
			"no upload segment",
			"https://cdn.example.com/assets/winter-coat.jpg",
			"",
		},
		{
			"too short",
			"https://example.com",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractPublicID(tt.url))
		})
	}
}

func TestForceHTTPS(t *testing.T) {
	assert.Equal(t, "https://res.cloudinary.com/x.jpg", forceHTTPS("http://res.cloudinary.com/x.jpg"))
	assert.Equal(t, "https://res.cloudinary.com/x.jpg", forceHTTPS("https://res.cloudinary.com/x.jpg"))
	assert.Equal(t, "", forceHTTPS(""))
}
