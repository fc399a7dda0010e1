package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Weight Log", "weight-log"},
		{"  Weight   Log  ", "weight-log"},
		{"Crew Mood & Morale", "crew-mood-morale"},
		{"already-a-slug", "already-a-slug"},
		{"UPPER case 2", "upper-case-2"},
		{"▦ symbols only ▦", "symbols-only"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}
