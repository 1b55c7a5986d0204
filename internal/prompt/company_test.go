package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompanyName(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{"comma terminated", "Tu travailles pour Acme, une PME lyonnaise.", "Acme"},
		{"newline terminated", "Tu travailles pour Globex SA\nTon rôle est d'aider.", "Globex SA"},
		{"end of string", "Bonjour. Tu travailles pour Initech", "Initech"},
		{"case insensitive", "TU TRAVAILLES POUR Umbrella, merci.", "Umbrella"},
		{"multi word capture", "tu travailles pour La Maison du Café, pas pour d'autres.", "La Maison du Café"},
		{"absent", "Tu es un assistant généraliste.", ""},
		{"empty prompt", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompanyName(tt.prompt))
		})
	}
}
