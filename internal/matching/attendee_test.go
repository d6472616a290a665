package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAttendeeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"name with email", "John Doe <john.doe@example.com>", "john doe"},
		{"first name with email", "Sarah <sarahm@corp.com>", "sarah"},
		{"guest marker", "Bob (Guest)", "bob"},
		{"external marker", "Alice Wonderland (External)", "alice wonderland"},
		{"bare email", "jane@example.com", "jane"},
		{"email with dots and digits", "team.member.jane42@example.com", "teammemberjane"},
		{"bare name", "Mark Johnson", "mark johnson"},
		{"name with apostrophe", "O'Brien", "o'brien"},
		{"name with hyphen", "Mary-Jane", "mary-jane"},
		{"empty input", "", ""},
		{"digits only", "12345", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractAttendeeName(tt.input))
		})
	}
}
