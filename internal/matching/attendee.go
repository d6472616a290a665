package matching

import (
	"regexp"
	"strings"
)

var (
	angleBracketRegex = regexp.MustCompile(`^(.*?)<.*>$`)
	guestMarkerRegex  = regexp.MustCompile(`^(.*?)\s*\((guest|external)\)`)
	nameCharsRegex    = regexp.MustCompile(`[^a-z\s'-]`)
)

// ExtractAttendeeName extracts a display name from a raw calendar attendee
// string. Handles "Name <email>", "Name (Guest)"/"Name (External)", bare
// email addresses, and bare names. The result is lowercase and trimmed;
// it may be empty.
func ExtractAttendeeName(raw string) string {
	if raw == "" {
		return ""
	}

	s := strings.ToLower(raw)

	if m := angleBracketRegex.FindStringSubmatch(s); m != nil && m[1] != "" {
		return strings.TrimSpace(m[1])
	}

	if m := guestMarkerRegex.FindStringSubmatch(s); m != nil && m[1] != "" {
		return strings.TrimSpace(m[1])
	}

	// Bare email: the username part approximates a name. Keep letters,
	// spaces, hyphens and apostrophes.
	if idx := strings.Index(s, "@"); idx >= 0 {
		return strings.TrimSpace(nameCharsRegex.ReplaceAllString(s[:idx], ""))
	}

	return strings.TrimSpace(nameCharsRegex.ReplaceAllString(s, ""))
}
