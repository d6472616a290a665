package matching

// FinderConfig defines weights and thresholds for fuzzy event matching.
// The defaults are empirically tuned; change them together, not in isolation.
type FinderConfig struct {
	// MinScoreThreshold is the minimum combined score a candidate must reach
	// to be returned as a match.
	MinScoreThreshold float64
	// TitleKeywordBonus is added per keyword found in the event title,
	// capped at MaxTitleBonus.
	TitleKeywordBonus float64
	MaxTitleBonus     float64
	// DescriptionKeywordBonus is added per keyword found in the event
	// description, capped at MaxDescriptionBonus.
	DescriptionKeywordBonus float64
	MaxDescriptionBonus     float64
	// AttendeeMatchBonus is added once per keyword whose similarity to an
	// extracted attendee name exceeds AttendeeNameThreshold, capped at
	// MaxAttendeeBonus.
	AttendeeMatchBonus    float64
	MaxAttendeeBonus      float64
	AttendeeNameThreshold float64
	// TieBreakFloor avoids tie-breaking between candidates that scored
	// effectively zero.
	TieBreakFloor float64
	// DefaultWindowDays sizes the search window when only one (or no) date
	// hint is supplied.
	DefaultWindowDays int
	// MinKeywordLength drops very short tokens during keyword extraction
	// unless the drop would leave no keywords at all.
	MinKeywordLength int
}

// DefaultFinderConfig is the tuning used by the find-event skill.
var DefaultFinderConfig = FinderConfig{
	MinScoreThreshold:       0.3,
	TitleKeywordBonus:       0.05,
	MaxTitleBonus:           0.25,
	DescriptionKeywordBonus: 0.025,
	MaxDescriptionBonus:     0.10,
	AttendeeMatchBonus:      0.15,
	MaxAttendeeBonus:        0.30,
	AttendeeNameThreshold:   0.7,
	TieBreakFloor:           0.01,
	DefaultWindowDays:       14,
	MinKeywordLength:        3,
}

// stopWords are dropped during keyword extraction. "am"/"pm" double as time
// indicators when the date parser hasn't consumed them.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "if": true, "in": true,
	"into": true, "is": true, "it": true, "its": true, "my": true, "no": true,
	"not": true, "of": true, "on": true, "or": true, "such": true,
	"that": true, "the": true, "their": true, "then": true, "there": true,
	"these": true, "they": true, "this": true, "to": true, "was": true,
	"will": true, "with": true, "i": true, "me": true, "you": true,
	"he": true, "she": true, "we": true, "us": true, "am": true, "pm": true,
}
