// Package briefing assembles a prioritized daily briefing from calendar,
// task, email and chat sources, ranked by an urgency score.
package briefing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateContextStatus reports how a date context input was resolved.
type DateContextStatus string

const (
	DateStatusParsed      DateContextStatus = "parsed"
	DateStatusDefaulted   DateContextStatus = "defaulted"
	DateStatusUnparseable DateContextStatus = "unparseable"
)

// ParsedDateContext is the resolved briefing date plus the UTC day window
// used for calendar queries. TargetDate is always midnight UTC.
type ParsedDateContext struct {
	TargetDate     time.Time
	TimeMin        time.Time
	TimeMax        time.Time
	TargetDateISO  string
	Status         DateContextStatus
	OriginalInput  string
	WarningMessage string
}

var (
	isoDateRegex         = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	relativeWeekdayRegex = regexp.MustCompile(`^(next|last)\s+(sunday|monday|tuesday|wednesday|thursday|friday|saturday)`)
	monthDayRegex        = regexp.MustCompile(`^(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s*(\d{4}))?`)
)

var weekdayIndex = map[string]int{
	"sunday": 0, "monday": 1, "tuesday": 2, "wednesday": 3,
	"thursday": 4, "friday": 5, "saturday": 6,
}

var monthIndex = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

func startOfDayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, 999000000, time.UTC)
}

func utcDateISO(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ParseDateContext resolves a natural-language date context ("today",
// "next friday", "2025-06-10", "August 15") relative to base. Empty input
// defaults to today; unrecognized input also defaults to today but carries
// an unparseable status and a user-facing warning.
func ParseDateContext(input string, base time.Time) ParsedDateContext {
	original := input
	status := DateStatusParsed
	warning := ""
	target := startOfDayUTC(base)

	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		normalized = "today"
	}

	parsed := false
	switch normalized {
	case "today":
		target = startOfDayUTC(base)
		if strings.TrimSpace(input) == "" {
			status = DateStatusDefaulted
		}
		parsed = true
	case "tomorrow":
		target = startOfDayUTC(base).AddDate(0, 0, 1)
		parsed = true
	case "yesterday":
		target = startOfDayUTC(base).AddDate(0, 0, -1)
		parsed = true
	}

	if !parsed {
		if m := isoDateRegex.FindStringSubmatch(normalized); m != nil {
			year, _ := strconv.Atoi(m[1])
			month, _ := strconv.Atoi(m[2])
			day, _ := strconv.Atoi(m[3])
			candidate := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			// time.Date normalizes out-of-range components ("2025-02-30"
			// becomes March 2nd); a round-trip mismatch means the input
			// named a day that does not exist.
			if candidate.Year() == year && candidate.Month() == time.Month(month) && candidate.Day() == day {
				target = candidate
				parsed = true
			}
		}
	}

	if !parsed {
		if m := relativeWeekdayRegex.FindStringSubmatch(normalized); m != nil {
			direction := m[1]
			targetDay := weekdayIndex[m[2]]
			currentDay := int(startOfDayUTC(base).Weekday())
			if direction == "next" {
				daysToAdd := (targetDay - currentDay + 7) % 7
				if daysToAdd == 0 {
					daysToAdd = 7
				}
				target = startOfDayUTC(base).AddDate(0, 0, daysToAdd)
			} else {
				daysToSubtract := (currentDay - targetDay + 7) % 7
				if daysToSubtract == 0 {
					daysToSubtract = 7
				}
				target = startOfDayUTC(base).AddDate(0, 0, -daysToSubtract)
			}
			parsed = true
		}
	}

	if !parsed {
		if m := monthDayRegex.FindStringSubmatch(normalized); m != nil {
			month := monthIndex[m[1][:3]]
			day, _ := strconv.Atoi(m[2])
			if day >= 1 && day <= 31 {
				year := base.UTC().Year()
				explicitYear := m[3] != ""
				if explicitYear {
					year, _ = strconv.Atoi(m[3])
				}
				candidate := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
				if candidate.Month() == month && candidate.Day() == day && candidate.Year() == year {
					if !explicitYear && candidate.Before(startOfDayUTC(base)) {
						// Date already passed this year; assume next year.
						rolled := time.Date(year+1, month, day, 0, 0, 0, 0, time.UTC)
						if rolled.Month() == month {
							target = rolled
							parsed = true
						}
					} else {
						target = candidate
						parsed = true
					}
				}
			}
		}
	}

	if !parsed {
		target = startOfDayUTC(base)
		status = DateStatusUnparseable
		warning = fmt.Sprintf("Date context %q is not recognized or is invalid. Defaulting to today.", original)
	}

	return ParsedDateContext{
		TargetDate:     target,
		TimeMin:        startOfDayUTC(target),
		TimeMax:        endOfDayUTC(target),
		TargetDateISO:  utcDateISO(target),
		Status:         status,
		OriginalInput:  original,
		WarningMessage: warning,
	}
}

// FriendlyDateString renders a date as "Today", "Tomorrow", "Yesterday" or
// a long form like "Monday, June 9, 2025", relative to base.
func FriendlyDateString(date, base time.Time) string {
	today := startOfDayUTC(base)
	target := startOfDayUTC(date)

	switch {
	case target.Equal(today):
		return "Today"
	case target.Equal(today.AddDate(0, 0, 1)):
		return "Tomorrow"
	case target.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	default:
		return target.Format("Monday, January 2, 2006")
	}
}
