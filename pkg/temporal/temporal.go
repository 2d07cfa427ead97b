package temporal

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	yesterdayPattern = regexp.MustCompile(`(?i)\byesterday\b`)
	todayPattern     = regexp.MustCompile(`(?i)\btoday\b`)
	literalPattern   = regexp.MustCompile(`(?i)\b(?:what happened on|tell me about)\s+(\d{4}-\d{1,2}-\d{1,2}|\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?)`)
	weekdayPattern   = regexp.MustCompile(`(?i)\b(?:(last|this|on)\s+)?(sunday|monday|tuesday|wednesday|thursday|saturday|friday)\b`)

	isoLiteral = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
)

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Resolve scans text for a temporal expression and returns the calendar day it
// refers to, relative to today. Categories are tried in a fixed order:
// "yesterday", "today", an explicit date after a trigger phrase, then a named
// weekday. The first matching category decides the outcome; a date literal
// that matches but does not parse yields no day at all rather than falling
// through to a later category.
func Resolve(text string, today time.Time) (time.Time, bool) {
	today = truncate(today)

	if yesterdayPattern.MatchString(text) {
		return today.AddDate(0, 0, -1), true
	}

	if todayPattern.MatchString(text) {
		return today, true
	}

	if match := literalPattern.FindStringSubmatch(text); match != nil {
		return parseLiteral(match[1], today)
	}

	if match := weekdayPattern.FindStringSubmatch(text); match != nil {
		prefix := strings.ToLower(match[1])

		if prefix == "" {
			prefix = "last"
		}

		return ResolveWeekday(match[2], prefix, today)
	}

	return time.Time{}, false
}

// ResolveWeekday resolves a named weekday relative to today. The prefix
// "this" selects the next occurrence, counting today itself; "last" and "on"
// select the most recent occurrence strictly in the past.
func ResolveWeekday(day, prefix string, today time.Time) (time.Time, bool) {
	target, ok := weekdayNames[strings.ToLower(day)]

	if !ok {
		return time.Time{}, false
	}

	today = truncate(today)
	diff := int(target) - int(today.Weekday())

	switch strings.ToLower(prefix) {
	case "this":
		if diff < 0 {
			diff += 7
		}

	default:
		if diff >= 0 {
			diff -= 7
		}
	}

	return today.AddDate(0, 0, diff), true
}

// Format renders a resolved day in the ISO form used for note names.
func Format(date time.Time) string {
	return date.Format("2006-01-02")
}

func parseLiteral(literal string, today time.Time) (time.Time, bool) {
	if match := isoLiteral.FindStringSubmatch(literal); match != nil {
		return makeDate(atoi(match[1]), atoi(match[2]), atoi(match[3]), today.Location())
	}

	parts := strings.FieldsFunc(literal, func(r rune) bool {
		return r == '/' || r == '-'
	})

	if len(parts) < 2 || len(parts) > 3 {
		return time.Time{}, false
	}

	month := atoi(parts[0])
	day := atoi(parts[1])

	year := today.Year()

	if len(parts) == 3 {
		year = atoi(parts[2])

		if year < 100 {
			year += 2000
		}
	}

	return makeDate(year, month, day, today.Location())
}

// makeDate rejects component combinations the calendar normalizes away, such
// as a thirteenth month.
func makeDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)

	if date.Year() != year || date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, false
	}

	return date, true
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
