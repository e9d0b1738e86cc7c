// Package dateutil resolves the date shown on rendered documents.
package dateutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length.
const MaxDateFormatLength = 50

// DefaultDateFormat renders "today" as in "October 07, 2026".
const DefaultDateFormat = "MMMM DD, YYYY"

// DatePresets provides named shortcuts for common date formats.
var DatePresets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// tokens maps each format token to its value for a time. Longer tokens
// come first so that "MMMM" is not read as "MM" twice.
var tokens = []struct {
	token string
	value func(time.Time) string
}{
	{"YYYY", func(t time.Time) string { return fmt.Sprintf("%04d", t.Year()) }},
	{"MMMM", func(t time.Time) string { return t.Month().String() }},
	{"MMM", func(t time.Time) string { return t.Month().String()[:3] }},
	{"YY", func(t time.Time) string { return fmt.Sprintf("%02d", t.Year()%100) }},
	{"MM", func(t time.Time) string { return fmt.Sprintf("%02d", int(t.Month())) }},
	{"DD", func(t time.Time) string { return fmt.Sprintf("%02d", t.Day()) }},
	{"M", func(t time.Time) string { return strconv.Itoa(int(t.Month())) }},
	{"D", func(t time.Time) string { return strconv.Itoa(t.Day()) }},
}

// Format renders t with a format made of the tokens YYYY, YY, MMMM, MMM,
// MM, M, DD and D. Text in brackets is copied literally, brackets removed;
// any other character is copied as is.
func Format(t time.Time, format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var sb strings.Builder
	rest := format
next:
	for rest != "" {
		if rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, len(format)-len(rest))
			}
			sb.WriteString(rest[1:end])
			rest = rest[end+1:]
			continue
		}
		for _, tok := range tokens {
			if strings.HasPrefix(rest, tok.token) {
				sb.WriteString(tok.value(t))
				rest = rest[len(tok.token):]
				continue next
			}
		}
		sb.WriteByte(rest[0])
		rest = rest[1:]
	}
	return sb.String(), nil
}

// Resolve turns a configured date into the text of the date binding:
//   - "" stays empty
//   - "today" is now in DefaultDateFormat
//   - "today:FORMAT" is now in FORMAT, or in the preset FORMAT names
//   - any other value is returned unchanged
func Resolve(value string, now time.Time) (string, error) {
	lower := strings.ToLower(value)
	switch {
	case lower == "today":
		return Format(now, DefaultDateFormat)
	case strings.HasPrefix(lower, "today:"):
		format := value[len("today:"):]
		if preset, ok := DatePresets[strings.ToLower(format)]; ok {
			format = preset
		}
		return Format(now, format)
	default:
		return value, nil
	}
}
