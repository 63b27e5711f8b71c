// Package dateutil renders registry dates in a display format chosen by the
// site owner.
//
// Formats are written with tokens (YYYY, YY, MMMM, MMM, MM, M, DD, D) or as
// a preset name. Text inside brackets is copied literally, so "[Updated] D
// MMM" keeps the word "Updated" instead of reading its D as a day.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates a display format that cannot be compiled.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength bounds a display format.
const MaxDateFormatLength = 50

// sourceLayouts are the date shapes recognized in a registry, tried in order.
var sourceLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// tokenLayouts maps each token to its Go layout element.
var tokenLayouts = map[string]string{
	"YYYY": "2006",
	"YY":   "06",
	"MMMM": "January",
	"MMM":  "Jan",
	"MM":   "01",
	"M":    "1",
	"DD":   "02",
	"D":    "2",
}

// longestToken is the length of the longest key in tokenLayouts.
const longestToken = 4

// DatePresets names the common display formats.
var DatePresets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// ResolveLayout compiles a preset name (case-insensitive) or a token format
// into a Go time layout.
func ResolveLayout(formatOrPreset string) (string, error) {
	if preset, ok := DatePresets[strings.ToLower(formatOrPreset)]; ok {
		return compile(preset)
	}
	return compile(formatOrPreset)
}

// compile turns a token format into a Go time layout. Tokens match
// greedily, longest first; every other byte is kept as is.
func compile(format string) (string, error) {
	switch {
	case format == "":
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	case len(format) > MaxDateFormatLength:
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var out strings.Builder
	out.Grow(len(format) + 8)

	rest := format
	for rest != "" {
		if rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d",
					ErrInvalidDateFormat, len(format)-len(rest))
			}
			out.WriteString(rest[1:end])
			rest = rest[end+1:]
			continue
		}

		n := matchToken(rest)
		if n == 0 {
			out.WriteByte(rest[0])
			rest = rest[1:]
			continue
		}
		out.WriteString(tokenLayouts[rest[:n]])
		rest = rest[n:]
	}

	return out.String(), nil
}

// matchToken returns the length of the token at the start of s, or 0.
func matchToken(s string) int {
	for n := min(longestToken, len(s)); n > 0; n-- {
		if _, ok := tokenLayouts[s[:n]]; ok {
			return n
		}
	}
	return 0
}

// Reformat renders a registry date with the given Go layout.
// Recognized dates are YYYY-MM-DD or an ISO date-time. Anything else is
// returned unchanged, so free-form dates like "Spring 2024" survive.
func Reformat(value, layout string) string {
	trimmed := strings.TrimSpace(value)
	for _, src := range sourceLayouts {
		if t, err := time.Parse(src, trimmed); err == nil {
			return t.Format(layout)
		}
	}
	return value
}
