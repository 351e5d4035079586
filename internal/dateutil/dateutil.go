// Package dateutil parses and formats the invoice date convention.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for date operations.
var (
	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrInvalidDate       = errors.New("invalid date")
)

// MaxDateFormatLength limits format string length to prevent abuse.
const MaxDateFormatLength = 50

// MaxDateLength limits date values; the longest accepted layout is RFC 3339
// with a zone offset and fractional seconds.
const MaxDateLength = 40

// CanonicalFormat is the only date convention written into documents.
const CanonicalFormat = "MM-DD-YYYY"

// AcceptedFormats lists the layouts a raw date may arrive in, tried in order.
// YYYY-MM-DD is what an HTML date input submits.
var AcceptedFormats = []string{
	CanonicalFormat,
	"YYYY-MM-DD",
	"MM/DD/YYYY",
}

// dateTokens maps user-friendly tokens to Go time format components.
// Ordered by length descending for greedy matching.
var dateTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// canonicalLayout is CanonicalFormat translated once at init.
var canonicalLayout = mustParseDateFormat(CanonicalFormat)

// acceptedLayouts are AcceptedFormats translated once at init.
var acceptedLayouts = func() []string {
	layouts := make([]string, 0, len(AcceptedFormats))
	for _, f := range AcceptedFormats {
		layouts = append(layouts, mustParseDateFormat(f))
	}
	return layouts
}()

// ParseDateFormat converts a user-friendly format string to Go's time format.
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D
// Use brackets to escape literal text: [Date] preserves "Date" literally.
// Returns ErrInvalidDateFormat if the format is empty, too long, or has unclosed brackets.
func ParseDateFormat(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var result strings.Builder
	result.Grow(len(format) + 10)

	i := 0
	for i < len(format) {
		if format[i] == '[' {
			end := strings.Index(format[i+1:], "]")
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			result.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		matched := false
		for _, t := range dateTokens {
			if strings.HasPrefix(format[i:], t.token) {
				result.WriteString(t.goFmt)
				i += len(t.token)
				matched = true
				break
			}
		}

		if !matched {
			result.WriteByte(format[i])
			i++
		}
	}

	return result.String(), nil
}

func mustParseDateFormat(format string) string {
	layout, err := ParseDateFormat(format)
	if err != nil {
		panic(err)
	}
	return layout
}

// Parse reads a date in any of the accepted layouts, or an RFC 3339
// timestamp, and returns the calendar date it denotes.
// Day and month ranges are checked: "02-30-2024" is rejected.
func Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}
	if len(value) > MaxDateLength {
		return time.Time{}, fmt.Errorf("%w: exceeds %d characters", ErrInvalidDate, MaxDateLength)
	}

	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	return time.Time{}, fmt.Errorf("%w: %q (want %s)", ErrInvalidDate, value, CanonicalFormat)
}

// Format renders t in the canonical MM-DD-YYYY convention.
func Format(t time.Time) string {
	return t.Format(canonicalLayout)
}

// Canonicalize parses value and re-renders it as MM-DD-YYYY.
func Canonicalize(value string) (string, error) {
	t, err := Parse(value)
	if err != nil {
		return "", err
	}
	return Format(t), nil
}
