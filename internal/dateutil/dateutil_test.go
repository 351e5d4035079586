package dateutil

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseDateFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		want    string
		wantErr error
	}{
		{
			name:   "canonical invoice format",
			format: CanonicalFormat,
			want:   "01-02-2006",
		},
		{
			name:   "ISO date format YYYY-MM-DD",
			format: "YYYY-MM-DD",
			want:   "2006-01-02",
		},
		{
			name:   "US slash format",
			format: "MM/DD/YYYY",
			want:   "01/02/2006",
		},
		{
			name:   "long format with full month name",
			format: "MMMM D, YYYY",
			want:   "January 2, 2006",
		},
		{
			name:   "brackets preserve tokens as literals",
			format: "[YYYY]-MM-DD",
			want:   "YYYY-01-02",
		},
		{
			name:    "unclosed bracket returns error",
			format:  "[Date YYYY",
			wantErr: ErrInvalidDateFormat,
		},
		{
			name:    "empty format returns error",
			format:  "",
			wantErr: ErrInvalidDateFormat,
		},
		{
			name:    "format exceeding max length returns error",
			format:  strings.Repeat("-", MaxDateFormatLength+1),
			wantErr: ErrInvalidDateFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDateFormat(tt.format)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseDateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDateFormat(%q) unexpected error: %v", tt.format, err)
			}
			if got != tt.want {
				t.Errorf("ParseDateFormat(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

func TestCanonicalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		want    string
		wantErr error
	}{
		{name: "canonical passes through", value: "01-01-2024", want: "01-01-2024"},
		{name: "html date input", value: "2024-01-02", want: "01-02-2024"},
		{name: "slash separated", value: "12/31/2023", want: "12-31-2023"},
		{name: "surrounding spaces trimmed", value: "  03-15-2024 ", want: "03-15-2024"},
		{name: "rfc3339 keeps calendar date", value: "2024-03-15T23:30:00-05:00", want: "03-15-2024"},
		{name: "leap day", value: "02-29-2024", want: "02-29-2024"},
		{name: "unparseable text", value: "not-a-date", wantErr: ErrInvalidDate},
		{name: "day out of range", value: "02-30-2024", wantErr: ErrInvalidDate},
		{name: "month out of range", value: "13-01-2024", wantErr: ErrInvalidDate},
		{name: "day-first is rejected", value: "31-12-2024", wantErr: ErrInvalidDate},
		{name: "empty", value: "", wantErr: ErrInvalidDate},
		{name: "too long", value: strings.Repeat("1", MaxDateLength+1), wantErr: ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Canonicalize(tt.value)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Canonicalize(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Canonicalize(%q) unexpected error: %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	got := Format(time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC))
	if got != "03-05-2024" {
		t.Errorf("Format() = %q, want %q", got, "03-05-2024")
	}
}
