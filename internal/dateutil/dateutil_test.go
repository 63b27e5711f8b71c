package dateutil

import (
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestCompile - Token formats to Go layouts
// ---------------------------------------------------------------------------

func TestCompile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		want    string
		wantErr error
	}{
		{name: "every token", format: "YYYY YY MMMM MMM MM M DD D", want: "2006 06 January Jan 01 1 02 2"},
		{name: "iso", format: "YYYY-MM-DD", want: "2006-01-02"},
		{name: "long", format: "MMMM D, YYYY", want: "January 2, 2006"},
		{name: "longest token wins", format: "MMMMM", want: "January1"},
		{name: "literal separators", format: "(YYYY/MM/DD)", want: "(2006/01/02)"},
		{name: "D inside words is a token", format: "Date: YYYY", want: "2ate: 2006"},
		{name: "brackets keep text", format: "[Date]: YYYY", want: "Date: 2006"},
		{name: "brackets keep tokens", format: "[YYYY]-MM", want: "YYYY-01"},
		{name: "empty brackets", format: "YYYY[]MM", want: "200601"},
		{name: "first close ends the group", format: "[a[b]c", want: "a[bc"},
		{name: "only literals", format: "---", want: "---"},
		{name: "at max length", format: strings.Repeat("-", MaxDateFormatLength), want: strings.Repeat("-", MaxDateFormatLength)},
		{name: "unclosed bracket", format: "[Date YYYY", wantErr: ErrInvalidDateFormat},
		{name: "empty", format: "", wantErr: ErrInvalidDateFormat},
		{name: "too long", format: strings.Repeat("-", MaxDateFormatLength+1), wantErr: ErrInvalidDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := compile(tt.format)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("compile(%q) error = %v, want %v", tt.format, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("compile(%q) unexpected error: %v", tt.format, err)
			}
			if got != tt.want {
				t.Errorf("compile(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

func TestCompile_UnclosedBracketPosition(t *testing.T) {
	t.Parallel()

	_, err := compile("YYYY [x")
	if err == nil || !strings.Contains(err.Error(), "position 5") {
		t.Errorf("error = %v, want position 5", err)
	}
}

// ---------------------------------------------------------------------------
// TestResolveLayout - Presets and custom formats
// ---------------------------------------------------------------------------

func TestResolveLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "iso preset", input: "iso", want: "2006-01-02"},
		{name: "us preset", input: "us", want: "01/02/2006"},
		{name: "long preset", input: "long", want: "January 2, 2006"},
		{name: "preset is case-insensitive", input: "EUROPEAN", want: "02/01/2006"},
		{name: "custom token format", input: "D MMM YYYY", want: "2 Jan 2006"},
		{name: "empty format", input: "", wantErr: true},
		{name: "unclosed bracket", input: "[YYYY", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ResolveLayout(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDateFormat) {
					t.Fatalf("ResolveLayout(%q) error = %v, want ErrInvalidDateFormat", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveLayout(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ResolveLayout(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestReformat - Registry dates in display layouts
// ---------------------------------------------------------------------------

func TestReformat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  string
		layout string
		want   string
	}{
		{name: "iso date to long", value: "2024-01-01", layout: "January 2, 2006", want: "January 1, 2024"},
		{name: "iso date to european", value: "2024-03-09", layout: "02/01/2006", want: "09/03/2024"},
		{name: "date-time with zone", value: "2024-03-09T10:30:00Z", layout: "02/01/2006", want: "09/03/2024"},
		{name: "YAML timestamp text", value: "2024-03-09 10:30:00", layout: "2006", want: "2024"},
		{name: "date-time without zone", value: "2024-03-09T10:30:00", layout: "Jan 2006", want: "Mar 2024"},
		{name: "surrounding spaces are tolerated", value: " 2024-03-09 ", layout: "2006", want: "2024"},
		{name: "free-form date passes through", value: "Spring 2024", layout: "2006", want: "Spring 2024"},
		{name: "empty date passes through", value: "", layout: "2006", want: ""},
		{name: "invalid calendar date passes through", value: "2024-02-30", layout: "2006", want: "2024-02-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Reformat(tt.value, tt.layout); got != tt.want {
				t.Errorf("Reformat(%q, %q) = %q, want %q", tt.value, tt.layout, got, tt.want)
			}
		})
	}
}
