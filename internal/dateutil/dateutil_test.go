package dateutil

import (
	"errors"
	"testing"
	"time"
)

var fixed = time.Date(2026, time.March, 7, 10, 0, 0, 0, time.UTC)

// ---------------------------------------------------------------------------
// TestFormat - Token rendering
// ---------------------------------------------------------------------------

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		want    string
		wantErr error
	}{
		{name: "full year", format: "YYYY", want: "2026"},
		{name: "short year", format: "YY", want: "26"},
		{name: "month name", format: "MMMM", want: "March"},
		{name: "short month name", format: "MMM", want: "Mar"},
		{name: "padded month and day", format: "MM/DD", want: "03/07"},
		{name: "bare month and day", format: "M.D", want: "3.7"},
		{name: "default format", format: DefaultDateFormat, want: "March 07, 2026"},
		{name: "bracket literal", format: "[Day] D", want: "Day 7"},
		{name: "digits stay literal", format: "[1] YYYY 2", want: "1 2026 2"},
		{name: "empty format", format: "", wantErr: ErrInvalidDateFormat},
		{name: "unclosed bracket", format: "[Date YYYY", wantErr: ErrInvalidDateFormat},
		{name: "too long", format: "YYYY-MM-DD YYYY-MM-DD YYYY-MM-DD YYYY-MM-DD YYYY-MM-DD", wantErr: ErrInvalidDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Format(fixed, tt.format)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Format(%q) error = %v, want %v", tt.format, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Format(%q) unexpected error: %v", tt.format, err)
			}
			if got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestResolve - Date binding values
// ---------------------------------------------------------------------------

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{name: "empty stays empty", value: "", want: ""},
		{name: "literal passthrough", value: "Spring 2026", want: "Spring 2026"},
		{name: "today", value: "today", want: "March 07, 2026"},
		{name: "today is case insensitive", value: "TODAY", want: "March 07, 2026"},
		{name: "custom format", value: "today:DD/MM/YYYY", want: "07/03/2026"},
		{name: "preset", value: "today:ISO", want: "2026-03-07"},
		{name: "long preset", value: "today:long", want: "March 7, 2026"},
		{name: "empty format", value: "today:", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Resolve(tt.value, fixed)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDateFormat) {
					t.Errorf("Resolve(%q) error = %v, want ErrInvalidDateFormat", tt.value, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) unexpected error: %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
