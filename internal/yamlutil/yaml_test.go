package yamlutil

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Name     string `yaml:"name"`
	Preamble string `yaml:"preamble"`
}

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		strict  bool
		dest    any
		want    string
		wantErr error
	}{
		{name: "lenient ignores unknown key", data: "name: a\nextra: 1\n", dest: &sample{}, want: "a"},
		{name: "strict accepts known keys", data: "name: b\n", strict: true, dest: &sample{}, want: "b"},
		{name: "empty data", data: "", dest: &sample{}, wantErr: ErrNilData},
		{name: "nil destination", data: "name: c\n", dest: nil, wantErr: ErrNilDestination},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			decodeFn := Unmarshal
			if tt.strict {
				decodeFn = UnmarshalStrict
			}
			err := decodeFn([]byte(tt.data), tt.dest)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := tt.dest.(*sample).Name; got != tt.want {
				t.Errorf("Name = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnmarshalStrict_UnknownKey(t *testing.T) {
	t.Parallel()

	var s sample
	err := UnmarshalStrict([]byte("name: a\nbogus: 1\n"), &s)
	if err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Errorf("UnmarshalStrict() error = %v, want unknown field error naming bogus", err)
	}
}

func TestUnmarshal_TooLarge(t *testing.T) {
	// not parallel: MaxInputSize is package state
	old := MaxInputSize
	MaxInputSize = 16
	defer func() { MaxInputSize = old }()

	var s sample
	if err := Unmarshal([]byte("name: "+strings.Repeat("x", 32)), &s); !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("Unmarshal() error = %v, want ErrInputTooLarge", err)
	}
}

func TestMarshal_MultilineLiteral(t *testing.T) {
	t.Parallel()

	out, err := Marshal(sample{Name: "x", Preamble: "\\usepackage{a}\n\\usepackage{b}\n"})
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}
	if !strings.Contains(string(out), "preamble: |") {
		t.Errorf("Marshal() = %q, want literal block for preamble", out)
	}

	var back sample
	if err := Unmarshal(out, &back); err != nil || back.Preamble != "\\usepackage{a}\n\\usepackage{b}\n" {
		t.Errorf("round trip = %+v, %v", back, err)
	}
}
