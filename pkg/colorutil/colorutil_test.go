package colorutil

import (
	"image/color"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#0000ff", color.NRGBA{0, 0, 255, 255}},
		{"00ff00", color.NRGBA{0, 255, 0, 255}},
		{"#00ff0080", color.NRGBA{0, 255, 0, 128}},
		{"#fff", color.NRGBA{255, 255, 255, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "#12", "#zzzzzz", "#0000ffzz"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) should fail", in)
		}
	}
}

func TestHex_RoundTrip(t *testing.T) {
	for _, c := range []color.NRGBA{Blue, GreenFill, {12, 34, 56, 78}} {
		got, err := Parse(Hex(c))
		if err != nil {
			t.Fatalf("Parse(Hex(%v)) failed: %v", c, err)
		}
		if got != c {
			t.Errorf("got %v, want %v", got, c)
		}
	}
}

func TestWithAlpha(t *testing.T) {
	if got := WithAlpha(Blue, 0.5).A; got != 128 {
		t.Errorf("alpha: got %d, want 128", got)
	}
	if got := WithAlpha(Blue, 2).A; got != 255 {
		t.Errorf("clamped alpha: got %d, want 255", got)
	}
}
