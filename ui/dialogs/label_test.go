package dialogs

import (
	"testing"

	"fyne.io/fyne/v2/test"

	"overlay-annotator/internal/annotation"
	"overlay-annotator/pkg/geometry"
)

func TestParseRect(t *testing.T) {
	tests := []struct {
		name       string
		x, y, w, h string
		want       geometry.Rect
		wantErr    bool
	}{
		{"plain", "1", "2", "3", "4", geometry.NewRect(1, 2, 3, 4), false},
		{"spaces", " 1.5 ", "2", "3", "4", geometry.NewRect(1.5, 2, 3, 4), false},
		{"negative size normalized", "10", "10", "-4", "-2", geometry.NewRect(6, 8, 4, 2), false},
		{"zero width", "0", "0", "0", "5", geometry.Rect{}, true},
		{"not a number", "a", "0", "1", "1", geometry.Rect{}, true},
		{"NaN", "NaN", "0", "1", "1", geometry.Rect{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRect(tt.x, tt.y, tt.w, tt.h)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLabelDialog_Apply(t *testing.T) {
	a := test.NewApp()
	w := a.NewWindow("test")
	defer w.Close()

	o := &annotation.Overlay{ID: 3, Rect: geometry.NewRect(1, 2, 3, 4), Label: "old"}
	var gotLabel string
	var gotRect geometry.Rect
	calls := 0
	d := NewLabelDialog(o, w, func(label string, r geometry.Rect) {
		calls++
		gotLabel, gotRect = label, r
	})

	if d.labelEntry.Text != "old" || d.widthEntry.Text != "3" {
		t.Fatalf("entries not filled: label=%q width=%q", d.labelEntry.Text, d.widthEntry.Text)
	}

	d.labelEntry.SetText("  R12 ")
	d.xEntry.SetText("5")
	d.apply()
	if calls != 1 {
		t.Fatalf("onSave called %d times, want 1", calls)
	}
	if gotLabel != "R12" {
		t.Errorf("label = %q, want R12", gotLabel)
	}
	if want := geometry.NewRect(5, 2, 3, 4); gotRect != want {
		t.Errorf("rect = %v, want %v", gotRect, want)
	}

	d.heightEntry.SetText("0")
	d.apply()
	if calls != 1 {
		t.Error("onSave called for a rectangle without area")
	}
}
