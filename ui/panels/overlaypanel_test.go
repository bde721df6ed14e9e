package panels

import (
	"reflect"
	"testing"

	"fyne.io/fyne/v2/test"

	"overlay-annotator/internal/annotation"
	"overlay-annotator/internal/app"
	"overlay-annotator/internal/overlay"
	"overlay-annotator/pkg/geometry"
)

func newTestPanel(t *testing.T) (*OverlayPanel, *app.State, *overlay.View) {
	t.Helper()
	test.NewApp()

	state := app.NewState()
	state.Document.Add(geometry.NewRect(0, 0, 10, 10), "first")
	state.Document.Add(geometry.NewRect(20, 0, 10, 10), "")
	state.Document.Add(geometry.NewRect(40, 0, 10, 10), "third")

	v := overlay.NewView()
	v.SetDataSource(state.Document)
	v.SetDelegate(state.Document)

	p := NewOverlayPanel(state, v)
	state.Document.OnChange(func() {
		v.ReloadData()
		p.Refresh()
	})
	v.OnSelectionChange(p.SyncSelection)
	return p, state, v
}

func TestOverlayPanel_ListSelectsInView(t *testing.T) {
	p, _, v := newTestPanel(t)

	p.list.Select(1)
	if got := v.SelectedIndexes(); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("view selection: got %v, want [1]", got)
	}
	if p.labelEntry.Text != "" {
		t.Errorf("label entry: got %q", p.labelEntry.Text)
	}
}

func TestOverlayPanel_FollowsView(t *testing.T) {
	p, _, v := newTestPanel(t)

	v.SelectIndexes([]int{2}, false)
	if p.labelEntry.Text != "third" {
		t.Errorf("label entry: got %q, want third", p.labelEntry.Text)
	}

	v.SelectIndexes([]int{0}, true)
	if p.infoLabel.Text != "2 of 3 selected" {
		t.Errorf("info: got %q", p.infoLabel.Text)
	}

	v.DeselectAll()
	if p.deleteBtn.Disabled() != true {
		t.Error("delete should be disabled without a selection")
	}
}

func TestOverlayPanel_SetLabelAndDelete(t *testing.T) {
	p, state, v := newTestPanel(t)

	v.SelectIndexes([]int{1}, false)
	p.labelEntry.SetText("middle")
	p.applyLabel()
	if got := state.Document.Overlay(1).Label; got != "middle" {
		t.Errorf("label: got %q", got)
	}

	v.SelectIndexes([]int{0, 2}, false)
	p.DeleteSelected()
	if state.Document.Len() != 1 || state.Document.Overlay(0).Label != "middle" {
		t.Errorf("after delete: %d overlays, first %+v", state.Document.Len(), state.Document.Overlay(0))
	}
	if v.NumberOfSelected() != 0 {
		t.Errorf("selection not pruned: %v", v.SelectedIndexes())
	}
}

func TestOverlayPanel_DeleteRespectsPermission(t *testing.T) {
	p, state, v := newTestPanel(t)
	v.SelectIndexes([]int{0}, false)

	p.permChecks[overlay.AllowsDeleting].SetChecked(false)
	if v.Allows(overlay.AllowsDeleting) {
		t.Fatal("check box did not revoke deleting")
	}
	p.DeleteSelected()
	if state.Document.Len() != 3 {
		t.Errorf("deleted without permission: %d left", state.Document.Len())
	}
}

func TestItemText(t *testing.T) {
	tests := []struct {
		o    *annotation.Overlay
		want string
	}{
		{nil, ""},
		{&annotation.Overlay{ID: 3, Rect: geometry.NewRect(1, 2, 30, 40)}, "#3  1,2  30x40"},
		{&annotation.Overlay{ID: 4, Rect: geometry.NewRect(1, 2, 30, 40), Label: "Total"}, "#4  Total  (30x40)"},
	}
	for _, tt := range tests {
		if got := ItemText(tt.o); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}
