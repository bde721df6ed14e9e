package overlay

import (
	"reflect"
	"testing"

	"overlay-annotator/pkg/geometry"
)

// newSelectionView returns a view over n 10x10 overlays laid out in a row.
func newSelectionView(n int) *View {
	src := &fakeSource{}
	for i := 0; i < n; i++ {
		src.rects = append(src.rects, geometry.NewRect(float64(i*20), 0, 10, 10))
	}
	v := NewView()
	v.SetDataSource(src)
	return v
}

func TestSelectIndexes_Extend(t *testing.T) {
	tests := []struct {
		name     string
		multiple bool
		want     []int
	}{
		{"multiple allowed", true, []int{2, 5}},
		{"single only", false, []int{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newSelectionView(8)
			v.SetPermission(AllowsMultipleSelection, tt.multiple)

			v.SelectIndexes([]int{2}, false)
			v.SelectIndexes([]int{5}, true)

			if got := v.SelectedIndexes(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("selected: got %v, want %v", got, tt.want)
			}
			if got := v.SelectedIndex(); got != 5 {
				t.Errorf("SelectedIndex: got %d, want 5", got)
			}
		})
	}
}

func TestSelectIndexes_Replace(t *testing.T) {
	v := newSelectionView(8)
	v.SelectIndexes([]int{1, 2, 3}, false)
	v.SelectIndexes([]int{6, 4}, false)

	if got := v.SelectedIndexes(); !reflect.DeepEqual(got, []int{4, 6}) {
		t.Errorf("got %v, want [4 6]", got)
	}
	if got := v.SelectedIndex(); got != 4 {
		t.Errorf("SelectedIndex: got %d, want 4 (last added)", got)
	}
}

func TestSelectIndexes_IgnoresOutOfRange(t *testing.T) {
	v := newSelectionView(3)
	v.SelectIndexes([]int{-1, 1, 3, 99}, false)

	if got := v.SelectedIndexes(); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("got %v, want [1]", got)
	}
}

func TestSelection_Disallowed(t *testing.T) {
	v := newSelectionView(3)
	v.SelectIndexes([]int{0, 1}, false)

	v.SetPermission(AllowsSelection, false)
	if v.NumberOfSelected() != 0 {
		t.Errorf("disabling selection should clear it, got %v", v.SelectedIndexes())
	}

	v.SelectIndexes([]int{2}, false)
	v.SelectAll()
	if v.NumberOfSelected() != 0 || v.SelectedIndex() != -1 {
		t.Errorf("selection must stay empty, got %v", v.SelectedIndexes())
	}
}

func TestSelection_DisablingMultipleKeepsLast(t *testing.T) {
	v := newSelectionView(5)
	v.SelectIndexes([]int{3, 0, 4}, false)

	v.SetPermission(AllowsMultipleSelection, false)
	if got := v.SelectedIndexes(); !reflect.DeepEqual(got, []int{4}) {
		t.Errorf("got %v, want [4]", got)
	}
}

func TestDeselectAll_EmptySelectionPolicy(t *testing.T) {
	v := newSelectionView(3)
	v.SetPermission(AllowsEmptySelection, false)
	v.SelectIndexes([]int{1}, false)

	v.DeselectAll()
	if got := v.SelectedIndexes(); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("DeselectAll should be refused, got %v", got)
	}

	v.SelectIndexes(nil, false)
	if got := v.SelectedIndexes(); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("empty replacement should be refused, got %v", got)
	}

	v.Deselect(1)
	if v.NumberOfSelected() != 0 || v.SelectedIndex() != -1 {
		t.Errorf("Deselect must always succeed, got %v", v.SelectedIndexes())
	}
}

func TestDeselectAll_FromEmptyIsAllowed(t *testing.T) {
	v := newSelectionView(3)
	v.SetPermission(AllowsEmptySelection, false)

	v.DeselectAll()
	if v.NumberOfSelected() != 0 {
		t.Errorf("got %v", v.SelectedIndexes())
	}
}

func TestDeselect_RestoresPreviousLast(t *testing.T) {
	v := newSelectionView(8)
	v.SelectIndexes([]int{1}, false)
	v.SelectIndexes([]int{6}, true)
	v.SelectIndexes([]int{3}, true)

	v.Deselect(3)
	if got := v.SelectedIndex(); got != 6 {
		t.Errorf("after deselecting last: got %d, want 6", got)
	}

	v.Deselect(1)
	if got := v.SelectedIndex(); got != 6 {
		t.Errorf("deselecting non-last changed last: got %d", got)
	}

	v.Deselect(7)
	if got := v.SelectedIndexes(); !reflect.DeepEqual(got, []int{6}) {
		t.Errorf("deselecting unselected index changed selection: %v", got)
	}
}

func TestSelectAll(t *testing.T) {
	v := newSelectionView(4)
	v.SelectAll()
	if got := v.SelectedIndexes(); !reflect.DeepEqual(got, []int{0, 1, 2, 3}) {
		t.Errorf("got %v", got)
	}
	for i := 0; i < 4; i++ {
		if !v.IsSelected(i) {
			t.Errorf("IsSelected(%d) = false", i)
		}
	}

	v.DeselectAll()
	v.SetPermission(AllowsMultipleSelection, false)
	v.SelectAll()
	if v.NumberOfSelected() != 0 {
		t.Errorf("SelectAll without multiple selection should do nothing, got %v", v.SelectedIndexes())
	}
}

func TestSelectionType(t *testing.T) {
	var s Selection
	if s.Last() != -1 || s.Len() != 0 {
		t.Fatal("zero Selection should be empty")
	}

	s.Add(3)
	s.Add(1)
	s.Add(3)
	if s.Last() != 3 || s.Len() != 2 {
		t.Errorf("re-adding should move to end: last %d len %d", s.Last(), s.Len())
	}

	s.Prune(2)
	if !reflect.DeepEqual(s.Indexes(), []int{1}) {
		t.Errorf("Prune: got %v", s.Indexes())
	}
}
