package overlay

import "sort"

// Selection is an ordered set of overlay indexes. Order is the order in
// which members were added, so the last member is the last selected.
type Selection struct {
	order []int
}

// Len returns the number of selected indexes.
func (s *Selection) Len() int { return len(s.order) }

// Contains reports whether index is selected.
func (s *Selection) Contains(index int) bool {
	return s.position(index) >= 0
}

// Last returns the most recently selected index, or -1 when empty.
func (s *Selection) Last() int {
	if len(s.order) == 0 {
		return -1
	}
	return s.order[len(s.order)-1]
}

// Indexes returns the selected indexes in ascending order.
func (s *Selection) Indexes() []int {
	out := append([]int(nil), s.order...)
	sort.Ints(out)
	return out
}

// Add appends index, moving it to the end if already present.
func (s *Selection) Add(index int) {
	s.Remove(index)
	s.order = append(s.order, index)
}

// Remove drops index. It reports whether index was selected.
func (s *Selection) Remove(index int) bool {
	i := s.position(index)
	if i < 0 {
		return false
	}
	s.order = append(s.order[:i], s.order[i+1:]...)
	return true
}

// Clear empties the selection.
func (s *Selection) Clear() { s.order = s.order[:0] }

// KeepLast drops every member but the last selected one.
func (s *Selection) KeepLast() {
	if len(s.order) > 1 {
		s.order = append(s.order[:0], s.order[len(s.order)-1])
	}
}

// Prune drops indexes at or beyond count.
func (s *Selection) Prune(count int) {
	kept := s.order[:0]
	for _, i := range s.order {
		if i < count {
			kept = append(kept, i)
		}
	}
	s.order = kept
}

// Remap replaces every member with fn(member), keeping the order. Members
// mapped to a negative index are dropped.
func (s *Selection) Remap(fn func(int) int) {
	kept := s.order[:0]
	for _, i := range s.order {
		if j := fn(i); j >= 0 && !containsInt(kept, j) {
			kept = append(kept, j)
		}
	}
	s.order = kept
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func (s *Selection) clone() Selection {
	return Selection{order: append([]int(nil), s.order...)}
}

func (s *Selection) position(index int) int {
	for i, v := range s.order {
		if v == index {
			return i
		}
	}
	return -1
}

func sameOrder(a, b Selection) bool {
	if len(a.order) != len(b.order) {
		return false
	}
	for i := range a.order {
		if a.order[i] != b.order[i] {
			return false
		}
	}
	return true
}

// SelectIndexes selects indexes, replacing the selection unless extend is
// set. Indexes outside the overlay range are ignored. When only a single
// selection is allowed the last index wins; a request that would empty a
// non-empty selection is refused unless empty selection is allowed.
func (v *View) SelectIndexes(indexes []int, extend bool) {
	next := v.selection.clone()
	if !extend {
		next.Clear()
	}
	for _, i := range indexes {
		if i >= 0 && i < len(v.rects) {
			next.Add(i)
		}
	}
	v.setSelection(next)
}

// SelectedIndex returns the last selected index, or -1.
func (v *View) SelectedIndex() int { return v.selection.Last() }

// SelectedIndexes returns the selected indexes in ascending order.
func (v *View) SelectedIndexes() []int { return v.selection.Indexes() }

// NumberOfSelected returns the number of selected overlays.
func (v *View) NumberOfSelected() int { return v.selection.Len() }

// IsSelected reports whether overlay index is selected.
func (v *View) IsSelected(index int) bool { return v.selection.Contains(index) }

// Deselect removes index from the selection even when that empties it.
// If index was the last selected, the previously selected member takes
// its place.
func (v *View) Deselect(index int) {
	if v.selection.Remove(index) {
		v.selectionChanged()
		v.invalidate()
	}
}

// SelectAll selects every overlay. It does nothing when multiple selection
// is not allowed and there is more than one overlay.
func (v *View) SelectAll() {
	if !v.Allows(AllowsMultipleSelection) && len(v.rects) > 1 {
		return
	}
	next := v.selection.clone()
	for i := range v.rects {
		if !next.Contains(i) {
			next.Add(i)
		}
	}
	v.setSelection(next)
}

// DeselectAll clears the selection unless empty selection is disallowed.
func (v *View) DeselectAll() {
	v.setSelection(Selection{})
}

// setSelection installs next after applying the selection policy.
func (v *View) setSelection(next Selection) {
	prev := v.selection.clone()
	perm := v.Permissions()
	switch {
	case !perm.Has(AllowsSelection):
		next.Clear()
	case !perm.Has(AllowsMultipleSelection):
		next.KeepLast()
	}
	if next.Len() == 0 && prev.Len() > 0 && !perm.Has(AllowsEmptySelection) {
		return
	}
	v.selection = next
	if !sameOrder(prev, next) {
		v.selectionChanged()
		v.invalidate()
	}
}

// enforceSelectionPolicy trims the selection after a permission change.
func (v *View) enforceSelectionPolicy() {
	if !v.Allows(AllowsSelection) {
		v.selection.Clear()
	} else if !v.Allows(AllowsMultipleSelection) {
		v.selection.KeepLast()
	}
}
