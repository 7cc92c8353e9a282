package selection

import (
	"reflect"
	"testing"
)

func order(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune('a' + i))
	}
	return out
}

func TestClickToggles(t *testing.T) {
	tr := New()

	tr.Click(3, "d")
	if !tr.Selected("d") || tr.Count() != 1 {
		t.Fatalf("expected single selection of d, got %v", tr.Paths())
	}

	tr.Click(3, "d")
	if tr.Selected("d") || tr.Count() != 0 {
		t.Fatalf("second click should deselect, got %v", tr.Paths())
	}
}

func TestModClickFreshSelection(t *testing.T) {
	tr := New()
	tr.Click(0, "a")
	tr.Click(1, "b")

	tr.ModClick(5, "f")
	if got := tr.Paths(); !reflect.DeepEqual(got, []string{"f"}) {
		t.Fatalf("mod-click should replace selection, got %v", got)
	}
	if !tr.EditMode() {
		t.Fatal("mod-click should enter edit mode")
	}
}

func TestShiftClickRange(t *testing.T) {
	ord := order(8)
	tr := New()

	tr.Click(2, ord[2])
	tr.ShiftClick(5, ord)

	want := []string{"c", "d", "e", "f"}
	if got := tr.Paths(); !reflect.DeepEqual(got, want) {
		t.Fatalf("range = %v, want %v", got, want)
	}
}

func TestShiftClickReversedRange(t *testing.T) {
	ord := order(8)
	tr := New()

	tr.Click(6, ord[6])
	tr.ShiftClick(3, ord)

	want := []string{"d", "e", "f", "g"}
	if got := tr.Paths(); !reflect.DeepEqual(got, want) {
		t.Fatalf("range = %v, want %v", got, want)
	}
}

func TestShiftClickWithoutAnchor(t *testing.T) {
	ord := order(4)
	tr := New()

	tr.ShiftClick(2, ord)
	if got := tr.Paths(); !reflect.DeepEqual(got, []string{"c"}) {
		t.Fatalf("shift-click without anchor should act like a click, got %v", got)
	}
}

func TestSelectionSurvivesReorder(t *testing.T) {
	ord := order(6)
	tr := New()
	tr.Click(1, ord[1])
	tr.ShiftClick(3, ord)

	// Membership is by path, so a later sort change does not move the
	// selection to different items.
	for _, p := range []string{"b", "c", "d"} {
		if !tr.Selected(p) {
			t.Fatalf("%s should stay selected after reorder", p)
		}
	}
	if tr.Selected("a") {
		t.Fatal("a should not be selected")
	}
}

func TestExitEditClears(t *testing.T) {
	tr := New()
	tr.ModClick(0, "a")
	tr.Click(1, "b")

	tr.ExitEdit()
	if tr.Count() != 0 || tr.EditMode() {
		t.Fatalf("exit should clear selection and edit mode, got %d selected", tr.Count())
	}
}

func TestShiftClickClampsOutOfRange(t *testing.T) {
	ord := order(4)
	tr := New()
	tr.Click(1, ord[1])

	tr.ShiftClick(99, ord)
	want := []string{"b", "c", "d"}
	if got := tr.Paths(); !reflect.DeepEqual(got, want) {
		t.Fatalf("clamped range = %v, want %v", got, want)
	}
}
