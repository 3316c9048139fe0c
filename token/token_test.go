package token

import "testing"

func TestRoot(t *testing.T) {
	tok := Root(1)
	if tok.NodeID != 1 {
		t.Errorf("NodeID = %d, want 1", tok.NodeID)
	}
	if tok.Via != -1 {
		t.Errorf("Via = %d, want -1", tok.Via)
	}
	if tok.Current() != RootColor {
		t.Errorf("Current() = %d, want RootColor", tok.Current())
	}
	if tok.Parent() != RootColor {
		t.Errorf("Parent() = %d, want RootColor", tok.Parent())
	}
	if tok.ID == "" {
		t.Error("ID should not be empty")
	}
}

func TestAt_PreservesColors(t *testing.T) {
	tok := Root(1)
	tok = tok.Pushed(2, 7)
	next := tok.At(3)

	if next.NodeID != 3 {
		t.Errorf("NodeID = %d, want 3", next.NodeID)
	}
	if next.Via != 2 {
		t.Errorf("Via = %d, want 2", next.Via)
	}
	if next.Current() != 7 {
		t.Errorf("Current() = %d, want 7", next.Current())
	}
	if len(next.Colors) != len(tok.Colors) {
		t.Errorf("At should not grow or shrink the color stack")
	}
}

func TestPushed_PoppedRoundTrip(t *testing.T) {
	root := Root(1)
	split := root.Pushed(2, 5)

	if split.Current() != 5 {
		t.Errorf("Current() = %d, want 5", split.Current())
	}
	if split.Parent() != RootColor {
		t.Errorf("Parent() = %d, want RootColor", split.Parent())
	}

	synced := split.Popped(3)
	if synced.Current() != RootColor {
		t.Errorf("Current() after Popped = %d, want RootColor", synced.Current())
	}
	if synced.Via != 2 {
		t.Errorf("Via = %d, want 2", synced.Via)
	}
}

func TestNestedSplits_PreserveOuterColor(t *testing.T) {
	// Two levels of nested splits must leave the outer color recoverable
	// once the inner sync pops back to it (spec §4.7 nested fork/join).
	root := Root(1)
	outer := root.Pushed(2, 10)
	inner := outer.Pushed(3, 20)

	if inner.Current() != 20 {
		t.Fatalf("Current() = %d, want 20", inner.Current())
	}
	if inner.Parent() != 10 {
		t.Fatalf("Parent() = %d, want 10 (outer color)", inner.Parent())
	}

	backToOuter := inner.Popped(4)
	if backToOuter.Current() != 10 {
		t.Fatalf("Current() after inner sync = %d, want 10", backToOuter.Current())
	}

	backToRoot := backToOuter.Popped(5)
	if backToRoot.Current() != RootColor {
		t.Fatalf("Current() after outer sync = %d, want RootColor", backToRoot.Current())
	}
}

func TestNew_DistinctIDs(t *testing.T) {
	a := New(1, -1, []Color{RootColor})
	b := New(1, -1, []Color{RootColor})
	if a.ID == b.ID {
		t.Error("two tokens minted separately should not share an ID")
	}
}
