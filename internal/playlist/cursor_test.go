package playlist

import (
	"testing"

	"github.com/llehouerou/wavecast/internal/feed"
)

func threeEpisodes() []feed.Episode {
	return []feed.Episode{
		{ID: "ep-3", Title: "Three", PublishedAt: day(3)},
		{ID: "ep-2", Title: "Two", PublishedAt: day(2)},
		{ID: "ep-1", Title: "One", PublishedAt: day(1)},
	}
}

func TestNewCursor(t *testing.T) {
	c := NewCursor()

	if c.Index() != -1 {
		t.Errorf("Index() = %d, want -1", c.Index())
	}
	if c.Current() != nil {
		t.Error("Current() should be nil for empty cursor")
	}
	if _, ok := c.Selected(); ok {
		t.Error("Selected() should report no selection")
	}
}

func TestCursor_NextDecrementsToZero(t *testing.T) {
	c := NewCursor()
	c.SetEpisodes(threeEpisodes())
	c.Select("ep-1")

	want := []int{1, 0}
	for _, w := range want {
		before := c.Index()
		if !c.Next() {
			t.Fatalf("Next() at %d = false, want true", before)
		}
		if c.Index() != w {
			t.Errorf("Index() after Next() = %d, want %d", c.Index(), w)
		}
	}

	if c.Next() {
		t.Error("Next() at index 0 should be a no-op")
	}
	if c.Index() != 0 {
		t.Errorf("Index() = %d, want 0", c.Index())
	}
}

func TestCursor_PrevIncrementsToEnd(t *testing.T) {
	c := NewCursor()
	c.SetEpisodes(threeEpisodes())
	c.Select("ep-3")

	for _, w := range []int{1, 2} {
		if !c.Prev() {
			t.Fatalf("Prev() = false, want true")
		}
		if c.Index() != w {
			t.Errorf("Index() after Prev() = %d, want %d", c.Index(), w)
		}
	}

	if c.Prev() {
		t.Error("Prev() at last index should be a no-op")
	}
	if c.Index() != 2 {
		t.Errorf("Index() = %d, want 2", c.Index())
	}
}

func TestCursor_NoneIsNoOp(t *testing.T) {
	c := NewCursor()
	c.SetEpisodes(threeEpisodes())

	calls := 0
	c.OnChange(func(Change) { calls++ })

	if c.Next() || c.Prev() {
		t.Error("Next()/Prev() from NONE should be no-ops")
	}

	// an unknown id behaves like NONE
	c.Select("missing")
	if c.Index() != -1 {
		t.Errorf("Index() = %d, want -1 for unknown id", c.Index())
	}
	if c.Next() || c.Prev() {
		t.Error("Next()/Prev() with unresolved id should be no-ops")
	}
	if calls != 1 {
		t.Errorf("observer calls = %d, want 1 (the Select)", calls)
	}
}

func TestCursor_SelectBeforeLoad(t *testing.T) {
	c := NewCursor()
	c.Select("ep-2")

	if c.Index() != -1 {
		t.Errorf("Index() = %d, want -1 before episodes load", c.Index())
	}

	c.SetEpisodes(threeEpisodes())
	if c.Index() != 1 {
		t.Errorf("Index() = %d, want 1 once episodes load", c.Index())
	}
}

func TestCursor_SelectionSurvivesReorder(t *testing.T) {
	c := NewCursor()
	eps := threeEpisodes()
	c.SetEpisodes(eps)
	c.Select("ep-3")

	calls := 0
	c.OnChange(func(Change) { calls++ })

	c.SetEpisodes(Apply(eps, DateAscending))

	if id, _ := c.Selected(); id != "ep-3" {
		t.Errorf("Selected() = %q, want ep-3", id)
	}
	if c.Index() != 2 {
		t.Errorf("Index() = %d, want 2 after reorder", c.Index())
	}
	if calls != 0 {
		t.Errorf("observer calls = %d, want 0 for a reorder", calls)
	}
	// bounds follow the new order
	if c.Prev() {
		t.Error("Prev() at new last index should be a no-op")
	}
	if !c.Next() || c.Current().ID != "ep-2" {
		t.Errorf("Next() after reorder should reach ep-2, got %v", c.Current())
	}
}

func TestCursor_OnChange(t *testing.T) {
	c := NewCursor()
	c.SetEpisodes(threeEpisodes())

	var changes []Change
	unsub := c.OnChange(func(ch Change) { changes = append(changes, ch) })

	c.Select("ep-2")
	c.Select("ep-2") // same id, no transition
	c.Next()
	c.Clear()
	c.Clear() // nothing selected

	if len(changes) != 3 {
		t.Fatalf("observer calls = %d, want 3", len(changes))
	}
	if changes[0].Previous != nil || changes[0].Current.ID != "ep-2" || changes[0].Index != 1 {
		t.Errorf("changes[0] = %+v, want nil -> ep-2 at 1", changes[0])
	}
	if changes[1].Previous.ID != "ep-2" || changes[1].Current.ID != "ep-3" || changes[1].Index != 0 {
		t.Errorf("changes[1] = %+v, want ep-2 -> ep-3 at 0", changes[1])
	}
	if changes[2].Current != nil || changes[2].Index != -1 {
		t.Errorf("changes[2] = %+v, want cleared", changes[2])
	}

	unsub()
	unsub()
	c.Select("ep-1")
	if len(changes) != 3 {
		t.Errorf("observer called after unsubscribe")
	}
}

func TestCursor_ObserversRunInOrder(t *testing.T) {
	c := NewCursor()
	c.SetEpisodes(threeEpisodes())

	var order []string
	c.OnChange(func(Change) { order = append(order, "first") })
	c.OnChange(func(Change) { order = append(order, "second") })

	c.Select("ep-1")

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("observer order = %v, want [first second]", order)
	}
}

func TestCursor_ReentrantMutationPanics(t *testing.T) {
	c := NewCursor()
	c.SetEpisodes(threeEpisodes())
	c.OnChange(func(Change) { c.Next() })

	defer func() {
		if recover() == nil {
			t.Error("mutating the cursor from an observer should panic")
		}
	}()
	c.Select("ep-1")
}

func TestCursor_Peek(t *testing.T) {
	c := NewCursor()
	c.SetEpisodes(threeEpisodes())

	if c.PeekNext() != nil || c.PeekPrev() != nil {
		t.Error("Peek from NONE should be nil")
	}

	c.Select("ep-2")
	if p := c.PeekNext(); p == nil || p.ID != "ep-3" {
		t.Errorf("PeekNext() = %v, want ep-3", p)
	}
	if p := c.PeekPrev(); p == nil || p.ID != "ep-1" {
		t.Errorf("PeekPrev() = %v, want ep-1", p)
	}
	if c.Index() != 1 {
		t.Errorf("Peek moved the cursor to %d", c.Index())
	}
}
