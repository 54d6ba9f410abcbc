package session

import (
	"testing"

	"deckview-cli/internal/model"
)

func threeSlides() []model.Slide {
	return []model.Slide{
		{ID: "slide-a", Number: 1, Content: "# A"},
		{ID: "slide-b", Number: 2, Content: "# B"},
		{ID: "slide-c", Number: 3, Content: "# C"},
	}
}

func TestSession_ModesAreMutuallyExclusive(t *testing.T) {
	s := New(threeSlides(), nil)
	if s.Mode() != ModePresentation {
		t.Fatalf("initial mode = %v", s.Mode())
	}

	if !s.EnterTextEditing() {
		t.Fatalf("EnterTextEditing from presentation failed")
	}
	// Grouping is unreachable while editing; the request is a silent no-op.
	if s.EnterGrouping() {
		t.Fatalf("EnterGrouping allowed while text editing")
	}
	if s.Mode() != ModeTextEditing {
		t.Fatalf("mode corrupted: %v", s.Mode())
	}

	s.ExitTextEditing()
	if !s.EnterGrouping() {
		t.Fatalf("EnterGrouping from presentation failed")
	}
	if s.EnterTextEditing() {
		t.Fatalf("EnterTextEditing allowed while grouping")
	}
	s.ExitGrouping()
	if s.Mode() != ModePresentation {
		t.Fatalf("mode = %v after exit", s.Mode())
	}
}

func TestSession_EnterGroupingResetsSubState(t *testing.T) {
	s := New(threeSlides(), nil)
	s.EnterGrouping()
	s.ToggleSelect("el-1")
	s.SelectGroup("group-1")
	s.ExitGrouping()

	s.EnterGrouping()
	if len(s.Selection()) != 0 {
		t.Fatalf("selection survived re-entry: %v", s.Selection())
	}
	if s.SelectedGroup() != "" {
		t.Fatalf("selected group survived re-entry")
	}
	if !s.ScanPending() {
		t.Fatalf("entering grouping did not request a scan")
	}
}

func TestSession_ToggleSelectKeepsOrder(t *testing.T) {
	s := New(threeSlides(), nil)
	s.EnterGrouping()

	s.ToggleSelect("b")
	s.ToggleSelect("a")
	s.ToggleSelect("c")
	s.ToggleSelect("a") // deselect

	got := s.Selection()
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("selection = %v", got)
	}
	if s.IsSelected("a") {
		t.Fatalf("deselected element still marked")
	}

	// Selection is inert outside grouping.
	s.ExitGrouping()
	s.ToggleSelect("z")
	if len(s.Selection()) != 0 {
		t.Fatalf("selection mutated outside grouping")
	}
}

func TestSession_FullscreenScrollRestoredExactlyOnce(t *testing.T) {
	s := New(threeSlides(), nil)

	s.EnterFullscreen(FullscreenView, 42)
	// Switching fullscreen kinds within the episode keeps the first capture.
	s.EnterFullscreen(FullscreenEdit, 99)

	off, ok := s.ExitFullscreen()
	if !ok || off != 42 {
		t.Fatalf("ExitFullscreen = %d, %v", off, ok)
	}
	if _, ok := s.ExitFullscreen(); ok {
		t.Fatalf("second exit reported a saved offset")
	}
}

func TestSession_EditingOverlayActive(t *testing.T) {
	s := New(threeSlides(), nil)
	if s.EditingOverlayActive() {
		t.Fatalf("overlay active in presentation")
	}
	s.EnterTextEditing()
	if !s.EditingOverlayActive() {
		t.Fatalf("overlay inactive while editing")
	}
	// View-fullscreen suppresses the overlay no matter what.
	s.EnterFullscreen(FullscreenView, 0)
	if s.EditingOverlayActive() {
		t.Fatalf("overlay active in view fullscreen")
	}
}

func TestSession_GoToClamps(t *testing.T) {
	s := New(threeSlides(), nil)
	s.GoTo(99)
	if s.CurrentIndex() != 2 {
		t.Fatalf("index = %d", s.CurrentIndex())
	}
	s.GoTo(-5)
	if s.CurrentIndex() != 0 {
		t.Fatalf("index = %d", s.CurrentIndex())
	}
	if s.CurrentNumber() != 1 {
		t.Fatalf("number = %d", s.CurrentNumber())
	}
}

func TestSession_SetSlidesKeepsPositionByID(t *testing.T) {
	s := New(threeSlides(), nil)
	s.GoTo(1) // slide-b

	reordered := []model.Slide{
		{ID: "slide-c", Number: 1},
		{ID: "slide-b", Number: 2},
		{ID: "slide-a", Number: 3},
	}
	s.SetSlides(reordered)
	cur, ok := s.CurrentSlide()
	if !ok || cur.ID != "slide-b" {
		t.Fatalf("position lost: %+v", cur)
	}

	// Removed slide falls back to the start.
	s.SetSlides([]model.Slide{{ID: "slide-x", Number: 1}})
	if s.CurrentIndex() != 0 {
		t.Fatalf("index = %d after removal", s.CurrentIndex())
	}
}

func TestSession_PendingNavConsumedOnce(t *testing.T) {
	s := New(threeSlides(), nil)
	if _, ok := s.TakePendingNav(); ok {
		t.Fatalf("pending nav present initially")
	}
	s.SetPendingNav(0) // invalid, ignored
	if _, ok := s.TakePendingNav(); ok {
		t.Fatalf("zero target recorded")
	}
	s.SetPendingNav(3)
	n, ok := s.TakePendingNav()
	if !ok || n != 3 {
		t.Fatalf("TakePendingNav = %d, %v", n, ok)
	}
	if _, ok := s.TakePendingNav(); ok {
		t.Fatalf("pending nav not consumed")
	}
}

func TestSession_EmptyDeck(t *testing.T) {
	s := New(nil, nil)
	if _, ok := s.CurrentSlide(); ok {
		t.Fatalf("CurrentSlide reported ok on empty deck")
	}
	if s.CurrentNumber() != 0 {
		t.Fatalf("number = %d", s.CurrentNumber())
	}
	s.GoTo(5) // must not panic
}
