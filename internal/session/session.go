package session

import (
	"deckview-cli/internal/build"
	"deckview-cli/internal/model"

	"go.uber.org/zap"
)

// Session is the per-document viewer state: slide order and position, the
// interaction mode crossed with the fullscreen axis, grouping sub-state,
// build-mode state, and the in-flight flags guarding async host operations.
//
// A Session is created once per loaded deck and Reset on reload. It is not
// goroutine-safe: all mutation happens on the single event loop that owns it.
type Session struct {
	log *zap.Logger

	slides  []model.Slide
	current int // 0-based index into slides

	mode       Mode
	fullscreen Fullscreen
	saveStatus SaveStatus

	// Grouping sub-state, valid only while mode == ModeGrouping.
	selection       []string
	selected        map[string]bool
	scanPending     bool
	focusedIndex    int
	selectedGroupID string

	Build *build.Tracker

	ops map[Op]*inflight

	// pendingNav is the 1-based slide number to jump to once an async
	// insertion acknowledges; 0 means none.
	pendingNav int

	scrollSaved    int
	hasScrollSaved bool
}

func New(slides []model.Slide, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		log:   log.Named("session"),
		Build: build.NewTracker(),
		ops:   map[Op]*inflight{},
	}
	s.Reset(slides)
	return s
}

// Reset reinitializes the session for a reloaded document. In-flight flags
// are dropped: any outstanding acknowledgment belongs to the old document.
func (s *Session) Reset(slides []model.Slide) {
	s.slides = append([]model.Slide{}, slides...)
	s.current = 0
	s.mode = ModePresentation
	s.fullscreen = FullscreenNone
	s.saveStatus = SaveStatusSaved
	s.clearGrouping()
	s.ops = map[Op]*inflight{}
	s.pendingNav = 0
	s.hasScrollSaved = false
}

func (s *Session) Mode() Mode { return s.mode }
func (s *Session) FullscreenState() Fullscreen { return s.fullscreen }

func (s *Session) SaveStatus() SaveStatus { return s.saveStatus }
func (s *Session) SetSaveStatus(st SaveStatus) { s.saveStatus = st }

// transition is the single gatekeeper for mode changes. Invalid requests are
// silent no-ops: the state stays valid and nothing is surfaced.
func (s *Session) transition(to Mode) bool {
	if s.mode == to {
		return false
	}
	switch to {
	case ModeTextEditing:
		if s.mode != ModePresentation {
			return false
		}
	case ModeGrouping:
		if s.mode != ModePresentation {
			return false
		}
	case ModePresentation:
		// Always reachable.
	}
	s.mode = to
	return true
}

// EnterTextEditing switches into text editing. Allowed only from
// presentation; in particular it is a no-op while grouping.
func (s *Session) EnterTextEditing() bool {
	return s.transition(ModeTextEditing)
}

func (s *Session) ExitTextEditing() {
	if s.mode == ModeTextEditing {
		s.transition(ModePresentation)
	}
}

// EnterGrouping switches into grouping, resets the grouping sub-state and
// marks a scan as requested. No-op while text editing.
func (s *Session) EnterGrouping() bool {
	if !s.transition(ModeGrouping) {
		return false
	}
	s.clearGrouping()
	s.scanPending = true
	return true
}

func (s *Session) ExitGrouping() {
	if s.mode != ModeGrouping {
		return
	}
	s.transition(ModePresentation)
	s.clearGrouping()
}

func (s *Session) clearGrouping() {
	s.selection = nil
	s.selected = map[string]bool{}
	s.scanPending = false
	s.focusedIndex = -1
	s.selectedGroupID = ""
}

// EnterFullscreen captures the current scroll offset (once per fullscreen
// episode) for restoration on exit.
func (s *Session) EnterFullscreen(kind Fullscreen, scrollOffset int) {
	if kind != FullscreenView && kind != FullscreenEdit {
		return
	}
	if s.fullscreen == FullscreenNone {
		s.scrollSaved = scrollOffset
		s.hasScrollSaved = true
	}
	s.fullscreen = kind
}

// ExitFullscreen leaves fullscreen by any path. The captured scroll offset is
// returned exactly once; repeated exits report ok=false.
func (s *Session) ExitFullscreen() (scrollOffset int, ok bool) {
	if s.fullscreen == FullscreenNone {
		return 0, false
	}
	s.fullscreen = FullscreenNone
	if !s.hasScrollSaved {
		return 0, false
	}
	s.hasScrollSaved = false
	return s.scrollSaved, true
}

// EditingOverlayActive reports whether an editing overlay should be shown:
// text editing or edit-fullscreen, but never while in view-fullscreen.
func (s *Session) EditingOverlayActive() bool {
	return (s.mode == ModeTextEditing || s.fullscreen == FullscreenEdit) && s.fullscreen != FullscreenView
}

// --- grouping selection -------------------------------------------------

// ToggleSelect flips elementID in the pending multi-select set. Only
// meaningful while grouping.
func (s *Session) ToggleSelect(elementID string) {
	if s.mode != ModeGrouping || elementID == "" {
		return
	}
	if s.selected[elementID] {
		delete(s.selected, elementID)
		for i, id := range s.selection {
			if id == elementID {
				s.selection = append(s.selection[:i], s.selection[i+1:]...)
				break
			}
		}
		return
	}
	s.selected[elementID] = true
	s.selection = append(s.selection, elementID)
}

// Selection returns the pending multi-select set in selection order.
func (s *Session) Selection() []string {
	return append([]string{}, s.selection...)
}

func (s *Session) ClearSelection() {
	s.selection = nil
	s.selected = map[string]bool{}
}

func (s *Session) IsSelected(elementID string) bool { return s.selected[elementID] }

func (s *Session) ScanPending() bool { return s.scanPending }
func (s *Session) MarkScanPending() { s.scanPending = true }
func (s *Session) ScanDone() { s.scanPending = false }

func (s *Session) FocusedIndex() int { return s.focusedIndex }
func (s *Session) SetFocusedIndex(i int) { s.focusedIndex = i }

func (s *Session) SelectedGroup() string { return s.selectedGroupID }
func (s *Session) SelectGroup(id string) { s.selectedGroupID = id }

// --- navigation ---------------------------------------------------------

func (s *Session) SlideCount() int { return len(s.slides) }
func (s *Session) CurrentIndex() int { return s.current }

// CurrentNumber is the 1-based slide number, 0 for an empty deck.
func (s *Session) CurrentNumber() int {
	if len(s.slides) == 0 {
		return 0
	}
	return s.slides[s.current].Number
}

func (s *Session) CurrentSlide() (model.Slide, bool) {
	if len(s.slides) == 0 {
		return model.Slide{}, false
	}
	return s.slides[s.current], true
}

func (s *Session) Slides() []model.Slide { return append([]model.Slide{}, s.slides...) }

func (s *Session) GoTo(index int) {
	if index < 0 {
		index = 0
	}
	if n := len(s.slides); n > 0 && index >= n {
		index = n - 1
	}
	s.current = index
}

func (s *Session) Next() { s.GoTo(s.current + 1) }
func (s *Session) Prev() { s.GoTo(s.current - 1) }

// SetSlides replaces the slide order in place (optimistic reorder, host
// update) while keeping the viewer on the same slide id where possible.
func (s *Session) SetSlides(slides []model.Slide) {
	var keepID string
	if cur, ok := s.CurrentSlide(); ok {
		keepID = cur.ID
	}
	s.slides = append([]model.Slide{}, slides...)
	s.current = 0
	for i := range s.slides {
		if s.slides[i].ID == keepID {
			s.current = i
			break
		}
	}
}

// --- pending navigation -------------------------------------------------

// SetPendingNav records the slide number to jump to once the outstanding
// insertion acknowledges.
func (s *Session) SetPendingNav(slideNumber int) {
	if slideNumber > 0 {
		s.pendingNav = slideNumber
	}
}

// TakePendingNav consumes the pending navigation target, if any.
func (s *Session) TakePendingNav() (int, bool) {
	if s.pendingNav == 0 {
		return 0, false
	}
	n := s.pendingNav
	s.pendingNav = 0
	return n, true
}
