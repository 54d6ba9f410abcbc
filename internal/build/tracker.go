package build

import "time"

// Status is the top-level state of a batch build.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusBuilding  Status = "building"
	StatusComplete  Status = "complete"
	StatusError     Status = "error"
	StatusCancelled Status = "cancelled"
)

// Kind selects which slides a build covers.
type Kind string

const (
	KindAll    Kind = "all"
	KindOne    Kind = "one"
	KindResume Kind = "resume"
)

// autoDismissAfter is how long a cleanly completed build stays visible before
// the tracker returns to idle on its own. Error and cancelled outcomes stick
// until explicitly dismissed.
const autoDismissAfter = 4 * time.Second

// Tracker follows one multi-slide build's lifecycle. It is event-driven and
// owns no timers: callers feed it a clock reading via Tick, so tests can
// simulate elapsed time.
type Tracker struct {
	Active       bool
	BuildID      string
	Kind         Kind
	TotalSlides  int
	CurrentSlide int
	BuiltCount   int
	Status       Status
	CompletedAt  *time.Time

	dismissAt time.Time
}

func NewTracker() *Tracker {
	return &Tracker{Status: StatusIdle}
}

// Start moves the tracker into building and resets all counters.
func (t *Tracker) Start(kind Kind, totalSlides, startSlide int, buildID string) {
	t.Active = true
	t.BuildID = buildID
	t.Kind = kind
	t.TotalSlides = totalSlides
	t.CurrentSlide = startSlide
	t.BuiltCount = 0
	t.Status = StatusBuilding
	t.CompletedAt = nil
	t.dismissAt = time.Time{}
}

// Progress updates counters mid-build. The top-level status only changes if
// subStatus itself signals a terminal condition; a promotion stamps the same
// completion state Complete would, including the auto-dismiss deadline for a
// clean complete.
func (t *Tracker) Progress(now time.Time, currentSlide, totalSlides, builtCount int, subStatus Status) {
	if t.Status != StatusBuilding {
		return
	}
	t.CurrentSlide = currentSlide
	if totalSlides > 0 {
		t.TotalSlides = totalSlides
	}
	t.BuiltCount = builtCount
	switch subStatus {
	case StatusComplete, StatusError, StatusCancelled:
		t.Status = subStatus
		done := now
		t.CompletedAt = &done
		if subStatus == StatusComplete {
			t.dismissAt = now.Add(autoDismissAfter)
		}
	}
}

// Complete resolves the build. Terminal precedence: cancelled beats error,
// error (any errorCount > 0) beats complete. Only a clean complete schedules
// the automatic return to idle.
func (t *Tracker) Complete(now time.Time, builtCount, errorCount int, cancelled bool) {
	if !t.Active {
		return
	}
	t.BuiltCount = builtCount
	switch {
	case cancelled:
		t.Status = StatusCancelled
	case errorCount > 0:
		t.Status = StatusError
	default:
		t.Status = StatusComplete
		t.dismissAt = now.Add(autoDismissAfter)
	}
	done := now
	t.CompletedAt = &done
}

// Dismiss returns the tracker to idle from any terminal state.
func (t *Tracker) Dismiss() {
	switch t.Status {
	case StatusComplete, StatusError, StatusCancelled:
		t.reset()
	}
}

// Tick drives the auto-dismiss deadline. Returns true when the tracker
// transitioned back to idle.
func (t *Tracker) Tick(now time.Time) bool {
	if t.Status == StatusComplete && !t.dismissAt.IsZero() && !now.Before(t.dismissAt) {
		t.reset()
		return true
	}
	return false
}

func (t *Tracker) reset() {
	*t = Tracker{Status: StatusIdle}
}
