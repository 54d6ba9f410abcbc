package session

// Mode is the mutually exclusive interaction mode. Exactly one is active at
// any time; all changes go through Session's transition function.
type Mode int

const (
	ModePresentation Mode = iota
	ModeTextEditing
	ModeGrouping
)

func (m Mode) String() string {
	switch m {
	case ModePresentation:
		return "presentation"
	case ModeTextEditing:
		return "textEditing"
	case ModeGrouping:
		return "grouping"
	}
	return "unknown"
}

// Fullscreen is the sub-state orthogonal to Mode.
type Fullscreen int

const (
	FullscreenNone Fullscreen = iota
	FullscreenView
	FullscreenEdit
)

func (f Fullscreen) String() string {
	switch f {
	case FullscreenNone:
		return "none"
	case FullscreenView:
		return "view"
	case FullscreenEdit:
		return "edit"
	}
	return "unknown"
}

// SaveStatus reflects the most recent persistence round trip.
type SaveStatus int

const (
	SaveStatusSaved SaveStatus = iota
	SaveStatusSaving
	SaveStatusError
)
