package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

const viewerStateFileName = "viewer_state.json"

// ViewerState stores small UI state so relaunching reopens the deck where the
// operator left it. Best effort: callers tolerate missing or invalid data.
type ViewerState struct {
	Version int `json:"version"`

	// SlideNumber is the 1-based slide that was open.
	SlideNumber int `json:"slideNumber,omitempty"`

	// Mode is one of: presentation|textEditing|grouping. Grouping is not
	// restored (a fresh scan would be stale); it falls back to presentation.
	Mode string `json:"mode,omitempty"`
}

func (s Store) viewerStatePath() string {
	return filepath.Join(s.stateDir(), viewerStateFileName)
}

func (s Store) LoadViewerState() (*ViewerState, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.viewerStatePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ViewerState{Version: 1}, nil
		}
		return nil, err
	}
	var st ViewerState
	if err := json.Unmarshal(b, &st); err != nil {
		// Best-effort; if corrupted, treat as missing.
		return &ViewerState{Version: 1}, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return &st, nil
}

func (s Store) SaveViewerState(st *ViewerState) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	if st == nil {
		st = &ViewerState{}
	}
	if st.Version == 0 {
		st.Version = 1
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.viewerStatePath(), b, 0o644)
}
