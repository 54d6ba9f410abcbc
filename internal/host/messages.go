// Package host carries the message protocol between the viewer and the
// process that owns the deck on disk. The viewer only ever sends intents and
// reacts to events; it never assumes an intent succeeded until the matching
// launch-result arrives.
package host

import "deckview-cli/internal/model"

type IntentType string

const (
	IntentSaveSlide   IntentType = "save-slide"
	IntentSaveGroups  IntentType = "save-groups"
	IntentReorder     IntentType = "reorder"
	IntentInsertSlide IntentType = "insert-slide"
	IntentRebuild     IntentType = "rebuild"
)

// Intent is the single outbound envelope. Only the fields relevant to Type
// are populated.
type Intent struct {
	Type IntentType `json:"type"`

	// save-slide
	SlideID string `json:"slideId,omitempty"`
	Content string `json:"content,omitempty"`

	// save-groups
	SlideNumber int                 `json:"slideNumber,omitempty"`
	Groups      []model.GroupRecord `json:"groups,omitempty"`

	// reorder
	NewOrder []string `json:"newOrder,omitempty"`

	// insert-slide; Content doubles as the initial body
	AfterNumber int `json:"afterNumber,omitempty"`

	// rebuild
	Build *BuildRequest `json:"build,omitempty"`
}

type BuildRequest struct {
	// Kind is "all", "one" or "resume".
	Kind       string `json:"kind"`
	StartSlide int    `json:"startSlide,omitempty"`
	BuildID    string `json:"buildId"`
	Format     string `json:"format,omitempty"`
}

type EventType string

const (
	EventSlideUpdated    EventType = "slide-updated"
	EventSlideInserted   EventType = "slide-inserted"
	EventManifestUpdated EventType = "manifest-updated"
	EventRebuildProgress EventType = "rebuild-progress"
	EventLaunchResult    EventType = "launch-result"
	EventError           EventType = "error"
)

// Event is the single inbound envelope.
type Event struct {
	Type EventType `json:"type"`

	// launch-result: Op names the intent being acknowledged.
	Op      IntentType `json:"op,omitempty"`
	Success bool       `json:"success,omitempty"`
	Error   string     `json:"error,omitempty"`

	// slide-updated / slide-inserted
	Slide *model.Slide `json:"slide,omitempty"`

	// rebuild-progress
	Progress *RebuildProgress `json:"progress,omitempty"`
}

type RebuildProgress struct {
	BuildID   string `json:"buildId"`
	Current   int    `json:"current"`
	Total     int    `json:"total"`
	Format    string `json:"format"`
	Done      bool   `json:"done,omitempty"`
	Errors    int    `json:"errors,omitempty"`
	Cancelled bool   `json:"cancelled,omitempty"`
}

// Bridge is what the viewer talks to. Both the in-process host and the
// websocket client satisfy it, so the viewer does not care whether the deck
// lives in this process or behind a serve instance.
type Bridge interface {
	Send(Intent) error
	Events() <-chan Event
	Close() error
}
