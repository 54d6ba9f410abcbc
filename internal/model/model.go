package model

import "time"

// Slide is one deck page. Content is the raw markdown source; the manifest
// owns ordering, so Number is the 1-based position at load time.
type Slide struct {
	ID        string    `json:"id"`
	Number    int       `json:"number"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
	Path      string    `json:"path,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AnimationGroup is one reveal step: the listed elements become visible
// together on a single playback advance. ElementIDs keeps insertion order for
// display but behaves as a set (no duplicates). Order is 1-based and kept
// contiguous by the group manager; ColorIndex is always (Order-1) mod the
// palette size.
type AnimationGroup struct {
	ID         string   `json:"id"`
	Order      int      `json:"order"`
	ElementIDs []string `json:"elementIds"`
	ColorIndex int      `json:"colorIndex"`
}

// Rect is the bounding geometry of a scanned fragment, in surface cells.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// SelectableElement is a scanned content fragment that can be assigned to an
// animation group. GroupID is a non-owning lookup into the group list.
type SelectableElement struct {
	ID      string  `json:"id"`
	Tag     string  `json:"tag"`
	Label   string  `json:"label"`
	Rect    Rect    `json:"rect"`
	GroupID *string `json:"groupId,omitempty"`
}

// GroupRecord is the persisted form of an animation group, embedded in the
// deck manifest by the host side. It is deliberately identical in shape to
// AnimationGroup so the engine and the store never disagree on field meaning.
type GroupRecord struct {
	ID         string   `json:"id"`
	Order      int      `json:"order"`
	ElementIDs []string `json:"elementIds"`
	ColorIndex int      `json:"colorIndex"`
}

// Deck is the loaded document: slides in manifest order plus per-slide group
// records. The engine resets its session whenever a new Deck is loaded.
type Deck struct {
	Dir    string                `json:"dir"`
	Title  string                `json:"title,omitempty"`
	Slides []Slide               `json:"slides"`
	Groups map[int][]GroupRecord `json:"groups,omitempty"` // keyed by slide number
}

func (d *Deck) SlideByNumber(n int) (*Slide, bool) {
	if d == nil {
		return nil, false
	}
	for i := range d.Slides {
		if d.Slides[i].Number == n {
			return &d.Slides[i], true
		}
	}
	return nil, false
}
