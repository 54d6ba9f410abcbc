package groups

import (
	"strings"
	"testing"

	"deckview-cli/internal/model"
	"deckview-cli/internal/surface"
)

func TestScan_AssignsAndKeepsIDs(t *testing.T) {
	f := surface.NewFake()
	f.Add("h1", "Title", model.Rect{W: 10, H: 1})
	f.Add("p", "First paragraph", model.Rect{Y: 2, W: 20, H: 1})

	first := Scan(f, nil)
	if len(first) != 2 {
		t.Fatalf("len = %d", len(first))
	}
	for _, el := range first {
		if el.ID == "" {
			t.Fatalf("element without id: %+v", el)
		}
	}

	// A rescan sees the written-back attributes and keeps the ids.
	second := Scan(f, nil)
	for i := range first {
		if second[i].ID != first[i].ID {
			t.Fatalf("rescan re-keyed element %d: %q -> %q", i, first[i].ID, second[i].ID)
		}
	}
}

func TestScan_SkipsEmptyGeometry(t *testing.T) {
	f := surface.NewFake()
	f.Add("h1", "Visible", model.Rect{W: 10, H: 1})
	f.Add("p", "Hidden", model.Rect{})

	els := Scan(f, nil)
	if len(els) != 1 {
		t.Fatalf("len = %d, want 1", len(els))
	}
	if els[0].Tag != "h1" {
		t.Fatalf("wrong element survived: %+v", els[0])
	}
}

func TestScan_AttachesGroupMembership(t *testing.T) {
	f := surface.NewFake()
	f.Add("h1", "Title", model.Rect{W: 10, H: 1})
	f.Add("p", "Body", model.Rect{Y: 2, W: 20, H: 1})

	mgr := NewManager(nil)
	els := Scan(f, mgr)
	g, err := mgr.Create([]string{els[0].ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	els = Scan(f, mgr)
	if els[0].GroupID == nil || *els[0].GroupID != g.ID {
		t.Fatalf("grouped element missing membership: %+v", els[0])
	}
	if els[1].GroupID != nil {
		t.Fatalf("ungrouped element reports membership: %+v", els[1])
	}
}

func TestScan_TruncatesLongLabels(t *testing.T) {
	f := surface.NewFake()
	long := strings.Repeat("word ", 30)
	f.Add("p", long, model.Rect{W: 80, H: 1})

	els := Scan(f, nil)
	if len(els) != 1 {
		t.Fatalf("len = %d", len(els))
	}
	if !strings.HasSuffix(els[0].Label, "…") {
		t.Fatalf("long label not truncated: %q", els[0].Label)
	}
}

func TestScan_DuplicateTextGetsDistinctIDs(t *testing.T) {
	f := surface.NewFake()
	f.Add("li", "same", model.Rect{W: 4, H: 1})
	f.Add("li", "same", model.Rect{Y: 1, W: 4, H: 1})

	els := Scan(f, nil)
	if els[0].ID == els[1].ID {
		t.Fatalf("duplicate fragments share id %q", els[0].ID)
	}
}

func TestCarryIDs_UnchangedElementsKeepIDsAcrossRebuild(t *testing.T) {
	prev := surface.NewFake()
	prev.Add("p", "same", model.Rect{W: 4, H: 1})
	prev.Add("p", "same", model.Rect{Y: 2, W: 4, H: 1})
	before := Scan(prev, nil)
	if before[0].ID == before[1].ID {
		t.Fatalf("setup: duplicate ids %q", before[0].ID)
	}

	// The first paragraph was edited; a rebuilt surface has no attributes.
	next := surface.NewFake()
	next.Add("p", "edited", model.Rect{W: 6, H: 1})
	next.Add("p", "same", model.Rect{Y: 2, W: 4, H: 1})
	CarryIDs(prev, next)

	after := Scan(next, nil)
	if after[1].ID != before[1].ID {
		t.Fatalf("untouched element re-keyed: %q -> %q", before[1].ID, after[1].ID)
	}
	// The edited element must not pick up the freed base id of its old
	// neighbour; group membership keyed by that id would silently transfer.
	if after[0].ID == before[0].ID {
		t.Fatalf("edited element kept stale id %q", after[0].ID)
	}
}

func TestCarryIDs_DuplicatesCarryInDocumentOrder(t *testing.T) {
	prev := surface.NewFake()
	prev.Add("li", "x", model.Rect{W: 1, H: 1})
	prev.Add("li", "x", model.Rect{Y: 1, W: 1, H: 1})
	before := Scan(prev, nil)

	next := surface.NewFake()
	next.Add("li", "x", model.Rect{W: 1, H: 1})
	next.Add("li", "x", model.Rect{Y: 1, W: 1, H: 1})
	CarryIDs(prev, next)

	after := Scan(next, nil)
	if after[0].ID != before[0].ID || after[1].ID != before[1].ID {
		t.Fatalf("ids crossed over: %q/%q -> %q/%q",
			before[0].ID, before[1].ID, after[0].ID, after[1].ID)
	}
}
