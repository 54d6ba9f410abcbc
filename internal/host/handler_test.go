package host

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"deckview-cli/internal/model"
	"deckview-cli/internal/store"
)

func newTestHandler(t *testing.T) (*Handler, store.Store) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range map[string]string{
		"slide-01.md": "# One\n",
		"slide-02.md": "# Two\n",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	st := store.Store{Dir: dir}
	if err := st.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	return NewHandler(st, nil), st
}

func collectEvents(t *testing.T, h *Handler, in Intent) []Event {
	t.Helper()
	var evs []Event
	h.Handle(context.Background(), in, func(ev Event) { evs = append(evs, ev) })
	if len(evs) == 0 {
		t.Fatal("no events emitted")
	}
	return evs
}

func lastEvent(evs []Event) Event { return evs[len(evs)-1] }

func TestHandle_SaveSlide(t *testing.T) {
	h, st := newTestHandler(t)
	evs := collectEvents(t, h, Intent{Type: IntentSaveSlide, SlideID: "slide-slide-01", Content: "# Edited\n"})

	if evs[0].Type != EventSlideUpdated || evs[0].Slide == nil || evs[0].Slide.Content != "# Edited\n" {
		t.Fatalf("first event = %+v", evs[0])
	}
	ack := lastEvent(evs)
	if ack.Type != EventLaunchResult || ack.Op != IntentSaveSlide || !ack.Success {
		t.Fatalf("ack = %+v", ack)
	}
	b, err := os.ReadFile(filepath.Join(st.Dir, "slide-01.md"))
	if err != nil || string(b) != "# Edited\n" {
		t.Fatalf("file = %q, %v", b, err)
	}
}

func TestHandle_SaveSlide_FailureAcksWithError(t *testing.T) {
	h, _ := newTestHandler(t)
	evs := collectEvents(t, h, Intent{Type: IntentSaveSlide, SlideID: "slide-../bad", Content: "x"})
	ack := lastEvent(evs)
	if ack.Type != EventLaunchResult || ack.Success || ack.Error == "" {
		t.Fatalf("ack = %+v", ack)
	}
}

func TestHandle_SaveGroups(t *testing.T) {
	h, st := newTestHandler(t)
	in := Intent{
		Type:        IntentSaveGroups,
		SlideNumber: 1,
		Groups: []model.GroupRecord{
			{ID: "group-1", Order: 1, ColorIndex: 0, ElementIDs: []string{"h1-abc123"}},
		},
	}
	evs := collectEvents(t, h, in)
	if evs[0].Type != EventManifestUpdated {
		t.Fatalf("first event = %+v", evs[0])
	}
	if ack := lastEvent(evs); ack.Op != IntentSaveGroups || !ack.Success {
		t.Fatalf("ack = %+v", ack)
	}
	deck, err := st.LoadDeck(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(deck.Groups[1]) != 1 || deck.Groups[1][0].ID != "group-1" {
		t.Fatalf("groups = %+v", deck.Groups)
	}
}

func TestHandle_Reorder(t *testing.T) {
	h, st := newTestHandler(t)
	evs := collectEvents(t, h, Intent{Type: IntentReorder, NewOrder: []string{"slide-slide-02", "slide-slide-01"}})
	if ack := lastEvent(evs); !ack.Success {
		t.Fatalf("ack = %+v", ack)
	}
	deck, err := st.LoadDeck(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if deck.Slides[0].ID != "slide-slide-02" {
		t.Fatalf("order = %v", deck.Slides[0].ID)
	}
}

func TestHandle_InsertSlide(t *testing.T) {
	h, _ := newTestHandler(t)
	evs := collectEvents(t, h, Intent{Type: IntentInsertSlide, AfterNumber: 1, Content: "# Fresh\n"})

	if evs[0].Type != EventSlideInserted || evs[0].Slide == nil || evs[0].Slide.Number != 2 {
		t.Fatalf("first event = %+v", evs[0])
	}
	if evs[1].Type != EventManifestUpdated {
		t.Fatalf("second event = %+v", evs[1])
	}
	if ack := lastEvent(evs); ack.Op != IntentInsertSlide || !ack.Success {
		t.Fatalf("ack = %+v", ack)
	}
}

func TestHandle_UnknownIntent(t *testing.T) {
	h, _ := newTestHandler(t)
	evs := collectEvents(t, h, Intent{Type: "explode"})
	if evs[0].Type != EventError || evs[0].Error == "" {
		t.Fatalf("event = %+v", evs[0])
	}
}

func TestHandle_Rebuild(t *testing.T) {
	h, st := newTestHandler(t)
	in := Intent{Type: IntentRebuild, Build: &BuildRequest{Kind: "all", BuildID: "b-1", Format: "html"}}
	evs := collectEvents(t, h, in)

	var final *RebuildProgress
	for i := range evs {
		if evs[i].Type == EventRebuildProgress && evs[i].Progress != nil && evs[i].Progress.Done {
			final = evs[i].Progress
		}
	}
	if final == nil {
		t.Fatal("no terminal progress event")
	}
	if final.BuildID != "b-1" || final.Current != 2 || final.Total != 2 || final.Errors != 0 || final.Cancelled {
		t.Fatalf("final progress = %+v", final)
	}
	if ack := lastEvent(evs); ack.Op != IntentRebuild || !ack.Success {
		t.Fatalf("ack = %+v", ack)
	}
	if _, err := os.Stat(filepath.Join(st.DefaultExportDir(), "index.html")); err != nil {
		t.Fatalf("export output missing: %v", err)
	}
}

func TestHandle_RebuildMissingRequest(t *testing.T) {
	h, _ := newTestHandler(t)
	evs := collectEvents(t, h, Intent{Type: IntentRebuild})
	if ack := lastEvent(evs); ack.Success || ack.Error == "" {
		t.Fatalf("ack = %+v", ack)
	}
}

func TestBuildSubset(t *testing.T) {
	deck := &model.Deck{Slides: []model.Slide{
		{ID: "a", Number: 1},
		{ID: "b", Number: 2},
		{ID: "c", Number: 3},
	}}
	cases := []struct {
		name    string
		req     BuildRequest
		wantIDs []string
		wantErr bool
	}{
		{"all", BuildRequest{Kind: "all"}, []string{"a", "b", "c"}, false},
		{"empty kind means all", BuildRequest{}, []string{"a", "b", "c"}, false},
		{"one", BuildRequest{Kind: "one", StartSlide: 2}, []string{"b"}, false},
		{"one missing", BuildRequest{Kind: "one", StartSlide: 9}, nil, true},
		{"resume", BuildRequest{Kind: "resume", StartSlide: 2}, []string{"b", "c"}, false},
		{"resume past end", BuildRequest{Kind: "resume", StartSlide: 9}, nil, true},
		{"unknown kind", BuildRequest{Kind: "half"}, nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub, err := buildSubset(deck, &tc.req)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("err = %v", err)
			}
			if len(sub.Slides) != len(tc.wantIDs) {
				t.Fatalf("slides = %d, want %d", len(sub.Slides), len(tc.wantIDs))
			}
			for i, id := range tc.wantIDs {
				if sub.Slides[i].ID != id {
					t.Fatalf("slide %d = %q, want %q", i, sub.Slides[i].ID, id)
				}
			}
		})
	}
}

func TestLocalBridge_SendAndAck(t *testing.T) {
	h, _ := newTestHandler(t)
	l := NewLocal(h, nil)

	if err := l.Send(Intent{Type: IntentSaveSlide, SlideID: "slide-slide-01", Content: "# Via bridge\n"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	deadline := time.After(5 * time.Second)
	var acked bool
	for !acked {
		select {
		case ev := <-l.Events():
			if ev.Type == EventLaunchResult {
				if ev.Op != IntentSaveSlide || !ev.Success {
					t.Fatalf("ack = %+v", ev)
				}
				acked = true
			}
		case <-deadline:
			t.Fatal("no ack within deadline")
		}
	}

	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, ok := <-l.Events(); ok {
		t.Fatal("events channel still open after close")
	}
	if err := l.Send(Intent{Type: IntentSaveSlide}); err == nil {
		t.Fatal("send after close succeeded")
	}
}
