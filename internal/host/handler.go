package host

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"deckview-cli/internal/export"
	"deckview-cli/internal/model"
	"deckview-cli/internal/store"
)

// Handler applies intents against the deck store and emits the resulting
// events. It is shared by the in-process bridge and the websocket server so
// both modes behave identically.
type Handler struct {
	store store.Store
	exp   *export.Exporter
	log   *zap.Logger

	// ExportDir receives rebuild output. Defaults under the deck directory.
	ExportDir string

	mu          sync.Mutex
	cancelBuild context.CancelFunc
}

func NewHandler(st store.Store, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		store: st,
		exp:   export.New(log),
		log:   log.Named("host"),
	}
}

// Handle processes one intent. Events produced along the way go through
// emit; a launch-result is always emitted last so the sender can clear its
// in-flight state.
func (h *Handler) Handle(ctx context.Context, in Intent, emit func(Event)) {
	switch in.Type {
	case IntentSaveSlide:
		h.ack(emit, in.Type, h.saveSlide(in, emit))
	case IntentSaveGroups:
		h.ack(emit, in.Type, h.saveGroups(ctx, in, emit))
	case IntentReorder:
		h.ack(emit, in.Type, h.reorder(ctx, in, emit))
	case IntentInsertSlide:
		h.ack(emit, in.Type, h.insertSlide(ctx, in, emit))
	case IntentRebuild:
		h.rebuild(ctx, in, emit)
	default:
		h.log.Warn("unknown intent", zap.String("type", string(in.Type)))
		emit(Event{Type: EventError, Error: fmt.Sprintf("unknown intent %q", in.Type)})
	}
}

func (h *Handler) ack(emit func(Event), op IntentType, err error) {
	if err != nil {
		h.log.Warn("intent failed", zap.String("op", string(op)), zap.Error(err))
		emit(Event{Type: EventLaunchResult, Op: op, Success: false, Error: err.Error()})
		return
	}
	emit(Event{Type: EventLaunchResult, Op: op, Success: true})
}

func (h *Handler) saveSlide(in Intent, emit func(Event)) error {
	if err := h.store.SaveSlideContent(in.SlideID, in.Content); err != nil {
		return err
	}
	emit(Event{Type: EventSlideUpdated, Slide: &model.Slide{ID: in.SlideID, Content: in.Content}})
	return nil
}

func (h *Handler) saveGroups(ctx context.Context, in Intent, emit func(Event)) error {
	if err := h.store.SaveGroups(ctx, in.SlideNumber, in.Groups); err != nil {
		return err
	}
	emit(Event{Type: EventManifestUpdated})
	return nil
}

func (h *Handler) reorder(ctx context.Context, in Intent, emit func(Event)) error {
	if err := h.store.SaveOrder(ctx, in.NewOrder); err != nil {
		return err
	}
	emit(Event{Type: EventManifestUpdated})
	return nil
}

func (h *Handler) insertSlide(ctx context.Context, in Intent, emit func(Event)) error {
	slide, err := h.store.InsertSlide(ctx, in.AfterNumber, in.Content)
	if err != nil {
		return err
	}
	emit(Event{Type: EventSlideInserted, Slide: &slide})
	emit(Event{Type: EventManifestUpdated})
	return nil
}

// rebuild runs the export pipeline. A new rebuild cancels any one still
// running; the cancelled run reports itself through its final progress event.
func (h *Handler) rebuild(ctx context.Context, in Intent, emit func(Event)) {
	req := in.Build
	if req == nil {
		h.ack(emit, in.Type, fmt.Errorf("rebuild intent missing build request"))
		return
	}

	h.mu.Lock()
	if h.cancelBuild != nil {
		h.cancelBuild()
	}
	ctx, cancel := context.WithCancel(ctx)
	h.cancelBuild = cancel
	h.mu.Unlock()
	defer cancel()

	deck, err := h.store.LoadDeck(ctx)
	if err != nil {
		h.ack(emit, in.Type, err)
		return
	}
	subset, err := buildSubset(deck, req)
	if err != nil {
		h.ack(emit, in.Type, err)
		return
	}

	outDir := h.ExportDir
	if outDir == "" {
		outDir = h.store.DefaultExportDir()
	}
	opts := export.Options{OutDir: outDir, Format: req.Format}

	errCount := 0
	last := export.Progress{Total: len(subset.Slides), Format: opts.Format}
	err = h.exp.Deck(ctx, subset, opts, func(p export.Progress) {
		last = p
		emit(Event{Type: EventRebuildProgress, Progress: &RebuildProgress{
			BuildID: req.BuildID,
			Current: p.Current,
			Total:   p.Total,
			Format:  p.Format,
		}})
	})
	cancelled := ctx.Err() != nil
	if err != nil && !cancelled {
		errCount = 1
	}
	emit(Event{Type: EventRebuildProgress, Progress: &RebuildProgress{
		BuildID:   req.BuildID,
		Current:   last.Current,
		Total:     last.Total,
		Format:    last.Format,
		Done:      true,
		Errors:    errCount,
		Cancelled: cancelled,
	}})
	if cancelled {
		h.ack(emit, in.Type, fmt.Errorf("rebuild cancelled"))
		return
	}
	h.ack(emit, in.Type, err)
}

func buildSubset(deck *model.Deck, req *BuildRequest) (*model.Deck, error) {
	switch req.Kind {
	case "", "all":
		return deck, nil
	case "one":
		slide, ok := deck.SlideByNumber(req.StartSlide)
		if !ok {
			return nil, fmt.Errorf("no slide %d", req.StartSlide)
		}
		sub := *deck
		sub.Slides = []model.Slide{*slide}
		return &sub, nil
	case "resume":
		sub := *deck
		sub.Slides = nil
		for _, s := range deck.Slides {
			if s.Number >= req.StartSlide {
				sub.Slides = append(sub.Slides, s)
			}
		}
		if len(sub.Slides) == 0 {
			return nil, fmt.Errorf("no slides from %d", req.StartSlide)
		}
		return &sub, nil
	default:
		return nil, fmt.Errorf("unknown build kind %q", req.Kind)
	}
}
