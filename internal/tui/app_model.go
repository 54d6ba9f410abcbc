package tui

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"deckview-cli/internal/config"
	"deckview-cli/internal/groups"
	"deckview-cli/internal/host"
	"deckview-cli/internal/model"
	"deckview-cli/internal/session"
	"deckview-cli/internal/store"
	"deckview-cli/internal/surface"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalConfirmDeleteGroup
	modalConfirmMoveElement
	modalGoto
)

type appModel struct {
	dir    string
	cfg    config.Config
	st     store.Store
	bridge host.Bridge
	log    *zap.Logger

	sess *session.Session
	mgr  *groups.Manager
	// deckGroups holds the authoritative per-slide group records; mgr is the
	// working copy for the current slide.
	deckGroups map[int][]model.GroupRecord

	surf     *surface.DocSurface
	elements []model.SelectableElement

	deckTitle string

	width  int
	height int
	// The very first WindowSizeMsg is initial sizing, not a user resize.
	seenWindowSize bool

	rescanSeq int

	// groupsDirty marks membership changes made while a save was already in
	// flight; they are flushed when the acknowledgment arrives.
	groupsDirty bool

	textarea       textarea.Model
	editingSlideID string

	modal        modalKind
	confirmFocus confirmModalFocus
	gotoInput    textinput.Model

	pendingDeleteGroupID string
	pendingMoveElementID string
	pendingMoveFromID    string
	pendingMoveToID      string

	mouseDown  bool
	mouseDownX int
	mouseDownY int
	dragging   bool
	// dragGroupID is the group row the press landed on; releasing a drag over
	// another row reorders the groups.
	dragGroupID string

	// scroll is the presentation pane scroll offset in lines.
	scroll int

	minibufferText string

	quitting bool
}

func newAppModel(dir string, cfg config.Config, bridge host.Bridge, log *zap.Logger) appModel {
	if log == nil {
		log = zap.NewNop()
	}
	st := store.Store{Dir: dir}

	ta := textarea.New()
	ta.Placeholder = "Slide content"
	ta.CharLimit = 0

	gi := textinput.New()
	gi.Placeholder = "slide number"
	gi.CharLimit = 4

	m := appModel{
		dir:        dir,
		cfg:        cfg,
		st:         st,
		bridge:     bridge,
		log:        log.Named("tui"),
		deckGroups: map[int][]model.GroupRecord{},
		mgr:        groups.NewManager(nil),
		textarea:   ta,
		gotoInput:  gi,
	}

	deck, err := st.LoadDeck(context.Background())
	if err != nil {
		m.log.Warn("deck load failed", zap.Error(err))
		m.sess = session.New(nil, log)
		m.minibufferText = "failed to load deck: " + err.Error()
		return m
	}
	m.applyDeck(deck)
	m.restoreViewerState()
	return m
}

// applyDeck swaps in a freshly loaded deck, keeping position and per-slide
// group state consistent with the new slide set.
func (m *appModel) applyDeck(deck *model.Deck) {
	m.deckTitle = deck.Title
	if m.deckTitle == "" {
		m.deckTitle = m.cfg.Title
	}
	m.deckGroups = deck.Groups
	if m.deckGroups == nil {
		m.deckGroups = map[int][]model.GroupRecord{}
	}
	if m.sess == nil {
		m.sess = session.New(deck.Slides, m.log)
	} else {
		m.sess.SetSlides(deck.Slides)
	}
	m.loadGroupsForCurrent()
	if m.sess.Mode() == session.ModeGrouping {
		m.sess.MarkScanPending()
	}
}

func (m *appModel) loadGroupsForCurrent() {
	m.mgr = groups.FromRecords(m.deckGroups[m.sess.CurrentNumber()])
}

// syncGroupRecords writes the working manager back into the per-slide map.
func (m *appModel) syncGroupRecords() {
	m.deckGroups[m.sess.CurrentNumber()] = m.mgr.Records()
}

func (m *appModel) restoreViewerState() {
	vs, err := m.st.LoadViewerState()
	if err != nil || vs == nil {
		return
	}
	if vs.SlideNumber > 0 {
		m.sess.GoTo(vs.SlideNumber - 1)
		m.loadGroupsForCurrent()
	}
	// Text editing resumes where the viewer left off; grouping does not, its
	// element scan would be stale.
	if vs.Mode == session.ModeTextEditing.String() {
		m.enterTextEditing()
	}
}

func (m *appModel) saveViewerState() {
	st := &store.ViewerState{
		SlideNumber: m.sess.CurrentNumber(),
		Mode:        m.sess.Mode().String(),
	}
	if err := m.st.SaveViewerState(st); err != nil {
		m.log.Debug("viewer state save failed", zap.Error(err))
	}
}

func (m *appModel) enterTextEditing() bool {
	slide, ok := m.sess.CurrentSlide()
	if !ok || !m.sess.EnterTextEditing() {
		return false
	}
	m.editingSlideID = slide.ID
	m.textarea.SetValue(slide.Content)
	m.textarea.Focus()
	return true
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	if m.bridge != nil {
		cmds = append(cmds, waitForHostEvent(m.bridge))
	}
	return tea.Batch(cmds...)
}

func (m appModel) slideLabel() string {
	n := m.sess.CurrentNumber()
	if n == 0 {
		return "no slides"
	}
	return "slide " + strconv.Itoa(n) + "/" + strconv.Itoa(m.sess.SlideCount())
}
