package tui

import (
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"deckview-cli/internal/build"
	"deckview-cli/internal/groups"
	"deckview-cli/internal/host"
	"deckview-cli/internal/model"
	"deckview-cli/internal/session"
	"deckview-cli/internal/surface"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.seenWindowSize = true
		m.resizeEditor()
		return m, nil

	case tickMsg:
		now := time.Time(msg)
		for _, op := range m.sess.Tick(now) {
			m.minibufferText = "operation timed out: " + op.String()
			if op == session.OpEdit || op == session.OpAnimate {
				m.sess.SetSaveStatus(session.SaveStatusError)
			}
		}
		m.sess.Build.Tick(now)
		return m, tick()

	case rescanMsg:
		if msg.seq == m.rescanSeq && m.sess.ScanPending() {
			m.rescanElements()
		}
		return m, nil

	case deckLoadedMsg:
		if msg.err != nil {
			m.minibufferText = "reload failed: " + msg.err.Error()
			return m, nil
		}
		m.applyDeck(msg.deck)
		if n, ok := m.sess.TakePendingNav(); ok {
			m.sess.GoTo(n - 1)
			m.scroll = 0
			m.loadGroupsForCurrent()
		}
		if m.sess.ScanPending() {
			m.rescanSeq++
			return m, scheduleRescan(m.rescanSeq)
		}
		return m, nil

	case hostEventMsg:
		cmd := m.handleHostEvent(host.Event(msg))
		return m, tea.Batch(cmd, waitForHostEvent(m.bridge))

	case bridgeClosedMsg:
		m.minibufferText = "host connection closed"
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *appModel) resizeEditor() {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	h := m.height - 4
	if h < 3 {
		h = 3
	}
	m.textarea.SetWidth(w)
	m.textarea.SetHeight(h)
}

// rescanElements rebuilds the surface from the current slide content and
// refreshes the selectable element set.
func (m *appModel) rescanElements() {
	slide, ok := m.sess.CurrentSlide()
	if !ok {
		m.elements = nil
		m.sess.ScanDone()
		return
	}
	next := surface.BuildFromMarkdown(slide.Content)
	if m.surf != nil {
		// Rebuilding drops the id attributes the last scan wrote back; carry
		// them over so unchanged elements keep their identifiers.
		groups.CarryIDs(m.surf, next)
	}
	m.surf = next
	m.elements = groups.Scan(m.surf, m.mgr)
	if m.sess.FocusedIndex() >= len(m.elements) {
		m.sess.SetFocusedIndex(0)
	}
	m.sess.ScanDone()
}

// groupsChanged runs after any optimistic group mutation: sync the records,
// persist through the host and debounce a rescan.
func (m *appModel) groupsChanged() tea.Cmd {
	m.syncGroupRecords()
	m.sess.MarkScanPending()
	m.rescanSeq++
	persist := m.persistGroups()
	return tea.Batch(persist, scheduleRescan(m.rescanSeq))
}

func (m *appModel) persistGroups() tea.Cmd {
	if !m.sess.BeginOp(session.OpAnimate, time.Now()) {
		m.groupsDirty = true
		return nil
	}
	m.groupsDirty = false
	m.sess.SetSaveStatus(session.SaveStatusSaving)
	intent := host.Intent{
		Type:        host.IntentSaveGroups,
		SlideNumber: m.sess.CurrentNumber(),
		Groups:      m.mgr.Records(),
	}
	return m.sendIntent(intent, session.OpAnimate)
}

// sendIntent hands an intent to the bridge. A send failure clears the
// in-flight flag immediately instead of waiting for the safety timeout.
func (m *appModel) sendIntent(in host.Intent, op session.Op) tea.Cmd {
	if m.bridge == nil {
		m.sess.AckOp(op)
		return nil
	}
	if err := m.bridge.Send(in); err != nil {
		m.log.Warn("send failed", zap.String("intent", string(in.Type)), zap.Error(err))
		m.sess.AckOp(op)
		m.sess.SetSaveStatus(session.SaveStatusError)
		m.minibufferText = "host send failed: " + err.Error()
	}
	return nil
}

func (m *appModel) handleHostEvent(ev host.Event) tea.Cmd {
	switch ev.Type {
	case host.EventLaunchResult:
		return m.handleLaunchResult(ev)

	case host.EventSlideUpdated:
		if ev.Slide == nil {
			return nil
		}
		slides := m.sess.Slides()
		for i := range slides {
			if slides[i].ID == ev.Slide.ID {
				slides[i].Content = ev.Slide.Content
			}
		}
		m.sess.SetSlides(slides)
		if m.sess.Mode() == session.ModeGrouping {
			m.sess.MarkScanPending()
			m.rescanSeq++
			return scheduleRescan(m.rescanSeq)
		}
		return nil

	case host.EventSlideInserted:
		if ev.Slide != nil {
			m.sess.SetPendingNav(ev.Slide.Number)
		}
		return loadDeck(m.st)

	case host.EventManifestUpdated:
		return loadDeck(m.st)

	case host.EventRebuildProgress:
		if ev.Progress == nil {
			return nil
		}
		p := ev.Progress
		if p.Done {
			m.sess.Build.Complete(time.Now(), p.Current-p.Errors, p.Errors, p.Cancelled)
		} else {
			m.sess.Build.Progress(time.Now(), p.Current, p.Total, p.Current, build.StatusBuilding)
		}
		return nil

	case host.EventError:
		m.minibufferText = ev.Error
		return nil
	}
	return nil
}

func (m *appModel) handleLaunchResult(ev host.Event) tea.Cmd {
	switch ev.Op {
	case host.IntentSaveSlide:
		m.sess.AckOp(session.OpEdit)
		if ev.Success {
			m.sess.SetSaveStatus(session.SaveStatusSaved)
		} else {
			m.sess.SetSaveStatus(session.SaveStatusError)
			m.minibufferText = "save failed: " + ev.Error
		}
	case host.IntentSaveGroups:
		m.sess.AckOp(session.OpAnimate)
		if ev.Success {
			m.sess.SetSaveStatus(session.SaveStatusSaved)
		} else {
			m.sess.SetSaveStatus(session.SaveStatusError)
			m.minibufferText = "group save failed: " + ev.Error
		}
		if m.groupsDirty {
			return m.persistGroups()
		}
	case host.IntentInsertSlide:
		m.sess.AckOp(session.OpInsertSlide)
		if !ev.Success {
			m.minibufferText = "insert failed: " + ev.Error
		}
	case host.IntentReorder:
		if !ev.Success {
			// The local order stays; the deck on disk will catch up on the
			// next successful save.
			m.minibufferText = "reorder not saved: " + ev.Error
		}
	case host.IntentRebuild:
		if !ev.Success && m.sess.Build.Active {
			m.sess.Build.Complete(time.Now(), m.sess.Build.BuiltCount, 1, false)
		}
	}
	return nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.saveViewerState()
		m.quitting = true
		return m, tea.Quit
	}

	if m.modal != modalNone {
		return m.handleModalKey(msg)
	}

	switch m.sess.Mode() {
	case session.ModeTextEditing:
		return m.handleEditingKey(msg)
	case session.ModeGrouping:
		return m.handleGroupingKey(msg)
	default:
		return m.handlePresentationKey(msg)
	}
}

func (m appModel) handlePresentationKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		if m.sess.FullscreenState() == session.FullscreenNone {
			m.saveViewerState()
			m.quitting = true
			return m, tea.Quit
		}
		if off, ok := m.sess.ExitFullscreen(); ok {
			m.scroll = off
		}
		return m, nil

	case "right", "l", " ", "pgdown":
		m.gotoSlide(m.sess.CurrentIndex() + 1)
		return m, nil
	case "left", "h", "pgup":
		m.gotoSlide(m.sess.CurrentIndex() - 1)
		return m, nil
	case "home":
		m.gotoSlide(0)
		return m, nil
	case "end":
		m.gotoSlide(m.sess.SlideCount() - 1)
		return m, nil

	case "down", "j":
		m.scroll++
		return m, nil
	case "up", "k":
		if m.scroll > 0 {
			m.scroll--
		}
		return m, nil

	case "f":
		if m.sess.FullscreenState() == session.FullscreenView {
			if off, ok := m.sess.ExitFullscreen(); ok {
				m.scroll = off
			}
		} else {
			m.sess.EnterFullscreen(session.FullscreenView, m.scroll)
			m.scroll = 0
		}
		return m, nil

	case "e":
		m.enterTextEditing()
		return m, nil

	case "E":
		if m.enterTextEditing() {
			m.sess.EnterFullscreen(session.FullscreenEdit, m.scroll)
			m.resizeEditor()
		}
		return m, nil

	case "a":
		if m.sess.EnterGrouping() {
			m.scroll = 0
			m.sess.MarkScanPending()
			m.rescanSeq++
			return m, scheduleRescan(m.rescanSeq)
		}
		return m, nil

	case ":":
		m.modal = modalGoto
		m.gotoInput.SetValue("")
		m.gotoInput.Focus()
		return m, nil

	case "i":
		cmd := m.insertSlide()
		return m, cmd

	case "J":
		cmd := m.moveSlide(1)
		return m, cmd
	case "K":
		cmd := m.moveSlide(-1)
		return m, cmd

	case "b":
		cmd := m.startRebuild(build.KindAll, 0)
		return m, cmd
	case "r":
		cmd := m.startRebuild(build.KindResume, m.sess.CurrentNumber())
		return m, cmd
	case "o":
		cmd := m.startRebuild(build.KindOne, m.sess.CurrentNumber())
		return m, cmd

	case "x":
		m.sess.Build.Dismiss()
		m.minibufferText = ""
		return m, nil

	case "esc":
		if off, ok := m.sess.ExitFullscreen(); ok {
			m.scroll = off
		}
		m.minibufferText = ""
		return m, nil
	}
	return m, nil
}

func (m *appModel) gotoSlide(index int) {
	before := m.sess.CurrentIndex()
	m.sess.GoTo(index)
	if m.sess.CurrentIndex() != before {
		m.scroll = 0
		m.loadGroupsForCurrent()
	}
}

func (m *appModel) insertSlide() tea.Cmd {
	if !m.sess.BeginOp(session.OpInsertSlide, time.Now()) {
		m.minibufferText = "insert already in progress"
		return nil
	}
	intent := host.Intent{
		Type:        host.IntentInsertSlide,
		AfterNumber: m.sess.CurrentNumber(),
		Content:     "# New slide\n",
	}
	return m.sendIntent(intent, session.OpInsertSlide)
}

// moveSlide shifts the current slide by delta in the deck order. The move is
// applied locally first; the host persists it in the background.
func (m *appModel) moveSlide(delta int) tea.Cmd {
	slides := m.sess.Slides()
	i := m.sess.CurrentIndex()
	j := i + delta
	if i < 0 || j < 0 || i >= len(slides) || j >= len(slides) {
		return nil
	}
	slides[i], slides[j] = slides[j], slides[i]
	m.deckGroups[i+1], m.deckGroups[j+1] = m.deckGroups[j+1], m.deckGroups[i+1]
	for k := range slides {
		slides[k].Number = k + 1
	}
	m.sess.SetSlides(slides)
	m.loadGroupsForCurrent()

	order := make([]string, len(slides))
	for k, s := range slides {
		order[k] = s.ID
	}
	if m.bridge == nil {
		return nil
	}
	if err := m.bridge.Send(host.Intent{Type: host.IntentReorder, NewOrder: order}); err != nil {
		m.minibufferText = "reorder not saved: " + err.Error()
	}
	return nil
}

func (m *appModel) startRebuild(kind build.Kind, startSlide int) tea.Cmd {
	if m.sess.Build.Status == build.StatusBuilding {
		m.minibufferText = "build already running"
		return nil
	}
	id := uuid.NewString()
	m.sess.Build.Start(kind, m.sess.SlideCount(), startSlide, id)
	intent := host.Intent{
		Type: host.IntentRebuild,
		Build: &host.BuildRequest{
			Kind:       string(kind),
			StartSlide: startSlide,
			BuildID:    id,
			Format:     m.cfg.Export.Format,
		},
	}
	if m.bridge == nil {
		m.sess.Build.Complete(time.Now(), 0, 1, false)
		return nil
	}
	if err := m.bridge.Send(intent); err != nil {
		m.sess.Build.Complete(time.Now(), 0, 1, false)
		m.minibufferText = "rebuild failed: " + err.Error()
	}
	return nil
}

func (m appModel) handleEditingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if off, ok := m.sess.ExitFullscreen(); ok {
			m.scroll = off
		}
		m.sess.ExitTextEditing()
		m.textarea.Blur()
		return m, nil

	case "ctrl+s":
		cmd := m.saveSlide()
		return m, cmd
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m *appModel) saveSlide() tea.Cmd {
	if !m.sess.BeginOp(session.OpEdit, time.Now()) {
		m.minibufferText = "save already in progress"
		return nil
	}
	content := m.textarea.Value()

	// Optimistic: show the edited content immediately.
	slides := m.sess.Slides()
	for i := range slides {
		if slides[i].ID == m.editingSlideID {
			slides[i].Content = content
		}
	}
	m.sess.SetSlides(slides)
	m.sess.SetSaveStatus(session.SaveStatusSaving)

	intent := host.Intent{
		Type:    host.IntentSaveSlide,
		SlideID: m.editingSlideID,
		Content: content,
	}
	return m.sendIntent(intent, session.OpEdit)
}

func (m appModel) handleGroupingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		if len(m.sess.Selection()) > 0 {
			m.sess.ClearSelection()
			return m, nil
		}
		if m.sess.SelectedGroup() != "" {
			m.sess.SelectGroup("")
			return m, nil
		}
		m.sess.ExitGrouping()
		m.scroll = 0
		return m, nil

	case "down", "j":
		if m.sess.FocusedIndex() < len(m.elements)-1 {
			m.sess.SetFocusedIndex(m.sess.FocusedIndex() + 1)
		}
		return m, nil
	case "up", "k":
		if m.sess.FocusedIndex() > 0 {
			m.sess.SetFocusedIndex(m.sess.FocusedIndex() - 1)
		}
		return m, nil

	case " ", "enter":
		if i := m.sess.FocusedIndex(); i >= 0 && i < len(m.elements) {
			cmd := m.clickElement(m.elements[i])
			return m, cmd
		}
		return m, nil

	case "c":
		sel := m.sess.Selection()
		if len(sel) == 0 {
			m.minibufferText = "select elements first"
			return m, nil
		}
		g, err := m.mgr.Create(sel)
		if err != nil {
			m.minibufferText = err.Error()
			return m, nil
		}
		m.sess.ClearSelection()
		m.sess.SelectGroup(g.ID)
		cmd := m.groupsChanged()
		return m, cmd

	case "d":
		id := m.targetGroupID()
		if id == "" {
			return m, nil
		}
		m.pendingDeleteGroupID = id
		m.modal = modalConfirmDeleteGroup
		m.confirmFocus = confirmFocusCancel
		return m, nil

	case "tab":
		m.cycleSelectedGroup()
		return m, nil

	case "[":
		cmd := m.moveSelectedGroup(-1)
		return m, cmd
	case "]":
		cmd := m.moveSelectedGroup(1)
		return m, cmd

	case "right", "l":
		m.gotoSlide(m.sess.CurrentIndex() + 1)
		cmd := m.enterSlideGrouping()
		return m, cmd
	case "left", "h":
		m.gotoSlide(m.sess.CurrentIndex() - 1)
		cmd := m.enterSlideGrouping()
		return m, cmd
	}
	return m, nil
}

// enterSlideGrouping refreshes grouping state after slide navigation while
// the mode stays active.
func (m *appModel) enterSlideGrouping() tea.Cmd {
	m.sess.ClearSelection()
	m.sess.SelectGroup("")
	m.sess.SetFocusedIndex(0)
	m.sess.MarkScanPending()
	m.rescanSeq++
	return scheduleRescan(m.rescanSeq)
}

// targetGroupID resolves which group a group-level command applies to: the
// selected group when set, otherwise the focused element's group.
func (m *appModel) targetGroupID() string {
	if id := m.sess.SelectedGroup(); id != "" {
		return id
	}
	if i := m.sess.FocusedIndex(); i >= 0 && i < len(m.elements) {
		if id, ok := m.mgr.GroupOf(m.elements[i].ID); ok {
			return id
		}
	}
	return ""
}

func (m *appModel) cycleSelectedGroup() {
	gs := m.mgr.Groups()
	if len(gs) == 0 {
		return
	}
	cur := m.sess.SelectedGroup()
	if cur == "" {
		m.sess.SelectGroup(gs[0].ID)
		return
	}
	for i, g := range gs {
		if g.ID == cur {
			if i+1 < len(gs) {
				m.sess.SelectGroup(gs[i+1].ID)
			} else {
				m.sess.SelectGroup("")
			}
			return
		}
	}
	m.sess.SelectGroup("")
}

func (m *appModel) moveSelectedGroup(delta int) tea.Cmd {
	id := m.sess.SelectedGroup()
	if id == "" {
		return nil
	}
	gs := m.mgr.Groups()
	for i, g := range gs {
		if g.ID == id {
			m.mgr.Move(i, i+delta)
			return m.groupsChanged()
		}
	}
	return nil
}

func (m *appModel) clickElement(el model.SelectableElement) tea.Cmd {
	elGroup, _ := m.mgr.GroupOf(el.ID)
	switch groups.RouteClick(m.sess.SelectedGroup(), elGroup) {
	case groups.ActionToggleSelect:
		m.sess.ToggleSelect(el.ID)
		return nil
	case groups.ActionAdd:
		if m.mgr.AddElement(m.sess.SelectedGroup(), el.ID) {
			return m.groupsChanged()
		}
		return nil
	case groups.ActionRemove:
		if m.mgr.RemoveElement(elGroup, el.ID) {
			return m.groupsChanged()
		}
		return nil
	case groups.ActionRequestMove:
		// Nothing moves until the user confirms.
		m.pendingMoveElementID = el.ID
		m.pendingMoveFromID = elGroup
		m.pendingMoveToID = m.sess.SelectedGroup()
		m.modal = modalConfirmMoveElement
		m.confirmFocus = confirmFocusCancel
		return nil
	}
	return nil
}

func (m appModel) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalGoto:
		switch msg.String() {
		case "esc", "ctrl+g":
			m.modal = modalNone
			m.gotoInput.Blur()
			return m, nil
		case "enter":
			m.modal = modalNone
			m.gotoInput.Blur()
			if n, err := strconv.Atoi(strings.TrimSpace(m.gotoInput.Value())); err == nil {
				m.gotoSlide(n - 1)
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.gotoInput, cmd = m.gotoInput.Update(msg)
		return m, cmd

	case modalConfirmDeleteGroup, modalConfirmMoveElement:
		switch msg.String() {
		case "esc", "ctrl+g":
			m.clearConfirm()
			return m, nil
		case "tab", "left", "right":
			if m.confirmFocus == confirmFocusConfirm {
				m.confirmFocus = confirmFocusCancel
			} else {
				m.confirmFocus = confirmFocusConfirm
			}
			return m, nil
		case "enter":
			if m.confirmFocus == confirmFocusCancel {
				m.clearConfirm()
				return m, nil
			}
			return m.applyConfirm()
		}
	}
	return m, nil
}

func (m *appModel) clearConfirm() {
	m.modal = modalNone
	m.pendingDeleteGroupID = ""
	m.pendingMoveElementID = ""
	m.pendingMoveFromID = ""
	m.pendingMoveToID = ""
}

func (m appModel) applyConfirm() (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.modal {
	case modalConfirmDeleteGroup:
		if m.mgr.Delete(m.pendingDeleteGroupID) {
			if m.sess.SelectedGroup() == m.pendingDeleteGroupID {
				m.sess.SelectGroup("")
			}
			cmd = m.groupsChanged()
		}
	case modalConfirmMoveElement:
		if m.mgr.MoveElement(m.pendingMoveElementID, m.pendingMoveFromID, m.pendingMoveToID) {
			cmd = m.groupsChanged()
		}
	}
	m.clearConfirm()
	return m, cmd
}

func (m appModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.sess.Mode() != session.ModeGrouping || m.modal != modalNone {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelDown:
		if m.sess.FocusedIndex() < len(m.elements)-1 {
			m.sess.SetFocusedIndex(m.sess.FocusedIndex() + 1)
		}
		return m, nil
	case tea.MouseButtonWheelUp:
		if m.sess.FocusedIndex() > 0 {
			m.sess.SetFocusedIndex(m.sess.FocusedIndex() - 1)
		}
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.mouseDown = true
			m.mouseDownX = msg.X
			m.mouseDownY = msg.Y
			m.dragging = false
			m.dragGroupID = ""
			if id, ok := m.groupAt(msg.X, msg.Y); ok {
				m.dragGroupID = id
			}
		}
		return m, nil

	case tea.MouseActionMotion:
		if !m.mouseDown || m.dragging {
			return m, nil
		}
		dx := abs(msg.X - m.mouseDownX)
		dy := abs(msg.Y - m.mouseDownY)
		if dx >= dragThreshold || dy >= dragThreshold {
			m.dragging = true
		}
		return m, nil

	case tea.MouseActionRelease:
		wasClick := m.mouseDown && !m.dragging
		wasDrag := m.mouseDown && m.dragging
		m.mouseDown = false
		m.dragging = false
		if wasDrag && m.dragGroupID != "" {
			src := m.dragGroupID
			m.dragGroupID = ""
			if target, ok := m.groupAt(msg.X, msg.Y); ok && target != src {
				cmd := m.dragReorderGroup(src, target)
				return m, cmd
			}
			return m, nil
		}
		m.dragGroupID = ""
		if !wasClick {
			return m, nil
		}
		if el, i, ok := m.elementAt(msg.X, msg.Y); ok {
			m.sess.SetFocusedIndex(i)
			cmd := m.clickElement(el)
			return m, cmd
		}
		if id, ok := m.groupAt(msg.X, msg.Y); ok {
			if m.sess.SelectedGroup() == id {
				m.sess.SelectGroup("")
			} else {
				m.sess.SelectGroup(id)
			}
		}
		return m, nil
	}
	return m, nil
}

// dragReorderGroup drops the dragged group onto the target row's position.
func (m *appModel) dragReorderGroup(srcID, targetID string) tea.Cmd {
	gs := m.mgr.Groups()
	from, to := -1, -1
	for i, g := range gs {
		switch g.ID {
		case srcID:
			from = i
		case targetID:
			to = i
		}
	}
	if from < 0 || to < 0 {
		return nil
	}
	m.mgr.Move(from, to)
	return m.groupsChanged()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
