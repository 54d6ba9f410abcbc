package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"deckview-cli/internal/build"
	"deckview-cli/internal/model"
	"deckview-cli/internal/session"
)

const (
	headerLines   = 2
	footerLines   = 2
	maxContentW   = 96
	groupPanelW   = 30
	splitGapW     = 2
	groupingHelp  = "space: select   c: group   d: delete   tab: cycle group   [/]: reorder   esc: back"
	presentHelp   = "←/→: slides   e: edit   a: animate   f: fullscreen   b: rebuild   i: insert   q: quit"
	editingHelp   = "ctrl+s: save   esc: back"
	fullscreenOff = "esc: exit fullscreen"
)

func (m appModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.seenWindowSize || m.width <= 0 || m.height <= 0 {
		return "loading…"
	}

	var body string
	switch {
	case m.sess.Mode() == session.ModeTextEditing:
		body = m.viewEditing()
	case m.sess.Mode() == session.ModeGrouping:
		body = m.viewGrouping()
	case m.sess.FullscreenState() == session.FullscreenView:
		return m.viewFullscreenSlide()
	default:
		body = m.viewPresentation()
	}

	out := lipgloss.JoinVertical(lipgloss.Left, m.viewHeader(), body, m.viewFooter())
	if m.modal != modalNone {
		return m.overlayModal()
	}
	return out
}

func (m appModel) viewHeader() string {
	title := m.deckTitle
	if title == "" {
		title = m.dir
	}
	parts := []string{
		styleHeader().Render(title),
		m.slideLabel(),
		"mode: " + m.sess.Mode().String(),
	}
	if m.sess.FullscreenState() != session.FullscreenNone {
		parts = append(parts, "fullscreen: "+m.sess.FullscreenState().String())
	}
	parts = append(parts, m.saveLabel())
	line := strings.Join(parts, styleMuted().Render("  •  "))
	return normalizePane(line+"\n", m.width, headerLines)
}

func (m appModel) saveLabel() string {
	switch m.sess.SaveStatus() {
	case session.SaveStatusSaving:
		return lipgloss.NewStyle().Foreground(colorWarn).Render("saving…")
	case session.SaveStatusError:
		return lipgloss.NewStyle().Foreground(colorError).Render("save failed")
	}
	return styleMuted().Render("saved")
}

func (m appModel) bodyHeight() int {
	h := m.height - headerLines - footerLines
	if h < 1 {
		h = 1
	}
	return h
}

func (m appModel) contentWidth() int {
	w := m.width - 4
	if w > maxContentW {
		w = maxContentW
	}
	if w < 10 {
		w = 10
	}
	return w
}

func (m appModel) viewPresentation() string {
	slide, ok := m.sess.CurrentSlide()
	if !ok {
		return normalizePane(styleMuted().Render("empty deck — add markdown files to get started"), m.width, m.bodyHeight())
	}
	rendered := renderMarkdown(slide.Content, m.contentWidth())
	return normalizePane(scrollLines(rendered, m.scroll), m.width, m.bodyHeight())
}

func (m appModel) viewFullscreenSlide() string {
	slide, ok := m.sess.CurrentSlide()
	if !ok {
		return normalizePane("", m.width, m.height)
	}
	w := m.width - 2
	if w > maxContentW {
		w = maxContentW
	}
	rendered := renderMarkdown(slide.Content, w)
	body := normalizePane(scrollLines(rendered, m.scroll), m.width, m.height-1)
	help := styleMuted().Render(fullscreenOff)
	return lipgloss.JoinVertical(lipgloss.Left, body, help)
}

func (m appModel) viewEditing() string {
	return normalizePane(m.textarea.View(), m.width, m.bodyHeight())
}

func (m appModel) viewGrouping() string {
	leftW := m.width - groupPanelW - splitGapW
	if leftW < 20 {
		leftW = 20
	}
	h := m.bodyHeight()

	left := normalizePane(m.renderElementList(leftW, h), leftW, h)
	right := normalizePane(m.renderGroupPanel(groupPanelW), groupPanelW, h)
	gap := normalizePane("", splitGapW, h)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, gap, right)
}

// elementListOffset keeps the focused element visible; it is shared with the
// mouse hit test so clicks land on what is drawn.
func (m appModel) elementListOffset(visible int) int {
	if visible <= 0 {
		return 0
	}
	focus := m.sess.FocusedIndex()
	if focus < visible {
		return 0
	}
	return focus - visible + 1
}

func (m appModel) renderElementList(width, height int) string {
	if m.sess.ScanPending() && len(m.elements) == 0 {
		return styleMuted().Render("scanning…")
	}
	if len(m.elements) == 0 {
		return styleMuted().Render("no selectable elements on this slide")
	}

	off := m.elementListOffset(height)
	var b strings.Builder
	for i := off; i < len(m.elements) && i-off < height; i++ {
		el := m.elements[i]
		line := m.renderElementRow(el, i == m.sess.FocusedIndex(), width)
		b.WriteString(line)
		if i < len(m.elements)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m appModel) renderElementRow(el model.SelectableElement, focused bool, width int) string {
	marker := "  "
	if focused {
		marker = "> "
	}

	check := "[ ] "
	if m.sess.IsSelected(el.ID) {
		check = "[x] "
	}

	badge := "  "
	if el.GroupID != nil {
		if g, ok := m.mgr.Find(*el.GroupID); ok {
			badge = lipgloss.NewStyle().Foreground(groupColor(g.ColorIndex)).Render("●") + strconv.Itoa(g.Order)
		}
	}

	label := el.Tag + "  " + el.Label
	row := marker + check + badge + " " + label
	st := lipgloss.NewStyle()
	if focused {
		st = st.Foreground(colorSelectedFg).Background(colorSelectedBg)
	}
	return st.Render(normalizePane(row, width, 1))
}

func (m appModel) renderGroupPanel(width int) string {
	var b strings.Builder
	b.WriteString(styleHeader().Render("Groups"))
	b.WriteString("\n")

	gs := m.mgr.Groups()
	if len(gs) == 0 {
		b.WriteString(styleMuted().Render("none — select elements, press c"))
		return b.String()
	}
	for _, g := range gs {
		dot := lipgloss.NewStyle().Foreground(groupColor(g.ColorIndex)).Render("●")
		line := dot + " " + strconv.Itoa(g.Order) + ". " + g.ID + " (" + strconv.Itoa(len(g.ElementIDs)) + ")"
		if g.ID == m.sess.SelectedGroup() {
			line = lipgloss.NewStyle().
				Foreground(colorSelectedFg).
				Background(colorSelectedBg).
				Render(normalizePane(line, width, 1))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m appModel) viewFooter() string {
	first := m.buildBanner()
	if first == "" {
		first = styleMuted().Render(m.helpLine())
	}
	second := ""
	if m.minibufferText != "" {
		second = lipgloss.NewStyle().Foreground(colorWarn).Render(m.minibufferText)
	}
	return normalizePane(first+"\n"+second, m.width, footerLines)
}

func (m appModel) helpLine() string {
	switch m.sess.Mode() {
	case session.ModeTextEditing:
		return editingHelp
	case session.ModeGrouping:
		return groupingHelp
	}
	return presentHelp
}

func (m appModel) buildBanner() string {
	t := m.sess.Build
	switch t.Status {
	case build.StatusBuilding:
		return lipgloss.NewStyle().Foreground(colorAccent).
			Render("building " + strconv.Itoa(t.CurrentSlide) + "/" + strconv.Itoa(t.TotalSlides) + "…")
	case build.StatusComplete:
		return lipgloss.NewStyle().Foreground(colorSuccess).
			Render("build complete (" + strconv.Itoa(t.BuiltCount) + " slides)")
	case build.StatusError:
		return lipgloss.NewStyle().Foreground(colorError).
			Render("build failed — x to dismiss")
	case build.StatusCancelled:
		return lipgloss.NewStyle().Foreground(colorWarn).
			Render("build cancelled — x to dismiss")
	}
	return ""
}

func (m appModel) overlayModal() string {
	var box string
	switch m.modal {
	case modalGoto:
		box = renderModalBox(m.width, "Go to slide", m.gotoInput.View()+"\n\nenter: go   esc/ctrl+g: cancel")
	case modalConfirmDeleteGroup:
		g, _ := m.mgr.Find(m.pendingDeleteGroupID)
		body := "Delete " + m.pendingDeleteGroupID + " (" + strconv.Itoa(len(g.ElementIDs)) + " elements)?\nLater groups renumber to stay contiguous."
		box = renderConfirmModal(m.width, "Delete group", body, "Delete", "Cancel", m.confirmFocus)
	case modalConfirmMoveElement:
		body := "Move element from " + m.pendingMoveFromID + " to " + m.pendingMoveToID + "?"
		box = renderConfirmModal(m.width, "Move element", body, "Move", "Cancel", m.confirmFocus)
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// elementAt maps a terminal coordinate to an element row in the grouping
// view. Returns the element, its index and whether the hit landed.
func (m appModel) elementAt(x, y int) (model.SelectableElement, int, bool) {
	leftW := m.width - groupPanelW - splitGapW
	if leftW < 20 {
		leftW = 20
	}
	if x >= leftW {
		return model.SelectableElement{}, 0, false
	}
	row := y - headerLines
	if row < 0 {
		return model.SelectableElement{}, 0, false
	}
	i := row + m.elementListOffset(m.bodyHeight())
	if i >= len(m.elements) {
		return model.SelectableElement{}, 0, false
	}
	return m.elements[i], i, true
}

// groupAt maps a terminal coordinate to a group row in the side panel.
func (m appModel) groupAt(x, y int) (string, bool) {
	leftW := m.width - groupPanelW - splitGapW
	if leftW < 20 {
		leftW = 20
	}
	if x < leftW+splitGapW {
		return "", false
	}
	// First panel row is the "Groups" title.
	row := y - headerLines - 1
	gs := m.mgr.Groups()
	if row < 0 || row >= len(gs) {
		return "", false
	}
	return gs[row].ID, true
}

func scrollLines(s string, off int) string {
	if off <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if off >= len(lines) {
		return ""
	}
	return strings.Join(lines[off:], "\n")
}
