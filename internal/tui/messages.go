package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"deckview-cli/internal/host"
	"deckview-cli/internal/model"
	"deckview-cli/internal/store"
)

const (
	tickInterval = 250 * time.Millisecond
	// Element rescans after a content or membership change are debounced so a
	// burst of mutations triggers one scan.
	rescanDebounce = 50 * time.Millisecond
	// A drag of fewer cells than this still counts as a click.
	dragThreshold = 3
)

type tickMsg time.Time

type rescanMsg struct{ seq int }

type hostEventMsg host.Event

type bridgeClosedMsg struct{}

type deckLoadedMsg struct {
	deck *model.Deck
	err  error
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func scheduleRescan(seq int) tea.Cmd {
	return tea.Tick(rescanDebounce, func(time.Time) tea.Msg { return rescanMsg{seq: seq} })
}

func waitForHostEvent(b host.Bridge) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-b.Events()
		if !ok {
			return bridgeClosedMsg{}
		}
		return hostEventMsg(ev)
	}
}

func loadDeck(st store.Store) tea.Cmd {
	return func() tea.Msg {
		deck, err := st.LoadDeck(context.Background())
		return deckLoadedMsg{deck: deck, err: err}
	}
}
