package tui

import (
	"go.uber.org/zap"

	"deckview-cli/internal/config"
	"deckview-cli/internal/host"

	tea "github.com/charmbracelet/bubbletea"
)

func Run(dir string, cfg config.Config, bridge host.Bridge, log *zap.Logger) error {
	applyColorProfilePreference(cfg.Theme)
	m := newAppModel(dir, cfg, bridge, log)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
