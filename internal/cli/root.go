package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"deckview-cli/internal/config"
	"deckview-cli/internal/host"
	"deckview-cli/internal/store"
	"deckview-cli/internal/tui"
)

type App struct {
	Dir     string
	Connect string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "deckview [dir]",
		Short:        "Markdown slide deck viewer + editor",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		Example: strings.TrimSpace(`
  # Open the deck in the current directory
  deckview

  # Open a specific deck
  deckview talks/gophercon

  # Attach to a deck served elsewhere
  deckview --connect ws://127.0.0.1:4321/ws
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				app.Dir = args[0]
			}
			return runViewer(app)
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("DECKVIEW_DIR", ""), "Deck directory (default: current directory)")
	cmd.Flags().StringVar(&app.Connect, "connect", "", "Attach to a running deckview serve instance (ws:// URL)")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newExportCmd(app))

	return cmd
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func resolveDir(app *App) (string, error) {
	dir := strings.TrimSpace(app.Dir)
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("deck directory: %w", err)
	}
	if !info.IsDir() {
		return "", errors.New("deck path is not a directory")
	}
	return abs, nil
}

func runViewer(app *App) error {
	dir, err := resolveDir(app)
	if err != nil {
		return err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	log, cleanup, err := cfg.BuildLogger(dir)
	if err != nil {
		return err
	}
	defer cleanup()

	st := store.Store{Dir: dir}
	if err := st.Ensure(); err != nil {
		return err
	}

	var bridge host.Bridge
	if app.Connect != "" {
		c, err := host.Dial(context.Background(), app.Connect, log)
		if err != nil {
			return fmt.Errorf("connect to host: %w", err)
		}
		bridge = c
	} else {
		h := host.NewHandler(st, log)
		h.ExportDir = exportDir(cfg, st)
		bridge = host.NewLocal(h, log)
	}
	defer bridge.Close()

	log.Info("viewer starting", zap.String("dir", dir))
	return tui.Run(dir, cfg, bridge, log)
}

func exportDir(cfg config.Config, st store.Store) string {
	if cfg.Export.Dir != "" {
		return cfg.Export.Dir
	}
	return st.DefaultExportDir()
}
