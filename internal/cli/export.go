package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"deckview-cli/internal/config"
	"deckview-cli/internal/export"
	"deckview-cli/internal/store"
)

func newExportCmd(app *App) *cobra.Command {
	var (
		outDir string
		format string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the deck to static files",
		RunE: func(cmd *cobra.Command, args []string) error {
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
			deck, err := st.LoadDeck(cmd.Context())
			if err != nil {
				return err
			}

			if outDir == "" {
				outDir = exportDir(cfg, st)
			}
			if format == "" {
				format = cfg.Export.Format
			}

			exp := export.New(log)
			err = exp.Deck(context.Background(), deck, export.Options{OutDir: outDir, Format: format},
				func(p export.Progress) {
					cmd.Printf("\rslide %d/%d (%s)", p.Current, p.Total, p.Format)
				})
			cmd.Println()
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			cmd.Printf("exported %d slides to %s\n", len(deck.Slides), outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default from deck.yaml)")
	cmd.Flags().StringVar(&format, "format", "", "Output format: html or text (default from deck.yaml)")
	return cmd
}
