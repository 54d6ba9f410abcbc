package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"deckview-cli/internal/config"
	"deckview-cli/internal/host"
	"deckview-cli/internal/store"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Own a deck and accept remote viewers over websocket",
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

			if addr == "" {
				addr = cfg.Serve.Addr
			}

			h := host.NewHandler(st, log)
			h.ExportDir = exportDir(cfg, st)
			srv := host.NewServer(h, log)
			srv.StaticDir = h.ExportDir

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Info("serving deck", zap.String("dir", dir), zap.String("addr", addr))
			cmd.Printf("serving %s on ws://%s/ws\n", dir, addr)
			err = srv.ListenAndServe(ctx, addr)
			if err == context.Canceled {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from deck.yaml, 127.0.0.1:4321)")
	return cmd
}
