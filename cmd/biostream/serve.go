package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bigyambat/BioStream/server"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var addr string
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := g.setup()
			if err != nil {
				return err
			}
			defer log.Sync()
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			if store == nil {
				log.Warn("persistence disabled")
			} else if migrate {
				if err := store.CreateSchema(ctx); err != nil {
					return fmt.Errorf("create schema: %w", err)
				}
			}

			metrics := server.NewMetrics()
			events := server.NewEvents(cfg.Server.EventBuffer, log.Named("events"), metrics)
			opts := []server.HubOption{
				server.WithEditorOptions(cfg.EditorOptions()...),
				server.WithAuthor(cfg.Editor.Author),
				server.WithEvents(events),
				server.WithMetrics(metrics),
				server.WithLogger(log),
			}
			if store != nil {
				opts = append(opts, server.WithStore(store))
			}
			hub := server.NewHub(opts...)
			srv := server.New(hub, metrics, log.Named("http"))

			var saver *server.Autosaver
			if cfg.Autosave.Schedule != "" && store != nil {
				saver, err = server.NewAutosaver(hub, cfg.Autosave.Schedule, log.Named("autosave"))
				if err != nil {
					return err
				}
				saver.Start()
			}

			errc := make(chan error, 1)
			go func() {
				log.Info("listening",
					zap.String("addr", cfg.Server.Addr),
					zap.String("driver", cfg.Database.Driver))
				errc <- srv.Listen(cfg.Server.Addr)
			}()

			select {
			case err := <-errc:
				if saver != nil {
					saver.Stop()
				}
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			if saver != nil {
				saver.Stop()
			}
			sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			// Shutdown drains HTTP before the final save of open projects.
			if err := srv.Shutdown(sctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides the config")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "create the schema before serving")
	return cmd
}
