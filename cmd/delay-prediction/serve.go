package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ibis-project/kedro-ibis-tutorial/internal/api/rest"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/project"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/storage"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API for triggering and inspecting pipeline runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			session, err := project.NewSession(a.cfg, a.logger)
			if err != nil {
				return err
			}
			runs := project.NewRunService(session, storage.NewInMemoryRunStore(), a.logger)
			defer runs.Close()

			server := rest.NewServer(a.cfg.Server, runs, a.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("Starting API server", "addr", a.cfg.Server.Addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			a.logger.Info("Shutting down API server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return err
			}

			a.logger.Info("API server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
