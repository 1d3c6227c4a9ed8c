package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/agentguard/observe"
)

func newServeCmd(u *ui, g *globals) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve health endpoints and the guarded API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := g.load(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			cfg := a.Config().Server
			if addr != "" {
				cfg.Addr = addr
			}

			srv := &http.Server{
				Addr:         cfg.Addr,
				Handler:      a.Router(),
				ReadTimeout:  cfg.ReadTimeout,
				WriteTimeout: cfg.WriteTimeout,
			}
			errCh := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()
			fmt.Fprintln(cmd.ErrOrStderr(), u.title("agentguard"), "listening on", u.info(cfg.Addr))
			a.Logger().Info(ctx, "http server started", observe.F("addr", cfg.Addr))

			var serveErr error
			select {
			case <-ctx.Done():
			case serveErr = <-errCh:
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			a.Logger().Info(shutdownCtx, "shutting down")
			return errors.Join(serveErr, srv.Shutdown(shutdownCtx), a.Close(shutdownCtx))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
