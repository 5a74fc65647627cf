package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/sitesearch/config"
	"github.com/jonwraymond/sitesearch/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search API over HTTP",
	Long: `Serve builds the index from the content directory and serves:

  GET  /api/search?q=&limit=&type=&scores=
  GET  /api/stats
  POST /api/reindex
  GET  /healthz
  GET  /metrics
  POST /mcp, /mcp/sse

With --watch (the default) the index is rebuilt whenever content changes.`,
	RunE: runServe,
}

func init() {
	d := config.Defaults()

	serveCmd.Flags().String("addr", d.Addr, "listen address")
	serveCmd.Flags().Bool("watch", d.Watch, "rebuild the index when content changes")
	serveCmd.Flags().Duration("debounce", d.Debounce, "quiet period before a content change triggers a rebuild")

	bindFlag(config.KeyAddr, serveCmd.Flags().Lookup("addr"))
	bindFlag(config.KeyWatch, serveCmd.Flags().Lookup("watch"))
	bindFlag(config.KeyDebounce, serveCmd.Flags().Lookup("debounce"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg, os.Stderr)
	a.build(ctx)

	srv, err := a.server()
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Addr: cfg.Addr,
		Handler: server.NewHTTPHandler(srv, server.HTTPOptions{
			Gatherer:      a.registry,
			EnableReindex: true,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("listening", slog.String("addr", cfg.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	if cfg.Watch {
		g.Go(func() error {
			if err := a.watch(gctx); err != nil {
				a.logger.Warn("content watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	err = g.Wait()
	a.logger.Info("shut down")
	return err
}
