package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jonwraymond/sitesearch/config"
	"github.com/jonwraymond/sitesearch/content"
	"github.com/jonwraymond/sitesearch/logging"
	"github.com/jonwraymond/sitesearch/search"
	"github.com/jonwraymond/sitesearch/server"
)

// app wires the configured components together.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	engine   *search.Engine
	source   *content.Source
}

func newApp(cfg config.Config, logOut io.Writer) *app {
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, logOut)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	loader := content.NewFSLoader(cfg.ContentDir, logger)
	loader.Extensions = cfg.Extensions

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		engine: search.NewEngine(search.Options{
			Weights:      cfg.Weights,
			CacheSize:    cfg.EngineCacheSize(),
			DefaultLimit: cfg.DefaultLimit,
			Logger:       logger,
			Registerer:   registry,
		}),
		source: content.NewSource(loader, logger),
	}
}

// build runs the initial index build. A failure is logged and the engine
// stays empty; queries answer with no results until a rebuild succeeds.
func (a *app) build(ctx context.Context) {
	if _, err := a.engine.Rebuild(ctx, a.source); err != nil {
		a.logger.Error("initial index build failed", slog.String("error", err.Error()))
	}
}

// watch rebuilds the index after content changes until ctx is done.
func (a *app) watch(ctx context.Context) error {
	w := content.NewWatcher(a.cfg.ContentDir, a.cfg.Debounce, a.logger)
	return w.Run(ctx, func(ctx context.Context) {
		if _, err := a.engine.Rebuild(ctx, a.source); err != nil {
			a.logger.Error("rebuild after content change failed", slog.String("error", err.Error()))
		}
	})
}

func (a *app) server() (*server.Server, error) {
	return server.New(server.Config{
		Engine:     a.engine,
		Source:     a.source,
		ServerInfo: server.ServerInfo{Name: "sitesearch", Version: version},
		Logger:     a.logger,
	})
}

func bindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}
