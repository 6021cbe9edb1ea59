package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/luozhiheng/mingde-site/internal/api"
	"github.com/luozhiheng/mingde-site/internal/buildinfo"
	"github.com/luozhiheng/mingde-site/internal/config"
	"github.com/luozhiheng/mingde-site/internal/consultant"
	"github.com/luozhiheng/mingde-site/internal/content"
	"github.com/luozhiheng/mingde-site/internal/conversation"
	"github.com/luozhiheng/mingde-site/internal/logging"
	"github.com/luozhiheng/mingde-site/internal/middleware"
	"github.com/luozhiheng/mingde-site/internal/prompts"
	"github.com/luozhiheng/mingde-site/internal/provider"
	"github.com/luozhiheng/mingde-site/internal/relay"
	"github.com/luozhiheng/mingde-site/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogJSON)
	logger.Info("build", "version", buildinfo.Version, "commit", buildinfo.Commit, "built_at", buildinfo.BuiltAt)
	if cfg.AI.APIKey == "" {
		logger.Warn("no AI provider credential configured; consultant replies will fail upstream")
	}

	registry, err := prompts.New()
	if err != nil {
		logger.Error("prompt registry", "err", err)
		os.Exit(1)
	}

	lib, err := content.Load(cfg.ContentDir)
	if err != nil {
		logger.Error("content load", "err", err)
		os.Exit(1)
	}

	store := conversation.NewMemoryStore()

	pc := provider.NewClient(cfg.AI.BaseURL, cfg.AI.APIKey, logger)
	rl := relay.NewHandler(logger, pc, cfg.AI.Model, registry.Resolve(cfg.AI.DefaultPromptKey))
	svc := consultant.NewService(cfg.AI.RelayURL, cfg.AI.Model)

	uih, err := ui.New(logger, svc, registry, store, lib, cfg.TemplateDir)
	if err != nil {
		logger.Error("ui init", "err", err)
		os.Exit(1)
	}

	h := api.NewHandlers(logger, rl, registry)
	h.Admin = api.NewAdmin(store)

	mux := chi.NewRouter()
	mux.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))

	ui.RegisterRoutes(mux, uih)
	api.RegisterRoutes(mux, h)

	var handler http.Handler = mux
	handler = middleware.AdminGate()(handler)
	handler = middleware.Recoverer(logger)(handler)
	handler = middleware.RequestID()(handler)
	handler = middleware.AccessLog(logger)(handler)
	handler = middleware.VersionHeader()(handler)

	server := http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Addr),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      3 * time.Minute, // consultant turns can take a while upstream
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("listening", "port", cfg.Addr, "provider", cfg.AI.BaseURL, "model", cfg.AI.Model)

	errChan := make(chan error, 1)
	go func() { errChan <- server.ListenAndServe() }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	case sig := <-sigChan:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	} else {
		logger.Info("server stopped")
	}
}
