package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"

	"ha-image-scene/internal/api"
	"ha-image-scene/internal/config"
	"ha-image-scene/internal/imageload"
	"ha-image-scene/internal/sampling"
	"ha-image-scene/internal/storage"
	"ha-image-scene/internal/ws"
)

func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "scene-sampler",
		Level:  hclog.Info,
		Output: os.Stderr,
	})

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	if lvl := hclog.LevelFromString(cfg.LogLevel); lvl != hclog.NoLevel {
		logger.SetLevel(lvl)
	}

	tokens, err := storage.NewTokenStore(cfg.TokenCachePath)
	if err != nil {
		logger.Error("init token store", "error", err)
		os.Exit(1)
	}
	if err := tokens.Seed(cfg.HABaseURL, cfg.HAToken); err != nil {
		logger.Error("seed token store", "error", err)
		os.Exit(1)
	}

	presets, err := imageload.NewCatalog(cfg.PresetsPath)
	if err != nil {
		logger.Error("load presets", "path", cfg.PresetsPath, "error", err)
		os.Exit(1)
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := ws.NewHub(logger.Named("ws"))
	go hub.Run(hubCtx)

	session := sampling.NewSession(sampling.Options{
		MinDistance: cfg.MinDistance,
		EdgePadding: cfg.EdgePadding,
	})

	router := api.NewRouter(cfg, tokens, hub, imageload.NewLoader(cfg.MaxImageDimension), presets, session, logger.Named("api"))
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.ListenAddr, "presets", len(presets.List()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("shutdown error", "error", err)
	}
	stopHub()
}
