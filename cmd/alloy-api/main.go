// Package main implements the alloy suggestion API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Enwin-A/Alloy-App/alloy"
	"github.com/Enwin-A/Alloy-App/gp"
	"github.com/Enwin-A/Alloy-App/internal/mid"
	"github.com/Enwin-A/Alloy-App/internal/modelstore"
)

type serverConfig struct {
	Port        string
	ConfigPath  string
	CORSOrigins []string
}

func loadServerConfig() serverConfig {
	return serverConfig{
		Port:        envOr("PORT", "5000"),
		ConfigPath:  envOr("ALLOY_CONFIG", "config.json"),
		CORSOrigins: strings.Split(envOr("CORS_ORIGINS", "*"), ","),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(loadServerConfig(), logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(srvCfg serverConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := alloy.LoadConfig(srvCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store := modelstore.New(bundleLoader(cfg.Model, logger))
	srv := &server{
		store:    store,
		datasets: datasetResolver(cfg.Data.Paths, logger),
		search:   cfg.Search,
		logger:   logger,
	}

	handler := mid.Chain(srv.routes(),
		mid.Recover(logger),
		mid.Logger(logger),
		mid.CORS(srvCfg.CORSOrigins...),
		mid.OTel("alloy-api"),
	)

	httpSrv := &http.Server{
		Addr:         ":" + srvCfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", srvCfg.Port)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutCtx)
}

// bundleLoader resolves model bundles for the store: it makes sure the
// ONNX artifact is on disk (downloading it on first use) and opens an
// inference session. One session is shared per cache key.
func bundleLoader(cfg alloy.ModelConfig, logger *slog.Logger) modelstore.Loader {
	return func(ctx context.Context, key string) (*alloy.Bundle, error) {
		if err := modelstore.EnsureModel(ctx, cfg.ModelURL, cfg.ModelPath); err != nil {
			return nil, err
		}
		regressor, err := gp.NewRegressor(gp.Config{
			OrtDLL:     cfg.OrtDLL,
			ModelPath:  cfg.ModelPath,
			ScalerPath: cfg.ScalerPath,
			InputName:  cfg.InputName,
			OutputName: cfg.OutputName,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("model loaded", "key", key, "path", cfg.ModelPath)
		return alloy.NewBundle(regressor, alloy.DefaultSchema())
	}
}

// datasetResolver tries the configured dataset locations in priority
// order and loads the first one that exists. A missing or unreadable
// dataset is logged and treated as absent.
func datasetResolver(paths []string, logger *slog.Logger) func(target string) alloy.Dataset {
	return func(target string) alloy.Dataset {
		path, ok := alloy.FindDataset(paths, target)
		if !ok {
			return nil
		}
		ds, err := alloy.LoadCSVDataset(path)
		if err != nil {
			logger.Warn("historical dataset unreadable", "path", path, "err", err)
			return nil
		}
		return ds
	}
}
