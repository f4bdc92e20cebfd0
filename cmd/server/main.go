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

	"ai-inclusion-checker/internal/api"
	"ai-inclusion-checker/internal/classifier"
	"ai-inclusion-checker/internal/config"
	"ai-inclusion-checker/internal/coverage"
	"ai-inclusion-checker/internal/crawler"
	"ai-inclusion-checker/internal/observability"
	"ai-inclusion-checker/internal/scan"
	"ai-inclusion-checker/internal/store"
	"ai-inclusion-checker/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	l := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		if metrics, err = observability.New("ai-inclusion-checker"); err != nil {
			l.Error("metrics init failed", map[string]interface{}{"error": err})
			os.Exit(1)
		}
	}

	repo, closeRepo, err := newRepository(cfg.Store, l)
	if err != nil {
		l.Error("store init failed", map[string]interface{}{"error": err, "driver": cfg.Store.Driver})
		os.Exit(1)
	}

	svc := newService(cfg, repo, metrics, l)
	handler := api.NewHandler(svc, metrics, l, api.Options{
		RPS:   cfg.Server.RateLimit.RPS,
		Burst: cfg.Server.RateLimit.Burst,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		l.Info("server listening", map[string]interface{}{"addr": cfg.Server.Addr, "store": cfg.Store.Driver})
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			l.Error("server error", map[string]interface{}{"error": err})
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	l.Info("shutting down...", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	svc.Wait()
	_ = metrics.Shutdown(ctx)
	closeRepo()
	l.Info("bye", nil)
}

func newService(cfg *config.Config, repo store.Repository, metrics *observability.Metrics, l logger.Logger) *scan.Service {
	client := crawler.NewHTTPClient(crawler.Options{
		Timeout:       cfg.Crawler.Timeout,
		RobotsTimeout: cfg.Crawler.RobotsTimeout,
		MaxRedirects:  cfg.Crawler.MaxRedirects,
		SizeCap:       cfg.Crawler.MaxBodyBytes,
		UserAgent:     cfg.Crawler.UserAgent,
	})
	cl := classifier.New(classifier.LLMConfig{
		BaseURL:     cfg.Classifier.BaseURL,
		APIKey:      cfg.Classifier.APIKey,
		Model:       cfg.Classifier.Model,
		Timeout:     cfg.Classifier.Timeout,
		MaxTokens:   cfg.Classifier.MaxTokens,
		Temperature: cfg.Classifier.Temperature,
	}, l)
	p := scan.NewPipeline(
		crawler.New(client, cfg.Crawler.MaxPages, l),
		cl,
		coverage.NewMatcher(cfg.Coverage.Threshold),
		metrics,
		l,
	)
	return scan.NewService(p, repo, l,
		scan.WithSyncTimeout(cfg.Server.SyncTimeout),
		scan.WithMetrics(metrics),
	)
}

func newRepository(cfg config.StoreConfig, l logger.Logger) (store.Repository, func(), error) {
	if cfg.Driver != config.DriverRedis {
		return store.NewMemory(), func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := store.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	l.Info("connected to redis", map[string]interface{}{"address": cfg.Redis.Address})
	return store.NewRedis(client, cfg.TTL), func() { _ = client.Close() }, nil
}
