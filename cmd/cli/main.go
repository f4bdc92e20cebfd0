package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"ai-inclusion-checker/internal/classifier"
	"ai-inclusion-checker/internal/config"
	"ai-inclusion-checker/internal/coverage"
	"ai-inclusion-checker/internal/crawler"
	"ai-inclusion-checker/internal/ioformats"
	"ai-inclusion-checker/internal/models"
	"ai-inclusion-checker/internal/scan"
	"ai-inclusion-checker/internal/store"
	"ai-inclusion-checker/pkg/logger"
)

func main() {
	in := flag.String("input", "", "input file (csv with 'domain' column or ndjson)")
	out := flag.String("output", "", "output NDJSON file (default stdout)")
	concurrency := flag.Int("concurrency", 4, "worker concurrency")
	cfgPath := flag.String("config", "", "config file (default ./configs/config.yaml if present)")
	scope := flag.String("scope", string(models.ScopeNational), "default scope for rows without one")
	audience := flag.String("audience", string(models.AudienceConsumers), "default audience for rows without one")
	city := flag.String("city", "", "default city for local rows without one")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "missing --input")
		os.Exit(2)
	}
	if *concurrency <= 0 {
		*concurrency = 1
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	l := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	reqs, err := ioformats.ReadRequests(*in, models.ScanRequest{
		Scope:    models.Scope(*scope),
		Audience: models.Audience(*audience),
		City:     *city,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "read input:", err)
		os.Exit(1)
	}

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
	p := scan.NewPipeline(crawler.New(client, cfg.Crawler.MaxPages, l), cl, coverage.NewMatcher(cfg.Coverage.Threshold), nil, l)
	svc := scan.NewService(p, store.NewMemory(), l, scan.WithSyncTimeout(cfg.Server.SyncTimeout))

	results := make([]ioformats.Line, len(reqs))

	sem := make(chan struct{}, *concurrency)
	done := make(chan int, len(reqs))

	for i, req := range reqs {
		sem <- struct{}{} // acquire
		go func() {
			defer func() { <-sem; done <- i }()
			rec, err := svc.RunSync(context.Background(), req)
			results[i] = ioformats.LineFor(req.Domain, rec, err)
		}()
	}
	for range reqs {
		<-done
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintln(os.Stderr, "create output:", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	if err := ioformats.WriteNDJSON(w, results); err != nil {
		fmt.Fprintln(os.Stderr, "write output:", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}
