//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"ai-inclusion-checker/internal/classifier"
	"ai-inclusion-checker/internal/coverage"
	"ai-inclusion-checker/internal/crawler"
	"ai-inclusion-checker/internal/models"
	"ai-inclusion-checker/internal/scan"
	"ai-inclusion-checker/internal/store"
	"ai-inclusion-checker/pkg/logger"
)

func newLiveService(t *testing.T) *scan.Service {
	log := logger.NewTest(t)
	client := crawler.NewHTTPClient(crawler.Options{Timeout: 10 * time.Second})
	p := scan.NewPipeline(crawler.New(client, 3, log), classifier.NewRuleClassifier(), coverage.NewMatcher(0), nil, log)
	return scan.NewService(p, store.NewMemory(), log, scan.WithSyncTimeout(45*time.Second))
}

func TestLiveScanExampleDotCom(t *testing.T) {
	// example.com is a tiny static page (subject to change / blocking)
	svc := newLiveService(t)

	rec, err := svc.RunSync(context.Background(), models.ScanRequest{
		Domain: "example.com", Scope: models.ScopeNational, Audience: models.AudienceBusinesses,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rec.Status == models.StatusFailed {
		t.Skipf("skipping: scan failed due to network/robots: %s", rec.Error)
	}
	if rec.StructuralAnalysis == nil || len(rec.StructuralAnalysis.Pages) == 0 {
		t.Fatalf("expected analyzed pages")
	}
	if len(rec.Queries) != 5 {
		t.Errorf("expected 5 queries, got %d", len(rec.Queries))
	}
	if rec.ReadinessScore < 0 || rec.ReadinessScore > 100 {
		t.Errorf("readiness out of range: %d", rec.ReadinessScore)
	}
}

func TestLiveUnreachableUsesDemoContent(t *testing.T) {
	svc := newLiveService(t)

	rec, err := svc.RunSync(context.Background(), models.ScanRequest{
		Domain: "no-such-host-for-ai-inclusion.invalid", Scope: models.ScopeNational, Audience: models.AudienceConsumers,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rec.Status != models.StatusComplete {
		t.Skipf("skipping: resolver did not fail as expected: %s", rec.Error)
	}
	if rec.Confidence != models.ConfidenceLow {
		t.Errorf("expected Low confidence for demo content, got %s", rec.Confidence)
	}
}
