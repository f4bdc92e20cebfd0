package scan

import (
	"context"
	"fmt"

	"ai-inclusion-checker/internal/classifier"
	"ai-inclusion-checker/internal/coverage"
	"ai-inclusion-checker/internal/crawler"
	"ai-inclusion-checker/internal/intent"
	"ai-inclusion-checker/internal/models"
	"ai-inclusion-checker/internal/observability"
	"ai-inclusion-checker/internal/parser"
	"ai-inclusion-checker/internal/scoring"
	"ai-inclusion-checker/pkg/logger"
)

// Fetcher crawls a bounded sample of a site.
type Fetcher interface {
	CrawlSite(ctx context.Context, domain string) crawler.CrawlResult
}

// Result is everything the pipeline derives for one scan.
type Result struct {
	CategoryInfo    models.CategoryInfo
	Queries         []models.Query
	Score           models.ScoreBreakdown
	Gaps            []string
	Confidence      models.Confidence
	ExampleQuery    string
	Analysis        models.StructuralAnalysis
	UsedDemoContent bool
}

type Pipeline struct {
	fetcher    Fetcher
	parser     *parser.Parser
	classifier classifier.Classifier
	rules      *classifier.RuleClassifier
	matcher    *coverage.Matcher
	metrics    *observability.Metrics
	logger     logger.Logger
}

func NewPipeline(f Fetcher, c classifier.Classifier, m *coverage.Matcher, metrics *observability.Metrics, log logger.Logger) *Pipeline {
	if c == nil {
		c = classifier.NewRuleClassifier()
	}
	if m == nil {
		m = coverage.NewMatcher(coverage.DefaultThreshold)
	}
	return &Pipeline{
		fetcher:    f,
		parser:     parser.New(),
		classifier: c,
		rules:      classifier.NewRuleClassifier(),
		matcher:    m,
		metrics:    metrics,
		logger:     log.With(map[string]interface{}{"component": "pipeline"}),
	}
}

// Run crawls the domain and analyzes whatever was fetched. An unreachable
// host is analyzed from synthetic pages instead of failing.
func (p *Pipeline) Run(ctx context.Context, req models.ScanRequest) (Result, error) {
	log := p.logger.With(map[string]interface{}{"domain": req.Domain})

	crawl := p.fetcher.CrawlSite(ctx, req.Domain)
	if crawl.BlockedByRobots {
		return Result{}, crawler.ErrRobotsBlocked
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	homepage, pages := crawl.Homepage, crawl.Pages
	demo := false
	if crawl.Error != "" {
		p.metrics.RecordFetchFailure(ctx, crawl.Homepage.Error)
	}
	if crawl.Error == crawler.CodeUnreachable {
		log.Info("site unreachable, using demo content", map[string]interface{}{"code": crawl.Homepage.Error})
		p.metrics.RecordDemoSubstitution(ctx)
		homepage, pages = DemoPages(req.Domain)
		demo = true
	}

	res, err := p.AnalyzePages(ctx, req, homepage, pages)
	if err != nil {
		if crawl.Error != "" && !demo {
			return Result{}, fmt.Errorf("%w: homepage %s", err, crawl.Error)
		}
		return Result{}, err
	}
	res.UsedDemoContent = demo
	return res, nil
}

// AnalyzePages runs every stage after the crawl. It performs no network I/O
// other than the classifier call, so equal pages give an equal Result when
// the classifier is deterministic.
func (p *Pipeline) AnalyzePages(ctx context.Context, req models.ScanRequest, homepage models.FetchedPage, pages []models.FetchedPage) (Result, error) {
	analysis := p.parser.Analyze(homepage, pages, req.City)
	if len(analysis.Pages) == 0 {
		return Result{}, ErrNoContent
	}

	in := classifier.Input{Domain: req.Domain, Audience: req.Audience, Pages: analysis.Pages}
	info, err := p.classifier.Classify(ctx, in)
	if err != nil {
		p.logger.Warn("classifier failed, using rules", map[string]interface{}{"error": err, "domain": req.Domain})
		info, _ = p.rules.Classify(ctx, in)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var painPoint string
	if len(info.Persona.PainPoints) > 0 {
		painPoint = info.Persona.PainPoints[0]
	}
	queries := intent.Generate(info.Category, req.Scope, req.Audience, req.City, painPoint)
	queries = p.matcher.Match(queries, analysis.Pages)

	score := scoring.ComputeScore(analysis.Summary, analysis.Pages, queries, req.Scope)
	return Result{
		CategoryInfo: info,
		Queries:      queries,
		Score:        score,
		Gaps:         scoring.DetectGaps(analysis.Summary, analysis.Pages, req.Scope),
		Confidence:   scoring.ComputeConfidence(analysis.Summary.TotalWordCount),
		ExampleQuery: ExampleQuery(queries, info.Category, req.City),
		Analysis:     analysis,
	}, nil
}

func ExampleQuery(queries []models.Query, category, city string) string {
	if len(queries) > 0 && queries[0].Text != "" {
		return queries[0].Text
	}
	if c := parser.CityToken(city); c != "" {
		return fmt.Sprintf("Best %s in %s", category, c)
	}
	return fmt.Sprintf("Best %s near me", category)
}
