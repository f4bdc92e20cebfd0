package crawler

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"ai-inclusion-checker/internal/models"
	"ai-inclusion-checker/pkg/logger"
)

var (
	ErrRobotsBlocked = errors.New("blocked by robots.txt")
	ErrUnreachable   = errors.New("site unreachable")
)

// DefaultCandidatePaths are fetched on every site besides harvested links.
var DefaultCandidatePaths = []string{"/about", "/services", "/faq", "/contact", "/about-us"}

// CrawlResult is the outcome of one bounded site crawl. Error is
// CodeUnreachable when no homepage could be retrieved over https or http, or
// CodeNotHTML/CodeEmptyBody when a server answered without markup.
type CrawlResult struct {
	Homepage        models.FetchedPage   `json:"homepage"`
	Pages           []models.FetchedPage `json:"pages"`
	BlockedByRobots bool                 `json:"blockedByRobots,omitempty"`
	Error           string               `json:"error,omitempty"`
}

// Err maps the result to a sentinel error, or nil when the homepage was usable.
func (r CrawlResult) Err() error {
	switch {
	case r.BlockedByRobots:
		return ErrRobotsBlocked
	case r.Error == CodeUnreachable:
		return ErrUnreachable
	}
	return nil
}

type Crawler struct {
	client         *HTTPClient
	candidatePaths []string
	maxPages       int
	logger         logger.Logger
}

// New builds a site crawler. maxPages bounds the extra pages fetched after
// the homepage; candidate fetches are capped at maxPages+1.
func New(client *HTTPClient, maxPages int, log logger.Logger) *Crawler {
	if maxPages <= 0 {
		maxPages = 3
	}
	return &Crawler{
		client:         client,
		candidatePaths: DefaultCandidatePaths,
		maxPages:       maxPages,
		logger:         log.With(map[string]interface{}{"component": "crawler"}),
	}
}

func (c *Crawler) CrawlSite(ctx context.Context, domain string) CrawlResult {
	baseURL := NormalizeURL(domain)
	log := c.logger.With(map[string]interface{}{"baseUrl": baseURL})

	if !c.client.CheckRobots(ctx, baseURL) {
		log.Info("robots.txt disallows crawling", nil)
		return CrawlResult{
			Homepage:        models.FetchedPage{URL: baseURL, Error: CodeRobotsBlocked},
			BlockedByRobots: true,
		}
	}

	homepage := c.client.Fetch(ctx, baseURL)
	if IsFatal(homepage.Error) {
		log.Debug("homepage unreachable", map[string]interface{}{"code": homepage.Error})
		return CrawlResult{Homepage: homepage, Error: CodeUnreachable}
	}

	if homepage.Error != "" {
		httpURL := strings.Replace(baseURL, "https://", "http://", 1)
		if httpURL == baseURL {
			return homepageFailure(homepage)
		}
		fallback := c.client.Fetch(ctx, httpURL)
		log.Debug("retrying homepage over http", map[string]interface{}{
			"code":         homepage.Error,
			"fallbackCode": fallback.Error,
		})
		if fallback.Error != "" {
			return homepageFailure(homepage, fallback)
		}
		homepage = fallback
		baseURL = httpURL
	}

	candidates := c.candidateURLs(baseURL, homepage.HTML)
	return CrawlResult{Homepage: homepage, Pages: c.fetchAll(ctx, candidates)}
}

// homepageFailure reports NOT_HTML or EMPTY_BODY when any attempt reached a
// server that answered without markup. Everything else, HTTP error statuses
// included, is UNREACHABLE.
func homepageFailure(attempts ...models.FetchedPage) CrawlResult {
	for _, a := range attempts {
		if IsNoContent(a.Error) {
			return CrawlResult{Homepage: a, Error: a.Error}
		}
	}
	return CrawlResult{Homepage: attempts[0], Error: CodeUnreachable}
}

func (c *Crawler) candidateURLs(baseURL, html string) []string {
	seen := map[string]struct{}{baseURL: {}, baseURL + "/": {}}
	var out []string
	for _, p := range c.candidatePaths {
		u := baseURL + p
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	extra := 0
	for _, link := range ExtractInternalLinks(html, baseURL) {
		if extra >= c.maxPages {
			break
		}
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		out = append(out, link)
		extra++
	}
	if limit := c.maxPages + 1; len(out) > limit {
		out = out[:limit]
	}
	return out
}

// fetchAll fetches every candidate concurrently. Each fetch is isolated: a
// failure is recorded on its own slot and never cancels the others.
func (c *Crawler) fetchAll(ctx context.Context, urls []string) []models.FetchedPage {
	results := make([]models.FetchedPage, len(urls))
	var g errgroup.Group
	g.SetLimit(c.maxPages + 1)
	for i, u := range urls {
		g.Go(func() error {
			results[i] = c.client.Fetch(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	pages := make([]models.FetchedPage, 0, len(results))
	for _, p := range results {
		if p.Error != "" || p.Status >= 400 || strings.TrimSpace(p.HTML) == "" {
			if p.Error != "" {
				c.logger.Debug("candidate fetch failed", map[string]interface{}{"url": p.URL, "code": p.Error})
			}
			continue
		}
		pages = append(pages, p)
	}
	return pages
}
