package coverage

import (
	"math"

	"ai-inclusion-checker/internal/models"
)

const (
	DefaultThreshold = 0.35

	bodyWindow = 3000
)

// PageScore is the rounded per-signal and combined score of one query
// against one page.
type PageScore struct {
	Title    float64
	Heading  float64
	Body     float64
	Combined float64
}

type query struct {
	tokens []string
	tf     map[string]float64
}

func newQuery(text string) query {
	tokens := Tokenize(text)
	return query{tokens: tokens, tf: TermFrequencies(tokens)}
}

func (q query) blend(text string) float64 {
	tokens := Tokenize(text)
	return 0.5*overlap(q.tokens, tokens) + 0.5*Cosine(q.tf, TermFrequencies(tokens))
}

// ScorePage scores a query against a page. The combined score is never below
// the strongest of the title and heading signals.
func ScorePage(text string, page models.PageRecord) PageScore {
	return scorePage(newQuery(text), page)
}

func scorePage(q query, page models.PageRecord) PageScore {
	title := q.blend(page.Title)

	var heading float64
	for _, h := range page.Headings {
		if s := q.blend(h); s > heading {
			heading = s
		}
	}

	var body float64
	if page.QuestionHeadingCount > 0 {
		body = 0.4 * overlap(q.tokens, Tokenize(prefix(page.BodyTextSample, bodyWindow)))
	}

	combined := math.Max(0.4*title+0.4*heading+0.2*body, math.Max(title, heading))
	return PageScore{
		Title:    round2(title),
		Heading:  round2(heading),
		Body:     round2(body),
		Combined: round2(combined),
	}
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func round2(v float64) float64 {
	v = math.Round(v*100) / 100
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Matcher assigns each query its best page and a supported verdict.
type Matcher struct {
	Threshold float64
}

func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{Threshold: threshold}
}

// Match returns scored copies of queries. The first page with the strictly
// highest combined score wins; BestPageURL is set only when that score meets
// the threshold.
func (m *Matcher) Match(queries []models.Query, pages []models.PageRecord) []models.Query {
	out := make([]models.Query, len(queries))
	for i, q := range queries {
		pq := newQuery(q.Text)
		var best PageScore
		bestURL := ""
		for _, p := range pages {
			s := scorePage(pq, p)
			if s.Combined > best.Combined {
				best = s
				bestURL = p.URL
			}
		}

		q.Supported = best.Combined >= m.Threshold
		q.BestPageURL = nil
		if q.Supported {
			u := bestURL
			q.BestPageURL = &u
		}
		q.Scores = models.QueryScores{Title: best.Title, Heading: best.Heading, Body: best.Body}
		out[i] = q
	}
	return out
}
