package scoring

import (
	"math"
	"strings"

	"ai-inclusion-checker/internal/models"
)

const (
	LabelPrepared   = "Structurally Prepared but Expandable"
	LabelLimited    = "Limited Inclusion Readiness"
	LabelUnprepared = "Not Structurally Prepared"
)

const (
	GapNoAnswerPages = "No decision-stage answer pages detected"
	GapNoFAQ         = "No FAQ section or structured Q&A content found"
	GapNoSchema      = "No JSON-LD structured data (schema.org) detected"
	GapNoLocal       = "No localized intent alignment (city or region not mentioned in service pages)"
	GapThinContent   = "Limited content depth: site has under 800 words total"
	GapNoServicePage = "No dedicated service, solution, or pricing pages detected"
)

const (
	maxGaps          = 5
	wordTarget       = 3000
	thinContentWords = 800
)

var servicePaths = []string{"/service", "/solution", "/product", "/pricing"}

// ComputeScore combines the structural summary and query coverage into the
// readiness breakdown. Structure and readiness stay within [0,100].
func ComputeScore(summary models.SiteSummary, pages []models.PageRecord, queries []models.Query, scope models.Scope) models.ScoreBreakdown {
	var b models.ScoreBreakdown

	if summary.H1PageCount > 0 {
		b.H1Score = 10
	}
	b.QuestionHeadingScore = min(25, totalQuestionHeadings(pages)*8)
	if summary.SchemaDetected {
		b.SchemaScore = 20
	}
	b.WordCountScore = min(20, int(math.Round(float64(max(summary.TotalWordCount, 0))/wordTarget*20)))

	if scope == models.ScopeLocal {
		if summary.HasLocalSignals {
			b.LocalizedScore += 15
		}
		if len(summary.CityMentions) > 0 {
			b.LocalizedScore += 10
		}
	} else {
		hits := 0
		for _, p := range pages {
			hits += len(p.ServiceKeywordHits)
		}
		b.LocalizedScore = min(25, hits*2)
	}

	b.StructureScore = min(100, b.H1Score+b.QuestionHeadingScore+b.SchemaScore+b.WordCountScore+b.LocalizedScore)

	var pct float64
	if len(queries) > 0 {
		supported := 0
		for _, q := range queries {
			if q.Supported {
				supported++
			}
		}
		pct = float64(supported) / float64(len(queries)) * 100
	}
	b.IntentSupportPct = int(math.Round(pct))

	b.ReadinessScore = clamp(int(math.Round(float64(b.StructureScore)*0.4+pct*0.6)), 0, 100)
	b.StatusLabel = StatusLabel(b.ReadinessScore)
	return b
}

func StatusLabel(readiness int) string {
	switch {
	case readiness >= 70:
		return LabelPrepared
	case readiness >= 40:
		return LabelLimited
	default:
		return LabelUnprepared
	}
}

// DetectGaps runs the structural checks in fixed order and returns at most
// five failing ones.
func DetectGaps(summary models.SiteSummary, pages []models.PageRecord, scope models.Scope) []string {
	checks := []struct {
		failed bool
		gap    string
	}{
		{totalQuestionHeadings(pages) == 0, GapNoAnswerPages},
		{!summary.FAQDetected, GapNoFAQ},
		{!summary.SchemaDetected, GapNoSchema},
		{scope == models.ScopeLocal && !summary.HasLocalSignals, GapNoLocal},
		{summary.TotalWordCount < thinContentWords, GapThinContent},
		{!hasServicePage(pages), GapNoServicePage},
	}

	gaps := []string{}
	for _, c := range checks {
		if c.failed {
			gaps = append(gaps, c.gap)
		}
		if len(gaps) == maxGaps {
			break
		}
	}
	return gaps
}

func ComputeConfidence(totalWords int) models.Confidence {
	switch {
	case totalWords < 300:
		return models.ConfidenceLow
	case totalWords < 1000:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceHigh
	}
}

func totalQuestionHeadings(pages []models.PageRecord) int {
	n := 0
	for _, p := range pages {
		n += p.QuestionHeadingCount
	}
	return n
}

func hasServicePage(pages []models.PageRecord) bool {
	for _, p := range pages {
		for _, s := range servicePaths {
			if strings.Contains(p.URL, s) {
				return true
			}
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
