package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-inclusion-checker/internal/models"
)

const sampleHTML = `<!doctype html><html lang="en"><head>
<title>Austin Plumbing Pros</title>
<script type="application/ld+json">{"@context":"https://schema.org","@type":"FAQPage","mainEntity":[{"@type":"Question"}]}</script>
<script type="application/ld+json">{"@type": "LocalBusiness"}</script>
<style>body{color:red}</style>
</head><body>
<header><p>Call now header text</p></header>
<nav><a href="/about">About</a></nav>
<h1>Plumbing services in Austin</h1>
<h2>What does a repair cost?</h2>
<h2>How fast can you arrive</h2>
<h3>Our pricing plans</h3>
<p>We offer emergency plumbing repair and installation across the city.</p>
<footer>Footer words here</footer>
</body></html>`

func TestExtract(t *testing.T) {
	rec, err := New().Extract(models.FetchedPage{URL: "https://example.com", HTML: sampleHTML, ContentType: "text/html; charset=utf-8"})
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, "Austin Plumbing Pros", rec.Title)
	assert.Equal(t, "Plumbing services in Austin", rec.H1)
	assert.Equal(t, []string{"What does a repair cost?", "How fast can you arrive", "Our pricing plans"}, rec.Headings)
	assert.Equal(t, 2, rec.QuestionHeadingCount)
	assert.Equal(t, []string{"FAQPage", "Question", "LocalBusiness"}, rec.StructuredDataTypes)
	assert.Contains(t, rec.ServiceKeywordHits, "service")
	assert.Contains(t, rec.ServiceKeywordHits, "pricing")
	assert.NotContains(t, rec.BodyTextSample, "Call now header text")
	assert.NotContains(t, rec.BodyTextSample, "Footer words")
	assert.NotContains(t, rec.BodyTextSample, "color:red")
	assert.Greater(t, rec.WordCount, 10)
}

func TestExtractTitleFallsBackToH1(t *testing.T) {
	rec, err := New().Extract(models.FetchedPage{HTML: "<html><body><h1>Only Heading</h1></body></html>"})
	require.NoError(t, err)
	assert.Equal(t, "Only Heading", rec.Title)
}

func TestExtractEmptyMarkup(t *testing.T) {
	rec, err := New().Extract(models.FetchedPage{URL: "https://example.com", HTML: "  "})
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestExtractCaps(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 30; i++ {
		b.WriteString("<h2>How to pick a provider</h2>")
	}
	b.WriteString("<p>")
	b.WriteString(strings.Repeat("word ", 3000))
	b.WriteString("</p></body></html>")

	rec, err := New().Extract(models.FetchedPage{HTML: b.String()})
	require.NoError(t, err)
	assert.Len(t, rec.Headings, 20)
	assert.Equal(t, 30, rec.QuestionHeadingCount)
	assert.LessOrEqual(t, len(rec.BodyTextSample), 8000)
	assert.LessOrEqual(t, len(rec.ServiceKeywordHits), 15)
}

func TestIsQuestionHeading(t *testing.T) {
	tests := map[string]bool{
		"What we do":                  true,
		"Pricing vs value":            true,
		"A guide to roofing":          true,
		"Top rated":                   true,
		"Contact us":                  false,
		"Our story":                   false,
		"Comparison of plans":         false,
		"Tips":                        true,
		"":                            false,
		"The best bakery in town":     true,
		"Someone who cares (and how)": true,
	}
	for in, want := range tests {
		assert.Equal(t, want, IsQuestionHeading(in), in)
	}
}

func TestBuildSiteSummary(t *testing.T) {
	pages := []models.PageRecord{
		{URL: "https://example.com", H1: "Home", BodyTextSample: "Serving Austin and Dallas families", WordCount: 500},
		{URL: "https://example.com/faq", StructuredDataTypes: []string{"Organization"}, WordCount: 300},
	}
	s := BuildSiteSummary(pages, "austin, TX")

	assert.Equal(t, 1, s.H1PageCount)
	assert.True(t, s.FAQDetected)
	assert.True(t, s.SchemaDetected)
	assert.Equal(t, 800, s.TotalWordCount)
	assert.Equal(t, []string{"austin", "Dallas"}, s.CityMentions)
	assert.True(t, s.HasLocalSignals)
}

func TestBuildSiteSummaryNoSignals(t *testing.T) {
	pages := []models.PageRecord{{URL: "https://example.com/about", BodyTextSample: "We make software", WordCount: 3}}
	s := BuildSiteSummary(pages, "")

	assert.False(t, s.FAQDetected)
	assert.False(t, s.SchemaDetected)
	assert.False(t, s.HasLocalSignals)
	assert.Empty(t, s.CityMentions)
}

func TestCityMentionsCapAndTitleCase(t *testing.T) {
	text := "new york, boston, st. louis, miami, denver, seattle and boston again"
	s := BuildSiteSummary([]models.PageRecord{{BodyTextSample: text}}, "")
	assert.Equal(t, []string{"New York", "Boston", "St. Louis", "Miami", "Denver"}, s.CityMentions)
}

func TestAnalyzeSkipsEmptyPages(t *testing.T) {
	home := models.FetchedPage{URL: "https://example.com", HTML: sampleHTML}
	empty := models.FetchedPage{URL: "https://example.com/about"}
	a := New().Analyze(home, []models.FetchedPage{empty}, "Austin")

	require.Len(t, a.Pages, 1)
	assert.True(t, a.Summary.FAQDetected)
	assert.Equal(t, "Austin", a.Summary.CityMentions[0])
}
