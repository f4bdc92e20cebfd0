package parser

import (
	"strings"

	"ai-inclusion-checker/internal/models"
)

const maxCityMentions = 5

// CityToken returns the part of a "City, Region" input before the first comma.
func CityToken(city string) string {
	head, _, _ := strings.Cut(city, ",")
	return strings.TrimSpace(head)
}

// BuildSiteSummary aggregates page records into site-level signals. city is
// the optional scan input and is listed first among city mentions.
func BuildSiteSummary(pages []models.PageRecord, city string) models.SiteSummary {
	var parts []string
	for _, p := range pages {
		parts = append(parts, p.BodyTextSample, p.Title, strings.Join(p.Headings, " "))
	}
	allText := strings.Join(parts, " ")
	lowerText := strings.ToLower(allText)

	summary := models.SiteSummary{}
	for _, p := range pages {
		if p.H1 != "" {
			summary.H1PageCount++
		}
		if len(p.StructuredDataTypes) > 0 {
			summary.SchemaDetected = true
		}
		if pageSignalsFAQ(p) {
			summary.FAQDetected = true
		}
		summary.TotalWordCount += p.WordCount
	}

	mentions := CityMentions(allText)
	cityToken := CityToken(city)

	var cities []string
	seen := map[string]struct{}{}
	add := func(c string) {
		key := strings.ToLower(c)
		if _, ok := seen[key]; ok || c == "" {
			return
		}
		seen[key] = struct{}{}
		cities = append(cities, c)
	}
	add(cityToken)
	for _, m := range mentions {
		add(m)
	}
	if len(cities) > maxCityMentions {
		cities = cities[:maxCityMentions]
	}
	if cities == nil {
		cities = []string{}
	}
	summary.CityMentions = cities

	summary.HasLocalSignals = len(mentions) > 0 ||
		(cityToken != "" && strings.Contains(lowerText, strings.ToLower(cityToken))) ||
		strings.Contains(lowerText, "near me") ||
		strings.Contains(lowerText, "local")

	return summary
}

func pageSignalsFAQ(p models.PageRecord) bool {
	for _, t := range p.StructuredDataTypes {
		if strings.Contains(strings.ToLower(t), "faq") {
			return true
		}
	}
	if p.QuestionHeadingCount >= 2 {
		return true
	}
	u := strings.ToLower(p.URL)
	return strings.Contains(u, "faq") || strings.Contains(u, "question")
}

// Analyze parses the homepage and candidate pages, dropping pages without
// markup or that fail to parse, and builds the site summary.
func (p *Parser) Analyze(homepage models.FetchedPage, pages []models.FetchedPage, city string) models.StructuralAnalysis {
	all := append([]models.FetchedPage{homepage}, pages...)
	records := make([]models.PageRecord, 0, len(all))
	for _, fp := range all {
		rec, err := p.Extract(fp)
		if err != nil || rec == nil {
			continue
		}
		records = append(records, *rec)
	}
	return models.StructuralAnalysis{
		Pages:   records,
		Summary: BuildSiteSummary(records, city),
	}
}
