package parser

import (
	"regexp"
	"strings"
)

// questionLeadWords mark a heading as question-like when it starts with one
// of them or contains one as a standalone word.
var questionLeadWords = []string{
	"what", "how", "why", "when", "which", "who", "best", "compare", "top", "vs", "versus", "guide", "tips",
}

var serviceKeywords = []string{
	"service", "solution", "platform", "tool", "software", "product", "consulting", "agency",
	"management", "support", "help", "pricing", "plan", "feature", "benefit", "integration",
	"automation", "analytics", "dashboard", "report", "insight", "strategy", "marketing",
	"sales", "crm", "erp", "api", "saas", "b2b", "enterprise", "startup", "team", "workflow",
	"decision", "ai", "data", "cloud", "security", "compliance", "roi", "growth",
	"consultation", "quote", "repair", "installation",
}

var cityNames = []string{
	"new york", "los angeles", "chicago", "houston", "phoenix", "philadelphia", "san antonio", "san diego",
	"dallas", "san jose", "austin", "jacksonville", "fort worth", "columbus", "charlotte", "san francisco",
	"indianapolis", "seattle", "denver", "washington", "nashville", "oklahoma city", "el paso", "boston",
	"portland", "las vegas", "memphis", "louisville", "baltimore", "milwaukee", "albuquerque", "tucson",
	"fresno", "sacramento", "mesa", "atlanta", "kansas city", "omaha", "colorado springs", "raleigh",
	"long beach", "virginia beach", "minneapolis", "tampa", "new orleans", "honolulu", "anaheim", "lexington",
	"st. louis", "pittsburgh", "cincinnati", "miami", "riverside", "bakersfield", "aurora", "corpus christi",
	"plano", "cleveland", "wichita", "lincoln", "orlando", "st. paul", "henderson", "jersey city", "chandler",
	"laredo", "madison", "lubbock", "stockton", "scottsdale", "reno", "buffalo", "gilbert", "glendale",
	"north las vegas", "winston-salem", "chesapeake", "norfolk", "fremont", "garland", "irving", "hialeah",
	"richmond", "baton rouge", "boise", "spokane", "tacoma", "san bernardino", "modesto", "fontana",
	"moreno valley", "shreveport", "akron", "des moines", "tempe", "huntington beach", "fayetteville",
	"worcester", "ontario", "oxnard", "montreal", "toronto", "london", "sydney", "melbourne", "dubai",
	"singapore", "berlin", "amsterdam", "paris", "tel aviv",
}

var cityRe = buildCityRe(cityNames)

func buildCityRe(names []string) *regexp.Regexp {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	jsonLDTypeRe = regexp.MustCompile(`"@type"\s*:\s*"([^"]+)"`)
	wordSplitRe  = regexp.MustCompile(`[^a-z0-9]+`)
)

// IsQuestionHeading reports whether a heading reads like a buyer question.
func IsQuestionHeading(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return false
	}
	words := map[string]struct{}{}
	for _, w := range wordSplitRe.Split(lower, -1) {
		if w != "" {
			words[w] = struct{}{}
		}
	}
	for _, lead := range questionLeadWords {
		if strings.HasPrefix(lower, lead) {
			return true
		}
		if _, ok := words[lead]; ok {
			return true
		}
	}
	return false
}

// ServiceKeywordHits returns vocabulary terms found as case-insensitive
// substrings of text, in vocabulary order, capped at limit.
func ServiceKeywordHits(text string, limit int) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, kw := range serviceKeywords {
		if len(out) >= limit {
			break
		}
		if strings.Contains(lower, kw) {
			out = append(out, kw)
		}
	}
	return out
}

// StructuredDataTypes scans raw markup for "@type" values, deduplicated in
// first-seen order.
func StructuredDataTypes(markup string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, m := range jsonLDTypeRe.FindAllStringSubmatch(markup, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, m[1])
	}
	return out
}

// CityMentions returns gazetteer cities found in text, title-cased, in
// first-seen order.
func CityMentions(text string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, m := range cityRe.FindAllString(text, -1) {
		city := titleCase(m)
		if _, ok := seen[city]; ok {
			continue
		}
		seen[city] = struct{}{}
		out = append(out, city)
	}
	return out
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
