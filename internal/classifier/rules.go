package classifier

import (
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// GenericCategory is the catch-all label of the content rule set.
const GenericCategory = "professional services"

// Rule maps a pattern to a category label. Rule sets are evaluated top to
// bottom and the first match wins.
type Rule struct {
	Pattern  *regexp.Regexp
	Category string
}

type RuleSet []Rule

func rule(pattern, category string) Rule {
	return Rule{Pattern: regexp.MustCompile(pattern), Category: category}
}

// Match returns the category of the first rule matching the lowercased text.
func (rs RuleSet) Match(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, r := range rs {
		if r.Pattern.MatchString(lower) {
			return r.Category, true
		}
	}
	return "", false
}

// DomainRules match on the registrable label of a domain, so patterns are
// plain substrings of compound names.
var DomainRules = RuleSet{
	rule(`bakery|bakeries|bread|pastry`, "bakery"),
	rule(`restaurant|cafe|diner|bistro|pizza|sushi|burger|eatery`, "restaurant / food service"),
	rule(`dental|dentist|orthodon`, "dental / medical practice"),
	rule(`fitness|gym|yoga|wellness`, "fitness / wellness"),
	rule(`lawyer|attorney|legal|lawfirm`, "legal services"),
	rule(`accounting|taxprep|bookkeep|cpa`, "accounting / tax"),
	rule(`realty|realtor|realestate|homes4sale`, "real estate"),
	rule(`plumbing|hvac|roofing|handyman`, "home services"),
	rule(`hotel|resort|travel|vacation`, "travel / hospitality"),
	rule(`school|academy|tutor|elearning`, "education"),
	rule(`autorepair|mechanic|autoshop`, "automotive"),
	rule(`marketing|seoagency`, "marketing agency"),
	rule(`recruit|staffing|talen`, "recruitment / HR"),
}

// ContentRules match on page text. Order matters: narrower trades come
// before the broad technology and commerce buckets.
var ContentRules = RuleSet{
	rule(`\b(bakery|bakeries|bread|pastry|cake|cupcake)\b`, "bakery"),
	rule(`restaurant|cafe|food|menu|dining|pizza|sushi|burger|bistro`, "restaurant / food service"),
	rule(`hotel|travel|vacation|booking|hospitality|airbnb|resort`, "travel / hospitality"),
	rule(`dental|dentist|orthodon`, "dental / medical practice"),
	rule(`doctor|clinic|medical|hospital|therapy|therapist|chiro`, "healthcare provider"),
	rule(`fitness|gym|yoga|wellness|personal train`, "fitness / wellness"),
	rule(`lawyer|attorney|legal|law firm`, "legal services"),
	rule(`accounting|tax|cpa|bookkeep`, "accounting / tax"),
	rule(`recruit|hiring|staffing|talent|\bhr\b`, "recruitment / HR"),
	rule(`real estate|realty|homes for sale|property|realtor`, "real estate"),
	rule(`plumb|electric|hvac|roofing|contractor|home service|handyman`, "home services"),
	rule(`insurance|coverage|policy`, "insurance"),
	rule(`\bai\b|machine learning|nlp|llm|gpt|artificial intelligence`, "AI/ML tools"),
	rule(`saas|software|platform|\bapp\b|api|cloud`, "SaaS"),
	rule(`marketing|seo|ads|campaign|social media`, "marketing agency"),
	rule(`ecommerce|e-commerce|shop|store|buy|checkout|cart`, "e-commerce"),
	rule(`school|university|course|learn|tutor|education`, "education"),
	rule(`consult|advisory|strategy|management`, "consulting firm"),
	rule(`automotive|car|auto|vehicle|mechanic`, "automotive"),
	rule(`photo|photography|videograph|creative|design`, "photography / creative"),
}

var tldStripRe = regexp.MustCompile(`\.(com|net|org|io|ai|co|biz).*$`)

// DomainLabel returns the registrable name of a domain without its public
// suffix, e.g. "joes-bakery" for "www.joes-bakery.co.uk".
func DomainLabel(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimPrefix(strings.TrimPrefix(d, "https://"), "http://")
	if i := strings.IndexAny(d, "/:?"); i >= 0 {
		d = d[:i]
	}
	if etld1, err := publicsuffix.EffectiveTLDPlusOne(d); err == nil {
		if suffix, _ := publicsuffix.PublicSuffix(etld1); suffix != "" {
			return strings.TrimSuffix(etld1, "."+suffix)
		}
	}
	return tldStripRe.ReplaceAllString(strings.TrimPrefix(d, "www."), "")
}

// HeuristicCategory resolves a category from the domain and page text. A
// domain match wins unless it is the generic label.
func HeuristicCategory(domain, text string) string {
	if cat, ok := DomainRules.Match(DomainLabel(domain)); ok && cat != GenericCategory {
		return cat
	}
	if cat, ok := ContentRules.Match(text); ok {
		return cat
	}
	return GenericCategory
}
