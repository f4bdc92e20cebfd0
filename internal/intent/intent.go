package intent

import (
	"strings"

	"ai-inclusion-checker/internal/models"
)

const (
	DefaultCity      = "your area"
	DefaultPainPoint = "efficiency challenges"
)

// Template is one parameterized buyer query. Placeholders are {category},
// {city}, {audience} and {pain_point}.
type Template struct {
	ID   string
	Text string
}

type TemplateSet struct {
	Name      string
	Templates []Template
}

var (
	LocalSet = TemplateSet{Name: "local", Templates: []Template{
		{"local_best", "Best {category} in {city}"},
		{"local_near", "{category} near me"},
		{"local_affordable", "Affordable {category} in {city}"},
		{"local_top", "Top {category} for {audience}"},
		{"local_compare", "Compare {category} options in {city}"},
	}}
	NationalSet = TemplateSet{Name: "national", Templates: []Template{
		{"nat_best", "Best {category} for small businesses"},
		{"nat_startup", "{category} for growing teams"},
		{"nat_compare", "Compare {category} tools"},
		{"nat_pricing", "{category} pricing and plans"},
		{"nat_how", "How does {category} help with {pain_point}"},
	}}
	B2BSet = TemplateSet{Name: "b2b", Templates: []Template{
		{"b2b_best", "Best {category} for enterprise teams"},
		{"b2b_top", "Top {category} platforms for businesses"},
		{"b2b_compare", "Compare {category} solutions for B2B"},
		{"b2b_roi", "ROI of {category} for companies"},
		{"b2b_how", "How {category} improves team productivity"},
	}}
	ConsumerSet = TemplateSet{Name: "consumer", Templates: []Template{
		{"con_best", "Best {category} near me"},
		{"con_top", "Top-rated {category}"},
		{"con_affordable", "Affordable {category} options"},
		{"con_review", "{category} reviews and recommendations"},
		{"con_how", "How to choose the best {category}"},
	}}
)

type setKey struct {
	scope    models.Scope
	audience models.Audience
}

// sets maps (scope, audience) to a template set. Local scope uses the same
// set for every audience.
var sets = map[setKey]TemplateSet{
	{models.ScopeLocal, models.AudienceConsumers}:     LocalSet,
	{models.ScopeLocal, models.AudienceBusinesses}:    LocalSet,
	{models.ScopeLocal, models.AudienceNiche}:         LocalSet,
	{models.ScopeNational, models.AudienceBusinesses}: B2BSet,
	{models.ScopeNational, models.AudienceConsumers}:  ConsumerSet,
	{models.ScopeNational, models.AudienceNiche}:      NationalSet,
}

// SetFor returns the template set for scope and audience. Unknown national
// audiences get the generic national set.
func SetFor(scope models.Scope, audience models.Audience) TemplateSet {
	if s, ok := sets[setKey{scope, audience}]; ok {
		return s
	}
	if scope == models.ScopeLocal {
		return LocalSet
	}
	return NationalSet
}

var audienceLabels = map[models.Audience]string{
	models.AudienceConsumers:  "consumers",
	models.AudienceBusinesses: "businesses",
	models.AudienceNiche:      "specialized users",
}

func AudienceLabel(a models.Audience) string {
	if l, ok := audienceLabels[a]; ok {
		return l
	}
	return string(a)
}

// Generate renders the five queries for a scan. It is deterministic: equal
// inputs produce equal output in template order.
func Generate(category string, scope models.Scope, audience models.Audience, city, painPoint string) []models.Query {
	cityStr := strings.TrimSpace(strings.SplitN(city, ",", 2)[0])
	if cityStr == "" {
		cityStr = DefaultCity
	}
	painStr := strings.TrimSpace(painPoint)
	if painStr == "" {
		painStr = DefaultPainPoint
	}

	values := map[string]string{
		"category":   category,
		"city":       cityStr,
		"audience":   AudienceLabel(audience),
		"pain_point": painStr,
	}
	r := strings.NewReplacer(
		"{category}", values["category"],
		"{city}", values["city"],
		"{audience}", values["audience"],
		"{pain_point}", values["pain_point"],
	)

	set := SetFor(scope, audience)
	out := make([]models.Query, 0, len(set.Templates))
	for _, t := range set.Templates {
		tokens := make(map[string]string, len(values))
		for k, v := range values {
			tokens[k] = v
		}
		out = append(out, models.Query{
			ID:           t.ID,
			Text:         r.Replace(t.Text),
			TemplateUsed: t.Text,
			Tokens:       tokens,
		})
	}
	return out
}
