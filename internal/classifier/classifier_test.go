package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"

	"ai-inclusion-checker/internal/models"
	"ai-inclusion-checker/pkg/logger"
)

func page(text string) models.PageRecord {
	return models.PageRecord{URL: "https://example.com", Title: "Home", BodyTextSample: text}
}

func TestContentRules(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Fresh bread and cupcakes every morning", "bakery"},
		{"Book a table and view our menu", "restaurant / food service"},
		{"Emergency plumbing and HVAC repair", "home services"},
		{"Machine learning for analysts", "AI/ML tools"},
		{"A cloud platform for teams", "SaaS"},
		{"Nothing recognisable at all", ""},
	}
	for _, tt := range tests {
		got, ok := ContentRules.Match(tt.text)
		if tt.want == "" {
			assert.False(t, ok, tt.text)
			continue
		}
		assert.True(t, ok, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}
}

func TestDomainLabel(t *testing.T) {
	assert.Equal(t, "joes-bakery", DomainLabel("www.joes-bakery.co.uk"))
	assert.Equal(t, "smithlawfirm", DomainLabel("smithlawfirm.com"))
	assert.Equal(t, "acme", DomainLabel("https://acme.io/about"))
}

func TestHeuristicCategoryPrefersDomain(t *testing.T) {
	// content alone would say SaaS
	assert.Equal(t, "bakery", HeuristicCategory("sunrisebakery.com", "online ordering platform"))
	assert.Equal(t, "SaaS", HeuristicCategory("acme.com", "online ordering platform"))
	assert.Equal(t, GenericCategory, HeuristicCategory("acme.com", "nothing recognisable"))
}

func TestPersonaFor(t *testing.T) {
	assert.Equal(t, "Homeowner", PersonaFor("home services", models.AudienceConsumers).Title)

	b := PersonaFor("unknown", models.AudienceBusinesses)
	c := PersonaFor("unknown", models.AudienceConsumers)
	n := PersonaFor("unknown", models.AudienceNiche)
	assert.NotEqual(t, b.Title, c.Title)
	assert.NotEqual(t, c.Title, n.Title)
	assert.NotEqual(t, b.Goal, n.Goal)
	for _, p := range []models.Persona{b, c, n} {
		assert.NotEmpty(t, p.PainPoints)
		assert.LessOrEqual(t, len(p.PainPoints), 3)
	}
}

func TestRuleClassifier(t *testing.T) {
	info, err := NewRuleClassifier().Classify(context.Background(), Input{
		Domain:   "citydental.com",
		Audience: models.AudienceConsumers,
		Pages:    []models.PageRecord{page("Family dentistry")},
	})
	require.NoError(t, err)
	assert.Equal(t, "dental / medical practice", info.Category)
	assert.Equal(t, "citydental.com provides dental / medical practice services.", info.ShortDescription)
	assert.Equal(t, "Patient / Caregiver", info.Persona.Title)
}

func TestTextSampleUsesFirstTwoPages(t *testing.T) {
	long := make([]rune, 2000)
	for i := range long {
		long[i] = 'a'
	}
	sample := TextSample([]models.PageRecord{
		{URL: "https://a.example", BodyTextSample: string(long)},
		{URL: "https://b.example"},
		{URL: "https://c.example"},
	})
	assert.Contains(t, sample, "URL: https://a.example")
	assert.Contains(t, sample, "URL: https://b.example")
	assert.NotContains(t, sample, "c.example")
	assert.NotContains(t, sample, string(long[:1501]))
}

func TestFirstJSONObject(t *testing.T) {
	obj, err := FirstJSONObject("Sure! Here you go: {\"category\": \"bakery\"} and {\"x\": 1}")
	require.NoError(t, err)
	assert.Equal(t, "bakery", obj["category"])

	_, err = FirstJSONObject("no json here {oops")
	assert.Error(t, err)
}

func llmServer(t *testing.T, text string, status int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))

		var req messageRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.InDelta(t, 0.1, req.Temperature, 1e-9)
		assert.Len(t, req.Messages, 1)

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"type": "text", "text": text}},
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func llmConfig(url string) LLMConfig {
	return LLMConfig{BaseURL: url, APIKey: "test-key", Timeout: 2 * time.Second, Temperature: 0.1}
}

func TestLLMClassifierValidResponse(t *testing.T) {
	ts := llmServer(t, `{"category":"artisan bakery","short_description":"Bakes bread.","persona":{"title":"Foodie","goal":"Eat well","pain_points":["a","b","c","d"]}}`, http.StatusOK)

	c := New(llmConfig(ts.URL), logger.NewTest(t))
	info, err := c.Classify(context.Background(), Input{Domain: "x.com", Audience: models.AudienceConsumers, Pages: []models.PageRecord{page("bread")}})
	require.NoError(t, err)
	assert.Equal(t, "artisan bakery", info.Category)
	assert.Equal(t, "Foodie", info.Persona.Title)
	assert.Equal(t, []string{"a", "b", "c"}, info.Persona.PainPoints)
}

func TestLLMClassifierFillsMissingFields(t *testing.T) {
	ts := llmServer(t, "```json\n{\"category\":\"yoga studio\",\"persona\":{\"goal\":42}}\n```", http.StatusOK)

	c := NewLLMClassifier(llmConfig(ts.URL), nil, logger.NewTest(t))
	info, err := c.Classify(context.Background(), Input{Domain: "zenyoga.com", Audience: models.AudienceConsumers, Pages: []models.PageRecord{page("classes")}})
	require.NoError(t, err)
	assert.Equal(t, "yoga studio", info.Category)
	assert.Equal(t, "zenyoga.com provides fitness / wellness services.", info.ShortDescription)
	assert.Equal(t, "Find quality fitness or wellness services nearby", info.Persona.Goal)
	assert.NotEmpty(t, info.Persona.PainPoints)
}

func TestLLMClassifierReplacesInvalidFields(t *testing.T) {
	long := strings.Repeat("very ", 30) + "long category"
	ts := llmServer(t, `{"category":"`+long+`","short_description":"   ","persona":{"title":"Parent","goal":"Find a tutor","pain_points":[7,"cost"," ","availability"]}}`, http.StatusOK)

	c := NewLLMClassifier(llmConfig(ts.URL), nil, logger.NewTest(t))
	info, err := c.Classify(context.Background(), Input{Domain: "bestplumbing.com", Audience: models.AudienceConsumers})
	require.NoError(t, err)
	assert.Equal(t, "home services", info.Category)
	assert.Equal(t, "bestplumbing.com provides home services services.", info.ShortDescription)
	assert.Equal(t, "Parent", info.Persona.Title)
	assert.Equal(t, []string{"cost", "availability"}, info.Persona.PainPoints)
}

func TestInvalidFieldsFromSchema(t *testing.T) {
	raw := map[string]interface{}{
		"category": "",
		"persona":  map[string]interface{}{"title": "Owner", "pain_points": []interface{}{"a", 1}},
	}
	result, err := gojsonschema.Validate(responseSchema, gojsonschema.NewGoLoader(raw))
	require.NoError(t, err)
	require.False(t, result.Valid())

	invalid := invalidFields(result.Errors())
	assert.True(t, invalid.has("category"))
	assert.True(t, invalid.has("short_description"))
	assert.True(t, invalid.has("persona.goal"))
	assert.True(t, invalid.has("persona.pain_points.1"))
	assert.False(t, invalid.has("persona.title"))
	assert.False(t, invalid.has("persona.pain_points.0"))

	defaults := models.CategoryInfo{Category: "general business", ShortDescription: "d", Persona: models.Persona{Goal: "g", PainPoints: []string{"x"}}}
	info := merge(raw, invalid, defaults)
	assert.Equal(t, "general business", info.Category)
	assert.Equal(t, "d", info.ShortDescription)
	assert.Equal(t, "Owner", info.Persona.Title)
	assert.Equal(t, "g", info.Persona.Goal)
	assert.Equal(t, []string{"a"}, info.Persona.PainPoints)
}

func TestFieldSetCoversChildren(t *testing.T) {
	f := fieldSet{"persona": true}
	assert.True(t, f.has("persona.title"))
	assert.True(t, f.has("persona.pain_points.2"))
	assert.False(t, f.has("category"))
}

func TestFallbackOnFailures(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		status int
	}{
		{"server error", "", http.StatusInternalServerError},
		{"no json", "I cannot help with that.", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := llmServer(t, tt.text, tt.status)
			c := New(llmConfig(ts.URL), logger.NewTest(t))
			info, err := c.Classify(context.Background(), Input{Domain: "bestplumbing.com", Audience: models.AudienceConsumers})
			require.NoError(t, err)
			assert.Equal(t, "home services", info.Category)
			assert.Equal(t, "Homeowner", info.Persona.Title)
		})
	}
}

func TestFallbackOnTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	cfg := llmConfig(ts.URL)
	cfg.Timeout = 50 * time.Millisecond
	info, err := New(cfg, logger.NewNop()).Classify(context.Background(), Input{Domain: "acme.com", Audience: models.AudienceNiche})
	require.NoError(t, err)
	assert.Equal(t, GenericCategory, info.Category)
	assert.Equal(t, "Specialist Practitioner", info.Persona.Title)
}

func TestNewWithoutKeyUsesRules(t *testing.T) {
	_, ok := New(LLMConfig{}, logger.NewNop()).(*RuleClassifier)
	assert.True(t, ok)
}

type panicky struct{}

func (panicky) Classify(context.Context, Input) (models.CategoryInfo, error) { panic("boom") }

func TestFallbackRecoversPanic(t *testing.T) {
	f := &Fallback{Primary: panicky{}, Secondary: NewRuleClassifier(), Logger: logger.NewNop()}
	info, err := f.Classify(context.Background(), Input{Domain: "acme.com", Audience: models.AudienceBusinesses})
	require.NoError(t, err)
	assert.Equal(t, "Business Owner / Decision Maker", info.Persona.Title)
}
