package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"ai-inclusion-checker/internal/models"
	"ai-inclusion-checker/pkg/logger"
)

var (
	ErrLLMTimeout  = errors.New("LLM_TIMEOUT")
	ErrLLMRequest  = errors.New("LLM_REQUEST_FAILED")
	ErrLLMResponse = errors.New("LLM_RESPONSE_INVALID")
)

const maxPainPoints = 3

type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

func (c *LLMConfig) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.anthropic.com"
	}
	if c.Model == "" {
		c.Model = "claude-haiku-4-5"
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 400
	}
}

// responseSchema is the shape the model must return. Every field that fails
// it is taken from the rule classifier instead.
var responseSchema = gojsonschema.NewStringLoader(`{
  "type": "object",
  "required": ["category", "short_description", "persona"],
  "properties": {
    "category": {"type": "string", "pattern": "\\S", "maxLength": 80},
    "short_description": {"type": "string", "pattern": "\\S", "maxLength": 400},
    "persona": {
      "type": "object",
      "required": ["title", "goal", "pain_points"],
      "properties": {
        "title": {"type": "string", "pattern": "\\S", "maxLength": 120},
        "goal": {"type": "string", "pattern": "\\S", "maxLength": 400},
        "pain_points": {"type": "array", "minItems": 1, "items": {"type": "string", "pattern": "\\S"}}
      }
    }
  }
}`)

const promptTemplate = `Given the following website content from "%s", produce a structured analysis.

Website content:
%s

Return ONLY valid JSON (no markdown, no explanation) in exactly this format:
{
  "category": "<business category in 3-5 words>",
  "short_description": "<one sentence describing what this business does>",
  "persona": {
    "title": "<primary buyer/user role title>",
    "goal": "<their primary goal in 1 sentence>",
    "pain_points": ["<pain point 1>", "<pain point 2>", "<pain point 3>"]
  }
}`

// LLMClassifier asks a remote text-completion model for the category and
// persona. Fields the model omits or mistypes are filled from the rules.
type LLMClassifier struct {
	config LLMConfig
	client *http.Client
	rules  *RuleClassifier
	logger logger.Logger
}

func NewLLMClassifier(cfg LLMConfig, rules *RuleClassifier, log logger.Logger) *LLMClassifier {
	cfg.defaults()
	if rules == nil {
		rules = NewRuleClassifier()
	}
	return &LLMClassifier{
		config: cfg,
		client: &http.Client{},
		rules:  rules,
		logger: log.With(map[string]interface{}{"component": "llm-classifier"}),
	}
}

type messageRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *LLMClassifier) Classify(ctx context.Context, in Input) (models.CategoryInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	text, err := c.complete(ctx, fmt.Sprintf(promptTemplate, in.Domain, TextSample(in.Pages)))
	if err != nil {
		return models.CategoryInfo{}, err
	}

	raw, err := FirstJSONObject(text)
	if err != nil {
		return models.CategoryInfo{}, fmt.Errorf("%w: %v", ErrLLMResponse, err)
	}

	result, err := gojsonschema.Validate(responseSchema, gojsonschema.NewGoLoader(raw))
	if err != nil {
		return models.CategoryInfo{}, fmt.Errorf("%w: %v", ErrLLMResponse, err)
	}
	invalid := invalidFields(result.Errors())
	if len(invalid) > 0 {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		c.logger.Warn("model response failed validation, filling from rules", map[string]interface{}{
			"domain": in.Domain,
			"errors": errs,
		})
	}

	info := merge(raw, invalid, c.rules.classify(in))
	c.logger.Debug("classified with model", map[string]interface{}{"domain": in.Domain, "category": info.Category})
	return info, nil
}

func (c *LLMClassifier) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(messageRequest{
		Model:       c.config.Model,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
		Messages:    []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLLMRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.config.BaseURL, "/")+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLLMRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.config.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ErrLLMTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrLLMRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return "", fmt.Errorf("%w: status %d", ErrLLMRequest, resp.StatusCode)
	}

	var mr messageResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&mr); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrLLMResponse, err)
	}
	for _, block := range mr.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("%w: no text content", ErrLLMResponse)
}

// FirstJSONObject decodes the first JSON object embedded in text.
func FirstJSONObject(text string) (map[string]interface{}, error) {
	for start := strings.Index(text, "{"); start >= 0; {
		var obj map[string]interface{}
		dec := json.NewDecoder(strings.NewReader(text[start:]))
		if err := dec.Decode(&obj); err == nil {
			return obj, nil
		}
		next := strings.Index(text[start+1:], "{")
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, errors.New("no JSON object in response")
}

// fieldSet holds dotted paths ("persona.title", "persona.pain_points.1")
// that failed schema validation.
type fieldSet map[string]bool

// has reports whether path or one of its parents is invalid.
func (f fieldSet) has(path string) bool {
	for {
		if f[path] {
			return true
		}
		i := strings.LastIndex(path, ".")
		if i < 0 {
			return false
		}
		path = path[:i]
	}
}

func invalidFields(errs []gojsonschema.ResultError) fieldSet {
	out := fieldSet{}
	for _, e := range errs {
		field := e.Field()
		// a missing property is reported against its parent object
		if e.Type() == "required" {
			if prop, ok := e.Details()["property"].(string); ok {
				if field == "(root)" {
					field = prop
				} else {
					field += "." + prop
				}
			}
		}
		out[field] = true
	}
	return out
}

// merge overlays the valid parts of a model answer on the rule defaults.
func merge(raw map[string]interface{}, invalid fieldSet, defaults models.CategoryInfo) models.CategoryInfo {
	if invalid.has("(root)") {
		return defaults
	}
	info := defaults
	persona, _ := raw["persona"].(map[string]interface{})

	take := func(dst *string, m map[string]interface{}, key, path string) {
		if invalid.has(path) {
			return
		}
		s, _ := m[key].(string)
		*dst = strings.TrimSpace(s)
	}
	take(&info.Category, raw, "category", "category")
	take(&info.ShortDescription, raw, "short_description", "short_description")
	take(&info.Persona.Title, persona, "title", "persona.title")
	take(&info.Persona.Goal, persona, "goal", "persona.goal")

	if !invalid.has("persona.pain_points") {
		items, _ := persona["pain_points"].([]interface{})
		var points []string
		for i, it := range items {
			if invalid.has(fmt.Sprintf("persona.pain_points.%d", i)) {
				continue
			}
			s, _ := it.(string)
			points = append(points, strings.TrimSpace(s))
			if len(points) == maxPainPoints {
				break
			}
		}
		if len(points) > 0 {
			info.Persona.PainPoints = points
		}
	}
	return info
}
