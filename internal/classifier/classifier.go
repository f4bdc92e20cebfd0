package classifier

import (
	"context"
	"fmt"
	"strings"

	"ai-inclusion-checker/internal/models"
	"ai-inclusion-checker/pkg/logger"
)

const (
	samplePages     = 2
	sampleTextChars = 1500
)

type Input struct {
	Domain   string
	Audience models.Audience
	Pages    []models.PageRecord
}

// Classifier infers a business category and buyer persona.
type Classifier interface {
	Classify(ctx context.Context, in Input) (models.CategoryInfo, error)
}

// TextSample renders the excerpt of the first two pages that both
// implementations classify.
func TextSample(pages []models.PageRecord) string {
	n := len(pages)
	if n > samplePages {
		n = samplePages
	}
	parts := make([]string, 0, n)
	for _, p := range pages[:n] {
		parts = append(parts, fmt.Sprintf("URL: %s\nTitle: %s\nH1: %s\nContent: %s",
			p.URL, p.Title, p.H1, truncate(p.BodyTextSample, sampleTextChars)))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// RuleClassifier is the deterministic classifier. It never fails.
type RuleClassifier struct{}

func NewRuleClassifier() *RuleClassifier { return &RuleClassifier{} }

func (c *RuleClassifier) Classify(_ context.Context, in Input) (models.CategoryInfo, error) {
	return c.classify(in), nil
}

func (c *RuleClassifier) classify(in Input) models.CategoryInfo {
	category := HeuristicCategory(in.Domain, TextSample(in.Pages))
	return models.CategoryInfo{
		Category:         category,
		ShortDescription: fmt.Sprintf("%s provides %s services.", in.Domain, category),
		Persona:          PersonaFor(category, in.Audience),
	}
}

// Fallback tries Primary and resolves any error or panic to Secondary.
type Fallback struct {
	Primary   Classifier
	Secondary *RuleClassifier
	Logger    logger.Logger
}

func (f *Fallback) Classify(ctx context.Context, in Input) (info models.CategoryInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			f.Logger.Error("classifier panicked, using rules", map[string]interface{}{"panic": fmt.Sprint(r)})
			info, err = f.Secondary.classify(in), nil
		}
	}()
	info, err = f.Primary.Classify(ctx, in)
	if err != nil {
		f.Logger.Warn("classifier failed, using rules", map[string]interface{}{"error": err, "domain": in.Domain})
		return f.Secondary.classify(in), nil
	}
	return info, nil
}

// New returns the rule classifier alone when no credential is configured,
// otherwise the remote model backed by the rules.
func New(cfg LLMConfig, log logger.Logger) Classifier {
	rules := NewRuleClassifier()
	if strings.TrimSpace(cfg.APIKey) == "" {
		return rules
	}
	return &Fallback{
		Primary:   NewLLMClassifier(cfg, rules, log),
		Secondary: rules,
		Logger:    log.With(map[string]interface{}{"component": "classifier"}),
	}
}
