package models

import "time"

type Scope string

const (
	ScopeLocal    Scope = "local"
	ScopeNational Scope = "national"
)

type Audience string

const (
	AudienceConsumers  Audience = "consumers"
	AudienceBusinesses Audience = "businesses"
	AudienceNiche      Audience = "niche"
)

type Status string

const (
	StatusQueued   Status = "queued"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusFailed
}

type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// FetchedPage is the raw outcome of one HTTP retrieval. Error holds a fetch
// error code (DNS_FAIL, NOT_HTML, HTTP_404, ...) and is empty on success.
type FetchedPage struct {
	URL         string `json:"url"`
	HTML        string `json:"-"`
	ContentType string `json:"contentType,omitempty"`
	Status      int    `json:"status"`
	Error       string `json:"error,omitempty"`
}

type PageRecord struct {
	URL                  string   `json:"url"`
	Title                string   `json:"title"`
	H1                   string   `json:"h1"`
	Headings             []string `json:"headings"`
	StructuredDataTypes  []string `json:"structured_data_types"`
	WordCount            int      `json:"word_count"`
	QuestionHeadingCount int      `json:"question_heading_count"`
	ServiceKeywordHits   []string `json:"service_keyword_hits"`
	BodyTextSample       string   `json:"body_text_sample"`
}

type SiteSummary struct {
	H1PageCount     int      `json:"h1_page_count"`
	FAQDetected     bool     `json:"faq_detected"`
	SchemaDetected  bool     `json:"schema_detected"`
	TotalWordCount  int      `json:"total_word_count"`
	CityMentions    []string `json:"city_mentions"`
	HasLocalSignals bool     `json:"has_local_signals"`
}

type StructuralAnalysis struct {
	Pages   []PageRecord `json:"pages"`
	Summary SiteSummary  `json:"site_summary"`
}

type Persona struct {
	Title      string   `json:"title"`
	Goal       string   `json:"goal"`
	PainPoints []string `json:"pain_points"`
}

type CategoryInfo struct {
	Category         string  `json:"category"`
	ShortDescription string  `json:"short_description"`
	Persona          Persona `json:"persona"`
}

type QueryScores struct {
	Title   float64 `json:"title"`
	Heading float64 `json:"heading"`
	Body    float64 `json:"body"`
}

// Query is one synthesized buyer-intent query. BestPageURL stays nil unless
// Supported is true.
type Query struct {
	ID           string            `json:"id"`
	Text         string            `json:"text"`
	TemplateUsed string            `json:"template_used"`
	Tokens       map[string]string `json:"tokens"`
	Supported    bool              `json:"supported"`
	BestPageURL  *string           `json:"best_page_url"`
	Scores       QueryScores       `json:"scores"`
}

type ScoreBreakdown struct {
	H1Score              int    `json:"h1_score"`
	QuestionHeadingScore int    `json:"question_heading_score"`
	SchemaScore          int    `json:"schema_score"`
	WordCountScore       int    `json:"word_count_score"`
	LocalizedScore       int    `json:"localized_score"`
	StructureScore       int    `json:"structure_score"`
	IntentSupportPct     int    `json:"intent_support_pct"`
	ReadinessScore       int    `json:"readiness_score"`
	StatusLabel          string `json:"status_label"`
}

type ScanRequest struct {
	Domain    string   `json:"domain"`
	Scope     Scope    `json:"scope"`
	City      string   `json:"city,omitempty"`
	Audience  Audience `json:"audience"`
	SessionID string   `json:"session_id,omitempty"`
}

// ScanRecord is the long-lived aggregate for one scan. ScoreBreakdown and
// StructuralAnalysis are internal and never leave the service through Public.
type ScanRecord struct {
	RequestID string   `json:"request_id"`
	ScanToken string   `json:"scan_token"`
	Domain    string   `json:"domain"`
	Scope     Scope    `json:"scope"`
	City      string   `json:"city,omitempty"`
	Audience  Audience `json:"audience"`
	SessionID string   `json:"session_id,omitempty"`
	Status    Status   `json:"status"`
	Error     string   `json:"error,omitempty"`

	Category       string     `json:"category"`
	Persona        Persona    `json:"persona"`
	ReadinessScore int        `json:"readiness_score"`
	StatusLabel    string     `json:"status_label"`
	Confidence     Confidence `json:"confidence"`
	ExampleQuery   string     `json:"example_query"`
	Queries        []Query    `json:"queries"`
	StructuralGaps []string   `json:"structural_gaps"`

	ScoreBreakdown     *ScoreBreakdown     `json:"score_breakdown,omitempty"`
	StructuralAnalysis *StructuralAnalysis `json:"structural_analysis,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PublicQuery struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Supported bool   `json:"supported"`
}

// ScanResult is the externally visible projection of a completed ScanRecord.
type ScanResult struct {
	RequestID      string        `json:"request_id"`
	Domain         string        `json:"domain"`
	Status         Status        `json:"status"`
	Category       string        `json:"category"`
	Persona        Persona       `json:"persona"`
	ReadinessScore int           `json:"readiness_score"`
	StatusLabel    string        `json:"status_label"`
	Confidence     Confidence    `json:"confidence"`
	ExampleQuery   string        `json:"example_query"`
	Queries        []PublicQuery `json:"queries"`
	StructuralGaps []string      `json:"structural_gaps"`
}

func (r ScanRecord) Public() ScanResult {
	queries := make([]PublicQuery, 0, len(r.Queries))
	for _, q := range r.Queries {
		queries = append(queries, PublicQuery{ID: q.ID, Text: q.Text, Supported: q.Supported})
	}
	gaps := append([]string{}, r.StructuralGaps...)
	return ScanResult{
		RequestID:      r.RequestID,
		Domain:         r.Domain,
		Status:         r.Status,
		Category:       r.Category,
		Persona:        r.Persona.clone(),
		ReadinessScore: r.ReadinessScore,
		StatusLabel:    r.StatusLabel,
		Confidence:     r.Confidence,
		ExampleQuery:   r.ExampleQuery,
		Queries:        queries,
		StructuralGaps: gaps,
	}
}

// Clone returns a deep copy so callers never share slices or pointers with a
// stored record.
func (r ScanRecord) Clone() ScanRecord {
	out := r
	out.Persona = r.Persona.clone()
	out.StructuralGaps = cloneStrings(r.StructuralGaps)
	if r.Queries != nil {
		out.Queries = make([]Query, len(r.Queries))
		for i, q := range r.Queries {
			out.Queries[i] = q.clone()
		}
	}
	if r.ScoreBreakdown != nil {
		sb := *r.ScoreBreakdown
		out.ScoreBreakdown = &sb
	}
	if r.StructuralAnalysis != nil {
		sa := StructuralAnalysis{Summary: r.StructuralAnalysis.Summary}
		sa.Summary.CityMentions = cloneStrings(r.StructuralAnalysis.Summary.CityMentions)
		if r.StructuralAnalysis.Pages != nil {
			sa.Pages = make([]PageRecord, len(r.StructuralAnalysis.Pages))
			for i, p := range r.StructuralAnalysis.Pages {
				p.Headings = cloneStrings(p.Headings)
				p.StructuredDataTypes = cloneStrings(p.StructuredDataTypes)
				p.ServiceKeywordHits = cloneStrings(p.ServiceKeywordHits)
				sa.Pages[i] = p
			}
		}
		out.StructuralAnalysis = &sa
	}
	return out
}

func (p Persona) clone() Persona {
	p.PainPoints = cloneStrings(p.PainPoints)
	return p
}

func (q Query) clone() Query {
	if q.Tokens != nil {
		tokens := make(map[string]string, len(q.Tokens))
		for k, v := range q.Tokens {
			tokens[k] = v
		}
		q.Tokens = tokens
	}
	if q.BestPageURL != nil {
		u := *q.BestPageURL
		q.BestPageURL = &u
	}
	return q
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
