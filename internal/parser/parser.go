package parser

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"ai-inclusion-checker/internal/models"
)

const (
	maxHeadings       = 20
	maxKeywordHits    = 15
	maxBodyTextSample = 8000
)

type Parser struct{}

func New() *Parser { return &Parser{} }

// Extract converts one fetched page into a PageRecord. It returns nil, nil
// when the page carries no markup.
func (p *Parser) Extract(page models.FetchedPage) (*models.PageRecord, error) {
	if strings.TrimSpace(page.HTML) == "" {
		return nil, nil
	}

	// Decode to UTF-8 if needed
	data := []byte(page.HTML)
	enc, _, _ := charset.DetermineEncoding(data, page.ContentType)
	utf8data, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		if !utf8.Valid(data) {
			return nil, err
		}
		utf8data = data
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(utf8data))
	if err != nil {
		return nil, err
	}

	h1 := cleanText(doc.Find("h1").First().Text())
	title := cleanText(doc.Find("title").First().Text())
	if title == "" {
		title = h1
	}

	var headings []string
	doc.Find("h2,h3").Each(func(i int, s *goquery.Selection) {
		if t := cleanText(s.Text()); t != "" {
			headings = append(headings, t)
		}
	})

	// question count covers every heading; only the first 20 are kept
	questionCount := 0
	for _, h := range headings {
		if IsQuestionHeading(h) {
			questionCount++
		}
	}
	if len(headings) > maxHeadings {
		headings = headings[:maxHeadings]
	}

	doc.Find("script,noscript,style,nav,header,footer").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})
	text := cleanText(doc.Find("body").Text())
	wordCount := 0
	if text != "" {
		wordCount = len(strings.Fields(text))
	}

	keywordSource := text + " " + title + " " + strings.Join(headings, " ")

	return &models.PageRecord{
		URL:                  page.URL,
		Title:                title,
		H1:                   h1,
		Headings:             headings,
		StructuredDataTypes:  StructuredDataTypes(page.HTML),
		WordCount:            wordCount,
		QuestionHeadingCount: questionCount,
		ServiceKeywordHits:   ServiceKeywordHits(keywordSource, maxKeywordHits),
		BodyTextSample:       truncateRunes(text, maxBodyTextSample),
	}, nil
}

func cleanText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
