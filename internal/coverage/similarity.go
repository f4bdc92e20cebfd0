package coverage

import (
	"math"
	"regexp"
	"strings"
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9\s]`)

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`the and for with that this are was were
		have has had not but from they your their
		will can been our all also when which how
		what why who where more most some any its
		you about into than other then there these`) {
		stopWords[w] = struct{}{}
	}
}

// Tokenize lowercases text, replaces non-alphanumerics with spaces and drops
// tokens of two characters or fewer as well as stop words.
func Tokenize(text string) []string {
	clean := nonAlnumRe.ReplaceAllString(strings.ToLower(text), " ")
	var out []string
	for _, tok := range strings.Fields(clean) {
		if len(tok) <= 2 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// OverlapRatio is |A∩B| / max(|A|,|B|) over the token sets of a and b.
func OverlapRatio(a, b string) float64 {
	return overlap(Tokenize(a), Tokenize(b))
}

func overlap(a, b []string) float64 {
	setA, setB := tokenSet(a), tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	shared := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			shared++
		}
	}
	return float64(shared) / float64(max(len(setA), len(setB)))
}

// TermFrequencies returns term counts normalized by token count.
func TermFrequencies(tokens []string) map[string]float64 {
	tf := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	n := float64(len(tokens))
	for k, v := range tf {
		tf[k] = v / n
	}
	return tf
}

func Cosine(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for term, wa := range a {
		normA += wa * wa
		if wb, ok := b[term]; ok {
			dot += wa * wb
		}
	}
	for _, wb := range b {
		normB += wb * wb
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
