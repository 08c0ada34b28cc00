// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package similarity computes cosine similarity between short keyword
// documents using term-vector representations.
package similarity

import (
	"math"
	"strings"
	"unicode"

	"github.com/pdiddy/research-trends/pkg/types"
)

// Tokenize lowercases doc and splits it into runs of letters and digits,
// dropping single-character tokens.
func Tokenize(doc string) []string {
	fields := strings.FieldsFunc(strings.ToLower(doc), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// termCounts returns raw term frequencies for a token list.
func termCounts(tokens []string) map[string]float64 {
	tf := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	return tf
}

// Cosine returns the cosine similarity of two documents under the given
// weighting. An empty document on either side yields 0.
func Cosine(a, b string, w types.Weighting) float64 {
	ta, tb := Tokenize(a), Tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	va, vb := termCounts(ta), termCounts(tb)

	if w == types.WeightingTFIDF {
		applyIDF(va, vb)
	}

	var dot, na, nb float64
	for term, x := range va {
		na += x * x
		if y, ok := vb[term]; ok {
			dot += x * y
		}
	}
	for _, y := range vb {
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// Clamp rounding drift so identical documents score exactly 1.
	if sim > 1 {
		sim = 1
	}
	return sim
}

// applyIDF rescales both vectors in place with smoothed inverse document
// frequency over the two-document corpus: idf = ln((1+n)/(1+df)) + 1.
func applyIDF(va, vb map[string]float64) {
	const n = 2.0
	idf := func(term string) float64 {
		df := 0.0
		if _, ok := va[term]; ok {
			df++
		}
		if _, ok := vb[term]; ok {
			df++
		}
		return math.Log((1+n)/(1+df)) + 1
	}
	for term, x := range va {
		va[term] = x * idf(term)
	}
	for term, y := range vb {
		vb[term] = y * idf(term)
	}
}

// KeywordDocument joins keywords into a lowercase space-separated document.
func KeywordDocument(keywords []string) string {
	parts := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			parts = append(parts, strings.ToLower(kw))
		}
	}
	return strings.Join(parts, " ")
}
