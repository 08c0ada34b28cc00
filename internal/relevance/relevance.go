// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package relevance scores papers against a theme and filters out papers
// that fall below a relevance threshold.
package relevance

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-trends/pkg/types"
)

// Sub-score weights and saturation counts.
const (
	keywordWeight   = 0.4
	technicalWeight = 0.3
	domainWeight    = 0.3

	keywordSaturation   = 3
	technicalSaturation = 4
	domainSaturation    = 2
)

// technicalTerms signal an engineering context.
var technicalTerms = []string{
	"system", "design", "technology", "engineering", "development",
	"implementation", "analysis", "control", "detection", "sensor",
	"platform", "architecture", "operational", "performance",
}

// domainIndicators signal one of the target application domains.
// They match against the paper text or its concept tags.
var domainIndicators = []string{
	"naval", "maritime", "defense", "defence", "military", "autonomous",
	"marine", "aerospace", "security", "cyber", "energy", "manufacturing",
	"digital", "innovation", "capability",
}

// Breakdown holds the capped sub-scores behind a relevance score.
type Breakdown struct {
	Keyword   float64 `json:"keyword" yaml:"keyword"`
	Technical float64 `json:"technical" yaml:"technical"`
	Domain    float64 `json:"domain" yaml:"domain"`
	Score     float64 `json:"score" yaml:"score"`
}

// Explain computes the sub-scores and the final relevance of p for theme.
func Explain(p types.Paper, theme types.ThemeDefinition) Breakdown {
	text := strings.ToLower(p.Title + " " + p.Abstract)
	concepts := strings.ToLower(strings.Join(p.Concepts, "; "))

	keywordMatches := 0
	for _, kw := range theme.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(text, kw) {
			keywordMatches++
		}
	}

	technicalMatches := 0
	for _, term := range technicalTerms {
		if strings.Contains(text, term) {
			technicalMatches++
		}
	}

	domainMatches := 0
	for _, term := range domainIndicators {
		if strings.Contains(text, term) || strings.Contains(concepts, term) {
			domainMatches++
		}
	}

	b := Breakdown{
		Keyword:   saturate(keywordMatches, keywordSaturation),
		Technical: saturate(technicalMatches, technicalSaturation),
		Domain:    saturate(domainMatches, domainSaturation),
	}
	b.Score = round3(keywordWeight*b.Keyword + technicalWeight*b.Technical + domainWeight*b.Domain)
	return b
}

// Score returns the [0,1] relevance of p to theme, rounded to 3 decimals.
func Score(p types.Paper, theme types.ThemeDefinition) float64 {
	return Explain(p, theme).Score
}

func saturate(matches, at int) float64 {
	return math.Min(float64(matches)/float64(at), 1.0)
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

// FilterSummary reports what a relevance filter kept.
type FilterSummary struct {
	Before        int     `json:"before" yaml:"before"`
	After         int     `json:"after" yaml:"after"`
	RetentionRate float64 `json:"retention_rate" yaml:"retention_rate"`
	Threshold     float64 `json:"threshold" yaml:"threshold"`

	// Mean, Min, and Max describe the retained scores; all zero when none remain.
	Mean float64 `json:"mean" yaml:"mean"`
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
}

// Filter scores papers against their own theme and keeps those at or above
// minScore.
type Filter struct {
	taxonomy types.Taxonomy
	log      *zap.Logger
}

// NewFilter returns a Filter over taxonomy. A nil logger discards output.
func NewFilter(taxonomy types.Taxonomy, log *zap.Logger) *Filter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Filter{taxonomy: taxonomy, log: log}
}

// FilterByRelevance scores each paper against the theme it carries, sets
// RelevanceScore on the returned copies, and keeps papers with score ≥
// minScore in input order. Papers whose theme is not in the taxonomy score 0.
// The input slice is not modified.
func (f *Filter) FilterByRelevance(papers []types.Paper, minScore float64) ([]types.Paper, FilterSummary) {
	summary := FilterSummary{Before: len(papers), Threshold: minScore}
	kept := make([]types.Paper, 0, len(papers))

	for _, p := range papers {
		theme, ok := f.taxonomy.Lookup(p.Theme)
		if ok {
			p.RelevanceScore = Score(p, theme)
		} else {
			p.RelevanceScore = 0
		}
		if p.RelevanceScore >= minScore {
			kept = append(kept, p)
		}
	}

	summary.After = len(kept)
	if summary.Before > 0 {
		summary.RetentionRate = float64(summary.After) / float64(summary.Before)
	}
	if len(kept) > 0 {
		summary.Min, summary.Max = kept[0].RelevanceScore, kept[0].RelevanceScore
		var sum float64
		for _, p := range kept {
			sum += p.RelevanceScore
			summary.Min = math.Min(summary.Min, p.RelevanceScore)
			summary.Max = math.Max(summary.Max, p.RelevanceScore)
		}
		summary.Mean = sum / float64(len(kept))
	}

	f.log.Info("relevance filtering",
		zap.Int("before", summary.Before),
		zap.Int("after", summary.After),
		zap.Float64("retention_rate", summary.RetentionRate),
		zap.Float64("threshold", summary.Threshold),
		zap.Float64("mean_score", summary.Mean),
		zap.Float64("min_score", summary.Min),
		zap.Float64("max_score", summary.Max),
	)
	return kept, summary
}
