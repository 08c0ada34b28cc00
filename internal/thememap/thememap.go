// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package thememap assigns externally discovered topics to taxonomy themes
// by keyword-document similarity.
package thememap

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-trends/internal/similarity"
	"github.com/pdiddy/research-trends/internal/topicmodel"
	"github.com/pdiddy/research-trends/pkg/types"
)

// Defaults for the mapper.
const (
	DefaultThreshold           = 0.01
	DefaultCrossThemeThreshold = 0.6

	// topicDocWords is how many topic keywords form the topic document.
	topicDocWords = 20
	// storedKeywords is how many topic keywords each mapping entry keeps.
	storedKeywords = 10
)

// ErrMalformedTopic marks a topic the topic model returned without a usable
// keyword list.
var ErrMalformedTopic = errors.New("malformed topic")

// builtinThresholds holds per-theme overrides of the default threshold.
// WithThresholds can replace any of them.
var builtinThresholds = map[string]float64{
	"Defense_Security": 0.005,
}

// Mapper maps topics to themes. It is safe for concurrent reads once built.
type Mapper struct {
	taxonomy         types.Taxonomy
	defaultThreshold float64
	thresholds       map[string]float64
	weighting        types.Weighting
	log              *zap.Logger

	// themeDocs caches each theme's keyword document in taxonomy order.
	themeDocs []string
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithDefaultThreshold sets the threshold for themes without an override.
func WithDefaultThreshold(t float64) Option {
	return func(m *Mapper) { m.defaultThreshold = t }
}

// WithThresholds adds per-theme overrides on top of the built-in ones.
// Theme names match case-insensitively.
func WithThresholds(overrides map[string]float64) Option {
	return func(m *Mapper) {
		for k, v := range overrides {
			m.thresholds[m.canonicalName(k)] = v
		}
	}
}

// WithWeighting selects TF or TF-IDF term weighting.
func WithWeighting(w types.Weighting) Option {
	return func(m *Mapper) { m.weighting = w }
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *zap.Logger) Option {
	return func(m *Mapper) {
		if l != nil {
			m.log = l
		}
	}
}

// New builds a Mapper over taxonomy.
func New(taxonomy types.Taxonomy, opts ...Option) *Mapper {
	m := &Mapper{
		taxonomy:         taxonomy,
		defaultThreshold: DefaultThreshold,
		thresholds:       make(map[string]float64, len(builtinThresholds)),
		weighting:        types.WeightingTF,
		log:              zap.NewNop(),
	}
	for k, v := range builtinThresholds {
		m.thresholds[k] = v
	}
	for _, o := range opts {
		o(m)
	}

	m.themeDocs = make([]string, len(taxonomy.Themes))
	for i, th := range taxonomy.Themes {
		m.themeDocs[i] = similarity.KeywordDocument(th.Keywords)
	}

	m.log.Info("theme mapper initialized",
		zap.Int("themes", taxonomy.Len()),
		zap.Float64("default_threshold", m.defaultThreshold),
		zap.Any("theme_thresholds", m.thresholds),
		zap.String("weighting", string(m.weighting)),
	)
	return m
}

// canonicalName returns the taxonomy spelling of a theme name, matched
// case-insensitively. Config loaders such as viper lowercase map keys.
func (m *Mapper) canonicalName(name string) string {
	for _, th := range m.taxonomy.Themes {
		if strings.EqualFold(name, th.Name) {
			return th.Name
		}
	}
	return name
}

// Threshold returns the assignment threshold for a theme.
func (m *Mapper) Threshold(theme string) float64 {
	if t, ok := m.thresholds[theme]; ok {
		return t
	}
	return m.defaultThreshold
}

func topicDocument(keywords []types.TopicKeyword) string {
	n := len(keywords)
	if n > topicDocWords {
		n = topicDocWords
	}
	words := make([]string, n)
	for i := 0; i < n; i++ {
		words[i] = keywords[i].Word
	}
	return similarity.KeywordDocument(words)
}

// MapTopicToTheme scores the topic against every theme and returns the best
// theme, its score, and the full score vector. When the best score is below
// that theme's threshold the theme is ThemeOther but the score and vector
// are still reported. Ties go to the theme listed first in the taxonomy.
func (m *Mapper) MapTopicToTheme(keywords []types.TopicKeyword) (string, float64, map[string]float64) {
	scores := make(map[string]float64, len(m.themeDocs))
	if len(m.themeDocs) == 0 {
		return types.ThemeOther, 0, scores
	}

	doc := topicDocument(keywords)
	best, bestScore := "", math.Inf(-1)
	for i, th := range m.taxonomy.Themes {
		s := similarity.Cosine(doc, m.themeDocs[i], m.weighting)
		scores[th.Name] = s
		if s > bestScore {
			best, bestScore = th.Name, s
		}
	}

	if bestScore < m.Threshold(best) {
		return types.ThemeOther, bestScore, scores
	}
	return best, bestScore, scores
}

// MapTopicToSubTheme returns the closest sub-theme of parentTheme. There is
// no threshold. It returns ("", 0) when the parent is unknown or has no
// sub-themes.
func (m *Mapper) MapTopicToSubTheme(keywords []types.TopicKeyword, parentTheme string) (string, float64) {
	parent, ok := m.taxonomy.Lookup(parentTheme)
	if !ok || len(parent.SubThemes) == 0 {
		return "", 0
	}

	doc := topicDocument(keywords)
	best, bestScore := "", math.Inf(-1)
	for _, st := range parent.SubThemes {
		s := similarity.Cosine(doc, similarity.KeywordDocument(st.Keywords), m.weighting)
		if s > bestScore {
			best, bestScore = st.Name, s
		}
	}
	return best, bestScore
}

// CreateThemeMapping maps every non-outlier topic of the model. A topic
// without keywords, or with a non-finite keyword weight, fails the whole
// mapping with ErrMalformedTopic.
func (m *Mapper) CreateThemeMapping(model topicmodel.Model) (types.ThemeMapping, error) {
	mapping := make(types.ThemeMapping)

	for _, topic := range model.Topics() {
		if topic.ID == types.OutlierTopic {
			continue
		}
		if err := checkTopic(topic); err != nil {
			return nil, err
		}

		theme, confidence, scores := m.MapTopicToTheme(topic.Keywords)
		words := topic.Words()
		if len(words) > storedKeywords {
			words = words[:storedKeywords]
		}
		entry := types.TopicMapping{
			Theme:      theme,
			Confidence: confidence,
			AllScores:  scores,
			Keywords:   words,
			Count:      topic.Count,
		}
		if theme != types.ThemeOther {
			entry.SubTheme, entry.SubThemeConfidence = m.MapTopicToSubTheme(topic.Keywords, theme)
		}

		mapping[strconv.Itoa(topic.ID)] = entry
		m.log.Debug("topic mapped",
			zap.Int("topic", topic.ID),
			zap.String("theme", theme),
			zap.String("sub_theme", entry.SubTheme),
			zap.Float64("confidence", confidence),
		)
	}

	m.logSummary(mapping)
	return mapping, nil
}

func checkTopic(topic types.TopicInfo) error {
	if len(topic.Keywords) == 0 {
		return fmt.Errorf("topic %d has no keywords: %w", topic.ID, ErrMalformedTopic)
	}
	for _, kw := range topic.Keywords {
		if math.IsNaN(kw.Weight) || math.IsInf(kw.Weight, 0) {
			return fmt.Errorf("topic %d keyword %q has non-finite weight: %w", topic.ID, kw.Word, ErrMalformedTopic)
		}
	}
	return nil
}

func (m *Mapper) logSummary(mapping types.ThemeMapping) {
	if len(mapping) == 0 {
		m.log.Warn("no topics were mapped to themes")
		return
	}

	perTheme := make(map[string]int)
	perSubTheme := make(map[string]int)
	var sum float64
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, e := range mapping {
		perTheme[e.Theme]++
		if e.SubTheme != "" {
			perSubTheme[e.SubTheme]++
		}
		sum += e.Confidence
		lo = math.Min(lo, e.Confidence)
		hi = math.Max(hi, e.Confidence)
	}

	m.log.Info("theme mapping complete",
		zap.Int("topics", len(mapping)),
		zap.Float64("mean_confidence", sum/float64(len(mapping))),
		zap.Float64("min_confidence", lo),
		zap.Float64("max_confidence", hi),
		zap.Any("topics_per_theme", perTheme),
		zap.Int("sub_themes", len(perSubTheme)),
	)
}

// IdentifyCrossThemeTopics returns topics whose stored score vector has more
// than one theme at or above threshold, ordered by topic id. Themes within a
// topic follow taxonomy order.
func (m *Mapper) IdentifyCrossThemeTopics(mapping types.ThemeMapping, threshold float64) []types.CrossThemeTopic {
	var out []types.CrossThemeTopic
	for _, id := range mapping.TopicIDs() {
		entry, _ := mapping.Lookup(id)

		var themes []string
		for _, name := range m.orderedThemes(entry.AllScores) {
			if entry.AllScores[name] >= threshold {
				themes = append(themes, name)
			}
		}
		if len(themes) < 2 {
			continue
		}

		scores := make(map[string]float64, len(themes))
		for _, th := range themes {
			scores[th] = entry.AllScores[th]
		}
		out = append(out, types.CrossThemeTopic{
			TopicID:  id,
			Themes:   themes,
			Scores:   scores,
			Keywords: entry.Keywords,
		})
	}

	m.log.Info("cross-theme topics identified",
		zap.Int("count", len(out)),
		zap.Float64("threshold", threshold),
	)
	return out
}

// orderedThemes lists the score vector's themes in taxonomy order, followed
// by any themes the taxonomy does not know, sorted by name.
func (m *Mapper) orderedThemes(scores map[string]float64) []string {
	names := make([]string, 0, len(scores))
	known := make(map[string]bool, len(m.taxonomy.Themes))
	for _, th := range m.taxonomy.Themes {
		known[th.Name] = true
		if _, ok := scores[th.Name]; ok {
			names = append(names, th.Name)
		}
	}
	var extra []string
	for name := range scores {
		if !known[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

// ThemeForTopic returns the mapped theme of a topic, or fallback when the
// topic has no mapping entry.
func ThemeForTopic(mapping types.ThemeMapping, topicID int, fallback string) string {
	return mapping.ThemeOf(topicID, fallback)
}

// SaveMapping writes a mapping as indented JSON.
func SaveMapping(path string, mapping types.ThemeMapping) error {
	data, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling theme mapping: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing theme mapping: %w", err)
	}
	return nil
}

// LoadMapping reads a mapping written by SaveMapping.
func LoadMapping(path string) (types.ThemeMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading theme mapping: %w", err)
	}
	var mapping types.ThemeMapping
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("parsing theme mapping: %w", err)
	}
	if mapping == nil {
		mapping = make(types.ThemeMapping)
	}
	return mapping, nil
}
