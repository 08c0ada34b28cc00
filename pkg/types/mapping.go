// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"sort"
	"strconv"
)

// TopicKeyword is one weighted keyword from the topic model.
type TopicKeyword struct {
	Word   string  `json:"word" yaml:"word"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// TopicInfo describes one topic produced by the external topic model.
type TopicInfo struct {
	ID       int            `json:"id" yaml:"id"`
	Count    int            `json:"count" yaml:"count"`
	Keywords []TopicKeyword `json:"keywords" yaml:"keywords"`
}

// Words returns the keyword strings in model order.
func (t TopicInfo) Words() []string {
	words := make([]string, len(t.Keywords))
	for i, kw := range t.Keywords {
		words[i] = kw.Word
	}
	return words
}

// TopicMapping is the theme assignment for a single topic.
// Confidence always equals the maximum of AllScores; Theme is ThemeOther only
// when that maximum is below the best theme's threshold.
type TopicMapping struct {
	Theme      string             `json:"theme" yaml:"theme"`
	Confidence float64            `json:"confidence" yaml:"confidence"`
	AllScores  map[string]float64 `json:"all_scores" yaml:"all_scores"`

	// Keywords holds at most the first ten topic keywords.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// Count is the number of papers in the topic.
	Count int `json:"count" yaml:"count"`

	SubTheme           string  `json:"sub_theme,omitempty" yaml:"sub_theme,omitempty"`
	SubThemeConfidence float64 `json:"sub_theme_confidence,omitempty" yaml:"sub_theme_confidence,omitempty"`
}

// ThemeMapping maps topic ids (decimal strings) to their theme assignment.
type ThemeMapping map[string]TopicMapping

// Lookup returns the mapping entry for a topic id.
func (m ThemeMapping) Lookup(topicID int) (TopicMapping, bool) {
	tm, ok := m[strconv.Itoa(topicID)]
	return tm, ok
}

// ThemeOf returns the theme of a topic, or fallback when the topic is not mapped.
func (m ThemeMapping) ThemeOf(topicID int, fallback string) string {
	if tm, ok := m.Lookup(topicID); ok && tm.Theme != "" {
		return tm.Theme
	}
	return fallback
}

// TopicIDs returns the mapped topic ids in ascending numeric order.
// Keys that are not integers are skipped.
func (m ThemeMapping) TopicIDs() []int {
	ids := make([]int, 0, len(m))
	for k := range m {
		id, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// CrossThemeTopic is a topic with a strong score against more than one theme.
type CrossThemeTopic struct {
	TopicID  int                `json:"topic_id" yaml:"topic_id"`
	Themes   []string           `json:"themes" yaml:"themes"`
	Scores   map[string]float64 `json:"scores" yaml:"scores"`
	Keywords []string           `json:"keywords" yaml:"keywords"`
}
