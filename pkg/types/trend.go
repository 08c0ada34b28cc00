// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// QuarterCount is the number of papers published in one calendar quarter.
type QuarterCount struct {
	Quarter string `json:"quarter" yaml:"quarter"`
	Count   int    `json:"count" yaml:"count"`
}

// QuarterlyCounts is a chronologically ordered quarter series. It encodes as
// a quarter-label → count object; labels like "2024Q1" sort chronologically.
type QuarterlyCounts []QuarterCount

// Counts returns the counts in chronological order.
func (q QuarterlyCounts) Counts() []int {
	out := make([]int, len(q))
	for i, qc := range q {
		out[i] = qc.Count
	}
	return out
}

// MarshalJSON writes the series as an ordered JSON object.
func (q QuarterlyCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, qc := range q {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(qc.Quarter)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", qc.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a quarter-label → count object.
func (q *QuarterlyCounts) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*q = fromMap(m)
	return nil
}

// MarshalYAML writes the series as a mapping; the encoder sorts the keys.
func (q QuarterlyCounts) MarshalYAML() (interface{}, error) {
	m := make(map[string]int, len(q))
	for _, qc := range q {
		m[qc.Quarter] = qc.Count
	}
	return m, nil
}

// UnmarshalYAML reads a quarter-label → count mapping.
func (q *QuarterlyCounts) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var m map[string]int
	if err := unmarshal(&m); err != nil {
		return err
	}
	*q = fromMap(m)
	return nil
}

func fromMap(m map[string]int) QuarterlyCounts {
	out := make(QuarterlyCounts, 0, len(m))
	for k, v := range m {
		out = append(out, QuarterCount{Quarter: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quarter < out[j].Quarter })
	return out
}

// TopicCount is a topic id with its paper count.
type TopicCount struct {
	TopicID int `json:"topic_id" yaml:"topic_id"`
	Count   int `json:"count" yaml:"count"`
}

// EntityCount is a contributing entity (university) with its paper count.
type EntityCount struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// ThemeTrendRecord summarizes one theme's publication trend.
// It is recomputed fully on every run.
type ThemeTrendRecord struct {
	Theme       string `json:"theme" yaml:"theme"`
	TotalPapers int    `json:"total_papers" yaml:"total_papers"`

	// GrowthRate is the mean quarter-over-quarter change; -1.0 means the
	// count dropped to zero.
	GrowthRate float64 `json:"growth_rate" yaml:"growth_rate"`

	QuarterlyCounts QuarterlyCounts `json:"quarterly_counts" yaml:"quarterly_counts"`
	TopTopics       []TopicCount    `json:"top_topics" yaml:"top_topics"`
	Universities    []EntityCount   `json:"universities" yaml:"universities"`
}

// StrategicPriority ranks a theme by growth, tier weight, and volume.
type StrategicPriority struct {
	Theme         string   `json:"theme" yaml:"theme"`
	PriorityScore float64  `json:"priority_score" yaml:"priority_score"`
	Category      Priority `json:"category" yaml:"category"`
	GrowthRate    float64  `json:"growth_rate" yaml:"growth_rate"`
	TotalPapers   int      `json:"total_papers" yaml:"total_papers"`

	// ThemePriority is the theme's static taxonomy tier.
	ThemePriority Priority `json:"theme_priority" yaml:"theme_priority"`
}

// EmergingTopic is a topic whose recent quarter-over-quarter growth exceeds
// the emerging threshold.
type EmergingTopic struct {
	TopicID       int      `json:"topic_id" yaml:"topic_id"`
	Theme         string   `json:"theme" yaml:"theme"`
	GrowthRate    float64  `json:"growth_rate" yaml:"growth_rate"`
	Keywords      []string `json:"keywords" yaml:"keywords"`
	RecentCount   int      `json:"recent_count" yaml:"recent_count"`
	PreviousCount int      `json:"previous_count" yaml:"previous_count"`
}

// EmergingTopicRecord carries the emergingness composite and its sub-scores.
type EmergingTopicRecord struct {
	TopicID      int     `json:"topic_id" yaml:"topic_id"`
	Emergingness float64 `json:"emergingness_score" yaml:"emergingness_score"`
	Recency      float64 `json:"recency_score" yaml:"recency_score"`
	Growth       float64 `json:"growth_score" yaml:"growth_score"`
	Volume       float64 `json:"volume_score" yaml:"volume_score"`
	PaperCount   int     `json:"paper_count" yaml:"paper_count"`
	AvgCitations float64 `json:"avg_citations" yaml:"avg_citations"`

	// LatestDate is the topic's most recent paper (YYYY-MM-DD), empty with no papers.
	LatestDate string `json:"latest_date,omitempty" yaml:"latest_date,omitempty"`

	// GrowthRate is the raw relative change behind Growth, in percent.
	GrowthRate float64 `json:"growth_rate" yaml:"growth_rate"`

	Theme    string   `json:"theme,omitempty" yaml:"theme,omitempty"`
	SubTheme string   `json:"sub_theme,omitempty" yaml:"sub_theme,omitempty"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Label    string   `json:"topic_label,omitempty" yaml:"topic_label,omitempty"`
}

// TrendBundle is the persisted output of trend analysis.
type TrendBundle struct {
	ThemeTrends         map[string]ThemeTrendRecord `json:"theme_trends" yaml:"theme_trends"`
	EmergingTopics      []EmergingTopic             `json:"emerging_topics" yaml:"emerging_topics"`
	StrategicPriorities []StrategicPriority         `json:"strategic_priorities" yaml:"strategic_priorities"`
}
