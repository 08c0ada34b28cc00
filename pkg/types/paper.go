// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-trends pipeline:
// papers, the theme taxonomy, topic-to-theme mappings, and the trend records
// derived from them.
package types

import "time"

// OutlierTopic is the topic id the topic model assigns to unclustered papers.
const OutlierTopic = -1

// Sentinel theme labels.
const (
	// ThemeOther marks a topic whose best similarity fell below its theme threshold.
	ThemeOther = "Other"

	// ThemeUnknown marks a topic id absent from the topic-to-theme mapping.
	ThemeUnknown = "Unknown"

	// ThemeUncategorized marks a paper with no theme and no mapped topic.
	ThemeUncategorized = "Uncategorized"
)

// Paper holds the metadata of a single fetched paper. Relevance scoring sets
// RelevanceScore; theme mapping may set Theme. Nothing mutates a Paper once
// trend analysis begins.
type Paper struct {
	// ID is the stable external identifier (e.g. an OpenAlex work id).
	ID string `json:"id" yaml:"id"`

	Title string `json:"title" yaml:"title"`

	// Abstract is empty when the source had none.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Date is the publication date.
	Date time.Time `json:"date" yaml:"date"`

	// Citations is the cited-by count (never negative).
	Citations int `json:"citations" yaml:"citations"`

	// Theme is the assigned theme label, empty when unassigned.
	Theme string `json:"theme,omitempty" yaml:"theme,omitempty"`

	// TopicID is the topic model's cluster id; OutlierTopic when unclustered.
	TopicID int `json:"topic_id" yaml:"topic_id"`

	// Concepts are free-text tags from the source.
	Concepts []string `json:"concepts,omitempty" yaml:"concepts,omitempty"`

	// University is the contributing institution used for entity rankings.
	University string `json:"university,omitempty" yaml:"university,omitempty"`

	Authors    []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Journal    string   `json:"journal,omitempty" yaml:"journal,omitempty"`
	DOI        string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	Type       string   `json:"type,omitempty" yaml:"type,omitempty"`
	SourceType string   `json:"source_type,omitempty" yaml:"source_type,omitempty"`

	// RelevanceScore is the [0,1] theme relevance set by the relevance filter.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`

	// Confidence is the publication confidence derived from venue type and citations.
	Confidence float64 `json:"confidence_score,omitempty" yaml:"confidence_score,omitempty"`
}

// IsOutlier reports whether the paper sits in the unclustered topic.
func (p Paper) IsOutlier() bool {
	return p.TopicID == OutlierTopic
}
