// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/research-trends/pkg/types"
)

// record is the JSON/YAML row layout. Dates are plain YYYY-MM-DD strings and
// a missing topic_id means the outlier topic.
type record struct {
	ID             string   `json:"id" yaml:"id"`
	Title          string   `json:"title" yaml:"title"`
	Abstract       string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Date           string   `json:"date,omitempty" yaml:"date,omitempty"`
	Citations      int      `json:"citations" yaml:"citations"`
	Theme          string   `json:"theme,omitempty" yaml:"theme,omitempty"`
	TopicID        *int     `json:"topic_id,omitempty" yaml:"topic_id,omitempty"`
	Concepts       []string `json:"concepts,omitempty" yaml:"concepts,omitempty"`
	University     string   `json:"university,omitempty" yaml:"university,omitempty"`
	Authors        []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Journal        string   `json:"journal,omitempty" yaml:"journal,omitempty"`
	DOI            string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	Type           string   `json:"type,omitempty" yaml:"type,omitempty"`
	SourceType     string   `json:"source_type,omitempty" yaml:"source_type,omitempty"`
	RelevanceScore float64  `json:"relevance_score,omitempty" yaml:"relevance_score,omitempty"`
	Confidence     float64  `json:"confidence_score,omitempty" yaml:"confidence_score,omitempty"`
}

type document struct {
	Papers []record `json:"papers" yaml:"papers"`
}

const dateLayout = "2006-01-02"

// ParseDate accepts YYYY-MM-DD or RFC 3339. An empty string is the zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t.UTC(), nil
}

// FormatDate renders a date as YYYY-MM-DD, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func (r record) paper() (types.Paper, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return types.Paper{}, fmt.Errorf("paper %q: %w", r.ID, err)
	}
	if r.Citations < 0 {
		return types.Paper{}, fmt.Errorf("paper %q: invalid citations %d", r.ID, r.Citations)
	}
	topic := types.OutlierTopic
	if r.TopicID != nil {
		topic = *r.TopicID
	}
	return types.Paper{
		ID:             r.ID,
		Title:          r.Title,
		Abstract:       r.Abstract,
		Date:           date,
		Citations:      r.Citations,
		Theme:          r.Theme,
		TopicID:        topic,
		Concepts:       r.Concepts,
		University:     r.University,
		Authors:        r.Authors,
		Journal:        r.Journal,
		DOI:            r.DOI,
		Type:           r.Type,
		SourceType:     r.SourceType,
		RelevanceScore: r.RelevanceScore,
		Confidence:     r.Confidence,
	}, nil
}

func recordOf(p types.Paper) record {
	topic := p.TopicID
	return record{
		ID:             p.ID,
		Title:          p.Title,
		Abstract:       p.Abstract,
		Date:           FormatDate(p.Date),
		Citations:      p.Citations,
		Theme:          p.Theme,
		TopicID:        &topic,
		Concepts:       p.Concepts,
		University:     p.University,
		Authors:        p.Authors,
		Journal:        p.Journal,
		DOI:            p.DOI,
		Type:           p.Type,
		SourceType:     p.SourceType,
		RelevanceScore: p.RelevanceScore,
		Confidence:     p.Confidence,
	}
}

func documentOf(papers []types.Paper) document {
	doc := document{Papers: make([]record, len(papers))}
	for i, p := range papers {
		doc.Papers[i] = recordOf(p)
	}
	return doc
}

func decodeDocument(r io.Reader, unmarshal func([]byte, interface{}) error) ([]types.Paper, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var doc document
	if err := unmarshal(data, &doc); err != nil {
		return nil, err
	}
	papers := make([]types.Paper, 0, len(doc.Papers))
	for _, rec := range doc.Papers {
		p, err := rec.paper()
		if err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	return papers, nil
}
