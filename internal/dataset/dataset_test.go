// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-trends/pkg/types"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func samplePapers() []types.Paper {
	return []types.Paper{
		{
			ID:             "W1",
			Title:          "Swarm drones, revisited",
			Abstract:       "We study \"swarms\", at scale.",
			Date:           day("2024-02-10"),
			Citations:      12,
			Theme:          "Autonomous_Systems",
			TopicID:        3,
			Concepts:       []string{"Drone", "Swarm robotics"},
			University:     "University of Oxford",
			Authors:        []string{"A. Smith", "B. Jones"},
			Journal:        "Robotics Letters",
			DOI:            "10.1/abc",
			Type:           "article",
			SourceType:     "journal",
			RelevanceScore: 0.75,
			Confidence:     1,
		},
		{
			ID:      "W2",
			Title:   "Untitled outlier",
			TopicID: types.OutlierTopic,
		},
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.csv", FormatCSV, false},
		{"a.JSON", FormatJSON, false},
		{"a.yml", FormatYAML, false},
		{"a.yaml", FormatYAML, false},
		{"a.parquet", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatOf(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteLoadRoundTrip(t *testing.T) {
	for _, ext := range []string{".csv", ".json", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "papers"+ext)
			require.NoError(t, Write(path, samplePapers()))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, samplePapers(), got)
		})
	}
}

func TestReadCSVAliasesAndDefaults(t *testing.T) {
	in := "openalex_id,title,publication_date,cited_by_count,concepts\n" +
		"W9,Hull design,2023-05-01,3,Hull; ; Naval architecture\n" +
		"W10,No date,,,\n"

	got, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "W9", got[0].ID)
	assert.Equal(t, day("2023-05-01"), got[0].Date)
	assert.Equal(t, 3, got[0].Citations)
	assert.Equal(t, []string{"Hull", "Naval architecture"}, got[0].Concepts)
	assert.Equal(t, types.OutlierTopic, got[0].TopicID)

	assert.True(t, got[1].Date.IsZero())
	assert.Nil(t, got[1].Concepts)
	assert.Zero(t, got[1].Citations)
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"missing title column", "id,abstract\nW1,x\n"},
		{"bad date", "id,title,date\nW1,t,01/02/2024\n"},
		{"negative citations", "id,title,citations\nW1,t,-4\n"},
		{"bad topic", "id,title,topic_id\nW1,t,seven\n"},
		{"bad score", "id,title,relevance_score\nW1,t,high\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestReadCSVEmpty(t *testing.T) {
	got, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadJSONMissingTopicIsOutlier(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"papers":[{"id":"W1","title":"t","date":"2024-01-02T00:00:00Z"}]}`), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, types.OutlierTopic, got[0].TopicID)
	assert.Equal(t, day("2024-01-02"), got[0].Date)
}

func TestLoadDocumentRejectsNegativeCitations(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{name: "json", file: "p.json", body: `{"papers":[{"id":"W1","title":"t","citations":-3}]}`},
		{name: "yaml", file: "p.yaml", body: "papers:\n  - id: W1\n    title: t\n    citations: -3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid citations")
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestPublicationConfidence(t *testing.T) {
	tests := []struct {
		name       string
		sourceType string
		workType   string
		citations  int
		want       float64
	}{
		{"journal well cited", "journal", "article", 5, 1.0},
		{"journal cited once", "Journal", "article", 1, 0.8},
		{"journal uncited", "journal", "", 0, 0.6},
		{"conference well cited", "conference", "", 3, 0.8},
		{"conference cited", "conference", "", 2, 0.6},
		{"conference uncited", "conference", "", 0, 0.4},
		{"preprint", "repository", "preprint", 50, 0.2},
		{"arxiv", "", "arXiv paper", 0, 0.2},
		{"working paper", "", "working-paper", 9, 0.4},
		{"report", "", "report", 0, 0.4},
		{"review", "", "review", 6, 1.0},
		{"other well cited", "", "article", 5, 0.8},
		{"other cited", "", "article", 1, 0.6},
		{"other uncited", "", "", 0, 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PublicationConfidence(tt.sourceType, tt.workType, tt.citations))
		})
	}
}

func TestDeduplicate(t *testing.T) {
	papers := []types.Paper{
		{ID: "A", DOI: "10.1/x", Citations: 2},
		{ID: "B", DOI: "https://doi.org/10.1/X", Citations: 9},
		{ID: "C", DOI: "10.1/x", Citations: 9},
		{ID: "D"},
		{ID: "D", Citations: 100},
		{ID: "E", DOI: "10.2/y"},
		{ID: "B", DOI: "10.3/z"},
	}

	got := Deduplicate(papers)

	var ids []string
	for _, p := range got {
		ids = append(ids, p.ID+":"+p.DOI)
	}
	assert.Equal(t, []string{"B:https://doi.org/10.1/X", "D:", "E:10.2/y"}, ids)
}

func TestDeduplicateEmpty(t *testing.T) {
	assert.Empty(t, Deduplicate(nil))
}

func TestFilterByCitations(t *testing.T) {
	papers := []types.Paper{{ID: "a", Citations: 0}, {ID: "b", Citations: 3}, {ID: "c", Citations: 10}}

	assert.Len(t, FilterByCitations(papers, 0), 3)
	got := FilterByCitations(papers, 3)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Empty(t, FilterByCitations(papers, 11))
}
