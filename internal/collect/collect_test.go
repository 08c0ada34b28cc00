// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-trends/internal/httputil"
	"github.com/pdiddy/research-trends/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func testTaxonomy() types.Taxonomy {
	return types.Taxonomy{Themes: []types.ThemeDefinition{
		{Name: "Sonar", Priority: types.PriorityHigh, Keywords: []string{"sonar", "hydrophone", "acoustic"}},
		{Name: "Grid", Priority: types.PriorityMedium, Keywords: []string{"battery", "grid"}},
	}}
}

// fakeOpenAlex serves cursor-paginated works keyed by the first search word.
type fakeOpenAlex struct {
	mu       sync.Mutex
	requests []url.Values
	pages    map[string]map[string]worksResponse // first search word -> cursor -> page
	status   int
}

func (f *fakeOpenAlex) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f.mu.Lock()
	f.requests = append(f.requests, q)
	status := f.status
	f.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}
	first := strings.Fields(q.Get("search"))[0]
	page, ok := f.pages[first][q.Get("cursor")]
	if !ok {
		page = worksResponse{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}

func (f *fakeOpenAlex) start(t *testing.T) {
	t.Helper()
	ts := httptest.NewServer(f)
	old := worksEndpoint
	worksEndpoint = ts.URL
	t.Cleanup(func() {
		worksEndpoint = old
		ts.Close()
	})
}

func sonarPages() map[string]worksResponse {
	return map[string]worksResponse{
		"*": {
			Meta: worksMeta{Count: 3, NextCursor: "c2"},
			Results: []work{
				{
					ID: "https://openalex.org/W1", Title: "Sonar hydrophone acoustic system design",
					PublicationDate: "2024-03-02", CitedByCount: 6, Type: "article",
					Concepts:        []concept{{DisplayName: "Marine engineering"}},
					PrimaryLocation: &location{Source: &source{DisplayName: "J. Ocean Eng.", Type: "journal"}},
				},
				{ID: "https://openalex.org/W2", Title: ""},
			},
		},
		"c2": {
			Meta: worksMeta{Count: 3, NextCursor: "c3"},
			Results: []work{
				{ID: "https://openalex.org/W3", Title: "Shared paper", PublicationYear: 2023, DOI: "https://doi.org/10.1/dup", CitedByCount: 2},
			},
		},
		"c3": {Meta: worksMeta{Count: 3}},
	}
}

func gridPages() map[string]worksResponse {
	return map[string]worksResponse{
		"*": {
			Meta: worksMeta{Count: 2},
			Results: []work{
				{ID: "https://openalex.org/W4", Title: "Shared paper (grid copy)", PublicationDate: "2023-05-01", DOI: "https://doi.org/10.1/dup", CitedByCount: 9},
				{ID: "https://openalex.org/W5", Title: "Battery grid storage", PublicationDate: "2022-01-10"},
			},
		},
	}
}

func fastConfig() types.CollectorConfig {
	return types.CollectorConfig{
		HTTPConfig:        types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "research-trends-test"},
		Email:             "team@example.org",
		RequestsPerSecond: 1000,
		Concurrency:       2,
	}
}

func TestBuildThemeQuery(t *testing.T) {
	context8 := "engineering technology system design development application implementation analysis"
	tests := []struct {
		name     string
		keywords []string
		topN     int
		want     string
	}{
		{"few keywords", []string{"radar", "sonar"}, 8, "radar sonar " + context8},
		{"truncated", []string{"a", "b", "c", "d"}, 2, "a b " + context8},
		{"default topN", []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}, 0, "1 2 3 4 5 6 7 8 " + context8},
		{"no keywords", nil, 8, context8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildThemeQuery(types.ThemeDefinition{Name: "T", Keywords: tt.keywords}, tt.topN)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseWork(t *testing.T) {
	full := work{
		ID:                    "https://openalex.org/W42",
		Type:                  "article",
		Title:                 "  Swarm control  ",
		DOI:                   "https://doi.org/10.5/xyz",
		PublicationDate:       "2024-07-09",
		CitedByCount:          3,
		AbstractInvertedIndex: map[string][]int{"swarms": {0}, "fly": {1}},
		Authorships: []authorship{
			{Author: named{DisplayName: "Ada"}, Institutions: []named{{DisplayName: "UNSW Sydney"}, {DisplayName: "CSIRO"}}},
			{Author: named{DisplayName: "Bob"}, Institutions: []named{{DisplayName: "ANU"}}},
			{Author: named{DisplayName: ""}},
			{Author: named{DisplayName: "C"}}, {Author: named{DisplayName: "D"}},
			{Author: named{DisplayName: "E"}}, {Author: named{DisplayName: "F"}},
		},
		PrimaryLocation: &location{Source: &source{DisplayName: "IEEE Conf.", Type: "conference"}},
		Concepts: []concept{
			{DisplayName: "c1"}, {DisplayName: "c2"}, {DisplayName: "c3"},
			{DisplayName: "c4"}, {DisplayName: "c5"}, {DisplayName: "c6"},
		},
	}

	p, ok := parseWork(full, "Autonomous_Systems")
	require.True(t, ok)
	assert.Equal(t, "W42", p.ID)
	assert.Equal(t, "Swarm control", p.Title)
	assert.Equal(t, "swarms fly", p.Abstract)
	assert.Equal(t, time.Date(2024, 7, 9, 0, 0, 0, 0, time.UTC), p.Date)
	assert.Equal(t, "10.5/xyz", p.DOI)
	assert.Equal(t, "Autonomous_Systems", p.Theme)
	assert.Equal(t, types.OutlierTopic, p.TopicID)
	assert.Equal(t, "UNSW Sydney", p.University)
	assert.Equal(t, []string{"Ada", "Bob", "C", "D", "E"}, p.Authors)
	assert.Equal(t, []string{"c1", "c2", "c3", "c4", "c5"}, p.Concepts)
	assert.Equal(t, "IEEE Conf.", p.Journal)
	assert.Equal(t, "conference", p.SourceType)
	assert.Equal(t, 0.8, p.Confidence)

	yearOnly, ok := parseWork(work{ID: "W7", Title: "t", PublicationYear: 2021}, "x")
	require.True(t, ok)
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), yearOnly.Date)
	assert.Equal(t, 0.4, yearOnly.Confidence)

	rejects := map[string]work{
		"no id":      {Title: "t", PublicationYear: 2020},
		"no title":   {ID: "W1", PublicationYear: 2020},
		"no date":    {ID: "W1", Title: "t"},
		"bad date":   {ID: "W1", Title: "t", PublicationDate: "July 2020"},
		"blank text": {ID: "W1", Title: "   ", PublicationYear: 2020},
	}
	for name, w := range rejects {
		t.Run(name, func(t *testing.T) {
			_, ok := parseWork(w, "x")
			assert.False(t, ok)
		})
	}
}

func TestReconstructAbstract(t *testing.T) {
	tests := []struct {
		name  string
		index map[string][]int
		want  string
	}{
		{"nil", nil, ""},
		{"ordered", map[string][]int{"We": {0}, "propose": {1}, "radar": {2}}, "We propose radar"},
		{"repeated word", map[string][]int{"the": {0, 2}, "ship": {1}, "hull": {3}}, "the ship the hull"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reconstructAbstract(tt.index))
		})
	}
}

func TestFetchThemePaginates(t *testing.T) {
	fake := &fakeOpenAlex{pages: map[string]map[string]worksResponse{"sonar": sonarPages()}}
	fake.start(t)

	cfg := fastConfig()
	cfg.StartDate = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg.EndDate = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	c := New(cfg)

	papers, err := c.FetchTheme(context.Background(), testTaxonomy().Themes[0])
	require.NoError(t, err)

	require.Len(t, papers, 2)
	assert.Equal(t, "W1", papers[0].ID)
	assert.Equal(t, "W3", papers[1].ID)
	assert.Equal(t, "Sonar", papers[1].Theme)

	require.Len(t, fake.requests, 3)
	assert.Equal(t, []string{"*", "c2", "c3"}, []string{
		fake.requests[0].Get("cursor"), fake.requests[1].Get("cursor"), fake.requests[2].Get("cursor"),
	})
	q := fake.requests[0]
	assert.Equal(t, "is_paratext:false,type:journal-article,from_publication_date:2020-01-01,to_publication_date:2024-12-31", q.Get("filter"))
	assert.Equal(t, "cited_by_count:desc", q.Get("sort"))
	assert.Equal(t, "100", q.Get("per-page"))
	assert.Equal(t, "team@example.org", q.Get("mailto"))
	assert.Contains(t, q.Get("select"), "abstract_inverted_index")
	assert.True(t, strings.HasPrefix(q.Get("search"), "sonar hydrophone acoustic engineering"))
}

func TestFetchThemeCap(t *testing.T) {
	fake := &fakeOpenAlex{pages: map[string]map[string]worksResponse{"sonar": sonarPages()}}
	fake.start(t)

	cfg := fastConfig()
	cfg.MaxPerTheme = 1
	papers, err := New(cfg).FetchTheme(context.Background(), testTaxonomy().Themes[0])
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Len(t, fake.requests, 1)
}

func TestFetchThemeErrors(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		fake := &fakeOpenAlex{status: http.StatusInternalServerError}
		fake.start(t)
		_, err := New(fastConfig()).FetchTheme(context.Background(), testTaxonomy().Themes[0])
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 500")
	})

	t.Run("rate limited past retries", func(t *testing.T) {
		fake := &fakeOpenAlex{status: http.StatusTooManyRequests}
		fake.start(t)
		cfg := fastConfig()
		cfg.MaxRetries = 2
		_, err := New(cfg).FetchTheme(context.Background(), testTaxonomy().Themes[0])
		require.Error(t, err)
		assert.Len(t, fake.requests, 3)
	})

	t.Run("no keywords", func(t *testing.T) {
		_, err := New(fastConfig()).FetchTheme(context.Background(), types.ThemeDefinition{Name: "Empty"})
		assert.Error(t, err)
	})

	t.Run("cancelled", func(t *testing.T) {
		fake := &fakeOpenAlex{pages: map[string]map[string]worksResponse{"sonar": sonarPages()}}
		fake.start(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := New(fastConfig()).FetchTheme(ctx, testTaxonomy().Themes[0])
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFetchAll(t *testing.T) {
	fake := &fakeOpenAlex{pages: map[string]map[string]worksResponse{
		"sonar":   sonarPages(),
		"battery": gridPages(),
	}}
	fake.start(t)

	var out bytes.Buffer
	papers, summary, err := New(fastConfig()).FetchAll(context.Background(), testTaxonomy(), &out)
	require.NoError(t, err)

	ids := []string{}
	for _, p := range papers {
		ids = append(ids, p.ID)
	}
	// W3 and W4 share a DOI; the more cited W4 survives.
	assert.Equal(t, []string{"W1", "W4", "W5"}, ids)
	assert.Equal(t, map[string]int{"Sonar": 2, "Grid": 2}, summary.PerTheme)
	assert.Equal(t, 4, summary.Fetched)
	assert.Equal(t, 3, summary.Unique)
	assert.Equal(t, 3, summary.Relevant)
	assert.Contains(t, out.String(), "unique: 3")

	for _, p := range papers {
		if p.ID == "W1" {
			assert.Equal(t, 0.7, p.RelevanceScore)
		}
	}
}

func TestFetchAllRelevanceAndPriority(t *testing.T) {
	fake := &fakeOpenAlex{pages: map[string]map[string]worksResponse{
		"sonar":   sonarPages(),
		"battery": gridPages(),
	}}
	fake.start(t)

	cfg := fastConfig()
	cfg.PriorityOnly = true
	cfg.MinRelevance = 0.5

	var out bytes.Buffer
	papers, summary, err := New(cfg).FetchAll(context.Background(), testTaxonomy(), &out)
	require.NoError(t, err)

	require.Len(t, papers, 1)
	assert.Equal(t, "W1", papers[0].ID)
	assert.Equal(t, map[string]int{"Sonar": 2}, summary.PerTheme)
	for _, q := range fake.requests {
		assert.NotContains(t, q.Get("search"), "battery")
	}
}

func TestFetchAllPropagatesErrors(t *testing.T) {
	fake := &fakeOpenAlex{status: http.StatusBadRequest}
	fake.start(t)

	var out bytes.Buffer
	_, _, err := New(fastConfig()).FetchAll(context.Background(), testTaxonomy(), &out)
	assert.Error(t, err)
}
