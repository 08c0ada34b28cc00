// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trend

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-trends/pkg/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// quarterStart returns the first day of the i-th quarter after 2023Q1.
func quarterStart(i int) time.Time {
	return date(2023, time.January, 1).AddDate(0, 3*i, 0)
}

// papersPerQuarter builds papers for one topic with counts[i] papers in
// quarter i.
func papersPerQuarter(theme string, topic int, counts ...int) []types.Paper {
	var out []types.Paper
	for q, n := range counts {
		for i := 0; i < n; i++ {
			out = append(out, types.Paper{
				ID:      theme,
				Theme:   theme,
				TopicID: topic,
				Date:    quarterStart(q).AddDate(0, 0, i%60),
			})
		}
	}
	return out
}

func threeThemes() types.Taxonomy {
	return types.Taxonomy{Themes: []types.ThemeDefinition{
		{Name: "A", Keywords: []string{"x"}, Priority: types.PriorityHigh},
		{Name: "B", Keywords: []string{"y"}, Priority: types.PriorityHigh},
		{Name: "C", Keywords: []string{"z"}, Priority: types.PriorityHigh},
	}}
}

func TestCalculateGrowthRate(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		want   float64
	}{
		{name: "empty", counts: nil, want: 0},
		{name: "single", counts: []int{5}, want: 0},
		{name: "doubling", counts: []int{10, 20}, want: 1},
		{name: "skips zero denominator", counts: []int{10, 0, 10}, want: -1},
		{name: "all transitions from zero", counts: []int{0, 0, 4}, want: 0},
		{name: "steady doubling", counts: []int{10, 20, 40, 80}, want: 1},
		{name: "mixed", counts: []int{4, 2, 3}, want: (-0.5 + 0.5) / 2},
		{name: "flat", counts: []int{7, 7, 7}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CalculateGrowthRate(tt.counts), 1e-12)
		})
	}
}

func TestQuarterOf(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{date(2024, time.January, 1), "2024Q1"},
		{date(2024, time.March, 31), "2024Q1"},
		{date(2024, time.April, 1), "2024Q2"},
		{date(2024, time.September, 30), "2024Q3"},
		{date(2024, time.December, 31), "2024Q4"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, QuarterOf(tt.in).String())
		})
	}
	assert.True(t, Quarter{2023, 4}.Before(Quarter{2024, 1}))
	assert.False(t, Quarter{2024, 2}.Before(Quarter{2024, 1}))
}

func TestQuarterlySeriesSkipsEmptyQuarters(t *testing.T) {
	papers := []types.Paper{
		{Date: date(2024, time.May, 2)},
		{Date: date(2023, time.February, 1)},
		{Date: date(2023, time.March, 1)},
		{}, // undated
	}
	assert.Equal(t, types.QuarterlyCounts{
		{Quarter: "2023Q1", Count: 2},
		{Quarter: "2024Q2", Count: 1},
	}, QuarterlySeries(papers))
}

func TestAnalyzeThemeTrendsEveryThemePresent(t *testing.T) {
	a := New(nil, threeThemes())

	for _, papers := range [][]types.Paper{nil, papersPerQuarter("A", 0, 3)} {
		trends := a.AnalyzeThemeTrends(papers)
		require.Len(t, trends, 3)
		for _, name := range []string{"A", "B", "C"} {
			assert.Contains(t, trends, name)
		}
		assert.Equal(t, 0, trends["B"].TotalPapers)
		assert.Equal(t, 0.0, trends["B"].GrowthRate)
		assert.Empty(t, trends["B"].QuarterlyCounts)
	}
}

func TestAnalyzeThemeTrends(t *testing.T) {
	mapping := types.ThemeMapping{
		"7": {Theme: "B"},
	}
	papers := append(papersPerQuarter("A", 1, 10, 20, 40, 80),
		// Topic-mapped paper with no theme of its own.
		types.Paper{TopicID: 7, Date: date(2023, time.June, 1), University: "MIT"},
		types.Paper{TopicID: 99, Date: date(2023, time.June, 1)},
	)
	for i := range papers[:150] {
		switch {
		case i < 6:
			papers[i].University = "Oxford"
			papers[i].TopicID = 2
		case i < 9:
			papers[i].University = "Cambridge"
		}
	}

	trends := New(mapping, threeThemes()).AnalyzeThemeTrends(papers)

	a := trends["A"]
	assert.Equal(t, 150, a.TotalPapers)
	assert.InDelta(t, 1.0, a.GrowthRate, 1e-12)
	assert.Equal(t, []int{10, 20, 40, 80}, a.QuarterlyCounts.Counts())
	assert.Equal(t, "2023Q1", a.QuarterlyCounts[0].Quarter)
	assert.Equal(t, []types.TopicCount{{TopicID: 1, Count: 144}, {TopicID: 2, Count: 6}}, a.TopTopics)
	assert.Equal(t, []types.EntityCount{{Name: "Oxford", Count: 6}, {Name: "Cambridge", Count: 3}}, a.Universities)

	b := trends["B"]
	assert.Equal(t, 1, b.TotalPapers)
	assert.Equal(t, []types.EntityCount{{Name: "MIT", Count: 1}}, b.Universities)

	assert.Equal(t, 0, trends["C"].TotalPapers)
}

func TestAnalyzeThemeTrendsCapsTopLists(t *testing.T) {
	var papers []types.Paper
	for topic := 0; topic < 8; topic++ {
		for i := 0; i <= topic; i++ {
			papers = append(papers, types.Paper{
				Theme:      "A",
				TopicID:    topic,
				University: string(rune('a' + topic)),
				Date:       date(2024, time.January, 1),
			})
		}
	}

	rec := New(nil, threeThemes()).AnalyzeThemeTrends(papers)["A"]
	require.Len(t, rec.TopTopics, 5)
	assert.Equal(t, types.TopicCount{TopicID: 7, Count: 8}, rec.TopTopics[0])
	assert.Equal(t, types.TopicCount{TopicID: 3, Count: 4}, rec.TopTopics[4])
	require.Len(t, rec.Universities, 5)
	assert.Equal(t, "h", rec.Universities[0].Name)
}

func TestAnalyzeThemeTrendsOrdered(t *testing.T) {
	recs := New(nil, threeThemes()).AnalyzeThemeTrendsOrdered(nil)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{recs[0].Theme, recs[1].Theme, recs[2].Theme})
}

func TestAnalyzeThemeTrendsIdempotent(t *testing.T) {
	a := New(nil, threeThemes())
	papers := papersPerQuarter("A", 1, 3, 5, 2)
	assert.Equal(t, a.AnalyzeThemeTrends(papers), a.AnalyzeThemeTrends(papers))
}

func TestIdentifyEmergingTopics(t *testing.T) {
	mapping := types.ThemeMapping{
		"1": {Theme: "A", Keywords: []string{"radar", "sonar"}},
		"2": {Theme: "B"},
	}
	var papers []types.Paper
	papers = append(papers, papersPerQuarter("", 1, 5, 5, 10)...) // last two: 5 to 10
	papers = append(papers, papersPerQuarter("", 2, 2, 4, 7)...)  // 0.75
	papers = append(papers, papersPerQuarter("", 3, 10, 12)...)   // 0.2, below
	papers = append(papers, papersPerQuarter("", 4, 9)...)        // one quarter
	papers = append(papers, papersPerQuarter("", 5, 1, 3)...)     // 2.0, unmapped
	papers = append(papers, papersPerQuarter("", -1, 1, 50)...)   // outlier

	got := New(mapping, threeThemes()).IdentifyEmergingTopics(papers, DefaultEmergingThreshold, DefaultRecentQuarters)
	require.Len(t, got, 3)

	assert.Equal(t, types.EmergingTopic{
		TopicID: 5, Theme: types.ThemeUnknown, GrowthRate: 2, Keywords: []string{}, RecentCount: 3, PreviousCount: 1,
	}, got[0])
	assert.Equal(t, types.EmergingTopic{
		TopicID: 1, Theme: "A", GrowthRate: 1, Keywords: []string{"radar", "sonar"}, RecentCount: 10, PreviousCount: 5,
	}, got[1])
	assert.Equal(t, 2, got[2].TopicID)
	assert.InDelta(t, 0.75, got[2].GrowthRate, 1e-12)
}

func TestIdentifyEmergingTopicsTiesByTopicID(t *testing.T) {
	var papers []types.Paper
	papers = append(papers, papersPerQuarter("", 9, 1, 2)...)
	papers = append(papers, papersPerQuarter("", 3, 1, 2)...)

	got := New(nil, threeThemes()).IdentifyEmergingTopics(papers, 0.5, 2)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].TopicID)
	assert.Equal(t, 9, got[1].TopicID)
}

func TestIdentifyEmergingTopicsEmpty(t *testing.T) {
	got := New(nil, threeThemes()).IdentifyEmergingTopics(nil, 0.5, 2)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCalculateStrategicPriority(t *testing.T) {
	tax := threeThemes()
	tax.Themes[1].Priority = types.PriorityLow
	a := New(nil, tax)

	got := a.CalculateStrategicPriority([]types.ThemeTrendRecord{
		{Theme: "C", GrowthRate: -0.4, TotalPapers: 10},
		{Theme: "B", GrowthRate: 1.0, TotalPapers: 2000},
		{Theme: "A", GrowthRate: 0.1, TotalPapers: 0},
		{Theme: "Z", GrowthRate: 0.5, TotalPapers: 0},
		{Theme: "Y", GrowthRate: 0, TotalPapers: 0},
	})
	require.Len(t, got, 5)

	// B: 1.0*0.5*2 = 1.0; Z: 0.5*1.0 = 0.5; A: 0.1*1.5 = 0.15; C, Y: 0.
	assert.Equal(t, "B", got[0].Theme)
	assert.InDelta(t, 1.0, got[0].PriorityScore, 1e-12)
	assert.Equal(t, types.PriorityHigh, got[0].Category)
	assert.Equal(t, types.PriorityLow, got[0].ThemePriority)

	assert.Equal(t, "Z", got[1].Theme)
	assert.Equal(t, types.PriorityMedium, got[1].Category)
	assert.Equal(t, types.PriorityMedium, got[1].ThemePriority)

	assert.Equal(t, "A", got[2].Theme)
	assert.InDelta(t, 0.15, got[2].PriorityScore, 1e-9)
	assert.Equal(t, types.PriorityLow, got[2].Category)

	assert.Equal(t, "C", got[3].Theme, "ties keep input order")
	assert.Equal(t, 0.0, got[3].PriorityScore)
	assert.Equal(t, -0.4, got[3].GrowthRate)
	assert.Equal(t, "Y", got[4].Theme)

	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].PriorityScore, got[i].PriorityScore)
	}
}

func TestEndToEndPriority(t *testing.T) {
	a := New(nil, threeThemes())
	papers := papersPerQuarter("A", 0, 10, 20, 40, 80)

	trends := a.AnalyzeThemeTrendsOrdered(papers)
	require.Equal(t, "A", trends[0].Theme)
	assert.InDelta(t, 1.0, trends[0].GrowthRate, 1e-12)
	assert.Equal(t, 150, trends[0].TotalPapers)

	priorities := a.CalculateStrategicPriority(trends)
	require.Len(t, priorities, 3)
	assert.Equal(t, "A", priorities[0].Theme)
	assert.InDelta(t, 1.725, priorities[0].PriorityScore, 1e-12)
	assert.Equal(t, types.PriorityHigh, priorities[0].Category)
	assert.Equal(t, "B", priorities[1].Theme)
	assert.Equal(t, "C", priorities[2].Theme)
}

func TestRankEntitiesByTheme(t *testing.T) {
	mapping := types.ThemeMapping{"4": {Theme: "A"}}
	papers := []types.Paper{
		{Theme: "A", University: "Oxford", Date: date(2024, time.January, 1)},
		{Theme: "A", University: "Oxford", Date: date(2024, time.January, 31)},
		{TopicID: 4, University: "Bath", Date: date(2024, time.March, 1)},
		{Theme: "A", University: "Aston"},
		{Theme: "B", University: "Oxford", Date: date(2020, time.January, 1)},
		{Theme: "A"},
	}

	got := New(mapping, threeThemes()).RankEntitiesByTheme(papers, "A")
	assert.Equal(t, []EntityRank{
		{Name: "Oxford", PaperCount: 2, ActiveDays: 30},
		{Name: "Aston", PaperCount: 1, ActiveDays: 0},
		{Name: "Bath", PaperCount: 1, ActiveDays: 0},
	}, got)
}

func TestBundleJSONShape(t *testing.T) {
	a := New(nil, threeThemes())
	bundle := a.Bundle(papersPerQuarter("A", 0, 1, 2), 0.5, 2)

	data, err := json.Marshal(bundle)
	require.NoError(t, err)

	var raw map[string]map[string]interface{}
	var generic map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &generic))
	require.NoError(t, json.Unmarshal(generic["theme_trends"], &raw))
	assert.Equal(t, map[string]interface{}{"2023Q1": 1.0, "2023Q2": 2.0}, raw["A"]["quarterly_counts"])
	assert.Equal(t, map[string]interface{}{}, raw["B"]["quarterly_counts"])
	assert.Len(t, bundle.EmergingTopics, 1)
	assert.Len(t, bundle.StrategicPriorities, 3)
}
