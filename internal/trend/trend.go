// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trend measures publication growth per theme and per topic and
// ranks themes by strategic priority.
package trend

import (
	"sort"

	"go.uber.org/zap"

	"github.com/pdiddy/research-trends/pkg/types"
)

// Defaults for emerging-topic detection and aggregation.
const (
	DefaultEmergingThreshold = 0.5
	DefaultRecentQuarters    = 2

	topTopics       = 5
	topUniversities = 5

	// volumeSaturation is the paper count at which the volume factor of a
	// strategic priority reaches 1.
	volumeSaturation = 1000.0

	highPriorityAbove   = 0.75
	mediumPriorityAbove = 0.3
)

// CalculateGrowthRate returns the mean period-over-period relative change of
// counts. Transitions out of a zero count are skipped. Fewer than two counts,
// or no defined transition, yields 0.
func CalculateGrowthRate(counts []int) float64 {
	if len(counts) < 2 {
		return 0
	}
	var sum float64
	n := 0
	for i := 1; i < len(counts); i++ {
		prev := counts[i-1]
		if prev <= 0 {
			continue
		}
		sum += float64(counts[i]-prev) / float64(prev)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Analyzer computes theme trends, emerging topics, and strategic priorities.
type Analyzer struct {
	mapping  types.ThemeMapping
	taxonomy types.Taxonomy
	log      *zap.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.log = l
		}
	}
}

// New returns an Analyzer. A nil mapping behaves as an empty one.
func New(mapping types.ThemeMapping, taxonomy types.Taxonomy, opts ...Option) *Analyzer {
	if mapping == nil {
		mapping = types.ThemeMapping{}
	}
	a := &Analyzer{mapping: mapping, taxonomy: taxonomy, log: zap.NewNop()}
	for _, o := range opts {
		o(a)
	}
	return a
}

// ThemeOf resolves a paper's theme: its own theme when set, else the theme
// of its topic, else ThemeUncategorized.
func (a *Analyzer) ThemeOf(p types.Paper) string {
	if p.Theme != "" {
		return p.Theme
	}
	return a.mapping.ThemeOf(p.TopicID, types.ThemeUncategorized)
}

func (a *Analyzer) groupByTheme(papers []types.Paper) map[string][]types.Paper {
	groups := make(map[string][]types.Paper)
	for _, p := range papers {
		th := a.ThemeOf(p)
		groups[th] = append(groups[th], p)
	}
	return groups
}

// AnalyzeThemeTrends returns exactly one record per taxonomy theme. Themes
// with no papers get a zero record.
func (a *Analyzer) AnalyzeThemeTrends(papers []types.Paper) map[string]types.ThemeTrendRecord {
	ordered := a.AnalyzeThemeTrendsOrdered(papers)
	out := make(map[string]types.ThemeTrendRecord, len(ordered))
	for _, r := range ordered {
		out[r.Theme] = r
	}
	return out
}

// AnalyzeThemeTrendsOrdered is AnalyzeThemeTrends in taxonomy order.
func (a *Analyzer) AnalyzeThemeTrendsOrdered(papers []types.Paper) []types.ThemeTrendRecord {
	groups := a.groupByTheme(papers)
	records := make([]types.ThemeTrendRecord, 0, a.taxonomy.Len())

	for _, th := range a.taxonomy.Themes {
		rec := themeRecord(th.Name, groups[th.Name])
		records = append(records, rec)
		a.log.Info("theme trend",
			zap.String("theme", rec.Theme),
			zap.Int("papers", rec.TotalPapers),
			zap.Float64("growth_rate", rec.GrowthRate),
		)
	}
	if n := len(groups[types.ThemeUncategorized]); n > 0 {
		a.log.Info("papers without a theme", zap.Int("count", n))
	}
	return records
}

func themeRecord(theme string, papers []types.Paper) types.ThemeTrendRecord {
	rec := types.ThemeTrendRecord{
		Theme:           theme,
		QuarterlyCounts: types.QuarterlyCounts{},
		TopTopics:       []types.TopicCount{},
		Universities:    []types.EntityCount{},
	}
	if len(papers) == 0 {
		return rec
	}

	rec.TotalPapers = len(papers)
	rec.QuarterlyCounts = QuarterlySeries(papers)
	rec.GrowthRate = CalculateGrowthRate(rec.QuarterlyCounts.Counts())

	topicCounts := make(map[int]int)
	uniCounts := make(map[string]int)
	for _, p := range papers {
		topicCounts[p.TopicID]++
		if p.University != "" {
			uniCounts[p.University]++
		}
	}

	for id, c := range topicCounts {
		rec.TopTopics = append(rec.TopTopics, types.TopicCount{TopicID: id, Count: c})
	}
	sort.Slice(rec.TopTopics, func(i, j int) bool {
		x, y := rec.TopTopics[i], rec.TopTopics[j]
		if x.Count != y.Count {
			return x.Count > y.Count
		}
		return x.TopicID < y.TopicID
	})
	if len(rec.TopTopics) > topTopics {
		rec.TopTopics = rec.TopTopics[:topTopics]
	}

	for name, c := range uniCounts {
		rec.Universities = append(rec.Universities, types.EntityCount{Name: name, Count: c})
	}
	sortEntities(rec.Universities)
	if len(rec.Universities) > topUniversities {
		rec.Universities = rec.Universities[:topUniversities]
	}
	return rec
}

func sortEntities(es []types.EntityCount) {
	sort.Slice(es, func(i, j int) bool {
		if es[i].Count != es[j].Count {
			return es[i].Count > es[j].Count
		}
		return es[i].Name < es[j].Name
	})
}

// IdentifyEmergingTopics returns non-outlier topics whose growth over their
// last recentQuarters quarterly counts exceeds threshold. Topics need at
// least two non-empty quarters. A recentQuarters of 0 or less uses the whole
// series. Results are sorted by growth, descending, ties by topic id.
func (a *Analyzer) IdentifyEmergingTopics(papers []types.Paper, threshold float64, recentQuarters int) []types.EmergingTopic {
	byTopic := make(map[int][]types.Paper)
	for _, p := range papers {
		if p.IsOutlier() {
			continue
		}
		byTopic[p.TopicID] = append(byTopic[p.TopicID], p)
	}

	ids := make([]int, 0, len(byTopic))
	for id := range byTopic {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	emerging := []types.EmergingTopic{}
	for _, id := range ids {
		counts := QuarterlySeries(byTopic[id]).Counts()
		if len(counts) < 2 {
			continue
		}

		recent := counts
		if recentQuarters > 0 && recentQuarters < len(counts) {
			recent = counts[len(counts)-recentQuarters:]
		}
		growth := CalculateGrowthRate(recent)
		if growth <= threshold {
			continue
		}

		et := types.EmergingTopic{
			TopicID:       id,
			Theme:         types.ThemeUnknown,
			GrowthRate:    growth,
			Keywords:      []string{},
			RecentCount:   counts[len(counts)-1],
			PreviousCount: counts[len(counts)-2],
		}
		if tm, ok := a.mapping.Lookup(id); ok {
			if tm.Theme != "" {
				et.Theme = tm.Theme
			}
			if tm.Keywords != nil {
				et.Keywords = tm.Keywords
			}
		}
		emerging = append(emerging, et)
	}

	sort.SliceStable(emerging, func(i, j int) bool {
		return emerging[i].GrowthRate > emerging[j].GrowthRate
	})

	a.log.Info("emerging topics identified",
		zap.Int("count", len(emerging)),
		zap.Float64("threshold", threshold),
		zap.Int("recent_quarters", recentQuarters),
	)
	return emerging
}

// CalculateStrategicPriority scores each theme as
// max(0, growth) × tier weight × (1 + min(1, papers/1000)) and returns the
// themes by score, descending. Ties keep input order. Themes missing from
// the taxonomy use the MEDIUM tier.
func (a *Analyzer) CalculateStrategicPriority(trends []types.ThemeTrendRecord) []types.StrategicPriority {
	out := make([]types.StrategicPriority, 0, len(trends))
	for _, tr := range trends {
		tier := types.PriorityMedium
		if th, ok := a.taxonomy.Lookup(tr.Theme); ok && th.Priority.Valid() {
			tier = th.Priority
		}

		growth := tr.GrowthRate
		if growth < 0 {
			growth = 0
		}
		volume := float64(tr.TotalPapers) / volumeSaturation
		if volume > 1 {
			volume = 1
		}
		score := growth * tier.Weight() * (1 + volume)

		out = append(out, types.StrategicPriority{
			Theme:         tr.Theme,
			PriorityScore: score,
			Category:      categorize(score),
			GrowthRate:    tr.GrowthRate,
			TotalPapers:   tr.TotalPapers,
			ThemePriority: tier,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PriorityScore > out[j].PriorityScore
	})
	a.log.Info("strategic priorities calculated", zap.Int("themes", len(out)))
	return out
}

func categorize(score float64) types.Priority {
	switch {
	case score > highPriorityAbove:
		return types.PriorityHigh
	case score > mediumPriorityAbove:
		return types.PriorityMedium
	default:
		return types.PriorityLow
	}
}

// EntityRank is one contributing entity's output within a theme.
type EntityRank struct {
	Name       string `json:"name" yaml:"name"`
	PaperCount int    `json:"paper_count" yaml:"paper_count"`

	// ActiveDays spans the entity's earliest to latest dated paper.
	ActiveDays int `json:"active_days" yaml:"active_days"`
}

// RankEntitiesByTheme ranks universities by paper count within theme,
// ties by name. Papers without a university are ignored.
func (a *Analyzer) RankEntitiesByTheme(papers []types.Paper, theme string) []EntityRank {
	type span struct {
		count    int
		min, max int64
		dated    bool
	}
	spans := make(map[string]*span)
	for _, p := range papers {
		if p.University == "" || a.ThemeOf(p) != theme {
			continue
		}
		s, ok := spans[p.University]
		if !ok {
			s = &span{}
			spans[p.University] = s
		}
		s.count++
		if p.Date.IsZero() {
			continue
		}
		day := p.Date.Unix() / 86400
		if !s.dated || day < s.min {
			s.min = day
		}
		if !s.dated || day > s.max {
			s.max = day
		}
		s.dated = true
	}

	ranks := make([]EntityRank, 0, len(spans))
	for name, s := range spans {
		ranks = append(ranks, EntityRank{Name: name, PaperCount: s.count, ActiveDays: int(s.max - s.min)})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].PaperCount != ranks[j].PaperCount {
			return ranks[i].PaperCount > ranks[j].PaperCount
		}
		return ranks[i].Name < ranks[j].Name
	})
	return ranks
}

// Bundle runs the full trend analysis.
func (a *Analyzer) Bundle(papers []types.Paper, threshold float64, recentQuarters int) types.TrendBundle {
	ordered := a.AnalyzeThemeTrendsOrdered(papers)
	trends := make(map[string]types.ThemeTrendRecord, len(ordered))
	for _, r := range ordered {
		trends[r.Theme] = r
	}
	return types.TrendBundle{
		ThemeTrends:         trends,
		EmergingTopics:      a.IdentifyEmergingTopics(papers, threshold, recentQuarters),
		StrategicPriorities: a.CalculateStrategicPriority(ordered),
	}
}
