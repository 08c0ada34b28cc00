// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package emerging ranks topics by emergingness, a composite of how recent,
// how fast-growing, and how large each topic is, and names the top topics.
package emerging

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-trends/internal/trend"
	"github.com/pdiddy/research-trends/pkg/types"
)

// Defaults for IdentifyEmergingTopics.
const (
	DefaultMinEmergingness = 0.5
	DefaultTopN            = 20

	// decayMonths is the e-folding age of the recency decay.
	decayMonths  = 12.0
	daysPerMonth = 30.0

	// neutralGrowth is the growth score of a topic with fewer than two
	// active quarters.
	neutralGrowth = 0.5
	dateLayout    = "2006-01-02"
)

// Weights are the composite weights of the three sub-scores.
type Weights struct {
	Recency float64 `json:"recency" yaml:"recency"`
	Growth  float64 `json:"growth" yaml:"growth"`
	Volume  float64 `json:"volume" yaml:"volume"`
}

// DefaultWeights returns 0.4 recency, 0.4 growth, 0.2 volume.
func DefaultWeights() Weights {
	return Weights{Recency: 0.4, Growth: 0.4, Volume: 0.2}
}

// ErrInvalidWeights is wrapped by Validate failures.
var ErrInvalidWeights = errors.New("invalid emergingness weights")

// weightSumTolerance absorbs float drift in sums such as 0.4+0.4+0.2.
const weightSumTolerance = 1e-9

func (w Weights) sum() float64 { return w.Recency + w.Growth + w.Volume }

// Validate requires finite, non-negative weights that sum to 1, which keeps
// the composite in [0,1].
func (w Weights) Validate() error {
	for _, x := range []float64{w.Recency, w.Growth, w.Volume} {
		if x < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("weights %+v: each weight must be a non-negative number: %w", w, ErrInvalidWeights)
		}
	}
	if math.Abs(w.sum()-1) > weightSumTolerance {
		return fmt.Errorf("weights %+v sum to %g, want 1: %w", w, w.sum(), ErrInvalidWeights)
	}
	return nil
}

// normalized rescales w to sum to 1. Negative, non-finite, or all-zero
// weights fall back to DefaultWeights.
func (w Weights) normalized() (Weights, bool) {
	for _, x := range []float64{w.Recency, w.Growth, w.Volume} {
		if x < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
			return DefaultWeights(), false
		}
	}
	total := w.sum()
	if total <= 0 || math.IsInf(total, 0) {
		return DefaultWeights(), false
	}
	if math.Abs(total-1) <= weightSumTolerance {
		return w, true
	}
	return Weights{Recency: w.Recency / total, Growth: w.Growth / total, Volume: w.Volume / total}, true
}

// Scorer computes emergingness over a fixed paper dataset.
type Scorer struct {
	mapping types.ThemeMapping
	weights Weights
	log     *zap.Logger

	byTopic map[int][]types.Paper
	// topicCounts holds the paper count of every topic id, outlier included.
	topicCounts []int
	latest      time.Time
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithWeights overrides the composite weights. They are rescaled to sum
// to 1; unusable weights are replaced by DefaultWeights.
func WithWeights(w Weights) Option {
	return func(s *Scorer) { s.weights = w }
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scorer) {
		if l != nil {
			s.log = l
		}
	}
}

// New indexes papers by topic. The reference date for recency is the latest
// paper date in the dataset.
func New(papers []types.Paper, mapping types.ThemeMapping, opts ...Option) *Scorer {
	if mapping == nil {
		mapping = types.ThemeMapping{}
	}
	s := &Scorer{
		mapping: mapping,
		weights: DefaultWeights(),
		log:     zap.NewNop(),
		byTopic: make(map[int][]types.Paper),
	}
	for _, o := range opts {
		o(s)
	}
	w, ok := s.weights.normalized()
	if !ok {
		s.log.Warn("unusable emergingness weights, using defaults", zap.Any("weights", s.weights))
	}
	s.weights = w

	for _, p := range papers {
		s.byTopic[p.TopicID] = append(s.byTopic[p.TopicID], p)
		if p.Date.After(s.latest) {
			s.latest = p.Date
		}
	}
	s.topicCounts = make([]int, 0, len(s.byTopic))
	for _, ps := range s.byTopic {
		s.topicCounts = append(s.topicCounts, len(ps))
	}

	s.log.Info("emergingness scorer initialized",
		zap.Int("papers", len(papers)),
		zap.Int("topics", len(s.byTopic)),
		zap.Time("latest_date", s.latest),
	)
	return s
}

// CalculateEmergingnessScore scores one topic. A topic with no papers
// returns a zero record.
func (s *Scorer) CalculateEmergingnessScore(topicID int) types.EmergingTopicRecord {
	rec := types.EmergingTopicRecord{TopicID: topicID}
	papers := s.byTopic[topicID]
	if len(papers) == 0 {
		return rec
	}

	rec.PaperCount = len(papers)
	rec.Recency = s.recency(papers)
	rec.Growth, rec.GrowthRate = growth(papers)
	rec.Volume = s.volume(len(papers))
	rec.Emergingness = s.weights.Recency*rec.Recency +
		s.weights.Growth*rec.Growth +
		s.weights.Volume*rec.Volume

	var citations int
	var latest time.Time
	for _, p := range papers {
		citations += p.Citations
		if p.Date.After(latest) {
			latest = p.Date
		}
	}
	rec.AvgCitations = float64(citations) / float64(len(papers))
	if !latest.IsZero() {
		rec.LatestDate = latest.Format(dateLayout)
	}
	return rec
}

// recency averages exp(-age/12) over dated papers, with age in 30-day
// months before the dataset's latest date.
func (s *Scorer) recency(papers []types.Paper) float64 {
	var sum float64
	n := 0
	for _, p := range papers {
		if p.Date.IsZero() {
			continue
		}
		days := math.Floor(s.latest.Sub(p.Date).Hours() / 24)
		sum += math.Exp(-(days / daysPerMonth) / decayMonths)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// growth returns the normalized growth score and the raw relative change in
// percent. With four or more active quarters it compares the mean of the
// last two to the mean of the two before; with two or three it compares the
// last quarter to the first.
func growth(papers []types.Paper) (score, ratePercent float64) {
	counts := trend.QuarterlySeries(papers).Counts()
	n := len(counts)

	switch {
	case n >= 4:
		recent := float64(counts[n-1]+counts[n-2]) / 2
		older := float64(counts[n-3]+counts[n-4]) / 2
		if older == 0 {
			if recent > 0 {
				return 1, 0
			}
			return 0, 0
		}
		rate := (recent - older) / older
		return normalize(rate), rate * 100
	case n >= 2:
		first := float64(counts[0])
		rate := (float64(counts[n-1]) - first) / math.Max(first, 1)
		return normalize(rate), rate * 100
	default:
		return neutralGrowth, 0
	}
}

// normalize maps a relative change onto [0,1]; +200% or more scores 1.
func normalize(rate float64) float64 {
	return math.Min(math.Max(rate/2+0.5, 0), 1)
}

// volume is the fraction of topics whose paper count is at most count.
func (s *Scorer) volume(count int) float64 {
	if len(s.topicCounts) == 0 {
		return 0
	}
	n := 0
	for _, c := range s.topicCounts {
		if c <= count {
			n++
		}
	}
	return float64(n) / float64(len(s.topicCounts))
}

// IdentifyEmergingTopics scores every non-outlier topic, keeps those at or
// above minEmergingness, and returns the topN best, descending. Ties keep
// ascending topic id. A topN of 0 or less returns every qualifying topic.
func (s *Scorer) IdentifyEmergingTopics(minEmergingness float64, topN int) []types.EmergingTopicRecord {
	ids := make([]int, 0, len(s.byTopic))
	for id := range s.byTopic {
		if id != types.OutlierTopic {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)

	out := []types.EmergingTopicRecord{}
	for _, id := range ids {
		rec := s.CalculateEmergingnessScore(id)
		rec.Theme = types.ThemeUnknown
		if tm, ok := s.mapping.Lookup(id); ok {
			rec.Theme = tm.Theme
			rec.SubTheme = tm.SubTheme
			rec.Keywords = tm.Keywords
			if len(rec.Keywords) > 10 {
				rec.Keywords = rec.Keywords[:10]
			}
		}
		if rec.Keywords == nil {
			rec.Keywords = []string{}
		}
		if rec.Emergingness >= minEmergingness {
			out = append(out, rec)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Emergingness > out[j].Emergingness
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}

	s.log.Info("emerging topics ranked",
		zap.Int("count", len(out)),
		zap.Float64("min_emergingness", minEmergingness),
		zap.Int("top_n", topN),
	)
	return out
}
