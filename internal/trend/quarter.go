// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trend

import (
	"fmt"
	"sort"
	"time"

	"github.com/pdiddy/research-trends/pkg/types"
)

// Quarter is a calendar quarter.
type Quarter struct {
	Year int
	Q    int // 1-4
}

// QuarterOf returns the calendar quarter containing t.
func QuarterOf(t time.Time) Quarter {
	return Quarter{Year: t.Year(), Q: (int(t.Month())-1)/3 + 1}
}

// String formats the quarter as "2024Q1".
func (q Quarter) String() string {
	return fmt.Sprintf("%04dQ%d", q.Year, q.Q)
}

// Before reports whether q precedes o.
func (q Quarter) Before(o Quarter) bool {
	if q.Year != o.Year {
		return q.Year < o.Year
	}
	return q.Q < o.Q
}

// QuarterlySeries buckets papers by publication quarter. Only quarters with
// at least one paper appear, in chronological order. Undated papers are
// left out of the series.
func QuarterlySeries(papers []types.Paper) types.QuarterlyCounts {
	counts := make(map[Quarter]int)
	for _, p := range papers {
		if p.Date.IsZero() {
			continue
		}
		counts[QuarterOf(p.Date)]++
	}

	quarters := make([]Quarter, 0, len(counts))
	for q := range counts {
		quarters = append(quarters, q)
	}
	sort.Slice(quarters, func(i, j int) bool { return quarters[i].Before(quarters[j]) })

	series := make(types.QuarterlyCounts, len(quarters))
	for i, q := range quarters {
		series[i] = types.QuarterCount{Quarter: q.String(), Count: counts[q]}
	}
	return series
}
