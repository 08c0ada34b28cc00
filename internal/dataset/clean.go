// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"strings"

	"github.com/pdiddy/research-trends/pkg/types"
)

// PublicationConfidence rates how much a paper's venue and citation count
// can be trusted, in [0,1]. Preprints rank lowest; cited journal articles
// rank highest.
func PublicationConfidence(sourceType, workType string, citations int) float64 {
	source := strings.ToLower(sourceType)
	kind := strings.ToLower(workType)

	journal := func() float64 {
		switch {
		case citations >= 5:
			return 1.0
		case citations >= 1:
			return 0.8
		default:
			return 0.6
		}
	}

	switch {
	case source == "journal":
		return journal()
	case source == "conference":
		switch {
		case citations >= 3:
			return 0.8
		case citations >= 1:
			return 0.6
		default:
			return 0.4
		}
	case strings.Contains(kind, "preprint"), strings.Contains(kind, "arxiv"):
		return 0.2
	case strings.Contains(kind, "working"), strings.Contains(kind, "report"):
		return 0.4
	case strings.Contains(kind, "review"):
		return journal()
	}

	switch {
	case citations >= 5:
		return 0.8
	case citations >= 1:
		return 0.6
	default:
		return 0.4
	}
}

// Deduplicate removes repeated papers. Papers sharing a DOI collapse to the
// most cited one (first seen on ties), then papers sharing an ID collapse to
// the first. Survivors keep their input order.
func Deduplicate(papers []types.Paper) []types.Paper {
	best := make(map[string]int)
	for i, p := range papers {
		doi := normalizeDOI(p.DOI)
		if doi == "" {
			continue
		}
		if j, ok := best[doi]; !ok || p.Citations > papers[j].Citations {
			best[doi] = i
		}
	}

	seenID := make(map[string]bool)
	out := make([]types.Paper, 0, len(papers))
	for i, p := range papers {
		if doi := normalizeDOI(p.DOI); doi != "" && best[doi] != i {
			continue
		}
		if p.ID != "" {
			if seenID[p.ID] {
				continue
			}
			seenID[p.ID] = true
		}
		out = append(out, p)
	}
	return out
}

func normalizeDOI(doi string) string {
	d := strings.ToLower(strings.TrimSpace(doi))
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "doi:"} {
		d = strings.TrimPrefix(d, prefix)
	}
	return d
}

// FilterByCitations keeps papers with at least minCitations citations.
func FilterByCitations(papers []types.Paper, minCitations int) []types.Paper {
	out := make([]types.Paper, 0, len(papers))
	for _, p := range papers {
		if p.Citations >= minCitations {
			out = append(out, p)
		}
	}
	return out
}
