// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/research-trends/internal/dataset"
	"github.com/pdiddy/research-trends/pkg/types"
)

// Per-paper list caps applied when parsing works.
const (
	maxAuthors  = 5
	maxConcepts = 5
)

// OpenAlex API JSON structures, limited to the selected fields.
type worksResponse struct {
	Meta    worksMeta `json:"meta"`
	Results []work    `json:"results"`
}

type worksMeta struct {
	Count      int    `json:"count"`
	NextCursor string `json:"next_cursor"`
}

type work struct {
	ID                    string           `json:"id"`
	Type                  string           `json:"type"`
	Title                 string           `json:"title"`
	DOI                   string           `json:"doi"`
	PublicationDate       string           `json:"publication_date"`
	PublicationYear       int              `json:"publication_year"`
	CitedByCount          int              `json:"cited_by_count"`
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
	Authorships           []authorship     `json:"authorships"`
	PrimaryLocation       *location        `json:"primary_location"`
	Concepts              []concept        `json:"concepts"`
}

type authorship struct {
	Author       named   `json:"author"`
	Institutions []named `json:"institutions"`
}

type named struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type location struct {
	Source *source `json:"source"`
}

type source struct {
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
}

type concept struct {
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
}

// parseWork converts an OpenAlex work into a Paper tagged with theme.
// Works without an id, a title, or any publication date are rejected.
func parseWork(w work, theme string) (types.Paper, bool) {
	id := w.ID
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	title := strings.TrimSpace(w.Title)
	if id == "" || title == "" {
		return types.Paper{}, false
	}

	var date time.Time
	if w.PublicationDate != "" {
		t, err := time.Parse("2006-01-02", w.PublicationDate)
		if err != nil {
			return types.Paper{}, false
		}
		date = t
	} else if w.PublicationYear > 0 {
		date = time.Date(w.PublicationYear, 1, 1, 0, 0, 0, 0, time.UTC)
	} else {
		return types.Paper{}, false
	}

	p := types.Paper{
		ID:        id,
		Title:     title,
		Abstract:  reconstructAbstract(w.AbstractInvertedIndex),
		Date:      date,
		Citations: max(w.CitedByCount, 0),
		Theme:     theme,
		TopicID:   types.OutlierTopic,
		DOI:       strings.TrimPrefix(w.DOI, "https://doi.org/"),
		Type:      w.Type,
	}

	for _, a := range w.Authorships {
		if a.Author.DisplayName != "" && len(p.Authors) < maxAuthors {
			p.Authors = append(p.Authors, a.Author.DisplayName)
		}
	}
	if len(w.Authorships) > 0 && len(w.Authorships[0].Institutions) > 0 {
		p.University = w.Authorships[0].Institutions[0].DisplayName
	}
	if w.PrimaryLocation != nil && w.PrimaryLocation.Source != nil {
		p.Journal = w.PrimaryLocation.Source.DisplayName
		p.SourceType = w.PrimaryLocation.Source.Type
	}
	for _, c := range w.Concepts {
		if c.DisplayName != "" && len(p.Concepts) < maxConcepts {
			p.Concepts = append(p.Concepts, c.DisplayName)
		}
	}

	p.Confidence = dataset.PublicationConfidence(p.SourceType, p.Type, p.Citations)
	return p, true
}

// reconstructAbstract rebuilds plain text from OpenAlex's inverted index
// of word → positions.
func reconstructAbstract(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range index {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos, word})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].pos != pairs[j].pos {
			return pairs[i].pos < pairs[j].pos
		}
		return pairs[i].word < pairs[j].word
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}
