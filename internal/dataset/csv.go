// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/research-trends/pkg/types"
)

// listSep joins multi-valued CSV cells (concepts, authors).
const listSep = "; "

// csvColumns is the column order WriteCSV emits.
var csvColumns = []string{
	"id", "title", "abstract", "date", "citations", "theme", "topic_id",
	"concepts", "university", "authors", "journal", "doi", "type",
	"source_type", "relevance_score", "confidence_score",
}

// columnAliases maps alternative header names onto canonical columns.
var columnAliases = map[string]string{
	"openalex_id":      "id",
	"publication_date": "date",
	"cited_by_count":   "citations",
	"topic":            "topic_id",
	"institution":      "university",
}

// ReadCSV parses a headered CSV paper table. Only "id" and "title" are
// required; every other column may be absent.
func ReadCSV(r io.Reader) ([]types.Paper, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []types.Paper{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if canon, ok := columnAliases[name]; ok {
			name = canon
		}
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, required := range []string{"id", "title"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	papers := []types.Paper{}
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		p, err := parseRow(row, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		papers = append(papers, p)
	}
	return papers, nil
}

func parseRow(row []string, index map[string]int) (types.Paper, error) {
	get := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	p := types.Paper{
		ID:         get("id"),
		Title:      get("title"),
		Abstract:   get("abstract"),
		Theme:      get("theme"),
		University: get("university"),
		Journal:    get("journal"),
		DOI:        get("doi"),
		Type:       get("type"),
		SourceType: get("source_type"),
		Concepts:   splitList(get("concepts")),
		Authors:    splitList(get("authors")),
		TopicID:    types.OutlierTopic,
	}

	var err error
	if p.Date, err = ParseDate(get("date")); err != nil {
		return p, err
	}
	if s := get("citations"); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < 0 {
			return p, fmt.Errorf("invalid citations %q", s)
		}
		p.Citations = int(f)
	}
	if s := get("topic_id"); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return p, fmt.Errorf("invalid topic_id %q", s)
		}
		p.TopicID = int(f)
	}
	if p.RelevanceScore, err = parseScore(get("relevance_score")); err != nil {
		return p, err
	}
	if p.Confidence, err = parseScore(get("confidence_score")); err != nil {
		return p, err
	}
	return p, nil
}

func parseScore(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid score %q", s)
	}
	return f, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// WriteCSV writes papers with a header row in csvColumns order.
func WriteCSV(w io.Writer, papers []types.Paper) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return err
	}
	for _, p := range papers {
		row := []string{
			p.ID,
			p.Title,
			p.Abstract,
			FormatDate(p.Date),
			strconv.Itoa(p.Citations),
			p.Theme,
			strconv.Itoa(p.TopicID),
			strings.Join(p.Concepts, listSep),
			p.University,
			strings.Join(p.Authors, listSep),
			p.Journal,
			p.DOI,
			p.Type,
			p.SourceType,
			strconv.FormatFloat(p.RelevanceScore, 'f', -1, 64),
			strconv.FormatFloat(p.Confidence, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
