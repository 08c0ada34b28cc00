// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/research-trends/pkg/types"
)

const dateLayout = "2006-01-02"

// UpsertPapers upserts papers by id in one transaction and returns how many
// rows were written.
func (s *Store) UpsertPapers(ctx context.Context, papers []types.Paper) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (id, title, abstract, date, citations, theme, topic_id,
			concepts, university, authors, journal, doi, type, source_type,
			relevance_score, confidence_score, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, abstract=excluded.abstract, date=excluded.date,
			citations=excluded.citations, theme=excluded.theme, topic_id=excluded.topic_id,
			concepts=excluded.concepts, university=excluded.university, authors=excluded.authors,
			journal=excluded.journal, doi=excluded.doi, type=excluded.type,
			source_type=excluded.source_type, relevance_score=excluded.relevance_score,
			confidence_score=excluded.confidence_score, updated_at=excluded.updated_at`)
	if err != nil {
		return 0, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(timeLayout)
	written := 0
	for _, p := range papers {
		if p.ID == "" {
			continue
		}
		concepts, _ := json.Marshal(p.Concepts)
		authors, _ := json.Marshal(p.Authors)
		date := ""
		if !p.Date.IsZero() {
			date = p.Date.Format(dateLayout)
		}
		_, err := stmt.ExecContext(ctx,
			p.ID, p.Title, p.Abstract, date, p.Citations, p.Theme, p.TopicID,
			string(concepts), p.University, string(authors), p.Journal, p.DOI,
			p.Type, p.SourceType, p.RelevanceScore, p.Confidence, now,
		)
		if err != nil {
			return 0, fmt.Errorf("upserting paper %s: %w", p.ID, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing papers: %w", err)
	}
	return written, nil
}

// PaperQuery filters Papers. Zero values disable each filter.
type PaperQuery struct {
	Theme        string
	TopicID      *int
	MinCitations int
	Since        time.Time
	Limit        int
}

// Papers returns stored papers matching q, ordered by date then id.
func (s *Store) Papers(ctx context.Context, q PaperQuery) ([]types.Paper, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT id, title, abstract, date, citations, theme, topic_id,
		concepts, university, authors, journal, doi, type, source_type,
		relevance_score, confidence_score
		FROM papers WHERE 1=1`)

	if q.Theme != "" {
		qb.WriteString(` AND theme = ?`)
		args = append(args, q.Theme)
	}
	if q.TopicID != nil {
		qb.WriteString(` AND topic_id = ?`)
		args = append(args, *q.TopicID)
	}
	if q.MinCitations > 0 {
		qb.WriteString(` AND citations >= ?`)
		args = append(args, q.MinCitations)
	}
	if !q.Since.IsZero() {
		qb.WriteString(` AND date >= ?`)
		args = append(args, q.Since.Format(dateLayout))
	}
	qb.WriteString(` ORDER BY date, id`)
	if q.Limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	papers := []types.Paper{}
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

func scanPaper(rows *sql.Rows) (types.Paper, error) {
	var (
		p                                           types.Paper
		abstract, date, theme, concepts, university sql.NullString
		authors, journal, doi, kind, sourceType     sql.NullString
		relevance, confidence                       sql.NullFloat64
	)
	err := rows.Scan(&p.ID, &p.Title, &abstract, &date, &p.Citations, &theme, &p.TopicID,
		&concepts, &university, &authors, &journal, &doi, &kind, &sourceType,
		&relevance, &confidence)
	if err != nil {
		return p, fmt.Errorf("scanning paper: %w", err)
	}

	p.Abstract = abstract.String
	p.Theme = theme.String
	p.University = university.String
	p.Journal = journal.String
	p.DOI = doi.String
	p.Type = kind.String
	p.SourceType = sourceType.String
	p.RelevanceScore = relevance.Float64
	p.Confidence = confidence.Float64

	if date.String != "" {
		if p.Date, err = time.Parse(dateLayout, date.String); err != nil {
			return p, fmt.Errorf("paper %s has invalid date %q", p.ID, date.String)
		}
	}
	if concepts.String != "" {
		json.Unmarshal([]byte(concepts.String), &p.Concepts)
	}
	if authors.String != "" {
		json.Unmarshal([]byte(authors.String), &p.Authors)
	}
	return p, nil
}
