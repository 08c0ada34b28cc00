// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/research-trends/pkg/types"
)

// Run status values.
const (
	RunRunning   = "running"
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

// ErrRunNotFound is returned when a run id is not in the database.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded pipeline execution.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Papers     int
	Topics     int
	Emerging   int
	Error      string
}

// RunResult carries the counts recorded when a run finishes.
type RunResult struct {
	Papers   int
	Topics   int
	Emerging int
	Err      error
}

// BeginRun records a new running pipeline execution and returns its id.
func (s *Store) BeginRun(ctx context.Context) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, status) VALUES (?, ?, ?)`,
		id, time.Now().UTC().Format(timeLayout), RunRunning,
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// FinishRun marks a run succeeded, or failed when res.Err is set.
func (s *Store) FinishRun(ctx context.Context, id string, res RunResult) error {
	status, msg := RunSucceeded, ""
	if res.Err != nil {
		status, msg = RunFailed, res.Err.Error()
	}
	out, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, papers = ?, topics = ?, emerging = ?, error = ?
		 WHERE id = ?`,
		time.Now().UTC().Format(timeLayout), status, res.Papers, res.Topics, res.Emerging, msg, id,
	)
	if err != nil {
		return fmt.Errorf("updating run: %w", err)
	}
	if n, _ := out.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// Runs lists recorded runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, status, papers, topics, emerging, error
		 FROM runs ORDER BY started_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			r                 Run
			started           string
			finished, errText sql.NullString
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.Status, &r.Papers, &r.Topics, &r.Emerging, &errText); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(timeLayout, started)
		if finished.Valid {
			r.FinishedAt, _ = time.Parse(timeLayout, finished.String)
		}
		r.Error = errText.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// SaveMapping stores the topic-to-theme mapping produced by a run,
// replacing any mapping already stored for it.
func (s *Store) SaveMapping(ctx context.Context, runID string, mapping types.ThemeMapping) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM topic_mappings WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("clearing mapping: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO topic_mappings (run_id, topic_id, theme, confidence, sub_theme,
			sub_theme_confidence, keywords, all_scores, count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, id := range mapping.TopicIDs() {
		tm, _ := mapping.Lookup(id)
		keywords, _ := json.Marshal(tm.Keywords)
		scores, err := json.Marshal(tm.AllScores)
		if err != nil {
			return fmt.Errorf("encoding scores for topic %d: %w", id, err)
		}
		_, err = stmt.ExecContext(ctx, runID, id, tm.Theme, tm.Confidence, tm.SubTheme,
			tm.SubThemeConfidence, string(keywords), string(scores), tm.Count)
		if err != nil {
			return fmt.Errorf("inserting topic %d: %w", id, err)
		}
	}
	return tx.Commit()
}

// Mapping loads the topic-to-theme mapping stored for a run.
func (s *Store) Mapping(ctx context.Context, runID string) (types.ThemeMapping, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT topic_id, theme, confidence, sub_theme, sub_theme_confidence, keywords, all_scores, count
		 FROM topic_mappings WHERE run_id = ? ORDER BY topic_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying mapping: %w", err)
	}
	defer rows.Close()

	mapping := types.ThemeMapping{}
	for rows.Next() {
		var (
			id               int
			tm               types.TopicMapping
			subTheme         sql.NullString
			subConf          sql.NullFloat64
			keywords, scores sql.NullString
		)
		if err := rows.Scan(&id, &tm.Theme, &tm.Confidence, &subTheme, &subConf, &keywords, &scores, &tm.Count); err != nil {
			return nil, fmt.Errorf("scanning mapping: %w", err)
		}
		tm.SubTheme = subTheme.String
		tm.SubThemeConfidence = subConf.Float64
		if err := json.Unmarshal([]byte(keywords.String), &tm.Keywords); err != nil {
			return nil, fmt.Errorf("decoding keywords for topic %d: %w", id, err)
		}
		if err := json.Unmarshal([]byte(scores.String), &tm.AllScores); err != nil {
			return nil, fmt.Errorf("decoding scores for topic %d: %w", id, err)
		}
		mapping[strconv.Itoa(id)] = tm
	}
	return mapping, rows.Err()
}
