// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetLabel returns a cached topic label. The bool is false on a miss.
func (s *Store) GetLabel(ctx context.Context, key string) (string, bool, error) {
	var label string
	err := s.db.QueryRowContext(ctx, `SELECT label FROM label_cache WHERE key = ?`, key).Scan(&label)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading label %s: %w", key, err)
	}
	return label, true, nil
}

// PutLabel caches a topic label, overwriting any previous value for key.
func (s *Store) PutLabel(ctx context.Context, key, label string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO label_cache (key, label, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET label=excluded.label, created_at=excluded.created_at`,
		key, label, time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("writing label %s: %w", key, err)
	}
	return nil
}
