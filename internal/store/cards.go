package store

import (
	"fmt"
	"time"
)

// Card outcome statuses.
const (
	CardStatusConverted = "converted"
	CardStatusSkipped   = "skipped"
	CardStatusFailed    = "failed"
)

// CardRecord is the logged outcome of one signal card.
type CardRecord struct {
	ID           int64     `json:"id"`
	RunID        string    `json:"run_id"`
	FileName     string    `json:"file_name"`
	Intersection string    `json:"intersection"`
	NodeID       int       `json:"node_id"`
	Status       string    `json:"status"`
	ErrorKind    string    `json:"error_kind"`
	Detail       string    `json:"detail"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// RecordCard inserts one card outcome for a run.
func (s *Store) RecordCard(runID, fileName, intersection string, nodeID int, status, errorKind, detail string) error {
	_, err := s.db.Exec(`
		INSERT INTO cards (run_id, file_name, intersection, node_id, status, error_kind, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, runID, fileName, intersection, nodeID, status, errorKind, detail)
	if err != nil {
		return fmt.Errorf("failed to record card %s: %w", fileName, err)
	}
	return nil
}

// ListCards returns the card outcomes of one run in insertion order.
func (s *Store) ListCards(runID string) ([]CardRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, file_name, intersection, node_id, status, error_kind, detail, recorded_at
		FROM cards WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []CardRecord
	for rows.Next() {
		var c CardRecord
		if err := rows.Scan(&c.ID, &c.RunID, &c.FileName, &c.Intersection, &c.NodeID,
			&c.Status, &c.ErrorKind, &c.Detail, &c.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}
