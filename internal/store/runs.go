package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one invocation of the import pipeline.
type Run struct {
	ID             string     `json:"id"`
	CardsDir       string     `json:"cards_dir"`
	NetworkPrefix  string     `json:"network_prefix"`
	StartTime      string     `json:"start_time"`
	EndTime        string     `json:"end_time"`
	Parsed         int        `json:"parsed"`
	Mapped         int        `json:"mapped"`
	MovementMapped int        `json:"movement_mapped"`
	Plans          int        `json:"plans"`
	Ambiguous      int        `json:"ambiguous"`
	Status         string     `json:"status"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// CreateRun inserts a new run row and returns its generated id.
func (s *Store) CreateRun(cardsDir, networkPrefix, startTime, endTime string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO runs (id, cards_dir, network_prefix, start_time, end_time)
		VALUES (?, ?, ?, ?, ?)
	`, id, cardsDir, networkPrefix, startTime, endTime)
	if err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// FinishRun records the run's final counters.
func (s *Store) FinishRun(id string, parsed, mapped, movementMapped, plans, ambiguous int) error {
	_, err := s.db.Exec(`
		UPDATE runs SET
			parsed = ?,
			mapped = ?,
			movement_mapped = ?,
			plans = ?,
			ambiguous = ?,
			status = 'completed',
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, parsed, mapped, movementMapped, plans, ambiguous, id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT id, cards_dir, network_prefix, start_time, end_time,
		       parsed, mapped, movement_mapped, plans, ambiguous,
		       status, started_at, completed_at
		FROM runs ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.CardsDir, &r.NetworkPrefix, &r.StartTime, &r.EndTime,
			&r.Parsed, &r.Mapped, &r.MovementMapped, &r.Plans, &r.Ambiguous,
			&r.Status, &r.StartedAt, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns one run by id.
func (s *Store) GetRun(id string) (*Run, error) {
	var r Run
	err := s.db.QueryRow(`
		SELECT id, cards_dir, network_prefix, start_time, end_time,
		       parsed, mapped, movement_mapped, plans, ambiguous,
		       status, started_at, completed_at
		FROM runs WHERE id = ?
	`, id).Scan(&r.ID, &r.CardsDir, &r.NetworkPrefix, &r.StartTime, &r.EndTime,
		&r.Parsed, &r.Mapped, &r.MovementMapped, &r.Plans, &r.Ambiguous,
		&r.Status, &r.StartedAt, &r.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return &r, nil
}
