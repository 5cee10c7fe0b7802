package store

import (
	"context"
	"fmt"
)

// Run is one recorded comparison.
//
// Outcome is "diverged" or "clean" (matching the schema CHECK
// constraint). ReferencePC and CandidatePC are only set for diverged
// runs. CreatedAt is assigned by the database on insert.
type Run struct {
	ID               string `json:"id"`
	CreatedAt        string `json:"created_at"`
	ReferencePath    string `json:"reference_path"`
	CandidatePath    string `json:"candidate_path"`
	ReferenceRecords int    `json:"reference_records"`
	CandidateRecords int    `json:"candidate_records"`
	Outcome          string `json:"outcome"`
	Matches          int    `json:"matches"`
	ReferenceIndex   int    `json:"reference_index"`
	CandidateIndex   int    `json:"candidate_index"`
	ReferencePC      string `json:"reference_pc,omitempty"`
	CandidatePC      string `json:"candidate_pc,omitempty"`
}

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are
// silently ignored. Other constraint violations (e.g. an unknown
// outcome) still return errors.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, reference_path, candidate_path, reference_records, candidate_records,
		 outcome, matches, reference_index, candidate_index, reference_pc, candidate_pc)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.ReferencePath,
		run.CandidatePath,
		run.ReferenceRecords,
		run.CandidateRecords,
		run.Outcome,
		run.Matches,
		run.ReferenceIndex,
		run.CandidateIndex,
		run.ReferencePC,
		run.CandidatePC,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	return nil
}
