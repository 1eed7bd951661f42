// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package elections

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

type indexedCandidate struct {
	id    int64
	index sql.NullInt64
}

// The contract addresses candidates by their position in an append-only
// list, so a candidate's ledger index is its 0-based rank by id within the
// election. This assumes ids are never reused.
func loadIndexedCandidates(ctx context.Context, q querier, electionID int64) ([]indexedCandidate, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, ledger_index
		FROM candidate
		WHERE election_id = $1
		ORDER BY id ASC
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []indexedCandidate
	for rows.Next() {
		var c indexedCandidate
		if err := rows.Scan(&c.id, &c.index); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// reconcileIndices assigns positions 0..n-1 and writes only the ones that
// differ. Returns the mapping and the number of rows updated.
func reconcileIndices(ctx context.Context, q querier, electionID int64) (map[int64]int, int, error) {
	candidates, err := loadIndexedCandidates(ctx, q, electionID)
	if err != nil {
		return nil, 0, err
	}

	mapping := make(map[int64]int, len(candidates))
	writes := 0
	for pos, c := range candidates {
		mapping[c.id] = pos
		if c.index.Valid && c.index.Int64 == int64(pos) {
			continue
		}
		if _, err := q.ExecContext(ctx, `UPDATE candidate SET ledger_index = $1 WHERE id = $2`, pos, c.id); err != nil {
			return nil, 0, fmt.Errorf("failed to update ledger index: %w", err)
		}
		writes++
	}

	if writes > 0 {
		slog.Info("candidate ledger indices reconciled", "election_id", electionID, "updated", writes)
	}
	return mapping, writes, nil
}

func indicesValid(ctx context.Context, q querier, electionID int64) (bool, error) {
	candidates, err := loadIndexedCandidates(ctx, q, electionID)
	if err != nil {
		return false, err
	}
	for pos, c := range candidates {
		if !c.index.Valid || c.index.Int64 != int64(pos) {
			return false, nil
		}
	}
	return true, nil
}

// ReconcileIndices recomputes the ledger indices of an election's
// candidates and returns candidate id -> index.
func (s *Service) ReconcileIndices(ctx context.Context, electionID int64) (map[int64]int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := loadElection(ctx, tx, electionID); err != nil {
		return nil, err
	}

	mapping, _, err := reconcileIndices(ctx, tx, electionID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return mapping, nil
}

// ValidateIndices reports whether stored indices already match, without writing
func (s *Service) ValidateIndices(ctx context.Context, electionID int64) (bool, error) {
	if _, err := loadElection(ctx, s.db, electionID); err != nil {
		return false, err
	}
	return indicesValid(ctx, s.db, electionID)
}
