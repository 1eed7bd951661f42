// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package elections

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danielhkuo/athena/ledger"
	"github.com/danielhkuo/athena/models"
)

// Results tallies the election by counting vote rows, highest first with
// ties broken by candidate id.
func (s *Service) Results(ctx context.Context, electionID int64) (*models.ElectionResults, error) {
	e, err := loadElection(ctx, s.db, electionID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, COUNT(v.id) AS votes
		FROM candidate c
		LEFT JOIN vote v ON v.candidate_id = c.id
		WHERE c.election_id = $1
		GROUP BY c.id, c.name
		ORDER BY votes DESC, c.id ASC
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	results := &models.ElectionResults{
		Election: *e,
		Results:  []models.CandidateResult{},
	}
	for rows.Next() {
		var r models.CandidateResult
		if err := rows.Scan(&r.ID, &r.Name, &r.Votes); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results.Results = append(results.Results, r)
		results.TotalVotes += r.Votes
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}

	return results, nil
}

// Status summarizes vote and candidate totals
func (s *Service) Status(ctx context.Context, electionID int64) (*models.ElectionStatus, error) {
	e, err := loadElection(ctx, s.db, electionID)
	if err != nil {
		return nil, err
	}

	status := &models.ElectionStatus{Election: *e, State: e.State()}
	err = s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM vote WHERE election_id = $1),
			(SELECT COUNT(*) FROM candidate WHERE election_id = $1)
	`, electionID).Scan(&status.TotalVotes, &status.TotalCandidates)
	if err != nil {
		return nil, fmt.Errorf("failed to count election totals: %w", err)
	}

	return status, nil
}

// VerifyTransaction looks up a mirror transaction's receipt on the ledger
func (s *Service) VerifyTransaction(ctx context.Context, txHash string) (*models.TxVerification, error) {
	txHash = strings.TrimSpace(txHash)
	if txHash == "" {
		return nil, badRequest("Transaction hash is required")
	}
	if !s.MirrorEnabled() {
		return nil, unsupported("Blockchain is not configured")
	}

	r, err := s.ledger.Receipt(ctx, txHash)
	if errors.Is(err, ledger.ErrReceiptNotFound) {
		return nil, notFound("Transaction not found or still pending")
	}
	if err != nil {
		return nil, upstream(ledger.OpReceipt, err)
	}

	return &models.TxVerification{
		Verified:        true,
		Status:          r.Status.String(),
		BlockNumber:     r.BlockNumber,
		GasUsed:         r.GasUsed,
		TransactionHash: r.TxHash,
	}, nil
}
