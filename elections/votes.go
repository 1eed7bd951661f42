// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package elections

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/danielhkuo/athena/db"
	"github.com/danielhkuo/athena/ledger"
	"github.com/danielhkuo/athena/models"
)

// NormalizeLedgerHash trims and lowercases a ledger hash and enforces its length
func NormalizeLedgerHash(raw string) (string, error) {
	hash := strings.ToLower(strings.TrimSpace(raw))
	if hash == "" {
		return "", badRequest("hash_blockchain cannot be empty")
	}
	if len(hash) < models.MinLedgerHashLen || len(hash) > models.MaxLedgerHashLen {
		return "", badRequest("hash_blockchain must be %d-%d characters", models.MinLedgerHashLen, models.MaxLedgerHashLen)
	}
	return hash, nil
}

// RegisterVote records one vote for a candidate of an active election.
//
// The vote row is staged first; the unique index on ledger_hash decides
// which of several concurrent submissions of the same hash wins. Only then
// is the vote cast on the ledger, and the row is committed only if that
// succeeded.
func (s *Service) RegisterVote(ctx context.Context, electionID, candidateID int64, ledgerHash string) (*models.VoteReceipt, error) {
	hash, err := NormalizeLedgerHash(ledgerHash)
	if err != nil {
		promVotes.WithLabelValues(voteRejected).Inc()
		return nil, err
	}

	var vote models.Vote
	var index int
	txHash, err := s.mirrored(ctx, ledger.OpCastVote, func(tx *sql.Tx) error {
		e, err := loadElection(ctx, tx, electionID)
		if err != nil {
			return err
		}
		if !e.Active {
			return badRequest("Election is not active")
		}

		c, err := loadCandidate(ctx, tx, candidateID)
		if err != nil || c.ElectionID != electionID {
			if err == nil || KindOf(err) == KindNotFound {
				return notFound("Candidate not found for this election")
			}
			return err
		}

		mapping, _, err := reconcileIndices(ctx, tx, electionID)
		if err != nil {
			return err
		}
		index = mapping[c.ID]

		vote = models.Vote{
			ElectionID:  electionID,
			CandidateID: candidateID,
			LedgerHash:  hash,
			CreatedAt:   s.clock(),
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO vote (election_id, candidate_id, ledger_hash, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, vote.ElectionID, vote.CandidateID, vote.LedgerHash, vote.CreatedAt).Scan(&vote.ID)
		if db.IsUniqueViolation(err) {
			return conflict("Vote already registered")
		}
		if err != nil {
			return fmt.Errorf("failed to insert vote: %w", err)
		}
		return nil
	}, func(ctx context.Context, gw ledger.Gateway) (*ledger.Receipt, error) {
		return gw.CastVote(ctx, index)
	})
	if err != nil {
		promVotes.WithLabelValues(voteOutcome(err)).Inc()
		if KindOf(err) == KindConflict {
			slog.Warn("duplicate vote hash", "election_id", electionID, "hash", hash)
		}
		return nil, err
	}
	promVotes.WithLabelValues(voteAccepted).Inc()

	var total int64
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vote WHERE candidate_id = $1`, candidateID).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}

	slog.Info("vote registered", "election_id", electionID, "candidate_id", candidateID,
		"vote_id", vote.ID, "blockchain_index", index, "blockchain_tx", txHash)

	return &models.VoteReceipt{
		Vote:           vote,
		CandidateVotes: total,
		LedgerTx:       txHash,
	}, nil
}
