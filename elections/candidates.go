// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package elections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/danielhkuo/athena/ledger"
	"github.com/danielhkuo/athena/models"
)

const maxNameLen = 255

// Vote counts are always live; there is no stored counter to drift
const candidateColumns = `c.id, c.name, c.election_id, c.ledger_index,
	(SELECT COUNT(*) FROM vote v WHERE v.candidate_id = c.id)`

func scanCandidate(row interface{ Scan(...any) error }) (*models.Candidate, error) {
	var c models.Candidate
	var index sql.NullInt64
	if err := row.Scan(&c.ID, &c.Name, &c.ElectionID, &index, &c.Votes); err != nil {
		return nil, err
	}
	if index.Valid {
		i := int(index.Int64)
		c.LedgerIndex = &i
	}
	return &c, nil
}

func loadCandidate(ctx context.Context, q querier, id int64) (*models.Candidate, error) {
	c, err := scanCandidate(q.QueryRowContext(ctx, `SELECT `+candidateColumns+` FROM candidate c WHERE c.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("Candidate not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate: %w", err)
	}
	return c, nil
}

func listCandidates(ctx context.Context, q querier, electionID int64) ([]models.Candidate, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+candidateColumns+`
		FROM candidate c
		WHERE c.election_id = $1
		ORDER BY c.id ASC
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, *c)
	}
	return candidates, rows.Err()
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", badRequest("nome is required")
	}
	if len(name) > maxNameLen {
		return "", badRequest("nome must be at most %d characters", maxNameLen)
	}
	return name, nil
}

// CreateCandidate adds a candidate to an inactive election and appends it
// to the ledger roster. Rosters are frozen once voting opens.
func (s *Service) CreateCandidate(ctx context.Context, electionID int64, req models.CandidateRequest) (*models.Candidate, error) {
	name, err := validateName(req.Name)
	if err != nil {
		return nil, err
	}

	var created *models.Candidate
	txHash, err := s.mirrored(ctx, ledger.OpAddCandidate, func(tx *sql.Tx) error {
		e, err := loadElection(ctx, tx, electionID)
		if err != nil {
			return err
		}
		if e.Active {
			return badRequest("Cannot add candidates to an active election")
		}

		var id int64
		err = tx.QueryRowContext(ctx, `
			INSERT INTO candidate (election_id, name)
			VALUES ($1, $2)
			RETURNING id
		`, electionID, name).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert candidate: %w", err)
		}

		if _, _, err := reconcileIndices(ctx, tx, electionID); err != nil {
			return err
		}

		created, err = loadCandidate(ctx, tx, id)
		return err
	}, func(ctx context.Context, gw ledger.Gateway) (*ledger.Receipt, error) {
		return gw.AddCandidate(ctx, name)
	})
	if err != nil {
		return nil, err
	}

	created.LedgerTx = txHash
	slog.Info("candidate created", "election_id", electionID, "candidate_id", created.ID,
		"blockchain_index", *created.LedgerIndex, "blockchain_tx", txHash)
	return created, nil
}

// ListCandidates reconciles ledger indices, then returns the roster by id
func (s *Service) ListCandidates(ctx context.Context, electionID int64) ([]models.Candidate, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := loadElection(ctx, tx, electionID); err != nil {
		return nil, err
	}
	if _, _, err := reconcileIndices(ctx, tx, electionID); err != nil {
		return nil, err
	}

	candidates, err := listCandidates(ctx, tx, electionID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return candidates, nil
}

func (s *Service) GetCandidate(ctx context.Context, id int64) (*models.Candidate, error) {
	return loadCandidate(ctx, s.db, id)
}

// UpdateCandidate renames a candidate of an inactive election
func (s *Service) UpdateCandidate(ctx context.Context, id int64, req models.CandidateRequest) (*models.Candidate, error) {
	name, err := validateName(req.Name)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	c, err := loadCandidate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	e, err := loadElection(ctx, tx, c.ElectionID)
	if err != nil {
		return nil, err
	}
	if e.Active {
		return nil, badRequest("Cannot update candidates in an active election")
	}

	if _, err := tx.ExecContext(ctx, `UPDATE candidate SET name = $1 WHERE id = $2`, name, id); err != nil {
		return nil, fmt.Errorf("failed to update candidate: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	c.Name = name
	slog.Info("candidate updated", "candidate_id", id)
	return c, nil
}

// DeleteCandidate removes a candidate and its votes. Ledger rosters are
// append-only, so deletion is refused while mirroring is enabled.
func (s *Service) DeleteCandidate(ctx context.Context, id int64) error {
	if s.MirrorEnabled() {
		return unsupported("deleting candidates is not implemented while ledger mirroring is enabled")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	c, err := loadCandidate(ctx, tx, id)
	if err != nil {
		return err
	}
	e, err := loadElection(ctx, tx, c.ElectionID)
	if err != nil {
		return err
	}
	if e.Active {
		return badRequest("Cannot delete candidates from an active election")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM candidate WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	if _, _, err := reconcileIndices(ctx, tx, c.ElectionID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("candidate deleted", "candidate_id", id, "election_id", c.ElectionID)
	return nil
}
