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
	"time"

	"github.com/danielhkuo/athena/ledger"
	"github.com/danielhkuo/athena/models"
)

const maxTitleLen = 255

const electionColumns = `id, title, description, starts_at, ends_at, active, opened_at IS NOT NULL, created_at`

func scanElection(row interface{ Scan(...any) error }) (*models.Election, error) {
	var e models.Election
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.StartsAt, &e.EndsAt, &e.Active, &e.Started, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func loadElection(ctx context.Context, q querier, id int64) (*models.Election, error) {
	e, err := scanElection(q.QueryRowContext(ctx, `SELECT `+electionColumns+` FROM election WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("Election not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query election: %w", err)
	}
	return e, nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", badRequest("titulo is required")
	}
	if len(title) > maxTitleLen {
		return "", badRequest("titulo must be at most %d characters", maxTitleLen)
	}
	return title, nil
}

func validateWindow(start, end *time.Time) error {
	if start != nil && end != nil && !end.After(*start) {
		return badRequest("data_fim must be after data_inicio")
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// cleanNames trims names and drops empty ones
func cleanNames(names []string) []string {
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			cleaned = append(cleaned, n)
		}
	}
	return cleaned
}

// CreateElection persists a draft election with its initial roster and
// configures the ledger contract. If the ledger call fails nothing is kept.
func (s *Service) CreateElection(ctx context.Context, req models.CreateElectionRequest) (*models.ElectionWithCandidates, error) {
	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, err
	}
	if req.Active != nil && *req.Active {
		return nil, badRequest("ativa can only be set by starting the election")
	}
	start, end := utcPtr(req.StartsAt), utcPtr(req.EndsAt)
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}
	names := cleanNames(req.Candidates)
	for _, n := range names {
		if len(n) > maxNameLen {
			return nil, badRequest("nome must be at most %d characters", maxNameLen)
		}
	}

	var created models.ElectionWithCandidates
	txHash, err := s.mirrored(ctx, ledger.OpConfigureElection, func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO election (title, description, starts_at, ends_at, active, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, title, req.Description, start, end, false, s.clock()).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert election: %w", err)
		}

		for _, n := range names {
			if _, err := tx.ExecContext(ctx, `INSERT INTO candidate (election_id, name) VALUES ($1, $2)`, id, n); err != nil {
				return fmt.Errorf("failed to insert candidate: %w", err)
			}
		}
		if _, _, err := reconcileIndices(ctx, tx, id); err != nil {
			return err
		}

		e, err := loadElection(ctx, tx, id)
		if err != nil {
			return err
		}
		candidates, err := listCandidates(ctx, tx, id)
		if err != nil {
			return err
		}
		created = models.ElectionWithCandidates{Election: *e, Candidates: candidates}
		return nil
	}, func(ctx context.Context, gw ledger.Gateway) (*ledger.Receipt, error) {
		return gw.ConfigureElection(ctx, title, names)
	})
	if err != nil {
		return nil, err
	}

	created.LedgerTx = txHash
	slog.Info("election created", "election_id", created.ID, "candidates", len(names), "blockchain_tx", txHash)
	return &created, nil
}

func (s *Service) ListElections(ctx context.Context) ([]models.Election, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+electionColumns+` FROM election ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query elections: %w", err)
	}
	defer rows.Close()

	elections := []models.Election{}
	for rows.Next() {
		e, err := scanElection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan election: %w", err)
		}
		elections = append(elections, *e)
	}
	return elections, rows.Err()
}

func (s *Service) GetElection(ctx context.Context, id int64) (*models.Election, error) {
	return loadElection(ctx, s.db, id)
}

// UpdateElection edits title, description and dates. The active flag only
// moves through StartElection and EndElection.
func (s *Service) UpdateElection(ctx context.Context, id int64, req models.UpdateElectionRequest) (*models.Election, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	e, err := loadElection(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if req.Active != nil && *req.Active != e.Active {
		return nil, badRequest("ativa cannot be changed directly; start or end the election")
	}
	if req.Title != nil {
		title, err := validateTitle(*req.Title)
		if err != nil {
			return nil, err
		}
		e.Title = title
	}
	if req.Description != nil {
		e.Description = req.Description
	}
	if req.StartsAt != nil {
		e.StartsAt = utcPtr(req.StartsAt)
	}
	if req.EndsAt != nil {
		e.EndsAt = utcPtr(req.EndsAt)
	}
	if err := validateWindow(e.StartsAt, e.EndsAt); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE election
		SET title = $1, description = $2, starts_at = $3, ends_at = $4
		WHERE id = $5
	`, e.Title, e.Description, e.StartsAt, e.EndsAt, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update election: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("election updated", "election_id", id)
	return e, nil
}

// DeleteElection removes an inactive election with its candidates and
// votes. Ledger state cannot be retracted, so deletion is refused while
// mirroring is enabled.
func (s *Service) DeleteElection(ctx context.Context, id int64) error {
	if s.MirrorEnabled() {
		return unsupported("deleting elections is not implemented while ledger mirroring is enabled")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	e, err := loadElection(ctx, tx, id)
	if err != nil {
		return err
	}
	if e.Active {
		return badRequest("Cannot delete an active election")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM election WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete election: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("election deleted", "election_id", id)
	return nil
}

// StartElection opens voting now. An end date that has already passed
// blocks the start.
func (s *Service) StartElection(ctx context.Context, id int64) (*models.Election, error) {
	now := s.clock()

	var started *models.Election
	txHash, err := s.mirrored(ctx, ledger.OpOpenElection, func(tx *sql.Tx) error {
		e, err := loadElection(ctx, tx, id)
		if err != nil {
			return err
		}
		if e.Active {
			return badRequest("Election already active")
		}
		if e.EndsAt != nil && !e.EndsAt.After(now) {
			return badRequest("data_fim has already passed; update it before starting")
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE election
			SET active = $1, starts_at = $2, opened_at = $2
			WHERE id = $3 AND active = $4
		`, true, now, id, false)
		if err != nil {
			return fmt.Errorf("failed to start election: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return badRequest("Election already active")
		}

		e.Active = true
		e.Started = true
		e.StartsAt = &now
		started = e
		return nil
	}, func(ctx context.Context, gw ledger.Gateway) (*ledger.Receipt, error) {
		return gw.OpenElection(ctx)
	})
	if err != nil {
		return nil, err
	}

	started.LedgerTx = txHash
	slog.Info("election started", "election_id", id, "blockchain_tx", txHash)
	return started, nil
}

// EndElection closes voting now
func (s *Service) EndElection(ctx context.Context, id int64) (*models.Election, error) {
	now := s.clock()

	var ended *models.Election
	txHash, err := s.mirrored(ctx, ledger.OpCloseElection, func(tx *sql.Tx) error {
		e, err := loadElection(ctx, tx, id)
		if err != nil {
			return err
		}
		if !e.Active {
			return badRequest("Election already inactive")
		}
		if e.StartsAt != nil && now.Before(*e.StartsAt) {
			return badRequest("data_fim must be after data_inicio")
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE election
			SET active = $1, ends_at = $2
			WHERE id = $3 AND active = $4
		`, false, now, id, true)
		if err != nil {
			return fmt.Errorf("failed to end election: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return badRequest("Election already inactive")
		}

		e.Active = false
		e.EndsAt = &now
		ended = e
		return nil
	}, func(ctx context.Context, gw ledger.Gateway) (*ledger.Receipt, error) {
		return gw.CloseElection(ctx)
	})
	if err != nil {
		return nil, err
	}

	ended.LedgerTx = txHash
	slog.Info("election ended", "election_id", id, "blockchain_tx", txHash)
	return ended, nil
}
