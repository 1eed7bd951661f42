// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package elections

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/athena/ledger"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Service owns elections, candidates and votes. The relational store is
// authoritative; the ledger, when configured, is a best-effort mirror that
// is written before every local commit that needs it.
type Service struct {
	db     *sql.DB
	ledger ledger.Gateway
	now    func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a Service. A nil gateway disables ledger mirroring.
func New(db *sql.DB, gateway ledger.Gateway, opts ...Option) *Service {
	s := &Service{
		db:     db,
		ledger: gateway,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MirrorEnabled reports whether writes are mirrored onto the ledger
func (s *Service) MirrorEnabled() bool {
	return s.ledger != nil
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

type mirrorFunc func(ctx context.Context, gw ledger.Gateway) (*ledger.Receipt, error)

// mirrored runs stage inside a transaction, then the ledger call, and
// commits only if both succeeded. Any failure rolls the transaction back;
// ledger failures come back as KindUpstream. Returns the mirror tx hash,
// empty when mirroring is disabled.
func (s *Service) mirrored(ctx context.Context, op string, stage func(tx *sql.Tx) error, mirror mirrorFunc) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := stage(tx); err != nil {
		return "", err
	}

	var txHash string
	if s.ledger != nil && mirror != nil {
		receipt, err := mirror(ctx, s.ledger)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("rollback after ledger failure", "op", op, "error", rbErr)
			}
			return "", upstream(op, err)
		}
		if receipt != nil {
			txHash = receipt.TxHash
		}
	}

	if err := tx.Commit(); err != nil {
		if txHash != "" {
			// the ledger already has the effect; only an operator can reconcile this
			slog.Error("commit failed after ledger mirror", "op", op, "blockchain_tx", txHash, "error", err)
		}
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return txHash, nil
}
