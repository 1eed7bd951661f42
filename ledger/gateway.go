// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"errors"
)

// Contract operation names, used in logs, metrics and fault injection
const (
	OpConfigureElection = "configureElection"
	OpOpenElection      = "openElection"
	OpCloseElection     = "closeElection"
	OpAddCandidate      = "addCandidate"
	OpCastVote          = "castVote"
	OpReceipt           = "getReceipt"
)

var (
	// ErrReverted is returned when a transaction was mined but the contract rejected it
	ErrReverted = errors.New("ledger transaction reverted")

	// ErrReceiptNotFound is returned for unknown or still pending transactions
	ErrReceiptNotFound = errors.New("ledger receipt not found")
)

type ReceiptStatus int

const (
	StatusFailed ReceiptStatus = iota
	StatusSuccess
)

func (s ReceiptStatus) String() string {
	if s == StatusSuccess {
		return "success"
	}
	return "failed"
}

// Receipt describes a mined ledger transaction
type Receipt struct {
	TxHash      string
	BlockNumber uint64
	GasUsed     uint64
	Status      ReceiptStatus
}

// Gateway is the ledger capability the election engine mirrors onto.
//
// Every mutating call blocks until the transaction is confirmed or fails.
// Callers must not retry: a failed call may still have reached the network,
// and retry policy belongs to the implementation, not to its callers.
type Gateway interface {
	ConfigureElection(ctx context.Context, title string, candidates []string) (*Receipt, error)
	OpenElection(ctx context.Context) (*Receipt, error)
	CloseElection(ctx context.Context) (*Receipt, error)
	AddCandidate(ctx context.Context, name string) (*Receipt, error)
	CastVote(ctx context.Context, candidateIndex int) (*Receipt, error)
	Receipt(ctx context.Context, txHash string) (*Receipt, error)
}
