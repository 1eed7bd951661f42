// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
)

// Gas charged per operation by the simulated contract
var memoryGas = map[string]uint64{
	OpConfigureElection: 120_000,
	OpOpenElection:      28_000,
	OpCloseElection:     28_000,
	OpAddCandidate:      65_000,
	OpCastVote:          52_000,
}

type memoryCandidate struct {
	name  string
	votes uint64
}

// Memory simulates the single-election contract in process. It enforces the
// same revert rules as the deployed contract: the roster and configuration
// are frozen while the election is open, and votes are only accepted while
// it is open and for an existing candidate index.
type Memory struct {
	mu         sync.Mutex
	title      string
	candidates []memoryCandidate
	open       bool
	block      uint64
	receipts   map[string]Receipt
	faults     map[string]error
	calls      map[string]int
}

func NewMemory() *Memory {
	return &Memory{
		receipts: make(map[string]Receipt),
		faults:   make(map[string]error),
		calls:    make(map[string]int),
	}
}

// FailNext makes the next call to op return err without touching state
func (m *Memory) FailNext(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults[op] = err
}

// Calls returns how many times op was invoked, failed calls included
func (m *Memory) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Title returns the configured election title
func (m *Memory) Title() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.title
}

// IsOpen reports whether the simulated election accepts votes
func (m *Memory) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Candidates returns the on-ledger roster in index order
func (m *Memory) Candidates() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.candidates))
	for i, c := range m.candidates {
		names[i] = c.name
	}
	return names
}

// Votes returns the on-ledger tally for a candidate index
func (m *Memory) Votes(index int) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.candidates) {
		return 0
	}
	return m.candidates[index].votes
}

func (m *Memory) ConfigureElection(ctx context.Context, title string, candidates []string) (*Receipt, error) {
	return m.transact(ctx, OpConfigureElection, func() error {
		if m.open {
			return fmt.Errorf("%w: election is open", ErrReverted)
		}
		m.title = title
		m.candidates = m.candidates[:0]
		for _, name := range candidates {
			m.candidates = append(m.candidates, memoryCandidate{name: name})
		}
		return nil
	})
}

func (m *Memory) OpenElection(ctx context.Context) (*Receipt, error) {
	return m.transact(ctx, OpOpenElection, func() error {
		if m.open {
			return fmt.Errorf("%w: election already open", ErrReverted)
		}
		m.open = true
		return nil
	})
}

func (m *Memory) CloseElection(ctx context.Context) (*Receipt, error) {
	return m.transact(ctx, OpCloseElection, func() error {
		if !m.open {
			return fmt.Errorf("%w: election is not open", ErrReverted)
		}
		m.open = false
		return nil
	})
}

func (m *Memory) AddCandidate(ctx context.Context, name string) (*Receipt, error) {
	return m.transact(ctx, OpAddCandidate, func() error {
		if m.open {
			return fmt.Errorf("%w: roster is frozen while open", ErrReverted)
		}
		m.candidates = append(m.candidates, memoryCandidate{name: name})
		return nil
	})
}

func (m *Memory) CastVote(ctx context.Context, candidateIndex int) (*Receipt, error) {
	return m.transact(ctx, OpCastVote, func() error {
		if !m.open {
			return fmt.Errorf("%w: election is not open", ErrReverted)
		}
		if candidateIndex < 0 || candidateIndex >= len(m.candidates) {
			return fmt.Errorf("%w: invalid candidate index %d", ErrReverted, candidateIndex)
		}
		m.candidates[candidateIndex].votes++
		return nil
	})
}

func (m *Memory) Receipt(ctx context.Context, txHash string) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[OpReceipt]++

	if err, ok := m.faults[OpReceipt]; ok {
		delete(m.faults, OpReceipt)
		return nil, err
	}

	r, ok := m.receipts[strings.ToLower(txHash)]
	if !ok {
		return nil, ErrReceiptNotFound
	}
	return &r, nil
}

// transact applies fn as one mined block. A revert still produces a failed
// receipt, the way a mined-but-rejected transaction does on chain.
func (m *Memory) transact(ctx context.Context, op string, fn func() error) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[op]++

	if err, ok := m.faults[op]; ok {
		delete(m.faults, op)
		return nil, err
	}

	hash, err := randomTxHash()
	if err != nil {
		return nil, err
	}
	m.block++

	r := Receipt{
		TxHash:      hash,
		BlockNumber: m.block,
		GasUsed:     memoryGas[op],
		Status:      StatusSuccess,
	}
	applyErr := fn()
	if applyErr != nil {
		r.Status = StatusFailed
	}
	m.receipts[hash] = r

	if applyErr != nil {
		return &r, fmt.Errorf("%s: %w", op, applyErr)
	}
	return &r, nil
}

func randomTxHash() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate tx hash: %w", err)
	}
	return "0x" + hex.EncodeToString(b), nil
}
