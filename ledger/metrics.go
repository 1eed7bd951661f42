// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
)

// Call outcomes recorded by the instrumented gateway
const (
	OutcomeSuccess  = "success"
	OutcomeReverted = "reverted"
	OutcomeError    = "error"
)

// defines prometheus metrics
var (
	promCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "athena_ledger_calls_total",
		Help: "ledger gateway calls by operation and outcome",
	}, []string{"op", "outcome"})

	promLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "athena_ledger_call_duration_seconds",
		Help:    "time from submission to confirmation of ledger calls",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
	}, []string{"op"})

	promGas = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "athena_ledger_gas_used_total",
		Help: "gas consumed by confirmed ledger transactions",
	}, []string{"op"})
)

// Collectors returns the gateway metrics for registration
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{promCalls, promLatency, promGas}
}

type instrumented struct {
	next Gateway
}

// Instrument wraps g with metrics and confirmation logging. A nil gateway
// stays nil so disabled mirroring remains detectable.
func Instrument(g Gateway) Gateway {
	if g == nil {
		return nil
	}
	return &instrumented{next: g}
}

func (i *instrumented) ConfigureElection(ctx context.Context, title string, candidates []string) (*Receipt, error) {
	start := time.Now()
	r, err := i.next.ConfigureElection(ctx, title, candidates)
	return observe(OpConfigureElection, start, r, err)
}

func (i *instrumented) OpenElection(ctx context.Context) (*Receipt, error) {
	start := time.Now()
	r, err := i.next.OpenElection(ctx)
	return observe(OpOpenElection, start, r, err)
}

func (i *instrumented) CloseElection(ctx context.Context) (*Receipt, error) {
	start := time.Now()
	r, err := i.next.CloseElection(ctx)
	return observe(OpCloseElection, start, r, err)
}

func (i *instrumented) AddCandidate(ctx context.Context, name string) (*Receipt, error) {
	start := time.Now()
	r, err := i.next.AddCandidate(ctx, name)
	return observe(OpAddCandidate, start, r, err)
}

func (i *instrumented) CastVote(ctx context.Context, candidateIndex int) (*Receipt, error) {
	start := time.Now()
	r, err := i.next.CastVote(ctx, candidateIndex)
	return observe(OpCastVote, start, r, err)
}

func (i *instrumented) Receipt(ctx context.Context, txHash string) (*Receipt, error) {
	start := time.Now()
	r, err := i.next.Receipt(ctx, txHash)
	promLatency.WithLabelValues(OpReceipt).Observe(time.Since(start).Seconds())
	if err != nil && !errors.Is(err, ErrReceiptNotFound) {
		promCalls.WithLabelValues(OpReceipt, OutcomeError).Inc()
	} else {
		promCalls.WithLabelValues(OpReceipt, OutcomeSuccess).Inc()
	}
	return r, err
}

func observe(op string, start time.Time, r *Receipt, err error) (*Receipt, error) {
	took := time.Since(start)
	promLatency.WithLabelValues(op).Observe(took.Seconds())

	if r != nil {
		promGas.WithLabelValues(op).Add(float64(r.GasUsed))
	}

	switch {
	case err == nil:
		promCalls.WithLabelValues(op, OutcomeSuccess).Inc()
		if r != nil {
			slog.Info("ledger transaction confirmed",
				"op", op,
				"tx", r.TxHash,
				"block", r.BlockNumber,
				"gas", humanize.Comma(int64(r.GasUsed)),
				"took", took,
			)
		}
	case errors.Is(err, ErrReverted):
		promCalls.WithLabelValues(op, OutcomeReverted).Inc()
		slog.Warn("ledger transaction reverted", "op", op, "error", err, "took", took)
	default:
		promCalls.WithLabelValues(op, OutcomeError).Inc()
		slog.Error("ledger call failed", "op", op, "error", err, "took", took)
	}

	return r, err
}
