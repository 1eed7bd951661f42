// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package elections is the election engine: lifecycle, candidate rosters,
vote registration and tallies, mirrored onto a ledger contract.

# Store and Ledger

The relational store is authoritative. When a ledger.Gateway is configured,
every write that has a ledger counterpart runs as

	begin → stage rows → ledger call → commit

and a failed ledger call rolls the staged rows back. Nothing is committed
locally that the ledger rejected:

	svc := elections.New(db, gateway)
	receipt, err := svc.RegisterVote(ctx, electionID, candidateID, "0xABC123")

Pass a nil gateway to run without mirroring.

# Lifecycle

Elections move draft → active → closed:

	CreateElection → configureElection(title, names)
	StartElection  → openElection()
	EndElection    → closeElection()

The active flag is never set by UpdateElection. Deletes are refused while
mirroring is enabled, since ledger state cannot be retracted.

# Ledger Indices

The contract addresses candidates by position. ReconcileIndices assigns
each candidate its 0-based rank by id and rewrites only stale values; it
runs before every operation that reports or uses an index.

# Errors

Failures carry a Kind that the HTTP layer maps to a status:

	KindNotFound    → 404
	KindBadRequest  → 400
	KindConflict    → 409 (ledger hash already used)
	KindUnsupported → 501
	KindUpstream    → 502 (ledger call failed, local write rolled back)

Use errors.Is with the Err* sentinels or KindOf to branch on them.
*/
package elections
