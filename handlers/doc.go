// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Athena API.

# Handler Types

Each handler is a thin struct over the election engine:

  - ElectionHandler: Election lifecycle (create, update, start, end, delete)
  - CandidateHandler: Roster edits and listing
  - VoteHandler: Vote registration
  - ResultsHandler: Tallies, status and ledger transaction lookups

	electionHandler := handlers.NewElectionHandler(svc)

Handlers decode the request, call the service and translate its error kind
with middleware.ServiceError. Business rules live in package elections.

# Election Lifecycle

Elections progress through three states: draft → active → closed

	POST /elections             → CreateElection
	POST /elections/{id}/start  → StartElection
	POST /elections/{id}/end    → EndElection

# Voting

	POST /elections/{id}/votes  {"candidato_id": 1, "hash_blockchain": "0x..."}

A hash can be used once across all elections. Replays get 409, and a
failed ledger mirror gets 502 with nothing stored.
*/
package handlers
