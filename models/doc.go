// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

JSON field names follow the wire contract existing clients already speak
(titulo, data_inicio, ativa, blockchain_index, ...). Go names are English.

# Request Types

  - CreateElectionRequest: titulo, descricao, data_inicio, data_fim, candidatos
  - UpdateElectionRequest: same fields, all optional
  - CandidateRequest: nome
  - RegisterVoteRequest: candidato_id, hash_blockchain

# Domain Types

  - Election: title, optional description, start/end timestamps, active flag
  - Candidate: name, owning election, reconciled ledger index
  - Vote: election, candidate, normalized ledger hash, timestamp

# Response Types

  - VoteReceipt: the stored vote plus the live candidate tally and mirror tx
  - ElectionResults: per-candidate live counts, highest first
  - ElectionStatus: totals plus the lifecycle state
  - TxVerification: receipt lookup result for a ledger transaction
  - ErrorResponse: error, message

# Election States

	StateDraft  = "draft"   // never started
	StateActive = "active"  // accepting votes
	StateClosed = "closed"  // started, then ended
*/
package models
