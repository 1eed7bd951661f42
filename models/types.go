package models

import "time"

// Election state names reported by status and serialized views
const (
	StateDraft  = "draft"
	StateActive = "active"
	StateClosed = "closed"
)

// Minimum and maximum ledger hash length after trimming
const (
	MinLedgerHashLen = 6
	MaxLedgerHashLen = 255
)

// Request types

type CreateElectionRequest struct {
	Title       string     `json:"titulo"`
	Description *string    `json:"descricao"`
	StartsAt    *time.Time `json:"data_inicio"`
	EndsAt      *time.Time `json:"data_fim"`
	Active      *bool      `json:"ativa"`
	Candidates  []string   `json:"candidatos"`
}

// Nil fields are left untouched
type UpdateElectionRequest struct {
	Title       *string    `json:"titulo"`
	Description *string    `json:"descricao"`
	StartsAt    *time.Time `json:"data_inicio"`
	EndsAt      *time.Time `json:"data_fim"`
	Active      *bool      `json:"ativa"`
}

type CandidateRequest struct {
	Name string `json:"nome"`
}

type RegisterVoteRequest struct {
	CandidateID int64  `json:"candidato_id"`
	LedgerHash  string `json:"hash_blockchain"`
}

// Domain types

type Election struct {
	ID          int64      `json:"id"`
	Title       string     `json:"titulo"`
	Description *string    `json:"descricao"`
	StartsAt    *time.Time `json:"data_inicio"`
	EndsAt      *time.Time `json:"data_fim"`
	Active      bool       `json:"ativa"`
	Started     bool       `json:"-"`
	CreatedAt   time.Time  `json:"-"`
	LedgerTx    string     `json:"blockchain_tx,omitempty"`
}

// State derives the lifecycle state from the active and started flags
func (e Election) State() string {
	switch {
	case e.Active:
		return StateActive
	case e.Started:
		return StateClosed
	default:
		return StateDraft
	}
}

type Candidate struct {
	ID          int64  `json:"id"`
	Name        string `json:"nome"`
	ElectionID  int64  `json:"eleicao_id"`
	LedgerIndex *int   `json:"blockchain_index"`
	Votes       int64  `json:"votos_count"`
	LedgerTx    string `json:"blockchain_tx,omitempty"`
}

type Vote struct {
	ID          int64     `json:"id"`
	ElectionID  int64     `json:"eleicao_id"`
	CandidateID int64     `json:"candidato_id"`
	LedgerHash  string    `json:"hash_blockchain"`
	CreatedAt   time.Time `json:"timestamp"`
}

// Response types

type ElectionWithCandidates struct {
	Election
	Candidates []Candidate `json:"candidatos,omitempty"`
}

type VoteReceipt struct {
	Vote
	CandidateVotes int64  `json:"total_votos_candidato"`
	LedgerTx       string `json:"blockchain_tx,omitempty"`
}

type CandidateResult struct {
	ID    int64  `json:"id"`
	Name  string `json:"nome"`
	Votes int64  `json:"votos"`
}

type ElectionResults struct {
	Election   Election          `json:"election"`
	Results    []CandidateResult `json:"results"`
	TotalVotes int64             `json:"total_votos"`
}

type ElectionStatus struct {
	Election        Election `json:"election"`
	State           string   `json:"estado"`
	TotalVotes      int64    `json:"total_votos"`
	TotalCandidates int64    `json:"total_candidatos"`
}

type TxVerification struct {
	Verified        bool   `json:"verified"`
	Status          string `json:"status"`
	BlockNumber     uint64 `json:"blockNumber,omitempty"`
	GasUsed         uint64 `json:"gasUsed,omitempty"`
	TransactionHash string `json:"transactionHash,omitempty"`
	Message         string `json:"message,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
