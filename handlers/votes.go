// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/athena/elections"
	"github.com/danielhkuo/athena/middleware"
	"github.com/danielhkuo/athena/models"
)

type VoteHandler struct {
	svc *elections.Service
}

func NewVoteHandler(svc *elections.Service) *VoteHandler {
	return &VoteHandler{svc: svc}
}

// RegisterVote handles POST /elections/{id}/votes
// Body: {"candidato_id": 1, "hash_blockchain": "0x..."}
func (h *VoteHandler) RegisterVote(w http.ResponseWriter, r *http.Request) {
	electionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.RegisterVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.CandidateID <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidato_id is required")
		return
	}

	receipt, err := h.svc.RegisterVote(r.Context(), electionID, req.CandidateID, req.LedgerHash)
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, receipt)
}
