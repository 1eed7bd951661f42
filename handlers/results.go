// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/athena/elections"
	"github.com/danielhkuo/athena/middleware"
)

type ResultsHandler struct {
	svc *elections.Service
}

func NewResultsHandler(svc *elections.Service) *ResultsHandler {
	return &ResultsHandler{svc: svc}
}

// GetResults handles GET /elections/{id}/results
// Counts come from stored votes, never from the ledger
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	results, err := h.svc.Results(r.Context(), id)
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, results)
}

// GetStatus handles GET /elections/{id}/status
func (h *ResultsHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	status, err := h.svc.Status(r.Context(), id)
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, status)
}

// VerifyTransaction handles GET /ledger/transactions/{hash}
func (h *ResultsHandler) VerifyTransaction(w http.ResponseWriter, r *http.Request) {
	verification, err := h.svc.VerifyTransaction(r.Context(), r.PathValue("hash"))
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, verification)
}
