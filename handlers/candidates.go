// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/athena/elections"
	"github.com/danielhkuo/athena/middleware"
	"github.com/danielhkuo/athena/models"
)

type CandidateHandler struct {
	svc *elections.Service
}

func NewCandidateHandler(svc *elections.Service) *CandidateHandler {
	return &CandidateHandler{svc: svc}
}

// CreateCandidate handles POST /elections/{id}/candidates
func (h *CandidateHandler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	electionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.CandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	candidate, err := h.svc.CreateCandidate(r.Context(), electionID, req)
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, candidate)
}

// ListCandidates handles GET /elections/{id}/candidates
func (h *CandidateHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	electionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	candidates, err := h.svc.ListCandidates(r.Context(), electionID)
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, candidates)
}

// GetCandidate handles GET /candidates/{id}
func (h *CandidateHandler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	candidate, err := h.svc.GetCandidate(r.Context(), id)
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, candidate)
}

// UpdateCandidate handles PUT /candidates/{id}
func (h *CandidateHandler) UpdateCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.CandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	candidate, err := h.svc.UpdateCandidate(r.Context(), id, req)
	if err != nil {
		middleware.ServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, candidate)
}

// DeleteCandidate handles DELETE /candidates/{id}
func (h *CandidateHandler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteCandidate(r.Context(), id); err != nil {
		middleware.ServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
