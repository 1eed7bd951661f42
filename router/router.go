// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/athena/cliparse"
	"github.com/danielhkuo/athena/elections"
	"github.com/danielhkuo/athena/handlers"
	"github.com/danielhkuo/athena/middleware"
)

// NewRouter wires every endpoint onto a ServeMux. A nil registry leaves
// /metrics unregistered.
func NewRouter(svc *elections.Service, cfg cliparse.Config, reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	admin := middleware.RequireAdmin(cfg.AdminKey)
	logged := middleware.WithLogging

	// Initialize handlers
	electionHandler := handlers.NewElectionHandler(svc)
	candidateHandler := handlers.NewCandidateHandler(svc)
	voteHandler := handlers.NewVoteHandler(svc)
	resultsHandler := handlers.NewResultsHandler(svc)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if reg != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	// Election lifecycle
	mux.HandleFunc("POST /elections", logged(admin(electionHandler.CreateElection)))
	mux.HandleFunc("GET /elections", logged(electionHandler.ListElections))
	mux.HandleFunc("GET /elections/{id}", logged(electionHandler.GetElection))
	mux.HandleFunc("PUT /elections/{id}", logged(admin(electionHandler.UpdateElection)))
	mux.HandleFunc("DELETE /elections/{id}", logged(admin(electionHandler.DeleteElection)))
	mux.HandleFunc("POST /elections/{id}/start", logged(admin(electionHandler.StartElection)))
	mux.HandleFunc("POST /elections/{id}/end", logged(admin(electionHandler.EndElection)))

	// Candidates
	mux.HandleFunc("POST /elections/{id}/candidates", logged(admin(candidateHandler.CreateCandidate)))
	mux.HandleFunc("GET /elections/{id}/candidates", logged(candidateHandler.ListCandidates))
	mux.HandleFunc("GET /candidates/{id}", logged(candidateHandler.GetCandidate))
	mux.HandleFunc("PUT /candidates/{id}", logged(admin(candidateHandler.UpdateCandidate)))
	mux.HandleFunc("DELETE /candidates/{id}", logged(admin(candidateHandler.DeleteCandidate)))

	// Voting (public, deduplicated by ledger hash)
	mux.HandleFunc("POST /elections/{id}/votes", logged(voteHandler.RegisterVote))

	// Results and ledger lookups
	mux.HandleFunc("GET /elections/{id}/results", logged(resultsHandler.GetResults))
	mux.HandleFunc("GET /elections/{id}/status", logged(resultsHandler.GetStatus))
	mux.HandleFunc("GET /ledger/transactions/{hash}", logged(resultsHandler.VerifyTransaction))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("athena API v1"))
	})

	return mux
}
