// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Athena API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(svc, cfg, registry)

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Election management (admin, requires X-Admin-Key):

	POST   /elections              - Create draft election
	PUT    /elections/{id}         - Edit title, description, dates
	DELETE /elections/{id}         - Delete (only without ledger mirroring)
	POST   /elections/{id}/start   - Open voting
	POST   /elections/{id}/end     - Close voting
	POST   /elections/{id}/candidates - Add candidate
	PUT    /candidates/{id}        - Rename candidate
	DELETE /candidates/{id}        - Delete (only without ledger mirroring)

Public:

	GET  /elections
	GET  /elections/{id}
	GET  /elections/{id}/candidates
	GET  /candidates/{id}
	POST /elections/{id}/votes
	GET  /elections/{id}/results
	GET  /elections/{id}/status
	GET  /ledger/transactions/{hash}

All handlers share one *elections.Service.
*/
package router
