// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Every request gets an id (the caller's X-Request-ID, or a new UUID) that is
echoed back and available via RequestID(ctx). Completion is logged with
status and duration_ms, and counted in athena_http_requests_total by route
pattern.

# Admin Guard

	admin := middleware.RequireAdmin(cfg.AdminKey)
	mux.HandleFunc("POST /elections", middleware.WithLogging(admin(h.Create)))

Missing keys get 401, wrong keys 403.

# Errors

ServiceError maps engine errors to statuses:

	not found → 404, bad request → 400, conflict → 409,
	unsupported → 501, upstream sync → 502, anything else → 500

Uncategorized errors are logged and returned as a generic 500.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.CandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
*/
package middleware
