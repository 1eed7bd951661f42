// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/athena/auth"
	"github.com/danielhkuo/athena/elections"
	"github.com/danielhkuo/athena/models"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// AdminKeyHeader carries the admin API key
const AdminKeyHeader = "X-Admin-Key"

type ctxKey int

const requestIDKey ctxKey = iota

var promRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "athena_http_requests_total",
	Help: "HTTP requests by route pattern and status",
}, []string{"method", "route", "status"})

var promDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "athena_http_request_duration_seconds",
	Help:    "HTTP request latency by route pattern",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "route"})

// Collectors returns the HTTP metrics for registration
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{promRequests, promDuration}
}

// statusRecorder remembers the status code written by the handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestID returns the id assigned by WithLogging, or "" outside a request
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithLogging wraps a handler with request logging. Each request gets an id,
// taken from X-Request-ID when the caller supplies one.
func WithLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, id))

		// Log request
		slog.Info("request started",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"remote", GetClientIP(r),
		)

		// Call the next handler
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		// Log completion
		duration := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		promRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		promDuration.WithLabelValues(r.Method, route).Observe(duration.Seconds())
		slog.Info("request completed",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", duration.Milliseconds(),
		)
	}
}

// RequireAdmin rejects requests whose X-Admin-Key does not match key
func RequireAdmin(key string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(AdminKeyHeader)
			if err := auth.ValidateAdminKey(provided, key); err != nil {
				if errors.Is(err, auth.ErrInvalidAdminKey) {
					slog.Warn("rejected admin key",
						"request_id", RequestID(r.Context()),
						"path", r.URL.Path,
						"fingerprint", auth.Fingerprint(provided),
					)
					ErrorResponse(w, http.StatusForbidden, "Invalid admin key")
					return
				}
				ErrorResponse(w, http.StatusUnauthorized, "X-Admin-Key header required")
				return
			}
			next(w, r)
		}
	}
}

// JSONResonse writes a JSON response
func JSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse writes a JSON error response
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	JSONResponse(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// StatusFor maps an engine error to its HTTP status
func StatusFor(err error) int {
	switch elections.KindOf(err) {
	case elections.KindNotFound:
		return http.StatusNotFound
	case elections.KindBadRequest:
		return http.StatusBadRequest
	case elections.KindConflict:
		return http.StatusConflict
	case elections.KindUnsupported:
		return http.StatusNotImplemented
	case elections.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ServiceError writes err as a JSON error. Uncategorized errors are logged
// and reported without detail.
func ServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)

	var e *elections.Error
	if status == http.StatusInternalServerError || !errors.As(err, &e) {
		slog.Error("request failed", "request_id", RequestID(r.Context()), "path", r.URL.Path, "error", err)
		ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if status == http.StatusBadGateway {
		slog.Error("ledger sync failed", "request_id", RequestID(r.Context()), "path", r.URL.Path, "error", err)
	}
	ErrorResponse(w, status, e.Message)
}

// ParseJSONBody parses the request body into the given struct
func ParseJSONBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}

// CORS middleware allows cross-origin requests from the frontend
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Admin-Key, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetClientIP extracts the client IP address
// Checks X-Forwarded-For, X-Real-IP, then falls back to RemoteAddr
func GetClientIP(r *http.Request) string {
	// Check X-Forwarded-For (load balancers)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take first IP in chain
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' || xff[i] == ' ' {
				return xff[:i]
			}
		}
		return xff
	}

	// Check X-Real-IP (nginx)
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr
	// Strip port if present
	addr := r.RemoteAddr
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}
