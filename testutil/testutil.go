// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/athena/cliparse"
	"github.com/danielhkuo/athena/db"
)

// TestAdminKey is the admin key in GetTestConfig
const TestAdminKey = "test-admin-key"

// SetupTestDB opens a private in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), db.DialectSQLite, "file::memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  "file::memory:",
		DatabaseType: db.DialectSQLite,
		AdminKey:     TestAdminKey,
		LedgerMode:   cliparse.LedgerOff,
	}
}

// AdminHeaders returns the headers admin routes require
func AdminHeaders() map[string]string {
	return map[string]string{"X-Admin-Key": TestAdminKey}
}

// CreateTestElection inserts an election directly and returns its ID.
// state should be "draft", "active", or "closed".
func CreateTestElection(t *testing.T, conn *sql.DB, title, state string) int64 {
	t.Helper()

	now := time.Now().UTC()
	var startsAt, endsAt, openedAt *time.Time
	active := false
	switch state {
	case "active":
		active = true
		start := now.Add(-time.Hour)
		startsAt, openedAt = &start, &start
	case "closed":
		start, end := now.Add(-2*time.Hour), now.Add(-time.Hour)
		startsAt, endsAt, openedAt = &start, &end, &start
	}

	var id int64
	err := conn.QueryRow(`
		INSERT INTO election (title, description, starts_at, ends_at, active, opened_at, created_at)
		VALUES ($1, 'A test election', $2, $3, $4, $5, $6)
		RETURNING id
	`, title, startsAt, endsAt, active, openedAt, now).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}

	return id
}

// AddTestCandidate inserts a candidate without a ledger index
func AddTestCandidate(t *testing.T, conn *sql.DB, electionID int64, name string) int64 {
	t.Helper()

	var id int64
	err := conn.QueryRow(`
		INSERT INTO candidate (election_id, name)
		VALUES ($1, $2)
		RETURNING id
	`, electionID, name).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	return id
}

// AddTestVote inserts a vote row directly, bypassing the ledger
func AddTestVote(t *testing.T, conn *sql.DB, electionID, candidateID int64, hash string) int64 {
	t.Helper()

	var id int64
	err := conn.QueryRow(`
		INSERT INTO vote (election_id, candidate_id, ledger_hash, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, electionID, candidateID, hash, time.Now().UTC()).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	return id
}

// CountRows returns the row count of table, optionally filtered by election
func CountRows(t *testing.T, conn *sql.DB, table string, electionID int64) int {
	t.Helper()

	var n int
	var err error
	if electionID == 0 {
		err = conn.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n)
	} else {
		err = conn.QueryRow(`SELECT COUNT(*) FROM `+table+` WHERE election_id = $1`, electionID).Scan(&n)
	}
	if err != nil {
		t.Fatalf("Failed to count %s rows: %v", table, err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
