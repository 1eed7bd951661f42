// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/danielhkuo/athena/elections"
	"github.com/danielhkuo/athena/ledger"
	"github.com/danielhkuo/athena/models"
	"github.com/danielhkuo/athena/testutil"
)

func idStr(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestCreateElection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewElectionHandler(elections.New(db, nil))

	start := time.Now().UTC().Add(time.Hour)
	end := start.Add(48 * time.Hour)

	t.Run("valid election", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/elections", models.CreateElectionRequest{
			Title:      "Board 2025",
			StartsAt:   &start,
			EndsAt:     &end,
			Candidates: []string{"Alice", "Bob"},
		}, nil)
		w := httptest.NewRecorder()

		handler.CreateElection(w, req)

		testutil.AssertStatus(t, w, http.StatusCreated)
		var resp models.ElectionWithCandidates
		testutil.AssertJSON(t, w, &resp)
		if resp.ID == 0 {
			t.Error("Expected an election id")
		}
		if resp.Active {
			t.Error("Expected new election to be inactive")
		}
		if len(resp.Candidates) != 2 {
			t.Fatalf("Expected 2 candidates, got %d", len(resp.Candidates))
		}
		if resp.Candidates[1].LedgerIndex == nil || *resp.Candidates[1].LedgerIndex != 1 {
			t.Errorf("Expected second candidate at index 1, got %v", resp.Candidates[1].LedgerIndex)
		}
	})

	t.Run("end before start", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/elections", models.CreateElectionRequest{
			Title:    "Backwards",
			StartsAt: &end,
			EndsAt:   &start,
		}, nil)
		w := httptest.NewRecorder()

		handler.CreateElection(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
		if n := testutil.CountRows(t, db, "election", 0); n != 1 {
			t.Errorf("Expected only the first election to exist, got %d", n)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/elections", nil)
		w := httptest.NewRecorder()

		handler.CreateElection(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestCreateElection_LedgerDown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mem := ledger.NewMemory()
	handler := NewElectionHandler(elections.New(db, mem))

	mem.FailNext(ledger.OpConfigureElection, errLedgerDown)
	req := testutil.MakeRequest("POST", "/elections", models.CreateElectionRequest{Title: "Mirrored"}, nil)
	w := httptest.NewRecorder()

	handler.CreateElection(w, req)

	testutil.AssertStatus(t, w, http.StatusBadGateway)
	if n := testutil.CountRows(t, db, "election", 0); n != 0 {
		t.Errorf("Expected no election after ledger failure, got %d", n)
	}
}

func TestElectionLifecycleHandlers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewElectionHandler(elections.New(db, nil))
	id := testutil.CreateTestElection(t, db, "Draft", "draft")

	call := func(fn http.HandlerFunc, method, path string, id int64) *httptest.ResponseRecorder {
		req := testutil.MakeRequest(method, path, nil, nil)
		req.SetPathValue("id", idStr(id))
		w := httptest.NewRecorder()
		fn(w, req)
		return w
	}

	w := call(handler.StartElection, "POST", "/elections/"+idStr(id)+"/start", id)
	testutil.AssertStatus(t, w, http.StatusOK)
	var started models.Election
	testutil.AssertJSON(t, w, &started)
	if !started.Active {
		t.Error("Expected election to be active after start")
	}

	w = call(handler.StartElection, "POST", "/elections/"+idStr(id)+"/start", id)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = call(handler.DeleteElection, "DELETE", "/elections/"+idStr(id), id)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = call(handler.EndElection, "POST", "/elections/"+idStr(id)+"/end", id)
	testutil.AssertStatus(t, w, http.StatusOK)
	var ended models.Election
	testutil.AssertJSON(t, w, &ended)
	if ended.Active {
		t.Error("Expected election to be inactive after end")
	}

	w = call(handler.EndElection, "POST", "/elections/"+idStr(id)+"/end", id)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = call(handler.DeleteElection, "DELETE", "/elections/"+idStr(id), id)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	w = call(handler.GetElection, "GET", "/elections/"+idStr(id), id)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestUpdateElection_RejectsActiveFlag(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewElectionHandler(elections.New(db, nil))
	id := testutil.CreateTestElection(t, db, "Draft", "draft")

	active := true
	req := testutil.MakeRequest("PUT", "/elections/"+idStr(id), models.UpdateElectionRequest{Active: &active}, nil)
	req.SetPathValue("id", idStr(id))
	w := httptest.NewRecorder()

	handler.UpdateElection(w, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestDeleteElection_MirrorEnabled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewElectionHandler(elections.New(db, ledger.NewMemory()))
	id := testutil.CreateTestElection(t, db, "Draft", "draft")

	req := testutil.MakeRequest("DELETE", "/elections/"+idStr(id), nil, nil)
	req.SetPathValue("id", idStr(id))
	w := httptest.NewRecorder()

	handler.DeleteElection(w, req)

	testutil.AssertStatus(t, w, http.StatusNotImplemented)
}

func TestListAndGetElections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewElectionHandler(elections.New(db, nil))
	first := testutil.CreateTestElection(t, db, "First", "draft")
	testutil.CreateTestElection(t, db, "Second", "active")

	w := httptest.NewRecorder()
	handler.ListElections(w, testutil.MakeRequest("GET", "/elections", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var list []models.Election
	testutil.AssertJSON(t, w, &list)
	if len(list) != 2 {
		t.Fatalf("Expected 2 elections, got %d", len(list))
	}
	if !list[1].Active {
		t.Error("Expected second election to be active")
	}

	req := testutil.MakeRequest("GET", "/elections/"+idStr(first), nil, nil)
	req.SetPathValue("id", idStr(first))
	w = httptest.NewRecorder()
	handler.GetElection(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)
	var got models.Election
	testutil.AssertJSON(t, w, &got)
	if got.Title != "First" {
		t.Errorf("Expected title 'First', got '%s'", got.Title)
	}

	for _, bad := range []string{"abc", "0", "-3"} {
		req := testutil.MakeRequest("GET", "/elections/"+bad, nil, nil)
		req.SetPathValue("id", bad)
		w := httptest.NewRecorder()
		handler.GetElection(w, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	}
}
