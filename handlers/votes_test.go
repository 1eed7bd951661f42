// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/athena/elections"
	"github.com/danielhkuo/athena/ledger"
	"github.com/danielhkuo/athena/models"
	"github.com/danielhkuo/athena/testutil"
)

func postVote(handler *VoteHandler, electionID, candidateID int64, hash string) *httptest.ResponseRecorder {
	req := testutil.MakeRequest("POST", "/elections/"+idStr(electionID)+"/votes", models.RegisterVoteRequest{
		CandidateID: candidateID,
		LedgerHash:  hash,
	}, nil)
	req.SetPathValue("id", idStr(electionID))
	w := httptest.NewRecorder()
	handler.RegisterVote(w, req)
	return w
}

func TestRegisterVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewVoteHandler(elections.New(db, nil))
	e := testutil.CreateTestElection(t, db, "Active", "active")
	a := testutil.AddTestCandidate(t, db, e, "Alice")
	b := testutil.AddTestCandidate(t, db, e, "Bob")

	w := postVote(handler, e, a, "0xABC123")
	testutil.AssertStatus(t, w, http.StatusCreated)
	var receipt models.VoteReceipt
	testutil.AssertJSON(t, w, &receipt)
	if receipt.LedgerHash != "0xabc123" {
		t.Errorf("Expected normalized hash, got '%s'", receipt.LedgerHash)
	}
	if receipt.CandidateVotes != 1 {
		t.Errorf("Expected total_votos_candidato 1, got %d", receipt.CandidateVotes)
	}

	// Replay on another candidate
	w = postVote(handler, e, b, "0xabc123")
	testutil.AssertStatus(t, w, http.StatusConflict)

	w = postVote(handler, e, 0, "0xabc999")
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = postVote(handler, e, a, "0x1")
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = postVote(handler, 999, a, "0xabc998")
	testutil.AssertStatus(t, w, http.StatusNotFound)

	if n := testutil.CountRows(t, db, "vote", e); n != 1 {
		t.Errorf("Expected 1 vote, got %d", n)
	}
}

func TestRegisterVote_InactiveElection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewVoteHandler(elections.New(db, nil))
	e := testutil.CreateTestElection(t, db, "Closed", "closed")
	c := testutil.AddTestCandidate(t, db, e, "Alice")

	w := postVote(handler, e, c, "0xabc123")
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestRegisterVote_LedgerDown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mem := ledger.NewMemory()
	svc := elections.New(db, mem)
	handler := NewVoteHandler(svc)

	ctx := t.Context()
	created, err := svc.CreateElection(ctx, models.CreateElectionRequest{Title: "Mirrored", Candidates: []string{"Alice"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.StartElection(ctx, created.ID); err != nil {
		t.Fatal(err)
	}

	mem.FailNext(ledger.OpCastVote, errLedgerDown)
	w := postVote(handler, created.ID, created.Candidates[0].ID, "0xabc123")
	testutil.AssertStatus(t, w, http.StatusBadGateway)

	if n := testutil.CountRows(t, db, "vote", 0); n != 0 {
		t.Errorf("Expected no vote rows after ledger failure, got %d", n)
	}

	w = postVote(handler, created.ID, created.Candidates[0].ID, "0xabc123")
	testutil.AssertStatus(t, w, http.StatusCreated)
	var receipt models.VoteReceipt
	testutil.AssertJSON(t, w, &receipt)
	if receipt.LedgerTx == "" {
		t.Error("Expected blockchain_tx when mirroring")
	}
}

// TestConcurrentSameHash verifies that when several requests carry the same
// ledger hash, exactly one vote is stored
func TestConcurrentSameHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewVoteHandler(elections.New(db, nil))
	e := testutil.CreateTestElection(t, db, "Active", "active")
	a := testutil.AddTestCandidate(t, db, e, "Alice")
	b := testutil.AddTestCandidate(t, db, e, "Bob")

	const attempts = 10
	var created, conflicts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cand := a
			if i%2 == 1 {
				cand = b
			}
			w := postVote(handler, e, cand, "0xSAME-HASH")
			switch w.Code {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusConflict:
				conflicts.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("Expected exactly 1 accepted vote, got %d", created.Load())
	}
	if conflicts.Load() != attempts-1 {
		t.Errorf("Expected %d conflicts, got %d", attempts-1, conflicts.Load())
	}
	if n := testutil.CountRows(t, db, "vote", e); n != 1 {
		t.Errorf("Expected 1 vote in database, got %d", n)
	}
}
