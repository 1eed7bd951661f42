// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package elections

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/athena/ledger"
	"github.com/danielhkuo/athena/models"
	"github.com/danielhkuo/athena/testutil"
)

func TestElectionLifecycle(t *testing.T) {
	svc, mem, _ := newMirroredService(t)
	ctx := context.Background()

	start := time.Now().UTC().Add(time.Hour)
	end := start.Add(48 * time.Hour)
	created, err := svc.CreateElection(ctx, models.CreateElectionRequest{
		Title:       "Board 2025",
		Description: ptr("Annual board vote"),
		StartsAt:    &start,
		EndsAt:      &end,
		Candidates:  []string{"Alice", " Bob ", ""},
	})
	require.NoError(t, err)
	assert.False(t, created.Active)
	assert.Equal(t, models.StateDraft, created.State())
	assert.NotEmpty(t, created.LedgerTx)
	require.Len(t, created.Candidates, 2)
	assert.Equal(t, "Bob", created.Candidates[1].Name)
	assert.Equal(t, "Board 2025", mem.Title())
	assert.Equal(t, []string{"Alice", "Bob"}, mem.Candidates())

	started, err := svc.StartElection(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, started.Active)
	require.NotNil(t, started.StartsAt)
	assert.WithinDuration(t, time.Now(), *started.StartsAt, 5*time.Second)
	assert.True(t, mem.IsOpen())

	ended, err := svc.EndElection(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, ended.Active)
	assert.False(t, mem.IsOpen())

	got, err := svc.GetElection(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateClosed, got.State())
	require.NotNil(t, got.EndsAt)
	assert.WithinDuration(t, time.Now(), *got.EndsAt, 5*time.Second)
}

func TestCreateElectionRejectsBadWindow(t *testing.T) {
	svc, conn := newService(t)
	ctx := context.Background()

	start := time.Now().UTC().Add(time.Hour)
	for _, end := range []time.Time{start, start.Add(-time.Minute)} {
		_, err := svc.CreateElection(ctx, models.CreateElectionRequest{
			Title:    "Bad window",
			StartsAt: &start,
			EndsAt:   &end,
		})
		assert.True(t, errors.Is(err, ErrBadRequest), "end %v", end)
	}
	assert.Equal(t, 0, testutil.CountRows(t, conn, "election", 0))
}

func TestCreateElectionValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.CreateElectionRequest
	}{
		{"missing title", models.CreateElectionRequest{Title: "  "}},
		{"title too long", models.CreateElectionRequest{Title: strings.Repeat("x", 256)}},
		{"active on create", models.CreateElectionRequest{Title: "x", Active: ptr(true)}},
		{"candidate name too long", models.CreateElectionRequest{Title: "x", Candidates: []string{strings.Repeat("n", 256)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateElection(ctx, tt.req)
			assert.True(t, errors.Is(err, ErrBadRequest), "got %v", err)
		})
	}

	// An explicit false is the default and accepted
	_, err := svc.CreateElection(ctx, models.CreateElectionRequest{Title: "ok", Active: ptr(false)})
	assert.NoError(t, err)
}

func TestCreateElectionLedgerFailure(t *testing.T) {
	svc, mem, conn := newMirroredService(t)
	mem.FailNext(ledger.OpConfigureElection, errRPC)

	_, err := svc.CreateElection(context.Background(), models.CreateElectionRequest{
		Title:      "Orphan",
		Candidates: []string{"Alice"},
	})
	require.Error(t, err)
	assert.Equal(t, KindUpstream, KindOf(err))
	assert.Equal(t, 0, testutil.CountRows(t, conn, "election", 0))
	assert.Equal(t, 0, testutil.CountRows(t, conn, "candidate", 0))
}

func TestListElections(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	list, err := svc.ListElections(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)

	first := createElection(t, svc)
	second := createElection(t, svc)

	list, err = svc.ListElections(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
}

func TestGetElectionNotFound(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.GetElection(context.Background(), 999)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUpdateElection(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	e := createElection(t, svc)

	start := time.Now().UTC().Add(time.Hour)
	end := start.Add(time.Hour)
	updated, err := svc.UpdateElection(ctx, e.ID, models.UpdateElectionRequest{
		Title:    ptr("Renamed"),
		StartsAt: &start,
		EndsAt:   &end,
		Active:   ptr(false), // unchanged value is allowed
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	got, err := svc.GetElection(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	require.NotNil(t, got.EndsAt)
	assert.WithinDuration(t, end, *got.EndsAt, time.Second)

	t.Run("active flag cannot change", func(t *testing.T) {
		_, err := svc.UpdateElection(ctx, e.ID, models.UpdateElectionRequest{Active: ptr(true)})
		assert.True(t, errors.Is(err, ErrBadRequest))

		got, err := svc.GetElection(ctx, e.ID)
		require.NoError(t, err)
		assert.False(t, got.Active)
	})

	t.Run("ordering is checked against stored dates", func(t *testing.T) {
		early := start.Add(-time.Hour)
		_, err := svc.UpdateElection(ctx, e.ID, models.UpdateElectionRequest{EndsAt: &early})
		assert.True(t, errors.Is(err, ErrBadRequest))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.UpdateElection(ctx, 999, models.UpdateElectionRequest{Title: ptr("x")})
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestStartElectionRules(t *testing.T) {
	svc, conn := newService(t)
	ctx := context.Background()

	t.Run("already active", func(t *testing.T) {
		id := testutil.CreateTestElection(t, conn, "Active", "active")
		_, err := svc.StartElection(ctx, id)
		assert.True(t, errors.Is(err, ErrBadRequest))
	})

	t.Run("end already passed", func(t *testing.T) {
		e := createElection(t, svc)
		past := time.Now().UTC().Add(-time.Hour)
		_, err := svc.UpdateElection(ctx, e.ID, models.UpdateElectionRequest{EndsAt: &past})
		require.NoError(t, err)

		_, err = svc.StartElection(ctx, e.ID)
		assert.True(t, errors.Is(err, ErrBadRequest))
	})

	t.Run("restart after close", func(t *testing.T) {
		id := testutil.CreateTestElection(t, conn, "Closed", "closed")
		// ends_at is in the past, so it must be cleared first
		_, err := svc.StartElection(ctx, id)
		assert.True(t, errors.Is(err, ErrBadRequest))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.StartElection(ctx, 999)
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestEndElectionRules(t *testing.T) {
	now := time.Now().UTC()
	svc, conn := newService(t)
	ctx := context.Background()

	t.Run("not active", func(t *testing.T) {
		e := createElection(t, svc)
		_, err := svc.EndElection(ctx, e.ID)
		assert.True(t, errors.Is(err, ErrBadRequest))
	})

	t.Run("clock before start", func(t *testing.T) {
		id := testutil.CreateTestElection(t, conn, "Active", "active")
		skewed := New(conn, nil, WithClock(func() time.Time { return now.Add(-24 * time.Hour) }))
		_, err := skewed.EndElection(ctx, id)
		assert.True(t, errors.Is(err, ErrBadRequest))

		got, err := svc.GetElection(ctx, id)
		require.NoError(t, err)
		assert.True(t, got.Active)
	})
}

func TestStartElectionLedgerFailure(t *testing.T) {
	svc, mem, _ := newMirroredService(t)
	ctx := context.Background()
	e := createElection(t, svc, "Alice")

	mem.FailNext(ledger.OpOpenElection, errRPC)
	_, err := svc.StartElection(ctx, e.ID)
	assert.True(t, errors.Is(err, ErrUpstreamSync))

	got, err := svc.GetElection(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, models.StateDraft, got.State())
	assert.Nil(t, got.StartsAt)
}

func TestEndElectionLedgerFailure(t *testing.T) {
	svc, mem, _ := newMirroredService(t)
	ctx := context.Background()
	e := createElection(t, svc, "Alice")
	_, err := svc.StartElection(ctx, e.ID)
	require.NoError(t, err)

	mem.FailNext(ledger.OpCloseElection, errRPC)
	_, err = svc.EndElection(ctx, e.ID)
	assert.True(t, errors.Is(err, ErrUpstreamSync))

	got, err := svc.GetElection(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, got.Active)
	assert.Nil(t, got.EndsAt)
}

func TestDeleteElection(t *testing.T) {
	svc, conn := newService(t)
	ctx := context.Background()

	e := createElection(t, svc, "Alice", "Bob")
	cand := e.Candidates[0].ID
	testutil.AddTestVote(t, conn, e.ID, cand, "0xdeadbeef")

	require.NoError(t, svc.DeleteElection(ctx, e.ID))
	assert.Equal(t, 0, testutil.CountRows(t, conn, "election", 0))
	assert.Equal(t, 0, testutil.CountRows(t, conn, "candidate", 0))
	assert.Equal(t, 0, testutil.CountRows(t, conn, "vote", 0))

	assert.True(t, errors.Is(svc.DeleteElection(ctx, e.ID), ErrNotFound))

	active := testutil.CreateTestElection(t, conn, "Active", "active")
	assert.True(t, errors.Is(svc.DeleteElection(ctx, active), ErrBadRequest))
}

func TestDeleteElectionUnsupportedWhenMirrored(t *testing.T) {
	svc, _, conn := newMirroredService(t)
	e := createElection(t, svc, "Alice")

	err := svc.DeleteElection(context.Background(), e.ID)
	assert.True(t, errors.Is(err, ErrUnsupported))
	assert.Equal(t, 1, testutil.CountRows(t, conn, "election", 0))
}
