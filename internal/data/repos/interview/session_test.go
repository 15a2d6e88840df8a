package interview_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/data/repos/interview"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/data/repos/testutil"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/domain"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/dbctx"
)

func TestSessionRepoCreateAndGet(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	repo := interview.NewSessionRepo(gdb, log)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	seeded := testutil.SeedSession(t, ctx, tx, uuid.New(), 10)

	got, err := repo.GetByID(dbc, seeded.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil {
		t.Fatalf("expected session, got nil")
	}
	if got.JobRole != "backend" || got.Status != domain.SessionActive {
		t.Fatalf("unexpected session: role=%q status=%q", got.JobRole, got.Status)
	}

	missing, err := repo.GetByID(dbc, uuid.New())
	if err != nil {
		t.Fatalf("GetByID missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown id, got %+v", missing)
	}
}

func TestSessionRepoUpdateCAS(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	repo := interview.NewSessionRepo(gdb, log)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	s := testutil.SeedSession(t, ctx, tx, uuid.New(), 10)

	anchor := "conv-1"
	s.CurrentIndex = 1
	s.LastAnchorID = &anchor
	if err := repo.UpdateCAS(dbc, s, 0); err != nil {
		t.Fatalf("UpdateCAS: %v", err)
	}
	if s.Version != 1 {
		t.Fatalf("expected version bump to 1, got %d", s.Version)
	}

	got, err := repo.GetByID(dbc, s.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.CurrentIndex != 1 || got.LastAnchorID == nil || *got.LastAnchorID != anchor {
		t.Fatalf("update not persisted: index=%d anchor=%v", got.CurrentIndex, got.LastAnchorID)
	}
}

func TestSessionRepoUpdateCASStaleVersion(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	repo := interview.NewSessionRepo(gdb, log)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	s := testutil.SeedSession(t, ctx, tx, uuid.New(), 10)

	s.CurrentIndex = 1
	if err := repo.UpdateCAS(dbc, s, 0); err != nil {
		t.Fatalf("first UpdateCAS: %v", err)
	}

	// A writer holding the pre-update read loses the swap.
	s.CurrentIndex = 2
	err := repo.UpdateCAS(dbc, s, 0)
	if !errors.Is(err, interview.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	got, err := repo.GetByID(dbc, s.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.CurrentIndex != 1 || got.Version != 1 {
		t.Fatalf("stale write leaked: index=%d version=%d", got.CurrentIndex, got.Version)
	}
}

func TestSessionRepoUpdateCASTerminal(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	repo := interview.NewSessionRepo(gdb, log)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	s := testutil.SeedSession(t, ctx, tx, uuid.New(), 10)

	now := time.Now().UTC()
	s.Status = domain.SessionFinished
	s.EndedAt = &now
	if err := repo.UpdateCAS(dbc, s, 0); err != nil {
		t.Fatalf("UpdateCAS: %v", err)
	}

	got, err := repo.GetByID(dbc, s.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != domain.SessionFinished || got.EndedAt == nil {
		t.Fatalf("terminal state not persisted: status=%q endedAt=%v", got.Status, got.EndedAt)
	}
}

func TestSessionRepoListByUser(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	repo := interview.NewSessionRepo(gdb, log)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	owner := uuid.New()
	other := uuid.New()
	for i := 0; i < 3; i++ {
		testutil.SeedSession(t, ctx, tx, owner, 10)
	}
	testutil.SeedSession(t, ctx, tx, other, 10)

	out, err := repo.ListByUser(dbc, owner, 50)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(out))
	}
	for _, s := range out {
		if s.UserID != owner {
			t.Fatalf("foreign session in listing: %s", s.ID)
		}
	}
}
