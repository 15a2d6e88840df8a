package interview_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/data/repos/interview"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/data/repos/testutil"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/domain"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/dbctx"
)

func TestAnswerRepoDuplicateIndex(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	repo := interview.NewAnswerRepo(gdb, log)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	s := testutil.SeedSession(t, ctx, tx, uuid.New(), 10)

	first := &domain.Answer{
		SessionID:     s.ID,
		QuestionIndex: 0,
		QuestionType:  domain.QuestionWarmUp,
		QuestionText:  "question",
		Transcript:    "first answer",
	}
	if err := repo.Create(dbc, first); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	dup := &domain.Answer{
		SessionID:     s.ID,
		QuestionIndex: 0,
		QuestionType:  domain.QuestionWarmUp,
		QuestionText:  "question",
		Transcript:    "second answer",
	}
	err := repo.Create(dbc, dup)
	if !errors.Is(err, interview.ErrDuplicateAnswer) {
		t.Fatalf("expected ErrDuplicateAnswer, got %v", err)
	}

	// Same index on a different session is fine.
	s2 := testutil.SeedSession(t, ctx, tx, uuid.New(), 10)
	ok := &domain.Answer{
		SessionID:     s2.ID,
		QuestionIndex: 0,
		QuestionType:  domain.QuestionWarmUp,
		QuestionText:  "question",
		Transcript:    "other session",
	}
	if err := repo.Create(dbc, ok); err != nil {
		t.Fatalf("Create on second session: %v", err)
	}
}

func TestAnswerRepoExistsByIndex(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	repo := interview.NewAnswerRepo(gdb, log)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	s := testutil.SeedSession(t, ctx, tx, uuid.New(), 10)
	testutil.SeedAnswer(t, ctx, tx, s.ID, 3)

	exists, err := repo.ExistsByIndex(dbc, s.ID, 3)
	if err != nil {
		t.Fatalf("ExistsByIndex: %v", err)
	}
	if !exists {
		t.Fatalf("expected answer at index 3")
	}

	exists, err = repo.ExistsByIndex(dbc, s.ID, 4)
	if err != nil {
		t.Fatalf("ExistsByIndex: %v", err)
	}
	if exists {
		t.Fatalf("unexpected answer at index 4")
	}
}

func TestAnswerRepoListBySessionOrdered(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	repo := interview.NewAnswerRepo(gdb, log)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	s := testutil.SeedSession(t, ctx, tx, uuid.New(), 10)
	for _, idx := range []int{2, 0, 1} {
		testutil.SeedAnswer(t, ctx, tx, s.ID, idx)
	}

	out, err := repo.ListBySession(dbc, s.ID)
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 answers, got %d", len(out))
	}
	for i, a := range out {
		if a.QuestionIndex != i {
			t.Fatalf("answers out of order at position %d: index=%d", i, a.QuestionIndex)
		}
	}
}
