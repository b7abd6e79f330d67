package store

import (
	"context"
	"testing"

	"github.com/luofeng-dev/jielong-engine/internal/domain"
)

func TestRoundRepo_AppendAndList(t *testing.T) {
	db := newTestDB(t)
	repo := &RoundRepo{}
	ctx := context.Background()

	records := []domain.RoundRecord{
		{BattleID: "b1", RoundNum: 1, Question: "白日依山尽", Answer: "黄河入海流", Correct: true, PointsDelta: 10, JudgeNote: "回答正确", CreatedAt: 100},
		{BattleID: "b1", RoundNum: 2, Question: "床前明月光", Answer: "举头望明月", Correct: false, PointsDelta: -5, JudgeNote: "回答错误", CreatedAt: 101},
		{BattleID: "b2", RoundNum: 1, Question: "春眠不觉晓", Answer: "处处闻啼鸟", Correct: true, PointsDelta: 10, CreatedAt: 102},
	}
	for _, rec := range records {
		tx, err := db.Begin()
		if err != nil {
			t.Fatalf("begin: %v", err)
		}
		if err := repo.AppendTx(ctx, tx, rec); err != nil {
			t.Fatalf("AppendTx: %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("commit: %v", err)
		}
	}

	got, err := repo.ListByBattle(ctx, db, "b1")
	if err != nil {
		t.Fatalf("ListByBattle: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].RoundNum != 1 || got[1].RoundNum != 2 {
		t.Errorf("records out of order: %+v", got)
	}
	if got[1].PointsDelta != -5 {
		t.Errorf("PointsDelta = %d, want -5", got[1].PointsDelta)
	}
}

func TestRoundRepo_DuplicateRoundRejected(t *testing.T) {
	db := newTestDB(t)
	repo := &RoundRepo{}
	ctx := context.Background()

	rec := domain.RoundRecord{BattleID: "b1", RoundNum: 1, CreatedAt: 100}

	tx, _ := db.Begin()
	if err := repo.AppendTx(ctx, tx, rec); err != nil {
		t.Fatalf("first AppendTx: %v", err)
	}
	tx.Commit()

	tx, _ = db.Begin()
	err := repo.AppendTx(ctx, tx, rec)
	tx.Rollback()
	if err == nil {
		t.Error("expected error appending a duplicate round number")
	}
}

func TestRoundRepo_ListEmpty(t *testing.T) {
	db := newTestDB(t)
	repo := &RoundRepo{}

	got, err := repo.ListByBattle(context.Background(), db, "none")
	if err != nil {
		t.Fatalf("ListByBattle: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}
