package store

import (
	"context"
	"testing"

	"github.com/luofeng-dev/jielong-engine/internal/domain"
)

func TestPoemRepo_CreateAndCount(t *testing.T) {
	db := newTestDB(t)
	repo := &PoemRepo{}
	ctx := context.Background()

	id, err := repo.Create(ctx, db, domain.Poem{
		Title:      "静夜思",
		Author:     "李白",
		Content:    "床前明月光，疑是地上霜。",
		Difficulty: 1,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero poem id")
	}

	n, err := repo.Count(ctx, db)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestPoemRepo_Seed_OnlyWhenEmpty(t *testing.T) {
	db := newTestDB(t)
	repo := &PoemRepo{}
	ctx := context.Background()

	poems := []domain.Poem{
		{Title: "a", Content: "白日依山尽，黄河入海流。", Difficulty: 1},
		{Title: "b", Content: "春眠不觉晓，处处闻啼鸟。", Difficulty: 1},
	}
	if err := repo.Seed(ctx, db, poems); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := repo.Seed(ctx, db, poems); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	n, _ := repo.Count(ctx, db)
	if n != 2 {
		t.Errorf("Count = %d after double seed, want 2", n)
	}
}

func TestPoemRepo_ExistsByPattern(t *testing.T) {
	db := newTestDB(t)
	repo := &PoemRepo{}
	ctx := context.Background()

	repo.Create(ctx, db, domain.Poem{Content: "海内存知己，天涯若比邻。", Difficulty: 1})

	found, err := repo.ExistsByPattern(ctx, db, "%海%内%存%知%己%")
	if err != nil {
		t.Fatalf("ExistsByPattern: %v", err)
	}
	if !found {
		t.Error("expected pattern with embedded punctuation to match")
	}

	found, err = repo.ExistsByPattern(ctx, db, "%不%存%在%的%句%")
	if err != nil {
		t.Fatalf("ExistsByPattern: %v", err)
	}
	if found {
		t.Error("expected no match for unknown characters")
	}
}

func TestPoemRepo_Random(t *testing.T) {
	db := newTestDB(t)
	repo := &PoemRepo{}
	ctx := context.Background()

	if _, err := repo.Random(ctx, db, 0); err != domain.ErrNoPoemAvailable {
		t.Errorf("expected ErrNoPoemAvailable on empty corpus, got %v", err)
	}

	repo.Create(ctx, db, domain.Poem{Content: "白日依山尽，黄河入海流。", Difficulty: 1})
	repo.Create(ctx, db, domain.Poem{Content: "慈母手中线，游子身上衣。", Difficulty: 2})

	p, err := repo.Random(ctx, db, 2)
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	if p.Difficulty != 2 {
		t.Errorf("Difficulty = %d, want 2", p.Difficulty)
	}

	if _, err := repo.Random(ctx, db, 9); err != domain.ErrNoPoemAvailable {
		t.Errorf("expected ErrNoPoemAvailable for unused difficulty, got %v", err)
	}
}
