package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/luofeng-dev/jielong-engine/internal/domain"
)

// PoemRepo handles persistence for the verse corpus.
type PoemRepo struct{}

// Create inserts a poem and returns its ID.
func (r *PoemRepo) Create(ctx context.Context, db *sql.DB, p domain.Poem) (int64, error) {
	const q = `INSERT INTO poems (title, author, content, difficulty) VALUES (?, ?, ?, ?)`
	res, err := db.ExecContext(ctx, q, p.Title, p.Author, p.Content, p.Difficulty)
	if err != nil {
		return 0, fmt.Errorf("create poem: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("poem insert id: %w", err)
	}
	return id, nil
}

// Seed inserts poems only when the corpus is empty, so restarting the
// server does not duplicate the built-in starter set.
func (r *PoemRepo) Seed(ctx context.Context, db *sql.DB, poems []domain.Poem) error {
	n, err := r.Count(ctx, db)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, p := range poems {
		if _, err := r.Create(ctx, db, p); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of stored poems.
func (r *PoemRepo) Count(ctx context.Context, db *sql.DB) (int64, error) {
	var n int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM poems`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count poems: %w", err)
	}
	return n, nil
}

// ExistsByPattern reports whether any stored poem's content matches the
// given LIKE pattern. This is the raw lookup behind the corpus oracle.
func (r *PoemRepo) ExistsByPattern(ctx context.Context, db *sql.DB, pattern string) (bool, error) {
	const q = `SELECT 1 FROM poems WHERE content LIKE ? LIMIT 1`
	var one int
	err := db.QueryRowContext(ctx, q, pattern).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("poem pattern lookup: %w", err)
	}
	return true, nil
}

// Random returns a random poem, optionally restricted to a difficulty.
// difficulty <= 0 means any.
func (r *PoemRepo) Random(ctx context.Context, db *sql.DB, difficulty int) (*domain.Poem, error) {
	q := `SELECT id, title, author, content, difficulty FROM poems ORDER BY RANDOM() LIMIT 1`
	args := []interface{}{}
	if difficulty > 0 {
		q = `SELECT id, title, author, content, difficulty FROM poems WHERE difficulty = ? ORDER BY RANDOM() LIMIT 1`
		args = append(args, difficulty)
	}

	row := db.QueryRowContext(ctx, q, args...)
	var p domain.Poem
	err := row.Scan(&p.ID, &p.Title, &p.Author, &p.Content, &p.Difficulty)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNoPoemAvailable
	}
	if err != nil {
		return nil, fmt.Errorf("random poem: %w", err)
	}
	return &p, nil
}
