package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/luofeng-dev/jielong-engine/internal/domain"
)

// BattleRepo handles persistence for BattleSession records.
type BattleRepo struct{}

// CreateTx inserts a new battle within an existing transaction.
func (r *BattleRepo) CreateTx(ctx context.Context, tx *sql.Tx, s domain.BattleSession) error {
	const q = `INSERT INTO battles (battle_id, player_id, mode, status, score, rounds_completed, current_round, current_question, expected_answer, state_version, updated_at_unix)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		s.BattleID,
		s.PlayerID,
		string(s.Mode),
		string(s.Status),
		s.Score,
		s.RoundsCompleted,
		s.CurrentRound,
		s.CurrentQuestion,
		s.ExpectedAnswer,
		s.StateVersion,
		s.UpdatedAtUnix,
	)
	if err != nil {
		return fmt.Errorf("create battle: %w", err)
	}
	return nil
}

// UpdateStateTx updates a battle within a transaction using optimistic
// locking. The update only succeeds if state_version still matches; a stale
// writer (for example a negotiation that finished after the session was
// aborted) gets ErrOptimisticLock and its result is discarded.
func (r *BattleRepo) UpdateStateTx(ctx context.Context, tx *sql.Tx, s domain.BattleSession) error {
	const q = `UPDATE battles SET
		status = ?,
		score = ?,
		rounds_completed = ?,
		current_round = ?,
		current_question = ?,
		expected_answer = ?,
		state_version = state_version + 1,
		updated_at_unix = ?
	WHERE battle_id = ? AND state_version = ?`

	res, err := tx.ExecContext(ctx, q,
		string(s.Status),
		s.Score,
		s.RoundsCompleted,
		s.CurrentRound,
		s.CurrentQuestion,
		s.ExpectedAnswer,
		s.UpdatedAtUnix,
		s.BattleID,
		s.StateVersion,
	)
	if err != nil {
		return fmt.Errorf("update battle state: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrOptimisticLock
	}
	return nil
}

// GetByID retrieves a battle by its ID.
func (r *BattleRepo) GetByID(ctx context.Context, db *sql.DB, battleID string) (*domain.BattleSession, error) {
	const q = `SELECT battle_id, player_id, mode, status, score, rounds_completed, current_round, current_question, expected_answer, state_version, updated_at_unix
FROM battles WHERE battle_id = ?`

	row := db.QueryRowContext(ctx, q, battleID)

	var s domain.BattleSession
	var mode, status string
	err := row.Scan(&s.BattleID, &s.PlayerID, &mode, &status, &s.Score, &s.RoundsCompleted,
		&s.CurrentRound, &s.CurrentQuestion, &s.ExpectedAnswer, &s.StateVersion, &s.UpdatedAtUnix)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrBattleNotFound
		}
		return nil, fmt.Errorf("get battle: %w", err)
	}
	s.Mode = domain.Mode(mode)
	s.Status = domain.BattleStatus(status)
	return &s, nil
}

// Rankings aggregates total scores per player over terminal battles,
// ordered by total score descending.
func (r *BattleRepo) Rankings(ctx context.Context, db *sql.DB, limit int) ([]domain.RankingEntry, error) {
	const q = `SELECT player_id, SUM(score) AS total_score, COUNT(*) AS battles
FROM battles
WHERE status IN ('won', 'lost')
GROUP BY player_id
ORDER BY total_score DESC
LIMIT ?`

	rows, err := db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list rankings: %w", err)
	}
	defer rows.Close()

	var entries []domain.RankingEntry
	for rows.Next() {
		var e domain.RankingEntry
		if err := rows.Scan(&e.PlayerID, &e.TotalScore, &e.Battles); err != nil {
			return nil, fmt.Errorf("scan ranking: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
