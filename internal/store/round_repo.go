package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/luofeng-dev/jielong-engine/internal/domain"
)

// RoundRepo handles persistence for RoundRecord rows. Round records are
// append-only; nothing in the engine updates or deletes them.
type RoundRepo struct{}

// AppendTx inserts a round record within an existing transaction. The
// UNIQUE(battle_id, round_num) constraint rejects duplicate round numbers.
func (r *RoundRepo) AppendTx(ctx context.Context, tx *sql.Tx, rec domain.RoundRecord) error {
	const q = `INSERT INTO round_records (battle_id, round_num, question, answer, correct, points_delta, judge_note, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		rec.BattleID,
		rec.RoundNum,
		rec.Question,
		rec.Answer,
		rec.Correct,
		rec.PointsDelta,
		rec.JudgeNote,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append round record: %w", err)
	}
	return nil
}

// ListByBattle returns a battle's round records ordered by round number.
func (r *RoundRepo) ListByBattle(ctx context.Context, db *sql.DB, battleID string) ([]domain.RoundRecord, error) {
	const q = `SELECT id, battle_id, round_num, question, answer, correct, points_delta, judge_note, created_at
FROM round_records
WHERE battle_id = ?
ORDER BY round_num ASC`

	rows, err := db.QueryContext(ctx, q, battleID)
	if err != nil {
		return nil, fmt.Errorf("list round records: %w", err)
	}
	defer rows.Close()

	var records []domain.RoundRecord
	for rows.Next() {
		var rec domain.RoundRecord
		if err := rows.Scan(&rec.ID, &rec.BattleID, &rec.RoundNum, &rec.Question, &rec.Answer,
			&rec.Correct, &rec.PointsDelta, &rec.JudgeNote, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan round record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
