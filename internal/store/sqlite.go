// Package store provides SQLite-backed persistence for the battle engine.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// schemaV1 defines the initial database schema.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS poems (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	title      TEXT NOT NULL DEFAULT '',
	author     TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL,
	difficulty INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_poems_difficulty ON poems(difficulty);

CREATE TABLE IF NOT EXISTS battles (
	battle_id        TEXT PRIMARY KEY,
	player_id        TEXT NOT NULL,
	mode             TEXT NOT NULL,
	status           TEXT NOT NULL DEFAULT 'pending',
	score            INTEGER NOT NULL DEFAULT 0,
	rounds_completed INTEGER NOT NULL DEFAULT 0,
	current_round    INTEGER NOT NULL DEFAULT 1,
	current_question TEXT NOT NULL DEFAULT '',
	expected_answer  TEXT NOT NULL DEFAULT '',
	state_version    INTEGER NOT NULL DEFAULT 1,
	updated_at_unix  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_battles_player ON battles(player_id, status);

CREATE TABLE IF NOT EXISTS round_records (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	battle_id    TEXT NOT NULL,
	round_num    INTEGER NOT NULL,
	question     TEXT NOT NULL DEFAULT '',
	answer       TEXT NOT NULL DEFAULT '',
	correct      INTEGER NOT NULL DEFAULT 0,
	points_delta INTEGER NOT NULL DEFAULT 0,
	judge_note   TEXT NOT NULL DEFAULT '',
	created_at   INTEGER NOT NULL,
	UNIQUE(battle_id, round_num)
);
CREATE INDEX IF NOT EXISTS idx_rounds_battle ON round_records(battle_id, round_num);
`

// NewDB opens a SQLite database at the given path with recommended pragmas
// and runs the V1 schema migration.
func NewDB(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Limit connections to 1 for SQLite (WAL allows concurrent reads but single writer).
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	_, err := db.ExecContext(context.Background(), schemaV1)
	return err
}
