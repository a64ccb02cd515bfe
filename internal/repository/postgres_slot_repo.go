package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresSlotRepo はPostgreSQLのsession_slotsテーブルを使用したスロットリポジトリ。
type PostgresSlotRepo struct {
	db *sql.DB
}

// NewPostgresSlotRepo はPostgresSlotRepoを生成する。
func NewPostgresSlotRepo(db *sql.DB) *PostgresSlotRepo {
	return &PostgresSlotRepo{db: db}
}

// Get は指定キーの値を取得する。見つからない場合はnil, nilを返す。
func (r *PostgresSlotRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM session_slots WHERE key = $1`,
		key,
	).Scan(&value)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return value, nil
}

// Put は指定キーの値をUPSERTする。
// lib/pqは[]byteをbytea形式で送るため、TEXTカラムには文字列として渡す。
func (r *PostgresSlotRepo) Put(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO session_slots (key, value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, string(value),
	)
	if err != nil {
		return fmt.Errorf("failed to put slot: %w", err)
	}
	return nil
}

// Delete は指定キーを削除する。
func (r *PostgresSlotRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM session_slots WHERE key = $1`,
		key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	return nil
}

// compile-time interface check
var _ SlotRepository = (*PostgresSlotRepo)(nil)
