package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/botshop/internal/port"
)

const collectionsSchema = `
	CREATE TABLE IF NOT EXISTS collections (
		name       VARCHAR(64) NOT NULL PRIMARY KEY,
		payload    JSON        NOT NULL,
		version    BIGINT      NOT NULL DEFAULT 0,
		updated_at TIMESTAMP   NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

// MySQLAdapter keeps each collection as one JSON row guarded by a version
// column for optimistic locking.
type MySQLAdapter struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewMySQLAdapter(db *sql.DB, logger *zap.Logger) *MySQLAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MySQLAdapter{db: db, logger: logger}
}

func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, collectionsSchema); err != nil {
		return fmt.Errorf("create collections table: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) Load(ctx context.Context, name string) (port.Snapshot, error) {
	_, err := m.db.ExecContext(ctx, `
		INSERT IGNORE INTO collections (name, payload, version) VALUES (?, '{}', 0)`, name)
	if err != nil {
		return port.Snapshot{}, fmt.Errorf("create collection: %w", err)
	}

	var payload []byte
	var version int64
	err = m.db.QueryRowContext(ctx, `
		SELECT payload, version FROM collections WHERE name = ?`, name,
	).Scan(&payload, &version)
	if err != nil {
		return port.Snapshot{}, fmt.Errorf("query collection: %w", err)
	}

	return port.Snapshot{Records: decodePayload(m.logger, name, payload), Version: version}, nil
}

func (m *MySQLAdapter) Save(ctx context.Context, name string, records map[string]json.RawMessage, version int64) error {
	return m.SaveAll(ctx, []port.Write{{Name: name, Records: records, Version: version}})
}

func (m *MySQLAdapter) SaveAll(ctx context.Context, writes []port.Write) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, w := range writes {
		payload, err := encodePayload(w.Records)
		if err != nil {
			return fmt.Errorf("encode %s: %w", w.Name, err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE collections
			SET payload = ?, version = version + 1, updated_at = NOW()
			WHERE name = ? AND version = ?`,
			payload, w.Name, w.Version,
		)
		if err != nil {
			return fmt.Errorf("update collection %s: %w", w.Name, err)
		}

		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrOptimisticLock
		}
	}

	return tx.Commit()
}
