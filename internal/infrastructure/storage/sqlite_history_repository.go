package storage

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"agri-assistant/internal/domain/entity"
	"agri-assistant/internal/domain/port"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS diagnoses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file_name TEXT NOT NULL,
	class_name TEXT NOT NULL,
	confidence REAL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_diagnoses_created_at ON diagnoses(created_at);
CREATE INDEX IF NOT EXISTS idx_diagnoses_class_name ON diagnoses(class_name);
`

// SQLiteHistoryRepository хранит журнал диагностики в SQLite.
type SQLiteHistoryRepository struct {
	conn *sql.DB
}

// NewSQLiteHistoryRepository открывает базу по пути dbPath и создаёт схему
func NewSQLiteHistoryRepository(dbPath string) (*SQLiteHistoryRepository, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(err, "open history database")
	}

	// SQLite плохо переносит параллельную запись, держим одно соединение.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if _, err := conn.Exec(historySchema); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "migrate history database")
	}

	return &SQLiteHistoryRepository{conn: conn}, nil
}

// Add сохраняет записи одной диагностики в одной транзакции
func (r *SQLiteHistoryRepository) Add(ctx context.Context, records []entity.HistoryRecord) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO diagnoses (file_name, class_name, confidence, created_at)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()

	for _, rec := range records {
		createdAt := rec.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx, rec.FileName, rec.ClassName, rec.Confidence, createdAt); err != nil {
			return errors.Wrapf(err, "insert diagnosis %s", rec.ClassName)
		}
	}

	return tx.Commit()
}

// Recent возвращает последние limit записей, новые первыми
func (r *SQLiteHistoryRepository) Recent(ctx context.Context, limit int) ([]entity.HistoryRecord, error) {
	rows, err := r.conn.QueryContext(ctx, `
		SELECT id, file_name, class_name, confidence, created_at
		FROM diagnoses ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query diagnoses")
	}
	defer rows.Close()

	records := make([]entity.HistoryRecord, 0, limit)
	for rows.Next() {
		var rec entity.HistoryRecord
		if err := rows.Scan(&rec.ID, &rec.FileName, &rec.ClassName, &rec.Confidence, &rec.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan diagnosis")
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Close закрывает соединение с базой
func (r *SQLiteHistoryRepository) Close() error {
	return r.conn.Close()
}

// Проверка реализации интерфейса
var _ port.HistoryRepository = (*SQLiteHistoryRepository)(nil)
