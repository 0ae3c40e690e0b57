package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs-labo46/inventory-tracker/internal/domain/model"
	repo "github.com/rs-labo46/inventory-tracker/internal/repository"
)

// SQLの方言（MySQL / SQLite）
type SQLDialect int

const (
	DialectMySQL SQLDialect = iota
	DialectSQLite
)

// database/sql 上のドキュメントストア
type DocumentSQLRepository struct {
	db      *sql.DB
	dialect SQLDialect
}

func NewDocumentSQLRepository(db *sql.DB, dialect SQLDialect) *DocumentSQLRepository {
	return &DocumentSQLRepository{db: db, dialect: dialect}
}

// documentsテーブルを用意。
// MySQLはVARBINARYでキーの大文字小文字を区別させる
func (r *DocumentSQLRepository) Migrate(ctx context.Context) error {
	var ddl string
	switch r.dialect {
	case DialectMySQL:
		ddl = `
		CREATE TABLE IF NOT EXISTS documents (
			collection VARBINARY(64)   NOT NULL,
			doc_id     VARBINARY(1500) NOT NULL,
			data       JSON            NOT NULL,
			updated_at DATETIME(6)     NOT NULL,
			PRIMARY KEY (collection, doc_id)
		)`
	default:
		ddl = `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			doc_id     TEXT NOT NULL,
			data       TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (collection, doc_id)
		)`
	}
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create documents: %w", err)
	}
	return nil
}

func (r *DocumentSQLRepository) Get(ctx context.Context, collection string, id string) (model.Document, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND doc_id = ?`,
		collection, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Document{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Document{}, fmt.Errorf("query document: %w", err)
	}

	var fields model.DocumentFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return model.Document{}, fmt.Errorf("decode document %q: %w", id, err)
	}
	return model.Document{ID: id, Fields: fields}, nil
}

func (r *DocumentSQLRepository) Set(ctx context.Context, collection string, doc model.Document) error {
	data, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("encode document %q: %w", doc.ID, err)
	}

	var q string
	switch r.dialect {
	case DialectMySQL:
		q = `
		INSERT INTO documents (collection, doc_id, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE data = VALUES(data), updated_at = VALUES(updated_at)`
	default:
		q = `
		INSERT INTO documents (collection, doc_id, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(collection, doc_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`
	}

	if _, err := r.db.ExecContext(ctx, q, collection, doc.ID, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (r *DocumentSQLRepository) Delete(ctx context.Context, collection string, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND doc_id = ?`,
		collection, id,
	); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (r *DocumentSQLRepository) List(ctx context.Context, collection string) ([]model.Document, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT doc_id, data FROM documents WHERE collection = ? ORDER BY doc_id ASC`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := []model.Document{}
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		var fields model.DocumentFields
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("decode document %q: %w", id, err)
		}
		docs = append(docs, model.Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}
