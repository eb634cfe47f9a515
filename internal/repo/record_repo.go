package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Enricher/internal/domain"
)

// RecordRepo — репозиторий документов (вакансий или кандидатов).
//
// Документ хранится целиком в JSONB колонке doc. Put перезаписывает
// документ полностью (upsert по id).
type RecordRepo struct {
	pool  *pgxpool.Pool
	table string
	ident string
}

// NewRecordRepo создаёт репозиторий для таблицы.
func NewRecordRepo(pool *pgxpool.Pool, table string) *RecordRepo {
	return &RecordRepo{
		pool:  pool,
		table: table,
		ident: pgx.Identifier{table}.Sanitize(),
	}
}

// Table возвращает имя таблицы.
func (r *RecordRepo) Table() string {
	return r.table
}

// EnsureSchema создаёт таблицу, если её нет.
func (r *RecordRepo) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS ` + r.ident + ` (
			id         TEXT PRIMARY KEY,
			doc        JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", r.table, err)
	}
	return nil
}

// Get возвращает документ по ID.
func (r *RecordRepo) Get(ctx context.Context, id string) (domain.Record, error) {
	query := `SELECT doc FROM ` + r.ident + ` WHERE id = $1`

	var doc []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}

	record, err := domain.DecodeRecord(doc)
	if err != nil {
		return nil, err
	}
	if record.ID() == "" {
		record[domain.FieldID] = id
	}
	return record, nil
}

// Put сохраняет документ целиком.
func (r *RecordRepo) Put(ctx context.Context, record domain.Record) error {
	id := record.ID()
	if id == "" {
		return ErrMissingID
	}

	doc, err := record.Encode()
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	query := `
		INSERT INTO ` + r.ident + ` (id, doc, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE
		SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.pool.Exec(ctx, query, id, doc); err != nil {
		return fmt.Errorf("put record: %w", err)
	}
	return nil
}

// ListMissing возвращает ID документов без поля field,
// начиная с давно не обновлявшихся.
func (r *RecordRepo) ListMissing(ctx context.Context, field string, limit int) ([]string, error) {
	query := `
		SELECT id
		FROM ` + r.ident + `
		WHERE doc -> $1::text IS NULL
		ORDER BY updated_at
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, field, limit)
	if err != nil {
		return nil, fmt.Errorf("list missing %s: %w", field, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
