// Package postgres adapts a single JSONB documents table to the store.Store
// contract. Serializable SQL transactions provide the cross-collection
// atomicity the pipeline engine requires; serialization failures are retried
// up to a bounded budget before store.ErrConflict is surfaced.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"hrpipeline/internal/store"
)

const defaultMaxRetries = 5

type Store struct {
	db         *sql.DB
	maxRetries int
}

func New(db *sql.DB, maxRetries int) *Store {
	if maxRetries < 1 {
		maxRetries = defaultMaxRetries
	}
	return &Store{db: db, maxRetries: maxRetries}
}

// Migrate creates the documents table when missing.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		doc JSONB NOT NULL,
		PRIMARY KEY (collection, id)
	)`)
	if err != nil {
		return fmt.Errorf("migrate documents table: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (store.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT doc FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	return scanDoc(row)
}

func (s *Store) Put(ctx context.Context, collection, id string, doc store.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET doc = EXCLUDED.doc`, collection, id, raw)
	return err
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	return err
}

func (s *Store) Query(ctx context.Context, collection string, pred func(store.Document) bool) ([]store.Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM documents WHERE collection = $1 ORDER BY id`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.Document
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var doc store.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		if pred == nil || pred(doc) {
			out = append(out, doc)
		}
	}
	return out, rows.Err()
}

func (s *Store) Batch(ctx context.Context, writes ...store.Write) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := applyWrites(ctx, tx, writes); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) Transaction(ctx context.Context, fn func(tx store.Txn) error) error {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		retry, err := s.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
	}
	return store.ErrConflict
}

func (s *Store) runOnce(ctx context.Context, fn func(tx store.Txn) error) (retry bool, err error) {
	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return false, err
	}
	txn := &pgTxn{ctx: ctx, tx: sqlTx}
	if err := fn(txn); err != nil {
		_ = sqlTx.Rollback()
		return isSerializationFailure(err), err
	}
	if err := applyWrites(ctx, sqlTx, txn.writes); err != nil {
		_ = sqlTx.Rollback()
		return isSerializationFailure(err), err
	}
	if err := sqlTx.Commit(); err != nil {
		return isSerializationFailure(err), err
	}
	return false, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func applyWrites(ctx context.Context, tx execer, writes []store.Write) error {
	for _, w := range writes {
		switch w.Kind {
		case store.WritePut:
			raw, err := json.Marshal(w.Doc)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3)
				ON CONFLICT (collection, id) DO UPDATE SET doc = EXCLUDED.doc`, w.Collection, w.ID, raw); err != nil {
				return err
			}
		case store.WriteDelete:
			if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, w.Collection, w.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

type pgTxn struct {
	ctx    context.Context
	tx     *sql.Tx
	writes []store.Write
}

func (t *pgTxn) Get(collection, id string) (store.Document, error) {
	for i := len(t.writes) - 1; i >= 0; i-- {
		w := t.writes[i]
		if w.Collection == collection && w.ID == id {
			if w.Kind == store.WriteDelete {
				return nil, store.ErrNotFound
			}
			return w.Doc, nil
		}
	}
	row := t.tx.QueryRowContext(t.ctx, `SELECT doc FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	return scanDoc(row)
}

func (t *pgTxn) Put(collection, id string, doc store.Document) {
	t.writes = append(t.writes, store.Put(collection, id, doc))
}

func (t *pgTxn) Delete(collection, id string) {
	t.writes = append(t.writes, store.Delete(collection, id))
}

func scanDoc(row *sql.Row) (store.Document, error) {
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	var doc store.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// SQLSTATE 40001 (serialization_failure) and 40P01 (deadlock_detected) are
// the transient conflicts worth retrying.
func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}
