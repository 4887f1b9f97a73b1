// Package sqlitedoc stores documents in a single SQLite table, one JSON blob
// per document. A commit maps to one SQL transaction, which provides the
// all-or-nothing visibility the ledger batch requires.
package sqlitedoc

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"moneta/internal/docstore"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Store struct {
	db *sql.DB
}

// Order-by fields reach SQL via json_extract; restrict them to plain
// identifiers so a field name can never carry SQL.
var orderFieldRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateSchema(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// migrateSchema brings the documents table up to date. golang-migrate closes
// the connection handed to it, so it gets its own instead of the store pool.
func migrateSchema(dbPath string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}

	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		db.Close()
		return fmt.Errorf("wrap migration connection: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		db.Close()
		return fmt.Errorf("load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		db.Close()
		return fmt.Errorf("build migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT fields FROM documents WHERE collection = ? AND id = ?`,
		collection, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return unmarshalFields(raw)
}

func (s *Store) List(ctx context.Context, collection string) ([]docstore.Doc, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fields FROM documents WHERE collection = ?`, collection)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	return scanDocs(rows)
}

func (s *Store) ListRecent(ctx context.Context, collection, orderField string, limit int) ([]docstore.Doc, error) {
	if !orderFieldRe.MatchString(orderField) {
		return nil, fmt.Errorf("invalid order field %q", orderField)
	}
	query := fmt.Sprintf(
		`SELECT id, fields FROM documents WHERE collection = ?
		 ORDER BY json_extract(fields, '$.%s') DESC, id DESC LIMIT ?`, orderField)
	rows, err := s.db.QueryContext(ctx, query, collection, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent documents: %w", err)
	}
	defer rows.Close()
	return scanDocs(rows)
}

func (s *Store) NewID() string {
	return uuid.NewString()
}

func (s *Store) Commit(ctx context.Context, b *docstore.Batch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback()

	for _, op := range b.Ops() {
		switch {
		case op.IsSet():
			if err := upsert(ctx, tx, op.Collection, op.ID, op.Fields); err != nil {
				return err
			}
		case op.IsMergeSet(), op.IsMergeIncrement():
			if err := merge(ctx, tx, op); err != nil {
				return err
			}
		case op.IsDelete():
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM documents WHERE collection = ? AND id = ?`,
				op.Collection, op.ID); err != nil {
				return fmt.Errorf("delete document: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

func upsert(ctx context.Context, tx *sql.Tx, collection, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (collection, id, fields) VALUES (?, ?, ?)
		 ON CONFLICT (collection, id) DO UPDATE SET fields = excluded.fields`,
		collection, id, raw)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// merge applies merge-set fields and additive deltas inside the surrounding
// SQL transaction. SQLite serializes writers, so the read-modify-write is
// atomic with respect to other batches.
func merge(ctx context.Context, tx *sql.Tx, op docstore.BatchOp) error {
	var raw []byte
	fields := make(map[string]any)

	err := tx.QueryRowContext(ctx,
		`SELECT fields FROM documents WHERE collection = ? AND id = ?`,
		op.Collection, op.ID).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// lazily created on first increment
	case err != nil:
		return fmt.Errorf("read document for merge: %w", err)
	default:
		if fields, err = unmarshalFields(raw); err != nil {
			return err
		}
	}

	for field, v := range op.Fields {
		fields[field] = v
	}
	for field, delta := range op.Deltas {
		fields[field] = docstore.AsInt64(fields[field]) + delta
	}
	return upsert(ctx, tx, op.Collection, op.ID, fields)
}

func scanDocs(rows *sql.Rows) ([]docstore.Doc, error) {
	var out []docstore.Doc
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		fields, err := unmarshalFields(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, docstore.Doc{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

func unmarshalFields(raw []byte) (map[string]any, error) {
	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return fields, nil
}
