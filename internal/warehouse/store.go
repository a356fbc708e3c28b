// Package warehouse binds the engine's source and output abstractions
// to PostgreSQL relations.
package warehouse

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/animus-labs/infersync/internal/domain"
	"github.com/animus-labs/infersync/internal/engine"
)

type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// SourceStore reads the source population with an arbitrary query. The
// engine treats the result as read-only.
type SourceStore struct {
	db    DB
	query string
}

func NewSourceStore(db DB, query string) (*SourceStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("source query is required")
	}
	return &SourceStore{db: db, query: query}, nil
}

// NewSourceTableStore reads a whole relation as the source population.
func NewSourceTableStore(db DB, relation string) (*SourceStore, error) {
	if err := validRelation(relation); err != nil {
		return nil, err
	}
	return NewSourceStore(db, "SELECT * FROM "+quoteRelation(relation))
}

func (s *SourceStore) Rows(ctx context.Context) ([]domain.Row, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("source store not initialized")
	}
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("source columns: %w", err)
	}

	out := make([]domain.Row, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("scan source row: %w", err)
		}
		row := make(domain.Row, len(columns))
		for i, col := range columns {
			row[col] = scanValue(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return out, nil
}

// OutputStore is the durable result relation, keyed by the pipeline's
// unique keys. Each merge runs in one transaction so external readers
// only ever observe fully-merged iterations.
type OutputStore struct {
	db            DB
	relation      string
	keys          []string
	statusColumn  string
	updatedColumn string
}

func NewOutputStore(db DB, relation string, keys []string, statusColumn, updatedColumn string) (*OutputStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if err := validRelation(relation); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("at least one unique key is required")
	}
	for _, key := range keys {
		if err := validIdent(key); err != nil {
			return nil, err
		}
	}
	if err := validIdent(statusColumn); err != nil {
		return nil, err
	}
	if strings.TrimSpace(updatedColumn) != "" {
		if err := validIdent(updatedColumn); err != nil {
			return nil, err
		}
	}
	return &OutputStore{
		db:            db,
		relation:      strings.TrimSpace(relation),
		keys:          keys,
		statusColumn:  strings.TrimSpace(statusColumn),
		updatedColumn: strings.TrimSpace(updatedColumn),
	}, nil
}

func (s *OutputStore) Exists(ctx context.Context) (bool, error) {
	if s == nil || s.db == nil {
		return false, fmt.Errorf("output store not initialized")
	}
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", s.relation).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check output relation: %w", err)
	}
	return exists, nil
}

func (s *OutputStore) State(ctx context.Context) (engine.OutputState, error) {
	if s == nil || s.db == nil {
		return engine.OutputState{}, fmt.Errorf("output store not initialized")
	}
	query, err := buildStateQuery(s.relation, s.keys, s.statusColumn, s.updatedColumn)
	if err != nil {
		return engine.OutputState{}, err
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return engine.OutputState{}, fmt.Errorf("read output state: %w", err)
	}
	defer rows.Close()

	state := engine.OutputState{Status: map[string]string{}}
	for rows.Next() {
		keyValues := make([]any, len(s.keys))
		pointers := make([]any, 0, len(s.keys)+2)
		for i := range keyValues {
			pointers = append(pointers, &keyValues[i])
		}
		var status string
		pointers = append(pointers, &status)
		var updated sql.NullTime
		if s.updatedColumn != "" {
			pointers = append(pointers, &updated)
		}
		if err := rows.Scan(pointers...); err != nil {
			return engine.OutputState{}, fmt.Errorf("scan output state: %w", err)
		}

		keyRow := make(domain.Row, len(s.keys))
		for i, key := range s.keys {
			keyRow[key] = scanValue(keyValues[i])
		}
		state.Status[keyRow.Key(s.keys)] = status
		if updated.Valid && updated.Time.After(state.MaxFreshness) {
			state.MaxFreshness = updated.Time.UTC()
		}
	}
	if err := rows.Err(); err != nil {
		return engine.OutputState{}, fmt.Errorf("read output state: %w", err)
	}
	return state, nil
}

func (s *OutputStore) Merge(ctx context.Context, rows []domain.Row) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("output store not initialized")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin merge: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.ensureColumns(ctx, tx, rows); err != nil {
		return 0, err
	}

	var written int64
	for _, row := range rows {
		columns := row.Columns()
		query, err := buildUpsertQuery(s.relation, columns, s.keys)
		if err != nil {
			return 0, err
		}
		args := make([]any, 0, len(columns))
		for _, col := range columns {
			args = append(args, execValue(row[col]))
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("upsert row: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("upsert row count: %w", err)
		}
		written += affected
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit merge: %w", err)
	}
	return written, nil
}

func (s *OutputStore) CreateFrom(ctx context.Context, rows []domain.Row) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("output store not initialized")
	}
	ddl, err := buildCreateQuery(s.relation, rows, s.keys, s.statusColumn)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create output relation: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	if _, err := s.Merge(ctx, rows); err != nil {
		return fmt.Errorf("seed output relation: %w", err)
	}
	return nil
}

// ensureColumns adds result columns the relation has not seen yet, so a
// seed created from an empty slice can still absorb full result rows.
func (s *OutputStore) ensureColumns(ctx context.Context, tx *sql.Tx, rows []domain.Row) error {
	schema, table := splitRelation(s.relation)
	existing := map[string]struct{}{}
	res, err := tx.QueryContext(
		ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_schema = $1 AND table_name = $2`,
		schema,
		table,
	)
	if err != nil {
		return fmt.Errorf("read output columns: %w", err)
	}
	defer res.Close()
	for res.Next() {
		var name string
		if err := res.Scan(&name); err != nil {
			return fmt.Errorf("scan output column: %w", err)
		}
		existing[name] = struct{}{}
	}
	if err := res.Err(); err != nil {
		return fmt.Errorf("read output columns: %w", err)
	}

	added := map[string]struct{}{}
	for _, row := range rows {
		for _, col := range row.Columns() {
			if _, ok := existing[col]; ok {
				continue
			}
			if _, ok := added[col]; ok {
				continue
			}
			if err := validIdent(col); err != nil {
				return err
			}
			ddl := fmt.Sprintf(
				"ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s",
				quoteRelation(s.relation),
				quoteIdent(col),
				sqlType(row[col]),
			)
			if _, err := tx.ExecContext(ctx, ddl); err != nil {
				return fmt.Errorf("add output column %s: %w", col, err)
			}
			added[col] = struct{}{}
		}
	}
	return nil
}

func splitRelation(relation string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(relation), ".", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return "public", parts[0]
}

func scanValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		return t.UTC()
	default:
		return v
	}
}

// execValue converts structured values into their JSON wire form so
// lists and objects land in JSONB columns without ad hoc quoting.
func execValue(v any) any {
	switch v.(type) {
	case nil, string, bool, int, int32, int64, float32, float64, time.Time, []byte:
		return v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	}
}
