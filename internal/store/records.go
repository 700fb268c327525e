package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/muurk/orderdesk/internal/record"
)

// RecordInput is a record to be stored. Field names are unqualified; they are
// stored qualified by Object.
type RecordInput struct {
	ID         string         `yaml:"id"`
	Object     string         `yaml:"object"`
	Restricted bool           `yaml:"restricted"`
	Fields     map[string]any `yaml:"fields"`
}

// PutRecord inserts or replaces a record and all of its fields
func (s *Store) PutRecord(ctx context.Context, in RecordInput) error {
	if in.ID == "" || in.Object == "" {
		return fmt.Errorf("%w: record id and object are required", ErrValidation)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO records (id, object, restricted) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET object = excluded.object, restricted = excluded.restricted`,
		in.ID, in.Object, in.Restricted); err != nil {
		return fmt.Errorf("failed to upsert record %s: %w", in.ID, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM record_fields WHERE record_id = ?", in.ID); err != nil {
		return fmt.Errorf("failed to clear fields of %s: %w", in.ID, err)
	}

	for name, value := range in.Fields {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode field %s: %w", name, err)
		}
		qualified := name
		if !strings.Contains(name, ".") {
			qualified = in.Object + "." + name
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO record_fields (record_id, name, value_json) VALUES (?, ?, ?)",
			in.ID, qualified, string(data)); err != nil {
			return fmt.Errorf("failed to insert field %s: %w", qualified, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit record: %w", err)
	}
	return nil
}

// GetRecord loads a record with the requested qualified fields. An empty
// field list returns every stored field. Restricted records yield
// ErrAccessDenied.
func (s *Store) GetRecord(ctx context.Context, id string, fields []string) (*record.Record, error) {
	var restricted bool
	err := s.db.QueryRowContext(ctx, "SELECT restricted FROM records WHERE id = ?", id).Scan(&restricted)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	if restricted {
		return nil, fmt.Errorf("record %s: %w", id, ErrAccessDenied)
	}

	wanted := make(map[string]bool, len(fields))
	for _, f := range fields {
		wanted[f] = true
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT name, value_json FROM record_fields WHERE record_id = ? ORDER BY name", id)
	if err != nil {
		return nil, fmt.Errorf("failed to load record fields: %w", err)
	}
	defer rows.Close()

	rec := &record.Record{ID: id, Fields: make(map[string]any)}
	for rows.Next() {
		var name, data string
		if err := rows.Scan(&name, &data); err != nil {
			return nil, fmt.Errorf("failed to scan record field: %w", err)
		}
		if len(wanted) > 0 && !wanted[name] {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(data), &v); err != nil {
			return nil, fmt.Errorf("failed to decode field %s: %w", name, err)
		}
		rec.Fields[name] = v
	}
	return rec, rows.Err()
}
