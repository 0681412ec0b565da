package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists records to a SQLite database. Plant names are kept in
// a side table so plant filters run in SQL.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS production_plans (
    id TEXT PRIMARY KEY,
    ts INTEGER NOT NULL,
    record TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS production_plans_ts ON production_plans (ts);
CREATE TABLE IF NOT EXISTS production_plan_plants (
    plan_id TEXT NOT NULL REFERENCES production_plans (id),
    plant TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS production_plan_plants_plant ON production_plan_plants (plant);`

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Append writes the record and its plant names in one transaction.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) (err error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO production_plans (id, ts, record) VALUES (?, ?, ?)`,
		rec.ID, rec.Timestamp.UnixNano(), string(b)); err != nil {
		return err
	}
	for _, p := range rec.Plants {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO production_plan_plants (plan_id, plant) VALUES (?, ?)`,
			rec.ID, p.Name); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Query returns records matching q, oldest first.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]Record, error) {
	var args []any
	query := `SELECT record FROM production_plans WHERE 1=1`
	if !q.Start.IsZero() {
		query += ` AND ts >= ?`
		args = append(args, q.Start.UnixNano())
	}
	if !q.End.IsZero() {
		query += ` AND ts <= ?`
		args = append(args, q.End.UnixNano())
	}
	if q.Plant != "" {
		query += ` AND id IN (SELECT plan_id FROM production_plan_plants WHERE plant = ?)`
		args = append(args, q.Plant)
	}
	query += ` ORDER BY ts DESC, rowid DESC`
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r Record
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return q.finish(res), nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
