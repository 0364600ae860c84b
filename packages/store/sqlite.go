package store

import (
	"database/sql"
	"fmt"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/stepvault/stepvault/packages/refs"
)

const schema = `
CREATE TABLE IF NOT EXISTS variables (
	execution_id  TEXT NOT NULL,
	name          TEXT NOT NULL,
	value_json    TEXT NOT NULL,
	data_type     TEXT NOT NULL,
	source_step   INTEGER NOT NULL,
	source_method TEXT NOT NULL,
	source_params TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMP NOT NULL,
	PRIMARY KEY (execution_id, name)
);

CREATE TABLE IF NOT EXISTS variable_references (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	execution_id   TEXT NOT NULL,
	step_index     INTEGER NOT NULL,
	variable_name  TEXT NOT NULL,
	path           TEXT NOT NULL,
	expression     TEXT NOT NULL,
	resolved_value TEXT,
	status         TEXT NOT NULL,
	error_message  TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_references_execution
	ON variable_references (execution_id, id);
`

// SQLite persists variables and references in a single SQLite database.
// It implements both store.Backend and refs.Backend.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and if necessary initializes) the database at path.
// Use ":memory:" for an ephemeral store.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Upsert(executionID string, rec *Record) error {
	_, err := s.db.Exec(`
		INSERT INTO variables
			(execution_id, name, value_json, data_type, source_step, source_method, source_params, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (execution_id, name) DO UPDATE SET
			value_json    = excluded.value_json,
			data_type     = excluded.data_type,
			source_step   = excluded.source_step,
			source_method = excluded.source_method,
			source_params = excluded.source_params,
			created_at    = excluded.created_at`,
		executionID, rec.Name, rec.ValueJSON, rec.DataType,
		rec.SourceStep, rec.SourceMethod, rec.SourceParams, rec.CreatedAt)
	return err
}

func (s *SQLite) QueryByExecution(executionID string) ([]*Record, error) {
	rows, err := s.db.Query(`
		SELECT name, value_json, data_type, source_step, source_method, source_params, created_at
		FROM variables
		WHERE execution_id = ?
		ORDER BY source_step, name`, executionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*Record
	for rows.Next() {
		rec := &Record{ExecutionID: executionID}
		if err := rows.Scan(&rec.Name, &rec.ValueJSON, &rec.DataType,
			&rec.SourceStep, &rec.SourceMethod, &rec.SourceParams, &rec.CreatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *SQLite) QueryByName(executionID, name string) (*Record, error) {
	rec := &Record{ExecutionID: executionID, Name: name}
	err := s.db.QueryRow(`
		SELECT value_json, data_type, source_step, source_method, source_params, created_at
		FROM variables
		WHERE execution_id = ? AND name = ?`, executionID, name).
		Scan(&rec.ValueJSON, &rec.DataType, &rec.SourceStep,
			&rec.SourceMethod, &rec.SourceParams, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *SQLite) DeleteByExecution(executionID string) error {
	_, err := s.db.Exec(`DELETE FROM variables WHERE execution_id = ?`, executionID)
	return err
}

func (s *SQLite) AppendReference(executionID string, ref *refs.Reference) error {
	var resolved sql.NullString
	if ref.ResolvedValue != nil {
		resolved = sql.NullString{String: *ref.ResolvedValue, Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT INTO variable_references
			(execution_id, step_index, variable_name, path, expression, resolved_value, status, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		executionID, ref.StepIndex, ref.VariableName, ref.Path,
		ref.OriginalExpression, resolved, ref.Status, ref.ErrorMessage, ref.CreatedAt)
	return err
}

func (s *SQLite) ReferencesByExecution(executionID string) ([]*refs.Reference, error) {
	rows, err := s.db.Query(`
		SELECT step_index, variable_name, path, expression, resolved_value, status, error_message, created_at
		FROM variable_references
		WHERE execution_id = ?
		ORDER BY id`, executionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*refs.Reference
	for rows.Next() {
		ref := &refs.Reference{ExecutionID: executionID}
		var resolved sql.NullString
		if err := rows.Scan(&ref.StepIndex, &ref.VariableName, &ref.Path,
			&ref.OriginalExpression, &resolved, &ref.Status, &ref.ErrorMessage, &ref.CreatedAt); err != nil {
			return nil, err
		}
		if resolved.Valid {
			v := resolved.String
			ref.ResolvedValue = &v
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (s *SQLite) DeleteReferencesByExecution(executionID string) error {
	_, err := s.db.Exec(`DELETE FROM variable_references WHERE execution_id = ?`, executionID)
	return err
}

// ListExecutions returns the distinct execution ids present in the database,
// most recently written first. Used by the inspection CLI, not by the core.
func (s *SQLite) ListExecutions() ([]string, error) {
	rows, err := s.db.Query(`
		SELECT execution_id, MAX(created_at) AS latest
		FROM variables
		GROUP BY execution_id
		ORDER BY latest DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		var latest time.Time
		if err := rows.Scan(&id, &latest); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
