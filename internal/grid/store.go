package grid

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/intakegrid/intakegrid/pkg/types"
)

// LockReason is recorded on a grid when it is locked after import.
const LockReason = "Imported reference data — read-only. Re-import the template to publish a new version."

// ColumnLockReason is recorded on each protected identity/mapping column.
const ColumnLockReason = "Identity and mapping columns are locked to protect downstream references."

// LockNotice is the human-readable banner row written above the header.
const LockNotice = "This grid is auto-generated reference data. Do not edit."

// ProtectedColumns are the columns that receive independent locks when a grid
// is locked.
var ProtectedColumns = []string{"section_id", "section_name", "question_id", "maps_to"}

// ErrGridNotFound is returned when no grid is published under a name.
var ErrGridNotFound = errors.New("grid not found")

// Store manages published grids: materialization, lookup, and protection.
type Store interface {
	// CreateOrReplaceGrid writes a grid under the given destination name,
	// replacing any grid already published under it. Returns the grid id.
	CreateOrReplaceGrid(ctx context.Context, name string, meta Meta, rows []types.FlatRow) (string, error)

	// NameExists reports whether a grid is published under the given name.
	NameExists(ctx context.Context, name string) (bool, error)

	// GetGrid retrieves a published grid's metadata by name.
	GetGrid(ctx context.Context, name string) (*Record, error)

	// GetRows retrieves a published grid's data rows in order.
	GetRows(ctx context.Context, name string) ([]types.FlatRow, error)

	// ListGrids returns all published grids ordered by import time.
	ListGrids(ctx context.Context) ([]*Record, error)

	// FindByFingerprint returns the most recently imported grid with the
	// given content fingerprint, or nil if none exists.
	FindByFingerprint(ctx context.Context, fingerprint string) (*Record, error)

	// Lock marks a grid read-only, recording the fixed lock reason and
	// applying independent locks to the protected columns.
	Lock(ctx context.Context, name string) error

	// Unlock removes the grid lock and all column locks.
	Unlock(ctx context.Context, name string) error

	// IsLocked reports whether a grid is locked.
	IsLocked(ctx context.Context, name string) (bool, error)

	// ColumnLocks returns the column lock reasons for a grid, keyed by column.
	ColumnLocks(ctx context.Context, name string) (map[string]string, error)

	// Close closes the store's database connections.
	Close() error
}

// Meta carries the template metadata stamped onto a published grid.
type Meta struct {
	TemplateName    string
	TemplateVersion string
	Fingerprint     string
}

// Record represents a published grid in the store.
type Record struct {
	GridID          string
	Name            string
	TemplateName    string
	TemplateVersion string
	RowCount        int64
	Fingerprint     string
	Locked          bool
	LockReason      string
	ImportedAt      time.Time
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB // Write connection (single writer)
	readDB *sql.DB // Read connection pool (concurrent readers)
	dbPath string
	mu     sync.Mutex // Write-only lock (reads don't need this)

	insertRowStmt *sql.Stmt
}

// NewStore creates a new SQLite-based grid store.
func NewStore(dbPath string) (*SQLiteStore, error) {
	// Write connection: single writer with WAL mode
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("grid: failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // Single writer
	db.SetMaxIdleConns(1)

	// Read connection pool: concurrent readers via read-only mode
	readDB, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&mode=ro")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("grid: failed to open read database: %w", err)
	}
	readDB.SetMaxOpenConns(4)
	readDB.SetMaxIdleConns(4)
	readDB.SetConnMaxLifetime(5 * time.Minute)

	store := &SQLiteStore{
		db:     db,
		readDB: readDB,
		dbPath: dbPath,
	}

	if err := store.initSchema(); err != nil {
		readDB.Close()
		db.Close()
		return nil, fmt.Errorf("grid: failed to initialize schema: %w", err)
	}

	insertStmt, err := db.Prepare(`
		INSERT INTO grid_rows (
			grid_id, row_index,
			section_id, section_name, question_id, question, context, type,
			required, validation, maps_to, default_value, examples, options
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		readDB.Close()
		db.Close()
		return nil, fmt.Errorf("grid: failed to prepare insert statement: %w", err)
	}
	store.insertRowStmt = insertStmt

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stmt := range AllSchemaSQL() {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// CreateOrReplaceGrid writes a grid under the given destination name,
// replacing any existing grid published under that name in one transaction.
func (s *SQLiteStore) CreateOrReplaceGrid(ctx context.Context, name string, meta Meta, rows []types.FlatRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("grid: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Drop any grid previously published under this name, locks included.
	var oldID string
	err = tx.QueryRowContext(ctx, "SELECT grid_id FROM grids WHERE name = ?", name).Scan(&oldID)
	switch {
	case err == nil:
		for _, stmt := range []string{
			"DELETE FROM column_locks WHERE grid_id = ?",
			"DELETE FROM grid_rows WHERE grid_id = ?",
			"DELETE FROM grids WHERE grid_id = ?",
		} {
			if _, err := tx.ExecContext(ctx, stmt, oldID); err != nil {
				return "", fmt.Errorf("grid: failed to replace grid %q: %w", name, err)
			}
		}
	case err != sql.ErrNoRows:
		return "", fmt.Errorf("grid: failed to check existing grid: %w", err)
	}

	gridID := uuid.New().String()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO grids (grid_id, name, template_name, template_version, row_count, fingerprint, locked, imported_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		gridID, name, meta.TemplateName, meta.TemplateVersion, len(rows), meta.Fingerprint, time.Now().Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("grid: failed to insert grid %q: %w", name, err)
	}

	insertRow := tx.StmtContext(ctx, s.insertRowStmt)
	for i, r := range rows {
		_, err := insertRow.ExecContext(ctx,
			gridID, i,
			r.SectionID, r.SectionName, r.QuestionID, r.Prompt, r.Context, r.Type,
			r.Required, r.Validation, r.MapsTo, r.Default, r.Examples, r.Options,
		)
		if err != nil {
			return "", fmt.Errorf("grid: failed to insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("grid: failed to commit grid %q: %w", name, err)
	}

	return gridID, nil
}

// NameExists reports whether a grid is published under the given name.
func (s *SQLiteStore) NameExists(ctx context.Context, name string) (bool, error) {
	var one int
	err := s.readDB.QueryRowContext(ctx, "SELECT 1 FROM grids WHERE name = ?", name).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("grid: failed to check name %q: %w", name, err)
	}
	return true, nil
}

// GetGrid retrieves a published grid's metadata by name.
func (s *SQLiteStore) GetGrid(ctx context.Context, name string) (*Record, error) {
	row := s.readDB.QueryRowContext(ctx,
		`SELECT grid_id, name, template_name, template_version, row_count, fingerprint, locked, lock_reason, imported_at
		 FROM grids WHERE name = ?`, name)
	return scanRecord(row.Scan)
}

// FindByFingerprint returns the most recently imported grid with the given
// content fingerprint, or nil if none exists.
func (s *SQLiteStore) FindByFingerprint(ctx context.Context, fingerprint string) (*Record, error) {
	row := s.readDB.QueryRowContext(ctx,
		`SELECT grid_id, name, template_name, template_version, row_count, fingerprint, locked, lock_reason, imported_at
		 FROM grids WHERE fingerprint = ? ORDER BY imported_at DESC LIMIT 1`, fingerprint)
	record, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, ErrGridNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// ListGrids returns all published grids ordered by import time.
func (s *SQLiteStore) ListGrids(ctx context.Context) ([]*Record, error) {
	rows, err := s.readDB.QueryContext(ctx,
		`SELECT grid_id, name, template_name, template_version, row_count, fingerprint, locked, lock_reason, imported_at
		 FROM grids ORDER BY imported_at ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("grid: failed to list grids: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("grid: error iterating grids: %w", err)
	}
	return records, nil
}

// GetRows retrieves a published grid's data rows in order.
func (s *SQLiteStore) GetRows(ctx context.Context, name string) ([]types.FlatRow, error) {
	record, err := s.GetGrid(ctx, name)
	if err != nil {
		return nil, err
	}

	rows, err := s.readDB.QueryContext(ctx,
		`SELECT section_id, section_name, question_id, question, context, type,
			required, validation, maps_to, default_value, examples, options
		 FROM grid_rows WHERE grid_id = ? ORDER BY row_index ASC`, record.GridID)
	if err != nil {
		return nil, fmt.Errorf("grid: failed to query rows for %q: %w", name, err)
	}
	defer rows.Close()

	var result []types.FlatRow
	for rows.Next() {
		var r types.FlatRow
		if err := rows.Scan(
			&r.SectionID, &r.SectionName, &r.QuestionID, &r.Prompt, &r.Context, &r.Type,
			&r.Required, &r.Validation, &r.MapsTo, &r.Default, &r.Examples, &r.Options,
		); err != nil {
			return nil, fmt.Errorf("grid: failed to scan row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("grid: error iterating rows: %w", err)
	}
	return result, nil
}

// Lock marks a grid read-only and applies the per-column locks.
func (s *SQLiteStore) Lock(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("grid: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	gridID, err := lockTarget(ctx, tx, name)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE grids SET locked = 1, lock_reason = ? WHERE grid_id = ?",
		LockReason, gridID,
	); err != nil {
		return fmt.Errorf("grid: failed to lock %q: %w", name, err)
	}

	for _, column := range ProtectedColumns {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO column_locks (grid_id, column_name, reason) VALUES (?, ?, ?)",
			gridID, column, ColumnLockReason,
		); err != nil {
			return fmt.Errorf("grid: failed to lock column %q on %q: %w", column, name, err)
		}
	}

	return tx.Commit()
}

// Unlock removes the grid lock and all column locks.
func (s *SQLiteStore) Unlock(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("grid: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	gridID, err := lockTarget(ctx, tx, name)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE grids SET locked = 0, lock_reason = NULL WHERE grid_id = ?", gridID,
	); err != nil {
		return fmt.Errorf("grid: failed to unlock %q: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM column_locks WHERE grid_id = ?", gridID,
	); err != nil {
		return fmt.Errorf("grid: failed to clear column locks for %q: %w", name, err)
	}

	return tx.Commit()
}

// lockTarget resolves a grid name to its id within a transaction.
func lockTarget(ctx context.Context, tx *sql.Tx, name string) (string, error) {
	var gridID string
	err := tx.QueryRowContext(ctx, "SELECT grid_id FROM grids WHERE name = ?", name).Scan(&gridID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("grid: grid %q not found", name)
		}
		return "", fmt.Errorf("grid: failed to resolve grid %q: %w", name, err)
	}
	return gridID, nil
}

// IsLocked reports whether a grid is locked.
func (s *SQLiteStore) IsLocked(ctx context.Context, name string) (bool, error) {
	var locked bool
	err := s.readDB.QueryRowContext(ctx, "SELECT locked FROM grids WHERE name = ?", name).Scan(&locked)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, fmt.Errorf("grid: grid %q not found", name)
		}
		return false, fmt.Errorf("grid: failed to check lock on %q: %w", name, err)
	}
	return locked, nil
}

// ColumnLocks returns the column lock reasons for a grid, keyed by column name.
func (s *SQLiteStore) ColumnLocks(ctx context.Context, name string) (map[string]string, error) {
	record, err := s.GetGrid(ctx, name)
	if err != nil {
		return nil, err
	}

	rows, err := s.readDB.QueryContext(ctx,
		"SELECT column_name, reason FROM column_locks WHERE grid_id = ?", record.GridID)
	if err != nil {
		return nil, fmt.Errorf("grid: failed to query column locks for %q: %w", name, err)
	}
	defer rows.Close()

	locks := make(map[string]string)
	for rows.Next() {
		var column, reason string
		if err := rows.Scan(&column, &reason); err != nil {
			return nil, fmt.Errorf("grid: failed to scan column lock: %w", err)
		}
		locks[column] = reason
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("grid: error iterating column locks: %w", err)
	}
	return locks, nil
}

// Close closes the store's database connections.
func (s *SQLiteStore) Close() error {
	if s.insertRowStmt != nil {
		s.insertRowStmt.Close()
	}
	if err := s.readDB.Close(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}

// scanRecord scans a grids row into a Record.
func scanRecord(scan func(dest ...interface{}) error) (*Record, error) {
	var record Record
	var lockReason sql.NullString
	var importedAtUnix int64

	err := scan(
		&record.GridID, &record.Name, &record.TemplateName, &record.TemplateVersion,
		&record.RowCount, &record.Fingerprint, &record.Locked, &lockReason, &importedAtUnix,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("grid: %w", ErrGridNotFound)
		}
		return nil, fmt.Errorf("grid: failed to scan grid: %w", err)
	}

	record.LockReason = lockReason.String
	record.ImportedAt = time.Unix(importedAtUnix, 0)
	return &record, nil
}
