// Package grid provides the SQLite-backed grid store that materializes and
// protects published intake grids.
package grid

// Schema contains the SQL schema definitions for the grid store (grids.db).
// The grid store is a SQLite database that serves as the source of truth for
// all published grids and their protection state.

// CreateGridsTableSQL creates the core grids table. One row per published
// grid, keyed by the resolved destination name.
const CreateGridsTableSQL = `
CREATE TABLE IF NOT EXISTS grids (
    grid_id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    template_name TEXT NOT NULL,
    template_version TEXT NOT NULL,
    row_count INTEGER NOT NULL,
    fingerprint TEXT NOT NULL,
    locked INTEGER NOT NULL DEFAULT 0,
    lock_reason TEXT,
    imported_at INTEGER NOT NULL
)`

// CreateGridRowsTableSQL creates the grid rows table: the 12 data cells of
// each flattened row, ordered by row_index within a grid.
const CreateGridRowsTableSQL = `
CREATE TABLE IF NOT EXISTS grid_rows (
    grid_id TEXT NOT NULL,
    row_index INTEGER NOT NULL,
    section_id TEXT NOT NULL,
    section_name TEXT NOT NULL,
    question_id TEXT NOT NULL,
    question TEXT NOT NULL,
    context TEXT NOT NULL,
    type TEXT NOT NULL,
    required INTEGER NOT NULL,
    validation TEXT NOT NULL,
    maps_to TEXT NOT NULL,
    default_value TEXT NOT NULL,
    examples TEXT NOT NULL,
    options TEXT NOT NULL,
    PRIMARY KEY (grid_id, row_index),
    FOREIGN KEY (grid_id) REFERENCES grids(grid_id)
)`

// CreateColumnLocksTableSQL creates the per-column lock table. Locking a grid
// additionally locks the identity/mapping columns with their own reason.
const CreateColumnLocksTableSQL = `
CREATE TABLE IF NOT EXISTS column_locks (
    grid_id TEXT NOT NULL,
    column_name TEXT NOT NULL,
    reason TEXT NOT NULL,
    PRIMARY KEY (grid_id, column_name),
    FOREIGN KEY (grid_id) REFERENCES grids(grid_id)
)`

// CreateGridsIndexesSQL creates indexes for grid lookups.
var CreateGridsIndexesSQL = []string{
	// Index for listing all versions of a template
	`CREATE INDEX IF NOT EXISTS idx_grids_template ON grids(template_name)`,

	// Index for content-identity lookups on re-import
	`CREATE INDEX IF NOT EXISTS idx_grids_fingerprint ON grids(fingerprint)`,

	// Index for question id lookups within a grid
	`CREATE INDEX IF NOT EXISTS idx_grid_rows_question ON grid_rows(grid_id, question_id)`,
}

// AllSchemaSQL returns all SQL statements needed to initialize the grid store.
func AllSchemaSQL() []string {
	statements := []string{
		CreateGridsTableSQL,
		CreateGridRowsTableSQL,
		CreateColumnLocksTableSQL,
	}
	statements = append(statements, CreateGridsIndexesSQL...)
	return statements
}
