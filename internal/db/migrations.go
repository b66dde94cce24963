package db

import (
	"fmt"

	"github.com/pdxmph/tasks-tui/internal/logging"
)

// RunMigrations applies any pending database migrations
func (db *DB) RunMigrations() error {
	if err := db.runTableMigration(); err != nil {
		return err
	}

	if err := db.runUpdatedAtMigration(); err != nil {
		return err
	}

	return nil
}

// runTableMigration creates the kv table in databases made by other tools
func (db *DB) runTableMigration() error {
	_, err := db.conn.Exec(`CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`)
	if err != nil {
		return fmt.Errorf("ensuring kv table: %w", err)
	}
	return nil
}

func (db *DB) runUpdatedAtMigration() error {
	var count int
	err := db.conn.QueryRow(`
		SELECT COUNT(*)
		FROM pragma_table_info('kv')
		WHERE name = 'updated_at'
	`).Scan(&count)

	if err != nil {
		return fmt.Errorf("checking for updated_at column: %w", err)
	}

	if count > 0 {
		return nil
	}

	logging.Logger.Info("Running migration: adding kv.updated_at column")

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	// SQLite rejects non-constant defaults in ADD COLUMN, so backfill instead
	_, err = tx.Exec(`ALTER TABLE kv ADD COLUMN updated_at DATETIME`)
	if err != nil && err.Error() != "duplicate column name: updated_at" {
		return fmt.Errorf("adding updated_at column: %w", err)
	}

	if _, err := tx.Exec(`UPDATE kv SET updated_at = CURRENT_TIMESTAMP WHERE updated_at IS NULL`); err != nil {
		return fmt.Errorf("backfilling updated_at: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration: %w", err)
	}

	logging.Logger.Info("Migration completed successfully")
	return nil
}
