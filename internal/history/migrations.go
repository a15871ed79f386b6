package history

import (
	"database/sql"
	"fmt"
)

// Migration represents a database schema migration
type Migration struct {
	Version     int
	Description string
	Up          func(*sql.Tx) error
	Down        func(*sql.Tx) error
}

// migrations is the ordered list of all schema migrations
var migrations = []Migration{
	{
		Version:     1,
		Description: "Create schema_version table",
		Up:          migration001Up,
		Down:        migration001Down,
	},
	{
		Version:     2,
		Description: "Create purchases table",
		Up:          migration002Up,
		Down:        migration002Down,
	},
	{
		Version:     3,
		Description: "Create runs table",
		Up:          migration003Up,
		Down:        migration003Down,
	},
}

// RunMigrations runs all pending database migrations.
func (db *DB) RunMigrations() error {
	currentVersion, err := db.getCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		err := db.ExecTx(func(tx *sql.Tx) error {
			if err := migration.Up(tx); err != nil {
				return fmt.Errorf("migration %d failed: %w", migration.Version, err)
			}
			_, err := tx.Exec(`
				INSERT INTO schema_version (version, description)
				VALUES (?, ?)
			`, migration.Version, migration.Description)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// getCurrentVersion tolerates a database where no migration has run yet.
func (db *DB) getCurrentVersion() (int, error) {
	var exists int
	err := db.conn.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}
	return db.GetVersion()
}

func migration001Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
		)
	`)
	return err
}

func migration001Down(tx *sql.Tx) error {
	_, err := tx.Exec("DROP TABLE IF EXISTS schema_version")
	return err
}

func migration002Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS purchases (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			item_name TEXT NOT NULL,
			price INTEGER NOT NULL,
			bought_count INTEGER NOT NULL,
			purchased_at DATETIME NOT NULL DEFAULT (datetime('now'))
		)
	`)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`
		CREATE INDEX IF NOT EXISTS idx_purchases_item
		ON purchases(item_name, purchased_at)
	`)
	return err
}

func migration002Down(tx *sql.Tx) error {
	_, err := tx.Exec("DROP TABLE IF EXISTS purchases")
	return err
}

func migration003Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			finished_at DATETIME NOT NULL DEFAULT (datetime('now')),
			all_targets_reached INTEGER NOT NULL DEFAULT 0
		)
	`)
	return err
}

func migration003Down(tx *sql.Tx) error {
	_, err := tx.Exec("DROP TABLE IF EXISTS runs")
	return err
}
