package repository

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file" // file:// migration source
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver for local/dev deployments
)

// NewPostgresDB establishes a new connection to the PostgreSQL database.
func NewPostgresDB(dataSourceName string, logger *zap.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	logger.Info("Successfully connected to the database!")
	return db, nil
}

// MigrateDB runs database migrations against PostgreSQL.
func MigrateDB(db *sqlx.DB, logger *zap.Logger) {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		logger.Fatal("Couldn't get database instance for running migrations", zap.Error(err))
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "profbot", driver)
	if err != nil {
		logger.Fatal("Couldn't create migrate instance", zap.Error(err))
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal("Couldn't run database migration", zap.Error(err))
	}

	logger.Info("Database migration was run successfully")
}

// NewSQLiteDB opens a SQLite database for local or development deployments and
// creates the schema inline.
func NewSQLiteDB(path string, logger *zap.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// A single connection serializes writers and keeps in-memory databases on
	// one shared handle.
	db.SetMaxOpenConns(1)

	if err := createSQLiteSchema(db); err != nil {
		return nil, fmt.Errorf("failed to create sqlite schema: %w", err)
	}

	logger.Info("SQLite database initialized", zap.String("path", path))
	return db, nil
}

func createSQLiteSchema(db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS classified_intents (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		course_id TEXT NOT NULL,
		summarized_input TEXT NOT NULL,
		forum_id TEXT NOT NULL,
		post_id TEXT NOT NULL,
		intent TEXT NOT NULL,
		source TEXT NOT NULL,
		external_created_at TIMESTAMP NOT NULL,
		external_updated_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_intents_external_created_at
		ON classified_intents(external_created_at);

	CREATE TABLE IF NOT EXISTS actions (
		id TEXT PRIMARY KEY,
		action_to_be_taken TEXT NOT NULL,
		reason TEXT NOT NULL,
		priority REAL NOT NULL,
		confidence REAL NOT NULL,
		content TEXT NOT NULL,
		metadata TEXT NOT NULL,
		memory_summary TEXT NOT NULL DEFAULT '',
		was_action_taken BOOLEAN NOT NULL DEFAULT 0,
		action_successful BOOLEAN,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_actions_created_at ON actions(created_at);

	CREATE TABLE IF NOT EXISTS knowledge_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		course_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_knowledge_kind ON knowledge_entries(kind);
	`

	_, err := db.Exec(schema)
	return err
}
