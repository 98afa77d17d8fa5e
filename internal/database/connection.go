package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a row does not exist
var ErrNotFound = errors.New("not found")

// Connect opens the database for driver ("sqlite3" or "postgres") and applies the schema
func Connect(driver, dsn string) (*sqlx.DB, error) {
	if driver == "sqlite3" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		// Create data directory if it doesn't exist
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite3" {
		// Enable foreign keys
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		db.SetMaxOpenConns(1) // SQLite doesn't support multiple writers
		db.SetMaxIdleConns(1)
	}

	if err := InitSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitSchema creates the tables for the connection's dialect if they don't exist
func InitSchema(db *sqlx.DB) error {
	stmts := sqliteSchema
	if db.DriverName() == "postgres" {
		stmts = postgresSchema
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// withTx runs fn inside a transaction. It commits when fn returns nil and rolls back otherwise.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// execOne runs an update that must touch exactly one row, ErrNotFound otherwise
func execOne(ctx context.Context, exec sqlx.ExecerContext, query string, args ...interface{}) error {
	res, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update row: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update row: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS learners (
		id INTEGER PRIMARY KEY,
		display_name TEXT NOT NULL DEFAULT '',
		streak_days INTEGER NOT NULL DEFAULT 0,
		last_study_date TIMESTAMP NOT NULL,
		quiz_total_attempts INTEGER NOT NULL DEFAULT 0,
		quiz_correct_answers INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS vocabulary_bank (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		word TEXT NOT NULL UNIQUE,
		part_of_speech TEXT NOT NULL DEFAULT 'unknown',
		pronunciation TEXT NOT NULL DEFAULT '',
		translation TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS word_knowledge (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		learner_id INTEGER NOT NULL,
		word TEXT NOT NULL,
		definition TEXT NOT NULL,
		translated_definition TEXT NOT NULL DEFAULT '',
		pronunciation TEXT NOT NULL DEFAULT '',
		part_of_speech TEXT NOT NULL DEFAULT '',
		examples TEXT NOT NULL DEFAULT '[]',
		translated_examples TEXT NOT NULL DEFAULT '[]',
		synonyms TEXT NOT NULL DEFAULT '[]',
		usage_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (learner_id) REFERENCES learners(id),
		UNIQUE(learner_id, word)
	)`,
	`CREATE TABLE IF NOT EXISTS learned_words (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		learner_id INTEGER NOT NULL,
		knowledge_id INTEGER NOT NULL,
		learned_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (learner_id) REFERENCES learners(id),
		FOREIGN KEY (knowledge_id) REFERENCES word_knowledge(id),
		UNIQUE(learner_id, knowledge_id)
	)`,
	`CREATE TABLE IF NOT EXISTS quiz_attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		learner_id INTEGER NOT NULL,
		word TEXT NOT NULL,
		correct_index INTEGER NOT NULL,
		correct_option TEXT NOT NULL DEFAULT '',
		chosen_index INTEGER NOT NULL DEFAULT -1,
		answered BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		answered_at TIMESTAMP,
		FOREIGN KEY (learner_id) REFERENCES learners(id)
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS learners (
		id BIGINT PRIMARY KEY,
		display_name TEXT NOT NULL DEFAULT '',
		streak_days INTEGER NOT NULL DEFAULT 0,
		last_study_date TIMESTAMPTZ NOT NULL,
		quiz_total_attempts INTEGER NOT NULL DEFAULT 0,
		quiz_correct_answers INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS vocabulary_bank (
		id BIGSERIAL PRIMARY KEY,
		word TEXT NOT NULL UNIQUE,
		part_of_speech TEXT NOT NULL DEFAULT 'unknown',
		pronunciation TEXT NOT NULL DEFAULT '',
		translation TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS word_knowledge (
		id BIGSERIAL PRIMARY KEY,
		learner_id BIGINT NOT NULL REFERENCES learners(id),
		word TEXT NOT NULL,
		definition TEXT NOT NULL,
		translated_definition TEXT NOT NULL DEFAULT '',
		pronunciation TEXT NOT NULL DEFAULT '',
		part_of_speech TEXT NOT NULL DEFAULT '',
		examples TEXT NOT NULL DEFAULT '[]',
		translated_examples TEXT NOT NULL DEFAULT '[]',
		synonyms TEXT NOT NULL DEFAULT '[]',
		usage_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW(),
		UNIQUE(learner_id, word)
	)`,
	`CREATE TABLE IF NOT EXISTS learned_words (
		id BIGSERIAL PRIMARY KEY,
		learner_id BIGINT NOT NULL REFERENCES learners(id),
		knowledge_id BIGINT NOT NULL REFERENCES word_knowledge(id),
		learned_at TIMESTAMPTZ DEFAULT NOW(),
		UNIQUE(learner_id, knowledge_id)
	)`,
	`CREATE TABLE IF NOT EXISTS quiz_attempts (
		id BIGSERIAL PRIMARY KEY,
		learner_id BIGINT NOT NULL REFERENCES learners(id),
		word TEXT NOT NULL,
		correct_index INTEGER NOT NULL,
		correct_option TEXT NOT NULL DEFAULT '',
		chosen_index INTEGER NOT NULL DEFAULT -1,
		answered BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		answered_at TIMESTAMPTZ
	)`,
}
