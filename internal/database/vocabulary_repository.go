package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/toeicbot/internal/random"
	"github.com/example/toeicbot/pkg/models"
)

const vocabularyColumns = "id, word, part_of_speech, pronunciation, translation, is_active, created_at"

// VocabularyRepository handles database operations for the curated word bank
type VocabularyRepository struct {
	db  *sqlx.DB
	rnd random.Source
}

// NewVocabularyRepository creates a new repository instance drawing words with rnd
func NewVocabularyRepository(db *sqlx.DB, rnd random.Source) *VocabularyRepository {
	return &VocabularyRepository{db: db, rnd: rnd}
}

// SampleActive draws one active word uniformly from those not in excluding.
// Returns nil, nil when every active word is excluded.
func (r *VocabularyRepository) SampleActive(ctx context.Context, excluding []string) (*models.VocabularyEntry, error) {
	query := "SELECT id FROM vocabulary_bank WHERE is_active = TRUE"
	var args []interface{}
	if len(excluding) > 0 {
		var err error
		query, args, err = sqlx.In(query+" AND word NOT IN (?)", excluding)
		if err != nil {
			return nil, fmt.Errorf("failed to build sample query: %w", err)
		}
	}
	query = r.db.Rebind(query + " ORDER BY id")

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list candidate words: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var entry models.VocabularyEntry
	query = r.db.Rebind("SELECT " + vocabularyColumns + " FROM vocabulary_bank WHERE id = ?")
	if err := r.db.GetContext(ctx, &entry, query, ids[r.rnd.Intn(len(ids))]); err != nil {
		return nil, fmt.Errorf("failed to get sampled word: %w", err)
	}
	return &entry, nil
}

// InsertIfAbsent adds entry to the bank keyed by its normalized word.
// Returns false when the word already exists.
func (r *VocabularyRepository) InsertIfAbsent(ctx context.Context, entry *models.VocabularyEntry) (bool, error) {
	entry.Word = models.NormalizeWord(entry.Word)
	if entry.Word == "" {
		return false, fmt.Errorf("empty word")
	}
	query := r.db.Rebind(`
		INSERT INTO vocabulary_bank (word, part_of_speech, pronunciation, translation, is_active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (word) DO NOTHING
	`)
	res, err := r.db.ExecContext(ctx, query,
		entry.Word, entry.PartOfSpeech, entry.Pronunciation, entry.Translation, entry.IsActive)
	if err != nil {
		return false, fmt.Errorf("failed to insert word %q: %w", entry.Word, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to insert word %q: %w", entry.Word, err)
	}
	return n > 0, nil
}

// GetByWord returns the bank entry for word
func (r *VocabularyRepository) GetByWord(ctx context.Context, word string) (*models.VocabularyEntry, error) {
	var entry models.VocabularyEntry
	query := r.db.Rebind("SELECT " + vocabularyColumns + " FROM vocabulary_bank WHERE word = ?")
	if err := r.db.GetContext(ctx, &entry, query, models.NormalizeWord(word)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get word %q: %w", word, err)
	}
	return &entry, nil
}

// CountActive returns the number of active bank words
func (r *VocabularyRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM vocabulary_bank WHERE is_active = TRUE"); err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}
	return n, nil
}
