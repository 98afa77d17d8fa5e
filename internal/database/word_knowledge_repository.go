package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/toeicbot/pkg/models"
)

// WordKnowledgeRepository handles database operations for generated word content
type WordKnowledgeRepository struct {
	db *sqlx.DB
}

// NewWordKnowledgeRepository creates a new repository instance
func NewWordKnowledgeRepository(db *sqlx.DB) *WordKnowledgeRepository {
	return &WordKnowledgeRepository{db: db}
}

// Find returns the learner's knowledge row for word or ErrNotFound
func (r *WordKnowledgeRepository) Find(ctx context.Context, learnerID int64, word string) (*models.WordKnowledge, error) {
	var k models.WordKnowledge
	query := r.db.Rebind(`
		SELECT id, learner_id, word, definition, translated_definition, pronunciation, part_of_speech,
			examples, translated_examples, synonyms, usage_count, created_at, updated_at
		FROM word_knowledge WHERE learner_id = ? AND word = ?
	`)
	if err := r.db.GetContext(ctx, &k, query, learnerID, models.NormalizeWord(word)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find knowledge for %q: %w", word, err)
	}
	return &k, nil
}

// Upsert stores k keyed by (learner, word), replacing the content of an existing row.
// k.ID is set to the stored row's id.
func (r *WordKnowledgeRepository) Upsert(ctx context.Context, k *models.WordKnowledge) (int64, error) {
	k.Word = models.NormalizeWord(k.Word)
	query := r.db.Rebind(`
		INSERT INTO word_knowledge (
			learner_id, word, definition, translated_definition, pronunciation, part_of_speech,
			examples, translated_examples, synonyms, usage_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT (learner_id, word) DO UPDATE SET
			definition = excluded.definition,
			translated_definition = excluded.translated_definition,
			pronunciation = excluded.pronunciation,
			part_of_speech = excluded.part_of_speech,
			examples = excluded.examples,
			translated_examples = excluded.translated_examples,
			synonyms = excluded.synonyms,
			usage_count = word_knowledge.usage_count + 1,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`)
	var id int64
	err := r.db.QueryRowxContext(ctx, query,
		k.LearnerID, k.Word, k.Definition, k.TranslatedDefinition, k.Pronunciation, k.PartOfSpeech,
		k.Examples, k.TranslatedExamples, k.Synonyms,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert knowledge for %q: %w", k.Word, err)
	}
	k.ID = id
	return id, nil
}

// Touch bumps the usage counter of a cached row
func (r *WordKnowledgeRepository) Touch(ctx context.Context, id int64) error {
	query := r.db.Rebind("UPDATE word_knowledge SET usage_count = usage_count + 1 WHERE id = ?")
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to touch knowledge %d: %w", id, err)
	}
	return nil
}
