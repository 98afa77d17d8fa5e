package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/toeicbot/pkg/models"
)

const learnerColumns = `id, display_name, streak_days, last_study_date,
	quiz_total_attempts, quiz_correct_answers, created_at, updated_at`

// LearnerRepository handles database operations for learner profiles
type LearnerRepository struct {
	db *sqlx.DB
}

// NewLearnerRepository creates a new repository instance
func NewLearnerRepository(db *sqlx.DB) *LearnerRepository {
	return &LearnerRepository{db: db}
}

// Ensure returns the learner's profile, creating it with zeroed counters on first contact.
// A non-empty displayName refreshes the stored one.
func (r *LearnerRepository) Ensure(ctx context.Context, id int64, displayName string, now time.Time) (*models.LearnerProfile, error) {
	p := models.NewLearnerProfile(id, displayName, now)
	query := r.db.Rebind(`
		INSERT INTO learners (` + learnerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			display_name = CASE WHEN excluded.display_name <> '' THEN excluded.display_name ELSE learners.display_name END
	`)
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.DisplayName, p.StreakDays, p.LastStudyDate,
		p.TotalAttempts, p.CorrectAnswers, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure learner %d: %w", id, err)
	}
	return r.Get(ctx, id)
}

// Get returns a learner with the learned word set loaded
func (r *LearnerRepository) Get(ctx context.Context, id int64) (*models.LearnerProfile, error) {
	var p models.LearnerProfile
	query := r.db.Rebind("SELECT " + learnerColumns + " FROM learners WHERE id = ?")
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get learner %d: %w", id, err)
	}

	var rows []struct {
		Word        string `db:"word"`
		KnowledgeID int64  `db:"knowledge_id"`
	}
	query = r.db.Rebind(`
		SELECT wk.word, lw.knowledge_id
		FROM learned_words lw
		JOIN word_knowledge wk ON wk.id = lw.knowledge_id
		WHERE lw.learner_id = ?
	`)
	if err := r.db.SelectContext(ctx, &rows, query, id); err != nil {
		return nil, fmt.Errorf("failed to load learned words: %w", err)
	}
	p.LearnedWords = make(map[string]int64, len(rows))
	for _, row := range rows {
		p.LearnedWords[row.Word] = row.KnowledgeID
	}
	return &p, nil
}

// LearnWord links a knowledge row into the learner's learned set and stores the
// streak fields of p in the same transaction. Returns false, leaving the learner
// untouched, if the word was already there.
func (r *LearnerRepository) LearnWord(ctx context.Context, p *models.LearnerProfile, knowledgeID int64) (bool, error) {
	added := false
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO learned_words (learner_id, knowledge_id, learned_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (learner_id, knowledge_id) DO NOTHING
		`), p.ID, knowledgeID)
		if err != nil {
			return fmt.Errorf("failed to add learned word: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to add learned word: %w", err)
		}
		if n == 0 {
			return nil
		}

		query := tx.Rebind(`
			UPDATE learners SET streak_days = ?, last_study_date = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`)
		if err := execOne(ctx, tx, query, p.StreakDays, p.LastStudyDate, p.ID); err != nil {
			return fmt.Errorf("failed to save progress for learner %d: %w", p.ID, err)
		}
		added = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// LearnedWords lists the learner's words with their definitions, oldest first
func (r *LearnerRepository) LearnedWords(ctx context.Context, learnerID int64) ([]models.LearnedWord, error) {
	var entries []models.LearnedWord
	query := r.db.Rebind(`
		SELECT wk.word, wk.definition
		FROM learned_words lw
		JOIN word_knowledge wk ON wk.id = lw.knowledge_id
		WHERE lw.learner_id = ?
		ORDER BY lw.learned_at, lw.id
	`)
	if err := r.db.SelectContext(ctx, &entries, query, learnerID); err != nil {
		return nil, fmt.Errorf("failed to list learned words: %w", err)
	}
	return entries, nil
}

// ListWithStreak returns learners with a positive streak, without their word sets
func (r *LearnerRepository) ListWithStreak(ctx context.Context) ([]*models.LearnerProfile, error) {
	var learners []*models.LearnerProfile
	query := "SELECT " + learnerColumns + " FROM learners WHERE streak_days > 0 ORDER BY id"
	if err := r.db.SelectContext(ctx, &learners, query); err != nil {
		return nil, fmt.Errorf("failed to list learners with streak: %w", err)
	}
	return learners, nil
}
