package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/toeicbot/pkg/models"
)

// ErrQuizAnswered is returned when a quiz already has its answer
var ErrQuizAnswered = errors.New("quiz already answered")

const quizColumns = "id, learner_id, word, correct_index, correct_option, chosen_index, answered, created_at"

// QuizRepository stores issued quizzes and their answers
type QuizRepository struct {
	db *sqlx.DB
}

// NewQuizRepository creates a new repository instance
func NewQuizRepository(db *sqlx.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// Create stores an unanswered quiz and counts it as an attempt for its learner.
// a.ID is set to the new row's id.
func (r *QuizRepository) Create(ctx context.Context, a *models.QuizAttempt) (int64, error) {
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var id int64
		query := tx.Rebind(`
			INSERT INTO quiz_attempts (learner_id, word, correct_index, correct_option)
			VALUES (?, ?, ?, ?)
			RETURNING id
		`)
		if err := tx.QueryRowxContext(ctx, query, a.LearnerID, a.Word, a.CorrectIndex, a.CorrectOption).Scan(&id); err != nil {
			return fmt.Errorf("failed to create quiz: %w", err)
		}

		query = tx.Rebind(`
			UPDATE learners SET quiz_total_attempts = quiz_total_attempts + 1, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`)
		if err := execOne(ctx, tx, query, a.LearnerID); err != nil {
			return fmt.Errorf("failed to count quiz attempt: %w", err)
		}
		a.ID = id
		return nil
	})
	if err != nil {
		return 0, err
	}
	return a.ID, nil
}

// Answer records chosen as the answer to the learner's quiz and counts a correct
// answer. Only the first answer is accepted: later ones get ErrQuizAnswered.
// A quiz that does not exist or belongs to another learner is ErrNotFound.
func (r *QuizRepository) Answer(ctx context.Context, quizID, learnerID int64, chosen int) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE quiz_attempts SET answered = TRUE, chosen_index = ?, answered_at = CURRENT_TIMESTAMP
			WHERE id = ? AND learner_id = ? AND answered = FALSE
		`), chosen, quizID, learnerID)
		if err != nil {
			return fmt.Errorf("failed to answer quiz %d: %w", quizID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to answer quiz %d: %w", quizID, err)
		}

		query := tx.Rebind("SELECT " + quizColumns + " FROM quiz_attempts WHERE id = ? AND learner_id = ?")
		if err := tx.GetContext(ctx, &attempt, query, quizID, learnerID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load quiz %d: %w", quizID, err)
		}
		if n == 0 {
			return ErrQuizAnswered
		}

		if attempt.IsCorrect() {
			query = tx.Rebind(`
				UPDATE learners SET quiz_correct_answers = quiz_correct_answers + 1, updated_at = CURRENT_TIMESTAMP
				WHERE id = ?
			`)
			if err := execOne(ctx, tx, query, learnerID); err != nil {
				return fmt.Errorf("failed to count correct answer: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}
