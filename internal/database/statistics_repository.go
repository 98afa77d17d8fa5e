package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/toeicbot/pkg/models"
)

// StatisticsRepository computes usage statistics across all learners
type StatisticsRepository struct {
	db *sqlx.DB
}

// NewStatisticsRepository creates a new repository instance
func NewStatisticsRepository(db *sqlx.DB) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

// Summary returns the current totals
func (r *StatisticsRepository) Summary(ctx context.Context) (*models.Statistics, error) {
	var stats models.Statistics
	query := `
		SELECT
			(SELECT COUNT(*) FROM learners) AS learners,
			(SELECT COUNT(*) FROM learners WHERE streak_days > 0) AS learners_on_streak,
			(SELECT COUNT(*) FROM vocabulary_bank WHERE is_active = TRUE) AS active_words,
			(SELECT COUNT(*) FROM learned_words) AS learned_words,
			(SELECT COUNT(*) FROM word_knowledge) AS knowledge_entries,
			(SELECT COALESCE(SUM(quiz_total_attempts), 0) FROM learners) AS quiz_attempts,
			(SELECT COALESCE(SUM(quiz_correct_answers), 0) FROM learners) AS quiz_correct_answers
	`
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to get statistics: %w", err)
	}
	return &stats, nil
}
