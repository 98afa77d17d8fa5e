package models

import (
	"math"
	"time"
)

// QuizStats tracks quiz attempts for a learner. Both counters only grow.
type QuizStats struct {
	TotalAttempts  int `json:"total_attempts" db:"quiz_total_attempts"`
	CorrectAnswers int `json:"correct_answers" db:"quiz_correct_answers"`
}

// LearnerProfile represents a Telegram user studying with the bot
type LearnerProfile struct {
	ID            int64     `json:"id" db:"id"` // Telegram user ID
	DisplayName   string    `json:"display_name" db:"display_name"`
	StreakDays    int       `json:"streak_days" db:"streak_days"`
	LastStudyDate time.Time `json:"last_study_date" db:"last_study_date"`
	QuizStats
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// LearnedWords maps a normalized word to the ID of the learner's WordKnowledge row.
	LearnedWords map[string]int64 `json:"learned_words" db:"-"`
}

// NewLearnerProfile returns a profile with zeroed counters. The last study date
// defaults to the creation instant.
func NewLearnerProfile(id int64, displayName string, now time.Time) *LearnerProfile {
	return &LearnerProfile{
		ID:            id,
		DisplayName:   displayName,
		LastStudyDate: now,
		CreatedAt:     now,
		UpdatedAt:     now,
		LearnedWords:  make(map[string]int64),
	}
}

// HasLearned reports whether word is already in the learner's learned set
func (p *LearnerProfile) HasLearned(word string) bool {
	_, ok := p.LearnedWords[NormalizeWord(word)]
	return ok
}

// MarkLearned adds word to the learned set and reports whether it was new.
func (p *LearnerProfile) MarkLearned(word string, knowledgeID int64) bool {
	if p.LearnedWords == nil {
		p.LearnedWords = make(map[string]int64)
	}
	key := NormalizeWord(word)
	if _, ok := p.LearnedWords[key]; ok {
		return false
	}
	p.LearnedWords[key] = knowledgeID
	return true
}

// LearnedCount returns the size of the learned set
func (p *LearnerProfile) LearnedCount() int {
	return len(p.LearnedWords)
}

// LearnedWordList returns the learned words as a slice, in no particular order
func (p *LearnerProfile) LearnedWordList() []string {
	words := make([]string, 0, len(p.LearnedWords))
	for w := range p.LearnedWords {
		words = append(words, w)
	}
	return words
}

// AccuracyPercent returns the rounded share of correct quiz answers, 0 when
// no quiz has been attempted yet.
func (s QuizStats) AccuracyPercent() int {
	if s.TotalAttempts <= 0 {
		return 0
	}
	return int(math.Round(float64(s.CorrectAnswers) / float64(s.TotalAttempts) * 100))
}
