package models

import "time"

// QuizAttempt is one quiz question issued to a learner. It accepts a single answer.
type QuizAttempt struct {
	ID        int64  `json:"id" db:"id"`
	LearnerID int64  `json:"learner_id" db:"learner_id"`
	Word      string `json:"word" db:"word"`
	// CorrectIndex is the position of the right answer button, -1 when the
	// question was shown without buttons.
	CorrectIndex  int       `json:"correct_index" db:"correct_index"`
	CorrectOption string    `json:"correct_option" db:"correct_option"`
	ChosenIndex   int       `json:"chosen_index" db:"chosen_index"`
	Answered      bool      `json:"answered" db:"answered"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// IsCorrect reports whether the recorded answer is the right one
func (a *QuizAttempt) IsCorrect() bool {
	return a.Answered && a.CorrectIndex >= 0 && a.ChosenIndex == a.CorrectIndex
}
