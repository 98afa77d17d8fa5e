package models

// Statistics is a bot-wide usage snapshot for administrators
type Statistics struct {
	Learners          int `json:"learners" db:"learners"`
	LearnersOnStreak  int `json:"learners_on_streak" db:"learners_on_streak"`
	ActiveWords       int `json:"active_words" db:"active_words"`
	LearnedWords      int `json:"learned_words" db:"learned_words"`
	KnowledgeEntries  int `json:"knowledge_entries" db:"knowledge_entries"`
	QuizAttempts      int `json:"quiz_attempts" db:"quiz_attempts"`
	QuizCorrectAnswer int `json:"quiz_correct_answers" db:"quiz_correct_answers"`
}
