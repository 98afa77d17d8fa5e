package models

import (
	"strings"
	"time"
)

// VocabularyEntry is a canonical word from the curated bank
type VocabularyEntry struct {
	ID            int64     `json:"id" db:"id"`
	Word          string    `json:"word" db:"word"`
	PartOfSpeech  string    `json:"part_of_speech" db:"part_of_speech"`
	Pronunciation string    `json:"pronunciation" db:"pronunciation"`
	Translation   string    `json:"translation" db:"translation"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// NormalizeWord is the key used for bank words and knowledge rows.
func NormalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}
