package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList is a list of strings stored as a JSON array column
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal string list: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("unsupported type for string list: %T", src)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, (*[]string)(l))
}

// WordKnowledge is generated explanatory content for a word, owned by one learner.
// (LearnerID, Word) is unique.
type WordKnowledge struct {
	ID                   int64      `json:"id" db:"id"`
	LearnerID            int64      `json:"learner_id" db:"learner_id"`
	Word                 string     `json:"word" db:"word"`
	Definition           string     `json:"definition" db:"definition"`
	TranslatedDefinition string     `json:"translated_definition" db:"translated_definition"`
	Pronunciation        string     `json:"pronunciation" db:"pronunciation"`
	PartOfSpeech         string     `json:"part_of_speech" db:"part_of_speech"`
	Examples             StringList `json:"examples" db:"examples"`
	TranslatedExamples   StringList `json:"translated_examples" db:"translated_examples"`
	Synonyms             StringList `json:"synonyms" db:"synonyms"`
	UsageCount           int        `json:"usage_count" db:"usage_count"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}

// NewWordKnowledge builds a knowledge row for learnerID from generated info.
// The word key is the normalized form of key, so the row lines up with the bank word
// that was drawn even if the generator echoes a different spelling.
func NewWordKnowledge(learnerID int64, key string, info WordInfo) *WordKnowledge {
	return &WordKnowledge{
		LearnerID:            learnerID,
		Word:                 NormalizeWord(key),
		Definition:           info.Definition,
		TranslatedDefinition: info.VietnameseDefinition,
		Pronunciation:        info.Pronunciation,
		PartOfSpeech:         info.PartOfSpeech,
		Examples:             StringList(info.Examples),
		TranslatedExamples:   StringList(info.VietnameseExamples),
		Synonyms:             StringList(info.Synonyms),
	}
}

// Info converts the stored knowledge back into the generator shape used for replies
func (k *WordKnowledge) Info() WordInfo {
	return WordInfo{
		Word:                 k.Word,
		Pronunciation:        k.Pronunciation,
		PartOfSpeech:         k.PartOfSpeech,
		Definition:           k.Definition,
		VietnameseDefinition: k.TranslatedDefinition,
		Examples:             []string(k.Examples),
		VietnameseExamples:   []string(k.TranslatedExamples),
		Synonyms:             []string(k.Synonyms),
	}
}

// LearnedWord is one entry of a learner's word list
type LearnedWord struct {
	Word       string `json:"word" db:"word"`
	Definition string `json:"definition" db:"definition"`
}
