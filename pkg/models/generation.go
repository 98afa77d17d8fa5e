package models

// WordInfo is the structured explanation returned by the content generator
type WordInfo struct {
	Word                 string   `json:"word"`
	Pronunciation        string   `json:"pronunciation"`
	PartOfSpeech         string   `json:"partOfSpeech"`
	Definition           string   `json:"definition"`
	VietnameseDefinition string   `json:"vietnameseDefinition"`
	Examples             []string `json:"examples"`
	VietnameseExamples   []string `json:"vietnameseExamples"`
	Synonyms             []string `json:"synonyms"`
}

// QuizQuestion is a multiple choice question about one word
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// WordPair is a collocation extracted from an article
type WordPair struct {
	Pair                 string `json:"pair"`
	Definition           string `json:"definition"`
	VietnameseDefinition string `json:"vietnameseDefinition"`
	Example              string `json:"example"`
	VietnameseExample    string `json:"vietnameseExample"`
}

// WordPairAnalysis wraps the pairs found in one text
type WordPairAnalysis struct {
	WordPairs []WordPair `json:"wordPairs"`
}
