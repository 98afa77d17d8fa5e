package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/toeicbot/internal/database"
	"github.com/example/toeicbot/pkg/models"
)

type fakeLearners struct {
	mu        sync.Mutex
	profiles  map[int64]*models.LearnerProfile
	order     map[int64][]int64
	knowledge *fakeKnowledge
	ensureErr error
	learnErr  error
	saves     int
}

func newFakeLearners(k *fakeKnowledge) *fakeLearners {
	return &fakeLearners{
		profiles:  make(map[int64]*models.LearnerProfile),
		order:     make(map[int64][]int64),
		knowledge: k,
	}
}

func cloneProfile(p *models.LearnerProfile) *models.LearnerProfile {
	cp := *p
	cp.LearnedWords = make(map[string]int64, len(p.LearnedWords))
	for w, id := range p.LearnedWords {
		cp.LearnedWords[w] = id
	}
	return &cp
}

func (f *fakeLearners) Ensure(_ context.Context, id int64, name string, now time.Time) (*models.LearnerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ensureErr != nil {
		return nil, f.ensureErr
	}
	p, ok := f.profiles[id]
	if !ok {
		p = models.NewLearnerProfile(id, name, now)
		f.profiles[id] = p
	} else if name != "" {
		p.DisplayName = name
	}
	return cloneProfile(p), nil
}

func (f *fakeLearners) get(id int64) *models.LearnerProfile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneProfile(f.profiles[id])
}

func (f *fakeLearners) LearnWord(_ context.Context, p *models.LearnerProfile, knowledgeID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.learnErr != nil {
		return false, f.learnErr
	}
	for _, id := range f.order[p.ID] {
		if id == knowledgeID {
			return false, nil
		}
	}
	f.saves++
	k := f.knowledge.byID(knowledgeID)
	stored := f.profiles[p.ID]
	f.order[p.ID] = append(f.order[p.ID], knowledgeID)
	stored.LearnedWords[k.Word] = knowledgeID
	stored.StreakDays = p.StreakDays
	stored.LastStudyDate = p.LastStudyDate
	return true, nil
}

func (f *fakeLearners) LearnedWords(_ context.Context, learnerID int64) ([]models.LearnedWord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var words []models.LearnedWord
	for _, id := range f.order[learnerID] {
		k := f.knowledge.byID(id)
		words = append(words, models.LearnedWord{Word: k.Word, Definition: k.Definition})
	}
	return words, nil
}

type fakeQuizzes struct {
	mu        sync.Mutex
	learners  *fakeLearners
	attempts  map[int64]*models.QuizAttempt
	nextID    int64
	createErr error
	answerErr error
}

func newFakeQuizzes(l *fakeLearners) *fakeQuizzes {
	return &fakeQuizzes{learners: l, attempts: make(map[int64]*models.QuizAttempt)}
}

func (f *fakeQuizzes) Create(_ context.Context, a *models.QuizAttempt) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.nextID++
	a.ID = f.nextID
	a.ChosenIndex = -1
	cp := *a
	f.attempts[a.ID] = &cp

	f.learners.mu.Lock()
	f.learners.profiles[a.LearnerID].TotalAttempts++
	f.learners.mu.Unlock()
	return a.ID, nil
}

func (f *fakeQuizzes) Answer(_ context.Context, quizID, learnerID int64, chosen int) (*models.QuizAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.answerErr != nil {
		return nil, f.answerErr
	}
	a, ok := f.attempts[quizID]
	if !ok || a.LearnerID != learnerID {
		return nil, database.ErrNotFound
	}
	if a.Answered {
		return nil, database.ErrQuizAnswered
	}
	a.Answered = true
	a.ChosenIndex = chosen
	if a.IsCorrect() {
		f.learners.mu.Lock()
		f.learners.profiles[learnerID].CorrectAnswers++
		f.learners.mu.Unlock()
	}
	cp := *a
	return &cp, nil
}

type fakeKnowledge struct {
	mu      sync.Mutex
	rows    map[string]*models.WordKnowledge
	nextID  int64
	touches int
}

func newFakeKnowledge() *fakeKnowledge {
	return &fakeKnowledge{rows: make(map[string]*models.WordKnowledge)}
}

func knowledgeKey(learnerID int64, word string) string {
	return fmt.Sprintf("%d/%s", learnerID, models.NormalizeWord(word))
}

func (f *fakeKnowledge) Find(_ context.Context, learnerID int64, word string) (*models.WordKnowledge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k, ok := f.rows[knowledgeKey(learnerID, word)]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *k
	return &cp, nil
}

func (f *fakeKnowledge) Upsert(_ context.Context, k *models.WordKnowledge) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := knowledgeKey(k.LearnerID, k.Word)
	if existing, ok := f.rows[key]; ok {
		k.ID = existing.ID
	} else {
		f.nextID++
		k.ID = f.nextID
	}
	cp := *k
	f.rows[key] = &cp
	return k.ID, nil
}

func (f *fakeKnowledge) Touch(context.Context, int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touches++
	return nil
}

func (f *fakeKnowledge) byID(id int64) *models.WordKnowledge {
	for _, k := range f.rows {
		if k.ID == id {
			return k
		}
	}
	return nil
}

type fakeVocabulary struct {
	words []string
	err   error
	calls int
}

func (f *fakeVocabulary) SampleActive(_ context.Context, excluding []string) (*models.VocabularyEntry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	skip := make(map[string]bool, len(excluding))
	for _, w := range excluding {
		skip[w] = true
	}
	for _, w := range f.words {
		if !skip[w] {
			return &models.VocabularyEntry{Word: w, IsActive: true}, nil
		}
	}
	return nil, nil
}

type fakeGenerator struct {
	mu        sync.Mutex
	infoCalls int
	quizCalls int
	pairCalls int
	infoErr   error
	quizErr   error
	pairErr   error
	pairs     []models.WordPair
}

func (f *fakeGenerator) GenerateWordInfo(_ context.Context, word string) (*models.WordInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infoCalls++
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return &models.WordInfo{
		Word:                 word,
		PartOfSpeech:         "noun",
		Definition:           "definition of " + word,
		VietnameseDefinition: "nghĩa của " + word,
		Examples:             []string{"An example with " + word + "."},
		VietnameseExamples:   []string{"Một ví dụ."},
	}, nil
}

func (f *fakeGenerator) GenerateQuizQuestion(_ context.Context, word, definition string) (*models.QuizQuestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quizCalls++
	if f.quizErr != nil {
		return nil, f.quizErr
	}
	return &models.QuizQuestion{
		Question:      "Which word means " + definition + "?",
		Options:       []string{word, "invoice", "agenda", "budget"},
		CorrectAnswer: word,
		Explanation:   "It matches the definition.",
	}, nil
}

func (f *fakeGenerator) AnalyzeWordPairs(_ context.Context, text string) (*models.WordPairAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pairCalls++
	if f.pairErr != nil {
		return nil, f.pairErr
	}
	return &models.WordPairAnalysis{WordPairs: f.pairs}, nil
}

type fakeFetcher struct {
	text  string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(context.Context, string) (string, error) {
	f.calls++
	return f.text, f.err
}
