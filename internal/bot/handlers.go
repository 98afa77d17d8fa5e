package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/example/toeicbot/internal/database"
	"github.com/example/toeicbot/internal/format"
	"github.com/example/toeicbot/internal/logger"
	"github.com/example/toeicbot/internal/quiz"
	"github.com/example/toeicbot/pkg/models"
)

func (d *Dispatcher) handleNewWord(ctx context.Context, profile *models.LearnerProfile, log *logger.Logger) (Reply, error) {
	excluding := profile.LearnedWordList()
	sort.Strings(excluding)

	entry, err := d.vocabulary.SampleActive(ctx, excluding)
	if err != nil {
		return Reply{}, storeError("failed to draw word", err)
	}
	if entry == nil {
		return Reply{Text: replyExhausted}, nil
	}

	knowledge, err := d.knowledgeFor(ctx, profile.ID, entry.Word, log)
	if err != nil {
		return Reply{}, err
	}

	// The learned word and the study event are stored together
	next := *profile
	d.streak.RecordStudyEvent(&next, d.now())
	added, err := d.learners.LearnWord(ctx, &next, knowledge.ID)
	if err != nil {
		return Reply{}, storeError("failed to record learned word", err)
	}
	if added {
		*profile = next
		profile.MarkLearned(knowledge.Word, knowledge.ID)
		log.Info("Word learned", "word", knowledge.Word, "streak_days", profile.StreakDays)
	}
	return Reply{Text: format.WordInfo(knowledge.Info())}, nil
}

// knowledgeFor returns the learner's cached knowledge for word, generating and storing it on a miss
func (d *Dispatcher) knowledgeFor(ctx context.Context, learnerID int64, word string, log *logger.Logger) (*models.WordKnowledge, error) {
	cached, err := d.knowledge.Find(ctx, learnerID, word)
	if err == nil {
		if err := d.knowledge.Touch(ctx, cached.ID); err != nil {
			log.Warn("Failed to update knowledge usage", "word", word, "error", err)
		}
		return cached, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, storeError("failed to find knowledge", err)
	}

	info, err := d.generator.GenerateWordInfo(ctx, word)
	if err != nil {
		return nil, err
	}
	knowledge := models.NewWordKnowledge(learnerID, word, *info)
	if _, err := d.knowledge.Upsert(ctx, knowledge); err != nil {
		return nil, storeError("failed to store knowledge", err)
	}
	return knowledge, nil
}

func (d *Dispatcher) handleQuiz(ctx context.Context, profile *models.LearnerProfile) (Reply, error) {
	if profile.LearnedCount() == 0 {
		return Reply{Text: replyQuizEmpty}, nil
	}

	words := profile.LearnedWordList()
	sort.Strings(words)
	word := words[d.rnd.Intn(len(words))]

	knowledge, err := d.knowledge.Find(ctx, profile.ID, word)
	if err != nil {
		return Reply{}, storeError(fmt.Sprintf("failed to load knowledge for %q", word), err)
	}

	generated, err := d.generator.GenerateQuizQuestion(ctx, word, knowledge.Definition)
	if err != nil {
		return Reply{}, err
	}

	q := quiz.Prepare(*generated, d.rnd)
	attempt := &models.QuizAttempt{
		LearnerID:     profile.ID,
		Word:          word,
		CorrectIndex:  q.CorrectIndex,
		CorrectOption: q.CorrectOption(),
	}
	if _, err := d.quizzes.Create(ctx, attempt); err != nil {
		return Reply{}, storeError("failed to store quiz", err)
	}

	reply := Reply{Text: format.Quiz(q.QuizQuestion)}
	if q.HasAnswerButtons() {
		for i, opt := range q.Options {
			reply.Buttons = append(reply.Buttons, []MenuButton{{
				Text:         optionButtonText(i, opt),
				CallbackData: quiz.CallbackData(attempt.ID, i),
			}})
		}
	}
	return reply, nil
}

func (d *Dispatcher) handleLookup(ctx context.Context, profile *models.LearnerProfile, args string, log *logger.Logger) (Reply, error) {
	word := strings.TrimSpace(args)
	if word == "" {
		return Reply{Text: replyLookupUsage}, nil
	}

	knowledge, err := d.knowledgeFor(ctx, profile.ID, word, log)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: format.WordInfo(knowledge.Info())}, nil
}

func (d *Dispatcher) handleWordList(ctx context.Context, profile *models.LearnerProfile) (Reply, error) {
	words, err := d.learners.LearnedWords(ctx, profile.ID)
	if err != nil {
		return Reply{}, storeError("failed to list learned words", err)
	}
	return Reply{Text: format.WordList(words)}, nil
}

func (d *Dispatcher) handleNews(ctx context.Context, args string) (Reply, error) {
	rawURL := strings.TrimSpace(args)
	if rawURL == "" {
		return Reply{Text: replyNewsUsage}, nil
	}

	text, err := d.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return Reply{}, err
	}
	analysis, err := d.generator.AnalyzeWordPairs(ctx, text)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: format.WordPairs(analysis.WordPairs)}, nil
}

// optionButtonText labels an answer button, keeping long options readable
func optionButtonText(i int, opt string) string {
	const maxRunes = 40
	r := []rune(strings.TrimSpace(opt))
	if len(r) > maxRunes {
		r = append(r[:maxRunes-1], '…')
	}
	return fmt.Sprintf("%d. %s", i+1, string(r))
}
