package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/toeicbot/internal/database"
	"github.com/example/toeicbot/internal/format"
	"github.com/example/toeicbot/internal/logger"
	"github.com/example/toeicbot/internal/progress"
	"github.com/example/toeicbot/internal/random"
	"github.com/example/toeicbot/pkg/models"
)

// LearnerStore persists learner profiles
type LearnerStore interface {
	Ensure(ctx context.Context, id int64, displayName string, now time.Time) (*models.LearnerProfile, error)
	LearnWord(ctx context.Context, p *models.LearnerProfile, knowledgeID int64) (bool, error)
	LearnedWords(ctx context.Context, learnerID int64) ([]models.LearnedWord, error)
}

// QuizStore keeps issued quizzes so each accepts a single answer from its owner
type QuizStore interface {
	Create(ctx context.Context, a *models.QuizAttempt) (int64, error)
	Answer(ctx context.Context, quizID, learnerID int64, chosen int) (*models.QuizAttempt, error)
}

// VocabularyStore draws words from the curated bank
type VocabularyStore interface {
	SampleActive(ctx context.Context, excluding []string) (*models.VocabularyEntry, error)
}

// KnowledgeStore caches generated word content per learner
type KnowledgeStore interface {
	Find(ctx context.Context, learnerID int64, word string) (*models.WordKnowledge, error)
	Upsert(ctx context.Context, k *models.WordKnowledge) (int64, error)
	Touch(ctx context.Context, id int64) error
}

// Generator produces word explanations, quizzes and collocation analyses
type Generator interface {
	GenerateWordInfo(ctx context.Context, word string) (*models.WordInfo, error)
	GenerateQuizQuestion(ctx context.Context, word, definition string) (*models.QuizQuestion, error)
	AnalyzeWordPairs(ctx context.Context, text string) (*models.WordPairAnalysis, error)
}

// Fetcher turns a URL into plain text
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// Command names
const (
	CommandStart     = "start"
	CommandHelp      = "help"
	CommandNewWord   = "new_word"
	CommandQuiz      = "quiz"
	CommandLookup    = "lookup"
	CommandMyProfile = "my_profile"
	CommandWordList  = "word_list"
	CommandNews      = "news"
)

// Reply texts. All are MarkdownV2.
var (
	replyGenericError = format.Escape("An error occurred. Please try again later.")
	replyExhausted    = format.Escape("You have learned all available words! Please wait for new words to be added.")
	replyUnknown      = "Unknown command\\. Send /start to see what I can do\\."
	replyQuizEmpty    = "*Learn some words first using /new\\_word\\!*"
	replyLookupUsage  = "*Please provide a word to look up\\!*\nExample: /lookup efficiency"
	replyNewsUsage    = "*Please provide a URL to analyze\\!*\nExample: /news https://example\\.com"
	replyStoreError   = format.Escape("Sorry, I couldn't load or save your progress right now. Please try again.")
	replyQuizAnswered = format.Escape("This quiz has already been answered.")
	replyQuizNotYours = format.Escape("This quiz belongs to someone else. Send /quiz to get your own.")

	commandErrors = map[string]string{
		CommandNewWord:   format.Escape("Sorry, there was an error generating a new word. Please try again."),
		CommandQuiz:      format.Escape("Sorry, there was an error generating a quiz. Please try again."),
		CommandLookup:    format.Escape("Sorry, there was an error looking up the word. Please try again."),
		CommandMyProfile: format.Escape("Sorry, there was an error fetching your profile. Please try again."),
		CommandWordList:  format.Escape("Sorry, there was an error fetching your word list. Please try again."),
		CommandNews:      format.Escape("Sorry, there was an error analyzing the content. Please try again."),
	}
)

// errStore marks failures of the learner, vocabulary, knowledge or quiz stores
var errStore = errors.New("store failure")

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, errStore, err)
}

// Sender identifies who issued a command
type Sender struct {
	ID          int64
	DisplayName string
}

// Command is one inbound command with its raw argument text
type Command struct {
	Name      string
	Args      string
	Sender    Sender
	RequestID string
}

// Reply is the single MarkdownV2 message answering a command
type Reply struct {
	Text    string
	Buttons [][]MenuButton
}

// Deps are the collaborators a Dispatcher works with
type Deps struct {
	Learners   LearnerStore
	Vocabulary VocabularyStore
	Knowledge  KnowledgeStore
	Quizzes    QuizStore
	Generator  Generator
	Fetcher    Fetcher
	Rand       random.Source
	Streak     *progress.Streak
	Now        func() time.Time
	Logger     *logger.Logger
}

// Dispatcher routes commands to their handlers
type Dispatcher struct {
	learners   LearnerStore
	vocabulary VocabularyStore
	knowledge  KnowledgeStore
	quizzes    QuizStore
	generator  Generator
	fetcher    Fetcher
	rnd        random.Source
	streak     *progress.Streak
	now        func() time.Time
	logger     *logger.Logger
}

// NewDispatcher creates a dispatcher. Rand, Streak, Now and Logger have defaults.
func NewDispatcher(deps Deps) *Dispatcher {
	d := &Dispatcher{
		learners:   deps.Learners,
		vocabulary: deps.Vocabulary,
		knowledge:  deps.Knowledge,
		quizzes:    deps.Quizzes,
		generator:  deps.Generator,
		fetcher:    deps.Fetcher,
		rnd:        deps.Rand,
		streak:     deps.Streak,
		now:        deps.Now,
		logger:     deps.Logger,
	}
	if d.rnd == nil {
		d.rnd = random.NewTimeSeeded()
	}
	if d.streak == nil {
		d.streak = progress.NewStreak(time.UTC)
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.logger == nil {
		d.logger = logger.Nop()
	}
	return d
}

// Dispatch handles cmd and returns exactly one reply
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) Reply {
	log := d.logger.With("request_id", cmd.RequestID, "learner_id", cmd.Sender.ID, "command", cmd.Name)

	switch cmd.Name {
	case CommandStart, CommandHelp:
		// Register the learner but still greet them if the store is down
		if _, err := d.learners.Ensure(ctx, cmd.Sender.ID, cmd.Sender.DisplayName, d.now()); err != nil {
			log.Warn("Failed to ensure learner profile", "error", err)
		}
		return Reply{Text: format.Welcome()}
	case CommandNewWord, CommandQuiz, CommandLookup, CommandMyProfile, CommandWordList, CommandNews:
	default:
		return Reply{Text: replyUnknown}
	}

	profile, err := d.learners.Ensure(ctx, cmd.Sender.ID, cmd.Sender.DisplayName, d.now())
	if err != nil {
		log.Error("Failed to ensure learner profile", "error", err)
		return Reply{Text: replyStoreError}
	}

	var reply Reply
	switch cmd.Name {
	case CommandNewWord:
		reply, err = d.handleNewWord(ctx, profile, log)
	case CommandQuiz:
		reply, err = d.handleQuiz(ctx, profile)
	case CommandLookup:
		reply, err = d.handleLookup(ctx, profile, cmd.Args, log)
	case CommandMyProfile:
		reply = Reply{Text: format.Profile(profile)}
	case CommandWordList:
		reply, err = d.handleWordList(ctx, profile)
	case CommandNews:
		reply, err = d.handleNews(ctx, cmd.Args)
	}
	if err != nil {
		log.Error("Command failed", "error", err)
		if errors.Is(err, errStore) {
			return Reply{Text: replyStoreError}
		}
		return Reply{Text: commandErrors[cmd.Name]}
	}
	return reply
}

// AnswerQuiz records sender's answer chosen to the stored quiz quizID. closed
// reports that the quiz takes no further answers, so its buttons can go.
func (d *Dispatcher) AnswerQuiz(ctx context.Context, sender Sender, requestID string, quizID int64, chosen int) (reply Reply, closed bool) {
	log := d.logger.With("request_id", requestID, "learner_id", sender.ID, "command", "quiz_answer", "quiz_id", quizID)

	attempt, err := d.quizzes.Answer(ctx, quizID, sender.ID, chosen)
	switch {
	case errors.Is(err, database.ErrQuizAnswered):
		return Reply{Text: replyQuizAnswered}, true
	case errors.Is(err, database.ErrNotFound):
		return Reply{Text: replyQuizNotYours}, false
	case err != nil:
		log.Error("Failed to record quiz answer", "error", err)
		return Reply{Text: replyStoreError}, false
	}
	log.Info("Quiz answered", "correct", attempt.IsCorrect())
	return Reply{Text: format.QuizVerdict(attempt.IsCorrect(), attempt.CorrectOption)}, true
}

// GenericError is the reply for failures outside any command handler
func GenericError() Reply {
	return Reply{Text: replyGenericError}
}
