package format

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/toeicbot/internal/importer"
	"github.com/example/toeicbot/pkg/models"
)

func TestEscape(t *testing.T) {
	assert.Equal(t, `a\.b\!c`, Escape("a.b!c"))
	assert.Equal(t, "plain words here", Escape("plain words here"))
	assert.Equal(t, `\_\*\[\]\(\)\~\`+"`"+`\>\#\+\=\|\{\}\.\!\-`, Escape("_*[]()~`>#+=|{}.!-"))
	assert.Equal(t, "Hạn chót", Escape("Hạn chót"))
}

func TestWordInfo(t *testing.T) {
	out := WordInfo(models.WordInfo{
		Word:                 "deadline",
		Pronunciation:        "/ˈded.laɪn/",
		PartOfSpeech:         "noun",
		Definition:           "a time limit.",
		VietnameseDefinition: "hạn chót",
		Examples:             []string{"The deadline is Friday.", "Meet it!"},
		VietnameseExamples:   []string{"Hạn chót là thứ Sáu.", ""},
	})

	assert.Contains(t, out, "📝: deadline\n")
	assert.Contains(t, out, "*Part of Speech*: noun\n")
	assert.Contains(t, out, "🇬🇧: a time limit\\.\n")
	assert.Contains(t, out, "• The deadline is Friday\\.\n  ↳ Hạn chót là thứ Sáu\\.\n")
	assert.Contains(t, out, "• Meet it\\!\n")
	assert.NotContains(t, out, "*Synonyms*")
	assert.True(t, strings.HasSuffix(out, "[YouGlish](https://youglish.com/pronounce/deadline/english)"))
}

func TestWordInfoSynonyms(t *testing.T) {
	out := WordInfo(models.WordInfo{Word: "cut-off", Synonyms: []string{"time limit", "due date"}})
	assert.Contains(t, out, "*Synonyms*: time limit, due date\n")
	assert.Contains(t, out, "📝: cut\\-off\n")
}

func TestYouGlishURLEscapesWord(t *testing.T) {
	assert.Equal(t, "https://youglish.com/pronounce/take%20over/english", YouGlishURL("take over"))
}

func TestQuiz(t *testing.T) {
	out := Quiz(models.QuizQuestion{
		Question:      "Submit before the ____.",
		Options:       []string{"deadline", "invoice"},
		CorrectAnswer: "deadline",
		Explanation:   "It is a time limit.",
	})
	assert.Equal(t, "*Question*: Submit before the \\_\\_\\_\\_\\.\n\n"+
		"*Options*:\n1\\. deadline\n2\\. invoice\n\n"+
		"||*Correct Answer*: deadline\n*Explanation*: It is a time limit\\.||", out)
}

func TestProfile(t *testing.T) {
	p := models.NewLearnerProfile(1, "anna_b", timeZero())
	p.StreakDays = 3
	p.MarkLearned("deadline", 1)
	p.MarkLearned("budget", 2)
	p.TotalAttempts = 3
	p.CorrectAnswers = 2

	out := Profile(p)
	assert.Contains(t, out, "*Username*: anna\\_b\n")
	assert.Contains(t, out, "*Words Learned*: 2\n")
	assert.Contains(t, out, "*Study Streak*: 3 days\n")
	assert.Contains(t, out, "*Quiz Performance*: 67% correct")
}

func TestProfileNoAttempts(t *testing.T) {
	out := Profile(models.NewLearnerProfile(1, "", timeZero()))
	assert.Contains(t, out, "*Quiz Performance*: 0% correct")
	assert.Contains(t, out, "*Username*: N/A")
}

func TestWordList(t *testing.T) {
	assert.Equal(t, "*No words learned yet\\!*", WordList(nil))

	out := WordList([]models.LearnedWord{
		{Word: "deadline", Definition: "a time limit"},
		{Word: "budget", Definition: "a plan for money."},
	})
	assert.Equal(t, "*Your Vocabulary List* \\(2 words\\)\n"+divider+
		"\n1\\. deadline \\- a time limit\n2\\. budget \\- a plan for money\\.", out)
}

func TestWordPairs(t *testing.T) {
	assert.Equal(t, "*No word pairs found\\!*", WordPairs(nil))

	out := WordPairs([]models.WordPair{{
		Pair:                 "meet a deadline",
		Definition:           "finish on time",
		VietnameseDefinition: "kịp hạn",
		Example:              "We met the deadline.",
		VietnameseExample:    "Chúng tôi kịp hạn.",
	}})
	assert.Contains(t, out, "1\\. *meet a deadline*\n")
	assert.Contains(t, out, "*Example*: We met the deadline\\.\n  ↳ Chúng tôi kịp hạn\\.")
}

func TestLongWordListFitsOneMessage(t *testing.T) {
	words := make([]models.LearnedWord, 60)
	for i := range words {
		words[i] = models.LearnedWord{
			Word:       fmt.Sprintf("word%02d", i),
			Definition: strings.Repeat("a fairly long explanation. ", 3),
		}
	}

	out := WordList(words)
	assert.LessOrEqual(t, textLength(out), MaxMessageLength)
	assert.Contains(t, out, "\\(60 words\\)")
	assert.Contains(t, out, "\n1\\. word00 \\- ")
	assert.Regexp(t, `_… and \d+ more_$`, out)

	shown := strings.Count(out, " \\- ")
	var more int
	_, err := fmt.Sscanf(out[strings.LastIndex(out, "_… and ")+len("_… and "):], "%d", &more)
	require.NoError(t, err)
	assert.Equal(t, 60, shown+more)
}

func TestLongWordPairsFitOneMessage(t *testing.T) {
	pairs := make([]models.WordPair, 40)
	for i := range pairs {
		pairs[i] = models.WordPair{
			Pair:                 fmt.Sprintf("pair %d", i),
			Definition:           strings.Repeat("definition ", 8),
			VietnameseDefinition: strings.Repeat("định nghĩa ", 8),
			Example:              strings.Repeat("example ", 8),
			VietnameseExample:    strings.Repeat("ví dụ ", 8),
		}
	}

	out := WordPairs(pairs)
	assert.LessOrEqual(t, textLength(out), MaxMessageLength)
	assert.Contains(t, out, "1\\. *pair 0*")
	assert.Contains(t, out, " more_")
}

func TestShortListHasNoOverflowNote(t *testing.T) {
	out := WordList([]models.LearnedWord{{Word: "deadline", Definition: "a time limit"}})
	assert.NotContains(t, out, "more_")
}

func TestTextLengthCountsUTF16(t *testing.T) {
	assert.Equal(t, 3, textLength("abc"))
	assert.Equal(t, 2, textLength("ạn"))
	assert.Equal(t, 4, textLength("🇬🇧"))
}

func TestWelcomeListsCommands(t *testing.T) {
	out := Welcome()
	for _, cmd := range []string{"/new\\_word", "/quiz", "/lookup", "/my\\_profile", "/word\\_list", "/news"} {
		assert.Contains(t, out, cmd)
	}
}

func TestQuizVerdict(t *testing.T) {
	assert.Contains(t, QuizVerdict(true, "x"), "Correct")
	assert.Contains(t, QuizVerdict(false, "e.g."), "*e\\.g\\.*")
}

func TestImportSummary(t *testing.T) {
	out := ImportSummary(&importer.Result{TotalProcessed: 3, Created: 1, Skipped: 1, Errors: []string{"line 3: bad"}})
	assert.Contains(t, out, "Processed: 3\nCreated: 1\nSkipped: 1\nErrors: 1")
	assert.Contains(t, out, "• line 3: bad")
}

func TestAdminStats(t *testing.T) {
	out := AdminStats(&models.Statistics{Learners: 4, ActiveWords: 600, QuizAttempts: 4, QuizCorrectAnswer: 3})
	assert.Contains(t, out, "Learners: 4\n")
	assert.Contains(t, out, "Active words in bank: 600\n")
	assert.Contains(t, out, "Quizzes: 4 \\(75% correct\\)")
}
