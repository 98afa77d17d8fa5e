package format

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf16"

	"github.com/example/toeicbot/internal/importer"
	"github.com/example/toeicbot/pkg/models"
)

const divider = "\\-\\-\\-\\-\\-\\-\\-\\-\\-\\-\\-\\-"

// MaxMessageLength is Telegram's limit for one message, in UTF-16 code units
const MaxMessageLength = 4096

// reserved are the MarkdownV2 characters that must be backslash-escaped
const reserved = "_*[]()~`>#+=|{}.!-"

// Escape backslash-escapes every MarkdownV2 reserved character in text
func Escape(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(reserved, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// WordInfo renders generated word information
func WordInfo(info models.WordInfo) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📝: %s\n", Escape(info.Word)))
	sb.WriteString(fmt.Sprintf("🗣: %s\n", Escape(info.Pronunciation)))
	sb.WriteString(fmt.Sprintf("*Part of Speech*: %s\n", Escape(info.PartOfSpeech)))
	sb.WriteString(fmt.Sprintf("🇬🇧: %s\n", Escape(info.Definition)))
	sb.WriteString(fmt.Sprintf("🇻🇳: %s\n", Escape(info.VietnameseDefinition)))

	if len(info.Examples) > 0 {
		sb.WriteString("\n*Examples*:\n")
		for i, ex := range info.Examples {
			sb.WriteString(fmt.Sprintf("• %s\n", Escape(ex)))
			if i < len(info.VietnameseExamples) && info.VietnameseExamples[i] != "" {
				sb.WriteString(fmt.Sprintf("  ↳ %s\n", Escape(info.VietnameseExamples[i])))
			}
		}
	}

	if len(info.Synonyms) > 0 {
		escaped := make([]string, len(info.Synonyms))
		for i, s := range info.Synonyms {
			escaped[i] = Escape(s)
		}
		sb.WriteString(fmt.Sprintf("\n*Synonyms*: %s\n", strings.Join(escaped, ", ")))
	}

	sb.WriteString(fmt.Sprintf("\n*🌐 Pronunciation Guide*: [YouGlish](%s)", YouGlishURL(info.Word)))
	return sb.String()
}

// YouGlishURL links to pronunciation videos for word
func YouGlishURL(word string) string {
	return "https://youglish.com/pronounce/" + url.PathEscape(word) + "/english"
}

// Quiz renders a question with its answer and explanation behind a spoiler
func Quiz(q models.QuizQuestion) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*Question*: %s\n\n", Escape(q.Question)))
	sb.WriteString("*Options*:\n")
	for i, opt := range q.Options {
		sb.WriteString(fmt.Sprintf("%d\\. %s\n", i+1, Escape(opt)))
	}
	sb.WriteString(fmt.Sprintf("\n||*Correct Answer*: %s\n*Explanation*: %s||",
		Escape(q.CorrectAnswer), Escape(q.Explanation)))
	return sb.String()
}

// QuizVerdict answers a quiz button press
func QuizVerdict(correct bool, correctOption string) string {
	if correct {
		return "✅ *Correct\\!* Well done\\."
	}
	return fmt.Sprintf("❌ *Not quite\\.* The correct answer is: *%s*", Escape(correctOption))
}

// Profile renders the learner's statistics
func Profile(p *models.LearnerProfile) string {
	name := p.DisplayName
	if name == "" {
		name = "N/A"
	}
	var sb strings.Builder
	sb.WriteString("*User Profile*\n")
	sb.WriteString(divider + "\n")
	sb.WriteString(fmt.Sprintf("*Username*: %s\n", Escape(name)))
	sb.WriteString(fmt.Sprintf("*Words Learned*: %d\n", p.LearnedCount()))
	sb.WriteString(fmt.Sprintf("*Study Streak*: %d days\n", p.StreakDays))
	sb.WriteString(fmt.Sprintf("*Quiz Performance*: %d%% correct", p.AccuracyPercent()))
	return sb.String()
}

// WordList renders the learned words in the given order
func WordList(words []models.LearnedWord) string {
	if len(words) == 0 {
		return "*No words learned yet\\!*"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*Your Vocabulary List* \\(%d words\\)\n", len(words)))
	sb.WriteString(divider)
	entries := make([]string, len(words))
	for i, w := range words {
		entries[i] = fmt.Sprintf("\n%d\\. %s \\- %s", i+1, Escape(w.Word), Escape(w.Definition))
	}
	writeCapped(&sb, entries)
	return sb.String()
}

// WordPairs renders collocations found in an article
func WordPairs(pairs []models.WordPair) string {
	if len(pairs) == 0 {
		return "*No word pairs found\\!*"
	}
	var sb strings.Builder
	sb.WriteString("*Word Pairs Analysis*\n")
	sb.WriteString(divider)
	entries := make([]string, len(pairs))
	for i, p := range pairs {
		var entry strings.Builder
		entry.WriteString(fmt.Sprintf("\n\n%d\\. *%s*\n", i+1, Escape(p.Pair)))
		entry.WriteString(fmt.Sprintf("🇬🇧: %s\n", Escape(p.Definition)))
		entry.WriteString(fmt.Sprintf("🇻🇳: %s\n", Escape(p.VietnameseDefinition)))
		entry.WriteString(fmt.Sprintf("*Example*: %s\n", Escape(p.Example)))
		entry.WriteString(fmt.Sprintf("  ↳ %s", Escape(p.VietnameseExample)))
		entries[i] = entry.String()
	}
	writeCapped(&sb, entries)
	return sb.String()
}

// writeCapped appends entries to sb. When they would push the message past
// MaxMessageLength it stops early and notes how many were left out.
func writeCapped(sb *strings.Builder, entries []string) {
	const noteRoom = 64

	used := textLength(sb.String())
	total := used
	for _, e := range entries {
		total += textLength(e)
	}
	limit := MaxMessageLength
	if total > limit {
		limit -= noteRoom
	}

	for i, e := range entries {
		n := textLength(e)
		if used+n > limit {
			sb.WriteString(fmt.Sprintf("\n\n_… and %d more_", len(entries)-i))
			return
		}
		sb.WriteString(e)
		used += n
	}
}

// textLength measures s in UTF-16 code units, as Telegram counts message length
func textLength(s string) int {
	n := 0
	for _, r := range s {
		if l := len(utf16.Encode([]rune{r})); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

// Welcome lists the available commands
func Welcome() string {
	return "*Welcome to TOEIC Vocabulary Bot\\!*\n" +
		divider + "\n" +
		"Available commands:\n" +
		"• /new\\_word \\- Learn a new TOEIC word\n" +
		"• /quiz \\- Test your vocabulary knowledge\n" +
		"• /lookup \\<word\\> \\- Look up any English word\n" +
		"• /my\\_profile \\- View your learning statistics\n" +
		"• /word\\_list \\- See all words you've learned\n" +
		"• /news \\<url\\> \\- Get 5 to 10 word pairs from the article url"
}

// StreakReminder nudges a learner whose streak ends today
func StreakReminder(streakDays int) string {
	return fmt.Sprintf("🔥 Your *%d day* streak ends today\\!\nLearn a word with /new\\_word to keep it going\\.", streakDays)
}

// ImportSummary renders the outcome of a vocabulary import
func ImportSummary(res *importer.Result) string {
	var sb strings.Builder
	sb.WriteString("*Import finished*\n")
	sb.WriteString(divider + "\n")
	sb.WriteString(fmt.Sprintf("Processed: %d\n", res.TotalProcessed))
	sb.WriteString(fmt.Sprintf("Created: %d\n", res.Created))
	sb.WriteString(fmt.Sprintf("Skipped: %d\n", res.Skipped))
	sb.WriteString(fmt.Sprintf("Errors: %d", len(res.Errors)))
	for i, e := range res.Errors {
		if i == 5 {
			sb.WriteString(fmt.Sprintf("\n\\.\\.\\. and %d more", len(res.Errors)-5))
			break
		}
		sb.WriteString(fmt.Sprintf("\n• %s", Escape(e)))
	}
	return sb.String()
}

// AdminStats renders bot-wide statistics
func AdminStats(s *models.Statistics) string {
	var sb strings.Builder
	sb.WriteString("*System Statistics*\n")
	sb.WriteString(divider + "\n")
	sb.WriteString(fmt.Sprintf("Learners: %d\n", s.Learners))
	sb.WriteString(fmt.Sprintf("On a streak: %d\n", s.LearnersOnStreak))
	sb.WriteString(fmt.Sprintf("Active words in bank: %d\n", s.ActiveWords))
	sb.WriteString(fmt.Sprintf("Words learned: %d\n", s.LearnedWords))
	sb.WriteString(fmt.Sprintf("Cached explanations: %d\n", s.KnowledgeEntries))
	accuracy := models.QuizStats{TotalAttempts: s.QuizAttempts, CorrectAnswers: s.QuizCorrectAnswer}.AccuracyPercent()
	sb.WriteString(fmt.Sprintf("Quizzes: %d \\(%d%% correct\\)", s.QuizAttempts, accuracy))
	return sb.String()
}
