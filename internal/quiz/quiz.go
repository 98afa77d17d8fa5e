package quiz

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/example/toeicbot/internal/random"
	"github.com/example/toeicbot/pkg/models"
)

// CallbackPrefix marks inline keyboard data produced by quiz answer buttons
const CallbackPrefix = "quiz:"

// Question is a generated quiz question ready to be shown.
// CorrectIndex points into Options, or is -1 when the correct answer is not among them.
type Question struct {
	models.QuizQuestion
	CorrectIndex int
}

// HasAnswerButtons reports whether the question can be answered with buttons
func (q *Question) HasAnswerButtons() bool {
	return q.CorrectIndex >= 0 && q.CorrectIndex < len(q.Options)
}

// Prepare locates the correct option and shuffles the options with rnd,
// tracking where the correct one ends up.
func Prepare(q models.QuizQuestion, rnd random.Source) *Question {
	options := make([]string, len(q.Options))
	copy(options, q.Options)

	correctIndex := findOption(options, q.CorrectAnswer)
	random.Shuffle(rnd, len(options), func(i, j int) {
		if i == correctIndex {
			correctIndex = j
		} else if j == correctIndex {
			correctIndex = i
		}
		options[i], options[j] = options[j], options[i]
	})

	q.Options = options
	return &Question{QuizQuestion: q, CorrectIndex: correctIndex}
}

// CallbackData encodes the answer button for option chosen of the stored quiz quizID
func CallbackData(quizID int64, chosen int) string {
	return fmt.Sprintf("%s%d:%d", CallbackPrefix, quizID, chosen)
}

// ParseCallback decodes data produced by CallbackData
func ParseCallback(data string) (quizID int64, chosen int, err error) {
	if !strings.HasPrefix(data, CallbackPrefix) {
		return 0, 0, fmt.Errorf("not a quiz callback: %q", data)
	}
	parts := strings.Split(strings.TrimPrefix(data, CallbackPrefix), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed quiz callback: %q", data)
	}
	if quizID, err = strconv.ParseInt(parts[0], 10, 64); err != nil || quizID <= 0 {
		return 0, 0, fmt.Errorf("malformed quiz callback: %q", data)
	}
	if chosen, err = strconv.Atoi(parts[1]); err != nil || chosen < 0 {
		return 0, 0, fmt.Errorf("malformed quiz callback: %q", data)
	}
	return quizID, chosen, nil
}

// CorrectOption is the text of the right answer, falling back to the generated
// answer when it is not among the options
func (q *Question) CorrectOption() string {
	if q.HasAnswerButtons() {
		return q.Options[q.CorrectIndex]
	}
	return q.CorrectAnswer
}

// optionLabel matches "A) ", "b. ", "(C) " style prefixes
var optionLabel = regexp.MustCompile(`^\(?[A-Da-d][\).:]\s+`)

func normalizeOption(s string) string {
	s = strings.TrimSpace(s)
	s = optionLabel.ReplaceAllString(s, "")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func findOption(options []string, answer string) int {
	want := normalizeOption(answer)
	if want == "" {
		return -1
	}
	for i, opt := range options {
		if normalizeOption(opt) == want {
			return i
		}
	}
	return -1
}
