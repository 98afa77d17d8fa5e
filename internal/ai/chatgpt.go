package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/example/toeicbot/pkg/models"
)

var (
	// ErrEmptyResponse is returned when the API answers without any choices
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrMalformedResponse is returned when the model output is not the JSON we asked for
	ErrMalformedResponse = errors.New("malformed response from model")
)

// ChatGPT is a client for an OpenAI compatible chat completions API
type ChatGPT struct {
	apiKey      string
	apiURL      string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

// New creates a new ChatGPT client. baseURL is the API root, e.g. https://api.openai.com/v1.
// A nil httpClient gets a client with a 60 second timeout.
func New(apiKey, baseURL, model string, httpClient *http.Client) (*ChatGPT, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &ChatGPT{
		apiKey:      apiKey,
		apiURL:      strings.TrimRight(baseURL, "/") + "/chat/completions",
		model:       model,
		maxTokens:   1200,
		temperature: 0.7,
		httpClient:  httpClient,
	}, nil
}

// Message represents a message in the conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat asks the API for a JSON object
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatRequest represents a request to the chat completions API
type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	MaxTokens      int             `json:"max_tokens"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatResponse represents a response from the chat completions API
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const systemPrompt = "You are an English tutor helping Vietnamese learners prepare for the TOEIC exam. " +
	"Always answer with a single JSON object and nothing else."

// GenerateWordInfo explains word for a TOEIC learner
func (c *ChatGPT) GenerateWordInfo(ctx context.Context, word string) (*models.WordInfo, error) {
	prompt := fmt.Sprintf(`Generate information about the English word "%s" in the following JSON format:
{
  "word": "the word",
  "pronunciation": "phonetic pronunciation",
  "partOfSpeech": "part of speech",
  "definition": "clear and concise definition",
  "vietnameseDefinition": "Vietnamese translation of the definition",
  "examples": ["3 example sentences using the word"],
  "vietnameseExamples": ["Vietnamese translation of each example sentence in the same order"],
  "synonyms": ["3-4 synonyms if applicable"]
}
Make sure the definition is clear and suitable for TOEIC preparation. Provide accurate Vietnamese translations.`, word)

	var info models.WordInfo
	if err := c.completeJSON(ctx, prompt, &info); err != nil {
		return nil, fmt.Errorf("failed to generate word info for %q: %w", word, err)
	}
	if strings.TrimSpace(info.Definition) == "" {
		return nil, fmt.Errorf("word info for %q has no definition: %w", word, ErrMalformedResponse)
	}
	if strings.TrimSpace(info.Word) == "" {
		info.Word = word
	}
	info.VietnameseExamples = alignExamples(info.Examples, info.VietnameseExamples)
	return &info, nil
}

// GenerateQuizQuestion builds a multiple choice question about word
func (c *ChatGPT) GenerateQuizQuestion(ctx context.Context, word, definition string) (*models.QuizQuestion, error) {
	prompt := fmt.Sprintf(`Generate a multiple choice question for the word "%s" with definition "%s".
Return in this JSON format:
{
  "question": "Complete the sentence: _____",
  "options": ["4 options with the correct answer included"],
  "correctAnswer": "the correct option",
  "explanation": "brief explanation why this is correct"
}
Make the question relevant to TOEIC exam style.`, word, definition)

	var q models.QuizQuestion
	if err := c.completeJSON(ctx, prompt, &q); err != nil {
		return nil, fmt.Errorf("failed to generate quiz for %q: %w", word, err)
	}
	if strings.TrimSpace(q.Question) == "" || len(q.Options) < 2 || strings.TrimSpace(q.CorrectAnswer) == "" {
		return nil, fmt.Errorf("incomplete quiz for %q: %w", word, ErrMalformedResponse)
	}
	return &q, nil
}

// AnalyzeWordPairs extracts useful collocations from text
func (c *ChatGPT) AnalyzeWordPairs(ctx context.Context, text string) (*models.WordPairAnalysis, error) {
	prompt := fmt.Sprintf(`Analyze this text content and identify important English word pairs that are useful for TOEIC preparation. Return the results in this JSON format:
{
  "wordPairs": [
    {
      "pair": "word1 word2",
      "definition": "clear and concise definition",
      "vietnameseDefinition": "Vietnamese translation",
      "example": "example sentence using the pair",
      "vietnameseExample": "Vietnamese translation of example"
    }
  ]
}

Text content: %s`, text)

	var analysis models.WordPairAnalysis
	if err := c.completeJSON(ctx, prompt, &analysis); err != nil {
		return nil, fmt.Errorf("failed to analyze word pairs: %w", err)
	}
	pairs := analysis.WordPairs[:0]
	for _, p := range analysis.WordPairs {
		if strings.TrimSpace(p.Pair) != "" {
			pairs = append(pairs, p)
		}
	}
	analysis.WordPairs = pairs
	return &analysis, nil
}

func (c *ChatGPT) completeJSON(ctx context.Context, prompt string, out interface{}) error {
	content, err := c.complete(ctx, prompt)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(StripCodeFence(content)), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func (c *ChatGPT) complete(ctx context.Context, prompt string) (string, error) {
	request := ChatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:      c.maxTokens,
		Temperature:    c.temperature,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(requestData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var response ChatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("API returned status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if response.Error != nil {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, response.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	if len(response.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := strings.TrimSpace(response.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// StripCodeFence removes a surrounding ```json ... ``` block if the model added one
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// alignExamples makes translated examples line up one to one with examples.
// Missing translations become empty strings.
func alignExamples(examples, translated []string) []string {
	aligned := make([]string, len(examples))
	copy(aligned, translated)
	return aligned
}
