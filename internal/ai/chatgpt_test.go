package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer answers every completion request with content
func newTestServer(t *testing.T, status int, content string) (*httptest.Server, *ChatRequest) {
	t.Helper()
	var captured ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func newTestClient(t *testing.T, url string) *ChatGPT {
	t.Helper()
	c, err := New("test-key", url, "gpt-test", nil)
	require.NoError(t, err)
	return c
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New("", "http://localhost", "m", nil)
	assert.Error(t, err)
}

func TestGenerateWordInfo(t *testing.T) {
	content := "```json\n" + `{
		"word": "deadline",
		"pronunciation": "/ˈded.laɪn/",
		"partOfSpeech": "noun",
		"definition": "a time by which something must be done",
		"vietnameseDefinition": "hạn chót",
		"examples": ["The deadline is Friday.", "We met the deadline."],
		"vietnameseExamples": ["Hạn chót là thứ Sáu."],
		"synonyms": ["time limit"]
	}` + "\n```"
	srv, captured := newTestServer(t, http.StatusOK, content)

	info, err := newTestClient(t, srv.URL).GenerateWordInfo(context.Background(), "deadline")
	require.NoError(t, err)
	assert.Equal(t, "deadline", info.Word)
	assert.Equal(t, "noun", info.PartOfSpeech)
	assert.Len(t, info.Examples, 2)
	assert.Equal(t, []string{"Hạn chót là thứ Sáu.", ""}, info.VietnameseExamples)

	assert.Equal(t, "gpt-test", captured.Model)
	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, "json_object", captured.ResponseFormat.Type)
	require.Len(t, captured.Messages, 2)
	assert.Contains(t, captured.Messages[1].Content, `"deadline"`)
}

func TestGenerateWordInfoMalformed(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, "not json at all")
	_, err := newTestClient(t, srv.URL).GenerateWordInfo(context.Background(), "deadline")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestGenerateWordInfoMissingDefinition(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"word": "deadline"}`)
	_, err := newTestClient(t, srv.URL).GenerateWordInfo(context.Background(), "deadline")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestGenerateQuizQuestion(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{
		"question": "Submit the report before the ____.",
		"options": ["deadline", "invoice", "budget", "agenda"],
		"correctAnswer": "deadline",
		"explanation": "A deadline is a time limit."
	}`)
	q, err := newTestClient(t, srv.URL).GenerateQuizQuestion(context.Background(), "deadline", "a time limit")
	require.NoError(t, err)
	assert.Len(t, q.Options, 4)
	assert.Equal(t, "deadline", q.CorrectAnswer)
}

func TestGenerateQuizQuestionIncomplete(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"question": "?", "options": ["a"], "correctAnswer": "a"}`)
	_, err := newTestClient(t, srv.URL).GenerateQuizQuestion(context.Background(), "a", "b")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestAnalyzeWordPairsDropsEmptyPairs(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"wordPairs": [
		{"pair": "meet a deadline", "definition": "finish in time"},
		{"pair": "", "definition": "nothing"}
	]}`)
	analysis, err := newTestClient(t, srv.URL).AnalyzeWordPairs(context.Background(), "some text")
	require.NoError(t, err)
	require.Len(t, analysis.WordPairs, 1)
	assert.Equal(t, "meet a deadline", analysis.WordPairs[0].Pair)
}

func TestAPIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).GenerateWordInfo(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).GenerateQuizQuestion(context.Background(), "x", "y")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence(`  {"a":1} `))
}
