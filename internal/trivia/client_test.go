package trivia_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizzyhq/quizzy/internal/errors"
	"github.com/quizzyhq/quizzy/internal/trivia"
)

func TestClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("amount"))
		assert.Equal(t, "9", r.URL.Query().Get("category"))
		assert.Equal(t, "easy", r.URL.Query().Get("difficulty"))
		assert.Equal(t, "multiple", r.URL.Query().Get("type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"response_code": 0,
			"results": [{
				"category": "General Knowledge",
				"type": "multiple",
				"difficulty": "easy",
				"question": "What is the capital of France?",
				"correct_answer": "Paris",
				"incorrect_answers": ["London", "Berlin", "Madrid"]
			}]
		}`))
	}))
	defer srv.Close()

	c := trivia.NewClient(trivia.Config{BaseURL: srv.URL})

	qs, err := c.Fetch(context.Background(), trivia.FetchRequest{
		Amount: 5, Category: 9, Difficulty: "easy", Type: "multiple",
	})
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "Paris", qs[0].CorrectAnswer)
	assert.Len(t, qs[0].IncorrectAnswers, 3)
}

func TestClient_Fetch_Errors(t *testing.T) {
	tests := map[string]struct {
		handler  http.HandlerFunc
		req      trivia.FetchRequest
		wantCode errors.Code
	}{
		"provider refusal": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"response_code": 1, "results": []}`))
			},
			wantCode: errors.CodeUnavailable,
		},

		"http error": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			wantCode: errors.CodeUnavailable,
		},

		"malformed body": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
			wantCode: errors.CodeUnavailable,
		},

		"amount out of range": {
			handler:  func(w http.ResponseWriter, r *http.Request) {},
			req:      trivia.FetchRequest{Amount: 100},
			wantCode: errors.CodeInvalidArgument,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := trivia.NewClient(trivia.Config{BaseURL: srv.URL})
			_, err := c.Fetch(context.Background(), tt.req)
			assert.True(t, errors.Is(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestClient_Fetch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	c := trivia.NewClient(trivia.Config{BaseURL: srv.URL})
	_, err := c.Fetch(context.Background(), trivia.FetchRequest{})
	assert.True(t, errors.Is(err, errors.CodeUnavailable), "got %v", err)
}
