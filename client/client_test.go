package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizzyhq/quizzy/client"
)

func TestClient_SignUpAndAuthenticatedCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/signup":
			assert.Equal(t, http.MethodPost, r.Method)
			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "alice", req["name"])
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"api_key": "key-123"}`))

		case "/get_score":
			assert.Equal(t, "key-123", r.Header.Get("X-API-Key"), "credential from sign-up is reused")
			_, _ = w.Write([]byte(`{"score": 7}`))

		case "/render_quiz":
			assert.Equal(t, "q1", r.URL.Query().Get("quiz_name"))
			_, _ = w.Write([]byte(`{"data": {"question": "?", "options": ["a", "b"]}}`))

		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	ctx := context.Background()

	key, err := c.SignUp(ctx, "alice", "pw", "blake")
	require.NoError(t, err)
	assert.Equal(t, "key-123", key)
	assert.Equal(t, key, c.APIKey())

	score, err := c.Score(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, score)

	q, err := c.RenderQuiz(ctx, "q1")
	require.NoError(t, err)
	assert.Len(t, q.Options, 2)
}

func TestClient_ErrorResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error": "quiz \"q1\" is exhausted"}`))
	}))
	defer srv.Close()

	c := client.New(srv.URL, client.WithAPIKey("k"))

	_, err := c.AnswerQuiz(context.Background(), "q1", "a")
	require.Error(t, err)

	var apiErr *client.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Contains(t, apiErr.Message, "exhausted")
}

func TestClient_AnswerInfinite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/answer_infinite_quiz", r.URL.Path)
		_, _ = w.Write([]byte(`{"result": "incorrect", "lives": 2}`))
	}))
	defer srv.Close()

	c := client.New(srv.URL, client.WithAPIKey("k"))

	res, err := c.AnswerInfinite(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, "incorrect", res.Result)
	assert.Equal(t, 2, res.Lives)
}
