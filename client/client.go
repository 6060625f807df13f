// Package client is the Go client of the Quizzy API, used by the
// desktop app. It is a thin wrapper over the HTTP routes: no retries,
// no caching, errors come back as-is for the UI to present.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const apiKeyHeader = "X-API-Key"

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithAPIKey sets the credential up front, e.g. one remembered from a
// previous login.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIKey returns the credential currently in use.
func (c *Client) APIKey() string {
	return c.apiKey
}

type Question struct {
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
	Type             string   `json:"type"`
	Category         string   `json:"category,omitempty"`
	Difficulty       string   `json:"difficulty,omitempty"`
}

// FetchSpec asks the service to pull a batch from the question
// provider instead of sending one inline.
type FetchSpec struct {
	Amount     int    `json:"amount,omitempty"`
	Category   int    `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Type       string `json:"type,omitempty"`
}

type Standing struct {
	Team   string `json:"team"`
	Points int    `json:"points"`
	Colour string `json:"colour"`
}

type RenderedQuestion struct {
	Question   string   `json:"question"`
	Type       string   `json:"type"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
	Options    []string `json:"options"`
}

type AnswerResult struct {
	Result string `json:"result"`
	Lives  int    `json:"lives"`
}

// SignUp registers a new account and remembers the issued API key.
func (c *Client) SignUp(ctx context.Context, name, password, team string) (string, error) {
	var resp struct {
		APIKey string `json:"api_key"`
	}
	err := c.post(ctx, "/signup", map[string]string{
		"name": name, "password": password, "team": team,
	}, &resp)
	if err != nil {
		return "", err
	}

	c.apiKey = resp.APIKey
	return resp.APIKey, nil
}

// Login authenticates an existing account and remembers the API key.
func (c *Client) Login(ctx context.Context, name, password string) (string, error) {
	var resp struct {
		APIKey string `json:"api_key"`
	}
	err := c.post(ctx, "/login", map[string]string{
		"name": name, "password": password,
	}, &resp)
	if err != nil {
		return "", err
	}

	c.apiKey = resp.APIKey
	return resp.APIKey, nil
}

// Score returns the caller's point total.
func (c *Client) Score(ctx context.Context) (int, error) {
	var resp struct {
		Score int `json:"score"`
	}
	if err := c.get(ctx, "/get_score", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Score, nil
}

// Leaderboard returns all team standings, best first.
func (c *Client) Leaderboard(ctx context.Context) ([]Standing, error) {
	var resp struct {
		Data []Standing `json:"data"`
	}
	if err := c.get(ctx, "/render_leaderboard", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// StartQuiz starts (or restarts) a competitive quiz with an inline
// question batch.
func (c *Client) StartQuiz(ctx context.Context, quizName string, questions []Question) error {
	return c.post(ctx, "/start_quiz", map[string]any{
		"quiz_name": quizName,
		"questions": questions,
	}, nil)
}

// StartQuizFetched starts a competitive quiz with a server-fetched
// batch.
func (c *Client) StartQuizFetched(ctx context.Context, quizName string, spec FetchSpec) error {
	return c.post(ctx, "/start_quiz", map[string]any{
		"quiz_name": quizName,
		"fetch":     spec,
	}, nil)
}

// RenderQuiz returns the current question of a quiz, options shuffled.
func (c *Client) RenderQuiz(ctx context.Context, quizName string) (*RenderedQuestion, error) {
	var resp struct {
		Data RenderedQuestion `json:"data"`
	}
	err := c.get(ctx, "/render_quiz", url.Values{"quiz_name": {quizName}}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// AnswerQuiz submits an answer for the current question of a quiz.
func (c *Client) AnswerQuiz(ctx context.Context, quizName, selected string) (*AnswerResult, error) {
	var resp AnswerResult
	err := c.post(ctx, "/answer_quiz", map[string]string{
		"quiz_name": quizName, "selected": selected,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// StartInfinite begins an infinite quiz with the given lives.
func (c *Client) StartInfinite(ctx context.Context, lives int, questions []Question) error {
	return c.post(ctx, "/start_infinite_quiz", map[string]any{
		"lives":     lives,
		"questions": questions,
	}, nil)
}

// StartInfiniteFetched begins an infinite quiz with a server-fetched
// batch.
func (c *Client) StartInfiniteFetched(ctx context.Context, lives int, spec FetchSpec) error {
	return c.post(ctx, "/start_infinite_quiz", map[string]any{
		"lives": lives,
		"fetch": spec,
	}, nil)
}

// ExpandInfinite appends a batch to the running infinite quiz. Call it
// before the queue runs dry.
func (c *Client) ExpandInfinite(ctx context.Context, questions []Question) error {
	return c.post(ctx, "/expand_infinite_quiz", map[string]any{
		"questions": questions,
	}, nil)
}

// ExpandInfiniteFetched appends a server-fetched batch to the running
// infinite quiz.
func (c *Client) ExpandInfiniteFetched(ctx context.Context, spec FetchSpec) error {
	return c.post(ctx, "/expand_infinite_quiz", map[string]any{
		"fetch": spec,
	}, nil)
}

// AnswerInfinite submits an answer in the infinite quiz and reports
// the remaining lives.
func (c *Client) AnswerInfinite(ctx context.Context, selected string) (*AnswerResult, error) {
	var resp AnswerResult
	err := c.post(ctx, "/answer_infinite_quiz", map[string]string{
		"selected": selected,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("client: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return &Error{Status: resp.StatusCode, Message: apiErr.Error}
		}
		return &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("client: unmarshal response: %w", err)
	}
	return nil
}

// Error is a non-2xx response from the service.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("quizzy: status %d: %s", e.Status, e.Message)
}
