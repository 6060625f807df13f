package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/quizzyhq/quizzy/internal/domain"
	"github.com/quizzyhq/quizzy/internal/errors"
)

const (
	defaultBaseURL = "https://opentdb.com/api.php"
	defaultAmount  = 10
	maxAmount      = 50
)

type Config struct {
	// BaseURL defaults to the public Open Trivia DB endpoint.
	BaseURL string
	// HTTPClient defaults to a client with a 10s timeout.
	HTTPClient *http.Client
}

// Client fetches question batches from Open Trivia DB. Failures are
// surfaced as unavailable; retrying is the caller's call, never ours.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(c Config) *Client {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: c.BaseURL,
		http:    c.HTTPClient,
	}
}

type FetchRequest struct {
	// Amount of questions, 1..50; zero means the provider default.
	Amount int
	// Category is the provider's numeric category ID; zero means any.
	Category int
	// Difficulty is "easy", "medium" or "hard"; empty means any.
	Difficulty string
	// Type is "boolean" or "multiple"; empty means any.
	Type string
}

// Fetch returns one batch of questions matching the request.
func (c *Client) Fetch(ctx context.Context, req FetchRequest) ([]domain.Question, error) {
	if req.Amount == 0 {
		req.Amount = defaultAmount
	}
	if req.Amount < 1 || req.Amount > maxAmount {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("amount must be 1..%d, got %d", maxAmount, req.Amount))
	}

	q := url.Values{}
	q.Set("amount", strconv.Itoa(req.Amount))
	if req.Category != 0 {
		q.Set("category", strconv.Itoa(req.Category))
	}
	if req.Difficulty != "" {
		q.Set("difficulty", req.Difficulty)
	}
	if req.Type != "" {
		q.Set("type", req.Type)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("trivia: build request: %w", err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errors.New(errors.CodeUnavailable,
			errors.WithMessagef("question provider unreachable"),
			errors.WithCause(err),
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.CodeUnavailable,
			errors.WithMessagef("question provider returned status %d", resp.StatusCode))
	}

	var body struct {
		ResponseCode int               `json:"response_code"`
		Results      []domain.Question `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.New(errors.CodeUnavailable,
			errors.WithMessagef("question provider sent a malformed response"),
			errors.WithCause(err),
		)
	}

	// Non-zero response codes are provider-side refusals, e.g. not
	// enough questions in the requested category.
	if body.ResponseCode != 0 {
		return nil, errors.New(errors.CodeUnavailable,
			errors.WithMessagef("question provider refused the request: response_code=%d", body.ResponseCode))
	}

	return body.Results, nil
}
