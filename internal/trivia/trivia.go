// Package trivia fetches questions from the Open Trivia Database API.
package trivia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/tuiquiz/internal/model"
)

const (
	// DefaultBaseURL is the public Open Trivia Database endpoint.
	DefaultBaseURL = "https://opentdb.com"
	// DefaultTimeout bounds a single question fetch.
	DefaultTimeout = 10 * time.Second
	// DefaultAmount is the number of questions per quiz.
	DefaultAmount = 15

	questionsPath  = "/api.php"
	categoriesPath = "/api_category.php"
)

var (
	// ErrTimeout is returned when the upstream does not answer in time.
	ErrTimeout = errors.New("question request timed out")
	// ErrMalformedQuestion is returned when a question record lacks its text.
	ErrMalformedQuestion = errors.New("malformed question record")
)

// ResponseError reports a non-zero response_code from the upstream.
type ResponseError struct {
	Code int
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("trivia api response code %d: %s", e.Code, responseCodeText(e.Code))
}

func responseCodeText(code int) string {
	switch code {
	case 1:
		return "not enough questions for the query"
	case 2:
		return "invalid parameter"
	case 3:
		return "session token not found"
	case 4:
		return "session token exhausted"
	case 5:
		return "rate limited, try again in a few seconds"
	default:
		return "unknown error"
	}
}

// Params selects which questions to fetch. Zero values are omitted.
type Params struct {
	Amount     int
	Category   int
	Difficulty string
	Type       string
}

// Query encodes the parameters the upstream understands.
func (p Params) Query() url.Values {
	q := url.Values{}
	amount := p.Amount
	if amount <= 0 {
		amount = DefaultAmount
	}
	q.Set("amount", strconv.Itoa(amount))
	if p.Category > 0 {
		q.Set("category", strconv.Itoa(p.Category))
	}
	if p.Difficulty != "" {
		q.Set("difficulty", p.Difficulty)
	}
	if p.Type != "" {
		q.Set("type", p.Type)
	}
	return q
}

// Category is a trivia category.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Response is the upstream question payload.
type Response struct {
	ResponseCode int                 `json:"response_code"`
	Results      []model.RawQuestion `json:"results"`
}

type categoriesResponse struct {
	Categories []Category `json:"trivia_categories"`
}

// Client talks to the trivia API or a proxy exposing the same paths.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for baseURL. A non-positive timeout uses DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchQuestions returns the questions for params or an error. It never
// returns a partial set.
func (c *Client) FetchQuestions(ctx context.Context, params Params) ([]model.RawQuestion, error) {
	resp, err := c.get(ctx, questionsPath, params.Query())
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected trivia api status: %s", resp.Status)
	}
	questions, err := DecodeResponse(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, err
	}
	return questions, nil
}

// Categories lists the upstream categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	resp, err := c.get(ctx, categoriesPath, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected trivia api status: %s", resp.Status)
	}
	var payload categoriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return payload.Categories, nil
}

// DecodeResponse parses an upstream question payload and validates it.
func DecodeResponse(r io.Reader) ([]model.RawQuestion, error) {
	var payload Response
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode trivia response: %w", err)
	}
	if payload.ResponseCode != 0 {
		return nil, &ResponseError{Code: payload.ResponseCode}
	}
	for i, q := range payload.Results {
		if strings.TrimSpace(q.Question) == "" {
			return nil, fmt.Errorf("%w: question %d has no text", ErrMalformedQuestion, i+1)
		}
	}
	return payload.Results, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
