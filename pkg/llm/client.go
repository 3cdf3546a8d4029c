// Package llm is a minimal chat-completions client guarded by a circuit breaker
// and an outbound rate limiter.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-3.5-turbo"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
	DefaultTimeout     = 30 * time.Second

	completionsPath = "/chat/completions"
	maxErrorBody    = 4096
)

var (
	// ErrEmptyCompletion is returned when the upstream reply holds no choices
	ErrEmptyCompletion = errors.New("completion returned no choices")
	// ErrRateLimited wraps a cancelled or expired wait on the outbound limiter
	ErrRateLimited = errors.New("rate limit wait failed")
)

// StatusError is returned when the upstream answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("completion request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("completion request failed with status %d: %s", e.StatusCode, e.Body)
}

// Config represents configuration for the completion client
type Config struct {
	BaseURL     string        `json:"base_url"`
	APIKey      string        `json:"-"`
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Timeout     time.Duration `json:"timeout"`
	RateLimit   float64       `json:"rate_limit"` // requests per second, 0 disables limiting
	Burst       int           `json:"burst"`

	BreakerMaxRequests  uint32        `json:"breaker_max_requests"`
	BreakerInterval     time.Duration `json:"breaker_interval"`
	BreakerTimeout      time.Duration `json:"breaker_timeout"`
	BreakerMinRequests  uint32        `json:"breaker_min_requests"`
	BreakerFailureRatio float64       `json:"breaker_failure_ratio"`

	// OnStateChange is notified when the breaker changes state
	OnStateChange func(name string, from, to gobreaker.State)
}

// Client sends chat-completion requests to an OpenAI-compatible endpoint
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	httpClient  *http.Client
	rateLimit   *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewClient creates a new completion client
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Temperature == 0 {
		config.Temperature = DefaultTemperature
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.BreakerMaxRequests == 0 {
		config.BreakerMaxRequests = 1
	}
	if config.BreakerInterval == 0 {
		config.BreakerInterval = 60 * time.Second
	}
	if config.BreakerTimeout == 0 {
		config.BreakerTimeout = 30 * time.Second
	}
	if config.BreakerMinRequests == 0 {
		config.BreakerMinRequests = 5
	}
	if config.BreakerFailureRatio == 0 {
		config.BreakerFailureRatio = 0.6
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		burst := config.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), burst)
	}

	minRequests, failureRatio := config.BreakerMinRequests, config.BreakerFailureRatio
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm",
		MaxRequests: config.BreakerMaxRequests,
		Interval:    config.BreakerInterval,
		Timeout:     config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= minRequests && ratio >= failureRatio
		},
		OnStateChange: config.OnStateChange,
	})

	return &Client{
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		apiKey:      config.APIKey,
		model:       config.Model,
		temperature: config.Temperature,
		maxTokens:   config.MaxTokens,
		timeout:     config.Timeout,
		httpClient:  &http.Client{Timeout: config.Timeout},
		rateLimit:   limiter,
		breaker:     breaker,
	}
}

// Model returns the model name sent with every request
func (c *Client) Model() string {
	return c.model
}

// Complete sends one system instruction and one user prompt and returns the first
// choice's content. The configured timeout bounds the rate limit wait and the request together.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.rateLimit != nil {
		if err := c.rateLimit.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: %w", ErrRateLimited, err)
		}
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.complete(ctx, system, prompt)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *Client) complete(ctx context.Context, system, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return decoded.Choices[0].Message.Content, nil
}

// FailureReason classifies a Complete error into a short metric label
func FailureReason(err error) string {
	var statusErr *StatusError
	var netErr net.Error
	switch {
	case err == nil:
		return ""
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &statusErr):
		return "status"
	case errors.Is(err, ErrEmptyCompletion):
		return "empty"
	default:
		return "transport"
	}
}
