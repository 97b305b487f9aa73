// Package feedbackapi is the HTTP client for the Carfeed feedback API.
package feedbackapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/carfeed/internal/common"
	"github.com/bobmcallan/carfeed/internal/interfaces"
	"github.com/bobmcallan/carfeed/internal/models"
)

const (
	DefaultBaseURL   = "http://localhost:8000"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Client implements interfaces.FeedbackAPI over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the server root, e.g. http://localhost:8000
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the maximum requests per second
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new feedback API client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a non-2xx response from the feedback API
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("feedback API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// do sends a request and decodes a JSON response into result when non-nil.
func (c *Client) do(ctx context.Context, method, path, token string, body, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug().Str("method", method).Str("url", path).Msg("Feedback API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw, resp.Status),
			Endpoint:   path,
		}
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorMessage prefers the server's {"error": "..."} body over the status line.
func errorMessage(raw []byte, status string) string {
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return body.Error
	}
	if msg := strings.TrimSpace(string(raw)); msg != "" {
		return msg
	}
	return status
}

// listPath encodes q. Wildcard filters are left out entirely.
func listPath(q interfaces.FeedbackQuery) string {
	v := url.Values{}
	if q.Product != "" && q.Product != models.FilterAll {
		v.Set("product", q.Product)
	}
	if q.Sentiment != "" && q.Sentiment != models.FilterAll {
		v.Set("sentiment", q.Sentiment)
	}
	if q.Language != "" && q.Language != models.FilterAll {
		v.Set("original_language", q.Language)
	}
	if q.ShowAll {
		v.Set("show_all", "true")
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = interfaces.DefaultPageSize
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("page_size", strconv.Itoa(pageSize))
	return "/api/feedback?" + v.Encode()
}

// ListFeedback fetches one page of feedback
func (c *Client) ListFeedback(ctx context.Context, q interfaces.FeedbackQuery) (*models.FeedbackPage, error) {
	var page models.FeedbackPage
	token := ""
	if q.ShowAll {
		token = q.Token
	}
	if err := c.do(ctx, http.MethodGet, listPath(q), token, nil, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []*models.Feedback{}
	}
	return &page, nil
}

// CreateFeedback submits new feedback
func (c *Client) CreateFeedback(ctx context.Context, originalText, product string) (*models.Feedback, error) {
	req := map[string]string{"original_text": originalText, "product": product}
	var fb models.Feedback
	if err := c.do(ctx, http.MethodPost, "/api/feedback", "", req, &fb); err != nil {
		return nil, err
	}
	return &fb, nil
}

// UpdateFeedback sends a moderator's correction. Only the translation and
// sentiment are sent.
func (c *Client) UpdateFeedback(ctx context.Context, token, id, translatedText, sentiment string) (*models.Feedback, error) {
	req := map[string]string{"translated_text": translatedText, "sentiment": sentiment}
	var fb models.Feedback
	if err := c.do(ctx, http.MethodPut, "/api/feedback/"+url.PathEscape(id), token, req, &fb); err != nil {
		return nil, err
	}
	return &fb, nil
}

// DeleteFeedback removes an item
func (c *Client) DeleteFeedback(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/feedback/"+url.PathEscape(id), token, nil, nil)
}

// Stats fetches the sentiment aggregate
func (c *Client) Stats(ctx context.Context) (*models.StatsSnapshot, error) {
	var stats models.StatsSnapshot
	if err := c.do(ctx, http.MethodGet, "/api/stats", "", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Login exchanges the admin password for a session token
func (c *Client) Login(ctx context.Context, password string) (*models.Session, error) {
	var session models.Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", map[string]string{"password": password}, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Compile-time check
var _ interfaces.FeedbackAPI = (*Client)(nil)
