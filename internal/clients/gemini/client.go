// Package gemini is the transport for the feedback classifier: one JSON
// completion per submitted comment.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/bobmcallan/carfeed/internal/common"
	"github.com/bobmcallan/carfeed/internal/interfaces"
)

// Used when the config leaves a field empty.
const (
	defaultModel     = "gemini-2.0-flash"
	defaultTimeout   = 30 * time.Second
	defaultRateLimit = 5
)

// ErrEmptyReply is returned when the model produced no text.
var ErrEmptyReply = errors.New("gemini returned no text")

// Client calls the Gemini API under a rate limit and per-call timeout.
type Client struct {
	models  *genai.Models
	model   string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *common.Logger
}

// NewClient connects with cfg.APIKey. Zero values in cfg fall back to defaults.
func NewClient(ctx context.Context, cfg common.GeminiConfig, logger *common.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if logger == nil {
		logger = common.NewSilentLogger()
	}
	c := &Client{
		models:  gc.Models,
		model:   cfg.Model,
		timeout: defaultTimeout,
		logger:  logger,
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if cfg.Timeout != "" {
		c.timeout = cfg.GetTimeout()
	}
	perSecond := cfg.RateLimit
	if perSecond <= 0 {
		perSecond = defaultRateLimit
	}
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
	return c, nil
}

// GenerateJSON asks for an application/json reply at temperature 0.
func (c *Client) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("gemini rate limit: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	began := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("model", c.model).Msg("Gemini request failed")
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := replyText(resp)
	if text == "" {
		return "", ErrEmptyReply
	}
	c.logger.Debug().Str("model", c.model).Int("chars", len(text)).Dur("elapsed", time.Since(began)).Msg("Gemini replied")
	return text, nil
}

// replyText joins the text parts of the first candidate.
func replyText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

var _ interfaces.GeminiClient = (*Client)(nil)
