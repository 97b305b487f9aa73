// Package interfaces defines service contracts for Carfeed
package interfaces

import (
	"context"

	"github.com/bobmcallan/carfeed/internal/models"
)

// GeminiClient is the classifier's model transport.
type GeminiClient interface {
	// GenerateJSON returns the model's reply to prompt, constrained to JSON.
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// FeedbackAPI is the remote store as seen by the dashboard controller.
// Implemented over HTTP by clients/feedbackapi.
type FeedbackAPI interface {
	ListFeedback(ctx context.Context, q FeedbackQuery) (*models.FeedbackPage, error)
	CreateFeedback(ctx context.Context, originalText, product string) (*models.Feedback, error)
	UpdateFeedback(ctx context.Context, token, id, translatedText, sentiment string) (*models.Feedback, error)
	DeleteFeedback(ctx context.Context, token, id string) error
	Stats(ctx context.Context) (*models.StatsSnapshot, error)
	Login(ctx context.Context, password string) (*models.Session, error)
}

// FeedbackQuery is the list request derived from the dashboard filters.
// Fields holding the wildcard are omitted from the outgoing query.
type FeedbackQuery struct {
	Product   string
	Sentiment string
	Language  string
	ShowAll   bool
	Token     string // bearer token; sent only with ShowAll
	Page      int
	PageSize  int
}
