// Package interfaces defines service contracts for Carfeed
package interfaces

import (
	"context"

	"github.com/bobmcallan/carfeed/internal/models"
)

// Classifier infers language, English translation and sentiment.
type Classifier interface {
	Analyze(ctx context.Context, text string) *models.Analysis
}

// FeedbackService applies the feedback lifecycle on top of a FeedbackStore.
type FeedbackService interface {
	// Submit classifies and stores new feedback. The returned item's status
	// is review when the classifier could not read the text.
	Submit(ctx context.Context, originalText, product string) (*models.Feedback, error)

	// List returns one page of feedback matching opts.
	List(ctx context.Context, opts FeedbackListOptions) (*models.FeedbackPage, error)

	// Moderate applies a moderator's translation and sentiment and publishes the item.
	// Returns nil, nil when the item does not exist.
	Moderate(ctx context.Context, id, translatedText, sentiment string) (*models.Feedback, error)

	// Delete removes an item. Deleting a missing item is not an error.
	Delete(ctx context.Context, id string) error

	// Stats aggregates sentiment counts.
	Stats(ctx context.Context) (*models.StatsSnapshot, error)
}
