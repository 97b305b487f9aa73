package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobmcallan/carfeed/internal/models"
)

// SubmitResult carries the status the server assigned.
type SubmitResult struct {
	Status string
}

// SetDraft updates the submission form.
func (c *Controller) SetDraft(text, product string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Draft = Draft{Text: text, Product: product}
}

// Submit sends new feedback. Validation failures and ErrBusy are returned
// before any request is issued.
func (c *Controller) Submit(ctx context.Context, text, product string) (SubmitResult, error) {
	if strings.TrimSpace(text) == "" {
		return SubmitResult{}, validationError("original_text", "feedback text is required")
	}
	if !models.ValidProducts[product] {
		return SubmitResult{}, validationError("product", "unknown product "+product)
	}

	c.mu.Lock()
	if c.state.Submitting {
		c.mu.Unlock()
		return SubmitResult{}, ErrBusy
	}
	c.state.Submitting = true
	c.state.Draft = Draft{Text: text, Product: product}
	c.mu.Unlock()

	created, err := c.api.CreateFeedback(ctx, text, product)

	c.mu.Lock()
	c.state.Submitting = false
	if err != nil {
		c.showLocked(MsgSubmitFailed, MessageError)
		c.mu.Unlock()
		c.logger.Error().Err(err).Str("product", product).Msg("Failed to submit feedback")
		return SubmitResult{}, fmt.Errorf("submit feedback: %w", err)
	}

	c.state.Draft = Draft{Product: models.DefaultProduct()}
	if created.Status == models.FeedbackStatusReview {
		c.showLocked(MsgSubmittedReview, MessageReview)
	} else {
		c.showLocked(MsgSubmittedPublished, MessageSuccess)
	}
	c.mu.Unlock()

	c.logger.Info().Str("id", created.ID).Str("status", created.Status).Msg("Feedback submitted")
	c.bus.Publish(DataChanged)
	return SubmitResult{Status: created.Status}, nil
}
