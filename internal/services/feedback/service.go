// Package feedback applies the feedback lifecycle: classification on
// submit, moderation, deletion and sentiment statistics.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/bobmcallan/carfeed/internal/common"
	"github.com/bobmcallan/carfeed/internal/interfaces"
	"github.com/bobmcallan/carfeed/internal/models"
)

// Compile-time interface check
var _ interfaces.FeedbackService = (*Service)(nil)

var (
	// ErrInvalid marks input the service refuses before touching storage.
	ErrInvalid = errors.New("invalid feedback")

	// ErrNotEditable is returned when moderating a published item that
	// never went through review.
	ErrNotEditable = errors.New("feedback is not editable")
)

// MaxTextLength bounds submitted and moderated text, in bytes.
const MaxTextLength = 5000

// Service implements FeedbackService
type Service struct {
	storage       interfaces.StorageManager
	classifier    interfaces.Classifier
	logger        *common.Logger
	policy        *bluemonday.Policy
	publishedOnly bool
}

// Option configures the service
type Option func(*Service)

// WithPublishedOnlyStats restricts statistics to published items.
func WithPublishedOnlyStats(publishedOnly bool) Option {
	return func(s *Service) {
		s.publishedOnly = publishedOnly
	}
}

// NewService creates a new feedback service
func NewService(storage interfaces.StorageManager, classifier interfaces.Classifier, logger *common.Logger, opts ...Option) *Service {
	s := &Service{
		storage:    storage,
		classifier: classifier,
		logger:     logger,
		policy:     bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// maxSanitizePasses bounds how many layers of entity encoding are peeled.
const maxSanitizePasses = 8

// sanitize strips all markup and returns plain text. Entity-encoded markup
// is decoded and stripped again until the text stops changing, so a decoded
// result never carries a tag the policy would have removed.
func (s *Service) sanitize(text string) string {
	for range maxSanitizePasses {
		next := html.UnescapeString(s.policy.Sanitize(text))
		if next == text {
			return strings.TrimSpace(next)
		}
		text = next
	}
	// Still decoding: keep the inert escaped form
	return strings.TrimSpace(s.policy.Sanitize(text))
}

// Submit classifies and stores new feedback
func (s *Service) Submit(ctx context.Context, originalText, product string) (*models.Feedback, error) {
	text := s.sanitize(originalText)
	if text == "" {
		return nil, fmt.Errorf("%w: original_text is required", ErrInvalid)
	}
	if len(text) > MaxTextLength {
		return nil, fmt.Errorf("%w: original_text exceeds %d characters", ErrInvalid, MaxTextLength)
	}
	if !models.ValidProducts[product] {
		return nil, fmt.Errorf("%w: unknown product %q", ErrInvalid, product)
	}

	analysis := s.classifier.Analyze(ctx, text)

	fb := &models.Feedback{
		Product:          product,
		OriginalText:     text,
		OriginalLanguage: analysis.Language,
		TranslatedText:   analysis.TranslatedText,
		Sentiment:        analysis.Sentiment,
		Status:           models.FeedbackStatusPublished,
	}
	if analysis.NeedsReview() {
		fb.Status = models.FeedbackStatusReview
	}

	if err := s.storage.FeedbackStore().Create(ctx, fb); err != nil {
		return nil, fmt.Errorf("failed to store feedback: %w", err)
	}

	s.logger.Info().
		Str("id", fb.ID).
		Str("product", fb.Product).
		Str("language", fb.OriginalLanguage).
		Str("status", fb.Status).
		Msg("Feedback submitted")

	return fb, nil
}

// List returns one page of feedback
func (s *Service) List(ctx context.Context, opts interfaces.FeedbackListOptions) (*models.FeedbackPage, error) {
	items, total, err := s.storage.FeedbackStore().List(ctx, opts.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return &models.FeedbackPage{Items: items, TotalCount: total}, nil
}

// Moderate applies a moderator's correction and publishes the item.
// The product, original text and original language are left as they are.
func (s *Service) Moderate(ctx context.Context, id, translatedText, sentiment string) (*models.Feedback, error) {
	translated := s.sanitize(translatedText)
	if translated == "" {
		return nil, fmt.Errorf("%w: translated_text is required", ErrInvalid)
	}
	if len(translated) > MaxTextLength {
		return nil, fmt.Errorf("%w: translated_text exceeds %d characters", ErrInvalid, MaxTextLength)
	}
	if !models.ValidSentiments[sentiment] {
		return nil, fmt.Errorf("%w: sentiment must be positive, neutral or negative", ErrInvalid)
	}

	store := s.storage.FeedbackStore()
	fb, err := store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback: %w", err)
	}
	if fb == nil {
		return nil, nil
	}
	if !fb.Editable() {
		return nil, ErrNotEditable
	}

	fb.TranslatedText = translated
	fb.Sentiment = sentiment
	fb.Status = models.FeedbackStatusPublished
	fb.WasReviewed = true

	if err := store.Update(ctx, fb); err != nil {
		if errors.Is(err, interfaces.ErrFeedbackNotFound) {
			// Deleted between the read and the write
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update feedback: %w", err)
	}

	s.logger.Info().
		Str("id", fb.ID).
		Str("sentiment", fb.Sentiment).
		Msg("Feedback moderated")

	return fb, nil
}

// Delete removes an item
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.storage.FeedbackStore().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	s.logger.Info().Str("id", id).Msg("Feedback deleted")
	return nil
}

// Stats aggregates sentiment counts. Review items carry sentiment
// "unknown" and so never contribute.
func (s *Service) Stats(ctx context.Context) (*models.StatsSnapshot, error) {
	counts, err := s.storage.FeedbackStore().SentimentCounts(ctx, interfaces.StatsOptions{PublishedOnly: s.publishedOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	return models.NewStatsSnapshot(
		counts[models.SentimentPositive],
		counts[models.SentimentNeutral],
		counts[models.SentimentNegative],
	), nil
}
