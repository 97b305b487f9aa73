// Package interfaces defines service contracts for Carfeed
package interfaces

import (
	"context"
	"errors"

	"github.com/bobmcallan/carfeed/internal/models"
)

// StorageManager owns the storage backend and hands out stores.
type StorageManager interface {
	FeedbackStore() FeedbackStore

	// Backend names the active backend (sqlite, postgres, surrealdb).
	Backend() string

	Close() error
}

// ErrFeedbackNotFound is returned by Update when no stored item has the id.
var ErrFeedbackNotFound = errors.New("feedback not found")

// FeedbackStore persists feedback items.
type FeedbackStore interface {
	Create(ctx context.Context, fb *models.Feedback) error
	Get(ctx context.Context, id string) (*models.Feedback, error) // nil, nil when absent
	List(ctx context.Context, opts FeedbackListOptions) ([]*models.Feedback, int, error) // items, total, error
	Update(ctx context.Context, fb *models.Feedback) error
	Delete(ctx context.Context, id string) error
	SentimentCounts(ctx context.Context, opts StatsOptions) (map[string]int, error)
}

// FeedbackListOptions configures filtering and pagination for feedback queries.
// Empty string fields mean no constraint.
type FeedbackListOptions struct {
	Product   string
	Sentiment string
	Language  string // ISO code, "review", or "Others"
	ShowAll   bool   // include review items
	Page      int
	PageSize  int
}

// StatsOptions scopes the sentiment aggregate.
type StatsOptions struct {
	PublishedOnly bool
}

// Offset returns the row offset for the (clamped) page.
func (o FeedbackListOptions) Offset() int {
	return (o.Page - 1) * o.PageSize
}

// Normalize clamps paging to sane bounds.
func (o FeedbackListOptions) Normalize() FeedbackListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PageSize < 1 {
		o.PageSize = DefaultPageSize
	}
	if o.PageSize > MaxPageSize {
		o.PageSize = MaxPageSize
	}
	return o
}

const (
	DefaultPageSize = 5
	MaxPageSize     = 100
)
