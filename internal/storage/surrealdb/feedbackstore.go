package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/carfeed/internal/common"
	"github.com/bobmcallan/carfeed/internal/interfaces"
	"github.com/bobmcallan/carfeed/internal/models"
	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

const feedbackTable = "feedback"

// feedbackSelectFields aliases feedback_id to id so rows map onto models.Feedback.
const feedbackSelectFields = `feedback_id as id, product, original_text, original_language,
	translated_text, sentiment, status, was_reviewed, created_at, updated_at`

// FeedbackStore implements interfaces.FeedbackStore using SurrealDB.
type FeedbackStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewFeedbackStore creates a new FeedbackStore.
func NewFeedbackStore(db *surrealdb.DB, logger *common.Logger) *FeedbackStore {
	return &FeedbackStore{db: db, logger: logger}
}

func (s *FeedbackStore) Create(ctx context.Context, fb *models.Feedback) error {
	if fb.ID == "" {
		fb.ID = fmt.Sprintf("fb_%s", uuid.New().String()[:8])
	}
	now := time.Now()
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = now
	}
	fb.UpdatedAt = now

	sql := `CREATE $rid SET
		feedback_id = $feedback_id, product = $product, original_text = $original_text,
		original_language = $original_language, translated_text = $translated_text,
		sentiment = $sentiment, status = $status, was_reviewed = $was_reviewed,
		created_at = $created_at, updated_at = $updated_at`
	vars := map[string]any{
		"rid":               surrealmodels.NewRecordID(feedbackTable, fb.ID),
		"feedback_id":       fb.ID,
		"product":           fb.Product,
		"original_text":     fb.OriginalText,
		"original_language": fb.OriginalLanguage,
		"translated_text":   fb.TranslatedText,
		"sentiment":         fb.Sentiment,
		"status":            fb.Status,
		"was_reviewed":      fb.WasReviewed,
		"created_at":        fb.CreatedAt,
		"updated_at":        fb.UpdatedAt,
	}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

func (s *FeedbackStore) Get(ctx context.Context, id string) (*models.Feedback, error) {
	sql := "SELECT " + feedbackSelectFields + " FROM $rid"
	vars := map[string]any{
		"rid": surrealmodels.NewRecordID(feedbackTable, id),
	}

	results, err := surrealdb.Query[[]models.Feedback](ctx, s.db, sql, vars)
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

// listWhere builds the WHERE clause shared by the count and page queries.
func listWhere(opts interfaces.FeedbackListOptions) (string, map[string]any) {
	where := ""
	vars := map[string]any{}

	if !opts.ShowAll {
		where += " AND status = $published"
		vars["published"] = models.FeedbackStatusPublished
	}
	if opts.Product != "" {
		where += " AND product = $product"
		vars["product"] = opts.Product
	}
	if opts.Sentiment != "" {
		where += " AND sentiment = $sentiment"
		vars["sentiment"] = opts.Sentiment
	}
	switch opts.Language {
	case "":
	case models.LanguageOthers:
		where += " AND original_language NOT IN $known"
		vars["known"] = append(append([]string{}, models.KnownLanguageCodes...), models.LanguageReview)
	default:
		where += " AND original_language = $language"
		vars["language"] = opts.Language
	}

	if where == "" {
		return "", vars
	}
	return " WHERE " + where[5:], vars
}

func (s *FeedbackStore) List(ctx context.Context, opts interfaces.FeedbackListOptions) ([]*models.Feedback, int, error) {
	opts = opts.Normalize()
	whereClause, vars := listWhere(opts)

	countSQL := "SELECT count() AS cnt FROM " + feedbackTable + whereClause + " GROUP ALL"
	type countResult struct {
		Cnt int `json:"cnt"`
	}
	total := 0
	countResults, err := surrealdb.Query[[]countResult](ctx, s.db, countSQL, vars)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	if countResults != nil && len(*countResults) > 0 && len((*countResults)[0].Result) > 0 {
		total = (*countResults)[0].Result[0].Cnt
	}

	// feedback_id breaks ties when timestamps are equal
	dataSQL := "SELECT " + feedbackSelectFields + " FROM " + feedbackTable + whereClause +
		" ORDER BY created_at DESC, feedback_id DESC LIMIT $limit START $start"
	vars["limit"] = opts.PageSize
	vars["start"] = opts.Offset()

	results, err := surrealdb.Query[[]models.Feedback](ctx, s.db, dataSQL, vars)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list feedback: %w", err)
	}

	items := make([]*models.Feedback, 0)
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			items = append(items, &(*results)[0].Result[i])
		}
	}

	return items, total, nil
}

// Update writes the moderator-editable fields. Product, original text and
// original language are never rewritten.
func (s *FeedbackStore) Update(ctx context.Context, fb *models.Feedback) error {
	fb.UpdatedAt = time.Now()
	sql := `UPDATE $rid SET translated_text = $translated_text, sentiment = $sentiment,
		status = $status, was_reviewed = $was_reviewed, updated_at = $now`
	vars := map[string]any{
		"rid":             surrealmodels.NewRecordID(feedbackTable, fb.ID),
		"translated_text": fb.TranslatedText,
		"sentiment":       fb.Sentiment,
		"status":          fb.Status,
		"was_reviewed":    fb.WasReviewed,
		"now":             fb.UpdatedAt,
	}

	results, err := surrealdb.Query[[]models.Feedback](ctx, s.db, sql, vars)
	if err != nil {
		return fmt.Errorf("failed to update feedback: %w", err)
	}
	// UPDATE on a missing record id creates nothing and returns no rows
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return interfaces.ErrFeedbackNotFound
	}
	return nil
}

func (s *FeedbackStore) Delete(ctx context.Context, id string) error {
	_, err := surrealdb.Delete[models.Feedback](ctx, s.db, surrealmodels.NewRecordID(feedbackTable, id))
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	return nil
}

func (s *FeedbackStore) SentimentCounts(ctx context.Context, opts interfaces.StatsOptions) (map[string]int, error) {
	type groupResult struct {
		Group string `json:"group"`
		Cnt   int    `json:"cnt"`
	}

	sql := "SELECT sentiment AS group, count() AS cnt FROM " + feedbackTable
	vars := map[string]any{}
	if opts.PublishedOnly {
		sql += " WHERE status = $published"
		vars["published"] = models.FeedbackStatusPublished
	}
	sql += " GROUP BY sentiment"

	results, err := surrealdb.Query[[]groupResult](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to count sentiments: %w", err)
	}

	counts := make(map[string]int)
	if results != nil && len(*results) > 0 {
		for _, r := range (*results)[0].Result {
			counts[r.Group] = r.Cnt
		}
	}
	return counts, nil
}

// Compile-time check
var _ interfaces.FeedbackStore = (*FeedbackStore)(nil)
