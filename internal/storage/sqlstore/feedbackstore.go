package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/carfeed/internal/common"
	"github.com/bobmcallan/carfeed/internal/interfaces"
	"github.com/bobmcallan/carfeed/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const feedbackColumns = `id, product, original_text, original_language, translated_text,
	sentiment, status, was_reviewed, created_at, updated_at`

// FeedbackStore implements interfaces.FeedbackStore with sqlx.
// Queries are written with ? placeholders and rebound per driver.
type FeedbackStore struct {
	db     *sqlx.DB
	logger *common.Logger
}

// NewFeedbackStore creates a new FeedbackStore.
func NewFeedbackStore(db *sqlx.DB, logger *common.Logger) *FeedbackStore {
	return &FeedbackStore{db: db, logger: logger}
}

func (s *FeedbackStore) Create(ctx context.Context, fb *models.Feedback) error {
	if fb.ID == "" {
		fb.ID = fmt.Sprintf("fb_%s", uuid.New().String()[:8])
	}
	now := time.Now().UTC()
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = now
	}
	fb.CreatedAt = fb.CreatedAt.UTC()
	fb.UpdatedAt = now

	query := `INSERT INTO feedback (` + feedbackColumns + `)
		VALUES (:id, :product, :original_text, :original_language, :translated_text,
			:sentiment, :status, :was_reviewed, :created_at, :updated_at)`
	if _, err := s.db.NamedExecContext(ctx, query, fb); err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

func (s *FeedbackStore) Get(ctx context.Context, id string) (*models.Feedback, error) {
	var fb models.Feedback
	query := s.db.Rebind(`SELECT ` + feedbackColumns + ` FROM feedback WHERE id = ?`)
	if err := s.db.GetContext(ctx, &fb, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	return &fb, nil
}

// listWhere builds the WHERE clause shared by the count and page queries.
func listWhere(opts interfaces.FeedbackListOptions) (string, []any, error) {
	var (
		clauses []string
		args    []any
	)

	if !opts.ShowAll {
		clauses = append(clauses, "status = ?")
		args = append(args, models.FeedbackStatusPublished)
	}
	if opts.Product != "" {
		clauses = append(clauses, "product = ?")
		args = append(args, opts.Product)
	}
	if opts.Sentiment != "" {
		clauses = append(clauses, "sentiment = ?")
		args = append(args, opts.Sentiment)
	}
	switch opts.Language {
	case "":
	case models.LanguageOthers:
		excluded := append(append([]string{}, models.KnownLanguageCodes...), models.LanguageReview)
		clause, inArgs, err := sqlx.In("original_language NOT IN (?)", excluded)
		if err != nil {
			return "", nil, err
		}
		clauses = append(clauses, clause)
		args = append(args, inArgs...)
	default:
		clauses = append(clauses, "original_language = ?")
		args = append(args, opts.Language)
	}

	if len(clauses) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func (s *FeedbackStore) List(ctx context.Context, opts interfaces.FeedbackListOptions) ([]*models.Feedback, int, error) {
	opts = opts.Normalize()
	where, args, err := listWhere(opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build feedback filter: %w", err)
	}

	var total int
	if err := s.db.GetContext(ctx, &total, s.db.Rebind("SELECT COUNT(*) FROM feedback"+where), args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count feedback: %w", err)
	}

	// id breaks ties when timestamps are equal
	query := s.db.Rebind(`SELECT ` + feedbackColumns + ` FROM feedback` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)
	items := make([]*models.Feedback, 0, opts.PageSize)
	if err := s.db.SelectContext(ctx, &items, query, append(args, opts.PageSize, opts.Offset())...); err != nil {
		return nil, 0, fmt.Errorf("failed to list feedback: %w", err)
	}

	return items, total, nil
}

// Update writes the moderator-editable fields. Product, original text and
// original language are never rewritten.
func (s *FeedbackStore) Update(ctx context.Context, fb *models.Feedback) error {
	fb.UpdatedAt = time.Now().UTC()
	query := `UPDATE feedback SET translated_text = :translated_text, sentiment = :sentiment,
		status = :status, was_reviewed = :was_reviewed, updated_at = :updated_at
		WHERE id = :id`
	res, err := s.db.NamedExecContext(ctx, query, fb)
	if err != nil {
		return fmt.Errorf("failed to update feedback: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update feedback: %w", err)
	}
	if n == 0 {
		return interfaces.ErrFeedbackNotFound
	}
	return nil
}

func (s *FeedbackStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM feedback WHERE id = ?"), id); err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	return nil
}

func (s *FeedbackStore) SentimentCounts(ctx context.Context, opts interfaces.StatsOptions) (map[string]int, error) {
	type groupRow struct {
		Sentiment string `db:"sentiment"`
		Cnt       int    `db:"cnt"`
	}

	query := "SELECT sentiment, COUNT(*) AS cnt FROM feedback"
	var args []any
	if opts.PublishedOnly {
		query += " WHERE status = ?"
		args = append(args, models.FeedbackStatusPublished)
	}
	query += " GROUP BY sentiment"

	var rows []groupRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to count sentiments: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Sentiment] = r.Cnt
	}
	return counts, nil
}

// Compile-time check
var _ interfaces.FeedbackStore = (*FeedbackStore)(nil)
