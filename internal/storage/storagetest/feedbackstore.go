// Package storagetest holds behaviour checks shared by every FeedbackStore backend.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/bobmcallan/carfeed/internal/interfaces"
	"github.com/bobmcallan/carfeed/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewStoreFunc returns an empty store isolated from other tests.
type NewStoreFunc func(t *testing.T) interfaces.FeedbackStore

// Published returns a classified, published item.
func Published(product, language, sentiment, text string) *models.Feedback {
	return &models.Feedback{
		Product:          product,
		OriginalText:     text,
		OriginalLanguage: language,
		TranslatedText:   text,
		Sentiment:        sentiment,
		Status:           models.FeedbackStatusPublished,
	}
}

// Review returns an item the classifier could not read.
func Review(product, text string) *models.Feedback {
	a := models.ReviewAnalysis()
	return &models.Feedback{
		Product:          product,
		OriginalText:     text,
		OriginalLanguage: a.Language,
		TranslatedText:   a.TranslatedText,
		Sentiment:        a.Sentiment,
		Status:           models.FeedbackStatusReview,
	}
}

// RunFeedbackStoreTests exercises the FeedbackStore contract.
func RunFeedbackStoreTests(t *testing.T, newStore NewStoreFunc) {
	t.Run("CreateAndGet", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		fb := Published("Toyota", "en", models.SentimentPositive, "Great car!")
		require.NoError(t, store.Create(ctx, fb))
		assert.Contains(t, fb.ID, "fb_")
		assert.False(t, fb.CreatedAt.IsZero())

		got, err := store.Get(ctx, fb.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, fb.ID, got.ID)
		assert.Equal(t, "Toyota", got.Product)
		assert.Equal(t, "Great car!", got.OriginalText)
		assert.Equal(t, models.SentimentPositive, got.Sentiment)
		assert.Equal(t, models.FeedbackStatusPublished, got.Status)
		assert.False(t, got.WasReviewed)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		store := newStore(t)
		got, err := store.Get(context.Background(), "fb_missing")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ListHidesReviewWithoutShowAll", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Create(ctx, Published("Audi", "en", models.SentimentNeutral, "Fine")))
		require.NoError(t, store.Create(ctx, Review("Audi", "???")))

		items, total, err := store.List(ctx, interfaces.FeedbackListOptions{})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, items, 1)
		for _, it := range items {
			assert.NotEqual(t, models.FeedbackStatusReview, it.Status)
		}

		items, total, err = store.List(ctx, interfaces.FeedbackListOptions{ShowAll: true})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, items, 2)
	})

	t.Run("ListFilters", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		seed := []*models.Feedback{
			Published("BMW", "en", models.SentimentPositive, "a"),
			Published("BMW", "fr", models.SentimentNegative, "b"),
			Published("Kia", "sv", models.SentimentNegative, "c"),
			Published("Kia", models.LanguageUnknown, models.SentimentNeutral, "d"),
			Review("Kia", "e"),
		}
		for _, fb := range seed {
			require.NoError(t, store.Create(ctx, fb))
		}

		_, total, err := store.List(ctx, interfaces.FeedbackListOptions{Product: "BMW"})
		require.NoError(t, err)
		assert.Equal(t, 2, total)

		_, total, err = store.List(ctx, interfaces.FeedbackListOptions{Sentiment: models.SentimentNegative})
		require.NoError(t, err)
		assert.Equal(t, 2, total)

		_, total, err = store.List(ctx, interfaces.FeedbackListOptions{Language: "fr"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)

		items, total, err := store.List(ctx, interfaces.FeedbackListOptions{Language: models.LanguageOthers, ShowAll: true})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		for _, it := range items {
			assert.NotContains(t, append(models.KnownLanguageCodes, models.LanguageReview), it.OriginalLanguage)
		}

		items, total, err = store.List(ctx, interfaces.FeedbackListOptions{Language: models.LanguageReview, ShowAll: true})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, items, 1)
		assert.Equal(t, models.FeedbackStatusReview, items[0].Status)
	})

	t.Run("ListPaginationNewestFirst", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		var ids []string
		for i := 0; i < 12; i++ {
			fb := Published("Ford", "en", models.SentimentPositive, "entry")
			fb.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			require.NoError(t, store.Create(ctx, fb))
			ids = append(ids, fb.ID)
		}

		items, total, err := store.List(ctx, interfaces.FeedbackListOptions{Page: 1, PageSize: 5})
		require.NoError(t, err)
		assert.Equal(t, 12, total)
		require.Len(t, items, 5)
		assert.Equal(t, ids[11], items[0].ID)

		items, _, err = store.List(ctx, interfaces.FeedbackListOptions{Page: 3, PageSize: 5})
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, ids[0], items[1].ID)

		items, total, err = store.List(ctx, interfaces.FeedbackListOptions{Page: 4, PageSize: 5})
		require.NoError(t, err)
		assert.Equal(t, 12, total)
		assert.Empty(t, items)
	})

	t.Run("UpdateModeratedFields", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		fb := Review("Volvo", "??!!")
		require.NoError(t, store.Create(ctx, fb))

		fb.TranslatedText = "Reliable car"
		fb.Sentiment = models.SentimentPositive
		fb.Status = models.FeedbackStatusPublished
		fb.WasReviewed = true
		fb.OriginalText = "must not change"
		require.NoError(t, store.Update(ctx, fb))

		got, err := store.Get(ctx, fb.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Reliable car", got.TranslatedText)
		assert.Equal(t, models.SentimentPositive, got.Sentiment)
		assert.Equal(t, models.FeedbackStatusPublished, got.Status)
		assert.True(t, got.WasReviewed)
		assert.Equal(t, "??!!", got.OriginalText)
		assert.Equal(t, models.LanguageReview, got.OriginalLanguage)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		fb := Review("Volvo", "gone")
		require.NoError(t, store.Create(ctx, fb))
		require.NoError(t, store.Delete(ctx, fb.ID))

		fb.TranslatedText = "Too late"
		fb.Status = models.FeedbackStatusPublished
		assert.ErrorIs(t, store.Update(ctx, fb), interfaces.ErrFeedbackNotFound)

		got, err := store.Get(ctx, fb.ID)
		require.NoError(t, err)
		assert.Nil(t, got, "update must not recreate a deleted item")
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		fb := Published("Jeep", "en", models.SentimentNegative, "Delete me")
		require.NoError(t, store.Create(ctx, fb))
		require.NoError(t, store.Delete(ctx, fb.ID))

		got, err := store.Get(ctx, fb.ID)
		assert.NoError(t, err)
		assert.Nil(t, got)

		assert.NoError(t, store.Delete(ctx, fb.ID), "deleting a missing item is not an error")
	})

	t.Run("SentimentCounts", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		for _, s := range []string{models.SentimentPositive, models.SentimentPositive, models.SentimentNegative} {
			require.NoError(t, store.Create(ctx, Published("Tesla", "en", s, "x")))
		}
		reviewed := Review("Tesla", "y")
		require.NoError(t, store.Create(ctx, reviewed))

		counts, err := store.SentimentCounts(ctx, interfaces.StatsOptions{})
		require.NoError(t, err)
		assert.Equal(t, 2, counts[models.SentimentPositive])
		assert.Equal(t, 1, counts[models.SentimentNegative])
		assert.Equal(t, 0, counts[models.SentimentNeutral])
		assert.Equal(t, 1, counts[models.SentimentUnknown])

		reviewed.Sentiment = models.SentimentNeutral
		reviewed.TranslatedText = "ok"
		require.NoError(t, store.Update(ctx, reviewed))

		counts, err = store.SentimentCounts(ctx, interfaces.StatsOptions{PublishedOnly: true})
		require.NoError(t, err)
		assert.Equal(t, 0, counts[models.SentimentNeutral], "still in review")
		assert.Equal(t, 2, counts[models.SentimentPositive])
	})
}
