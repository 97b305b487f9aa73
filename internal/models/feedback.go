package models

import (
	"time"
)

// Feedback is a single customer comment about a car brand together with
// the classifier's (or a moderator's) reading of it.
type Feedback struct {
	ID               string    `json:"id" db:"id"`
	Product          string    `json:"product" db:"product"`
	OriginalText     string    `json:"original_text" db:"original_text"`
	OriginalLanguage string    `json:"original_language" db:"original_language"`
	TranslatedText   string    `json:"translated_text" db:"translated_text"`
	Sentiment        string    `json:"sentiment" db:"sentiment"`
	Status           string    `json:"status" db:"status"`
	WasReviewed      bool      `json:"was_reviewed" db:"was_reviewed"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// Editable reports whether a moderator may correct this item.
// Review items are always editable; published items only once they have
// already been through moderation.
func (f *Feedback) Editable() bool {
	switch f.Status {
	case FeedbackStatusReview:
		return true
	case FeedbackStatusPublished:
		return f.WasReviewed
	}
	return false
}

// FeedbackPage is one page of a filtered feedback listing.
type FeedbackPage struct {
	Items      []*Feedback `json:"items"`
	TotalCount int         `json:"total_count"`
}

// StatsSnapshot holds sentiment counts across the whole corpus.
type StatsSnapshot struct {
	PositiveCount      int     `json:"positive_count"`
	NeutralCount       int     `json:"neutral_count"`
	NegativeCount      int     `json:"negative_count"`
	TotalCount         int     `json:"total_count"`
	PositivePercentage float64 `json:"positive_percentage"`
	NeutralPercentage  float64 `json:"neutral_percentage"`
	NegativePercentage float64 `json:"negative_percentage"`
}

// NewStatsSnapshot derives totals and percentages from raw sentiment counts.
func NewStatsSnapshot(positive, neutral, negative int) *StatsSnapshot {
	s := &StatsSnapshot{
		PositiveCount: positive,
		NeutralCount:  neutral,
		NegativeCount: negative,
		TotalCount:    positive + neutral + negative,
	}
	if s.TotalCount > 0 {
		total := float64(s.TotalCount)
		s.PositivePercentage = float64(positive) / total * 100
		s.NeutralPercentage = float64(neutral) / total * 100
		s.NegativePercentage = float64(negative) / total * 100
	}
	return s
}

// Feedback status constants.
const (
	FeedbackStatusReview    = "review"
	FeedbackStatusPublished = "published"
)

// Sentiment constants. SentimentUnknown is only ever written by the
// classifier for items it could not read.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
	SentimentUnknown  = "unknown"
)

// Language markers that are not ISO codes.
const (
	LanguageReview  = "review"
	LanguageUnknown = "un"
	LanguageOthers  = "Others"
)

// FilterAll is the wildcard filter value. It is never sent to the store.
const FilterAll = "All"

// UntranslatableText is the placeholder translation for review items.
const UntranslatableText = "Cannot be translated"

// Products is the fixed list of brands feedback can be filed against.
// The first entry is the default selection.
var Products = []string{
	"Acura", "Audi", "BMW", "Cadillac", "Chevrolet",
	"Ferrari", "Ford", "GMC", "Honda", "Hyundai",
	"Jaguar", "Jeep", "Kia", "Lamborghini", "Land Rover",
	"Lexus", "Mazda", "Mercedes-Benz", "Nissan",
	"Porsche", "Subaru", "Tesla", "Toyota", "Volkswagen", "Volvo",
}

// DefaultProduct returns the product preselected on an empty form.
func DefaultProduct() string {
	return Products[0]
}

// SentimentOptions are the sentiment filter choices, wildcard first.
var SentimentOptions = []string{FilterAll, SentimentPositive, SentimentNegative, SentimentNeutral}

// LanguageOption is a language filter choice with its display name.
type LanguageOption struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// LanguageOptions are the language filter choices, wildcard first.
var LanguageOptions = []LanguageOption{
	{Name: "All Languages", Code: FilterAll},
	{Name: "English", Code: "en"},
	{Name: "French", Code: "fr"},
	{Name: "Spanish", Code: "es"},
	{Name: "German", Code: "de"},
	{Name: "Japanese", Code: "ja"},
	{Name: "Chinese (Mandarin)", Code: "zh"},
	{Name: "Russian", Code: "ru"},
	{Name: "Arabic", Code: "ar"},
	{Name: "Portuguese", Code: "pt"},
	{Name: "Italian", Code: "it"},
	{Name: "To Be Reviewed", Code: LanguageReview},
	{Name: "Other Languages", Code: LanguageOthers},
}

// KnownLanguageCodes are the languages with a dedicated filter entry.
// The Others filter matches everything outside this set and review.
var KnownLanguageCodes = []string{"en", "fr", "es", "de", "ja", "zh", "ru", "ar", "pt", "it"}

// ValidProducts is the set of allowed product values.
var ValidProducts = toSet(Products)

// ValidSentiments is the set of sentiments a moderator may assign.
var ValidSentiments = map[string]bool{
	SentimentPositive: true,
	SentimentNeutral:  true,
	SentimentNegative: true,
}

// ValidSentimentFilters is the set of allowed sentiment filter values.
var ValidSentimentFilters = toSet(SentimentOptions)

// ValidLanguageFilters is the set of allowed language filter values.
var ValidLanguageFilters = func() map[string]bool {
	m := make(map[string]bool, len(LanguageOptions))
	for _, o := range LanguageOptions {
		m[o.Code] = true
	}
	return m
}()

// ValidFeedbackStatuses is the set of allowed status values.
var ValidFeedbackStatuses = map[string]bool{
	FeedbackStatusReview:    true,
	FeedbackStatusPublished: true,
}

func toSet(values []string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}
