package classifier

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bobmcallan/carfeed/internal/common"
	"github.com/bobmcallan/carfeed/internal/models"
	"github.com/stretchr/testify/assert"
)

// mockGemini returns a canned reply and records the prompt.
type mockGemini struct {
	reply  string
	err    error
	prompt string
}

func (m *mockGemini) GenerateJSON(_ context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.reply, m.err
}

func newTestService(g *mockGemini) *Service {
	if g == nil {
		return NewService(nil, common.NewSilentLogger())
	}
	return NewService(g, common.NewSilentLogger())
}

func TestAnalyze_FencedJSON(t *testing.T) {
	g := &mockGemini{reply: "```json\n{\"is_translatable\": true, \"language\": \"French\", \"translated_text\": \"Very good car\", \"sentiment\": \"Positive\"}\n```"}
	svc := newTestService(g)

	a := svc.Analyze(context.Background(), "Très bonne voiture")

	assert.False(t, a.NeedsReview())
	assert.Equal(t, "fr", a.Language)
	assert.Equal(t, "Very good car", a.TranslatedText)
	assert.Equal(t, models.SentimentPositive, a.Sentiment)
	assert.Contains(t, g.prompt, `"Très bonne voiture"`)
}

func TestAnalyze_NotTranslatable(t *testing.T) {
	g := &mockGemini{reply: `{"is_translatable": false, "language": "unknown", "translated_text": "Cannot be translated", "sentiment": "unknown"}`}
	a := newTestService(g).Analyze(context.Background(), "asdfgh")

	assert.True(t, a.NeedsReview())
	assert.Equal(t, models.LanguageReview, a.Language)
	assert.Equal(t, models.UntranslatableText, a.TranslatedText)
	assert.Equal(t, models.SentimentUnknown, a.Sentiment)
}

func TestAnalyze_ErrorsGoToReview(t *testing.T) {
	tests := []struct {
		name string
		g    *mockGemini
	}{
		{"no client", nil},
		{"api error", &mockGemini{err: errors.New("quota exceeded")}},
		{"garbage reply", &mockGemini{reply: "I think this is French"}},
		{"invalid sentiment", &mockGemini{reply: `{"is_translatable": true, "language": "English", "translated_text": "ok", "sentiment": "mixed"}`}},
		{"empty translation", &mockGemini{reply: `{"is_translatable": true, "language": "English", "translated_text": " ", "sentiment": "neutral"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestService(tt.g).Analyze(context.Background(), "text")
			assert.True(t, a.NeedsReview())
			assert.Equal(t, models.ReviewAnalysis(), a)
		})
	}
}

func TestAnalyze_UnknownLanguageName(t *testing.T) {
	g := &mockGemini{reply: `{"is_translatable": true, "language": "Klingon", "translated_text": "Today is a good day", "sentiment": "positive"}`}
	a := newTestService(g).Analyze(context.Background(), "Heghlu'meH QaQ jajvam")

	assert.False(t, a.NeedsReview())
	assert.Equal(t, models.LanguageUnknown, a.Language)
}

func TestLanguageCode(t *testing.T) {
	tests := map[string]string{
		"French":             "fr",
		"english":            "en",
		" Spanish ":          "es",
		"German":             "de",
		"Japanese":           "ja",
		"Chinese":            "zh",
		"Chinese (Mandarin)": "zh",
		"Mandarin":           "zh",
		"Russian":            "ru",
		"Arabic":             "ar",
		"Portuguese":         "pt",
		"Italian":            "it",
		"Swedish":            "sv",
		"pt":                 "pt",
		"":                   "un",
		"Unknown":            "un",
		"undetermined":       "un",
		"Elvish":             "un",
	}

	for name, want := range tests {
		t.Run(strings.TrimSpace(name)+"_"+want, func(t *testing.T) {
			assert.Equal(t, want, LanguageCode(name))
		})
	}
}
