// Package classifier reads submitted feedback through Gemini: language,
// English translation and sentiment.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bobmcallan/carfeed/internal/common"
	"github.com/bobmcallan/carfeed/internal/interfaces"
	"github.com/bobmcallan/carfeed/internal/models"
)

const promptTemplate = `Analyze the following customer feedback text. Provide the analysis in a strict JSON format with four keys:
1. "is_translatable": a boolean indicating if the text is meaningful and translatable.
2. "language": the detected language name in English (e.g. "French"). If is_translatable is false, this should be "unknown".
3. "translated_text": the English translation. If is_translatable is false, this should be "Cannot be translated".
4. "sentiment": either "positive", "negative", or "neutral". If is_translatable is false, this should be "unknown".

Text: %s`

// Service implements interfaces.Classifier
type Service struct {
	gemini interfaces.GeminiClient
	logger *common.Logger
}

// NewService creates a classifier. A nil gemini client sends every
// submission to review.
func NewService(gemini interfaces.GeminiClient, logger *common.Logger) *Service {
	return &Service{gemini: gemini, logger: logger}
}

// rawAnalysis is the model's JSON reply before normalisation.
type rawAnalysis struct {
	Translatable   bool   `json:"is_translatable"`
	Language       string `json:"language"`
	TranslatedText string `json:"translated_text"`
	Sentiment      string `json:"sentiment"`
}

// Analyze never fails: anything it cannot read goes to review.
func (s *Service) Analyze(ctx context.Context, text string) *models.Analysis {
	if s.gemini == nil {
		s.logger.Debug().Msg("No classifier configured, sending feedback to review")
		return models.ReviewAnalysis()
	}

	quoted, _ := json.Marshal(text)
	reply, err := s.gemini.GenerateJSON(ctx, fmt.Sprintf(promptTemplate, quoted))
	if err != nil {
		s.logger.Warn().Err(err).Msg("Classifier request failed, sending feedback to review")
		return models.ReviewAnalysis()
	}

	raw, err := parseReply(reply)
	if err != nil {
		s.logger.Warn().Err(err).Str("reply", reply).Msg("Classifier reply unreadable, sending feedback to review")
		return models.ReviewAnalysis()
	}

	return normalize(raw)
}

// parseReply strips markdown code fences before decoding.
func parseReply(reply string) (*rawAnalysis, error) {
	clean := strings.TrimSpace(reply)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(clean), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse classifier reply: %w", err)
	}
	return &raw, nil
}

// normalize maps the model's reply onto stored values. Untranslatable text,
// an empty translation or a sentiment outside the three allowed values all
// count as low confidence.
func normalize(raw *rawAnalysis) *models.Analysis {
	if !raw.Translatable {
		return models.ReviewAnalysis()
	}

	sentiment := strings.ToLower(strings.TrimSpace(raw.Sentiment))
	translated := strings.TrimSpace(raw.TranslatedText)
	if !models.ValidSentiments[sentiment] || translated == "" {
		return models.ReviewAnalysis()
	}

	return &models.Analysis{
		Translatable:   true,
		Language:       LanguageCode(raw.Language),
		TranslatedText: translated,
		Sentiment:      sentiment,
	}
}

// Compile-time check
var _ interfaces.Classifier = (*Service)(nil)
