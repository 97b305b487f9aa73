package models

// Analysis is the classifier's reading of a piece of feedback.
type Analysis struct {
	Translatable   bool   `json:"is_translatable"`
	Language       string `json:"language"`
	TranslatedText string `json:"translated_text"`
	Sentiment      string `json:"sentiment"`
}

// NeedsReview reports whether the analysis must go to a moderator.
func (a *Analysis) NeedsReview() bool {
	return a == nil || a.Language == LanguageReview
}

// ReviewAnalysis is the analysis recorded when the classifier cannot read
// the text or fails outright.
func ReviewAnalysis() *Analysis {
	return &Analysis{
		Language:       LanguageReview,
		TranslatedText: UntranslatableText,
		Sentiment:      SentimentUnknown,
	}
}
