package main

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/carfeed/internal/dashboard"
	"github.com/bobmcallan/carfeed/internal/models"
)

// maxTextWidth truncates long comments in the list table.
const maxTextWidth = 60

// languageName maps a language code to its filter display name.
func languageName(code string) string {
	for _, o := range models.LanguageOptions {
		if o.Code == code && code != models.FilterAll {
			return o.Name
		}
	}
	if code == models.LanguageUnknown {
		return "Unknown"
	}
	return code
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// escapeCell keeps user text from breaking the table.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// formatFeedbackList formats the current page as a markdown table
func formatFeedbackList(s dashboard.State) string {
	var sb strings.Builder

	if !s.FeedbackLoaded {
		sb.WriteString("Loading feedback...\n\n")
		return sb.String()
	}

	pages := s.TotalPages
	if pages == 0 {
		pages = 1
	}
	sb.WriteString(fmt.Sprintf("## Feedback (page %d of %d, %d total)\n\n", s.Filter.Page, pages, s.TotalCount))
	sb.WriteString(fmt.Sprintf("Filters: product=%s sentiment=%s language=%s\n\n",
		s.Filter.Product, s.Filter.Sentiment, languageName(s.Filter.Language)))

	if len(s.Items) == 0 {
		sb.WriteString("No feedback matches these filters.\n\n")
		return sb.String()
	}

	if s.IsAdmin {
		sb.WriteString("| # | Product | Language | Sentiment | Status | Feedback | ID |\n")
		sb.WriteString("|---|---------|----------|-----------|--------|----------|----|\n")
	} else {
		sb.WriteString("| # | Product | Language | Sentiment | Feedback |\n")
		sb.WriteString("|---|---------|----------|-----------|----------|\n")
	}

	for i, item := range s.Items {
		text := item.OriginalText
		if item.TranslatedText != "" && item.TranslatedText != item.OriginalText {
			text = fmt.Sprintf("%s (%s)", item.OriginalText, item.TranslatedText)
		}
		text = escapeCell(truncate(text, maxTextWidth))

		if s.IsAdmin {
			status := item.Status
			if item.Editable() {
				status += " *"
			}
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s | %s |\n",
				i+1, item.Product, languageName(item.OriginalLanguage), item.Sentiment, status, text, item.ID))
		} else {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
				i+1, item.Product, languageName(item.OriginalLanguage), item.Sentiment, text))
		}
	}
	if s.IsAdmin {
		sb.WriteString("\n`*` editable\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

// formatStats formats the sentiment aggregate
func formatStats(stats *models.StatsSnapshot, loaded bool) string {
	if !loaded || stats == nil {
		return "Loading statistics...\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Sentiment (%d total)\n\n", stats.TotalCount))
	sb.WriteString("| Sentiment | Count | Share |\n")
	sb.WriteString("|-----------|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Positive | %d | %.1f%% |\n", stats.PositiveCount, stats.PositivePercentage))
	sb.WriteString(fmt.Sprintf("| Neutral | %d | %.1f%% |\n", stats.NeutralCount, stats.NeutralPercentage))
	sb.WriteString(fmt.Sprintf("| Negative | %d | %.1f%% |\n", stats.NegativeCount, stats.NegativePercentage))
	sb.WriteString("\n")
	return sb.String()
}

// formatEdit shows the open moderation draft.
func formatEdit(e *dashboard.EditDraft) string {
	if e == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Editing %s\n", e.ID))
	sb.WriteString(fmt.Sprintf("  Original:    %s\n", e.OriginalText))
	sb.WriteString(fmt.Sprintf("  Translation: %s\n", e.TranslatedText))
	sb.WriteString(fmt.Sprintf("  Sentiment:   %s\n", e.Sentiment))
	sb.WriteString("Use 'translation', 'sentiment', then 'commit' or 'cancel'.\n")
	return sb.String()
}

func formatMessage(m *dashboard.Message) string {
	if m == nil {
		return ""
	}
	switch m.Kind {
	case dashboard.MessageError:
		return "! " + m.Text + "\n"
	case dashboard.MessageReview:
		return "~ " + m.Text + "\n"
	}
	return "> " + m.Text + "\n"
}
