package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobmcallan/carfeed/internal/models"
)

// BeginEdit opens a moderation draft for item.
func (c *Controller) BeginEdit(item *models.Feedback) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.IsAdmin {
		return ErrAdminRequired
	}
	if item == nil || !item.Editable() {
		return ErrNotEditable
	}

	translation := item.TranslatedText
	if translation == models.UntranslatableText {
		translation = ""
	}
	sentiment := item.Sentiment
	if !models.ValidSentiments[sentiment] {
		sentiment = models.SentimentNeutral
	}

	c.state.Edit = &EditDraft{
		ID:             item.ID,
		OriginalText:   item.OriginalText,
		TranslatedText: translation,
		Sentiment:      sentiment,
	}
	return nil
}

// SetDraftTranslation edits the draft translation.
func (c *Controller) SetDraftTranslation(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Edit == nil {
		return ErrNotEditing
	}
	c.state.Edit.TranslatedText = text
	return nil
}

// SetDraftSentiment edits the draft sentiment.
func (c *Controller) SetDraftSentiment(sentiment string) error {
	if !models.ValidSentiments[sentiment] {
		return validationError("sentiment", "must be positive, neutral or negative")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Edit == nil {
		return ErrNotEditing
	}
	c.state.Edit.Sentiment = sentiment
	return nil
}

// CancelEdit discards the open draft without contacting the server.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Edit = nil
}

// CommitEdit sends the draft. On failure the draft stays open, including
// when the server ends the session; it can be sent again after Login.
func (c *Controller) CommitEdit(ctx context.Context) error {
	c.mu.Lock()
	edit := c.state.Edit
	switch {
	case !c.state.IsAdmin:
		c.mu.Unlock()
		return ErrAdminRequired
	case edit == nil:
		c.mu.Unlock()
		return ErrNotEditing
	case edit.Saving:
		c.mu.Unlock()
		return ErrBusy
	}
	if strings.TrimSpace(edit.TranslatedText) == "" {
		c.mu.Unlock()
		return validationError("translated_text", "translation is required")
	}
	edit.Saving = true
	id, translation, sentiment := edit.ID, edit.TranslatedText, edit.Sentiment
	token := c.token
	c.mu.Unlock()

	_, err := c.api.UpdateFeedback(ctx, token, id, translation, sentiment)

	c.mu.Lock()
	if c.state.Edit != nil && c.state.Edit.ID == id {
		c.state.Edit.Saving = false
	}
	if err != nil {
		c.showLocked(MsgUpdateFailed, MessageError)
		c.mu.Unlock()
		c.logger.Error().Err(err).Str("id", id).Msg("Failed to update feedback")
		if isUnauthorized(err) {
			c.expireSession()
		}
		return fmt.Errorf("update feedback %s: %w", id, err)
	}
	c.state.Edit = nil
	c.showLocked(MsgUpdated, MessageSuccess)
	c.mu.Unlock()

	c.logger.Info().Str("id", id).Str("sentiment", sentiment).Msg("Feedback moderated")
	c.bus.Publish(DataChanged)
	return nil
}
