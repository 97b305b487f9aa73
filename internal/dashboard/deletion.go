package dashboard

import (
	"context"
	"fmt"
)

// DeletePrompt is the confirmation question shown before a delete.
const DeletePrompt = "Are you sure you want to delete this feedback?"

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Delete removes an item after confirmation. It reports whether a delete
// was performed; a declined prompt returns false, nil.
func (c *Controller) Delete(ctx context.Context, id string, confirmer Confirmer) (bool, error) {
	c.mu.Lock()
	isAdmin, token := c.state.IsAdmin, c.token
	c.mu.Unlock()

	if !isAdmin {
		return false, ErrAdminRequired
	}
	if id == "" {
		return false, validationError("id", "feedback id is required")
	}
	if confirmer == nil || !confirmer.Confirm(DeletePrompt) {
		return false, nil
	}

	if err := c.api.DeleteFeedback(ctx, token, id); err != nil {
		c.show(MsgDeleteFailed, MessageError)
		c.logger.Error().Err(err).Str("id", id).Msg("Failed to delete feedback")
		if isUnauthorized(err) {
			c.expireSession()
		}
		return false, fmt.Errorf("delete feedback %s: %w", id, err)
	}

	c.mu.Lock()
	if c.state.Edit != nil && c.state.Edit.ID == id {
		c.state.Edit = nil
	}
	c.showLocked(MsgDeleted, MessageSuccess)
	c.mu.Unlock()

	c.logger.Info().Str("id", id).Msg("Feedback deleted")
	c.bus.Publish(DataChanged)
	return true, nil
}
