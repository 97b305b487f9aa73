package dashboard

import (
	"time"
)

// DefaultMessageTTL is how long a transient message stays visible.
const DefaultMessageTTL = 5 * time.Second

// User-facing message texts.
const (
	MsgSubmittedReview    = "Thank you! Your feedback is being reviewed by an admin."
	MsgSubmittedPublished = "Thank you for your feedback!"
	MsgSubmitFailed       = "Sorry, something went wrong. Please try again."
	MsgLoginFailed        = "Incorrect password."
	MsgDeleteFailed       = "Could not delete feedback."
	MsgUpdateFailed       = "Could not update feedback."
	MsgUpdated            = "Feedback updated and published."
	MsgDeleted            = "Feedback deleted."
	MsgLoadFailed         = "Could not load feedback."
	MsgStatsFailed        = "Could not load sentiment statistics."
	MsgSessionExpired     = "Your admin session has expired. Please log in again."
)

// MessageKind drives how the view styles a message.
type MessageKind string

const (
	MessageSuccess MessageKind = "success"
	MessageReview  MessageKind = "review"
	MessageError   MessageKind = "error"
)

// Message is a transient notice. It clears itself after the TTL unless a
// newer message replaced it first.
type Message struct {
	Text string
	Kind MessageKind
	Seq  uint64
}

// Timer is the cancel handle returned by Clock.AfterFunc.
type Timer interface {
	Stop() bool
}

// Clock schedules the message expiry. Tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// showLocked replaces the current message and schedules its expiry.
// Caller holds c.mu.
func (c *Controller) showLocked(text string, kind MessageKind) {
	c.msgSeq++
	seq := c.msgSeq
	c.state.Message = &Message{Text: text, Kind: kind, Seq: seq}

	if c.msgTimer != nil {
		c.msgTimer.Stop()
	}
	c.msgTimer = c.clock.AfterFunc(c.messageTTL, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		// A newer message owns the slot now
		if c.state.Message != nil && c.state.Message.Seq == seq {
			c.state.Message = nil
		}
	})
}

// show is showLocked for callers not holding the lock.
func (c *Controller) show(text string, kind MessageKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showLocked(text, kind)
}
