package dashboard

import (
	"github.com/bobmcallan/carfeed/internal/models"
)

// refreshFeedback issues a list request for the current filter and admin
// mode. Only the response to the latest request is applied.
func (c *Controller) refreshFeedback() {
	c.mu.Lock()
	c.feedbackGen++
	gen := c.feedbackGen
	q := c.state.Filter.Query(c.state.IsAdmin, c.token)
	ctx := c.ctx
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()

		page, err := c.api.ListFeedback(ctx, q)

		c.mu.Lock()
		if gen != c.feedbackGen {
			c.mu.Unlock()
			c.logger.Trace().Uint64("generation", gen).Msg("Discarding stale feedback response")
			return
		}
		if err != nil {
			// Keep whatever is on screen
			c.showLocked(MsgLoadFailed, MessageError)
			c.mu.Unlock()
			c.logger.Error().Err(err).Int("page", q.Page).Msg("Failed to fetch feedback")
			if q.ShowAll && isUnauthorized(err) {
				c.expireSession()
			}
			return
		}

		items := page.Items
		if items == nil {
			items = []*models.Feedback{}
		}
		c.state.Items = items
		c.state.TotalCount = page.TotalCount
		c.state.TotalPages = TotalPages(page.TotalCount, PageSize)
		c.state.FeedbackLoaded = true
		c.mu.Unlock()

		c.logger.Debug().Int("items", len(items)).Int("total", page.TotalCount).Msg("Feedback loaded")
	}()
}

// refreshStats fetches the sentiment aggregate. Failures keep the previous
// snapshot.
func (c *Controller) refreshStats() {
	c.mu.Lock()
	c.statsGen++
	gen := c.statsGen
	ctx := c.ctx
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()

		stats, err := c.api.Stats(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.statsGen {
			return
		}
		if err != nil {
			c.showLocked(MsgStatsFailed, MessageError)
			c.logger.Error().Err(err).Msg("Failed to fetch stats")
			return
		}
		c.state.Stats = stats
		c.state.StatsLoaded = true
	}()
}
