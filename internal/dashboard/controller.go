// Package dashboard is the client-side core of the feedback dashboard:
// filter and pagination state, the admin session gate, the two fetch
// coordinators and the submit, moderate and delete workflows.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/bobmcallan/carfeed/internal/common"
	"github.com/bobmcallan/carfeed/internal/interfaces"
	"github.com/bobmcallan/carfeed/internal/models"
)

// Draft is the submission form.
type Draft struct {
	Text    string
	Product string
}

// EditDraft is an open moderation edit. ID and OriginalText are read-only.
type EditDraft struct {
	ID             string
	OriginalText   string
	TranslatedText string
	Sentiment      string
	Saving         bool
}

// State is the full dashboard state as seen by a view.
type State struct {
	Filter  Filter
	IsAdmin bool

	Items          []*models.Feedback
	TotalCount     int
	TotalPages     int
	FeedbackLoaded bool

	Stats       *models.StatsSnapshot
	StatsLoaded bool

	Draft      Draft
	Submitting bool

	Edit    *EditDraft
	Message *Message
}

// Controller owns the dashboard state. All mutation happens under mu;
// remote calls run without it.
type Controller struct {
	api        interfaces.FeedbackAPI
	persist    Persistence
	logger     *common.Logger
	clock      Clock
	messageTTL time.Duration
	bus        *Bus

	mu    sync.Mutex
	ctx   context.Context
	state State
	token string

	feedbackGen uint64
	statsGen    uint64

	msgSeq   uint64
	msgTimer Timer

	wg     sync.WaitGroup
	unsubs []func()
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithClock replaces the wall clock used for message expiry.
func WithClock(clock Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

// WithMessageTTL sets how long transient messages stay visible.
func WithMessageTTL(ttl time.Duration) Option {
	return func(c *Controller) {
		if ttl > 0 {
			c.messageTTL = ttl
		}
	}
}

// New creates a controller. Call Start before use.
func New(api interfaces.FeedbackAPI, persist Persistence, opts ...Option) *Controller {
	c := &Controller{
		api:        api,
		persist:    persist,
		logger:     common.NewSilentLogger(),
		clock:      realClock{},
		messageTTL: DefaultMessageTTL,
		bus:        NewBus(),
		ctx:        context.Background(),
		state: State{
			Filter: DefaultFilter(),
			Draft:  Draft{Product: models.DefaultProduct()},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start restores the admin session, wires the coordinators to the bus and
// issues the initial fetches. ctx bounds every background request.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	c.restoreSession()

	c.unsubs = append(c.unsubs,
		c.bus.Subscribe(func(e Event) {
			switch e {
			case DataChanged:
				c.refreshFeedback()
				c.refreshStats()
			case SessionChanged:
				c.refreshFeedback()
			}
		}),
	)

	c.refreshFeedback()
	c.refreshStats()
}

// Close detaches the coordinators and waits for in-flight fetches.
func (c *Controller) Close() {
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil
	c.Wait()

	c.mu.Lock()
	if c.msgTimer != nil {
		c.msgTimer.Stop()
	}
	c.mu.Unlock()
}

// Wait blocks until every in-flight fetch has been applied or discarded.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Subscribe lets a view react to bus events.
func (c *Controller) Subscribe(handler func(Event)) func() {
	return c.bus.Subscribe(handler)
}

// Refresh re-runs both coordinators.
func (c *Controller) Refresh() {
	c.bus.Publish(DataChanged)
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	if c.state.Items != nil {
		s.Items = make([]*models.Feedback, len(c.state.Items))
		for i, item := range c.state.Items {
			cp := *item
			s.Items[i] = &cp
		}
	}
	if c.state.Stats != nil {
		stats := *c.state.Stats
		s.Stats = &stats
	}
	if c.state.Edit != nil {
		edit := *c.state.Edit
		s.Edit = &edit
	}
	if c.state.Message != nil {
		msg := *c.state.Message
		s.Message = &msg
	}
	return s
}

// Item returns a copy of the listed item with id, or nil.
func (c *Controller) Item(id string) *models.Feedback {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.state.Items {
		if item.ID == id {
			cp := *item
			return &cp
		}
	}
	return nil
}

// SetProduct changes the product filter.
func (c *Controller) SetProduct(product string) error {
	return c.updateFilter(func(f Filter, _ int) (Filter, error) { return f.WithProduct(product) })
}

// SetSentiment changes the sentiment filter.
func (c *Controller) SetSentiment(sentiment string) error {
	return c.updateFilter(func(f Filter, _ int) (Filter, error) { return f.WithSentiment(sentiment) })
}

// SetLanguage changes the language filter.
func (c *Controller) SetLanguage(language string) error {
	return c.updateFilter(func(f Filter, _ int) (Filter, error) { return f.WithLanguage(language) })
}

// SetPage jumps to a page within the latest page count.
func (c *Controller) SetPage(page int) error {
	return c.updateFilter(func(f Filter, totalPages int) (Filter, error) { return f.WithPage(page, totalPages) })
}

// NextPage advances one page; a no-op on the last page.
func (c *Controller) NextPage() {
	c.updateFilter(func(f Filter, totalPages int) (Filter, error) { return f.Next(totalPages), nil })
}

// PrevPage goes back one page; a no-op on the first page.
func (c *Controller) PrevPage() {
	c.updateFilter(func(f Filter, _ int) (Filter, error) { return f.Prev(), nil })
}

// updateFilter applies a transition to the filter and the latest page count
// under one lock, then refetches when the filter changed. The transition
// must not call back into the controller.
func (c *Controller) updateFilter(transition func(f Filter, totalPages int) (Filter, error)) error {
	c.mu.Lock()
	next, err := transition(c.state.Filter, c.state.TotalPages)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	changed := next != c.state.Filter
	c.state.Filter = next
	c.mu.Unlock()

	if changed {
		c.refreshFeedback()
	}
	return nil
}
