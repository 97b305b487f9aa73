package dashboard

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/carfeed/internal/clients/feedbackapi"
	"github.com/bobmcallan/carfeed/internal/interfaces"
	"github.com/bobmcallan/carfeed/internal/models"
	"github.com/bobmcallan/carfeed/internal/storage/localstate"
)

const testPassword = "admin123"

// fakeAPI is an in-memory remote store.
type fakeAPI struct {
	mu sync.Mutex

	items  []*models.Feedback
	nextID int
	stats  *models.StatsSnapshot

	createStatus string

	listErr   error
	createErr error
	updateErr error
	deleteErr error
	statsErr  error

	// createGate, when set, holds CreateFeedback until closed.
	createGate chan struct{}

	// listFunc, when set, replaces the in-memory list.
	listFunc func(ctx context.Context, q interfaces.FeedbackQuery) (*models.FeedbackPage, error)

	listCalls   []interfaces.FeedbackQuery
	createCalls int
	updateCalls []updateCall
	deleteCalls []string
	statsCalls  int
	loginCalls  int
}

type updateCall struct {
	Token, ID, TranslatedText, Sentiment string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		createStatus: models.FeedbackStatusPublished,
		stats:        models.NewStatsSnapshot(0, 0, 0),
	}
}

func (f *fakeAPI) add(fb *models.Feedback) *models.Feedback {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	if fb.ID == "" {
		fb.ID = fmt.Sprintf("%d", f.nextID)
	}
	fb.CreatedAt = time.Date(2026, 1, 1, 0, 0, f.nextID, 0, time.UTC)
	f.items = append(f.items, fb)
	return fb
}

func (f *fakeAPI) ListFeedback(ctx context.Context, q interfaces.FeedbackQuery) (*models.FeedbackPage, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, q)
	listFunc, listErr := f.listFunc, f.listErr
	f.mu.Unlock()

	if listFunc != nil {
		return listFunc(ctx, q)
	}
	if listErr != nil {
		return nil, listErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*models.Feedback
	for _, item := range f.items {
		if !q.ShowAll && item.Status == models.FeedbackStatusReview {
			continue
		}
		if q.Product != "" && item.Product != q.Product {
			continue
		}
		if q.Sentiment != "" && item.Sentiment != q.Sentiment {
			continue
		}
		if q.Language != "" && item.OriginalLanguage != q.Language {
			continue
		}
		cp := *item
		matched = append(matched, &cp)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	start := (q.Page - 1) * q.PageSize
	end := start + q.PageSize
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}
	return &models.FeedbackPage{Items: matched[start:end], TotalCount: len(matched)}, nil
}

func (f *fakeAPI) CreateFeedback(ctx context.Context, originalText, product string) (*models.Feedback, error) {
	f.mu.Lock()
	f.createCalls++
	err, status, gate := f.createErr, f.createStatus, f.createGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}

	fb := &models.Feedback{
		Product:          product,
		OriginalText:     originalText,
		OriginalLanguage: "en",
		TranslatedText:   originalText,
		Sentiment:        models.SentimentPositive,
		Status:           status,
	}
	if status == models.FeedbackStatusReview {
		fb.OriginalLanguage = models.LanguageReview
		fb.TranslatedText = models.UntranslatableText
		fb.Sentiment = models.SentimentUnknown
	}
	cp := *f.add(fb)
	return &cp, nil
}

func (f *fakeAPI) UpdateFeedback(ctx context.Context, token, id, translatedText, sentiment string) (*models.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls = append(f.updateCalls, updateCall{token, id, translatedText, sentiment})
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for _, item := range f.items {
		if item.ID == id {
			item.TranslatedText = translatedText
			item.Sentiment = sentiment
			item.Status = models.FeedbackStatusPublished
			item.WasReviewed = true
			cp := *item
			return &cp, nil
		}
	}
	return nil, &feedbackapi.APIError{StatusCode: 404, Message: "feedback not found"}
}

func (f *fakeAPI) DeleteFeedback(ctx context.Context, token, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, item := range f.items {
		if item.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeAPI) Stats(ctx context.Context) (*models.StatsSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsCalls++
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	cp := *f.stats
	return &cp, nil
}

func (f *fakeAPI) Login(ctx context.Context, password string) (*models.Session, error) {
	f.mu.Lock()
	f.loginCalls++
	f.mu.Unlock()
	if password != testPassword {
		return nil, &feedbackapi.APIError{StatusCode: 401, Message: "invalid credentials", Endpoint: "/api/auth/login"}
	}
	exp := time.Now().Add(time.Hour)
	return &models.Session{Token: signedToken(exp), ExpiresAt: exp}, nil
}

func (f *fakeAPI) lastList() interfaces.FeedbackQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls[len(f.listCalls)-1]
}

func (f *fakeAPI) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listCalls)
}

func signedToken(exp time.Time) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "admin",
		"role": models.RoleAdmin,
		"exp":  exp.Unix(),
	})
	s, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		panic(err)
	}
	return s
}

// manualClock fires timers only when advanced.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

// newTestController starts a controller over api with an in-memory state
// store and waits for the initial fetches.
func newTestController(t *testing.T, api *fakeAPI, persist Persistence) (*Controller, *manualClock) {
	t.Helper()
	if persist == nil {
		persist = localstate.NewMemory()
	}
	clock := &manualClock{}
	c := New(api, persist, WithClock(clock))
	c.Start(context.Background())
	c.Wait()
	t.Cleanup(c.Close)
	return c, clock
}

func loginAdmin(t *testing.T, c *Controller) {
	t.Helper()
	res, err := c.Login(context.Background(), testPassword)
	require.NoError(t, err)
	require.True(t, res.OK)
	c.Wait()
}
