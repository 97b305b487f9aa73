package feedbackapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/bobmcallan/carfeed/internal/interfaces"
	"github.com/bobmcallan/carfeed/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL+"/"), WithRateLimit(100))
}

func TestListPath_OmitsWildcards(t *testing.T) {
	path := listPath(interfaces.FeedbackQuery{
		Product:   models.FilterAll,
		Sentiment: models.FilterAll,
		Language:  models.FilterAll,
		Page:      2,
		PageSize:  5,
	})
	u, err := url.Parse(path)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "/api/feedback", u.Path)
	assert.False(t, q.Has("product"))
	assert.False(t, q.Has("sentiment"))
	assert.False(t, q.Has("original_language"))
	assert.False(t, q.Has("show_all"))
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "5", q.Get("page_size"))
}

func TestListPath_ConcreteFilters(t *testing.T) {
	path := listPath(interfaces.FeedbackQuery{
		Product:   "Land Rover",
		Sentiment: "negative",
		Language:  "Others",
		ShowAll:   true,
	})
	u, err := url.Parse(path)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "Land Rover", q.Get("product"))
	assert.Equal(t, "negative", q.Get("sentiment"))
	assert.Equal(t, "Others", q.Get("original_language"))
	assert.Equal(t, "true", q.Get("show_all"))
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "5", q.Get("page_size"))
}

func TestListFeedback_SendsTokenOnlyWithShowAll(t *testing.T) {
	var auth []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = append(auth, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"id":"fb_1","product":"Audi","status":"published"}],"total_count":12}`))
	})

	page, err := c.ListFeedback(context.Background(), interfaces.FeedbackQuery{Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, 12, page.TotalCount)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "fb_1", page.Items[0].ID)

	_, err = c.ListFeedback(context.Background(), interfaces.FeedbackQuery{Token: "tok", ShowAll: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"", "Bearer tok"}, auth)
}

func TestListFeedback_NullItems(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":null,"total_count":0}`))
	})

	page, err := c.ListFeedback(context.Background(), interfaces.FeedbackQuery{})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestCreateFeedback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/feedback", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"original_text": "Great car!", "product": "Toyota"}, body)

		json.NewEncoder(w).Encode(models.Feedback{ID: "fb_abc", Status: "published", Sentiment: "positive"})
	})

	fb, err := c.CreateFeedback(context.Background(), "Great car!", "Toyota")
	require.NoError(t, err)
	assert.Equal(t, "fb_abc", fb.ID)
	assert.Equal(t, models.FeedbackStatusPublished, fb.Status)
}

func TestUpdateFeedback_SendsOnlyEditableFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/feedback/fb_42", r.URL.Path)
		assert.Equal(t, "Bearer admin-token", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body, 2)
		assert.Equal(t, "Good", body["translated_text"])
		assert.Equal(t, "positive", body["sentiment"])

		json.NewEncoder(w).Encode(models.Feedback{ID: "fb_42", Status: "published", WasReviewed: true})
	})

	fb, err := c.UpdateFeedback(context.Background(), "admin-token", "fb_42", "Good", "positive")
	require.NoError(t, err)
	assert.True(t, fb.WasReviewed)
}

func TestDeleteFeedback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/feedback/42", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, c.DeleteFeedback(context.Background(), "tok", "42"))
}

func TestAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid password"}`))
	})

	_, err := c.Login(context.Background(), "wrong")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid password", apiErr.Message)
	assert.Equal(t, "/api/auth/login", apiErr.Endpoint)
}

func TestAPIError_PlainBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	_, err := c.Stats(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestStatsAndLogin(t *testing.T) {
	expires := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/stats":
			json.NewEncoder(w).Encode(models.NewStatsSnapshot(1, 1, 2))
		case "/api/auth/login":
			json.NewEncoder(w).Encode(models.Session{Token: "jwt", ExpiresAt: expires})
		default:
			http.NotFound(w, r)
		}
	})

	stats, err := c.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalCount)
	assert.InDelta(t, 50.0, stats.NegativePercentage, 0.001)

	session, err := c.Login(context.Background(), "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt", session.Token)
	assert.True(t, session.ExpiresAt.Equal(expires))
}

func TestTransportError(t *testing.T) {
	c := NewClient(WithBaseURL("http://127.0.0.1:1"), WithTimeout(time.Second))
	_, err := c.Stats(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
