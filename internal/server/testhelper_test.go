package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/bobmcallan/carfeed/internal/app"
	"github.com/bobmcallan/carfeed/internal/common"
	"github.com/bobmcallan/carfeed/internal/models"
	"github.com/bobmcallan/carfeed/internal/services/feedback"
	"github.com/bobmcallan/carfeed/internal/storage"
)

const (
	testJWTSecret     = "test-jwt-secret"
	testAdminPassword = "admin123"
)

// keywordClassifier reads English only. Text starting with "@@" is
// unreadable; "terrible" is negative and "okay" neutral.
type keywordClassifier struct{}

func (keywordClassifier) Analyze(_ context.Context, text string) *models.Analysis {
	if strings.HasPrefix(text, "@@") {
		return models.ReviewAnalysis()
	}
	a := &models.Analysis{Translatable: true, Language: "en", TranslatedText: text, Sentiment: models.SentimentPositive}
	switch {
	case strings.Contains(text, "terrible"):
		a.Sentiment = models.SentimentNegative
	case strings.Contains(text, "okay"):
		a.Sentiment = models.SentimentNeutral
	case strings.HasPrefix(text, "Bonjour"):
		a.Language = "fr"
	case strings.HasPrefix(text, "Hej"):
		a.Language = "sv"
	}
	return a
}

func newTestServerWithStorage(t *testing.T) *Server {
	t.Helper()
	logger := common.NewSilentLogger()
	cfg := common.NewDefaultConfig()
	cfg.Storage.DSN = filepath.Join(t.TempDir(), "feedback.db")
	cfg.Auth.JWTSecret = testJWTSecret

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	cfg.Auth.AdminPasswordHash = string(hash)

	mgr, err := storage.NewStorageManager(context.Background(), logger, cfg.Storage)
	if err != nil {
		t.Fatalf("NewStorageManager failed: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })

	a := &app.App{
		Config:          cfg,
		Logger:          logger,
		Storage:         mgr,
		Classifier:      keywordClassifier{},
		FeedbackService: feedback.NewService(mgr, keywordClassifier{}, logger),
	}
	return NewServer(a)
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal JSON: %v", err)
	}
	return bytes.NewBuffer(data)
}

// do sends a request through the full middleware stack.
func do(t *testing.T, srv *Server, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

// doWithHeader sends a bodyless request with one raw header.
func doWithHeader(t *testing.T, srv *Server, method, path, key, value string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(key, value)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

// adminToken logs in through the API.
func adminToken(t *testing.T, srv *Server) string {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/auth/login", jsonBody(t, map[string]string{"password": testAdminPassword}), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	return decode[models.Session](t, rec).Token
}

// tokenWithRole signs a token with arbitrary role and expiry.
func tokenWithRole(t *testing.T, role string, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "someone",
		"role": role,
		"exp":  exp.Unix(),
	}).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// createFeedback posts one item and returns it.
func createFeedback(t *testing.T, srv *Server, text, product string) *models.Feedback {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/feedback", jsonBody(t, map[string]string{
		"original_text": text,
		"product":       product,
	}), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("createFeedback: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	fb := decode[models.Feedback](t, rec)
	return &fb
}
