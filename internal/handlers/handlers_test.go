package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"knackhook/screening/internal/auth"
	"knackhook/screening/internal/flow"
	"knackhook/screening/internal/models"
	"knackhook/screening/internal/present"
	"knackhook/screening/internal/store"
)

type fakeScreener struct {
	generateFn func(ctx context.Context, resume, jobDesc string) ([]string, error)
	evaluateFn func(ctx context.Context, questions, answers []string) ([]models.Evaluation, error)
}

func (f *fakeScreener) GenerateQuestions(ctx context.Context, resume, jobDesc string) ([]string, error) {
	if f.generateFn != nil {
		return f.generateFn(ctx, resume, jobDesc)
	}
	return []string{"q1", "q2", "q3"}, nil
}

func (f *fakeScreener) EvaluateAnswers(ctx context.Context, questions, answers []string) ([]models.Evaluation, error) {
	if f.evaluateFn != nil {
		return f.evaluateFn(ctx, questions, answers)
	}
	evaluations := make([]models.Evaluation, len(questions))
	for i := range evaluations {
		evaluations[i] = models.Evaluation{Score: 7}
	}
	return evaluations, nil
}

type testEnv struct {
	sessions  *auth.Manager
	screening *ScreeningHandler
	auth      *AuthHandler
}

func newTestEnv(t *testing.T, screener flow.Screener) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	sessions := auth.NewManager(store.NewMemoryStore(), logger)
	newController := func() *flow.Controller {
		return flow.NewController(screener, sessions, logger, flow.Config{TickInterval: time.Hour})
	}
	screening := NewScreeningHandler(sessions, present.NewPresenter(sessions), newController, logger)
	return &testEnv{
		sessions:  sessions,
		screening: screening,
		auth:      NewAuthHandler(sessions, screening, logger),
	}
}

func (env *testEnv) login(t *testing.T) models.User {
	t.Helper()
	user := models.User{ID: "u-1", Username: "alice", Email: "alice@example.com", Password: "secret"}
	if err := env.sessions.Register(context.Background(), user); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := env.sessions.Login(context.Background(), user); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return user
}

func postJSON(handler http.Handler, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func getRequest(handler http.HandlerFunc, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}
