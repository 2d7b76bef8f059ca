package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"knackhook/screening/internal/flow"
	"knackhook/screening/internal/gateway"
	"knackhook/screening/internal/middleware"
	"knackhook/screening/internal/models"
)

func (env *testEnv) startAnswering(t *testing.T) {
	t.Helper()
	wrapped := middleware.ValidateRequest[*models.StartScreeningRequest]()(http.HandlerFunc(env.screening.StartHandler))
	rec := postJSON(wrapped, "/api/v1/screening/input", `{"resume":"resume text","jobDesc":"job text"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 starting the screening, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestStateHandlerRequiresSession(t *testing.T) {
	env := newTestEnv(t, &fakeScreener{})

	rec := getRequest(env.screening.StateHandler, "/api/v1/screening")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", rec.Code)
	}
}

func TestStateHandlerFreshSession(t *testing.T) {
	env := newTestEnv(t, &fakeScreener{})
	env.login(t)

	rec := getRequest(env.screening.StateHandler, "/api/v1/screening")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body stateResponse
	decodeBody(t, rec, &body)
	if body.State != flow.StateInput {
		t.Fatalf("expected INPUT, got %s", body.State)
	}
}

func TestStartHandlerReturnsQuestionsAndCountdown(t *testing.T) {
	env := newTestEnv(t, &fakeScreener{})
	env.login(t)

	wrapped := middleware.ValidateRequest[*models.StartScreeningRequest]()(http.HandlerFunc(env.screening.StartHandler))
	rec := postJSON(wrapped, "/api/v1/screening/input", `{"resume":"resume text","jobDesc":"job text"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body models.QuestionsResponse
	decodeBody(t, rec, &body)
	if len(body.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(body.Questions))
	}
	if body.Remaining != flow.DefaultCountdownSeconds {
		t.Fatalf("expected countdown at %d, got %d", flow.DefaultCountdownSeconds, body.Remaining)
	}
}

func TestStartHandlerValidation(t *testing.T) {
	env := newTestEnv(t, &fakeScreener{})
	env.login(t)

	wrapped := middleware.ValidateRequest[*models.StartScreeningRequest]()(http.HandlerFunc(env.screening.StartHandler))
	rec := postJSON(wrapped, "/api/v1/screening/input", `{"resume":"  ","jobDesc":"job"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var body models.ErrorResponse
	decodeBody(t, rec, &body)
	if body.Code != "missing_resume" {
		t.Fatalf("expected missing_resume, got %q", body.Code)
	}
}

func TestStartHandlerGatewayFailure(t *testing.T) {
	screener := &fakeScreener{
		generateFn: func(ctx context.Context, resume, jobDesc string) ([]string, error) {
			return nil, &gateway.Error{Op: "generate_questions", Err: errors.New("model unavailable")}
		},
	}
	env := newTestEnv(t, screener)
	env.login(t)

	wrapped := middleware.ValidateRequest[*models.StartScreeningRequest]()(http.HandlerFunc(env.screening.StartHandler))
	rec := postJSON(wrapped, "/api/v1/screening/input", `{"resume":"resume","jobDesc":"job"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}

	// the flow must still accept a retry from INPUT
	rec = getRequest(env.screening.StateHandler, "/api/v1/screening")
	var state stateResponse
	decodeBody(t, rec, &state)
	if state.State != flow.StateInput {
		t.Fatalf("expected INPUT after gateway failure, got %s", state.State)
	}
}

func TestAnswerHandler(t *testing.T) {
	env := newTestEnv(t, &fakeScreener{})
	env.login(t)
	env.startAnswering(t)

	wrapped := middleware.ValidateRequest[*models.AnswerRequest]()(http.HandlerFunc(env.screening.AnswerHandler))
	rec := postJSON(wrapped, "/api/v1/screening/answers", `{"index":1,"text":"my answer"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(wrapped, "/api/v1/screening/answers", `{"index":7,"text":"out of range"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an out-of-range index, got %d", rec.Code)
	}
}

func TestSubmitHandlerRequiresConfirmation(t *testing.T) {
	env := newTestEnv(t, &fakeScreener{})
	env.login(t)
	env.startAnswering(t)

	wrapped := middleware.ValidateRequest[*models.SubmitRequest]()(http.HandlerFunc(env.screening.SubmitHandler))
	rec := postJSON(wrapped, "/api/v1/screening/submit", `{"confirm":false}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without confirmation, got %d", rec.Code)
	}

	var body models.ErrorResponse
	decodeBody(t, rec, &body)
	if body.Code != "not_confirmed" {
		t.Fatalf("expected not_confirmed, got %q", body.Code)
	}
}

func TestSubmitHandlerReturnsResult(t *testing.T) {
	env := newTestEnv(t, &fakeScreener{})
	env.login(t)
	env.startAnswering(t)

	answer := middleware.ValidateRequest[*models.AnswerRequest]()(http.HandlerFunc(env.screening.AnswerHandler))
	postJSON(answer, "/api/v1/screening/answers", `{"index":0,"text":"first answer"}`)

	wrapped := middleware.ValidateRequest[*models.SubmitRequest]()(http.HandlerFunc(env.screening.SubmitHandler))
	rec := postJSON(wrapped, "/api/v1/screening/submit", `{"confirm":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body models.ResultResponse
	decodeBody(t, rec, &body)
	if len(body.Evaluations) != 3 {
		t.Fatalf("expected 3 evaluations, got %d", len(body.Evaluations))
	}
	if body.Answers[0] != "first answer" {
		t.Fatalf("expected the recorded answer, got %q", body.Answers[0])
	}

	// submitting again from RESULT is a state conflict
	rec = postJSON(wrapped, "/api/v1/screening/submit", `{"confirm":true}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 after the flow left ANSWERING, got %d", rec.Code)
	}
}

func TestSubmitHandlerEvaluationFailureKeepsAnswering(t *testing.T) {
	screener := &fakeScreener{
		evaluateFn: func(ctx context.Context, questions, answers []string) ([]models.Evaluation, error) {
			return nil, &gateway.Error{Op: "evaluate_answers", Err: errors.New("model unavailable")}
		},
	}
	env := newTestEnv(t, screener)
	env.login(t)
	env.startAnswering(t)

	wrapped := middleware.ValidateRequest[*models.SubmitRequest]()(http.HandlerFunc(env.screening.SubmitHandler))
	rec := postJSON(wrapped, "/api/v1/screening/submit", `{"confirm":true}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}

	rec = getRequest(env.screening.StateHandler, "/api/v1/screening")
	var state stateResponse
	decodeBody(t, rec, &state)
	if state.State != flow.StateAnswering {
		t.Fatalf("expected ANSWERING after a failed evaluation, got %s", state.State)
	}
}

func TestResultHandler(t *testing.T) {
	env := newTestEnv(t, &fakeScreener{})
	env.login(t)
	env.startAnswering(t)

	submit := middleware.ValidateRequest[*models.SubmitRequest]()(http.HandlerFunc(env.screening.SubmitHandler))
	postJSON(submit, "/api/v1/screening/submit", `{"confirm":true}`)

	rec := getRequest(env.screening.ResultHandler, "/api/v1/result")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Summary []struct {
			Question string `json:"question"`
			Answer   string `json:"answer"`
			Score    int    `json:"score"`
			OutOf    int    `json:"outOf"`
		} `json:"summary"`
	}
	decodeBody(t, rec, &body)
	if len(body.Summary) != 3 {
		t.Fatalf("expected 3 summary rows, got %d", len(body.Summary))
	}
	if body.Summary[0].Answer != "N/A" {
		t.Fatalf("expected the placeholder for an unanswered question, got %q", body.Summary[0].Answer)
	}
	if body.Summary[0].OutOf != 10 {
		t.Fatalf("expected scores out of 10, got %d", body.Summary[0].OutOf)
	}
}

func TestResultHandlerNoResult(t *testing.T) {
	env := newTestEnv(t, &fakeScreener{})
	env.login(t)

	rec := getRequest(env.screening.ResultHandler, "/api/v1/result")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a result, got %d", rec.Code)
	}
}

func TestExportHandler(t *testing.T) {
	env := newTestEnv(t, &fakeScreener{})
	env.login(t)
	env.startAnswering(t)

	submit := middleware.ValidateRequest[*models.SubmitRequest]()(http.HandlerFunc(env.screening.SubmitHandler))
	postJSON(submit, "/api/v1/screening/submit", `{"confirm":true}`)

	rec := getRequest(env.screening.ExportHandler, "/api/v1/result/export")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	disposition := rec.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "evaluation_result_alice_") {
		t.Fatalf("unexpected disposition %q", disposition)
	}

	var payload struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
		Scores []int `json:"scores"`
	}
	decodeBody(t, rec, &payload)
	if payload.User.Username != "alice" {
		t.Fatalf("expected alice in the export, got %q", payload.User.Username)
	}
	if len(payload.Scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(payload.Scores))
	}
}

func TestRestartHandler(t *testing.T) {
	env := newTestEnv(t, &fakeScreener{})
	env.login(t)
	env.startAnswering(t)

	submit := middleware.ValidateRequest[*models.SubmitRequest]()(http.HandlerFunc(env.screening.SubmitHandler))
	postJSON(submit, "/api/v1/screening/submit", `{"confirm":true}`)

	rec := postJSON(http.HandlerFunc(env.screening.RestartHandler), "/api/v1/screening/restart", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var state stateResponse
	decodeBody(t, rec, &state)
	if state.State != flow.StateInput {
		t.Fatalf("expected INPUT after restart, got %s", state.State)
	}

	if record := env.sessions.GetUserEvaluation(context.Background()); record != nil {
		t.Fatalf("expected the saved record to be cleared on restart")
	}
}

func TestResetTearsDownController(t *testing.T) {
	env := newTestEnv(t, &fakeScreener{})
	env.login(t)
	env.startAnswering(t)

	env.screening.Reset()

	// the next request builds a fresh controller back at INPUT
	rec := getRequest(env.screening.StateHandler, "/api/v1/screening")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var state stateResponse
	decodeBody(t, rec, &state)
	if state.State != flow.StateInput {
		t.Fatalf("expected a fresh controller at INPUT, got %s", state.State)
	}
}
