package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"knackhook/screening/internal/auth"
	"knackhook/screening/internal/flow"
	"knackhook/screening/internal/gateway"
	"knackhook/screening/internal/metrics"
	"knackhook/screening/internal/middleware"
	"knackhook/screening/internal/models"
	"knackhook/screening/internal/present"
	"knackhook/screening/internal/utils"
)

// ScreeningHandler owns the flow controller for the active session and
// exposes the input, answering, and result endpoints over it.
type ScreeningHandler struct {
	sessions  *auth.Manager
	presenter *present.Presenter
	logger    *zap.Logger

	newController func() *flow.Controller

	mu         sync.Mutex
	controller *flow.Controller
}

func NewScreeningHandler(sessions *auth.Manager, presenter *present.Presenter, newController func() *flow.Controller, logger *zap.Logger) *ScreeningHandler {
	return &ScreeningHandler{
		sessions:      sessions,
		presenter:     presenter,
		newController: newController,
		logger:        logger,
	}
}

// Reset tears down the active controller; the next request builds a
// fresh one for whoever is then logged in.
func (h *ScreeningHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.controller != nil {
		h.controller.Close()
		h.controller = nil
	}
}

// current returns the controller for the active session, creating and
// entering one on first use.
func (h *ScreeningHandler) current(r *http.Request) (*flow.Controller, error) {
	if h.sessions.CurrentUser() == nil {
		return nil, &auth.AuthError{Reason: "no active session"}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.controller == nil {
		c := h.newController()
		if _, err := c.Begin(r.Context()); err != nil {
			c.Close()
			return nil, err
		}
		h.controller = c
	}
	return h.controller, nil
}

type stateResponse struct {
	State     flow.State `json:"state"`
	Questions []string   `json:"questions,omitempty"`
	Remaining int        `json:"remainingSeconds,omitempty"`
}

func (h *ScreeningHandler) StateHandler(w http.ResponseWriter, r *http.Request) {
	c, err := h.current(r)
	if err != nil {
		writeFlowError(w, err)
		return
	}

	resp := stateResponse{State: c.State()}
	if resp.State == flow.StateAnswering {
		resp.Questions = c.Questions()
		resp.Remaining = c.Remaining()
	}
	utils.JSON(w, http.StatusOK, resp)
}

func (h *ScreeningHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.StartScreeningRequest](r)

	c, err := h.current(r)
	if err != nil {
		writeFlowError(w, err)
		return
	}

	questions, err := c.SubmitInput(r.Context(), req.Resume, req.JobDesc)
	metrics.ObserveGatewayCall("generate_questions", err)
	if err != nil {
		writeFlowError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, models.QuestionsResponse{
		Questions: questions,
		Remaining: c.Remaining(),
	})
}

func (h *ScreeningHandler) AnswerHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.AnswerRequest](r)

	c, err := h.current(r)
	if err != nil {
		writeFlowError(w, err)
		return
	}
	if err := c.SetAnswer(r.Context(), req.Index, req.Text); err != nil {
		writeFlowError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, stateResponse{
		State:     c.State(),
		Questions: c.Questions(),
		Remaining: c.Remaining(),
	})
}

// SubmitHandler runs behind ValidateRequest[*models.SubmitRequest], so
// the confirmation flag has already been checked.
func (h *ScreeningHandler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	c, err := h.current(r)
	if err != nil {
		writeFlowError(w, err)
		return
	}

	record, err := c.Submit(r.Context())
	metrics.ObserveGatewayCall("evaluate_answers", err)
	if err != nil {
		writeFlowError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, resultResponse(record))
}

func (h *ScreeningHandler) RestartHandler(w http.ResponseWriter, r *http.Request) {
	c, err := h.current(r)
	if err != nil {
		writeFlowError(w, err)
		return
	}
	if err := c.Restart(r.Context()); err != nil {
		writeFlowError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, stateResponse{State: c.State()})
}

func (h *ScreeningHandler) ResultHandler(w http.ResponseWriter, r *http.Request) {
	record, err := h.resultRecord(r)
	if err != nil {
		writeFlowError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"summary": present.Summary(record),
		"result":  resultResponse(record),
	})
}

func (h *ScreeningHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	record, err := h.resultRecord(r)
	if err != nil {
		writeFlowError(w, err)
		return
	}

	artifact, err := h.presenter.Export(r.Context(), h.sessions.CurrentUser(), record)
	if err != nil {
		h.logger.Error("failed to build export", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "export_failed",
			Message: "Failed to build export",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(artifact.Data)
}

// resultRecord resolves the record to present: the live controller's if
// the flow has reached its result, otherwise the persisted one.
func (h *ScreeningHandler) resultRecord(r *http.Request) (*models.EvaluationRecord, error) {
	c, err := h.current(r)
	if err != nil {
		return nil, err
	}
	if record, err := c.Result(); err == nil {
		return record, nil
	}
	if record := h.sessions.GetUserEvaluation(r.Context()); record != nil {
		return record, nil
	}
	return nil, flow.ErrNoResult
}

func resultResponse(record *models.EvaluationRecord) models.ResultResponse {
	resp := models.ResultResponse{
		Questions:   record.Questions,
		Answers:     record.Answers,
		Evaluations: record.Evaluations,
		JobDesc:     record.JobDesc,
		Resume:      record.Resume,
	}
	if !record.EvaluatedAt.IsZero() {
		resp.EvaluatedAt = record.EvaluatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// writeFlowError maps domain errors onto HTTP statuses.
func writeFlowError(w http.ResponseWriter, err error) {
	var validation *models.ErrorResponse
	if errors.As(err, &validation) {
		utils.JSON(w, http.StatusBadRequest, validation)
		return
	}
	var authErr *auth.AuthError
	if errors.As(err, &authErr) {
		utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{Code: "unauthorized", Message: authErr.Reason})
		return
	}
	var gw *gateway.Error
	if errors.As(err, &gw) {
		utils.JSON(w, http.StatusBadGateway, models.ErrorResponse{
			Code:    "gateway_error",
			Message: "The screening assistant is unavailable, please try again",
		})
		return
	}
	switch {
	case errors.Is(err, flow.ErrNoResult):
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{Code: "no_result", Message: "No evaluation result available"})
	case errors.Is(err, flow.ErrNotInput), errors.Is(err, flow.ErrNotAnswering),
		errors.Is(err, flow.ErrBusy), errors.Is(err, flow.ErrTornDown):
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{Code: "wrong_state", Message: err.Error()})
	default:
		utils.JSON(w, http.StatusBadGateway, models.ErrorResponse{
			Code:    "gateway_error",
			Message: "The screening assistant is unavailable, please try again",
		})
	}
}
