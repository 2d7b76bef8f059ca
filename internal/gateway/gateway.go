// Package gateway translates screening requests into language-model
// calls and parses the free-form responses back into structured data.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"knackhook/screening/internal/llm"
	"knackhook/screening/internal/models"
	"knackhook/screening/internal/prompts"
	"knackhook/screening/internal/utils"
)

// QuestionCount is the fixed size of one screening round. The three
// record sequences stay aligned to it everywhere downstream.
const QuestionCount = 3

// Error reports that the endpoint returned no usable text or text
// that could not be parsed. It propagates to the caller uninterpreted;
// there is no retry.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "gateway: " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Gateway is single-shot and stateless; its only side effect is the
// network call.
type Gateway struct {
	provider llm.Provider
	prompts  prompts.PromptProvider
	logger   *zap.Logger
}

func New(provider llm.Provider, promptManager prompts.PromptProvider, logger *zap.Logger) *Gateway {
	return &Gateway{
		provider: provider,
		prompts:  promptManager,
		logger:   logger,
	}
}

type questionsPayload struct {
	Questions []string `json:"questions"`
}

type evaluationsPayload struct {
	Evaluations []models.Evaluation `json:"evaluations"`
}

// GenerateQuestions asks the model for exactly three interview
// questions derived from the resume and job description.
func (g *Gateway) GenerateQuestions(ctx context.Context, resume, jobDesc string) ([]string, error) {
	prompt, err := g.prompts.BuildPrompt("questions", map[string]string{
		"Resume":  resume,
		"JobDesc": jobDesc,
	})
	if err != nil {
		return nil, &Error{Op: "generate_questions", Err: err}
	}

	response, err := g.provider.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, &Error{Op: "generate_questions", Err: err}
	}

	// Models occasionally fence the object despite the instruction.
	text := utils.StripFences(response.Text)

	var payload questionsPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		g.logger.Warn("unparseable question response",
			zap.String("provider", g.provider.GetProviderName()), zap.Error(err))
		return nil, &Error{Op: "generate_questions", Err: fmt.Errorf("invalid JSON in model response: %w", err)}
	}

	if len(payload.Questions) != QuestionCount {
		return nil, &Error{Op: "generate_questions",
			Err: fmt.Errorf("expected %d questions, got %d", QuestionCount, len(payload.Questions))}
	}
	for i, question := range payload.Questions {
		if strings.TrimSpace(question) == "" {
			return nil, &Error{Op: "generate_questions",
				Err: fmt.Errorf("question %d is empty", i+1)}
		}
	}

	g.logger.Info("questions generated",
		zap.String("provider", g.provider.GetProviderName()),
		zap.Int("processing_time_ms", response.ProcessingTimeMs))

	return payload.Questions, nil
}

// EvaluateAnswers scores the three question/answer pairs. Either all
// three scores come back or the whole call fails.
func (g *Gateway) EvaluateAnswers(ctx context.Context, questions, answers []string) ([]models.Evaluation, error) {
	if len(questions) != QuestionCount || len(answers) != QuestionCount {
		return nil, &Error{Op: "evaluate_answers",
			Err: fmt.Errorf("expected %d question/answer pairs, got %d/%d", QuestionCount, len(questions), len(answers))}
	}

	data := make(map[string]string, QuestionCount*2)
	for i := 0; i < QuestionCount; i++ {
		n := strconv.Itoa(i + 1)
		data["Question"+n] = questions[i]
		data["Answer"+n] = answers[i]
	}

	prompt, err := g.prompts.BuildPrompt("evaluate", data)
	if err != nil {
		return nil, &Error{Op: "evaluate_answers", Err: err}
	}

	response, err := g.provider.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, &Error{Op: "evaluate_answers", Err: err}
	}

	// The scoring response often arrives wrapped in prose; take the
	// first '{' through the last '}'.
	text := utils.ExtractJSONObject(response.Text)
	if text == "" {
		return nil, &Error{Op: "evaluate_answers", Err: fmt.Errorf("no JSON object in model response")}
	}

	var payload evaluationsPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		g.logger.Warn("unparseable evaluation response",
			zap.String("provider", g.provider.GetProviderName()), zap.Error(err))
		return nil, &Error{Op: "evaluate_answers", Err: fmt.Errorf("invalid JSON in model response: %w", err)}
	}

	if len(payload.Evaluations) != QuestionCount {
		return nil, &Error{Op: "evaluate_answers",
			Err: fmt.Errorf("expected %d evaluations, got %d", QuestionCount, len(payload.Evaluations))}
	}
	for i := range payload.Evaluations {
		payload.Evaluations[i].Score = clampScore(payload.Evaluations[i].Score)
	}

	g.logger.Info("answers evaluated",
		zap.String("provider", g.provider.GetProviderName()),
		zap.Int("processing_time_ms", response.ProcessingTimeMs))

	return payload.Evaluations, nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}
