// Package flow drives one screening pass through its three screens:
// input collection, timed question answering, and results.
package flow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"knackhook/screening/internal/auth"
	"knackhook/screening/internal/models"
)

type State string

const (
	StateInput     State = "INPUT"
	StateAnswering State = "ANSWERING"
	StateResult    State = "RESULT"
)

// DefaultCountdownSeconds is how long the candidate has to answer
// before submission is forced.
const DefaultCountdownSeconds = 600

var (
	ErrTornDown     = errors.New("flow: controller torn down")
	ErrNotInput     = errors.New("flow: not collecting input")
	ErrNotAnswering = errors.New("flow: not answering")
	ErrNoResult     = errors.New("flow: no result available")
	ErrBusy         = errors.New("flow: a call is already in flight")
)

// Screener is the slice of the gateway the controller needs; tests
// substitute their own.
type Screener interface {
	GenerateQuestions(ctx context.Context, resume, jobDesc string) ([]string, error)
	EvaluateAnswers(ctx context.Context, questions, answers []string) ([]models.Evaluation, error)
}

// Config tunes the countdown; zero values take the defaults.
type Config struct {
	CountdownSeconds int
	TickInterval     time.Duration
}

// Controller is the state machine for one evaluation pass. At most one
// gateway call is outstanding at a time; once Close has been called,
// late resolutions of in-flight calls and timer ticks are discarded.
type Controller struct {
	screener Screener
	sessions *auth.Manager
	logger   *zap.Logger

	countdownSeconds int
	tickInterval     time.Duration

	mu        sync.Mutex
	state     State
	resume    string
	jobDesc   string
	questions []string
	answers   []string
	remaining int
	record    *models.EvaluationRecord
	saved     bool
	inFlight  bool
	closed    bool
	stopTimer chan struct{}
}

func NewController(screener Screener, sessions *auth.Manager, logger *zap.Logger, cfg Config) *Controller {
	if cfg.CountdownSeconds <= 0 {
		cfg.CountdownSeconds = DefaultCountdownSeconds
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	return &Controller{
		screener:         screener,
		sessions:         sessions,
		logger:           logger,
		countdownSeconds: cfg.CountdownSeconds,
		tickInterval:     cfg.TickInterval,
		state:            StateInput,
	}
}

// Begin places the controller at the flow's entry point. A user with an
// already-saved record lands directly on RESULT with no gateway calls;
// everyone else starts at INPUT with any draft input restored.
func (c *Controller) Begin(ctx context.Context) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", ErrTornDown
	}

	if existing := c.sessions.GetUserEvaluation(ctx); existing != nil {
		c.record = existing
		c.saved = true // already persisted; rendering must not re-stamp
		c.state = StateResult
		return c.state, nil
	}

	c.resume, c.jobDesc = c.sessions.DraftInput(ctx)
	c.state = StateInput
	return c.state, nil
}

// SubmitInput validates the two fields, requests questions, and on
// success transitions to ANSWERING and starts the countdown. On
// gateway failure the controller stays in INPUT.
func (c *Controller) SubmitInput(ctx context.Context, resume, jobDesc string) ([]string, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrTornDown
	}
	if c.state != StateInput {
		c.mu.Unlock()
		return nil, ErrNotInput
	}
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	if strings.TrimSpace(resume) == "" {
		c.mu.Unlock()
		return nil, &models.ErrorResponse{Code: "missing_resume", Message: "Resume content is required"}
	}
	if strings.TrimSpace(jobDesc) == "" {
		c.mu.Unlock()
		return nil, &models.ErrorResponse{Code: "missing_job_desc", Message: "Job description content is required"}
	}

	c.inFlight = true
	c.sessions.SaveDraftInput(ctx, resume, jobDesc)
	c.mu.Unlock()

	questions, err := c.screener.GenerateQuestions(ctx, resume, jobDesc)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if c.closed {
		// resolved after teardown; drop it
		return nil, ErrTornDown
	}
	if err != nil {
		return nil, err
	}

	c.resume = resume
	c.jobDesc = jobDesc
	c.questions = questions
	c.answers = c.restoredAnswers(ctx, len(questions))
	c.remaining = c.countdownSeconds
	c.state = StateAnswering
	c.startCountdownLocked()

	return questions, nil
}

// restoredAnswers aligns a saved draft to the pending question set.
func (c *Controller) restoredAnswers(ctx context.Context, count int) []string {
	if draft := c.sessions.DraftAnswers(ctx); len(draft) == count {
		return draft
	}
	return make([]string, count)
}

// SetAnswer records the draft answer at index i and persists the draft.
func (c *Controller) SetAnswer(ctx context.Context, index int, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrTornDown
	}
	if c.state != StateAnswering {
		return ErrNotAnswering
	}
	if index < 0 || index >= len(c.answers) {
		return &models.ErrorResponse{Code: "invalid_index", Message: "Answer index out of range"}
	}
	c.answers[index] = text
	c.sessions.SaveDraftAnswers(ctx, c.answers)
	return nil
}

// Submit is the user-confirmed submission path.
func (c *Controller) Submit(ctx context.Context) (*models.EvaluationRecord, error) {
	return c.submit(ctx, false)
}

// submit handles both the confirmed and countdown-expired paths.
func (c *Controller) submit(ctx context.Context, expired bool) (*models.EvaluationRecord, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrTornDown
	}
	if c.state != StateAnswering {
		c.mu.Unlock()
		return nil, ErrNotAnswering
	}
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.inFlight = true
	questions := append([]string(nil), c.questions...)
	answers := append([]string(nil), c.answers...)
	resume, jobDesc := c.resume, c.jobDesc
	c.mu.Unlock()

	evaluations, err := c.screener.EvaluateAnswers(ctx, questions, answers)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if c.closed {
		return nil, ErrTornDown
	}
	if err != nil {
		// stay in ANSWERING; answers are preserved for a retry
		c.logger.Warn("evaluation failed", zap.Bool("countdown_expired", expired), zap.Error(err))
		return nil, err
	}

	c.sessions.ClearDraftAnswers(ctx)
	c.record = &models.EvaluationRecord{
		Questions:   questions,
		Answers:     answers,
		Evaluations: evaluations,
		JobDesc:     jobDesc,
		Resume:      resume,
	}
	c.state = StateResult
	c.stopCountdownLocked()

	// persist exactly once per fresh arrival in RESULT
	if !c.saved {
		if saveErr := c.sessions.SaveEvaluation(ctx, *c.record); saveErr != nil {
			c.logger.Error("failed to persist evaluation record", zap.Error(saveErr))
		} else {
			c.saved = true
		}
	}

	return c.record, nil
}

// Restart discards the saved record and drafts and returns to INPUT.
func (c *Controller) Restart(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrTornDown
	}
	c.sessions.ClearUserEvaluation(ctx)
	c.stopCountdownLocked()
	c.state = StateInput
	c.resume, c.jobDesc = "", ""
	c.questions, c.answers = nil, nil
	c.record = nil
	c.saved = false
	return nil
}

// Result returns the assembled record once the flow has reached RESULT.
func (c *Controller) Result() (*models.EvaluationRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrTornDown
	}
	if c.state != StateResult || c.record == nil {
		return nil, ErrNoResult
	}
	record := *c.record
	return &record, nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Remaining reports the countdown in seconds.
func (c *Controller) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Controller) Questions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.questions...)
}

// Close tears the controller down. Late resolutions of in-flight
// gateway calls and timer ticks are ignored afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.stopCountdownLocked()
}

func (c *Controller) startCountdownLocked() {
	c.stopCountdownLocked()
	stop := make(chan struct{})
	c.stopTimer = stop
	go c.runCountdown(stop)
}

func (c *Controller) stopCountdownLocked() {
	if c.stopTimer != nil {
		close(c.stopTimer)
		c.stopTimer = nil
	}
}

func (c *Controller) runCountdown(stop chan struct{}) {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if c.tick() {
				return
			}
		}
	}
}

// tick decrements the countdown; reaching zero triggers submission
// exactly as if the user had confirmed. Returns true when the loop
// should stop.
func (c *Controller) tick() bool {
	c.mu.Lock()
	if c.closed || c.state != StateAnswering {
		c.mu.Unlock()
		return true
	}
	c.remaining--
	if c.remaining > 0 {
		c.mu.Unlock()
		return false
	}
	c.remaining = 0
	c.mu.Unlock()

	if _, err := c.submit(context.Background(), true); err != nil &&
		!errors.Is(err, ErrTornDown) && !errors.Is(err, ErrNotAnswering) && !errors.Is(err, ErrBusy) {
		c.logger.Warn("auto-submit at countdown expiry failed", zap.Error(err))
	}
	return true
}
