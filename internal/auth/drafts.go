package auth

import (
	"context"
	"encoding/json"

	"knackhook/screening/internal/store"
)

// Draft input lives only for the duration of one flow pass. It is
// cleared on logout, on ClearUserEvaluation, and once scoring succeeds.

// SaveDraftInput persists the in-progress resume and job description.
func (m *Manager) SaveDraftInput(ctx context.Context, resume, jobDesc string) {
	m.store.Set(ctx, store.KeyResume, []byte(resume))
	m.store.Set(ctx, store.KeyJobDesc, []byte(jobDesc))
}

// DraftInput returns the saved resume and job description drafts,
// empty strings when absent.
func (m *Manager) DraftInput(ctx context.Context) (resume, jobDesc string) {
	if raw, err := m.store.Get(ctx, store.KeyResume); err == nil {
		resume = string(raw)
	}
	if raw, err := m.store.Get(ctx, store.KeyJobDesc); err == nil {
		jobDesc = string(raw)
	}
	return resume, jobDesc
}

// SaveDraftAnswers persists the in-progress answers, positionally
// aligned with the pending question set.
func (m *Manager) SaveDraftAnswers(ctx context.Context, answers []string) {
	raw, err := json.Marshal(answers)
	if err != nil {
		return
	}
	m.store.Set(ctx, store.KeyAnswers, raw)
}

// DraftAnswers returns the saved answer draft, or nil. Corrupt data
// reads as absence.
func (m *Manager) DraftAnswers(ctx context.Context) []string {
	raw, err := m.store.Get(ctx, store.KeyAnswers)
	if err != nil {
		return nil
	}
	var answers []string
	if err := json.Unmarshal(raw, &answers); err != nil {
		m.logger.Warn("treating corrupt answer draft as absent")
		return nil
	}
	return answers
}

// ClearDraftAnswers discards the answer draft after scoring succeeds.
func (m *Manager) ClearDraftAnswers(ctx context.Context) {
	m.store.Delete(ctx, store.KeyAnswers)
}
