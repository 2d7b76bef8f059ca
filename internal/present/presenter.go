// Package present renders a persisted or in-flight evaluation record
// and produces its downloadable JSON export.
package present

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"knackhook/screening/internal/auth"
	"knackhook/screening/internal/models"
)

// Row is one rendered question/answer/score line.
type Row struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Score    int    `json:"score"`
	OutOf    int    `json:"outOf"`
}

// AnswerPlaceholder stands in for an absent answer.
const AnswerPlaceholder = "N/A"

// Summary renders one row per question; absent answers get the
// placeholder and absent scores read as 0.
func Summary(record *models.EvaluationRecord) []Row {
	rows := make([]Row, len(record.Questions))
	for i, question := range record.Questions {
		row := Row{Question: question, Answer: AnswerPlaceholder, OutOf: 10}
		if i < len(record.Answers) && record.Answers[i] != "" {
			row.Answer = record.Answers[i]
		}
		if i < len(record.Evaluations) {
			row.Score = record.Evaluations[i].Score
		}
		rows[i] = row
	}
	return rows
}

// ExportPayload is the serialized shape of a downloaded result.
type ExportPayload struct {
	User        ExportUser `json:"user"`
	JobDesc     string     `json:"jobDesc"`
	Resume      string     `json:"resume"`
	Questions   []string   `json:"questions"`
	Answers     []string   `json:"answers"`
	Scores      []int      `json:"scores"`
	EvaluatedAt string     `json:"evaluatedAt"`
}

type ExportUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	UserID   string `json:"userId"`
}

// Artifact is a downloadable export.
type Artifact struct {
	Filename string
	Data     []byte
}

// Presenter builds exports and re-invokes persistence on each export.
type Presenter struct {
	sessions *auth.Manager
	now      func() time.Time
}

func NewPresenter(sessions *auth.Manager) *Presenter {
	return &Presenter{sessions: sessions, now: time.Now}
}

// Export serializes the record for download. The filename embeds the
// username and the export date. The save is re-invoked; overwriting
// the already-persisted record is idempotent.
func (p *Presenter) Export(ctx context.Context, user *models.User, record *models.EvaluationRecord) (*Artifact, error) {
	payload := ExportPayload{
		User: ExportUser{
			Username: "Unknown",
			Email:    "Unknown",
			UserID:   "Unknown",
		},
		JobDesc:     record.JobDesc,
		Resume:      record.Resume,
		Questions:   record.Questions,
		Answers:     record.Answers,
		Scores:      record.Scores(),
		EvaluatedAt: p.now().UTC().Format(time.RFC3339),
	}
	username := "user"
	if user != nil {
		payload.User = ExportUser{Username: user.Username, Email: user.Email, UserID: user.ID}
		username = user.Username
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize export: %w", err)
	}

	if err := p.sessions.SaveEvaluation(ctx, *record); err != nil {
		return nil, fmt.Errorf("failed to re-save evaluation: %w", err)
	}

	return &Artifact{
		Filename: fmt.Sprintf("evaluation_result_%s_%s.json", username, p.now().UTC().Format("2006-01-02")),
		Data:     data,
	}, nil
}
