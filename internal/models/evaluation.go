package models

import "time"

// Evaluation is the score the model assigned to a single answer.
type Evaluation struct {
	Score int `json:"score"`
}

// EvaluationRecord is the persisted, scored outcome of one
// question/answer/evaluation cycle for a user. Questions, Answers and
// Evaluations are always the same length and index-aligned.
type EvaluationRecord struct {
	UserID      string       `json:"userId"`
	Questions   []string     `json:"questions"`
	Answers     []string     `json:"answers"`
	Evaluations []Evaluation `json:"evaluations"`
	JobDesc     string       `json:"jobDesc"`
	Resume      string       `json:"resume"`
	EvaluatedAt time.Time    `json:"evaluatedAt"`
}

// Scores flattens the evaluations into plain integers, missing entries
// reported as 0 so the result always lines up with the questions.
func (r *EvaluationRecord) Scores() []int {
	scores := make([]int, len(r.Questions))
	for i := range r.Questions {
		if i < len(r.Evaluations) {
			scores[i] = r.Evaluations[i].Score
		}
	}
	return scores
}
