package models

// uniform error responses
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

type QuestionsResponse struct {
	Questions []string `json:"questions"`
	Remaining int      `json:"remainingSeconds"`
}

type ResultResponse struct {
	Questions   []string     `json:"questions"`
	Answers     []string     `json:"answers"`
	Evaluations []Evaluation `json:"evaluations"`
	JobDesc     string       `json:"jobDesc"`
	Resume      string       `json:"resume"`
	EvaluatedAt string       `json:"evaluatedAt"`
}

type ExtractResponse struct {
	Text string `json:"text"`
}

type SaveResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}
