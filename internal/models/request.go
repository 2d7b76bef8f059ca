package models

import "strings"

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// implements the Validator interface
func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return &ErrorResponse{Code: "missing_username", Message: "Username field is required"}
	}
	if strings.TrimSpace(r.Email) == "" {
		return &ErrorResponse{Code: "missing_email", Message: "Email field is required"}
	}
	if r.Password == "" {
		return &ErrorResponse{Code: "missing_password", Message: "Password field is required"}
	}
	return nil
}

type LoginRequest struct {
	// Identifier matches either the email or the username, exactly.
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if r.Identifier == "" {
		return &ErrorResponse{Code: "missing_identifier", Message: "Email or username is required"}
	}
	if r.Password == "" {
		return &ErrorResponse{Code: "missing_password", Message: "Password field is required"}
	}
	return nil
}

type StartScreeningRequest struct {
	Resume  string `json:"resume"`
	JobDesc string `json:"jobDesc"`
}

func (r *StartScreeningRequest) Validate() error {
	if strings.TrimSpace(r.Resume) == "" {
		return &ErrorResponse{Code: "missing_resume", Message: "Resume content is required"}
	}
	if strings.TrimSpace(r.JobDesc) == "" {
		return &ErrorResponse{Code: "missing_job_desc", Message: "Job description content is required"}
	}
	return nil
}

type AnswerRequest struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

func (r *AnswerRequest) Validate() error {
	if r.Index < 0 {
		return &ErrorResponse{Code: "invalid_index", Message: "Answer index must not be negative"}
	}
	return nil
}

type SubmitRequest struct {
	// Confirm is the explicit user confirmation; the countdown hitting
	// zero is the only path that bypasses it.
	Confirm bool `json:"confirm"`
}

func (r *SubmitRequest) Validate() error {
	if !r.Confirm {
		return &ErrorResponse{Code: "not_confirmed", Message: "Submission must be explicitly confirmed"}
	}
	return nil
}
