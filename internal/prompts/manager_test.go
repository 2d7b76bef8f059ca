package prompts

import (
	"strings"
	"testing"
)

func TestNewPromptManagerLoadsTemplates(t *testing.T) {
	pm, err := NewPromptManager()
	if err != nil {
		t.Fatalf("NewPromptManager returned error: %v", err)
	}

	modes := pm.GetModes()
	found := map[string]bool{}
	for _, mode := range modes {
		found[mode] = true
	}
	if !found["questions"] || !found["evaluate"] {
		t.Fatalf("expected questions and evaluate modes, got %v", modes)
	}
}

func TestBuildQuestionsPrompt(t *testing.T) {
	pm, err := NewPromptManager()
	if err != nil {
		t.Fatalf("NewPromptManager returned error: %v", err)
	}

	prompt, err := pm.BuildPrompt("questions", map[string]string{
		"Resume":  "10 years of Go",
		"JobDesc": "Backend engineer",
	})
	if err != nil {
		t.Fatalf("BuildPrompt returned error: %v", err)
	}

	if !strings.Contains(prompt, "10 years of Go") {
		t.Fatalf("expected resume to be substituted into prompt")
	}
	if !strings.Contains(prompt, "Backend engineer") {
		t.Fatalf("expected job description to be substituted into prompt")
	}
	if strings.Contains(prompt, "{{.") {
		t.Fatalf("expected no unresolved placeholders, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "generate 3 interview questions") {
		t.Fatalf("expected base instruction to be present")
	}
}

func TestBuildEvaluatePrompt(t *testing.T) {
	pm, err := NewPromptManager()
	if err != nil {
		t.Fatalf("NewPromptManager returned error: %v", err)
	}

	prompt, err := pm.BuildPrompt("evaluate", map[string]string{
		"Question1": "Q1?", "Answer1": "A1",
		"Question2": "Q2?", "Answer2": "A2",
		"Question3": "Q3?", "Answer3": "A3",
	})
	if err != nil {
		t.Fatalf("BuildPrompt returned error: %v", err)
	}

	for _, fragment := range []string{"Question 1: Q1?", "Answer 2: A2", "Question 3: Q3?"} {
		if !strings.Contains(prompt, fragment) {
			t.Fatalf("expected prompt to embed %q", fragment)
		}
	}
	if !strings.Contains(prompt, "Score each answer from 0-10") {
		t.Fatalf("expected scoring rubric in prompt")
	}
}

func TestBuildPromptUnknownMode(t *testing.T) {
	pm, err := NewPromptManager()
	if err != nil {
		t.Fatalf("NewPromptManager returned error: %v", err)
	}
	if _, err := pm.BuildPrompt("missing", nil); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
