package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"knackhook/screening/internal/models"
)

func TestSaveHandlerWritesTimestampedFile(t *testing.T) {
	dir := t.TempDir()
	handler := NewSaveHandler(dir, zap.NewNop())
	handler.now = func() time.Time { return time.UnixMilli(1700000000000) }

	rec := postJSON(http.HandlerFunc(handler.SaveHandler), "/api/v1/save", `{"scores":[5,6,7]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.SaveResponse
	decodeBody(t, rec, &resp)
	if resp.Filename != "result-1700000000000.json" {
		t.Fatalf("unexpected filename %q", resp.Filename)
	}

	data, err := os.ReadFile(filepath.Join(dir, resp.Filename))
	if err != nil {
		t.Fatalf("expected the file to be written: %v", err)
	}
	if !strings.Contains(string(data), `"scores"`) {
		t.Fatalf("expected the payload in the file, got %s", data)
	}
}

func TestSaveHandlerRejectsInvalidJSON(t *testing.T) {
	handler := NewSaveHandler(t.TempDir(), zap.NewNop())

	rec := postJSON(http.HandlerFunc(handler.SaveHandler), "/api/v1/save", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp models.ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Code != "invalid_json" {
		t.Fatalf("expected invalid_json, got %q", resp.Code)
	}
}

func TestSaveHandlerCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	handler := NewSaveHandler(dir, zap.NewNop())

	rec := postJSON(http.HandlerFunc(handler.SaveHandler), "/api/v1/save", `{"ok":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("expected the directory to exist: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one saved file, got %d", len(entries))
	}
}
