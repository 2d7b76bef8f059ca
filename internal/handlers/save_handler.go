package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"knackhook/screening/internal/models"
	"knackhook/screening/internal/utils"
)

// SaveHandler writes a client-supplied JSON document to the data
// directory, timestamped so saves never collide.
type SaveHandler struct {
	dataDir string
	logger  *zap.Logger
	now     func() time.Time
}

func NewSaveHandler(dataDir string, logger *zap.Logger) *SaveHandler {
	return &SaveHandler{dataDir: dataDir, logger: logger, now: time.Now}
}

func (h *SaveHandler) SaveHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "read_failed",
			Message: "Failed to read request body",
		})
		return
	}

	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "invalid_json",
			Message: "Request body must be valid JSON",
		})
		return
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "invalid_json",
			Message: "Request body must be valid JSON",
		})
		return
	}

	if err := os.MkdirAll(h.dataDir, 0o755); err != nil {
		h.logger.Error("failed to create data directory", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "save_failed",
			Message: "Failed to save data",
		})
		return
	}

	filename := fmt.Sprintf("result-%d.json", h.now().UnixMilli())
	if err := os.WriteFile(filepath.Join(h.dataDir, filename), data, 0o644); err != nil {
		h.logger.Error("failed to write result file", zap.String("filename", filename), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "save_failed",
			Message: "Failed to save data",
		})
		return
	}

	utils.JSON(w, http.StatusOK, models.SaveResponse{
		Message:  "Data saved successfully",
		Filename: filename,
	})
}
