package handlers

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"knackhook/screening/internal/extract"
	"knackhook/screening/internal/models"
	"knackhook/screening/internal/utils"
)

// maxUploadBytes caps uploaded document size.
const maxUploadBytes = 10 << 20

// ExtractHandler turns uploaded resume and job description documents
// into plain text.
type ExtractHandler struct {
	logger *zap.Logger
}

func NewExtractHandler(logger *zap.Logger) *ExtractHandler {
	return &ExtractHandler{logger: logger}
}

func (h *ExtractHandler) ExtractHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "invalid_upload",
			Message: "Expected a multipart upload with a file field",
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "missing_file",
			Message: "No file uploaded",
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("failed to read upload", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "read_failed",
			Message: "Failed to read uploaded file",
		})
		return
	}

	text, err := extract.Text(uploadMime(header.Header.Get("Content-Type"), header.Filename), data)
	if err != nil {
		h.logger.Warn("text extraction failed",
			zap.String("filename", header.Filename),
			zap.Error(err))
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "extract_failed",
			Message: "Could not extract text from the uploaded file",
		})
		return
	}

	utils.JSON(w, http.StatusOK, models.ExtractResponse{Text: text})
}

// uploadMime resolves the document type, falling back to the file
// extension when the part carries no usable content type.
func uploadMime(contentType, filename string) string {
	if contentType != "" && contentType != "application/octet-stream" {
		if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
			return parsed
		}
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extract.MimePDF
	case ".docx":
		return extract.MimeDocx
	case ".txt":
		return extract.MimePlain
	}
	return contentType
}
