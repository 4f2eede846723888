package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/BerylCAtieno/resume-analyzer-api/internal/models"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/services"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/utils"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"
)

// formOverhead is the room left for multipart boundaries and the identity
// field on top of the file itself.
const formOverhead = 1 << 20

// Field names accepted for the upload form. The first name is the one the
// web client sends.
var (
	identityFields = []string{"userId", "identity"}
	fileFields     = []string{"resume", "file"}
)

type ResumeHandler struct {
	service     services.ResumeService
	logger      *utils.Logger
	maxFileSize int64
}

func NewResumeHandler(service services.ResumeService, maxFileSize int64, logger *utils.Logger) *ResumeHandler {
	return &ResumeHandler{
		service:     service,
		logger:      logger,
		maxFileSize: maxFileSize,
	}
}

func (h *ResumeHandler) AnalyzeResume(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+formOverhead)

	// Parts beyond 32MB spill to temp files; RemoveAll below deletes them.
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		if isBodyTooLarge(err) {
			RespondError(w, h.logger, utils.NewPayloadTooLargeError(
				fmt.Sprintf("File size exceeds the %s limit", humanize.IBytes(uint64(h.maxFileSize)))))
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			RespondError(w, h.logger, utils.NewBadRequestError("Invalid form data").WithCause(err))
			return
		}
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	req := &models.AnalyzeRequest{Identity: formValue(r, identityFields)}

	if header := formFile(r, fileFields); header != nil {
		req.Filename = header.Filename
		req.ContentType = header.Header.Get("Content-Type")
		req.Size = header.Size
		req.Open = func() (io.ReadCloser, error) { return header.Open() }
	}

	h.logger.Info("Resume analysis requested",
		"identity", req.Identity,
		"filename", req.Filename,
		"content_type", req.ContentType,
		"size", req.Size)

	resp, err := h.service.AnalyzeResume(r.Context(), req)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, resp)
}

func (h *ResumeHandler) GetAnalysisStatus(w http.ResponseWriter, r *http.Request) {
	identity := strings.TrimSpace(mux.Vars(r)["identity"])
	if identity == "" {
		RespondError(w, h.logger, utils.NewBadRequestError("User ID is required"))
		return
	}

	status, err := h.service.GetAnalysisStatus(r.Context(), identity)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, status)
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	// Older multipart paths flatten the error into text.
	return strings.Contains(err.Error(), "request body too large")
}

func formValue(r *http.Request, names []string) string {
	for _, name := range names {
		if v := strings.TrimSpace(r.FormValue(name)); v != "" {
			return v
		}
	}
	return ""
}

func formFile(r *http.Request, names []string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	for _, name := range names {
		if headers := r.MultipartForm.File[name]; len(headers) > 0 {
			return headers[0]
		}
	}
	return nil
}

func respondJSON(w http.ResponseWriter, logger *utils.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

// RespondError writes err as a JSON error body. Only *AppError messages reach
// the client.
func RespondError(w http.ResponseWriter, logger *utils.Logger, err error) {
	resp := models.ErrorResponse{Error: "Internal server error"}
	status := http.StatusInternalServerError

	if appErr, ok := utils.AsAppError(err); ok {
		status = appErr.StatusCode
		resp.Error = appErr.Message
		resp.HasAnalyzed = appErr.HasAnalyzed
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "status", status, "error", err)
	} else {
		logger.Info("Request rejected", "status", status, "error", err)
	}

	respondJSON(w, logger, status, resp)
}
