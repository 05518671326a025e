package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/juank27/alegra-api/internal"
	"github.com/juank27/alegra-api/internal/alegra"
	"github.com/juank27/alegra-api/internal/auth"
	"github.com/juank27/alegra-api/internal/pipeline"
	"github.com/juank27/alegra-api/internal/storage"
)

const maxUploadBytes = 10 << 20

type BillService struct {
	processor *pipeline.ProcessingService
	store     *auth.TokenStore
	db        *storage.DB
	uploadDir string
	logger    *slog.Logger
}

func NewBillService(processor *pipeline.ProcessingService, store *auth.TokenStore, db *storage.DB, uploadDir string, logger *slog.Logger) *BillService {
	return &BillService{processor: processor, store: store, db: db, uploadDir: uploadDir, logger: logger}
}

func (s *BillService) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// UploadBills accepts a multipart .csv or .xlsx file and runs the
// full pipeline against the invoicing API.
func (s *BillService) UploadBills(w http.ResponseWriter, r *http.Request) {
	path, cleanup, err := s.receiveUpload(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	defer cleanup()

	rows, err := s.processor.DecodeFile(path)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}

	report, err := s.processor.Process(r.Context(), auth.UserEmail(r.Context()), filepath.Base(path), rows)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}

	if len(report.GroupingErrors) > 0 || len(report.BatchErrors) > 0 {
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"traceId":   report.TraceID,
			"submitted": report.Submitted,
			"errors": map[string]any{
				"grouping": report.GroupingErrors,
				"batch":    report.BatchErrors,
			},
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message":   "batch submitted",
		"traceId":   report.TraceID,
		"submitted": report.Submitted,
	})
}

// PreviewBills runs decode/validate/group/transform without touching
// the remote service and returns the would-be bills.
func (s *BillService) PreviewBills(w http.ResponseWriter, r *http.Request) {
	path, cleanup, err := s.receiveUpload(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	defer cleanup()

	rows, err := s.processor.DecodeFile(path)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}

	bills, groupErrs, err := s.processor.Preview(rows)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	if groupErrs == nil {
		groupErrs = []internal.GroupingError{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"bills":          bills,
		"groupingErrors": groupErrs,
	})
}

// IssueToken creates, encrypts and stores a fresh API token for the
// given email. The plaintext token is returned exactly once.
func (s *BillService) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"message": "email is required"})
		return
	}

	token, err := auth.GenerateToken()
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "token generation failed"})
		return
	}
	if err := s.store.SaveToken(req.Email, token); err != nil {
		s.logger.Error("saving token failed", "email", req.Email, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "saving token failed"})
		return
	}

	s.logger.Info("token issued", "email", req.Email, "by", auth.UserEmail(r.Context()))
	respondJSON(w, http.StatusCreated, map[string]string{"email": req.Email, "token": token})
}

// ListBatches returns the most recent processed uploads.
func (s *BillService) ListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := s.db.ListBatches(50)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "listing batches failed"})
		return
	}
	if batches == nil {
		batches = []storage.BatchRow{}
	}
	respondJSON(w, http.StatusOK, batches)
}

// receiveUpload writes the multipart file to the upload dir and hands
// back a cleanup that removes it on every exit path.
func (s *BillService) receiveUpload(r *http.Request) (string, func(), error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", nil, errors.New("no file uploaded")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, errors.New("no file uploaded")
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".csv" && ext != ".xlsx" {
		return "", nil, errors.New("unsupported file type, expected .csv or .xlsx")
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", nil, errors.New("upload storage unavailable")
	}
	tmp, err := os.CreateTemp(s.uploadDir, "upload-*"+ext)
	if err != nil {
		return "", nil, errors.New("upload storage unavailable")
	}
	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", nil, errors.New("reading upload failed")
	}
	_ = tmp.Close()

	path := tmp.Name()
	return path, func() { _ = os.Remove(path) }, nil
}

func (s *BillService) respondPipelineError(w http.ResponseWriter, err error) {
	var inputErr *pipeline.InputError
	if errors.As(err, &inputErr) {
		respondJSON(w, http.StatusBadRequest, map[string]string{"message": inputErr.Message})
		return
	}

	var validationErr *pipeline.ValidationFailed
	if errors.As(err, &validationErr) {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"message": "validation failed",
			"errors":  validationErr.Errors,
		})
		return
	}

	if errors.Is(err, alegra.ErrNoTemplate) {
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": alegra.ErrNoTemplate.Error()})
		return
	}

	s.logger.Error("upload processing failed", "error", err)
	respondJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
