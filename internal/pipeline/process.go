package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/juank27/alegra-api/internal"
	"github.com/juank27/alegra-api/internal/config"
	"github.com/juank27/alegra-api/internal/storage"
)

// InputError marks a rejected upload (shape problems, not remote
// failures); callers map it to a 400.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

// ValidationFailed rejects the whole upload before any remote call.
type ValidationFailed struct {
	Errors []internal.ValidationError
}

func (e *ValidationFailed) Error() string {
	return fmt.Sprintf("%d rows with missing required fields", len(e.Errors))
}

type ProcessingService struct {
	db     *storage.DB
	cfg    config.Config
	api    InvoiceAPI
	logger *slog.Logger
}

func NewProcessingService(db *storage.DB, cfg config.Config, api InvoiceAPI, logger *slog.Logger) *ProcessingService {
	return &ProcessingService{db: db, cfg: cfg, api: api, logger: logger}
}

// DecodeFile reads an uploaded file and decodes it by extension.
func (s *ProcessingService) DecodeFile(path string) ([]internal.Row, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return DecodeCSV(string(blob)), nil
	case ".xlsx":
		return DecodeXLSX(blob)
	default:
		return nil, &InputError{Message: fmt.Sprintf("unsupported file extension: %s", filepath.Ext(path))}
	}
}

func (s *ProcessingService) checkRows(rows []internal.Row) error {
	if len(rows) < 1 {
		return &InputError{Message: "no data in file"}
	}
	if len(rows) > s.cfg.MaxRowsPerUpload {
		return &InputError{Message: fmt.Sprintf("file exceeds limit of %d rows", s.cfg.MaxRowsPerUpload)}
	}
	return nil
}

// Preview runs the local half of the pipeline (no remote calls) and
// returns the bills that would be submitted. Bills carry no template
// id since none was resolved.
func (s *ProcessingService) Preview(rows []internal.Row) ([]internal.Bill, []internal.GroupingError, error) {
	if err := s.checkRows(rows); err != nil {
		return nil, nil, err
	}
	if validationErrs := Validate(rows); len(validationErrs) > 0 {
		return nil, nil, &ValidationFailed{Errors: validationErrs}
	}
	bills, groupErrs := Transform(Group(rows), 0)
	return bills, groupErrs, nil
}

// Process runs the full pipeline for one upload: gates, validation,
// template resolution, transform, sequential submission, audit row.
func (s *ProcessingService) Process(ctx context.Context, userEmail, fileName string, rows []internal.Row) (internal.BatchReport, error) {
	start := time.Now()

	if err := s.checkRows(rows); err != nil {
		return internal.BatchReport{}, err
	}
	if validationErrs := Validate(rows); len(validationErrs) > 0 {
		return internal.BatchReport{}, &ValidationFailed{Errors: validationErrs}
	}

	template, err := s.api.FindSupportTemplate(ctx)
	if err != nil {
		return internal.BatchReport{}, fmt.Errorf("resolving number template: %w", err)
	}

	groups := Group(rows)
	bills, groupErrs := Transform(groups, template.ID)
	for _, ge := range groupErrs {
		s.logger.Error("group dropped", "groupId", ge.GroupID, "reason", ge.Message)
	}

	batchErrs := SubmitBatch(ctx, s.api, bills, s.logger)

	report := internal.BatchReport{
		TraceID:        traceID(),
		Rows:           len(rows),
		Groups:         len(groups),
		Submitted:      len(bills) - len(batchErrs),
		GroupingErrors: groupErrs,
		BatchErrors:    batchErrs,
	}
	if report.GroupingErrors == nil {
		report.GroupingErrors = []internal.GroupingError{}
	}

	if err := s.db.InsertBatch(userEmail, fileName, report); err != nil {
		s.logger.Error("recording batch failed", "traceId", report.TraceID, "error", err)
	}
	s.logger.Info("batch done",
		"traceId", report.TraceID,
		"rows", report.Rows,
		"groups", report.Groups,
		"submitted", report.Submitted,
		"failed", len(report.BatchErrors),
		"totalMs", time.Since(start).Milliseconds(),
	)

	return report, nil
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
