package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BerylCAtieno/resume-analyzer-api/internal/analyzer"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/events"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/extractor"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/models"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/quota"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/storage"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/utils"

	"github.com/dustin/go-humanize"
)

const (
	msgMissingIdentity = "User ID is required"
	msgQuotaExceeded   = "Resume analysis limit reached. You can only analyze one resume per account."
	msgMissingFile     = "No file uploaded"
	msgUnsupportedType = "Invalid file type. Only PDF, DOC, DOCX, and TXT files are allowed."
	msgTooShort        = "Resume content is too short or could not be extracted"
	msgProviderQuota   = "AI analysis quota exceeded. Please try again later."
	msgProviderAuth    = "AI analysis service is misconfigured. Please try again later."
	msgAnalysisFailed  = "Failed to analyze resume with AI. Please try again."
	msgAnalysisTimeout = "Resume analysis timed out. Please try again."
	msgInternal        = "Failed to analyze resume. Please try again."
	msgStatusFailed    = "Failed to retrieve analysis status"

	cleanupTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

type ResumeService interface {
	AnalyzeResume(ctx context.Context, req *models.AnalyzeRequest) (*models.AnalyzeResponse, error)
	GetAnalysisStatus(ctx context.Context, identity string) (*models.StatusResponse, error)
}

// ExtractFunc turns a staged upload into text; extractor.ExtractFile in
// production.
type ExtractFunc func(filename string, data []byte) (string, error)

type Dependencies struct {
	Stager      storage.Stager
	Quota       quota.Store
	Analyzer    analyzer.Analyzer
	Publisher   events.Publisher
	Extract     ExtractFunc
	Logger      *utils.Logger
	MaxFileSize int64
	Now         func() time.Time
}

type resumeService struct {
	stager      storage.Stager
	quota       quota.Store
	analyzer    analyzer.Analyzer
	publisher   events.Publisher
	extract     ExtractFunc
	logger      *utils.Logger
	maxFileSize int64
	now         func() time.Time
}

func NewService(deps Dependencies) ResumeService {
	s := &resumeService{
		stager:      deps.Stager,
		quota:       deps.Quota,
		analyzer:    deps.Analyzer,
		publisher:   deps.Publisher,
		extract:     deps.Extract,
		logger:      deps.Logger,
		maxFileSize: deps.MaxFileSize,
		now:         deps.Now,
	}

	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	if s.extract == nil {
		s.extract = extractor.ExtractFile
	}
	if s.logger == nil {
		s.logger = utils.NewDiscardLogger()
	}
	if s.maxFileSize <= 0 {
		s.maxFileSize = 10 << 20
	}
	if s.now == nil {
		s.now = time.Now
	}

	return s
}

// AnalyzeResume runs one request through the pipeline. Checks happen in a
// fixed order: identity, quota, file presence, type, size. Once a file is
// staged it is removed exactly once whatever the outcome.
func (s *resumeService) AnalyzeResume(ctx context.Context, req *models.AnalyzeRequest) (*models.AnalyzeResponse, error) {
	identity := strings.TrimSpace(req.Identity)
	if identity == "" {
		return nil, utils.NewBadRequestError(msgMissingIdentity)
	}

	logger := s.logger.With("identity", identity)

	has, err := s.quota.Has(ctx, identity)
	if err != nil {
		logger.Error("Failed to check analysis quota", "error", err)
		return nil, utils.NewInternalError(msgInternal).WithCause(err)
	}
	if has {
		logger.Info("Analysis rejected, quota already used")
		return nil, utils.NewForbiddenError(msgQuotaExceeded)
	}

	if !req.HasFile() {
		return nil, utils.NewBadRequestError(msgMissingFile)
	}

	filename := filepath.Base(req.Filename)
	contentType, ok := acceptedContentType(req.ContentType, filename)
	if !ok {
		logger.Warn("Unsupported content type", "content_type", req.ContentType, "filename", filename)
		return nil, utils.NewBadRequestError(msgUnsupportedType)
	}

	if req.Size > s.maxFileSize {
		return nil, s.tooLarge()
	}

	staged, err := s.stage(ctx, req, filename, contentType)
	if err != nil {
		return nil, err
	}
	defer s.cleanup(ctx, logger, staged)

	if staged.Size > s.maxFileSize {
		return nil, s.tooLarge()
	}

	data, err := s.stager.Read(ctx, staged)
	if err != nil {
		logger.Error("Failed to read staged file", "error", err, "key", staged.Key)
		return nil, utils.NewInternalError(msgInternal).WithCause(err)
	}

	text, err := s.extract(filename, data)
	if err != nil {
		logger.Warn("Failed to extract text", "error", err, "filename", filename)
		return nil, extractionError(err)
	}

	if utf8.RuneCountInString(strings.TrimSpace(text)) < analyzer.MinTextLength {
		logger.Info("Extracted text too short", "chars", utf8.RuneCountInString(strings.TrimSpace(text)))
		return nil, utils.NewBadRequestError(msgTooShort)
	}

	logger.Info("Starting resume analysis", "filename", filename, "text_length", len(text))

	result, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		logger.Error("Failed to analyze resume", "error", err)
		return nil, analysisError(err)
	}

	record := models.QuotaRecord{
		Identity:   identity,
		AnalyzedAt: s.now().UTC(),
		FileName:   filename,
	}
	if err := s.quota.Commit(ctx, record); err != nil {
		if errors.Is(err, quota.ErrAlreadyRecorded) {
			logger.Warn("Concurrent analysis lost the quota commit")
			return nil, utils.NewForbiddenError(msgQuotaExceeded)
		}
		logger.Error("Failed to commit analysis quota", "error", err)
		return nil, utils.NewInternalError(msgInternal).WithCause(err)
	}

	s.publish(ctx, logger, models.AnalysisEvent{
		Identity:   identity,
		FileName:   filename,
		Score:      result.Score,
		AnalyzedAt: record.AnalyzedAt,
	})

	logger.Info("Resume analyzed successfully", "filename", filename, "score", result.Score)

	return &models.AnalyzeResponse{
		Success:  true,
		Analysis: result,
		FileName: filename,
	}, nil
}

func (s *resumeService) GetAnalysisStatus(ctx context.Context, identity string) (*models.StatusResponse, error) {
	record, err := s.quota.Peek(ctx, strings.TrimSpace(identity))
	if err != nil {
		s.logger.Error("Failed to read analysis status", "error", err, "identity", identity)
		return nil, utils.NewInternalError(msgStatusFailed).WithCause(err)
	}

	if record == nil {
		return &models.StatusResponse{HasAnalyzed: false}, nil
	}

	analyzedAt := record.AnalyzedAt
	return &models.StatusResponse{
		HasAnalyzed: true,
		AnalyzedAt:  &analyzedAt,
		FileName:    record.FileName,
	}, nil
}

func (s *resumeService) stage(ctx context.Context, req *models.AnalyzeRequest, filename, contentType string) (storage.Staged, error) {
	file, err := req.Open()
	if err != nil {
		s.logger.Error("Failed to open uploaded file", "error", err)
		return storage.Staged{}, utils.NewInternalError(msgInternal).WithCause(err)
	}
	defer file.Close()

	// One byte past the limit is enough to detect an understated size.
	body := io.LimitReader(file, s.maxFileSize+1)

	staged, err := s.stager.Stage(ctx, body, req.Size, filename, contentType)
	if err != nil {
		s.logger.Error("Failed to stage upload", "error", err)
		return storage.Staged{}, utils.NewInternalError(msgInternal).WithCause(err)
	}
	return staged, nil
}

// cleanup removes the staged file. It runs on a context detached from the
// request so a cancelled request still cleans up; failures are only logged.
func (s *resumeService) cleanup(ctx context.Context, logger *utils.Logger, staged storage.Staged) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if err := s.stager.Remove(ctx, staged); err != nil {
		logger.Error("Failed to delete staged file", "error", err, "key", staged.Key)
	}
}

func (s *resumeService) publish(ctx context.Context, logger *utils.Logger, event models.AnalysisEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Error("Failed to publish analysis event", "error", err)
	}
}

func (s *resumeService) tooLarge() *utils.AppError {
	return utils.NewPayloadTooLargeError(fmt.Sprintf("File size exceeds the %s limit", humanize.IBytes(uint64(s.maxFileSize))))
}

func extractionError(err error) *utils.AppError {
	var extractErr *extractor.Error
	if errors.As(err, &extractErr) {
		return utils.NewUnprocessableError(extractErr.UserMessage()).WithCause(err)
	}
	return utils.NewInternalError(msgInternal).WithCause(err)
}

func analysisError(err error) *utils.AppError {
	switch {
	case errors.Is(err, analyzer.ErrTooShort):
		return utils.NewBadRequestError(msgTooShort).WithCause(err)
	case errors.Is(err, analyzer.ErrProviderQuota):
		return utils.NewServiceUnavailableError(msgProviderQuota).WithCause(err)
	case errors.Is(err, analyzer.ErrProviderAuth):
		return utils.NewInternalError(msgProviderAuth).WithCause(err)
	case errors.Is(err, analyzer.ErrTimeout):
		return utils.NewGatewayTimeoutError(msgAnalysisTimeout).WithCause(err)
	case errors.Is(err, analyzer.ErrMalformedResponse),
		errors.Is(err, analyzer.ErrIncompleteAnalysis),
		errors.Is(err, analyzer.ErrAnalysisFailed):
		return utils.NewBadGatewayError(msgAnalysisFailed).WithCause(err)
	default:
		return utils.NewInternalError(msgInternal).WithCause(err)
	}
}
