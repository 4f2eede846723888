// Package analyzer produces the career-coaching analysis of a résumé.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BerylCAtieno/resume-analyzer-api/internal/llm"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/models"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/utils"
)

// MinTextLength is the shortest trimmed résumé text worth analyzing.
const MinTextLength = 50

var (
	ErrTooShort           = errors.New("resume text is too short")
	ErrMalformedResponse  = errors.New("malformed model response")
	ErrIncompleteAnalysis = errors.New("incomplete analysis")
	ErrProviderQuota      = errors.New("llm provider quota exceeded")
	ErrProviderAuth       = errors.New("llm provider rejected credentials")
	ErrTimeout            = errors.New("analysis timed out")
	ErrAnalysisFailed     = errors.New("analysis failed")
)

type Analyzer interface {
	Analyze(ctx context.Context, text string) (*models.AnalysisResult, error)
}

type Options struct {
	MaxTokens     int
	Temperature   float64
	Timeout       time.Duration
	MaxInputChars int
}

type resumeAnalyzer struct {
	client llm.Client
	opts   Options
	logger *utils.Logger
}

func NewResumeAnalyzer(client llm.Client, opts Options, logger *utils.Logger) Analyzer {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1500
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = utils.NewDiscardLogger()
	}

	return &resumeAnalyzer{
		client: client,
		opts:   opts,
		logger: logger,
	}
}

func (a *resumeAnalyzer) Analyze(ctx context.Context, text string) (*models.AnalysisResult, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < MinTextLength {
		return nil, ErrTooShort
	}

	if a.opts.MaxInputChars > 0 && utf8.RuneCountInString(text) > a.opts.MaxInputChars {
		a.logger.Info("Truncating resume text for analysis", "chars", utf8.RuneCountInString(text), "limit", a.opts.MaxInputChars)
		text = string([]rune(text)[:a.opts.MaxInputChars])
	}

	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	started := time.Now()
	content, err := a.client.Complete(ctx, llm.CompletionRequest{
		System:      systemPrompt,
		User:        buildUserPrompt(text),
		MaxTokens:   a.opts.MaxTokens,
		Temperature: a.opts.Temperature,
	})
	if err != nil {
		mapped := mapProviderError(err)
		a.logger.Error("LLM request failed", "error", err, "kind", mapped, "elapsed", time.Since(started))
		return nil, fmt.Errorf("%w: %v", mapped, err)
	}

	raw, err := parseModelOutput(content)
	if err != nil {
		a.logger.Error("Failed to parse LLM response", "error", err, "content", truncateForLog(content))
		return nil, err
	}

	result, err := validate(raw)
	if err != nil {
		a.logger.Error("LLM response failed validation", "error", err)
		return nil, err
	}

	result = normalize(result)

	a.logger.Info("Resume analyzed",
		"score", result.Score,
		"strengths", len(result.Strengths),
		"improvements", len(result.Improvements),
		"talking_points", len(result.TalkingPoints),
		"elapsed", time.Since(started))

	return result, nil
}

// mapProviderError classifies an LLM client failure.
func mapProviderError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}

	var pe *llm.ProviderError
	if errors.As(err, &pe) {
		switch {
		case pe.IsQuota():
			return ErrProviderQuota
		case pe.IsAuth():
			return ErrProviderAuth
		}
	}

	return ErrAnalysisFailed
}

func truncateForLog(s string) string {
	const limit = 500
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
