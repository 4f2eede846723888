package utils

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStagedName(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	name := StagedName("My Resume.PDF", now)
	assert.Regexp(t, regexp.MustCompile(`^resume-1700000000123-[0-9a-f-]{36}\.pdf$`), name)
	assert.NotEqual(t, name, StagedName("My Resume.PDF", now))

	assert.Regexp(t, `^resume-1700000000123-[0-9a-f-]{36}$`, StagedName("noext", now))
}

func TestAppError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewInternalError("Failed to analyze resume").WithCause(cause)

	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.Equal(t, "Failed to analyze resume: disk full", err.Error())
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("handler: %w", err)
	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Same(t, err, appErr)

	_, ok = AsAppError(cause)
	assert.False(t, ok)
}

func TestForbiddenErrorFlagsAnalyzed(t *testing.T) {
	err := NewForbiddenError("limit reached")
	assert.Equal(t, http.StatusForbidden, err.StatusCode)
	assert.True(t, err.HasAnalyzed)
	assert.False(t, NewBadRequestError("x").HasAnalyzed)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf).With("component", "test")

	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown", "key", "value")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"component":"test"`)
}
