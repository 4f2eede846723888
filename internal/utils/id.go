package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateID returns a random UUID string.
func GenerateID() string {
	return uuid.NewString()
}

// StagedName builds a collision-resistant file name for an upload:
// resume-<unix millis>-<uuid><ext>, keeping the lower-cased original extension.
func StagedName(originalName string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("resume-%d-%s%s", now.UnixMilli(), GenerateID(), ext)
}
