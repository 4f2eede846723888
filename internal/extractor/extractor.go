// Package extractor turns uploaded résumé files into plain text.
//
// Dispatch is by file extension. Every failure is an *Error whose Kind is one
// of the sentinel errors below; the Kind's text is safe to show to callers,
// the Cause is for logs only.
package extractor

import (
	"path/filepath"
	"strings"
)

// minExtractedChars is the "looks empty" floor applied by the PDF and Word
// extractors.
const minExtractedChars = 10

type Format int

const (
	FormatUnknown Format = iota
	FormatPDF
	FormatDOCX
	FormatDOCLegacy
	FormatTXT
)

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatDOCX:
		return "docx"
	case FormatDOCLegacy:
		return "doc"
	case FormatTXT:
		return "txt"
	default:
		return "unknown"
	}
}

// FormatFromFilename maps a file name to its Format by extension, ignoring case.
func FormatFromFilename(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDOCX
	case ".doc":
		return FormatDOCLegacy
	case ".txt":
		return FormatTXT
	default:
		return FormatUnknown
	}
}

// Kind classifies an extraction failure. Error returns a short name for
// logs; Message is the text shown to callers.
type Kind struct {
	name    string
	message string
}

func (k *Kind) Error() string   { return k.name }
func (k *Kind) Message() string { return k.message }

var (
	ErrUnsupportedFormat    = &Kind{"unsupported format", "Unsupported file format. Please upload a PDF, DOCX, DOC or TXT file."}
	ErrUnreadablePDF        = &Kind{"unreadable pdf", "Failed to extract text from PDF. Please ensure the PDF contains selectable text."}
	ErrEmptyOrImageOnlyPDF  = &Kind{"empty or image-only pdf", "PDF appears to be empty or contains only images. Please upload a PDF with selectable text."}
	ErrUnreadableDocument   = &Kind{"unreadable document", "Failed to extract text from Word document."}
	ErrEmptyDocument        = &Kind{"empty document", "Document appears to be empty."}
	ErrLegacyDocUnsupported = &Kind{"legacy doc unsupported", "Legacy .doc format not fully supported. Please convert to .docx or PDF."}
	ErrUndecodableText      = &Kind{"undecodable text", "Text file could not be decoded. Please upload a plain text file."}
)

// Error is returned by every extractor.
type Error struct {
	Format Format
	Kind   *Kind
	Cause  error
}

func (e *Error) Error() string {
	msg := e.Format.String() + " extraction: " + e.Kind.Error()
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// UserMessage is the caller-facing text for the failure.
func (e *Error) UserMessage() string {
	return e.Kind.Message()
}

func newError(format Format, kind *Kind, cause error) *Error {
	return &Error{Format: format, Kind: kind, Cause: cause}
}

// Extract converts data to text according to format.
func Extract(format Format, data []byte) (string, error) {
	switch format {
	case FormatPDF:
		return ExtractPDF(data)
	case FormatDOCX:
		return ExtractDOCX(data)
	case FormatDOCLegacy:
		return ExtractDOC(data)
	case FormatTXT:
		return ExtractTXT(data)
	default:
		return "", newError(format, ErrUnsupportedFormat, nil)
	}
}

// ExtractFile is Extract with the format taken from the file name.
func ExtractFile(filename string, data []byte) (string, error) {
	return Extract(FormatFromFilename(filename), data)
}

func looksEmpty(text string) bool {
	return len([]rune(strings.TrimSpace(text))) < minExtractedChars
}
