package services

import (
	"mime"
	"path/filepath"
	"strings"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeDOC  = "application/msword"
	contentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	contentTypeTXT  = "text/plain"
)

// contentTypeAliases maps the variants browsers send to the four accepted
// types.
var contentTypeAliases = map[string]string{
	contentTypePDF:  contentTypePDF,
	contentTypeDOC:  contentTypeDOC,
	contentTypeDOCX: contentTypeDOCX,
	contentTypeTXT:  contentTypeTXT,

	"application/x-pdf": contentTypePDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml": contentTypeDOCX,
	"application/docx":   contentTypeDOCX,
	"application/x-docx": contentTypeDOCX,
	"application/doc":    contentTypeDOC,
	"application/x-doc":  contentTypeDOC,
	"text/txt":           contentTypeTXT,
	"application/txt":    contentTypeTXT,
	"application/x-txt":  contentTypeTXT,
}

var extensionContentTypes = map[string]string{
	".pdf":  contentTypePDF,
	".doc":  contentTypeDOC,
	".docx": contentTypeDOCX,
	".txt":  contentTypeTXT,
}

// acceptedContentType resolves the declared MIME type of an upload. An empty
// or generic octet-stream declaration falls back to the file extension.
func acceptedContentType(declared, filename string) (string, bool) {
	mediaType := strings.ToLower(strings.TrimSpace(declared))
	if parsed, _, err := mime.ParseMediaType(declared); err == nil {
		mediaType = parsed
	}

	if mediaType == "" || mediaType == "application/octet-stream" {
		ct, ok := extensionContentTypes[strings.ToLower(filepath.Ext(filename))]
		return ct, ok
	}

	ct, ok := contentTypeAliases[mediaType]
	return ct, ok
}
