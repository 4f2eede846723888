package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractPDF returns the selectable text layer of a PDF.
func ExtractPDF(data []byte) (text string, err error) {
	// The PDF reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = newError(FormatPDF, ErrUnreadablePDF, fmt.Errorf("pdf reader panic: %v", r))
		}
	}()

	reader := bytes.NewReader(data)

	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", newError(FormatPDF, ErrUnreadablePDF, err)
	}

	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n")
	}

	extracted := strings.TrimSpace(textBuilder.String())
	if looksEmpty(extracted) {
		return "", newError(FormatPDF, ErrEmptyOrImageOnlyPDF, fmt.Errorf("%d pages, %d characters of text", numPages, len(extracted)))
	}

	return extracted, nil
}
