package extractor

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// ExtractDOCX returns the raw text of an Office Open XML document.
func ExtractDOCX(data []byte) (string, error) {
	text, err := wordText(data)
	if err != nil {
		return "", newError(FormatDOCX, ErrUnreadableDocument, err)
	}
	if looksEmpty(text) {
		return "", newError(FormatDOCX, ErrEmptyDocument, nil)
	}
	return text, nil
}

// ExtractDOC tries the DOCX path on a legacy .doc upload. Files that really are
// the old binary format always fail here.
func ExtractDOC(data []byte) (string, error) {
	text, err := wordText(data)
	if err != nil {
		return "", newError(FormatDOCLegacy, ErrLegacyDocUnsupported, err)
	}
	if looksEmpty(text) {
		return "", newError(FormatDOCLegacy, ErrLegacyDocUnsupported, errors.New("document is empty"))
	}
	return text, nil
}

func wordText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open word package: %w", err)
	}
	defer doc.Close()

	return documentXMLText(doc.Editable().GetContent())
}

// documentXMLText walks word/document.xml and keeps the text of every <w:t>,
// including those nested in tables and text boxes. Paragraph ends and breaks
// become newlines, tabs become tabs. Inside mc:AlternateContent only the
// mc:Choice branch is read; mc:Fallback repeats the same text for older readers.
func documentXMLText(content string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(content))

	var (
		b             strings.Builder
		inText        bool
		fallbackDepth int
	)

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document.xml: %w", err)
		}

		if fallbackDepth > 0 {
			switch tok.(type) {
			case xml.StartElement:
				fallbackDepth++
			case xml.EndElement:
				fallbackDepth--
			}
			continue
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "Fallback":
				fallbackDepth = 1
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return cleanText(b.String()), nil
}
