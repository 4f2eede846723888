package extractor

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ExtractTXT decodes a plain-text upload. There is no minimum length here;
// short content is rejected later by the analysis gate.
func ExtractTXT(data []byte) (string, error) {
	text, err := decodeText(data)
	if err != nil {
		return "", newError(FormatTXT, ErrUndecodableText, err)
	}

	if !mostlyPrintable(text) {
		return "", newError(FormatTXT, ErrUndecodableText, errors.New("content does not look like text"))
	}

	return cleanText(text), nil
}

// decodeText returns UTF-8 text. UTF-8 (with or without BOM) passes through;
// UTF-16 is recognized by its BOM; anything else that is not valid UTF-8 is
// read as Windows-1252.
func decodeText(data []byte) (string, error) {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return string(data[3:]), nil
	}

	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE {
		return decodeWith(xunicode.UTF16(xunicode.LittleEndian, xunicode.UseBOM).NewDecoder(), data)
	}

	if len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF {
		return decodeWith(xunicode.UTF16(xunicode.BigEndian, xunicode.UseBOM).NewDecoder(), data)
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	return decodeWith(charmap.Windows1252.NewDecoder(), data)
}

func decodeWith(t transform.Transformer, data []byte) (string, error) {
	decoded, _, err := transform.Bytes(t, data)
	if err != nil {
		return "", fmt.Errorf("failed to decode text: %w", err)
	}
	return string(decoded), nil
}

// mostlyPrintable samples the first 512 runes and requires 80% of them to be
// printable or whitespace.
func mostlyPrintable(text string) bool {
	const sampleSize = 512

	total, printable := 0, 0
	for _, r := range text {
		if total == sampleSize {
			break
		}
		total++
		if r == '\x00' {
			continue
		}
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}

	if total == 0 {
		return true
	}
	return float64(printable)/float64(total) >= 0.8
}

// cleanText normalizes line endings, drops NULs and blank lines, and trims
// every line.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\x00", "")

	lines := strings.Split(text, "\n")

	cleaned := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}

	return strings.Join(cleaned, "\n")
}
