package extractor

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

// buildDOCX assembles a minimal word package around the given body XML.
func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()

	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document ` + wordNS + `><w:body>` + body + `</w:body></w:document>`,
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func TestFormatFromFilename(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"resume.pdf", FormatPDF},
		{"RESUME.PDF", FormatPDF},
		{"cv.docx", FormatDOCX},
		{"cv.Doc", FormatDOCLegacy},
		{"notes.txt", FormatTXT},
		{"photo.png", FormatUnknown},
		{"no-extension", FormatUnknown},
		{"archive.tar.gz", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFromFilename(tt.name))
		})
	}
}

func TestExtractTXT(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{name: "short text is returned as is", data: []byte("ab"), want: "ab"},
		{name: "empty file", data: []byte{}, want: ""},
		{name: "utf8 bom", data: append([]byte{0xEF, 0xBB, 0xBF}, []byte("Jane Doe")...), want: "Jane Doe"},
		{name: "utf16 little endian", data: []byte{0xFF, 0xFE, 'H', 0, 'i', 0}, want: "Hi"},
		{name: "utf16 big endian", data: []byte{0xFE, 0xFF, 0, 'H', 0, 'i'}, want: "Hi"},
		{name: "windows-1252 fallback", data: []byte("caf\xe9"), want: "café"},
		{name: "line endings and blank lines", data: []byte("  one \r\n\r\ntwo\rthree\n"), want: "one\ntwo\nthree"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractTXT(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTXT_Binary(t *testing.T) {
	data := bytes.Repeat([]byte{0x01, 0x02, 0x03, 0x1F}, 64)

	_, err := ExtractTXT(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUndecodableText)
}

func TestExtractDOCX(t *testing.T) {
	body := `<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t xml:space="preserve">Senior </w:t></w:r><w:r><w:t>Engineer</w:t></w:r></w:p>` +
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Go</w:t></w:r><w:r><w:tab/><w:t>Kubernetes</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
		`<w:p><w:r><w:t>Line one</w:t><w:br/><w:t>Line two</w:t></w:r></w:p>`

	text, err := ExtractDOCX(buildDOCX(t, body))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nSenior Engineer\nGo\tKubernetes\nLine one\nLine two", text)
}

func TestExtractDOCX_TextBoxReadOnce(t *testing.T) {
	textBox := `<w:txbxContent><w:p><w:r><w:t>Contact: jane@example.com</w:t></w:r></w:p></w:txbxContent>`
	body := `<w:p><w:r><w:t>Jane Doe Engineer</w:t></w:r></w:p>` +
		`<w:p><w:r><mc:AlternateContent xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006">` +
		`<mc:Choice Requires="wps"><w:drawing><wps:txbx xmlns:wps="http://schemas.microsoft.com/office/word/2010/wordprocessingShape">` + textBox + `</wps:txbx></w:drawing></mc:Choice>` +
		`<mc:Fallback><w:pict><v:textbox xmlns:v="urn:schemas-microsoft-com:vml">` + textBox + `</v:textbox></w:pict></mc:Fallback>` +
		`</mc:AlternateContent></w:r></w:p>` +
		`<w:p><w:r><w:t>Skills: Go</w:t></w:r></w:p>`

	text, err := ExtractDOCX(buildDOCX(t, body))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe Engineer\nContact: jane@example.com\nSkills: Go", text)
	assert.Equal(t, 1, strings.Count(text, "jane@example.com"))
}

func TestExtractDOCX_Errors(t *testing.T) {
	t.Run("empty document", func(t *testing.T) {
		_, err := ExtractDOCX(buildDOCX(t, `<w:p><w:r><w:t>tiny</w:t></w:r></w:p>`))
		assert.ErrorIs(t, err, ErrEmptyDocument)
	})

	t.Run("not a zip", func(t *testing.T) {
		_, err := ExtractDOCX([]byte("definitely not a word document"))
		assert.ErrorIs(t, err, ErrUnreadableDocument)
	})
}

func TestExtractDOC(t *testing.T) {
	t.Run("docx saved with a .doc name", func(t *testing.T) {
		text, err := ExtractDOC(buildDOCX(t, `<w:p><w:r><w:t>Experienced product manager</w:t></w:r></w:p>`))
		require.NoError(t, err)
		assert.Equal(t, "Experienced product manager", text)
	})

	t.Run("binary word 97 file", func(t *testing.T) {
		ole := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, bytes.Repeat([]byte{0}, 512)...)
		_, err := ExtractDOC(ole)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrLegacyDocUnsupported)

		var extractErr *Error
		require.True(t, errors.As(err, &extractErr))
		assert.Equal(t, FormatDOCLegacy, extractErr.Format)
		assert.Equal(t, "Legacy .doc format not fully supported. Please convert to .docx or PDF.", extractErr.UserMessage())
	})

	t.Run("empty docx content", func(t *testing.T) {
		_, err := ExtractDOC(buildDOCX(t, ``))
		assert.ErrorIs(t, err, ErrLegacyDocUnsupported)
	})
}

// buildPDF writes a single-page PDF whose page draws the given content stream
// with a WinAnsi Helvetica font bound to /F1.
func buildPDF(content string) []byte {
	objects := []string{
		`<< /Type /Catalog /Pages 2 0 R >>`,
		`<< /Type /Pages /Kids [3 0 R] /Count 1 >>`,
		`<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>`,
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		`<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>`,
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

func TestExtractPDF(t *testing.T) {
	t.Run("text layer", func(t *testing.T) {
		content := `BT /F1 12 Tf 72 720 Td (Jane Doe) Tj ET ` +
			`BT /F1 12 Tf 72 700 Td (Senior Backend Engineer) Tj ET`

		text, err := ExtractPDF(buildPDF(content))
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe\nSenior Backend Engineer", text)
	})

	t.Run("vector drawing only", func(t *testing.T) {
		_, err := ExtractPDF(buildPDF(`0 0 m 100 100 l S`))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptyOrImageOnlyPDF)

		var extractErr *Error
		require.True(t, errors.As(err, &extractErr))
		assert.Equal(t, FormatPDF, extractErr.Format)
	})
}

func TestExtractPDF_Unreadable(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: []byte{}},
		{name: "not a pdf", data: []byte("hello, I am a text file pretending to be a PDF")},
		{name: "truncated header", data: []byte("%PDF-1.4\n%%EOF")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractPDF(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnreadablePDF)

			var extractErr *Error
			require.True(t, errors.As(err, &extractErr))
			assert.Equal(t, FormatPDF, extractErr.Format)
			assert.NotContains(t, extractErr.UserMessage(), "pdf reader")
		})
	}
}

func TestExtract_Dispatch(t *testing.T) {
	text, err := ExtractFile("resume.TXT", []byte("plain text resume"))
	require.NoError(t, err)
	assert.Equal(t, "plain text resume", text)

	_, err = ExtractFile("resume.rtf", []byte("{\\rtf1}"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	var extractErr *Error
	require.True(t, errors.As(err, &extractErr))
	assert.Equal(t, ErrUnsupportedFormat.Message(), extractErr.UserMessage())
}

func TestError_KeepsCauseOutOfUserMessage(t *testing.T) {
	cause := errors.New("xref table corrupt at offset 1234")
	err := newError(FormatPDF, ErrUnreadablePDF, cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrUnreadablePDF)
	assert.Contains(t, err.Error(), "xref table corrupt")
	assert.NotContains(t, err.UserMessage(), "xref")
}
