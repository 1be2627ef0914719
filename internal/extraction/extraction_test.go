package extraction

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/errors"
)

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body + `</w:body></w:document>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractPlainText(t *testing.T) {
	doc, err := Extract("resume.txt", []byte("Python developer\nSQL"))
	require.NoError(t, err)
	assert.Equal(t, FormatText, doc.Format)
	assert.Equal(t, "Python developer\nSQL", doc.Text)
}

func TestExtractDropsInvalidUTF8(t *testing.T) {
	doc, err := Extract("resume", []byte("Py\xffthon \xfe\xfdjava"))
	require.NoError(t, err)
	assert.Equal(t, "Python java", doc.Text)
}

func TestExtractUnknownExtensionIsText(t *testing.T) {
	doc, err := Extract("resume.rtf", []byte("react developer"))
	require.NoError(t, err)
	assert.Equal(t, FormatText, doc.Format)
	assert.Equal(t, "react developer", doc.Text)
}

func TestExtractDocx(t *testing.T) {
	data := buildDocx(t,
		`<w:p><w:r><w:t>Senior Python &amp; SQL engineer</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>React</w:t><w:tab/><w:t>Node.js</w:t></w:r></w:p>`)

	doc, err := Extract("cv.docx", data)
	require.NoError(t, err)
	assert.Equal(t, FormatDOCX, doc.Format)
	assert.Equal(t, "Senior Python & SQL engineer\nReact Node.js", doc.Text)
}

func TestExtractBrokenFilesAreUnsupported(t *testing.T) {
	_, err := Extract("cv.pdf", []byte("this is not a pdf"))
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFormat)

	_, err = Extract("cv.docx", []byte("this is not a zip"))
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFormat)
}

func TestDetectFormat(t *testing.T) {
	docx := buildDocx(t, "")
	tests := []struct {
		name string
		file string
		data []byte
		want Format
	}{
		{"pdf extension", "a.PDF", nil, FormatPDF},
		{"docx extension", "a.docx", nil, FormatDOCX},
		{"text extension wins over magic", "a.txt", []byte("%PDF-1.4"), FormatText},
		{"pdf magic", "upload", []byte("%PDF-1.7\n..."), FormatPDF},
		{"docx magic", "upload", docx, FormatDOCX},
		{"plain zip is text", "upload", []byte("PK\x03\x04garbage"), FormatText},
		{"no hints", "", []byte("hello"), FormatText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.file, tt.data))
		})
	}
}

func TestReadLimited(t *testing.T) {
	data, err := ReadLimited(strings.NewReader("12345"), 5)
	require.NoError(t, err)
	assert.Equal(t, "12345", string(data))

	_, err = ReadLimited(strings.NewReader("123456"), 5)
	assert.ErrorIs(t, err, apperrors.ErrDocumentTooLarge)
}
