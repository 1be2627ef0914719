// Package extraction turns an uploaded resume into plain text. PDF and DOCX
// files are parsed; anything else is read as UTF-8 with invalid bytes
// dropped.
package extraction

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	apperrors "github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/errors"
)

// Format identifies how a document was decoded.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatText Format = "text"
)

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")

	xmlTag       = regexp.MustCompile(`<[^>]+>`)
	inlineSpace  = regexp.MustCompile(`[ \t\r\f\v\x{00A0}]+`)
	blankLines   = regexp.MustCompile(`\n\s*\n+`)
	paragraphEnd = strings.NewReplacer("</w:p>", "\n", "<w:tab/>", "\t", "<w:br/>", "\n")
)

// Document is the text pulled from an upload.
type Document struct {
	Text   string
	Format Format
}

// DetectFormat picks a decoder from the file extension, falling back to the
// leading bytes when the extension is missing or unknown.
func DetectFormat(filename string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDOCX
	case ".txt", ".md", ".text":
		return FormatText
	}
	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return FormatPDF
	case bytes.HasPrefix(data, zipMagic) && hasZipEntry(data, "word/document.xml"):
		return FormatDOCX
	default:
		return FormatText
	}
}

// Extract decodes data according to DetectFormat. A file that claims to be
// PDF or DOCX but cannot be parsed yields ErrUnsupportedFormat. The returned
// text may be empty; callers decide whether that is an error.
func Extract(filename string, data []byte) (Document, error) {
	format := DetectFormat(filename, data)
	var (
		text string
		err  error
	)
	switch format {
	case FormatPDF:
		text, err = extractPDF(data)
	case FormatDOCX:
		text, err = extractDOCX(data)
	default:
		text = strings.ToValidUTF8(string(data), "")
	}
	if err != nil {
		return Document{Format: format}, fmt.Errorf("%w: %s: %v", apperrors.ErrUnsupportedFormat, format, err)
	}
	return Document{Text: text, Format: format}, nil
}

// extractPDF concatenates the plain text of every page. The parser can
// panic on malformed cross-reference tables, so panics become errors.
func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(pageText)
		b.WriteByte('\n')
	}
	return strings.ToValidUTF8(b.String(), ""), nil
}

// extractDOCX reads word/document.xml and strips the markup, keeping
// paragraph breaks.
func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()

	body := paragraphEnd.Replace(doc.Editable().GetContent())
	body = xmlTag.ReplaceAllString(body, "")
	body = html.UnescapeString(body)
	body = inlineSpace.ReplaceAllString(body, " ")
	body = blankLines.ReplaceAllString(body, "\n")
	return strings.TrimSpace(strings.ToValidUTF8(body, "")), nil
}

func hasZipEntry(data []byte, name string) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if f.Name == name {
			return true
		}
	}
	return false
}

// ReadLimited reads at most limit bytes from r, reporting ErrDocumentTooLarge
// when more remain.
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: limit is %d bytes", apperrors.ErrDocumentTooLarge, limit)
	}
	return data, nil
}
