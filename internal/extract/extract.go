package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/microcosm-cc/bluemonday"
)

// Supported content types.
const (
	TypePDF      = "application/pdf"
	TypeText     = "text/plain"
	TypeMarkdown = "text/markdown"
	TypeDOC      = "application/msword"
	TypeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// DefaultMaxBytes is the upload ceiling (10 MiB).
const DefaultMaxBytes int64 = 10 << 20

// File is an uploaded payload with its declared content type.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the payload length in bytes.
func (f File) Size() int64 {
	return int64(len(f.Data))
}

// Extractor turns supported documents into plain text.
type Extractor struct {
	maxBytes int64
	strip    *bluemonday.Policy
}

// New builds an Extractor enforcing maxBytes (DefaultMaxBytes when <= 0).
func New(maxBytes int64) *Extractor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Extractor{
		maxBytes: maxBytes,
		strip:    bluemonday.StrictPolicy(),
	}
}

// MaxBytes returns the configured size ceiling.
func (e *Extractor) MaxBytes() int64 {
	return e.maxBytes
}

// Validate checks type and size preconditions and returns the normalized type.
func (e *Extractor) Validate(f File) (string, error) {
	normalized := NormalizeType(f.ContentType, f.Name, f.Data)
	if !IsSupported(normalized) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, displayType(f.ContentType, normalized))
	}
	if f.Size() > e.maxBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, f.Size(), e.maxBytes)
	}
	return normalized, nil
}

// Extract returns the plain text of f. Callers run Validate first; Extract
// re-checks the type so it never guesses at unknown formats.
func (e *Extractor) Extract(ctx context.Context, f File) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	normalized := NormalizeType(f.ContentType, f.Name, f.Data)

	var (
		text string
		err  error
	)
	switch normalized {
	case TypePDF:
		text, err = extractPDF(f.Data)
	case TypeText, TypeMarkdown:
		text, err = decodeText(f.Data)
	case TypeDOCX:
		text, err = extractDOCX(f.Data)
	case TypeDOC:
		text, err = e.stripMarkup(f.Data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, displayType(f.ContentType, normalized))
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrExtraction, f.Name, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: %s: no text found", ErrExtraction, f.Name)
	}
	return text, nil
}

// IsSupported reports whether a normalized content type has an extraction strategy.
func IsSupported(contentType string) bool {
	switch contentType {
	case TypePDF, TypeText, TypeMarkdown, TypeDOC, TypeDOCX:
		return true
	default:
		return false
	}
}

// NormalizeType lowercases the declared type, resolves aliases, and falls back
// to the file extension when the browser sent a generic type.
func NormalizeType(contentType, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch clean {
	case "text/x-markdown", "text/md":
		return TypeMarkdown
	case "application/zip":
		if hasZipEntry(data, "word/document.xml") {
			return TypeDOCX
		}
		return clean
	case "", "application/octet-stream":
		if byExt := typeFromExt(fileName); byExt != "" {
			return byExt
		}
	}
	return clean
}

func typeFromExt(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return TypePDF
	case ".txt":
		return TypeText
	case ".md", ".markdown":
		return TypeMarkdown
	case ".doc":
		return TypeDOC
	case ".docx":
		return TypeDOCX
	default:
		return ""
	}
}

func displayType(declared, normalized string) string {
	if normalized != "" {
		return normalized
	}
	if declared != "" {
		return declared
	}
	return "unknown"
}

func extractPDF(data []byte) (text string, err error) {
	// ledongthuc/pdf panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		raw, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		if line := collapseSpaces(raw); line != "" {
			pages = append(pages, line)
		}
	}
	return strings.Join(pages, "\n"), nil
}

func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", errors.New("payload is not valid UTF-8 text")
	}
	return string(data), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	return docxText(rc)
}

// docxText keeps character data and breaks lines at paragraph and break ends.
func docxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteByte(' ')
			}
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && buf.Len() > 0 {
				buf.WriteByte('\n')
			}
		}
	}
	return buf.String(), nil
}

// stripMarkup is the best-effort strategy for legacy word-processor files:
// keep printable text, drop anything tag-like, collapse whitespace.
func (e *Extractor) stripMarkup(data []byte) (string, error) {
	printable := strings.Map(func(r rune) rune {
		if r == utf8.RuneError || (unicode.IsControl(r) && !unicode.IsSpace(r)) {
			return ' '
		}
		return r
	}, string(data))

	sanitized := html.UnescapeString(e.strip.Sanitize(printable))
	return collapseSpaces(sanitized), nil
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func hasZipEntry(data []byte, name string) bool {
	if len(data) == 0 {
		return false
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == name {
			return true
		}
	}
	return false
}
