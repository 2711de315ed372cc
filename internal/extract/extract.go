// Package extract turns uploaded files into plain text.
package extract

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Kind is a supported document format.
type Kind string

const (
	KindText Kind = "text"
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
)

const (
	ContentTypeText = "text/plain"
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	// DefaultPreviewLength is the number of characters shown in an upload preview.
	DefaultPreviewLength = 500
)

// ErrUnsupportedKind is returned for content types other than txt, pdf and docx.
var ErrUnsupportedKind = errors.New("unsupported file type (only TXT, PDF and DOCX allowed)")

// ErrEmptyText means extraction succeeded but produced no text.
var ErrEmptyText = errors.New("nothing to summarize")

// ExtractionError wraps a failure while reading a document of a given kind.
type ExtractionError struct {
	Kind Kind
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

var contentTypes = map[string]Kind{
	ContentTypeText: KindText,
	ContentTypePDF:  KindPDF,
	ContentTypeDOCX: KindDOCX,
}

var extensions = map[string]Kind{
	".txt":  KindText,
	".pdf":  KindPDF,
	".docx": KindDOCX,
}

// DetectKind resolves the document kind from the declared content type, falling
// back to the filename extension when the content type is missing or generic.
func DetectKind(contentType, filename string) (Kind, error) {
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			contentType = mt
		}
		if k, ok := contentTypes[strings.ToLower(contentType)]; ok {
			return k, nil
		}
		if contentType != "application/octet-stream" {
			return "", ErrUnsupportedKind
		}
	}
	if k, ok := extensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return k, nil
	}
	return "", ErrUnsupportedKind
}

// ContentType returns the canonical MIME type for k.
func (k Kind) ContentType() string {
	switch k {
	case KindText:
		return ContentTypeText
	case KindPDF:
		return ContentTypePDF
	case KindDOCX:
		return ContentTypeDOCX
	}
	return ""
}

// Text extracts plain text from content. Failures are *ExtractionError; a
// document without any text yields an *ExtractionError wrapping ErrEmptyText.
func Text(kind Kind, content []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch kind {
	case KindText:
		text = decodeText(content)
	case KindPDF:
		text, err = extractPDF(content)
	case KindDOCX:
		text, err = extractDOCX(content)
	default:
		err = ErrUnsupportedKind
	}
	if err != nil {
		return "", &ExtractionError{Kind: kind, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &ExtractionError{Kind: kind, Err: ErrEmptyText}
	}
	return text, nil
}

func decodeText(content []byte) string {
	s := strings.TrimPrefix(string(content), "\ufeff")
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "\uFFFD")
	}
	return s
}

// Preview returns the first n characters of text, followed by "..." when cut.
func Preview(text string, n int) string {
	if n <= 0 {
		n = DefaultPreviewLength
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n]) + "..."
}
