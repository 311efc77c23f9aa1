package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"golang.org/x/text/unicode/norm"
)

// ErrUnreadable marks a document the extractor could not read: corrupt bytes,
// encryption without a usable password, or no extractable pages.
var ErrUnreadable = errors.New("unreadable document")

// Parser converts raw document bytes into a span stream.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// BodyFontSize is the synthetic size given to body text of formats that carry
// structure but no typography.
const BodyFontSize = 10.0

// HeadingFontSize maps a structural heading level (1..6) to a synthetic size.
func HeadingFontSize(level int) float64 {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return BodyFontSize + 2*float64(7-level)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
	".csv":      true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Stem returns the base filename without its extension.
func Stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// normalizeText applies NFKC (folding ligatures such as "ﬁ") and collapses
// runs of whitespace to single spaces.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

// spanList accumulates spans for the structure-only formats.
type spanList struct {
	spans []doctree.Span
}

func (l *spanList) add(text string, size float64, bold bool, page int) {
	text = normalizeText(text)
	if text == "" {
		return
	}
	l.spans = append(l.spans, doctree.Span{
		Text:     text,
		FontSize: size,
		IsBold:   bold,
		Page:     page,
		Order:    len(l.spans),
	})
}
