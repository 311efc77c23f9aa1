package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// TextParser handles plain text files. Each blank-line separated paragraph
// becomes one body span; headings can still be found by their wording.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var spans spanList
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			spans.add(current.String(), BodyFontSize, false, 0)
			current.Reset()
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &doctree.Document{
		Filename:  filename,
		PageCount: 1,
		Spans:     spans.spans,
	}, nil
}
