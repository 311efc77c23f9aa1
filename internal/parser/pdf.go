package parser

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

const (
	// baselineTolerance is how far (in points) two glyphs' baselines may
	// differ and still belong to the same line.
	baselineTolerance = 2.0

	// wordGapRatio is the horizontal gap, as a fraction of the font size,
	// that separates two words. Generators that position words with Td or
	// TJ offsets instead of space glyphs rely on this.
	wordGapRatio = 0.15

	// columnGapRatio is the gap beyond which two glyphs on one baseline are
	// treated as separate blocks, such as table cells or columns.
	columnGapRatio = 3.0
)

// PDFParser extracts typographic spans from PDF files.
type PDFParser struct{}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return parsePDF(data, filename)
}

func parsePDF(data []byte, filename string) (doc *doctree.Document, err error) {
	// ledongthuc/pdf reports malformed objects by panicking.
	defer func() {
		if rec := recover(); rec != nil {
			doc = nil
			err = fmt.Errorf("%w: %v", ErrUnreadable, rec)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	numPages := reader.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("%w: no pages", ErrUnreadable)
	}

	doc = &doctree.Document{
		Filename:  filename,
		MetaTitle: metadataTitle(reader),
		PageCount: numPages,
	}

	readable := 0
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		glyphs, ok := pageGlyphs(page)
		if !ok {
			continue
		}
		readable++

		for _, l := range groupLines(groupRuns(glyphs)) {
			for _, sp := range l.spans() {
				sp.Page = i - 1
				sp.Order = len(doc.Spans)
				doc.Spans = append(doc.Spans, sp)
			}
		}
	}

	if readable == 0 {
		return nil, fmt.Errorf("%w: no extractable pages", ErrUnreadable)
	}
	return doc, nil
}

// pageGlyphs interprets one page's content stream. A page that makes the
// library panic is skipped rather than failing the whole document.
func pageGlyphs(page pdflib.Page) (glyphs []pdflib.Text, ok bool) {
	defer func() {
		if recover() != nil {
			glyphs, ok = nil, false
		}
	}()
	return page.Content().Text, true
}

func metadataTitle(reader *pdflib.Reader) string {
	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return ""
	}
	return normalizeText(info.Key("Title").Text())
}

// textRun is a sequence of glyphs sharing font, size and baseline.
type textRun struct {
	font string
	size float64
	x, y float64
	end  float64 // Right edge of the last glyph.
	text strings.Builder
}

func groupRuns(glyphs []pdflib.Text) []*textRun {
	var runs []*textRun
	var cur *textRun

	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		size := roundTenth(math.Abs(g.FontSize))
		if size == 0 {
			// Rotated or degenerate text matrices.
			continue
		}

		if cur == nil || g.Font != cur.font || size != cur.size ||
			math.Abs(g.Y-cur.y) > baselineTolerance ||
			g.X < cur.end-baselineTolerance || g.X-cur.end > columnGapRatio*size {
			cur = &textRun{font: g.Font, size: size, x: g.X, y: g.Y}
			runs = append(runs, cur)
		} else if g.X-cur.end > wordGapRatio*size {
			cur.text.WriteByte(' ')
		}
		cur.text.WriteString(g.S)
		cur.end = g.X + g.W
	}
	return runs
}

// line is a set of runs sharing a baseline, superscripts and subscripts
// included.
type line struct {
	y    float64 // Baseline of the first run assigned
	size float64 // Largest run size
	runs []*textRun
}

// lineTolerance is how far a run's baseline may sit from a line's and still
// belong to it: half the larger font size, at least baselineTolerance.
func lineTolerance(a, b float64) float64 {
	return max(baselineTolerance, max(a, b)/2)
}

// groupLines clusters runs into lines top to bottom (PDF y grows upward) and
// orders each line's runs left to right. Both sorts are stable, so runs
// sharing an origin keep content-stream order.
func groupLines(runs []*textRun) []*line {
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].y > runs[j].y })

	var lines []*line
	var cur *line
	for _, r := range runs {
		if cur == nil || cur.y-r.y > lineTolerance(cur.size, r.size) {
			cur = &line{y: r.y}
			lines = append(lines, cur)
		}
		cur.runs = append(cur.runs, r)
		cur.size = max(cur.size, r.size)
	}

	for _, l := range lines {
		sort.SliceStable(l.runs, func(i, j int) bool { return l.runs[i].x < l.runs[j].x })
	}
	return lines
}

// spans merges horizontally adjacent runs of the line into one span each.
// Runs further apart than the column gap stay separate spans. A merged span
// takes the largest size and the font covering the most characters. It is
// bold when bold glyphs make up at least half of its characters.
func (l *line) spans() []doctree.Span {
	var out []doctree.Span
	var group []*textRun
	flush := func() {
		if sp, ok := mergeRuns(group); ok {
			out = append(out, sp)
		}
		group = group[:0]
	}

	for _, r := range l.runs {
		if len(group) > 0 {
			prev := group[len(group)-1]
			if r.x-prev.end > columnGapRatio*max(prev.size, r.size) {
				flush()
			}
		}
		group = append(group, r)
	}
	flush()
	return out
}

func mergeRuns(runs []*textRun) (doctree.Span, bool) {
	if len(runs) == 0 {
		return doctree.Span{}, false
	}

	var text strings.Builder
	chars := make(map[string]int)
	boldChars, total := 0, 0
	top := runs[0]
	for i, r := range runs {
		t := r.text.String()
		if i > 0 {
			prev := runs[i-1]
			gap := r.x - prev.end
			if gap > wordGapRatio*max(prev.size, r.size) &&
				!strings.HasSuffix(text.String(), " ") && !strings.HasPrefix(t, " ") {
				text.WriteByte(' ')
			}
		}
		text.WriteString(t)

		n := len(strings.ReplaceAll(t, " ", ""))
		chars[r.font] += n
		total += n
		if isBoldFont(r.font) {
			boldChars += n
		}
		if r.size > top.size {
			top = r
		}
	}

	normalized := normalizeText(text.String())
	if normalized == "" {
		return doctree.Span{}, false
	}

	font := runs[0].font
	for _, r := range runs {
		if chars[r.font] > chars[font] {
			font = r.font
		}
	}

	return doctree.Span{
		Text:     normalized,
		FontSize: top.size,
		Font:     font,
		IsBold:   total > 0 && 2*boldChars >= total,
		X:        runs[0].x,
		Y:        top.y,
	}, true
}

func isBoldFont(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range []string{"bold", "black", "heavy", "semibold", "demi"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
