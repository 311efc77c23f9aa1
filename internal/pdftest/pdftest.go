// Package pdftest builds small, well-formed PDF files for tests. Text is set
// in Helvetica and Helvetica-Bold with explicit glyph widths so extracted
// positions are predictable.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// Line is one run of text drawn at a fixed position.
type Line struct {
	Text string
	Size float64
	Bold bool
	X, Y float64
}

// Doc describes a PDF to build.
type Doc struct {
	Title string   // Info dictionary /Title, omitted when empty
	Pages [][]Line // Lines per page, in content-stream order
}

// Page lays out lines top-down starting at y=760, one line per entry.
func Page(lines ...Line) []Line {
	y := 760.0
	out := make([]Line, len(lines))
	for i, l := range lines {
		if l.X == 0 {
			l.X = 72
		}
		if l.Y == 0 {
			l.Y = y
		}
		y = l.Y - l.Size*1.8
		out[i] = l
	}
	return out
}

// Body is a regular-weight line.
func Body(text string, size float64) Line { return Line{Text: text, Size: size} }

// Bold is a bold line.
func Bold(text string, size float64) Line { return Line{Text: text, Size: size, Bold: true} }

// Width is the advance of text at size. Every glyph is 500 units wide.
func Width(text string, size float64) float64 {
	return float64(len(text)) * size / 2
}

// Inline lays parts out left to right on the baseline y, starting at x.
// Parts keep their own Size and Bold; a part with a non-zero Y keeps it,
// for superscripts and subscripts.
func Inline(x, y float64, parts ...Line) []Line {
	out := make([]Line, len(parts))
	for i, p := range parts {
		p.X = x
		if p.Y == 0 {
			p.Y = y
		}
		x += Width(p.Text, p.Size)
		out[i] = p
	}
	return out
}

// Build renders d as PDF bytes.
func Build(d Doc) []byte {
	w := &writer{}
	w.buf.WriteString("%PDF-1.4\n")

	numPages := len(d.Pages)
	// Object layout: 1 catalog, 2 pages, 3 regular font, 4 bold font,
	// 5 info, then a page and a content stream per page.
	firstPage := 6
	kids := make([]string, numPages)
	for i := range d.Pages {
		kids[i] = fmt.Sprintf("%d 0 R", firstPage+2*i)
	}

	w.object(1, "<< /Type /Catalog /Pages 2 0 R >>")
	w.object(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), numPages))
	w.object(3, fontDict("Helvetica"))
	w.object(4, fontDict("Helvetica-Bold"))
	if d.Title != "" {
		w.object(5, fmt.Sprintf("<< /Title (%s) /Producer (pdftest) >>", escape(d.Title)))
	} else {
		w.object(5, "<< /Producer (pdftest) >>")
	}

	for i, lines := range d.Pages {
		pageObj := firstPage + 2*i
		contentObj := pageObj + 1
		w.object(pageObj, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R /F2 4 0 R >> >> /Contents %d 0 R >>",
			contentObj))

		var content bytes.Buffer
		for _, l := range lines {
			font := "F1"
			if l.Bold {
				font = "F2"
			}
			fmt.Fprintf(&content, "BT /%s %s Tf %s %s Td (%s) Tj ET\n",
				font, num(l.Size), num(l.X), num(l.Y), escape(l.Text))
		}
		w.object(contentObj, fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()))
	}

	total := firstPage + 2*numPages
	xrefAt := w.buf.Len()
	fmt.Fprintf(&w.buf, "xref\n0 %d\n", total)
	w.buf.WriteString("0000000000 65535 f \n")
	for obj := 1; obj < total; obj++ {
		fmt.Fprintf(&w.buf, "%010d 00000 n \n", w.offsets[obj])
	}
	fmt.Fprintf(&w.buf, "trailer\n<< /Size %d /Root 1 0 R /Info 5 0 R >>\nstartxref\n%d\n%%%%EOF\n", total, xrefAt)
	return w.buf.Bytes()
}

// Write builds d into dir/name and returns the path.
func Write(t testing.TB, dir, name string, d Doc) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(d), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

type writer struct {
	buf     bytes.Buffer
	offsets map[int]int
}

func (w *writer) object(n int, body string) {
	if w.offsets == nil {
		w.offsets = make(map[int]int)
	}
	w.offsets[n] = w.buf.Len()
	fmt.Fprintf(&w.buf, "%d 0 obj\n%s\nendobj\n", n, body)
}

func fontDict(base string) string {
	widths := make([]string, 126-32+1)
	for i := range widths {
		widths[i] = "500"
	}
	return fmt.Sprintf(
		"<< /Type /Font /Subtype /Type1 /BaseFont /%s /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>",
		base, strings.Join(widths, " "))
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
