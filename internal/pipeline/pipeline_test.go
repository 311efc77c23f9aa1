package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/collection"
	"github.com/dgallion1/docoutline/internal/output"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pdftest"
	"github.com/dgallion1/docoutline/internal/persona"
	"github.com/dgallion1/docoutline/internal/rank"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProcessor() *Processor {
	return NewProcessor(persona.Defaults(), rank.DefaultOptions(), 4, testLogger())
}

func travelGuide() []byte {
	return pdftest.Build(pdftest.Doc{
		Pages: [][]pdftest.Line{
			pdftest.Page(
				pdftest.Bold("Coastal Travel Guide", 24),
				pdftest.Body("This guide covers the coast in spring.", 11),
			),
			pdftest.Page(
				pdftest.Bold("1. Hotels", 18),
				pdftest.Body("Book a hotel near the old town for your trip.", 11),
				pdftest.Body("Parking is hard in summer.", 11),
			),
			pdftest.Page(
				pdftest.Bold("2. History", 18),
				pdftest.Body("The region changed hands many times.", 11),
			),
		},
	})
}

func fixedClock() time.Time {
	return time.Date(2025, 7, 10, 15, 31, 22, 0, time.UTC)
}

func TestProcessor_Outline(t *testing.T) {
	p := newTestProcessor()
	o, err := p.Outline(Input{Filename: "guide.pdf", Data: travelGuide()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Title != "Coastal Travel Guide" {
		t.Errorf("unexpected title %q", o.Title)
	}
	if len(o.Headings) != 2 {
		t.Fatalf("expected 2 headings, got %+v", o.Headings)
	}
	if o.Headings[0].Text != "1. Hotels" || o.Headings[0].Page != 1 {
		t.Errorf("unexpected first heading %+v", o.Headings[0])
	}
	if p.Stats().Snapshot().Count != 1 {
		t.Errorf("expected one latency sample, got %d", p.Stats().Snapshot().Count)
	}
}

func TestProcessor_OutlineUnreadable(t *testing.T) {
	o, err := newTestProcessor().Outline(Input{Filename: "broken.pdf", Data: []byte("not a pdf at all")})
	if !errors.Is(err, parser.ErrUnreadable) {
		t.Fatalf("expected ErrUnreadable, got %v", err)
	}
	if o.Title != "broken" {
		t.Errorf("expected stem title, got %q", o.Title)
	}
	if o.Headings == nil || len(o.Headings) != 0 {
		t.Errorf("expected empty non-nil headings, got %#v", o.Headings)
	}
}

func TestProcessor_AnalyzeIsolatesFailures(t *testing.T) {
	p := newTestProcessor()
	var progressed int
	res, failures := p.Analyze(context.Background(), AnalyzeRequest{
		Persona: "Travel Planner",
		Job:     "Plan a trip of 4 days for a group of friends",
		Documents: []Input{
			{Filename: "guide.pdf", Data: travelGuide()},
			{Filename: "broken.pdf", Data: []byte("%PDF-1.4 garbage")},
			{Filename: "missing.pdf"},
		},
		Timestamp: fixedClock(),
		Progress:  func(string, error) { progressed++ },
	})

	if len(failures) != 2 {
		t.Fatalf("expected 2 failures, got %+v", failures)
	}
	if failures[0].Item != "broken.pdf" || failures[1].Item != "missing.pdf" {
		t.Errorf("expected failures in document order, got %+v", failures)
	}
	if !errors.Is(failures[1].Err, ErrNotUploaded) {
		t.Errorf("expected ErrNotUploaded, got %v", failures[1].Err)
	}
	if progressed != 3 {
		t.Errorf("expected progress for 3 documents, got %d", progressed)
	}

	if got := res.Metadata.InputDocuments; len(got) != 3 || got[0] != "guide.pdf" {
		t.Errorf("unexpected input documents %v", got)
	}
	if res.Metadata.ProcessingTimestamp != "2025-07-10T15:31:22Z" {
		t.Errorf("unexpected timestamp %q", res.Metadata.ProcessingTimestamp)
	}
	if len(res.ExtractedSections) == 0 {
		t.Fatal("expected ranked sections from the readable document")
	}
	top := res.ExtractedSections[0]
	if top.SectionTitle != "1. Hotels" || top.PageNumber != 2 || top.ImportanceRank != 1 {
		t.Errorf("unexpected top section %+v", top)
	}
	if res.SubsectionAnalysis[0].RefinedText != "Book a hotel near the old town for your trip." {
		t.Errorf("unexpected refined text %q", res.SubsectionAnalysis[0].RefinedText)
	}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func readOutline(t *testing.T, path string) output.OutlineResult {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var res output.OutlineResult
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return res
}

func TestRunOutlines(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(in, "guide.pdf"), travelGuide())
	writeFile(t, filepath.Join(in, "broken.pdf"), []byte("garbage"))
	writeFile(t, filepath.Join(in, "notes.md"), []byte("# Packing List\n\nBring a hat.\n"))
	writeFile(t, filepath.Join(in, "image.png"), []byte{0x89, 'P', 'N', 'G'})

	report, err := newTestProcessor().RunOutlines(context.Background(), in, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Total != 3 || report.Written != 3 || report.Failed() != 1 {
		t.Errorf("unexpected report %+v", report)
	}

	guide := readOutline(t, filepath.Join(out, "guide.json"))
	if guide.Title != "Coastal Travel Guide" || len(guide.Outline) != 2 {
		t.Errorf("unexpected guide outline %+v", guide)
	}
	if guide.Outline[0] != (output.OutlineEntry{Level: "H1", Text: "1. Hotels", Page: 2}) {
		t.Errorf("unexpected first entry %+v", guide.Outline[0])
	}

	broken := readOutline(t, filepath.Join(out, "broken.json"))
	if broken.Title != "broken" || broken.Outline == nil || len(broken.Outline) != 0 {
		t.Errorf("expected empty outline titled by stem, got %+v", broken)
	}

	notes := readOutline(t, filepath.Join(out, "notes.json"))
	if notes.Title != "Packing List" {
		t.Errorf("unexpected markdown title %q", notes.Title)
	}

	if _, err := os.Stat(filepath.Join(out, "image.json")); !os.IsNotExist(err) {
		t.Errorf("expected unsupported file to be skipped, stat err %v", err)
	}
}

func TestRunOutlines_Idempotent(t *testing.T) {
	in := t.TempDir()
	writeFile(t, filepath.Join(in, "guide.pdf"), travelGuide())
	p := newTestProcessor()

	var outputs [][]byte
	for range 2 {
		out := t.TempDir()
		if _, err := p.RunOutlines(context.Background(), in, out); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(filepath.Join(out, "guide.json"))
		if err != nil {
			t.Fatal(err)
		}
		outputs = append(outputs, data)
	}
	if !bytes.Equal(outputs[0], outputs[1]) {
		t.Errorf("expected byte-identical runs:\n%s\n%s", outputs[0], outputs[1])
	}
}

func TestRunOutlines_MissingInputDir(t *testing.T) {
	_, err := newTestProcessor().RunOutlines(context.Background(), filepath.Join(t.TempDir(), "nope"), t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing input directory")
	}
}

func TestOutputNames_StemCollision(t *testing.T) {
	names := outputNames([]Input{
		{Filename: "report.md"},
		{Filename: "report.pdf"},
		{Filename: "summary.pdf"},
		{Filename: "summary.pdf.txt"},
		{Filename: "summary.txt"},
	})
	want := []string{"report.md.json", "report.json", "summary.json", "summary.pdf.json", "summary.txt.json"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("name %d: expected %q, got %q", i, want[i], names[i])
		}
	}
}

func TestRunOutlines_PDFKeepsStemName(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(in, "guide.md"), []byte("# Packing List\n\nBring a hat.\n"))
	writeFile(t, filepath.Join(in, "guide.pdf"), travelGuide())

	report, err := newTestProcessor().RunOutlines(context.Background(), in, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Written != 2 {
		t.Errorf("unexpected report %+v", report)
	}
	if pdf := readOutline(t, filepath.Join(out, "guide.json")); pdf.Title != "Coastal Travel Guide" {
		t.Errorf("expected guide.json to hold the PDF outline, got %+v", pdf)
	}
	if md := readOutline(t, filepath.Join(out, "guide.md.json")); md.Title != "Packing List" {
		t.Errorf("expected guide.md.json to hold the markdown outline, got %+v", md)
	}
}

func TestRunCollections(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()

	good := filepath.Join(in, "Collection 1")
	writeFile(t, filepath.Join(good, collection.InputFile), []byte(`{
		"challenge_info": {"challenge_id": "round_1b_002"},
		"documents": [{"filename": "guide.pdf", "title": "Guide"}, {"filename": "gone.pdf", "title": "Gone"}],
		"persona": {"role": "Travel Planner"},
		"job_to_be_done": {"task": "Plan a trip of 4 days for a group of friends"}
	}`))
	writeFile(t, filepath.Join(good, collection.DocumentDir, "guide.pdf"), travelGuide())

	bad := filepath.Join(in, "Collection 2")
	writeFile(t, filepath.Join(bad, collection.InputFile), []byte(`{"persona": "Travel Planner"}`))

	p := newTestProcessor()
	report, err := p.RunCollections(context.Background(), in, out, fixedClock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Total != 2 || report.Written != 1 {
		t.Errorf("unexpected report %+v", report)
	}
	if report.Failed() != 2 {
		t.Fatalf("expected 2 failures, got %+v", report.Failures)
	}
	if report.Failures[0].Item != "Collection 1/gone.pdf" {
		t.Errorf("unexpected first failure %q", report.Failures[0].Item)
	}
	var cfgErr *collection.ConfigurationError
	if !errors.As(report.Failures[1].Err, &cfgErr) {
		t.Errorf("expected ConfigurationError, got %v", report.Failures[1].Err)
	}

	path := filepath.Join(out, "Collection 1", OutputFile)
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var res output.AnalysisResult
	if err := json.Unmarshal(first, &res); err != nil {
		t.Fatal(err)
	}
	if res.Metadata.Persona != "Travel Planner" || len(res.Metadata.InputDocuments) != 2 {
		t.Errorf("unexpected metadata %+v", res.Metadata)
	}
	if len(res.ExtractedSections) == 0 || res.ExtractedSections[0].SectionTitle != "1. Hotels" {
		t.Errorf("unexpected sections %+v", res.ExtractedSections)
	}
	if _, err := os.Stat(filepath.Join(out, "Collection 2")); !os.IsNotExist(err) {
		t.Errorf("expected no output for malformed collection, stat err %v", err)
	}

	// Same inputs and clock give the same bytes.
	if _, err := p.RunCollections(context.Background(), in, out, fixedClock); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("expected byte-identical output across runs")
	}
}
