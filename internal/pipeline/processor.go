package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/output"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/persona"
	"github.com/dgallion1/docoutline/internal/rank"
	"golang.org/x/sync/errgroup"
)

// ErrNotUploaded marks a collection document that has neither a path nor
// uploaded content.
var ErrNotUploaded = errors.New("document not provided")

// Input is one document to process. Data wins over Path when both are set.
type Input struct {
	Filename string
	Path     string
	Data     []byte
}

func (in Input) read() ([]byte, error) {
	if in.Data != nil {
		return in.Data, nil
	}
	if in.Path == "" {
		return nil, ErrNotUploaded
	}
	return os.ReadFile(in.Path)
}

// Failure is an isolated per-item error.
type Failure struct {
	Item string
	Err  error
}

// Processor runs outline extraction and persona analysis. It holds no
// per-document state and is safe for concurrent use.
type Processor struct {
	assembler *outline.Assembler
	personas  *persona.Library
	options   rank.Options
	workers   int
	stats     *LatencyStats
	log       *slog.Logger
}

func NewProcessor(personas *persona.Library, opts rank.Options, workers int, log *slog.Logger) *Processor {
	if workers <= 0 {
		workers = 1
	}
	if personas == nil {
		personas = persona.Defaults()
	}
	return &Processor{
		assembler: outline.DefaultAssembler(),
		personas:  personas,
		options:   opts,
		workers:   workers,
		stats:     NewLatencyStats(time.Hour),
		log:       log,
	}
}

// Stats returns per-document processing latencies.
func (p *Processor) Stats() *LatencyStats { return p.stats }

// Personas returns the persona library used for analysis.
func (p *Processor) Personas() *persona.Library { return p.personas }

// Parse extracts the span stream of one document.
func (p *Processor) Parse(in Input) (*doctree.Document, error) {
	start := time.Now()
	defer func() { p.stats.Record(time.Since(start).Milliseconds()) }()

	name := filepath.Base(in.Filename)
	ps, err := parser.ForFile(name)
	if err != nil {
		return nil, err
	}
	data, err := in.read()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	doc, err := ps.Parse(bytes.NewReader(data), name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return doc, nil
}

// Outline returns the outline of one document. When the document cannot be
// read the outline is still valid: titled with the filename stem and
// without headings. The error is returned alongside for reporting.
func (p *Processor) Outline(in Input) (doctree.Outline, error) {
	doc, err := p.Parse(in)
	if err != nil {
		return doctree.Outline{
			Title:    parser.Stem(in.Filename),
			Headings: []doctree.Heading{},
		}, err
	}
	return p.assembler.Outline(doc), nil
}

// Sections splits one document into heading-delimited sections.
func (p *Processor) Sections(in Input, docIndex int) ([]doctree.Section, error) {
	doc, err := p.Parse(in)
	if err != nil {
		return nil, err
	}
	return outline.Sections(doc, p.assembler.Assemble(doc), docIndex), nil
}

// AnalyzeRequest describes one persona analysis.
type AnalyzeRequest struct {
	Persona   string
	Job       string
	Documents []Input
	Timestamp time.Time

	// Progress, when set, is called once per document after it is parsed.
	// It may be called concurrently.
	Progress func(filename string, err error)
}

// Analyze parses every document concurrently, ranks their sections against
// the persona and job, and returns the analysis together with the documents
// that could not be read. Unreadable documents contribute no sections.
func (p *Processor) Analyze(ctx context.Context, req AnalyzeRequest) (output.AnalysisResult, []Failure) {
	log := p.log.With("persona", req.Persona)

	perDoc := make([][]doctree.Section, len(req.Documents))
	errs := make([]error, len(req.Documents))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, in := range req.Documents {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
			} else {
				perDoc[i], errs[i] = p.Sections(in, i)
			}
			if req.Progress != nil {
				req.Progress(in.Filename, errs[i])
			}
			return nil
		})
	}
	g.Wait()

	var sections []doctree.Section
	var failures []Failure
	filenames := make([]string, len(req.Documents))
	for i, in := range req.Documents {
		filenames[i] = in.Filename
		if errs[i] != nil {
			log.Warn("document skipped", "doc", in.Filename, "error", errs[i])
			failures = append(failures, Failure{Item: in.Filename, Err: errs[i]})
			continue
		}
		sections = append(sections, perDoc[i]...)
	}

	profile, known := p.personas.Lookup(req.Persona)
	if !known {
		log.Info("unknown persona, using generic profile")
	}
	analysis := rank.Analyze(sections, profile, req.Job, p.options)
	log.Info("analysis complete",
		"documents", len(req.Documents),
		"sections", len(sections),
		"ranked", len(analysis.Ranked),
	)

	return output.FromAnalysis(output.Metadata{
		InputDocuments:      filenames,
		Persona:             req.Persona,
		JobToBeDone:         req.Job,
		ProcessingTimestamp: req.Timestamp.Format(time.RFC3339),
	}, analysis), failures
}
