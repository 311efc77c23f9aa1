package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dgallion1/docoutline/internal/collection"
	"github.com/dgallion1/docoutline/internal/output"
	"github.com/dgallion1/docoutline/internal/parser"
	"golang.org/x/sync/errgroup"
)

// OutputFile is the name of the analysis written for each collection.
const OutputFile = "challenge1b_output.json"

// Report summarises a batch run. Failures holds every isolated failure:
// unreadable documents, malformed collections and failed writes.
type Report struct {
	Total    int // Items found in the input
	Written  int // Output files written
	Failures []Failure
}

func (r Report) Failed() int { return len(r.Failures) }

// RunOutlines writes <stem>.json to outDir for every supported document in
// inDir. Documents are processed concurrently. Unreadable documents still get
// a file with an empty outline. The error is non-nil only when inDir cannot
// be listed.
func (p *Processor) RunOutlines(ctx context.Context, inDir, outDir string) (Report, error) {
	inputs, err := listDocuments(inDir)
	if err != nil {
		return Report{}, err
	}
	names := outputNames(inputs)

	type result struct {
		written  bool
		failures []Failure
	}
	results := make([]result, len(inputs))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, in := range inputs {
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i].failures = append(results[i].failures, Failure{Item: in.Filename, Err: ctx.Err()})
				return nil
			}
			log := p.log.With("doc", in.Filename)

			o, err := p.Outline(in)
			if err != nil {
				log.Warn("document unreadable, writing empty outline", "error", err)
				results[i].failures = append(results[i].failures, Failure{Item: in.Filename, Err: err})
			}

			out := filepath.Join(outDir, names[i])
			if err := writeWithRetry(ctx, out, output.FromOutline(o)); err != nil {
				log.Error("write failed", "path", out, "error", err)
				results[i].failures = append(results[i].failures, Failure{Item: in.Filename, Err: err})
				return nil
			}
			results[i].written = true
			log.Info("outline written", "path", out, "headings", len(o.Headings))
			return nil
		})
	}
	g.Wait()

	report := Report{Total: len(inputs)}
	for _, r := range results {
		if r.written {
			report.Written++
		}
		report.Failures = append(report.Failures, r.failures...)
	}
	p.log.Info("outline batch complete",
		"documents", report.Total,
		"written", report.Written,
		"failed", report.Failed(),
	)
	return report, nil
}

// RunCollections analyzes every collection under inDir and writes
// <outDir>/<collection>/challenge1b_output.json. Collections run one after
// another; the documents of each run concurrently. A malformed collection is
// reported and skipped. The error is non-nil only when inDir cannot be
// listed.
func (p *Processor) RunCollections(ctx context.Context, inDir, outDir string, now func() time.Time) (Report, error) {
	dirs, err := collection.Discover(inDir)
	if err != nil {
		return Report{}, err
	}
	if now == nil {
		now = time.Now
	}

	report := Report{Total: len(dirs)}
	for _, dir := range dirs {
		if ctx.Err() != nil {
			report.Failures = append(report.Failures, Failure{Item: filepath.Base(dir), Err: ctx.Err()})
			continue
		}

		c, err := collection.Load(dir)
		if err != nil {
			p.log.Error("invalid collection", "collection", filepath.Base(dir), "error", err)
			report.Failures = append(report.Failures, Failure{Item: filepath.Base(dir), Err: err})
			continue
		}
		log := p.log.With("collection", c.Name)

		inputs := make([]Input, len(c.Config.Documents))
		for i, d := range c.Config.Documents {
			inputs[i] = Input{Filename: d.Filename, Path: c.DocumentPath(d.Filename)}
		}
		res, failures := p.Analyze(ctx, AnalyzeRequest{
			Persona:   string(c.Config.Persona),
			Job:       string(c.Config.Job),
			Documents: inputs,
			Timestamp: now(),
		})
		for _, f := range failures {
			report.Failures = append(report.Failures, Failure{Item: c.Name + "/" + f.Item, Err: f.Err})
		}

		out := filepath.Join(outDir, c.Name, OutputFile)
		if err := writeWithRetry(ctx, out, res); err != nil {
			log.Error("write failed", "path", out, "error", err)
			report.Failures = append(report.Failures, Failure{Item: c.Name, Err: err})
			continue
		}
		report.Written++
		log.Info("analysis written", "path", out, "sections", len(res.ExtractedSections))
	}

	p.log.Info("collection batch complete",
		"collections", report.Total,
		"written", report.Written,
		"failed", report.Failed(),
	)
	return report, nil
}

// listDocuments returns the supported files directly inside dir, by name.
func listDocuments(dir string) ([]Input, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}
	var inputs []Input
	for _, e := range entries {
		if e.IsDir() || !parser.IsSupportedExtension(e.Name()) {
			continue
		}
		inputs = append(inputs, Input{Filename: e.Name(), Path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(inputs, func(i, j int) bool { return inputs[i].Filename < inputs[j].Filename })
	return inputs, nil
}

// outputNames maps inputs to <stem>.json. PDFs claim their stem first, so
// report.pdf always writes report.json; any other input sharing a taken stem
// keeps its extension: report.md.json.
func outputNames(inputs []Input) []string {
	names := make([]string, len(inputs))
	used := make(map[string]bool, len(inputs))
	claim := func(i int) {
		in := inputs[i]
		name := parser.Stem(in.Filename) + ".json"
		if used[name] {
			name = in.Filename + ".json"
		}
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s.%d.json", in.Filename, n)
		}
		used[name] = true
		names[i] = name
	}

	for i, in := range inputs {
		if isPDF(in.Filename) {
			claim(i)
		}
	}
	for i, in := range inputs {
		if !isPDF(in.Filename) {
			claim(i)
		}
	}
	return names
}

func isPDF(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}
