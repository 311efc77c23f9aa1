// Package output defines the JSON documents written for outline extraction
// and persona analysis, and writes them atomically.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/rank"
)

// OutlineEntry is one heading. Page is 1-based.
type OutlineEntry struct {
	Level string `json:"level"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
}

// OutlineResult is the per-document outline file.
type OutlineResult struct {
	Title   string         `json:"title"`
	Outline []OutlineEntry `json:"outline"`
}

// FromOutline converts an outline to its JSON form.
func FromOutline(o doctree.Outline) OutlineResult {
	entries := make([]OutlineEntry, 0, len(o.Headings))
	for _, h := range o.Headings {
		entries = append(entries, OutlineEntry{
			Level: h.Level.String(),
			Text:  h.Text,
			Page:  h.Page + 1,
		})
	}
	return OutlineResult{Title: o.Title, Outline: entries}
}

// Metadata describes the inputs of one analysis.
type Metadata struct {
	InputDocuments      []string `json:"input_documents"`
	Persona             string   `json:"persona"`
	JobToBeDone         string   `json:"job_to_be_done"`
	ProcessingTimestamp string   `json:"processing_timestamp"`
}

// ExtractedSection is one ranked section. PageNumber is 1-based.
type ExtractedSection struct {
	Document       string `json:"document"`
	SectionTitle   string `json:"section_title"`
	ImportanceRank int    `json:"importance_rank"`
	PageNumber     int    `json:"page_number"`
}

// SubsectionAnalysis is the refined text of one ranked section.
type SubsectionAnalysis struct {
	Document    string `json:"document"`
	RefinedText string `json:"refined_text"`
	PageNumber  int    `json:"page_number"`
}

// AnalysisResult is the per-collection analysis file.
type AnalysisResult struct {
	Metadata           Metadata             `json:"metadata"`
	ExtractedSections  []ExtractedSection   `json:"extracted_sections"`
	SubsectionAnalysis []SubsectionAnalysis `json:"subsection_analysis"`
}

// FromAnalysis converts a ranked analysis to its JSON form.
func FromAnalysis(meta Metadata, a rank.Analysis) AnalysisResult {
	if meta.InputDocuments == nil {
		meta.InputDocuments = []string{}
	}
	res := AnalysisResult{
		Metadata:           meta,
		ExtractedSections:  make([]ExtractedSection, 0, len(a.Ranked)),
		SubsectionAnalysis: make([]SubsectionAnalysis, 0, len(a.Extracts)),
	}
	for _, s := range a.Ranked {
		res.ExtractedSections = append(res.ExtractedSections, ExtractedSection{
			Document:       s.Section.DocumentID,
			SectionTitle:   s.Section.Title,
			ImportanceRank: s.ImportanceRank,
			PageNumber:     s.Section.Page + 1,
		})
	}
	for _, e := range a.Extracts {
		res.SubsectionAnalysis = append(res.SubsectionAnalysis, SubsectionAnalysis{
			Document:    e.Section.DocumentID,
			RefinedText: e.RefinedText,
			PageNumber:  e.Section.Page + 1,
		})
	}
	return res
}

// Marshal encodes v with four-space indentation and a trailing newline.
// HTML characters are not escaped.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// IOError reports a failed output write.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// WriteJSON writes v to path. The data goes to a temporary file in the same
// directory which is then renamed over path, so readers never see a partial
// file. Missing parent directories are created. Failures are *IOError.
func WriteJSON(path string, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &IOError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &IOError{Path: path, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &IOError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &IOError{Path: path, Err: err}
	}
	return nil
}
