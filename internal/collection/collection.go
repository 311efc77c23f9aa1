// Package collection reads the configuration of a persona analysis
// collection: a directory holding a config file and a PDFs/ subdirectory.
package collection

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config file names, in lookup order.
const (
	InputFile    = "challenge1b_input.json"
	AltInputFile = "collection.json"
)

// DocumentDir is the subdirectory holding a collection's documents.
const DocumentDir = "PDFs"

// ConfigurationError reports a collection whose config is missing or
// malformed. It affects that collection only.
type ConfigurationError struct {
	Collection string
	Err        error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("collection %s: %v", e.Collection, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ChallengeInfo identifies a collection. It is informational only.
type ChallengeInfo struct {
	ChallengeID  string `json:"challenge_id"`
	TestCaseName string `json:"test_case_name"`
	Description  string `json:"description,omitempty"`
}

// Persona is a persona name, written either as a string or as {"role": ...}.
type Persona string

func (p *Persona) UnmarshalJSON(data []byte) error {
	s, err := stringOrField(data, "role")
	if err != nil {
		return fmt.Errorf("persona: %w", err)
	}
	*p = Persona(s)
	return nil
}

// Job is a job-to-be-done description, written either as a string or as
// {"task": ...}.
type Job string

func (j *Job) UnmarshalJSON(data []byte) error {
	s, err := stringOrField(data, "task")
	if err != nil {
		return fmt.Errorf("job_to_be_done: %w", err)
	}
	*j = Job(s)
	return nil
}

// DocumentRef names one document of the collection, written either as a bare
// filename or as {"filename": ..., "title": ...}.
type DocumentRef struct {
	Filename string `json:"filename" validate:"required"`
	Title    string `json:"title,omitempty"`
}

func (d *DocumentRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &d.Filename)
	}
	type plain DocumentRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("document: %w", err)
	}
	*d = DocumentRef(p)
	return nil
}

// Config is the parsed collection config file.
type Config struct {
	ChallengeInfo ChallengeInfo `json:"challenge_info"`
	Persona       Persona       `json:"persona" validate:"required"`
	Job           Job           `json:"job_to_be_done" validate:"required"`
	Documents     []DocumentRef `json:"documents" validate:"required,min=1,dive"`
}

// Filenames returns the document filenames in config order.
func (c Config) Filenames() []string {
	names := make([]string, len(c.Documents))
	for i, d := range c.Documents {
		names[i] = d.Filename
	}
	return names
}

var validate = validator.New()

// Parse decodes and validates a config. Persona and job text is trimmed.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Persona = Persona(strings.TrimSpace(string(cfg.Persona)))
	cfg.Job = Job(strings.TrimSpace(string(cfg.Job)))
	for i := range cfg.Documents {
		cfg.Documents[i].Filename = strings.TrimSpace(cfg.Documents[i].Filename)
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	for _, d := range cfg.Documents {
		if !isBaseName(d.Filename) {
			return Config{}, fmt.Errorf("document %q must be a plain file name", d.Filename)
		}
	}
	return cfg, nil
}

// Collection is a config together with the directory it was loaded from.
type Collection struct {
	Name   string // Directory base name
	Dir    string
	Config Config
}

// Load reads the collection in dir. Every failure is a *ConfigurationError.
func Load(dir string) (*Collection, error) {
	name := filepath.Base(dir)

	path, ok := configPath(dir)
	if !ok {
		return nil, &ConfigurationError{Collection: name, Err: fmt.Errorf("no %s or %s", InputFile, AltInputFile)}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Collection: name, Err: err}
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, &ConfigurationError{Collection: name, Err: err}
	}
	return &Collection{Name: name, Dir: dir, Config: cfg}, nil
}

// DocumentPath returns where a document of the collection is stored:
// PDFs/<filename>, or <filename> beside the config when the collection has
// no PDFs directory.
func (c *Collection) DocumentPath(filename string) string {
	docs := filepath.Join(c.Dir, DocumentDir)
	if info, err := os.Stat(docs); err == nil && info.IsDir() {
		return filepath.Join(docs, filename)
	}
	return filepath.Join(c.Dir, filename)
}

// Discover lists the collection directories under root in name order. A
// subdirectory is a collection when it holds a config file. When root is
// itself a collection it is the only one returned.
func Discover(root string) ([]string, error) {
	if _, ok := configPath(root); ok {
		return []string{root}, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read collections: %w", err)
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if _, ok := configPath(dir); ok {
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

func configPath(dir string) (string, bool) {
	for _, name := range []string{InputFile, AltInputFile} {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// stringOrField decodes a JSON string, or an object carrying the string in
// field.
func stringOrField(data []byte, field string) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if data[0] == '"' {
		var s string
		err := json.Unmarshal(data, &s)
		return s, err
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", errors.New("expected a string or an object")
	}
	raw, ok := obj[field]
	if !ok {
		return "", fmt.Errorf("object has no %q field", field)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%q must be a string", field)
	}
	return s, nil
}

func isBaseName(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}
