package persona

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// File is the layout of a persona YAML file.
type File struct {
	Personas []Definition `yaml:"personas" validate:"required,min=1,dive"`
}

// Library resolves persona names to profiles. It is immutable after
// construction and safe for concurrent use.
type Library struct {
	profiles map[string]*Profile
	names    []string
}

// NewLibrary compiles defs. A later definition replaces an earlier one with the
// same name or alias.
func NewLibrary(defs ...Definition) *Library {
	l := &Library{profiles: make(map[string]*Profile)}
	for _, def := range defs {
		p := Compile(def)
		if _, exists := l.profiles[lookupKey(p.Name())]; !exists {
			l.names = append(l.names, p.Name())
		}
		l.profiles[lookupKey(p.Name())] = p
		for _, alias := range def.Aliases {
			l.profiles[lookupKey(alias)] = p
		}
	}
	sort.Strings(l.names)
	return l
}

// Defaults returns a library of the built-in personas.
func Defaults() *Library {
	return NewLibrary(DefaultDefinitions()...)
}

// Load reads a persona YAML file and layers it over the built-in personas.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse persona file %s: %w", path, err)
	}
	if err := validator.New().Struct(f); err != nil {
		return nil, fmt.Errorf("invalid persona file %s: %w", path, err)
	}

	return NewLibrary(append(DefaultDefinitions(), f.Personas...)...), nil
}

// Names returns the canonical persona names in sorted order.
func (l *Library) Names() []string {
	return append([]string(nil), l.names...)
}

// Lookup returns the profile for name, matched case-insensitively. Unknown
// names get a generic profile whose low tier holds the content words of the
// name itself, so "Marine Biologist" still rewards sections about marine
// biology.
func (l *Library) Lookup(name string) (p *Profile, known bool) {
	if p, ok := l.profiles[lookupKey(name)]; ok {
		return p, true
	}
	return Compile(Definition{
		Name:         strings.TrimSpace(name),
		KeywordTiers: map[Tier][]string{Low: ContentWords(name)},
	}), false
}

func lookupKey(name string) string {
	return Fold(strings.Join(strings.Fields(name), " "))
}
