package judge

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/code_drill/drill/internal/drill_errors"
)

// UnknownLanguage is returned by ResolveLanguageName for ids that are not in
// the table. It is only ever used for display.
const UnknownLanguage = "unknown language"

//go:embed languages.toml
var defaultLanguagesTOML []byte

type LanguageSpec struct {
	Name    string   `toml:"name" json:"name"`
	ID      int      `toml:"id" json:"id"`
	Aliases []string `toml:"aliases" json:"aliases,omitempty"`
}

// Languages is the immutable mapping between language names and judge ids.
// The same instance is shared by every judging path.
type Languages struct {
	specs  []LanguageSpec
	byName map[string]int
	byID   map[int]string
}

func DefaultLanguages() *Languages {
	l, err := ParseLanguages(defaultLanguagesTOML)
	if err != nil {
		panic("embedded language table is invalid: " + err.Error())
	}
	return l
}

// LoadLanguages reads a language table from a TOML file. An empty path
// yields the embedded default table.
func LoadLanguages(path string) (*Languages, error) {
	if path == "" {
		return DefaultLanguages(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read language table %s: %w", path, err)
	}
	return ParseLanguages(data)
}

func ParseLanguages(data []byte) (*Languages, error) {
	var root struct {
		Languages []LanguageSpec `toml:"languages"`
	}
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("cannot parse language table: %w", err)
	}
	if len(root.Languages) == 0 {
		return nil, fmt.Errorf("language table has no languages")
	}

	l := &Languages{
		specs:  make([]LanguageSpec, 0, len(root.Languages)),
		byName: make(map[string]int),
		byID:   make(map[int]string),
	}
	ids := mapset.NewThreadUnsafeSet[int]()
	for _, spec := range root.Languages {
		name := normalizeLanguageName(spec.Name)
		if name == "" {
			return nil, fmt.Errorf("language with id %d has no name", spec.ID)
		}
		if spec.ID <= 0 {
			return nil, fmt.Errorf("language %s has invalid id %d", spec.Name, spec.ID)
		}
		if !ids.Add(spec.ID) {
			return nil, fmt.Errorf("language id %d is mapped more than once", spec.ID)
		}
		for _, key := range append([]string{spec.Name}, spec.Aliases...) {
			key = normalizeLanguageName(key)
			if _, dup := l.byName[key]; dup {
				return nil, fmt.Errorf("language name %s is mapped more than once", key)
			}
			l.byName[key] = spec.ID
		}
		l.byID[spec.ID] = spec.Name
		l.specs = append(l.specs, spec)
	}
	return l, nil
}

// ResolveLanguageID looks a language up by name, ignoring case.
func (l *Languages) ResolveLanguageID(name string) (int, error) {
	id, ok := l.byName[normalizeLanguageName(name)]
	if !ok {
		return 0, fmt.Errorf("%w, Language %s is not supported", drill_errors.ErrUnsupportedLanguage, name)
	}
	return id, nil
}

// ResolveLanguageName never fails; unknown ids map to UnknownLanguage.
func (l *Languages) ResolveLanguageName(id int) string {
	name, ok := l.byID[id]
	if !ok {
		return UnknownLanguage
	}
	return name
}

func (l *Languages) Supports(id int) bool {
	_, ok := l.byID[id]
	return ok
}

func (l *Languages) Specs() []LanguageSpec {
	specs := make([]LanguageSpec, len(l.specs))
	copy(specs, l.specs)
	return specs
}

func normalizeLanguageName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
