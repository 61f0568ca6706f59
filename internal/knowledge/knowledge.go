// Package knowledge loads the instruction knowledge base and the pattern
// library. Both registries are read once and are immutable afterwards, so a
// single *Base or *Library may be shared by concurrent generators.
//
// Registry files are YAML (JSON documents are accepted as well, being valid
// YAML). The document order of categories, definitions and patterns is kept:
// it is the iteration order every consumer observes.
package knowledge

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/scbrown/blockwright/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed data/blocks.yaml data/patterns.yaml
var defaultFiles embed.FS

// CategoryInfo is display metadata for a category.
type CategoryInfo struct {
	Color string `yaml:"color" json:"color,omitempty"`
}

// Category is one named group of definitions, in document order.
type Category struct {
	Name        string
	Info        CategoryInfo
	Definitions []model.Definition
}

// Base is the knowledge base: instruction definitions grouped by category.
type Base struct {
	categories []Category
	byID       map[string]model.Definition
}

// NewBase builds a Base from categories given in iteration order. When two
// categories declare the same id, lookups resolve to the first.
func NewBase(categories []Category) *Base {
	b := &Base{byID: make(map[string]model.Definition)}
	for _, c := range categories {
		defs := make([]model.Definition, len(c.Definitions))
		for i, d := range c.Definitions {
			d.Category = c.Name
			defs[i] = d
			if _, dup := b.byID[d.ID]; !dup {
				b.byID[d.ID] = d
			}
		}
		b.categories = append(b.categories, Category{Name: c.Name, Info: c.Info, Definitions: defs})
	}
	return b
}

// Categories returns the categories in iteration order.
func (b *Base) Categories() []Category {
	out := make([]Category, len(b.categories))
	copy(out, b.categories)
	return out
}

// CategoryNames returns category names in iteration order.
func (b *Base) CategoryNames() []string {
	names := make([]string, len(b.categories))
	for i, c := range b.categories {
		names[i] = c.Name
	}
	return names
}

// Each calls fn for every definition, category by category, in document order.
func (b *Base) Each(fn func(model.Definition)) {
	for _, c := range b.categories {
		for _, d := range c.Definitions {
			fn(d)
		}
	}
}

// Lookup finds a definition by id across all categories.
func (b *Base) Lookup(id string) (model.Definition, bool) {
	d, ok := b.byID[id]
	return d, ok
}

// Len returns the total number of definitions.
func (b *Base) Len() int {
	n := 0
	for _, c := range b.categories {
		n += len(c.Definitions)
	}
	return n
}

// Library is the pattern library keyed by pattern name.
type Library struct {
	order    []string
	patterns map[string]model.Pattern
}

// NewLibrary builds a Library from patterns in iteration order. A repeated
// name replaces the earlier pattern but keeps its position.
func NewLibrary(patterns []model.Pattern) *Library {
	l := &Library{patterns: make(map[string]model.Pattern)}
	for _, p := range patterns {
		if _, seen := l.patterns[p.Name]; !seen {
			l.order = append(l.order, p.Name)
		}
		l.patterns[p.Name] = p
	}
	return l
}

// Get returns the pattern registered under name.
func (l *Library) Get(name string) (model.Pattern, bool) {
	p, ok := l.patterns[name]
	return p, ok
}

// Names returns pattern names in document order.
func (l *Library) Names() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Len returns the number of patterns.
func (l *Library) Len() int { return len(l.order) }

// Load reads the knowledge base at path. An empty path selects the embedded
// default knowledge base. Load never fails: when the file is missing or
// malformed the problem is logged and the minimal built-in base is returned.
func Load(path string, log *slog.Logger) *Base {
	log = orDiscard(log)
	data, src, err := readSource(path, "data/blocks.yaml")
	if err == nil {
		var b *Base
		if b, err = ParseBase(data); err == nil {
			log.Debug("loaded knowledge base", "source", src, "categories", len(b.categories), "blocks", b.Len())
			return b
		}
	}
	log.Warn("knowledge base unavailable, using minimal defaults", "source", src, "error", err)
	return Minimal()
}

// LoadPatterns reads the pattern library at path. An empty path selects the
// embedded default library. On failure the problem is logged and the minimal
// built-in library is returned.
func LoadPatterns(path string, log *slog.Logger) *Library {
	log = orDiscard(log)
	data, src, err := readSource(path, "data/patterns.yaml")
	if err == nil {
		var l *Library
		if l, err = ParseLibrary(data); err == nil {
			log.Debug("loaded patterns", "source", src, "patterns", l.Len())
			return l
		}
	}
	log.Warn("pattern library unavailable, using built-in patterns", "source", src, "error", err)
	return MinimalPatterns()
}

// Default returns the embedded default knowledge base.
func Default() *Base { return Load("", nil) }

// DefaultPatterns returns the embedded default pattern library.
func DefaultPatterns() *Library { return LoadPatterns("", nil) }

func readSource(path, embedded string) ([]byte, string, error) {
	if path == "" {
		data, err := defaultFiles.ReadFile(embedded)
		return data, "embedded:" + embedded, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, path, nil
}

type rawDefinition struct {
	Description    string         `yaml:"description"`
	KidExplanation string         `yaml:"kid_explanation"`
	Inputs         []string       `yaml:"inputs"`
	DefaultValues  map[string]any `yaml:"default_values"`
	IsHatBlock     bool           `yaml:"is_hat_block"`
}

type rawPattern struct {
	Description string         `yaml:"description"`
	Blocks      []string       `yaml:"blocks"`
	Parameters  map[string]any `yaml:"parameters"`
	Explanation string         `yaml:"explanation"`
}

// ParseBase decodes a knowledge base document. It fails when the document is
// malformed or declares no blocks.
func ParseBase(data []byte) (*Base, error) {
	var doc struct {
		Blocks     yaml.Node               `yaml:"blocks"`
		Categories map[string]CategoryInfo `yaml:"categories"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing knowledge base: %w", err)
	}
	if doc.Blocks.Kind != yaml.MappingNode || len(doc.Blocks.Content) == 0 {
		return nil, errors.New("parsing knowledge base: no blocks defined")
	}

	var cats []Category
	err := eachPair(&doc.Blocks, func(name string, node *yaml.Node) error {
		c := Category{Name: name, Info: doc.Categories[name]}
		if node.Kind != yaml.MappingNode {
			return fmt.Errorf("category %q: expected a mapping of blocks", name)
		}
		err := eachPair(node, func(id string, defNode *yaml.Node) error {
			var raw rawDefinition
			if err := defNode.Decode(&raw); err != nil {
				return fmt.Errorf("block %s.%s: %w", name, id, err)
			}
			c.Definitions = append(c.Definitions, model.Definition{
				ID:             id,
				Category:       name,
				Description:    raw.Description,
				KidExplanation: raw.KidExplanation,
				Inputs:         nonNil(raw.Inputs),
				Defaults:       toValues(raw.DefaultValues),
				IsHat:          raw.IsHatBlock,
			})
			return nil
		})
		if err != nil {
			return err
		}
		cats = append(cats, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing knowledge base: %w", err)
	}
	return NewBase(cats), nil
}

// ParseLibrary decodes a pattern library document.
func ParseLibrary(data []byte) (*Library, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing patterns: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("parsing patterns: expected a mapping of patterns")
	}
	var patterns []model.Pattern
	err := eachPair(root.Content[0], func(name string, node *yaml.Node) error {
		var raw rawPattern
		if err := node.Decode(&raw); err != nil {
			return fmt.Errorf("pattern %q: %w", name, err)
		}
		patterns = append(patterns, model.Pattern{
			Name:           name,
			Description:    raw.Description,
			InstructionIDs: nonNil(raw.Blocks),
			Overrides:      toValues(raw.Parameters),
			Explanation:    raw.Explanation,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing patterns: %w", err)
	}
	return NewLibrary(patterns), nil
}

// eachPair walks a mapping node's key/value pairs in document order.
func eachPair(n *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := fn(n.Content[i].Value, n.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func toValues(m map[string]any) map[string]model.Value {
	out := make(map[string]model.Value, len(m))
	for k, v := range m {
		out[k] = model.ValueOf(v)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orDiscard(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return log
}

// SortedIDs returns every definition id in lexical order.
func (b *Base) SortedIDs() []string {
	ids := make([]string, 0, len(b.byID))
	for id := range b.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
