package prompts

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed templates.toml
var rawTemplates []byte

// DefaultKey is the fallback scenario every unknown key resolves to.
const DefaultKey = "DEFAULT"

// Template is one consultant scenario: display metadata for the widget
// picker plus the system prompt steering the provider.
type Template struct {
	Key         string `toml:"key"`
	Title       string `toml:"title"`
	Icon        string `toml:"icon"`
	Description string `toml:"description"`
	System      string `toml:"system"`
}

// Registry holds the scenario templates. Immutable after New, so it is safe
// to share across handlers without locking.
type Registry struct {
	byKey map[string]Template
	order []Template
}

type templateFile struct {
	Templates []Template `toml:"template"`
}

// New parses the embedded template definitions.
func New() (*Registry, error) {
	var file templateFile
	if err := toml.Unmarshal(rawTemplates, &file); err != nil {
		return nil, fmt.Errorf("decoding prompt templates: %w", err)
	}
	r := &Registry{byKey: make(map[string]Template, len(file.Templates))}
	for _, t := range file.Templates {
		t.Key = normalize(t.Key)
		if t.Key == "" || t.System == "" {
			return nil, fmt.Errorf("template %q: key and system text are required", t.Title)
		}
		r.byKey[t.Key] = t
		r.order = append(r.order, t)
	}
	if _, ok := r.byKey[DefaultKey]; !ok {
		return nil, fmt.Errorf("no %s template defined", DefaultKey)
	}
	return r, nil
}

// Resolve returns the system prompt for key. Unknown keys soft-fall back to
// the DEFAULT template; this is deliberate, not a validation failure.
func (r *Registry) Resolve(key string) string {
	return r.Lookup(key).System
}

// Lookup returns the full template for key, falling back to DEFAULT.
func (r *Registry) Lookup(key string) Template {
	if t, ok := r.byKey[normalize(key)]; ok {
		return t
	}
	return r.byKey[DefaultKey]
}

// List returns the templates in declaration order.
func (r *Registry) List() []Template {
	return append([]Template(nil), r.order...)
}

func normalize(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}
