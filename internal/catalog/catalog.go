// Package catalog serves the read-only table of starter game templates.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"companion/pkg/schema"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var builtin []byte

// Catalog is an immutable, ordered set of templates. Lookups are linear
// scans; the table is small and fixed at load time.
type Catalog struct {
	templates []schema.Template
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Load(builtin)
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Load(data)
}

// Load parses a YAML list of templates. Every template must validate and
// ids must be unique.
func Load(data []byte) (*Catalog, error) {
	var templates []schema.Template
	if err := yaml.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	seen := make(map[string]bool, len(templates))
	for i := range templates {
		t := &templates[i]
		if err := schema.ValidateTemplate(t); err != nil {
			return nil, fmt.Errorf("template %d (%s): %w", i, t.ID, err)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("duplicate template id: %s", t.ID)
		}
		seen[t.ID] = true
	}

	return &Catalog{templates: templates}, nil
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	return len(c.templates)
}

// ListAll returns every template in catalog order.
func (c *Catalog) ListAll() []schema.Template {
	return c.filter(func(schema.Template) bool { return true })
}

// ByID returns the template with the given id.
func (c *Catalog) ByID(id string) (schema.Template, bool) {
	for _, t := range c.templates {
		if t.ID == id {
			return clone(t), true
		}
	}
	return schema.Template{}, false
}

// ByCategory returns templates whose category matches, ignoring case.
func (c *Catalog) ByCategory(category string) []schema.Template {
	return c.filter(func(t schema.Template) bool {
		return strings.EqualFold(t.Category, category)
	})
}

// ByEngine returns templates targeting engine.
func (c *Catalog) ByEngine(engine schema.Engine) []schema.Template {
	return c.filter(func(t schema.Template) bool { return t.Engine == engine })
}

// ByDifficulty returns templates at the given difficulty.
func (c *Catalog) ByDifficulty(difficulty schema.Difficulty) []schema.Template {
	return c.filter(func(t schema.Template) bool { return t.Difficulty == difficulty })
}

// Query combines the filters. Empty fields match everything.
type Query struct {
	Category   string
	Engine     schema.Engine
	Difficulty schema.Difficulty
}

// Find returns templates matching every non-empty field of q.
func (c *Catalog) Find(q Query) []schema.Template {
	return c.filter(func(t schema.Template) bool {
		if q.Category != "" && !strings.EqualFold(t.Category, q.Category) {
			return false
		}
		if q.Engine != "" && t.Engine != q.Engine {
			return false
		}
		if q.Difficulty != "" && t.Difficulty != q.Difficulty {
			return false
		}
		return true
	})
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range c.templates {
		if !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	return out
}

func (c *Catalog) filter(keep func(schema.Template) bool) []schema.Template {
	out := make([]schema.Template, 0, len(c.templates))
	for _, t := range c.templates {
		if keep(t) {
			out = append(out, clone(t))
		}
	}
	return out
}

// clone copies the slices so callers cannot mutate the table.
func clone(t schema.Template) schema.Template {
	t.Features = append([]string(nil), t.Features...)
	t.Project.Scenes = append([]string(nil), t.Project.Scenes...)
	t.Project.Assets = append([]string(nil), t.Project.Assets...)
	t.Project.Scripts = append([]string(nil), t.Project.Scripts...)
	if t.Project.Settings.Physics != nil {
		p := *t.Project.Settings.Physics
		t.Project.Settings.Physics = &p
	}
	return t
}
