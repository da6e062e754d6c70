// Package palette holds the read-only catalog of node templates shown in the
// editor's palette, with search and category filtering.
package palette

import (
	"strings"

	biostream "github.com/bigyambat/BioStream"
)

// AllCategories selects every category in Filter.
const AllCategories = "All"

// Template seeds a new node's fields. It is never part of a live graph.
type Template struct {
	ID            string             `json:"id"`
	Type          biostream.NodeType `json:"type"`
	Label         string             `json:"label"`
	Description   string             `json:"description"`
	Icon          string             `json:"icon"`
	DefaultCode   string             `json:"defaultCode,omitempty"`
	DefaultParams biostream.Params   `json:"defaultParams,omitempty"`
	Category      string             `json:"category"`
}

// Group is one palette section.
type Group struct {
	Category  string     `json:"category"`
	Templates []Template `json:"templates"`
}

// Catalog is an immutable, ordered set of templates.
type Catalog struct {
	templates []Template
	byID      map[string]int
}

// New builds a catalog from templates. Later duplicates of an id are ignored.
func New(templates []Template) *Catalog {
	c := &Catalog{byID: make(map[string]int, len(templates))}
	for _, t := range templates {
		if _, dup := c.byID[t.ID]; dup {
			continue
		}
		c.byID[t.ID] = len(c.templates)
		c.templates = append(c.templates, t)
	}
	return c
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return New(defaultTemplates)
}

// Templates returns a copy of every template in catalog order.
func (c *Catalog) Templates() []Template {
	out := make([]Template, len(c.templates))
	for i, t := range c.templates {
		out[i] = t.clone()
	}
	return out
}

// Get looks a template up by id.
func (c *Catalog) Get(id string) (Template, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Template{}, false
	}
	return c.templates[i].clone(), true
}

// ForType returns the first template of the given node type.
func (c *Catalog) ForType(t biostream.NodeType) (Template, bool) {
	for _, tpl := range c.templates {
		if tpl.Type == t {
			return tpl.clone(), true
		}
	}
	return Template{}, false
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range c.templates {
		if !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	return out
}

// Filter returns templates whose label or description contains query
// (case-insensitive) and whose category matches. An empty category or
// AllCategories matches everything.
func (c *Catalog) Filter(query, category string) []Template {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Template
	for _, t := range c.templates {
		if category != "" && category != AllCategories && t.Category != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(t.Label), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			continue
		}
		out = append(out, t.clone())
	}
	return out
}

// Grouped returns the templates grouped by category.
func (c *Catalog) Grouped() []Group {
	cats := c.Categories()
	out := make([]Group, 0, len(cats))
	for _, cat := range cats {
		out = append(out, Group{Category: cat, Templates: c.Filter("", cat)})
	}
	return out
}

func (t Template) clone() Template {
	t.DefaultParams = t.DefaultParams.Clone()
	return t
}

// GenericIcon is shown for node types outside the known set.
const GenericIcon = "📄"

// IconFor returns the default icon of a node type.
func IconFor(t biostream.NodeType) string {
	switch t {
	case biostream.NodeRScript:
		return "📊"
	case biostream.NodeDataSource:
		return "📁"
	case biostream.NodeTransform:
		return "🔄"
	case biostream.NodeVisualization:
		return "📈"
	case biostream.NodeControl:
		return "🎮"
	default:
		return GenericIcon
	}
}
