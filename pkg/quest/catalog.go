package quest

import (
	"fmt"

	"github.com/jwebster45206/odyssey-engine/pkg/names"
)

// Catalog is the read-only set of quest definitions loaded at startup.
type Catalog struct {
	defs  map[string]Definition
	order []string
}

// NewCatalog indexes definitions by normalized name and slug.
func NewCatalog(defs []Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]Definition, len(defs)*2)}
	for _, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("quest with slug %q has no name", d.Slug)
		}
		keys := []string{names.Normalize(d.Name)}
		if d.Slug != "" && names.Normalize(d.Slug) != keys[0] {
			keys = append(keys, names.Normalize(d.Slug))
		}
		for _, k := range keys {
			if _, dup := c.defs[k]; dup {
				return nil, fmt.Errorf("duplicate quest %q", k)
			}
			c.defs[k] = d
		}
		c.order = append(c.order, d.Name)
	}
	return c, nil
}

// Get looks a definition up by name or slug.
func (c *Catalog) Get(name string) (Definition, bool) {
	if c == nil {
		return Definition{}, false
	}
	d, ok := c.defs[names.Normalize(name)]
	return d, ok
}

// Names lists quest names in load order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.order...)
}
