package blueprint

import (
	"fmt"
	"sort"
)

// Entry is one blueprint as supplied by a Source.
type Entry struct {
	ID   string
	Body string
	// Path is an optional output path template, rendered with the same context as Body.
	Path         string
	Placeholders map[string]PlaceholderSpec
	Imports      *ImportRule
}

// Source supplies the blueprint entries a Catalog is built from.
type Source interface {
	Entries() ([]Entry, error)
}

// MapSource is a Source of bare bodies keyed by id.
type MapSource map[string]string

func (m MapSource) Entries() ([]Entry, error) {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		out = append(out, Entry{ID: id, Body: m[id]})
	}
	return out, nil
}

// EntryList is a Source backed by a slice.
type EntryList []Entry

func (l EntryList) Entries() ([]Entry, error) { return append([]Entry(nil), l...), nil }

// Blueprint is an immutable parsed template with its placeholder contract.
type Blueprint struct {
	id        string
	body      string
	path      string
	nodes     []node
	pathNodes []node
	contract  map[string]Placeholder
	order     []string
	imports   *ImportRule
}

func (b *Blueprint) ID() string { return b.id }

func (b *Blueprint) Body() string { return b.body }

func (b *Blueprint) PathTemplate() string { return b.path }

// Placeholders returns the contract in order of first appearance in the body, followed
// by the path template and then declared-only names.
func (b *Blueprint) Placeholders() []Placeholder {
	out := make([]Placeholder, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, b.contract[name])
	}
	return out
}

func (b *Blueprint) Placeholder(name string) (Placeholder, bool) {
	ph, ok := b.contract[name]
	return ph, ok
}

// Required lists the names that must be bound for a render to succeed.
func (b *Blueprint) Required() []string {
	var out []string
	for _, name := range b.order {
		if b.contract[name].Required {
			out = append(out, name)
		}
	}
	return out
}

// ImportRule returns the rule used to find import lines, or nil.
func (b *Blueprint) ImportRule() *ImportRule { return b.imports }

// Catalog maps blueprint ids to blueprints. It is frozen once Load returns, so readers
// never lock.
type Catalog struct {
	blueprints map[string]*Blueprint
	ids        []string
}

// Load parses every entry of src and builds the catalog. Malformed bodies, duplicate
// ids, bad placeholder declarations and item references to missing blueprints are
// rejected.
func Load(src Source) (*Catalog, error) {
	entries, err := src.Entries()
	if err != nil {
		return nil, fmt.Errorf("read catalog source: %w", err)
	}
	c := &Catalog{blueprints: make(map[string]*Blueprint, len(entries))}
	for _, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("blueprint with empty id")
		}
		if _, dup := c.blueprints[e.ID]; dup {
			return nil, fmt.Errorf("duplicate blueprint id %q", e.ID)
		}
		bp, err := compile(e)
		if err != nil {
			return nil, err
		}
		c.blueprints[e.ID] = bp
		c.ids = append(c.ids, e.ID)
	}
	sort.Strings(c.ids)
	for _, id := range c.ids {
		bp := c.blueprints[id]
		for _, name := range bp.order {
			if item := bp.contract[name].Item; item != "" {
				if _, ok := c.blueprints[item]; !ok {
					return nil, fmt.Errorf("blueprint %q placeholder %q: item %w", id, name, &UnknownBlueprintError{ID: item})
				}
			}
		}
	}
	return c, nil
}

func compile(e Entry) (*Blueprint, error) {
	nodes, err := parse(e.ID, e.Body)
	if err != nil {
		return nil, err
	}
	pathNodes, err := parse(e.ID, e.Path)
	if err != nil {
		return nil, fmt.Errorf("output path: %w", err)
	}
	found := make(map[string]*Placeholder)
	var order []string
	discover(nodes, false, found, &order)
	discover(pathNodes, false, found, &order)

	declared := make([]string, 0, len(e.Placeholders))
	for name := range e.Placeholders {
		declared = append(declared, name)
	}
	sort.Strings(declared)
	for _, name := range declared {
		ph, ok := found[name]
		if !ok {
			ph = &Placeholder{Name: name, Kind: KindScalar, Required: true, Separator: DefaultSeparator}
			found[name] = ph
			order = append(order, name)
		}
		if err := e.Placeholders[name].apply(ph); err != nil {
			return nil, fmt.Errorf("blueprint %q placeholder %q: %w", e.ID, name, err)
		}
	}

	contract := make(map[string]Placeholder, len(found))
	for name, ph := range found {
		contract[name] = *ph
	}
	return &Blueprint{
		id:        e.ID,
		body:      e.Body,
		path:      e.Path,
		nodes:     nodes,
		pathNodes: pathNodes,
		contract:  contract,
		order:     order,
		imports:   e.Imports,
	}, nil
}

// Get returns the blueprint for id or an *UnknownBlueprintError.
func (c *Catalog) Get(id string) (*Blueprint, error) {
	bp, ok := c.blueprints[id]
	if !ok {
		return nil, &UnknownBlueprintError{ID: id}
	}
	return bp, nil
}

func (c *Catalog) Has(id string) bool {
	_, ok := c.blueprints[id]
	return ok
}

// IDs returns every blueprint id in ascending order.
func (c *Catalog) IDs() []string { return append([]string(nil), c.ids...) }

func (c *Catalog) Len() int { return len(c.ids) }
