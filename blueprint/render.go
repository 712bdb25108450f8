package blueprint

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultMaxDepth bounds fragment nesting when no WithMaxDepth option is given.
const DefaultMaxDepth = 32

// Renderer renders blueprints of one catalog. It holds no per-render state and is safe
// for concurrent use.
type Renderer struct {
	catalog  *Catalog
	maxDepth int
}

type Option func(*Renderer)

// WithMaxDepth sets how deep fragments may nest before the render fails with
// FragmentCycle. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

func NewRenderer(c *Catalog, opts ...Option) *Renderer {
	r := &Renderer{catalog: c, maxDepth: DefaultMaxDepth}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Renderer) Catalog() *Catalog { return r.catalog }

// Result is the outcome of one render. Text is partial whenever Errors is non-empty and
// must not be persisted in that case.
type Result struct {
	Text    string
	Path    string
	Imports []ImportDecl
	Errors  Errors
}

func (r Result) OK() bool { return len(r.Errors) == 0 }

// Render renders blueprint id against ctx. Failures are reported in Result.Errors, all
// of them, never as a Go error.
func (r *Renderer) Render(id string, ctx Context) Result {
	bp, err := r.catalog.Get(id)
	if err != nil {
		return Result{Errors: Errors{{Blueprint: id, Kind: UnknownBlueprint, Detail: err.Error()}}}
	}
	p := &pass{r: r}
	sc := newScope(ctx)
	text, imports := p.blueprint(bp, sc, nil, true)
	res := Result{Text: text, Imports: imports}
	if len(bp.pathNodes) > 0 {
		var b strings.Builder
		p.nodes(&instance{bp: bp}, &b, bp.pathNodes, sc)
		res.Path = b.String()
	}
	res.Errors = p.errors()
	return res
}

// pass is the mutable state of one Render call.
type pass struct {
	r *Renderer
	// ids of the blueprints being rendered, outermost first.
	stack []string
	// names of the raw values being expanded inside the current blueprint.
	raws []string
	errs Errors
}

// instance is one blueprint being rendered, with the imports its fragments surfaced.
type instance struct {
	bp    *Blueprint
	rule  *ImportRule
	decls []ImportDecl
}

func (p *pass) fail(f *instance, name string, kind ErrorKind, detail string) {
	p.errs = append(p.errs, ErrorRecord{Placeholder: name, Blueprint: f.bp.id, Kind: kind, Detail: detail})
}

// errors returns the recorded failures with exact repeats removed.
func (p *pass) errors() Errors {
	if len(p.errs) == 0 {
		return nil
	}
	seen := make(map[ErrorRecord]struct{}, len(p.errs))
	out := make(Errors, 0, len(p.errs))
	for _, e := range p.errs {
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

// blueprint renders bp and pulls its import lines out of the text. At the top level
// the collected imports are deduplicated and placed back; below it they are returned
// to the including parent, and the fragment text loses one trailing newline.
func (p *pass) blueprint(bp *Blueprint, sc *scope, inherited *ImportRule, top bool) (string, []ImportDecl) {
	p.stack = append(p.stack, bp.id)
	savedRaws := p.raws
	p.raws = nil
	defer func() {
		p.stack = p.stack[:len(p.stack)-1]
		p.raws = savedRaws
	}()

	f := &instance{bp: bp, rule: bp.imports}
	if f.rule == nil {
		f.rule = inherited
	}
	var b strings.Builder
	p.nodes(f, &b, bp.nodes, sc)

	lines, at, own := extractImports(b.String(), f.rule, bp.id)
	all := append(own, f.decls...)
	if !top {
		if at == 0 {
			for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
				lines = lines[1:]
			}
		}
		return strings.TrimSuffix(strings.Join(lines, "\n"), "\n"), all
	}
	block := DedupImports(all)
	var anchor *regexp.Regexp
	if f.rule != nil {
		anchor = f.rule.Anchor
	}
	return placeImports(lines, at, block, anchor), block
}

func (p *pass) nodes(f *instance, b *strings.Builder, nodes []node, sc *scope) {
	for _, n := range nodes {
		switch n.kind {
		case textNode:
			b.WriteString(n.text)
		case markerNode, sectionNode:
			b.WriteString(p.dispatch(f, n, sc))
		}
	}
}

// placeholder returns the contract entry for n, or one implied by its syntax for
// markers that only appear inside raw values.
func (f *instance) placeholder(n node) Placeholder {
	if ph, ok := f.bp.contract[n.name]; ok {
		return ph
	}
	return Placeholder{Name: n.name, Kind: n.syntax, Required: !n.optional, Separator: DefaultSeparator}
}

// dispatch renders one marker according to its declared kind and the shape of its
// bound value. Unresolved markers are returned verbatim.
func (p *pass) dispatch(f *instance, n node, sc *scope) string {
	ph := f.placeholder(n)
	kind := n.syntax
	switch {
	case n.kind == sectionNode:
		kind = KindList
	case ph.declared:
		kind = ph.Kind
	}

	v, ok := resolve(sc, n.name)
	if !ok {
		if kind == KindFragment && p.r.catalog.Has(n.name) {
			return p.include(f, n.name, n.name, sc)
		}
		if !ph.Required {
			return ""
		}
		p.fail(f, n.name, UnboundPlaceholder, "")
		return n.text
	}

	switch kind {
	case KindScalar, KindRaw:
		switch v.Kind() {
		case StringValue:
			if kind == KindRaw {
				return p.raw(f, n.name, v.Str(), sc)
			}
			return v.Str()
		case ListValue:
			return p.list(f, n, ph, kind, v.Items(), sc)
		case FragmentsValue:
			return p.compose(f, n.name, ph, v.Refs(), sc)
		}
	case KindList:
		elem := KindScalar
		if n.syntax == KindRaw {
			elem = KindRaw
		}
		switch v.Kind() {
		case ListValue:
			return p.list(f, n, ph, elem, v.Items(), sc)
		case StringValue:
			return p.list(f, n, ph, elem, []string{v.Str()}, sc)
		case FragmentsValue:
			if n.kind != sectionNode {
				return p.compose(f, n.name, ph, v.Refs(), sc)
			}
		}
	case KindFragment:
		switch v.Kind() {
		case FragmentsValue:
			return p.compose(f, n.name, ph, v.Refs(), sc)
		case StringValue:
			return p.includeAll(f, n.name, ph, []string{v.Str()}, sc)
		case ListValue:
			return p.includeAll(f, n.name, ph, v.Items(), sc)
		}
	}
	p.fail(f, n.name, InvalidBinding, fmt.Sprintf("%s value bound to %s placeholder", v.Kind(), kind))
	return n.text
}
