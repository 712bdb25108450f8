package blueprint

import (
	"fmt"
	"sort"
	"strings"
)

// compose renders each fragment reference against a child scope that layers the
// reference's context over the current one.
func (p *pass) compose(f *instance, name string, ph Placeholder, refs []FragmentRef, sc *scope) string {
	segs := make([]string, 0, len(refs))
	for _, ref := range refs {
		segs = append(segs, p.include(f, name, ref.Blueprint, sc.child(ref.Context)))
	}
	return join(segs, ph)
}

// includeAll renders the named blueprints against the current scope.
func (p *pass) includeAll(f *instance, name string, ph Placeholder, ids []string, sc *scope) string {
	segs := make([]string, 0, len(ids))
	for _, id := range ids {
		segs = append(segs, p.include(f, name, id, sc))
	}
	return join(segs, ph)
}

func join(segs []string, ph Placeholder) string {
	if ph.Sort {
		sort.Strings(segs)
	}
	return withPrefix(strings.Join(segs, ph.Separator), ph)
}

func withPrefix(s string, ph Placeholder) string {
	if s == "" {
		return ""
	}
	return ph.Prefix + s
}

// include renders blueprint id as a fragment of f. The fragment's import lines are
// handed to f instead of being spliced inline.
func (p *pass) include(f *instance, name, id string, sc *scope) string {
	bp, err := p.r.catalog.Get(id)
	if err != nil {
		p.fail(f, name, UnknownBlueprint, err.Error())
		return ""
	}
	for _, active := range p.stack {
		if active == id {
			p.fail(f, name, FragmentCycle, p.chain(id))
			return ""
		}
	}
	if len(p.stack) >= p.r.maxDepth {
		p.fail(f, name, FragmentCycle, fmt.Sprintf("nesting deeper than %d: %s", p.r.maxDepth, p.chain(id)))
		return ""
	}
	text, decls := p.blueprint(bp, sc, f.rule, false)
	f.decls = append(f.decls, decls...)
	return text
}

func (p *pass) chain(id string) string {
	return strings.Join(append(append([]string(nil), p.stack...), id), " -> ")
}
