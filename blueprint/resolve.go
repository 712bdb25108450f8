package blueprint

import (
	"strings"
)

// resolve finds the value bound to name, innermost scope first. Dotted names descend
// into Object values; "." is the current list item.
func resolve(sc *scope, name string) (Value, bool) {
	return sc.lookup(name)
}

// raw renders src as a template against the current scope. A raw value that injects
// itself, directly or through other raw values, fails with FragmentCycle.
func (p *pass) raw(f *instance, name, src string, sc *scope) string {
	for _, active := range p.raws {
		if active == name {
			p.fail(f, name, FragmentCycle, "raw value "+strings.Join(append(append([]string(nil), p.raws...), name), " -> "))
			return ""
		}
	}
	nodes, err := parse(f.bp.id, src)
	if err != nil {
		p.fail(f, name, InvalidBinding, err.Error())
		return src
	}
	p.raws = append(p.raws, name)
	defer func() { p.raws = p.raws[:len(p.raws)-1] }()

	var b strings.Builder
	p.nodes(f, &b, nodes, sc)
	return b.String()
}
