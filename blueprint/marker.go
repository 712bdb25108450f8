package blueprint

import (
	"regexp"
	"strings"
)

type nodeKind int

const (
	textNode nodeKind = iota
	markerNode
	sectionNode
	commentNode
)

// node is one element of a parsed body. Marker and section nodes keep their source
// text so an unresolved marker can be left in the partial output verbatim.
type node struct {
	kind     nodeKind
	text     string
	name     string
	syntax   Kind
	optional bool
	children []node
}

var nameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*(\.[A-Za-z_][A-Za-z0-9_-]*)*$`)

// Fragment markers may also name a catalog id such as "proxy/apim".
var fragmentNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*(/[A-Za-z0-9_.-]+)*$`)

type tag struct {
	sigil    byte
	name     string
	optional bool
	raw      bool
	size     int
}

// scanTag reads the marker starting at src[start:], which begins with "{{".
// It reports false for anything that is not a well-formed marker.
func scanTag(src string, start int) (tag, bool) {
	rest := src[start:]
	if strings.HasPrefix(rest, "{{{") {
		end := strings.Index(rest[3:], "}}}")
		if end < 0 {
			return tag{}, false
		}
		name, opt, ok := markerName(strings.TrimSpace(rest[3:3+end]), nameRe)
		if !ok {
			return tag{}, false
		}
		return tag{name: name, optional: opt, raw: true, size: end + 6}, true
	}
	end := strings.Index(rest[2:], "}}")
	if end < 0 {
		return tag{}, false
	}
	inner := strings.TrimSpace(rest[2 : 2+end])
	t := tag{size: end + 4}
	if inner == "" {
		return tag{}, false
	}
	switch inner[0] {
	case '!':
		t.sigil = '!'
		return t, true
	case '#', '/', '>':
		t.sigil = inner[0]
		inner = strings.TrimSpace(inner[1:])
	}
	re := nameRe
	if t.sigil == '>' {
		re = fragmentNameRe
	}
	name, opt, ok := markerName(inner, re)
	if !ok || (name == "." && t.sigil != 0) {
		return tag{}, false
	}
	t.name, t.optional = name, opt
	return t, true
}

func markerName(s string, re *regexp.Regexp) (string, bool, bool) {
	if s == "." {
		return s, false, true
	}
	opt := strings.HasSuffix(s, "?")
	s = strings.TrimSuffix(s, "?")
	if !re.MatchString(s) {
		return "", false, false
	}
	return s, opt, true
}

type frame struct {
	section node
	start   int
	nodes   []node
}

// parse splits a body into nodes. Sections must be closed in order; everything that
// does not form a marker is kept as literal text.
func parse(id, src string) ([]node, error) {
	stack := []*frame{{}}
	textStart, i := 0, 0
	flush := func(end int) {
		if end > textStart {
			top := stack[len(stack)-1]
			top.nodes = append(top.nodes, node{kind: textNode, text: src[textStart:end]})
		}
	}
	for i < len(src) {
		j := strings.Index(src[i:], "{{")
		if j < 0 {
			break
		}
		start := i + j
		t, ok := scanTag(src, start)
		if !ok {
			i = start + 1
			continue
		}
		flush(start)
		end := start + t.size
		textStart, i = end, end
		top := stack[len(stack)-1]
		switch t.sigil {
		case '!':
			top.nodes = append(top.nodes, node{kind: commentNode, text: src[start:end]})
		case '#':
			stack = append(stack, &frame{
				section: node{kind: sectionNode, name: t.name, syntax: KindList, optional: t.optional},
				start:   start,
			})
		case '/':
			if len(stack) == 1 {
				return nil, &SyntaxError{Blueprint: id, Offset: start, Message: "closing tag {{/" + t.name + "}} without an open section"}
			}
			if top.section.name != t.name {
				return nil, &SyntaxError{Blueprint: id, Offset: start, Message: "section {{#" + top.section.name + "}} closed by {{/" + t.name + "}}"}
			}
			stack = stack[:len(stack)-1]
			sec := top.section
			sec.children = top.nodes
			sec.text = src[top.start:end]
			parent := stack[len(stack)-1]
			parent.nodes = append(parent.nodes, sec)
		case '>':
			top.nodes = append(top.nodes, node{kind: markerNode, text: src[start:end], name: t.name, syntax: KindFragment, optional: t.optional})
		default:
			k := KindScalar
			if t.raw {
				k = KindRaw
			}
			top.nodes = append(top.nodes, node{kind: markerNode, text: src[start:end], name: t.name, syntax: k, optional: t.optional})
		}
	}
	flush(len(src))
	if len(stack) > 1 {
		top := stack[len(stack)-1]
		return nil, &SyntaxError{Blueprint: id, Offset: top.start, Message: "unclosed section {{#" + top.section.name + "}}"}
	}
	return stack[0].nodes, nil
}

// discover records every placeholder named in nodes, in order of first appearance.
// The first occurrence fixes the kind; a name is required unless every occurrence is
// optional. The item names bound by a section are not placeholders of the body.
func discover(nodes []node, inSection bool, found map[string]*Placeholder, order *[]string) {
	for _, n := range nodes {
		if n.kind != markerNode && n.kind != sectionNode {
			continue
		}
		if n.name == "." || (inSection && (n.name == "item" || strings.HasPrefix(n.name, "item."))) {
			continue
		}
		ph, seen := found[n.name]
		if !seen {
			ph = &Placeholder{Name: n.name, Kind: n.syntax, Separator: DefaultSeparator}
			found[n.name] = ph
			*order = append(*order, n.name)
		}
		if !n.optional {
			ph.Required = true
		}
		if n.kind == sectionNode {
			discover(n.children, true, found, order)
		}
	}
}
