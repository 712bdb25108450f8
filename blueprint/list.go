package blueprint

import (
	"sort"
	"strings"
)

// list renders one segment per item and joins them with the placeholder's separator.
// A section renders its body per item, an item blueprint renders that blueprint per
// item, and a bare marker emits the item itself (rendered as a template when elem is
// KindRaw). Items keep their order unless the contract asks for sorting.
func (p *pass) list(f *instance, n node, ph Placeholder, elem Kind, items []string, sc *scope) string {
	if len(items) == 0 {
		return ""
	}
	if ph.Sort {
		items = append([]string(nil), items...)
		sort.Strings(items)
	}
	segs := make([]string, len(items))
	for i, it := range items {
		isc := sc.withItem(it)
		switch {
		case n.kind == sectionNode:
			var b strings.Builder
			p.nodes(f, &b, n.children, isc)
			segs[i] = b.String()
		case ph.Item != "":
			segs[i] = p.include(f, n.name, ph.Item, isc)
		case elem == KindRaw:
			segs[i] = p.raw(f, n.name, it, isc)
		default:
			segs[i] = it
		}
	}
	return withPrefix(strings.Join(segs, ph.Separator), ph)
}
