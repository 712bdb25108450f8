package blueprint

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ImportDecl is one import-like line found in rendered text.
type ImportDecl struct {
	// Key is the identity used for deduplication, compared case-sensitively.
	Key  string `json:"key"`
	Line string `json:"line"`
	// Source is the id of the blueprint that produced the line.
	Source string `json:"source"`
}

// ImportRule tells the renderer which lines are imports and where an import block
// belongs when the top-level text has none of its own.
type ImportRule struct {
	// Pattern matches a whole import line. A named group "key" selects the identity
	// key; without it the trimmed line is the key.
	Pattern *regexp.Regexp
	// Anchor optionally matches the line after which a new import block is placed.
	Anchor *regexp.Regexp
}

// NewImportRule compiles pattern and, if non-empty, anchor.
func NewImportRule(pattern, anchor string) (*ImportRule, error) {
	p, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("import pattern: %w", err)
	}
	r := &ImportRule{Pattern: p}
	if anchor != "" {
		if r.Anchor, err = regexp.Compile(anchor); err != nil {
			return nil, fmt.Errorf("import anchor: %w", err)
		}
	}
	return r, nil
}

func (r *ImportRule) key(line string) (string, bool) {
	m := r.Pattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	if i := r.Pattern.SubexpIndex("key"); i >= 0 && m[i] != "" {
		return m[i], true
	}
	return strings.TrimSpace(line), true
}

// DedupImports keeps the first declaration of every key and returns the survivors in
// ascending byte order of key.
func DedupImports(decls []ImportDecl) []ImportDecl {
	seen := make(map[string]struct{}, len(decls))
	out := make([]ImportDecl, 0, len(decls))
	for _, d := range decls {
		if _, dup := seen[d.Key]; dup {
			continue
		}
		seen[d.Key] = struct{}{}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// extractImports removes import lines from text. Blank lines between the first and the
// last import line go with them. It returns the remaining lines, the index the first
// import line had in them (-1 when there was none) and the declarations in text order.
func extractImports(text string, rule *ImportRule, source string) ([]string, int, []ImportDecl) {
	lines := strings.Split(text, "\n")
	if rule == nil {
		return lines, -1, nil
	}
	first, last := -1, -1
	for i, l := range lines {
		if _, ok := rule.key(l); ok {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return lines, -1, nil
	}
	out := make([]string, 0, len(lines))
	var decls []ImportDecl
	for i, l := range lines {
		if i >= first && i <= last {
			if k, ok := rule.key(l); ok {
				decls = append(decls, ImportDecl{Key: k, Line: strings.TrimSpace(l), Source: source})
				continue
			}
			if strings.TrimSpace(l) == "" {
				continue
			}
		}
		out = append(out, l)
	}
	return out, first, decls
}

// placeImports writes the import block into lines. With at >= 0 the block takes the
// place of the original import lines; otherwise it goes after the anchor line, set
// off by a blank line, or at the top of the text.
func placeImports(lines []string, at int, block []ImportDecl, anchor *regexp.Regexp) string {
	if len(block) == 0 {
		return strings.Join(lines, "\n")
	}
	blk := make([]string, len(block))
	for i, d := range block {
		blk[i] = d.Line
	}
	if at < 0 {
		pos := -1
		if anchor != nil {
			for i, l := range lines {
				if anchor.MatchString(l) {
					pos = i
					break
				}
			}
		}
		if pos >= 0 {
			blk = append([]string{""}, blk...)
			at = pos + 1
		} else {
			at = 0
		}
		if at < len(lines) && strings.TrimSpace(lines[at]) != "" {
			blk = append(blk, "")
		}
	}
	out := make([]string, 0, len(lines)+len(blk))
	out = append(out, lines[:at]...)
	out = append(out, blk...)
	out = append(out, lines[at:]...)
	return strings.Join(out, "\n")
}
