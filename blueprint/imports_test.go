package blueprint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testImportPattern = `^\s*import\s+(?:static\s+)?(?P<key>[A-Za-z_][\w.]*(?:\.\*)?)\s*;\s*$`
	testImportAnchor  = `^package\s`
)

func decl(key, source string) ImportDecl {
	return ImportDecl{Key: key, Line: "import " + key + ";", Source: source}
}

func TestDedupImports(t *testing.T) {
	tests := []struct {
		name string
		in   []ImportDecl
		want []ImportDecl
	}{
		{
			name: "empty",
			in:   nil,
			want: []ImportDecl{},
		},
		{
			name: "sorted ascending",
			in:   []ImportDecl{decl("javax.ws.rs.POST", "r"), decl("a.B", "r"), decl("lombok.Getter", "r")},
			want: []ImportDecl{decl("a.B", "r"), decl("javax.ws.rs.POST", "r"), decl("lombok.Getter", "r")},
		},
		{
			name: "first occurrence wins",
			in:   []ImportDecl{decl("a.C", "parent"), decl("a.B", "proxy/apim"), decl("a.C", "proxy/apim"), decl("a.B", "proxy/sp")},
			want: []ImportDecl{decl("a.B", "proxy/apim"), decl("a.C", "parent")},
		},
		{
			name: "keys are case sensitive",
			in:   []ImportDecl{decl("a.b", "x"), decl("a.B", "x")},
			want: []ImportDecl{decl("a.B", "x"), decl("a.b", "x")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupImports(tt.in))
		})
	}
}

func TestDedupImportsDoesNotModifyInput(t *testing.T) {
	in := []ImportDecl{decl("b.B", "x"), decl("a.A", "x")}
	_ = DedupImports(in)
	assert.Equal(t, "b.B", in[0].Key)
}

func TestImportRuleKey(t *testing.T) {
	rule, err := NewImportRule(testImportPattern, testImportAnchor)
	require.NoError(t, err)

	tests := []struct {
		line string
		key  string
		ok   bool
	}{
		{"import java.util.List;", "java.util.List", true},
		{"    import static org.junit.Assert.*;", "org.junit.Assert.*", true},
		{"import java.time.*;  ", "java.time.*", true},
		{"// import java.util.List;", "", false},
		{"important;", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			key, ok := rule.key(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.key, key)
		})
	}

	plain, err := NewImportRule(`^#include `, "")
	require.NoError(t, err)
	key, ok := plain.key("#include <stdio.h>")
	assert.True(t, ok)
	assert.Equal(t, "#include <stdio.h>", key)
}

func TestNewImportRuleErrors(t *testing.T) {
	_, err := NewImportRule(`(`, "")
	assert.Error(t, err)
	_, err = NewImportRule(`^import`, `(`)
	assert.Error(t, err)
}

func TestExtractAndPlaceImports(t *testing.T) {
	rule, err := NewImportRule(testImportPattern, testImportAnchor)
	require.NoError(t, err)

	text := strings.Join([]string{
		"package p;",
		"",
		"import z.Z;",
		"",
		"import a.A;",
		"",
		"class C {}",
	}, "\n")
	lines, at, decls := extractImports(text, rule, "c")
	assert.Equal(t, 2, at)
	assert.Equal(t, []string{"package p;", "", "", "class C {}"}, lines)
	require.Len(t, decls, 2)
	assert.Equal(t, ImportDecl{Key: "z.Z", Line: "import z.Z;", Source: "c"}, decls[0])

	out := placeImports(lines, at, DedupImports(decls), rule.Anchor)
	assert.Equal(t, "package p;\n\nimport a.A;\nimport z.Z;\n\nclass C {}", out)
}

func TestPlaceImportsWithoutOwnBlock(t *testing.T) {
	block := []ImportDecl{decl("x.Y", "frag")}
	anchor, err := NewImportRule(testImportPattern, testImportAnchor)
	require.NoError(t, err)

	tests := []struct {
		name   string
		lines  []string
		anchor bool
		want   string
	}{
		{
			name:   "after anchor",
			lines:  []string{"package p;", "class C {", "}"},
			anchor: true,
			want:   "package p;\n\nimport x.Y;\n\nclass C {\n}",
		},
		{
			name:   "after anchor followed by blank line",
			lines:  []string{"package p;", "", "class C {}"},
			anchor: true,
			want:   "package p;\n\nimport x.Y;\n\nclass C {}",
		},
		{
			name:  "top without anchor",
			lines: []string{"class C {}"},
			want:  "import x.Y;\n\nclass C {}",
		},
		{
			name:   "top when anchor does not match",
			lines:  []string{"class C {}"},
			anchor: true,
			want:   "import x.Y;\n\nclass C {}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := anchor.Anchor
			if !tt.anchor {
				a = nil
			}
			assert.Equal(t, tt.want, placeImports(tt.lines, -1, block, a))
		})
	}
}
