package openapi

import (
	"fmt"
	"strings"

	"github.com/generapi/generapi/internal/naming"
)

// Java type tables. A format match wins over the schema type.
var (
	SimpleFormats = map[string]string{
		"float":  "float",
		"double": "double",
		"int32":  "int",
		"int64":  "long",
	}
	ComplexFormats = map[string]string{
		"date":      "LocalDate",
		"date-time": "LocalDateTime",
		"array":     "List",
	}
	DefaultTypes = map[string]string{
		"string":  "String",
		"number":  "BigDecimal",
		"integer": "int",
		"boolean": "boolean",
	}
	ImportLines = map[string]string{
		"LocalDate":     "import java.time.LocalDate;",
		"LocalDateTime": "import java.time.LocalDateTime;",
		"List":          "import java.util.List;",
		"BigDecimal":    "import java.math.BigDecimal;",
	}
)

// Field is one model property mapped to Java.
type Field struct {
	Name        string
	Type        string
	Required    bool
	Description string
	Example     string
	// Imports are the import lines the type needs, in first-use order.
	Imports []string
}

// JavaType maps s to a Java type. Referenced schemas are named with suffix appended,
// so a model generated as "AddressRequest" is referenced as such.
func JavaType(s *Schema, suffix string) (string, []string) {
	var imports []string
	t := javaType(s, suffix, &imports, 0)
	return t, imports
}

func javaType(s *Schema, suffix string, imports *[]string, depth int) string {
	if s == nil || depth > maxSchemaDepth {
		return "Object"
	}
	if t, ok := SimpleFormats[s.Format]; ok {
		return t
	}
	if t, ok := ComplexFormats[s.Format]; ok {
		addImport(imports, t)
		return t
	}
	if t, ok := DefaultTypes[s.Type]; ok {
		addImport(imports, t)
		return t
	}
	if s.Type == "array" {
		addImport(imports, "List")
		return "List<" + boxed(javaType(s.Items, suffix, imports, depth+1)) + ">"
	}
	if s.Ref != "" {
		return RefName(s.Ref) + suffix
	}
	return "Object"
}

func addImport(imports *[]string, typ string) {
	line, ok := ImportLines[typ]
	if !ok {
		return
	}
	for _, l := range *imports {
		if l == line {
			return
		}
	}
	*imports = append(*imports, line)
}

// boxed returns the wrapper class of a primitive, as generic arguments require.
func boxed(t string) string {
	switch t {
	case "int":
		return "Integer"
	case "long":
		return "Long"
	case "float":
		return "Float"
	case "double":
		return "Double"
	case "boolean":
		return "Boolean"
	}
	return t
}

// Fields maps the properties of schema name, in document order.
func (d *Document) Fields(name, suffix string) ([]Field, error) {
	s, ok := d.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownSchema, name)
	}
	out := make([]Field, 0, len(s.Properties))
	for _, p := range s.Properties {
		typ, imports := JavaType(p.Schema, suffix)
		out = append(out, Field{
			Name:        naming.Identifier(p.Name),
			Type:        typ,
			Required:    s.IsRequired(p.Name),
			Description: JavaString(p.Schema.Description),
			Example:     JavaString(p.Schema.Example),
			Imports:     imports,
		})
	}
	return out, nil
}

var javaEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// JavaString escapes s for use between double quotes in Java source.
func JavaString(s string) string { return javaEscaper.Replace(s) }
