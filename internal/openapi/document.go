// Package openapi reads the parts of an OpenAPI 3 document a service scaffold needs:
// the info block, the JSON request and response bodies of every operation and the
// component schemas they reference. Key order of the source document is preserved.
package openapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidDocument = errors.New("invalid OpenAPI document")
	ErrUnknownSchema   = errors.New("unknown schema")
)

const jsonMediaType = "application/json"

// Document is a parsed OpenAPI document.
type Document struct {
	Title   string
	Version string

	Operations []Operation
	// Schemas holds components.schemas in document order.
	Schemas []*Schema

	byName    map[string]*Schema
	requests  []string
	responses []string
}

// Operation is one path + verb pair.
type Operation struct {
	Path        string
	Method      string
	OperationID string
	Summary     string
	// RequestRef is the schema name of the JSON request body, if any.
	RequestRef string
	// ResponseRefs are the schema names of the JSON responses, by status code in
	// document order.
	ResponseRefs []ResponseRef
}

type ResponseRef struct {
	Code   string
	Schema string
}

// Schema is the subset of a JSON schema the Java mapping looks at.
type Schema struct {
	Name        string
	Type        string
	Format      string
	Ref         string
	Description string
	Example     string
	HasExample  bool
	Required    []string
	Properties  []Property
	Items       *Schema
}

type Property struct {
	Name   string
	Schema *Schema
}

// IsRequired reports whether prop is listed in the schema's required array.
func (s *Schema) IsRequired(prop string) bool {
	for _, r := range s.Required {
		if r == prop {
			return true
		}
	}
	return false
}

// RefName returns the last segment of a "$ref" pointer.
func RefName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// isText reports whether mt is text/plain or a subtype of it, such as JSON.
func isText(mt *mimetype.MIME) bool {
	for ; mt != nil; mt = mt.Parent() {
		if mt.Is("text/plain") {
			return true
		}
	}
	return false
}

// Parse decodes a YAML or JSON document and discovers its request and response
// definitions.
func Parse(data []byte) (*Document, error) {
	if mt := mimetype.Detect(data); !isText(mt) {
		return nil, fmt.Errorf("%w: content is %s, not text", ErrInvalidDocument, mt)
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || deref(root.Content[0]).Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level is not a mapping", ErrInvalidDocument)
	}
	top := deref(root.Content[0])

	doc := &Document{byName: make(map[string]*Schema)}
	info := get(top, "info")
	doc.Title = scalar(get(info, "title"))
	doc.Version = scalar(get(info, "version"))
	if doc.Title == "" {
		return nil, fmt.Errorf("%w: info.title is required", ErrInvalidDocument)
	}
	if doc.Version == "" {
		return nil, fmt.Errorf("%w: info.version is required", ErrInvalidDocument)
	}

	for _, kv := range pairs(get(get(top, "components"), "schemas")) {
		s, err := parseSchema(kv.value, 0)
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", kv.key, err)
		}
		s.Name = kv.key
		doc.Schemas = append(doc.Schemas, s)
		doc.byName[kv.key] = s
	}

	for _, p := range pairs(get(top, "paths")) {
		for _, v := range pairs(p.value) {
			if !isVerb(v.key) {
				continue
			}
			doc.Operations = append(doc.Operations, parseOperation(p.key, v.key, v.value))
		}
	}

	if err := doc.discover(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Schema looks up a component schema by name.
func (d *Document) Schema(name string) (*Schema, bool) {
	s, ok := d.byName[name]
	return s, ok
}

// LowerTitle is the title in lower case, used for packages and URL prefixes.
func (d *Document) LowerTitle() string { return strings.ToLower(d.Title) }

// MajorVersion is the part of the version before the first dot.
func (d *Document) MajorVersion() string {
	major, _, _ := strings.Cut(d.Version, ".")
	return major
}

func parseOperation(path, method string, n *yaml.Node) Operation {
	op := Operation{
		Path:        path,
		Method:      strings.ToUpper(method),
		OperationID: scalar(get(n, "operationId")),
		Summary:     scalar(get(n, "summary")),
	}
	op.RequestRef = RefName(scalar(get(get(get(get(get(n, "requestBody"), "content"), jsonMediaType), "schema"), "$ref")))
	for _, r := range pairs(get(n, "responses")) {
		ref := scalar(get(get(get(get(r.value, "content"), jsonMediaType), "schema"), "$ref"))
		if ref != "" {
			op.ResponseRefs = append(op.ResponseRefs, ResponseRef{Code: r.key, Schema: RefName(ref)})
		}
	}
	return op
}

const maxSchemaDepth = 64

func parseSchema(n *yaml.Node, depth int) (*Schema, error) {
	n = deref(n)
	if depth > maxSchemaDepth {
		return nil, fmt.Errorf("%w: schema nested deeper than %d", ErrInvalidDocument, maxSchemaDepth)
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: schema at line %d is not a mapping", ErrInvalidDocument, n.Line)
	}
	s := &Schema{
		Type:        scalar(get(n, "type")),
		Format:      scalar(get(n, "format")),
		Ref:         scalar(get(n, "$ref")),
		Description: scalar(get(n, "description")),
	}
	if ex := get(n, "example"); ex != nil {
		v, err := example(ex)
		if err != nil {
			return nil, err
		}
		s.Example, s.HasExample = v, true
	}
	if req := deref(get(n, "required")); req != nil && req.Kind == yaml.SequenceNode {
		for _, r := range req.Content {
			s.Required = append(s.Required, scalar(r))
		}
	}
	for _, kv := range pairs(get(n, "properties")) {
		ps, err := parseSchema(kv.value, depth+1)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", kv.key, err)
		}
		ps.Name = kv.key
		s.Properties = append(s.Properties, Property{Name: kv.key, Schema: ps})
	}
	if items := get(n, "items"); items != nil {
		is, err := parseSchema(items, depth+1)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		s.Items = is
	}
	return s, nil
}

// example renders an example value as text: scalars as written, anything else as
// compact JSON.
func example(n *yaml.Node) (string, error) {
	n = deref(n)
	if n.Kind == yaml.ScalarNode {
		return n.Value, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return "", fmt.Errorf("example: %w", err)
	}
	b, err := json.Marshal(normalize(v))
	if err != nil {
		return "", fmt.Errorf("example: %w", err)
	}
	return string(b), nil
}

// normalize turns map[any]any (possible with non-string YAML keys) into JSON-encodable
// maps.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	}
	return v
}

func isVerb(s string) bool {
	switch strings.ToLower(s) {
	case "get", "put", "post", "delete", "options", "head", "patch", "trace":
		return true
	}
	return false
}

type pair struct {
	key   string
	value *yaml.Node
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func pairs(n *yaml.Node) []pair {
	n = deref(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	out := make([]pair, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out = append(out, pair{key: n.Content[i].Value, value: n.Content[i+1]})
	}
	return out
}

func get(n *yaml.Node, key string) *yaml.Node {
	for _, kv := range pairs(n) {
		if kv.key == key {
			return kv.value
		}
	}
	return nil
}

func scalar(n *yaml.Node) string {
	n = deref(n)
	if n == nil || n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}
