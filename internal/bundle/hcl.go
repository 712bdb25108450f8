package bundle

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// hclRoot is the block layout of an HCL manifest:
//
//	family  = "quarkus"
//	include = ["static/**"]
//	imports { pattern = "..." }
//	blueprint "model/front" {
//	  file = "model/front.java.tmpl"
//	  placeholder "parameters" { kind = "fragment" }
//	}
type hclRoot struct {
	Family     string         `hcl:"family"`
	Include    []string       `hcl:"include,optional"`
	Strip      string         `hcl:"strip,optional"`
	Imports    *hclImports    `hcl:"imports,block"`
	Blueprints []hclBlueprint `hcl:"blueprint,block"`
}

type hclImports struct {
	Pattern string `hcl:"pattern"`
	Anchor  string `hcl:"anchor,optional"`
}

type hclBlueprint struct {
	ID           string           `hcl:"id,label"`
	File         string           `hcl:"file"`
	Path         string           `hcl:"path,optional"`
	Imports      *hclImports      `hcl:"imports,block"`
	Placeholders []hclPlaceholder `hcl:"placeholder,block"`
}

type hclPlaceholder struct {
	Name      string  `hcl:"name,label"`
	Kind      string  `hcl:"kind,optional"`
	Required  *bool   `hcl:"required,optional"`
	Separator *string `hcl:"separator,optional"`
	Prefix    string  `hcl:"prefix,optional"`
	Sort      bool    `hcl:"sort,optional"`
	Item      string  `hcl:"item,optional"`
}

func decodeHCL(name string, data []byte, m *Manifest) error {
	file, diags := hclparse.NewParser().ParseHCL(data, name)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %w", name, diags)
	}
	var root hclRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", name, diags)
	}
	m.Family = root.Family
	m.Include = root.Include
	m.Strip = root.Strip
	m.Imports = root.Imports.spec()
	for _, b := range root.Blueprints {
		spec := BlueprintSpec{ID: b.ID, File: b.File, Path: b.Path, Imports: b.Imports.spec()}
		if len(b.Placeholders) > 0 {
			spec.Placeholders = make(map[string]PlaceholderDecl, len(b.Placeholders))
			for _, p := range b.Placeholders {
				spec.Placeholders[p.Name] = PlaceholderDecl{
					Kind:      p.Kind,
					Required:  p.Required,
					Separator: p.Separator,
					Prefix:    p.Prefix,
					Sort:      p.Sort,
					Item:      p.Item,
				}
			}
		}
		m.Blueprints = append(m.Blueprints, spec)
	}
	return nil
}

func (h *hclImports) spec() *ImportsSpec {
	if h == nil {
		return nil
	}
	return &ImportsSpec{Pattern: h.Pattern, Anchor: h.Anchor}
}
