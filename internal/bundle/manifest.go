package bundle

import (
	"encoding/json"
	"fmt"
	"path"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/generapi/generapi/blueprint"
)

// ManifestNames are the manifest file names looked up at the bundle root, in order.
var ManifestNames = []string{
	"blueprints.yaml",
	"blueprints.yml",
	"blueprints.toml",
	"blueprints.json",
	"blueprints.hcl",
}

// Manifest describes one blueprint family.
type Manifest struct {
	Family  string       `json:"family" yaml:"family" toml:"family" validate:"required"`
	Imports *ImportsSpec `json:"imports,omitempty" yaml:"imports,omitempty" toml:"imports,omitempty"`
	// Include lists doublestar globs; every matching file becomes a blueprint whose id
	// and output path template are its path without Strip.
	Include    []string        `json:"include,omitempty" yaml:"include,omitempty" toml:"include,omitempty" validate:"dive,required"`
	Strip      string          `json:"strip,omitempty" yaml:"strip,omitempty" toml:"strip,omitempty"`
	Blueprints []BlueprintSpec `json:"blueprints" yaml:"blueprints" toml:"blueprints" validate:"dive"`
}

// ImportsSpec is the import rule of a family or of a single blueprint.
type ImportsSpec struct {
	Pattern string `json:"pattern" yaml:"pattern" toml:"pattern" validate:"required"`
	Anchor  string `json:"anchor,omitempty" yaml:"anchor,omitempty" toml:"anchor,omitempty"`
}

type BlueprintSpec struct {
	ID           string                     `json:"id" yaml:"id" toml:"id" validate:"required"`
	File         string                     `json:"file" yaml:"file" toml:"file" validate:"required"`
	Path         string                     `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
	Imports      *ImportsSpec               `json:"imports,omitempty" yaml:"imports,omitempty" toml:"imports,omitempty"`
	Placeholders map[string]PlaceholderDecl `json:"placeholders,omitempty" yaml:"placeholders,omitempty" toml:"placeholders,omitempty" validate:"dive"`
}

type PlaceholderDecl struct {
	Kind      string  `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty" validate:"omitempty,oneof=scalar raw raw-block list fragment fragment-ref"`
	Required  *bool   `json:"required,omitempty" yaml:"required,omitempty" toml:"required,omitempty"`
	Separator *string `json:"separator,omitempty" yaml:"separator,omitempty" toml:"separator,omitempty"`
	Prefix    string  `json:"prefix,omitempty" yaml:"prefix,omitempty" toml:"prefix,omitempty"`
	Sort      bool    `json:"sort,omitempty" yaml:"sort,omitempty" toml:"sort,omitempty"`
	Item      string  `json:"item,omitempty" yaml:"item,omitempty" toml:"item,omitempty"`
}

func (d PlaceholderDecl) spec() blueprint.PlaceholderSpec {
	return blueprint.PlaceholderSpec{
		Kind:      d.Kind,
		Required:  d.Required,
		Separator: d.Separator,
		Prefix:    d.Prefix,
		Sort:      d.Sort,
		Item:      d.Item,
	}
}

func (s *ImportsSpec) rule() (*blueprint.ImportRule, error) {
	if s == nil {
		return nil, nil
	}
	return blueprint.NewImportRule(s.Pattern, s.Anchor)
}

// ParseManifest decodes a manifest by the extension of name and validates it.
func ParseManifest(name string, data []byte) (*Manifest, error) {
	var m Manifest
	var err error
	switch path.Ext(name) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	case ".toml":
		err = toml.Unmarshal(data, &m)
	case ".json":
		err = json.Unmarshal(data, &m)
	case ".hcl":
		err = decodeHCL(name, data, &m)
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if err := Validate(&m); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &m, nil
}

var validate = validator.New()

// Validate checks the manifest's struct tags.
func Validate(m *Manifest) error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
