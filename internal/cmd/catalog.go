package cmd

import (
	"github.com/generapi/generapi/internal/bundle"
)

// CatalogFlags select the blueprint family a command works with.
type CatalogFlags struct {
	Dir string `help:"Directory holding a blueprint family manifest (blueprints.yaml, .toml, .json or .hcl); empty uses the built-in Quarkus family" type:"path" env:"GENERAPI_CATALOG_DIR"`
}

// Load opens the selected family.
func (f CatalogFlags) Load() (*bundle.Bundle, error) {
	return bundle.OpenOrBuiltin(f.Dir)
}
