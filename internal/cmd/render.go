package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/generapi/generapi/blueprint"
	"github.com/generapi/generapi/internal/log"
)

type Render struct {
	ID      string       `arg:"" name:"id" help:"Blueprint id"`
	Context string       `help:"Context file (YAML, JSON or TOML by extension; - reads YAML or JSON from stdin)" short:"c" env:"GENERAPI_RENDER_CONTEXT"`
	Out     string       `help:"Write the text to this file instead of stdout" type:"path"`
	OutDir  string       `help:"Write the text below this directory at the blueprint's rendered output path" type:"path"`
	Catalog CatalogFlags `embed:"" prefix:"catalog."`
}

// Run is called by Kong when the render command is executed.
func (r *Render) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	return r.Execute(logger, rawLogger, os.Stdin, os.Stdout, os.Stderr)
}

// Execute renders the blueprint. On render errors every record is printed to errOut and
// nothing is written.
func (r *Render) Execute(logger *slog.Logger, rawLogger log.RawLogger, in io.Reader, out, errOut io.Writer) error {
	vars := map[string]any{}
	if r.Context != "" {
		var err error
		if vars, err = loadContext(r.Context, in); err != nil {
			return err
		}
	}
	ctx, err := blueprint.FromMap(vars)
	if err != nil {
		return fmt.Errorf("context: %w", err)
	}

	b, err := r.Catalog.Load()
	if err != nil {
		return err
	}
	cat, err := b.Catalog()
	if err != nil {
		return err
	}
	if !cat.Has(r.ID) {
		return fmt.Errorf("blueprint %q is not in family %q", r.ID, b.Family())
	}

	res := blueprint.NewRenderer(cat).Render(r.ID, ctx)
	if !res.OK() {
		for _, e := range res.Errors {
			fmt.Fprintln(errOut, e.Error())
		}
		return fmt.Errorf("render %s: %d error(s): %w", r.ID, len(res.Errors), res.Errors.Err())
	}
	rawLogger.Log(r.ID, []byte(res.Text))

	switch {
	case r.OutDir != "":
		if res.Path == "" {
			return fmt.Errorf("blueprint %q has no output path; use --out", r.ID)
		}
		target := filepath.Join(r.OutDir, filepath.FromSlash(res.Path))
		if err := writeFile(target, res.Text); err != nil {
			return err
		}
		logger.Info("Rendered", "blueprint", r.ID, "file", target)
	case r.Out != "":
		if err := writeFile(r.Out, res.Text); err != nil {
			return err
		}
		logger.Info("Rendered", "blueprint", r.ID, "file", r.Out)
	default:
		_, err := io.WriteString(out, res.Text)
		return err
	}
	return nil
}

func writeFile(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}

// loadContext decodes a context document. YAML is a superset of JSON, so stdin and
// unknown extensions go through the YAML decoder.
func loadContext(path string, stdin io.Reader) (map[string]any, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read context: %w", err)
	}

	out := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &out)
	case ".toml":
		var tree *toml.Tree
		if tree, err = toml.LoadBytes(data); err == nil {
			out = tree.ToMap()
		}
	default:
		err = yaml.Unmarshal(data, &out)
	}
	if err != nil {
		return nil, fmt.Errorf("parse context %s: %w", path, err)
	}
	return out, nil
}
