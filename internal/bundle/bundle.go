// Package bundle reads blueprint families from a directory tree: a manifest at the root
// names the blueprints, their files and declared placeholders.
package bundle

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/generapi/generapi/blueprint"
	"github.com/generapi/generapi/internal/templates"
)

// ErrNoManifest is returned when none of ManifestNames exists at the bundle root.
var ErrNoManifest = errors.New("no blueprint manifest found")

// Bundle is a loaded family. It implements blueprint.Source.
type Bundle struct {
	manifest     *Manifest
	manifestName string
	entries      []blueprint.Entry
	included     []string
}

// Load reads the manifest and every blueprint file it references from fsys.
func Load(fsys fs.FS) (*Bundle, error) {
	name, data, err := readManifest(fsys)
	if err != nil {
		return nil, err
	}
	m, err := ParseManifest(name, data)
	if err != nil {
		return nil, err
	}
	b := &Bundle{manifest: m, manifestName: name}

	familyRule, err := m.Imports.rule()
	if err != nil {
		return nil, fmt.Errorf("%s: family imports: %w", name, err)
	}

	explicit := make(map[string]struct{}, len(m.Blueprints))
	for _, spec := range m.Blueprints {
		body, err := fs.ReadFile(fsys, spec.File)
		if err != nil {
			return nil, fmt.Errorf("blueprint %q: %w", spec.ID, err)
		}
		rule := familyRule
		if spec.Imports != nil {
			if rule, err = spec.Imports.rule(); err != nil {
				return nil, fmt.Errorf("blueprint %q: %w", spec.ID, err)
			}
		}
		var decls map[string]blueprint.PlaceholderSpec
		if len(spec.Placeholders) > 0 {
			decls = make(map[string]blueprint.PlaceholderSpec, len(spec.Placeholders))
			for k, d := range spec.Placeholders {
				decls[k] = d.spec()
			}
		}
		explicit[spec.File] = struct{}{}
		b.entries = append(b.entries, blueprint.Entry{
			ID:           spec.ID,
			Body:         string(body),
			Path:         spec.Path,
			Placeholders: decls,
			Imports:      rule,
		})
	}

	files, err := b.glob(fsys, explicit)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		body, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("include %s: %w", file, err)
		}
		id := strings.TrimPrefix(file, m.Strip)
		b.entries = append(b.entries, blueprint.Entry{ID: id, Body: string(body), Path: id, Imports: familyRule})
		b.included = append(b.included, id)
	}
	return b, nil
}

// Open loads the bundle rooted at dir.
func Open(dir string) (*Bundle, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open catalog: %s is not a directory", dir)
	}
	return Load(os.DirFS(dir))
}

// Builtin loads the family embedded in the binary.
func Builtin() (*Bundle, error) {
	sub, err := fs.Sub(templates.FS, templates.Root)
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// OpenOrBuiltin opens dir, or the built-in family when dir is empty.
func OpenOrBuiltin(dir string) (*Bundle, error) {
	if dir == "" {
		return Builtin()
	}
	return Open(dir)
}

func readManifest(fsys fs.FS) (string, []byte, error) {
	for _, name := range ManifestNames {
		data, err := fs.ReadFile(fsys, name)
		if err == nil {
			return name, data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", nil, fmt.Errorf("read %s: %w", name, err)
		}
	}
	return "", nil, ErrNoManifest
}

func (b *Bundle) glob(fsys fs.FS, skip map[string]struct{}) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	for _, pattern := range b.manifest.Include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("include %q: %w", pattern, err)
		}
		for _, f := range matches {
			if _, ok := skip[f]; ok || f == b.manifestName {
				continue
			}
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			files = append(files, f)
		}
	}
	sort.Strings(files)
	return files, nil
}

func (b *Bundle) Entries() ([]blueprint.Entry, error) {
	return append([]blueprint.Entry(nil), b.entries...), nil
}

func (b *Bundle) Family() string { return b.manifest.Family }

func (b *Bundle) Manifest() Manifest { return *b.manifest }

// Included returns the ids of the blueprints that came from include globs, sorted.
func (b *Bundle) Included() []string { return append([]string(nil), b.included...) }

// Catalog builds a blueprint catalog from the bundle.
func (b *Bundle) Catalog() (*blueprint.Catalog, error) {
	cat, err := blueprint.Load(b)
	if err != nil {
		return nil, fmt.Errorf("family %q: %w", b.manifest.Family, err)
	}
	return cat, nil
}
