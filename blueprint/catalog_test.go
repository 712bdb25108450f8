package blueprint_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/generapi/generapi/blueprint"
)

func TestLoadCatalog(t *testing.T) {
	cat, err := blueprint.Load(blueprint.MapSource{
		"resource/v1": "class {{name}} { {{{body}}} {{extra?}} {{>proxies}} {{#items}}{{.}}{{/items}} }",
		"model/front": "class {{modelName}} {}",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, cat.Len())
	assert.Equal(t, []string{"model/front", "resource/v1"}, cat.IDs())
	assert.True(t, cat.Has("model/front"))
	assert.False(t, cat.Has("model/back"))

	bp, err := cat.Get("resource/v1")
	require.NoError(t, err)
	assert.Equal(t, "resource/v1", bp.ID())

	var got []string
	for _, ph := range bp.Placeholders() {
		got = append(got, ph.Name+":"+ph.Kind.String())
	}
	assert.Equal(t, []string{"name:scalar", "body:raw", "extra:scalar", "proxies:fragment", "items:list"}, got)
	assert.Equal(t, []string{"name", "body", "proxies", "items"}, bp.Required())

	_, err = cat.Get("model/back")
	var ube *blueprint.UnknownBlueprintError
	require.True(t, errors.As(err, &ube))
	assert.Equal(t, "model/back", ube.ID)
	assert.True(t, errors.Is(err, blueprint.ErrUnknownBlueprint))
}

func TestLoadDeclaredPlaceholders(t *testing.T) {
	no := false
	cat, err := blueprint.Load(blueprint.EntryList{
		{
			ID:   "model/front",
			Body: "{{{parameters}}} {{imports}}",
			Path: "{{packagePath}}/{{modelName}}.java",
			Placeholders: map[string]blueprint.PlaceholderSpec{
				"parameters": {Kind: "fragment", Separator: sep("\n\n    ")},
				"imports":    {Required: &no, Sort: true},
				"version":    {},
			},
		},
	})
	require.NoError(t, err)
	bp, err := cat.Get("model/front")
	require.NoError(t, err)

	params, ok := bp.Placeholder("parameters")
	require.True(t, ok)
	assert.Equal(t, blueprint.KindFragment, params.Kind)
	assert.Equal(t, "\n\n    ", params.Separator)
	assert.True(t, params.Required)

	imports, ok := bp.Placeholder("imports")
	require.True(t, ok)
	assert.False(t, imports.Required)
	assert.True(t, imports.Sort)

	var names []string
	for _, ph := range bp.Placeholders() {
		names = append(names, ph.Name)
	}
	assert.Equal(t, []string{"parameters", "imports", "packagePath", "modelName", "version"}, names)
	assert.Equal(t, "{{packagePath}}/{{modelName}}.java", bp.PathTemplate())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		entries blueprint.EntryList
		syntax  bool
	}{
		{
			name:    "duplicate id",
			entries: blueprint.EntryList{{ID: "a", Body: "x"}, {ID: "a", Body: "y"}},
		},
		{
			name:    "empty id",
			entries: blueprint.EntryList{{Body: "x"}},
		},
		{
			name:    "unclosed section",
			entries: blueprint.EntryList{{ID: "a", Body: "{{#items}}x"}},
			syntax:  true,
		},
		{
			name:    "mismatched section",
			entries: blueprint.EntryList{{ID: "a", Body: "{{#a}}{{/b}}"}},
			syntax:  true,
		},
		{
			name:    "malformed path template",
			entries: blueprint.EntryList{{ID: "a", Body: "x", Path: "{{/dir}}"}},
			syntax:  true,
		},
		{
			name: "unknown kind",
			entries: blueprint.EntryList{{ID: "a", Body: "{{x}}", Placeholders: map[string]blueprint.PlaceholderSpec{
				"x": {Kind: "table"},
			}}},
		},
		{
			name: "item blueprint missing",
			entries: blueprint.EntryList{{ID: "a", Body: "{{x}}", Placeholders: map[string]blueprint.PlaceholderSpec{
				"x": {Item: "ghost"},
			}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := blueprint.Load(tt.entries)
			require.Error(t, err)
			var se *blueprint.SyntaxError
			assert.Equal(t, tt.syntax, errors.As(err, &se))
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    blueprint.Kind
		wantErr bool
	}{
		{in: "scalar", want: blueprint.KindScalar},
		{in: "RAW", want: blueprint.KindRaw},
		{in: "raw-block", want: blueprint.KindRaw},
		{in: "list", want: blueprint.KindList},
		{in: " fragment-ref ", want: blueprint.KindFragment},
		{in: "map", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := blueprint.ParseKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
