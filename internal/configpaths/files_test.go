package configpaths

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCandidatePathsUserFirst(t *testing.T) {
	tests := []struct {
		user string
		pick func(j, y, tm []string) []string
	}{
		{"my.json", func(j, _, _ []string) []string { return j }},
		{"my.yml", func(_, y, _ []string) []string { return y }},
		{"my.toml", func(_, _, tm []string) []string { return tm }},
		{"my.conf", func(j, _, _ []string) []string { return j }},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			j, y, tm := ConfigCandidatePaths(tt.user)
			got := tt.pick(j, y, tm)
			require.NotEmpty(t, got)
			assert.Equal(t, tt.user, got[0])
		})
	}
}

func TestConfigCandidatePathsIncludeConfigHome(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG_CONFIG_HOME is not used on windows")
	}
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)

	_, yamlPaths, _ := ConfigCandidatePaths("")
	assert.Contains(t, yamlPaths, filepath.Join(home, "generapi", "serve.yaml"))
	assert.Contains(t, yamlPaths, filepath.Join("/etc", "generapi", "generapi.yml"))

	p, err := DefaultNamedConfigPath("generate", "toml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "generapi", "generate.toml"), p)
}

func TestExt(t *testing.T) {
	assert.Equal(t, "yaml", Ext("yml"))
	assert.Equal(t, "toml", Ext("toml"))
	assert.Equal(t, "json", Ext(""))
}
