package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindManifest_WalksUp(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"equate.toml":    "[check]\n",
		"a/b/c/keep.txt": "",
	})

	path, ok, err := findManifest(filepath.Join(root, "a", "b", "c"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "equate.toml"), path)
}

func TestLoadManifest(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"equate.toml": `
[check]
comparators = ["near", "within"]
exclude = ["gen/*", "*_mock.go"]
workers = 4
`,
	})

	m, ok, err := loadManifest(root)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, root, m.Root)
	assert.Equal(t, []string{"near", "within"}, m.Config.Check.Comparators)
	assert.Equal(t, []string{"gen/*", "*_mock.go"}, m.Config.Check.Exclude)
	assert.Equal(t, 4, m.Config.Check.Workers)
}

func TestLoadManifest_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		msg     string
	}{
		{"syntax", "[check\n", "failed to parse TOML"},
		{"unknown key", "[check]\ncomparator = [\"x\"]\n", "unknown key check.comparator"},
		{"negative workers", "[check]\nworkers = -1\n", "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeFiles(t, map[string]string{"equate.toml": tt.content})
			_, _, err := loadManifest(root)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
