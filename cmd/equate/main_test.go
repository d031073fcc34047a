package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("EQUATE_CONFIG", "")

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--color", "off"}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Regexp(t, `^equate \S+ \(go.+ .+/.+\)\n$`, out)
}

func TestColorFlag(t *testing.T) {
	_, err := execute(t, "version", "--color", "sometimes")
	assert.ErrorContains(t, err, "invalid --color")
}

func TestConfigFlag(t *testing.T) {
	root := writeFiles(t, map[string]string{"equate.yaml": "colour: never\n"})

	_, err := execute(t, "--config", filepath.Join(root, "equate.yaml"), "explain", "1 == 1")
	assert.ErrorContains(t, err, "colour")
}

func TestIsTerminal_Nil(t *testing.T) {
	assert.False(t, isTerminal(nil))
}
