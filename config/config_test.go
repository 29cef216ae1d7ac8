package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	c, err := Load(t.TempDir())
	require.Nil(t, err)
	assert.Empty(t, c.Targets)
	assert.Equal(t, 3, c.Context(3))
}

func TestLoad(t *testing.T) {
	base := t.TempDir()
	contents := `{
	"targets": ["net472", "net8.0"],
	"format": "json",
	"context-lines": 0,
	"whitespace": "trim"
}`
	require.Nil(t, os.WriteFile(filepath.Join(base, "config"), []byte(contents), 0600))
	c, err := Load(base)
	require.Nil(t, err)
	assert.Equal(t, []string{"net472", "net8.0"}, c.Targets)
	assert.Equal(t, "json", c.Format)
	assert.Equal(t, 0, c.Context(3))
	assert.Equal(t, "trim", c.Whitespace)
	assert.Equal(t, filepath.Join(base, "rdiff.log"), c.LogFilePath())
}

func TestLoadMalformed(t *testing.T) {
	base := t.TempDir()
	require.Nil(t, os.WriteFile(filepath.Join(base, "config"), []byte("{"), 0600))
	_, err := Load(base)
	assert.NotNil(t, err)
}
