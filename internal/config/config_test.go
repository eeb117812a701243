package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	rt, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), rt)
}

func TestLoadOverridesOnlySpecifiedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spifyrfb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_verbosity: 3\n"), 0o644))

	rt, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, rt.LogVerbosity)
	assert.Equal(t, Defaults().EncodingOrder, rt.EncodingOrder)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_verbosity: [this is not an int\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
