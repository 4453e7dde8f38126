package actions

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/relloyd/snowxfer/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	dir := t.TempDir()
	cf := config.NewConfigFileWithDir(dir, "config.yaml")
	out := &bytes.Buffer{}

	// Test 1 - an empty file lists nothing.
	require.NoError(t, RunDefaultList(&DefaultListConfig{ConfigFile: cf, Output: out}))
	assert.Contains(t, out.String(), "No defaults found")

	// Test 2 - add keys.
	require.NoError(t, RunDefaultAdd(&DefaultAddConfig{ConfigFile: cf, Key: "source_host", Value: "db1", Output: out}))
	require.NoError(t, RunDefaultAdd(&DefaultAddConfig{ConfigFile: cf, Key: "snowflake_password", Value: "hunter2", Output: out}))
	_, err := os.Stat(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)

	// Test 3 - an existing key needs force.
	err = RunDefaultAdd(&DefaultAddConfig{ConfigFile: cf, Key: "source_host", Value: "db2"})
	require.Error(t, err)
	require.NoError(t, RunDefaultAdd(&DefaultAddConfig{ConfigFile: cf, Key: "source_host", Value: "db2", Force: true, Output: out}))
	var v string
	require.NoError(t, cf.Get("source_host", &v))
	assert.Equal(t, "db2", v)

	// Test 4 - secrets are masked.
	out.Reset()
	require.NoError(t, RunDefaultList(&DefaultListConfig{ConfigFile: cf, Output: out}))
	assert.Contains(t, out.String(), "db2")
	assert.Contains(t, out.String(), "********")
	assert.NotContains(t, out.String(), "hunter2")

	// Test 5 - remove.
	require.NoError(t, RunDefaultRemove(&DefaultRemoveConfig{ConfigFile: cf, Key: "source_host", Output: out}))
	err = cf.Get("source_host", &v)
	_, ok := err.(config.KeyNotFoundError)
	assert.True(t, ok)
	assert.Error(t, RunDefaultRemove(&DefaultRemoveConfig{ConfigFile: cf, Key: "source_host", Output: out}))

	// Test 6 - missing mandatory fields.
	assert.Error(t, RunDefaultAdd(&DefaultAddConfig{ConfigFile: cf, Key: "k"}))
}

func TestRunConfigTemplate(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "snowxfer.yaml")
	out := &bytes.Buffer{}
	require.NoError(t, RunConfigTemplate(&ConfigTemplateConfig{FileName: fileName, Output: out}))
	assert.Equal(t, "Template saved to: "+fileName+"\n", out.String())
	b, err := os.ReadFile(fileName)
	require.NoError(t, err)
	assert.Contains(t, string(b), "snowflake:")
}
