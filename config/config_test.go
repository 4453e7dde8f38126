package config

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSetGetDelete(t *testing.T) {
	dir, err := ioutil.TempDir("", "snowxfer-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	// Test 1 - a missing file behaves as an empty store.
	f := NewConfigFileWithDir(dir, MainFileFullName)
	keys, err := f.GetAllKeys()
	require.NoError(t, err)
	assert.Empty(t, keys)
	var s string
	err = f.Get("mode", &s)
	assert.True(t, errors.As(err, &KeyNotFoundError{}))
	// Test 2 - values persist across instances.
	require.NoError(t, f.Set("mode", "append"))
	require.NoError(t, f.Set("fetch-size", "500"))
	f2 := NewConfigFileWithDir(dir, MainFileFullName)
	require.NoError(t, f2.Get("mode", &s))
	assert.Equal(t, "append", s)
	var i int
	require.NoError(t, f2.Get("fetch-size", &i))
	assert.Equal(t, 500, i)
	keys, err = f2.GetAllKeys()
	require.NoError(t, err)
	assert.Equal(t, []string{"fetch-size", "mode"}, keys)
	// Test 3 - delete removes the key and errors on a second attempt.
	require.NoError(t, f2.Delete("mode"))
	assert.Error(t, f2.Delete("mode"))
	// Test 4 - out must be a pointer.
	assert.Error(t, f2.Get("fetch-size", i))
}

func TestFileNames(t *testing.T) {
	f := NewConfigFileWithDir("/tmp/x", "config.yaml")
	assert.Equal(t, "config", f.FilePrefix)
	assert.Equal(t, "yaml", f.FileExt)
	assert.Equal(t, "/tmp/x/config.yaml", f.FullPath)
}

func TestTemplateRoundTrip(t *testing.T) {
	dir, err := ioutil.TempDir("", "snowxfer-template")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	fileName := dir + "/config.yaml"
	require.NoError(t, WriteTemplate(fileName))
	l := Loader{ConfigFile: fileName, LookupEnv: noEnv}
	s, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, SqlServer, s.DatabaseType)
	assert.Equal(t, "your-server.database.windows.net", s.Source.Host)
	assert.Equal(t, "COMPUTE_WH", s.Snowflake.Warehouse)
	assert.Equal(t, "your-table", s.Transfer.SourceTable)
	assert.Equal(t, "your-table", s.Transfer.DestinationTable)
	assert.NoError(t, s.Validate())
}
