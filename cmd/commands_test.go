package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	for _, args := range [][]string{
		{"transfer"},
		{"test-connection"},
		{"list-tables"},
		{"preview"},
		{"query"},
		{"config-template"},
		{"config", "defaults", "add"},
		{"config", "defaults", "list"},
		{"config", "defaults", "remove"},
		{"snowflake", "test-connection"},
		{"snowflake", "tables"},
		{"snowflake", "describe"},
		{"snowflake", "sample"},
		{"snowflake", "ddl"},
		{"snowflake", "info"},
		{"version"},
	} {
		c, _, err := rootCmd.Find(args)
		require.NoError(t, err, args)
		assert.Equal(t, args[len(args)-1], c.Name())
	}
}

func TestTransferFlags(t *testing.T) {
	f := transferCmd.Flags()
	for _, name := range []string{"source-table", "query", "destination-table", "save-metadata", "config",
		"env-file", "limit", "mode", "show-progress", "web-service", "port", "stats"} {
		assert.NotNil(t, f.Lookup(name), name)
	}
	// Test 1 - underscores are accepted in flag names.
	require.NoError(t, f.Parse([]string{"--source_table", "dbo.orders", "--port", "9090"}))
	l := transferFlags.loader(transferCmd)
	assert.True(t, l.Flags.Changed("source-table"))
	assert.False(t, l.Flags.Changed("mode"))
	assert.Equal(t, "transfer.source_table", l.FlagKeys["source-table"])
	assert.Equal(t, 9090, transferCfg.WebPort)
	// Test 2 - the snowflake subcommands have the settings flags.
	assert.NotNil(t, snowflakeInfoCmd.Flags().Lookup("config"))
	assert.NotNil(t, snowflakeDDLCmd.Flags().Lookup("type"))
}

func TestQueryDryRun(t *testing.T) {
	var buf bytes.Buffer
	queryCfg.Output = &buf
	defer func() { queryCfg.Output = nil }()
	rootCmd.SetArgs([]string{"query", "--dry-run", "--limit", "5", "SELECT a FROM t"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "SELECT TOP 5 a FROM t\n", buf.String())
}

func TestConfigTemplateCommand(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "snowxfer.yaml")
	var buf bytes.Buffer
	configTemplateCfg.Output = &buf
	defer func() { configTemplateCfg.Output = nil }()
	rootCmd.SetArgs([]string{"config-template", "--output-file", fileName})
	require.NoError(t, rootCmd.Execute())
	_, err := os.Stat(fileName)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Template saved to: "+fileName)
}
