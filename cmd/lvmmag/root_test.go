package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := getRootCmd()
	require.NotNil(t, cmd)

	names := make(map[string]bool)
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["extract"], "extract subcommand should exist")
	assert.True(t, names["ingest"], "ingest subcommand should exist")
	assert.True(t, names["config"], "config subcommand should exist")
}

func TestRootCommandConfigFlag(t *testing.T) {
	cmd := getRootCmd()

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "string", configFlag.Value.Type())
}

func TestRootCommandHelp(t *testing.T) {
	cmd := getRootCmd()

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})
	require.NoError(t, cmd.Execute())

	helpText := buf.String()
	assert.Contains(t, helpText, "lvmmag")
	assert.Contains(t, helpText, "extract")
	assert.Contains(t, helpText, "ingest")
	assert.Contains(t, helpText, "Available Commands")
}

func TestExtractCommandFlags(t *testing.T) {
	cmd := getExtractCmd()
	for _, name := range []string{
		"order", "jobs", "output-dir", "overwrite",
		"max-gmag", "filter", "continue-on-error",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag --%s", name)
	}
}

func TestIngestCommandFlags(t *testing.T) {
	cmd := getIngestCmd()
	for _, name := range []string{
		"jobs", "schema", "table", "dir", "pattern",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag --%s", name)
	}
}
