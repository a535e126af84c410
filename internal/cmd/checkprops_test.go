package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProps(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCheckPropsCleanFile(t *testing.T) {
	dir := t.TempDir()
	path := writeProps(t, dir, "toClient.properties",
		"base.reply.not.found = \"{0}\" not found.\nstats.game.title = Game statistics:\n")

	out, _, err := execute(t, NewCheckPropsCommand(), path)
	require.NoError(t, err)
	assert.Contains(t, out, "0 of 1 files checked have problems")
}

func TestCheckPropsFaultyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeProps(t, dir, "toClient_es.properties",
		"ok.line = all good here\nbad.line = isn't escaped but has {0}\n")

	out, _, err := execute(t, NewCheckPropsCommand(), path)
	assert.Equal(t, 1, exitCode(t, err))
	assert.Contains(t, out, "bad.line")
	assert.Contains(t, out, "line 2")
	assert.Contains(t, out, "1 of 1 files checked have problems")
}

func TestCheckPropsWalksDirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "strings", "server")
	require.NoError(t, os.MkdirAll(sub, 0755))
	writeProps(t, sub, "toClient.properties", "a.b = plain value\n")
	writeProps(t, sub, "toClient_de.properties", "a.b = {1} this { is missing escape\n")
	writeProps(t, sub, "notes.txt", "not a properties file {0}'\n")

	out, _, err := execute(t, NewCheckPropsCommand(), dir)
	assert.Equal(t, 1, exitCode(t, err))
	assert.Contains(t, out, "toClient_de.properties")
	assert.Contains(t, out, "1 of 2 files checked have problems")
}

func TestCheckPropsNoFilesFound(t *testing.T) {
	_, _, err := execute(t, NewCheckPropsCommand(), t.TempDir())
	assert.Equal(t, 2, exitCode(t, err))
}

func TestCheckPropsRequiresArgs(t *testing.T) {
	_, _, err := execute(t, NewCheckPropsCommand())
	assert.Error(t, err)
}
