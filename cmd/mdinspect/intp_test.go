package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/mdpdf/engine/convert"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.inspect")
	defer teardown()
	//
	cmd := parseCommand("plan:20")
	assert.Equal(t, PLAN, cmd.op)
	assert.Equal(t, "20", cmd.arg)
	cmd = parseCommand(" Load: doc.md ")
	assert.Equal(t, LOAD, cmd.op)
	assert.Equal(t, "doc.md", cmd.arg)
	cmd = parseCommand("help:fonts")
	assert.Equal(t, HELP, cmd.op)
	assert.Equal(t, "", cmd.arg)
	cmd = parseCommand("frobnicate")
	assert.Equal(t, HELP, cmd.op)
	assert.Equal(t, "frobnicate", cmd.arg)
	assert.Equal(t, QUIT, parseCommand("exit").op)
}

func TestExecuteNeedsDocument(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.inspect")
	defer teardown()
	//
	intp := &Intp{opts: convert.DefaultOptions()}
	_, err := intp.execute(parseCommand("fonts"))
	assert.Error(t, err)
	quit, err := intp.execute(parseCommand("quit"))
	assert.NoError(t, err)
	assert.True(t, quit)
	//
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# Hi\n\ntext\n"), 0644))
	_, err = intp.execute(parseCommand("load:" + path))
	require.NoError(t, err)
	_, err = intp.execute(parseCommand("plan:x"))
	assert.Error(t, err)
	require.NotNil(t, intp.result)
	assert.NotEmpty(t, intp.result.Plan.Instructions)
}
