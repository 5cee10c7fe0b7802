package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunterchen7/tracediff/internal/store"
)

func writeTraceFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func executeCompare(t *testing.T, rootOpts *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewCompareCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestCompare_UsageErrorWithoutTwoPaths(t *testing.T) {
	out, err := executeCompare(t, &RootOptions{Format: "text"}, "only-one.log")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "expected 2 trace file paths")
	assert.Contains(t, err.Error(), "Usage:")
	assert.Empty(t, out, "usage errors must abort before any file access or output")
}

func TestCompare_MissingTraceFileIsFatal(t *testing.T) {
	dir := t.TempDir()
	candPath := writeTraceFile(t, dir, "cand.log", "[snapshot] step=0 PC=0100\n")

	_, err := executeCompare(t, &RootOptions{Format: "text"},
		filepath.Join(dir, "absent.log"), candPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load reference trace")
}

func TestCompare_CleanCompletion(t *testing.T) {
	dir := t.TempDir()
	refPath := writeTraceFile(t, dir, "ref.log",
		"boot rom bank 0\n"+
			"[inst] i=0 PC=0100\n"+
			"[inst] i=1 PC=00AA\n"+ // split prefix entry
			"[inst] i=2 PC=0103\n"+
			"[inst] i=3 PC=0106\n")
	candPath := writeTraceFile(t, dir, "cand.log",
		"[snapshot] step=0 PC=0100\n"+
			"[snapshot] step=1 PC=0103\n"+
			"[snapshot] step=2 PC=0106\n")

	out, err := executeCompare(t, &RootOptions{Format: "text"}, refPath, candPath)
	require.NoError(t, err, "divergence or not, a completed comparison is a success")
	assert.Contains(t, out, "Loaded 4 records from reference trace")
	assert.Contains(t, out, "Loaded 3 records from candidate trace")
	assert.Contains(t, out, "No divergence found")
	assert.Contains(t, out, "Matched 3 PC values")
}

func TestCompare_DivergenceIsSuccess(t *testing.T) {
	dir := t.TempDir()
	refPath := writeTraceFile(t, dir, "ref.log",
		"[inst] i=0 PC=0100\n"+
			"[inst] i=1 PC=0103\n"+
			"[inst] i=2 PC=0200\n")
	candPath := writeTraceFile(t, dir, "cand.log",
		"[snapshot] step=0 PC=0100\n"+
			"[snapshot] step=1 PC=0103\n"+
			"[snapshot] step=2 PC=0300\n")

	out, err := executeCompare(t, &RootOptions{Format: "text"}, refPath, candPath)
	require.NoError(t, err, "divergence is an analytical outcome, not an error")
	assert.Contains(t, out, "*** DIVERGENCE FOUND ***")
	assert.Contains(t, out, "After 2 matched PC values")
	assert.Contains(t, out, "PC=0200")
	assert.Contains(t, out, "PC=0300")
}

func TestCompare_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	refPath := writeTraceFile(t, dir, "ref.log", "[inst] i=0 PC=0100\n")
	candPath := writeTraceFile(t, dir, "cand.log", "[snapshot] step=0 PC=0100\n")

	out, err := executeCompare(t, &RootOptions{Format: "json"}, refPath, candPath)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "clean", data["outcome"])
	assert.Equal(t, float64(1), data["matches"])
}

func TestCompare_MaxLinesFlag(t *testing.T) {
	dir := t.TempDir()
	refPath := writeTraceFile(t, dir, "ref.log",
		"noise\nnoise\nnoise\n[inst] i=0 PC=0100\n")
	candPath := writeTraceFile(t, dir, "cand.log", "[snapshot] step=0 PC=0100\n")

	out, err := executeCompare(t, &RootOptions{Format: "text"},
		"--max-lines", "3", refPath, candPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 0 records from reference trace",
		"the cap bounds raw lines read, not matched records")
}

func TestCompare_LookaheadFlag(t *testing.T) {
	dir := t.TempDir()
	refPath := writeTraceFile(t, dir, "ref.log",
		"[inst] i=0 PC=0100\n"+
			"[inst] i=1 PC=00AA\n"+
			"[inst] i=2 PC=00BB\n"+
			"[inst] i=3 PC=0103\n")
	candPath := writeTraceFile(t, dir, "cand.log",
		"[snapshot] step=0 PC=0100\n"+
			"[snapshot] step=1 PC=0103\n")

	out, err := executeCompare(t, &RootOptions{Format: "text"},
		"--lookahead", "1", refPath, candPath)
	require.NoError(t, err)
	assert.Contains(t, out, "*** DIVERGENCE FOUND ***",
		"a window of 1 cannot bridge two nested split entries")
}

func TestCompare_FormatsFileOverride(t *testing.T) {
	dir := t.TempDir()
	formatsPath := writeTraceFile(t, dir, "formats.yaml", `
reference:
  tag: "[cpu]"
  counter_key: n
candidate:
  tag: "[emu]"
  counter_key: tick
`)
	refPath := writeTraceFile(t, dir, "ref.log",
		"[cpu] n=0 PC=0100\n[cpu] n=1 PC=0103\n")
	candPath := writeTraceFile(t, dir, "cand.log",
		"[emu] tick=0 PC=0100\n[emu] tick=1 PC=0103\n")

	out, err := executeCompare(t, &RootOptions{Format: "text"},
		"--formats", formatsPath, refPath, candPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No divergence found")
	assert.Contains(t, out, "Matched 2 PC values")
}

func TestCompare_InvalidFormatsFile(t *testing.T) {
	dir := t.TempDir()
	refPath := writeTraceFile(t, dir, "ref.log", "[inst] i=0 PC=0100\n")
	candPath := writeTraceFile(t, dir, "cand.log", "[snapshot] step=0 PC=0100\n")

	_, err := executeCompare(t, &RootOptions{Format: "text"},
		"--formats", filepath.Join(dir, "absent.yaml"), refPath, candPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCompare_RecordsRunHistory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.db")
	refPath := writeTraceFile(t, dir, "ref.log",
		"[inst] i=0 PC=0100\n[inst] i=1 PC=0200\n")
	candPath := writeTraceFile(t, dir, "cand.log",
		"[snapshot] step=0 PC=0100\n[snapshot] step=1 PC=0300\n")

	_, err := executeCompare(t, &RootOptions{Format: "text"},
		"--record", dbPath, refPath, candPath)
	require.NoError(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "diverged", runs[0].Outcome)
	assert.Equal(t, 1, runs[0].Matches)
	assert.Equal(t, "0200", runs[0].ReferencePC)
	assert.Equal(t, "0300", runs[0].CandidatePC)
	assert.Equal(t, refPath, runs[0].ReferencePath)
}
