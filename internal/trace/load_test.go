package trace_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunterchen7/tracediff/internal/testutil"
	"github.com/hunterchen7/tracediff/internal/trace"
)

func TestLoad_SkipsNoise(t *testing.T) {
	input := strings.Join([]string{
		"booting rom bank 0",
		"[inst] i=0 PC=0100",
		"[snapshot] step=0 PC=0100", // wrong format for this load
		"",
		"[inst] i=1 PC=0103",
		"[inst] halted", // tagged but unparseable
		"[inst] i=2 PC=0106",
	}, "\n")

	records, err := trace.Load(strings.NewReader(input), trace.Reference, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "0100", records[0].PC)
	assert.Equal(t, "0103", records[1].PC)
	assert.Equal(t, "0106", records[2].PC)
}

func TestLoad_PreservesFileOrderAndSeq(t *testing.T) {
	// Counters from the source are kept as-is even when lines between
	// them were skipped, so Seq need not be contiguous.
	input := "[inst] i=10 PC=0100\nnoise\n[inst] i=14 PC=0103\n"

	records, err := trace.Load(strings.NewReader(input), trace.Reference, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, uint64(10), records[0].Seq)
	assert.Equal(t, uint64(14), records[1].Seq)
}

func TestLoad_CapBoundsRawLines(t *testing.T) {
	// The cap bounds lines consumed, not records produced: with the only
	// matching line past the cap, the load yields nothing.
	input := strings.Join([]string{
		"noise 1",
		"noise 2",
		"noise 3",
		"[inst] i=0 PC=0100",
	}, "\n")

	records, err := trace.Load(strings.NewReader(input), trace.Reference, 3)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoad_CapCountsNonMatchingLines(t *testing.T) {
	input := strings.Join([]string{
		"[inst] i=0 PC=0100",
		"noise",
		"[inst] i=1 PC=0103",
		"noise",
		"[inst] i=2 PC=0106",
	}, "\n")

	records, err := trace.Load(strings.NewReader(input), trace.Reference, 4)
	require.NoError(t, err)
	assert.Len(t, records, 2, "line 5 is past the cap even though only 2 records matched")
}

func TestLoad_ReadErrorIsFatal(t *testing.T) {
	readErr := errors.New("device gone")
	r := &testutil.ErrReader{
		Data: "[inst] i=0 PC=0100\n[inst] i=1",
		Err:  readErr,
	}

	_, err := trace.Load(r, trace.Reference, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, readErr)
}

func TestLoadFile_MissingFileIsFatal(t *testing.T) {
	_, err := trace.LoadFile(filepath.Join(t.TempDir(), "absent.log"), trace.Reference, 0)
	assert.Error(t, err)
}

func TestLoadFile_ReadsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.log")
	content := "[snapshot] step=0 PC=0100\n[snapshot] step=1 PC=0103\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	records, err := trace.LoadFile(path, trace.Candidate, 0)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
