// Package testutil provides deterministic builders for synthetic traces.
//
// Tests feed the alignment engine and reporter with hand-written PC
// sequences; these helpers synthesize the surrounding Record and raw
// line material so the fixtures stay byte-identical across runs.
package testutil

import (
	"fmt"

	"github.com/hunterchen7/tracediff/internal/trace"
)

// ReferenceLine synthesizes a reference-format trace line.
func ReferenceLine(i uint64, pc string) string {
	return fmt.Sprintf("[inst] i=%d PC=%s", i, pc)
}

// CandidateLine synthesizes a candidate-format trace line.
func CandidateLine(step uint64, pc string) string {
	return fmt.Sprintf("[snapshot] step=%d PC=%s", step, pc)
}

// ReferenceRecords builds a reference trace from PC values. Seq runs
// from 0 and Raw is the corresponding synthesized line.
func ReferenceRecords(pcs ...string) []trace.Record {
	records := make([]trace.Record, len(pcs))
	for i, pc := range pcs {
		records[i] = trace.Record{
			Seq: uint64(i),
			PC:  pc,
			Raw: ReferenceLine(uint64(i), pc),
		}
	}
	return records
}

// CandidateRecords builds a candidate trace from PC values.
func CandidateRecords(pcs ...string) []trace.Record {
	records := make([]trace.Record, len(pcs))
	for i, pc := range pcs {
		records[i] = trace.Record{
			Seq: uint64(i),
			PC:  pc,
			Raw: CandidateLine(uint64(i), pc),
		}
	}
	return records
}

// ErrReader yields Data and then fails with Err, for exercising read
// failures mid-stream.
type ErrReader struct {
	Data string
	Err  error

	off int
}

func (r *ErrReader) Read(p []byte) (int, error) {
	if r.off >= len(r.Data) {
		return 0, r.Err
	}
	n := copy(p, r.Data[r.off:])
	r.off += n
	return n, nil
}
