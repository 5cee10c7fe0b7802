package trace

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Record is one extracted instruction entry from a trace line.
// Records are immutable once extracted.
type Record struct {
	// Seq is the instruction counter reported by the source line. It is
	// informational: once unparsable lines have been skipped it is not
	// necessarily contiguous with the record's position in the trace.
	Seq uint64

	// PC is the program counter, normalized to uppercase. Alignment
	// compares PCs by exact string equality only; both sources emit the
	// same digit width, so no numeric parsing is needed.
	PC string

	// Raw is the original line (whitespace-trimmed), kept for diagnostic
	// display only. Never used in comparison logic.
	Raw string
}

// Extract parses one line against a format descriptor.
//
// It returns (record, true) for a line that starts with the format's tag
// and carries both the counter and PC fields, and (zero, false) for
// everything else. Non-matching lines are expected noise, not errors.
//
// Matching runs on an NFC-normalized view of the line so that extraction
// is deterministic across differently-encoded but equivalent log text;
// Raw keeps the original bytes.
func Extract(line string, f Format) (Record, bool) {
	normalized := norm.NFC.String(line)

	if !strings.HasPrefix(normalized, f.Tag) {
		return Record{}, false
	}

	counterMatch := f.counterRe.FindStringSubmatch(normalized)
	if counterMatch == nil {
		return Record{}, false
	}
	pcMatch := f.pcRe.FindStringSubmatch(normalized)
	if pcMatch == nil {
		return Record{}, false
	}

	seq, err := strconv.ParseUint(counterMatch[1], 10, 64)
	if err != nil {
		// Counter overflows uint64. Treat as unparseable, like any
		// other malformed line.
		return Record{}, false
	}

	return Record{
		Seq: seq,
		PC:  strings.ToUpper(pcMatch[1]),
		Raw: strings.TrimSpace(line),
	}, true
}
