package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// DefaultMaxLines caps how many raw lines Load consumes from a stream.
// The cap bounds lines read, not records produced: a file full of
// non-matching lines yields far fewer records than the cap.
const DefaultMaxLines = 500_000

// Trace line length can be large (full register dumps); allow up to 1 MiB.
const maxLineBytes = 1 << 20

// Load reads at most maxLines lines from r and extracts the records that
// match f, in file order. Lines yielding no record are dropped and not
// counted. maxLines <= 0 selects DefaultMaxLines.
//
// A read error is returned as-is apart from wrapping: the caller treats
// it as fatal for the whole comparison, there is no partial-result mode.
func Load(r io.Reader, f Format, maxLines int) ([]Record, error) {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var records []Record
	lines := 0
	for scanner.Scan() {
		if lines >= maxLines {
			break
		}
		lines++

		if rec, ok := Extract(scanner.Text(), f); ok {
			records = append(records, rec)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s trace: %w", f.Name, err)
	}

	return records, nil
}

// LoadFile opens path and loads it with Load. Open failures are fatal
// for the comparison.
func LoadFile(path string, f Format, maxLines int) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s trace: %w", f.Name, err)
	}
	defer file.Close()

	return Load(file, f, maxLines)
}
