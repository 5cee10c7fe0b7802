// Package align locates the first true control-flow divergence between
// two instruction traces of the same execution.
//
// The two traces are believed to describe the identical dynamic
// instruction stream, but the reference source additionally logs prefix
// bytes as standalone instruction boundaries while the candidate source
// fuses them into the following opcode. Reference indices therefore run
// ahead of candidate indices by a small bounded amount, yet the sequence
// of program-counter values, once the reference's extra split entries
// are skipped, must be identical unless the emulators genuinely
// diverged.
//
// Alignment walks both traces with one cursor each, synchronizing by PC
// value rather than by index. On a mismatch it probes a short
// reference-only lookahead window; a hit means the reference was sitting
// on split entries and is skipped past, a miss is reported as a true
// divergence. The window cannot distinguish "genuinely diverged" from
// "skew exceeded the window", so both are reported identically.
package align

import "github.com/hunterchen7/tracediff/internal/trace"

// DefaultLookahead is the resynchronization window. Two handles the
// deepest prefix nesting this CPU encodes; a third consecutive split
// entry is out of reach and is reported as a divergence.
const DefaultLookahead = 2

// Outcome is the result of a single alignment step.
type Outcome int

const (
	// Continue means the step made progress and comparison goes on.
	Continue Outcome = iota
	// Diverged means the PCs differ and resynchronization failed.
	// Terminal.
	Diverged
	// Exhausted means a cursor reached the end of its trace without a
	// divergence: clean completion. Terminal.
	Exhausted
)

// String returns the outcome name for reports and errors.
func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Diverged:
		return "diverged"
	case Exhausted:
		return "clean"
	default:
		return "unknown"
	}
}

// Cursor is the alignment state: one index per trace plus the running
// count of confirmed matches. Indices only ever advance.
type Cursor struct {
	Ref     int
	Cand    int
	Matches int
}

// Step advances the cursor by one comparison:
//
//  1. Either cursor out of bounds: Exhausted.
//  2. PCs equal at both cursors: confirmed match, both cursors and the
//     match count advance, Continue.
//  3. PCs differ: probe ref[cur.Ref+1] .. ref[cur.Ref+lookahead], in
//     order, for the candidate's PC. The first hit advances only the
//     reference cursor past the assumed split entries (they are
//     discarded from accounting, not counted as matches) and returns
//     Continue; the next step retries the comparison. No hit: Diverged.
//
// Step never moves the candidate cursor during resynchronization and
// never backtracks.
func Step(ref, cand []trace.Record, cur *Cursor, lookahead int) Outcome {
	if cur.Ref >= len(ref) || cur.Cand >= len(cand) {
		return Exhausted
	}

	if ref[cur.Ref].PC == cand[cur.Cand].PC {
		cur.Matches++
		cur.Ref++
		cur.Cand++
		return Continue
	}

	for k := 1; k <= lookahead; k++ {
		if cur.Ref+k < len(ref) && ref[cur.Ref+k].PC == cand[cur.Cand].PC {
			cur.Ref += k
			return Continue
		}
	}

	return Diverged
}

// Verdict is the terminal result of an alignment run.
type Verdict struct {
	Outcome   Outcome // Diverged or Exhausted
	Matches   int     // confirmed matches before termination
	RefIndex  int     // reference cursor at termination
	CandIndex int     // candidate cursor at termination
}

// Run drives Step from (0, 0) to termination and returns the verdict.
// lookahead <= 0 selects DefaultLookahead. Run is deterministic: the
// same sequences always produce the same verdict.
func Run(ref, cand []trace.Record, lookahead int) Verdict {
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}

	var cur Cursor
	for {
		switch Step(ref, cand, &cur, lookahead) {
		case Continue:
		case Diverged:
			return Verdict{Outcome: Diverged, Matches: cur.Matches, RefIndex: cur.Ref, CandIndex: cur.Cand}
		case Exhausted:
			return Verdict{Outcome: Exhausted, Matches: cur.Matches, RefIndex: cur.Ref, CandIndex: cur.Cand}
		}
	}
}
