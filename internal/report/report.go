// Package report formats alignment verdicts for display.
//
// Summarize projects a verdict plus the two loaded traces into a flat,
// serializable Summary; Render prints it as deterministic text. Neither
// performs any decision logic beyond selecting which fields apply to
// the outcome.
package report

import (
	"fmt"
	"io"

	"github.com/hunterchen7/tracediff/internal/align"
	"github.com/hunterchen7/tracediff/internal/trace"
)

// MaxRawDisplay caps how many characters of a raw trace line appear in
// a report.
const MaxRawDisplay = 200

// Sides with remaining entries after a clean completion.
const (
	RemainingReference = "reference"
	RemainingCandidate = "candidate"
)

// ContextEntry is one trace entry in a divergence context window.
type ContextEntry struct {
	Index      int    `json:"index"`
	PC         string `json:"pc"`
	Divergence bool   `json:"divergence,omitempty"` // marks the cursor position
}

// Summary is the complete report for one comparison run. It doubles as
// the JSON payload for machine output.
type Summary struct {
	Outcome   string `json:"outcome"` // "diverged" or "clean"
	Matches   int    `json:"matches"`
	RefIndex  int    `json:"reference_index"`
	CandIndex int    `json:"candidate_index"`
	RefCount  int    `json:"reference_records"`
	CandCount int    `json:"candidate_records"`

	// Divergence only: the two mismatching records and their context.
	RefSeq      uint64         `json:"reference_seq,omitempty"`
	CandSeq     uint64         `json:"candidate_seq,omitempty"`
	RefPC       string         `json:"reference_pc,omitempty"`
	CandPC      string         `json:"candidate_pc,omitempty"`
	RefRaw      string         `json:"reference_raw,omitempty"`
	CandRaw     string         `json:"candidate_raw,omitempty"`
	CandContext []ContextEntry `json:"candidate_context,omitempty"`
	RefContext  []ContextEntry `json:"reference_context,omitempty"`

	// Clean completion only.
	Remaining  string `json:"remaining,omitempty"` // side with unconsumed entries, if any
	NextPC     string `json:"next_pc,omitempty"`   // next unmatched PC on that side
	LastRefPC  string `json:"last_reference_pc,omitempty"`
	LastCandPC string `json:"last_candidate_pc,omitempty"`
}

// Summarize builds the report for a verdict over the two traces the
// verdict was computed from.
func Summarize(v align.Verdict, ref, cand []trace.Record) Summary {
	s := Summary{
		Outcome:   v.Outcome.String(),
		Matches:   v.Matches,
		RefIndex:  v.RefIndex,
		CandIndex: v.CandIndex,
		RefCount:  len(ref),
		CandCount: len(cand),
	}

	switch v.Outcome {
	case align.Diverged:
		// A divergence verdict always has both cursors in bounds.
		refRec := ref[v.RefIndex]
		candRec := cand[v.CandIndex]
		s.RefSeq = refRec.Seq
		s.CandSeq = candRec.Seq
		s.RefPC = refRec.PC
		s.CandPC = candRec.PC
		s.RefRaw = truncateRaw(refRec.Raw)
		s.CandRaw = truncateRaw(candRec.Raw)

		// Last 5 candidate entries before the candidate cursor.
		for j := max(0, v.CandIndex-5); j < v.CandIndex; j++ {
			s.CandContext = append(s.CandContext, ContextEntry{Index: j, PC: cand[j].PC})
		}

		// Reference entries surrounding the reference cursor: 5 before
		// through 2 after.
		for j := max(0, v.RefIndex-5); j < min(v.RefIndex+3, len(ref)); j++ {
			s.RefContext = append(s.RefContext, ContextEntry{
				Index:      j,
				PC:         ref[j].PC,
				Divergence: j == v.RefIndex,
			})
		}

	case align.Exhausted:
		switch {
		case v.CandIndex < len(cand):
			s.Remaining = RemainingCandidate
			s.NextPC = cand[v.CandIndex].PC
		case v.RefIndex < len(ref):
			s.Remaining = RemainingReference
			s.NextPC = ref[v.RefIndex].PC
		case len(ref) > 0 && len(cand) > 0:
			s.LastRefPC = ref[len(ref)-1].PC
			s.LastCandPC = cand[len(cand)-1].PC
		}
	}

	return s
}

// Render writes the human-readable report for a summary.
func Render(w io.Writer, s Summary) {
	if s.Outcome == align.Diverged.String() {
		renderDivergence(w, s)
		return
	}
	renderClean(w, s)
}

func renderDivergence(w io.Writer, s Summary) {
	fmt.Fprintf(w, "\n*** DIVERGENCE FOUND ***\n")
	fmt.Fprintf(w, "After %d matched PC values\n", s.Matches)

	fmt.Fprintf(w, "\nReference (seq=%d, idx=%d):\n", s.RefSeq, s.RefIndex)
	fmt.Fprintf(w, "  PC=%s\n", s.RefPC)
	fmt.Fprintf(w, "  %s\n", s.RefRaw)

	fmt.Fprintf(w, "\nCandidate (seq=%d, idx=%d):\n", s.CandSeq, s.CandIndex)
	fmt.Fprintf(w, "  PC=%s\n", s.CandPC)
	fmt.Fprintf(w, "  %s\n", s.CandRaw)

	fmt.Fprintf(w, "\n--- Context (last %d entries in candidate trace) ---\n", len(s.CandContext))
	for _, e := range s.CandContext {
		fmt.Fprintf(w, "Candidate[%d]: PC=%s\n", e.Index, e.PC)
	}

	fmt.Fprintf(w, "\n--- Reference entries around idx=%d ---\n", s.RefIndex)
	for _, e := range s.RefContext {
		marker := ""
		if e.Divergence {
			marker = " <-- divergence"
		}
		fmt.Fprintf(w, "Reference[%d]: PC=%s%s\n", e.Index, e.PC, marker)
	}
}

func renderClean(w io.Writer, s Summary) {
	fmt.Fprintf(w, "\nNo divergence found\n")
	fmt.Fprintf(w, "Matched %d PC values\n", s.Matches)
	fmt.Fprintf(w, "Reference entries processed: %d\n", s.RefIndex)
	fmt.Fprintf(w, "Candidate entries processed: %d\n", s.CandIndex)

	switch {
	case s.Remaining == RemainingCandidate:
		fmt.Fprintf(w, "\nCandidate trace continues beyond reference:\n")
		fmt.Fprintf(w, "  Next: PC=%s\n", s.NextPC)
	case s.Remaining == RemainingReference:
		fmt.Fprintf(w, "\nReference trace continues beyond candidate:\n")
		fmt.Fprintf(w, "  Next: PC=%s\n", s.NextPC)
	case s.LastRefPC != "" || s.LastCandPC != "":
		fmt.Fprintf(w, "\nBoth traces ended at the same point\n")
		fmt.Fprintf(w, "  Last PC: reference=%s candidate=%s\n", s.LastRefPC, s.LastCandPC)
	default:
		fmt.Fprintf(w, "\n(no records in either trace)\n")
	}
}

func truncateRaw(s string) string {
	if len(s) <= MaxRawDisplay {
		return s
	}
	return s[:MaxRawDisplay] + "..."
}
