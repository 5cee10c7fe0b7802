package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hunterchen7/tracediff/internal/align"
	"github.com/hunterchen7/tracediff/internal/report"
	"github.com/hunterchen7/tracediff/internal/store"
	"github.com/hunterchen7/tracediff/internal/trace"
)

// CompareOptions holds flags for the compare command.
type CompareOptions struct {
	*RootOptions
	MaxLines  int
	Lookahead int
	Formats   string
	Record    string
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompareOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compare <reference-trace> <candidate-trace>",
		Short: "Compare two traces and report the first divergence",
		Long: `Compare two instruction traces of the same execution and report the
first true control-flow divergence, or a clean completion when both
traces agree up to the point one of them ends.

The reference trace counts prefix bytes as standalone instructions
while the candidate trace fuses them into the following opcode, so the
comparison synchronizes on program-counter values instead of indices,
skipping up to --lookahead extra reference entries at each mismatch.

A divergence is a normal analytical outcome, reported via text with
exit code 0. Unreadable trace files abort the run.

Examples:
  tracediff compare trace_ref.log trace_cand.log
  tracediff compare trace_ref.log trace_cand.log --lookahead 3 --max-lines 100000
  tracediff compare trace_ref.log trace_cand.log --formats formats.yaml
  tracediff compare trace_ref.log trace_cand.log --record ./history.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("expected 2 trace file paths, got %d\nUsage: %s", len(args), cmd.UseLine()))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(opts, cmd, args[0], args[1])
		},
	}

	cmd.Flags().IntVar(&opts.MaxLines, "max-lines", trace.DefaultMaxLines, "maximum raw lines to read per trace file")
	cmd.Flags().IntVar(&opts.Lookahead, "lookahead", align.DefaultLookahead, "resynchronization window (extra reference entries to probe)")
	cmd.Flags().StringVar(&opts.Formats, "formats", "", "YAML file overriding the built-in trace format descriptors")
	cmd.Flags().StringVar(&opts.Record, "record", "", "record this run in a SQLite history database at the given path")

	return cmd
}

func runCompare(opts *CompareOptions, cmd *cobra.Command, refPath, candPath string) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	refFormat := trace.Reference
	candFormat := trace.Candidate
	lookahead := opts.Lookahead
	if opts.Formats != "" {
		cfg, err := LoadFormats(opts.Formats)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load formats file", err)
		}
		refFormat = cfg.Reference
		candFormat = cfg.Candidate
		// An explicit --lookahead flag wins over the file's value.
		if cfg.Lookahead > 0 && !cmd.Flags().Changed("lookahead") {
			lookahead = cfg.Lookahead
		}
	}

	// Progress lines go to stdout in text mode for operator visibility;
	// in JSON mode they would corrupt the payload, so they are demoted
	// to verbose diagnostics on stderr.
	logf := out.VerboseLog
	if opts.Format == "text" {
		logf = func(format string, args ...interface{}) {
			fmt.Fprintf(out.Writer, format+"\n", args...)
		}
	}

	logf("Loading reference trace from %s...", refPath)
	ref, err := trace.LoadFile(refPath, refFormat, opts.MaxLines)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load reference trace", err)
	}
	logf("  Loaded %d records from reference trace", len(ref))

	logf("Loading candidate trace from %s...", candPath)
	cand, err := trace.LoadFile(candPath, candFormat, opts.MaxLines)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load candidate trace", err)
	}
	logf("  Loaded %d records from candidate trace", len(cand))

	logf("")
	logf("Comparing traces (syncing on PC)...")

	verdict := align.Run(ref, cand, lookahead)
	summary := report.Summarize(verdict, ref, cand)

	if opts.Record != "" {
		runID, err := recordRun(opts.Record, refPath, candPath, summary)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		out.VerboseLog("Recorded run %s to %s", runID, opts.Record)
	}

	if opts.Format == "json" {
		return out.Success(summary)
	}

	report.Render(out.Writer, summary)
	return nil
}

// recordRun persists the summary to the run-history database and
// returns the new run's ID.
func recordRun(dbPath, refPath, candPath string, s report.Summary) (string, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return "", err
	}
	defer st.Close()

	run := store.Run{
		ID:               uuid.NewString(),
		ReferencePath:    refPath,
		CandidatePath:    candPath,
		ReferenceRecords: s.RefCount,
		CandidateRecords: s.CandCount,
		Outcome:          s.Outcome,
		Matches:          s.Matches,
		ReferenceIndex:   s.RefIndex,
		CandidateIndex:   s.CandIndex,
		ReferencePC:      s.RefPC,
		CandidatePC:      s.CandPC,
	}
	if err := st.WriteRun(context.Background(), run); err != nil {
		return "", err
	}

	return run.ID, nil
}
