package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hunterchen7/tracediff/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - show a single run
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded comparison runs",
		Long: `List comparison runs previously recorded with compare --record.

Shows, per run, the trace files compared, how many records each
yielded, the outcome and match count, and for divergences the two
mismatching program counters.

Examples:
  tracediff history --db ./history.db
  tracediff history --db ./history.db --run 6df32e7a-...
  tracediff history --db ./history.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite history database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show a single run by ID")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open history database", err)
	}
	defer st.Close()

	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.RunID != "" {
		run, err := st.GetRun(ctx, opts.RunID)
		if errors.Is(err, store.ErrRunNotFound) {
			return WrapExitError(ExitCommandError, fmt.Sprintf("no run with ID %s", opts.RunID), nil)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}

		if opts.Format == "json" {
			return out.Success(run)
		}
		writeRunText(cmd, run)
		return nil
	}

	runs, err := st.ListRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if opts.Format == "json" {
		return out.Success(runs)
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "Recorded runs: %d\n\n", len(runs))
	for _, run := range runs {
		writeRunText(cmd, run)
	}

	return nil
}

// writeRunText formats one recorded run for text output.
func writeRunText(cmd *cobra.Command, run store.Run) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "%s  %s\n", run.CreatedAt, run.ID)
	fmt.Fprintf(w, "  reference: %s (%d records)\n", run.ReferencePath, run.ReferenceRecords)
	fmt.Fprintf(w, "  candidate: %s (%d records)\n", run.CandidatePath, run.CandidateRecords)
	fmt.Fprintf(w, "  outcome: %s, %d matches (ref idx %d, cand idx %d)\n",
		run.Outcome, run.Matches, run.ReferenceIndex, run.CandidateIndex)
	if run.Outcome == "diverged" {
		fmt.Fprintf(w, "  divergence: reference PC=%s candidate PC=%s\n", run.ReferencePC, run.CandidatePC)
	}
	fmt.Fprintln(w)
}
