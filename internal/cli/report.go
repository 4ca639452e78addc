package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/stride/internal/report"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	LedgerPath string
	JourneyID  string
}

// NewReportCommand creates the report command, reading the compile-run
// ledger.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "report",
		Short:         "Show recorded compile runs from the ledger",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.LedgerPath, "ledger", "stride.db", "SQLite ledger path")
	cmd.Flags().StringVar(&opts.JourneyID, "journey", "", "restrict to one journey")
	return cmd
}

func runReport(opts *ReportOptions, cmd *cobra.Command) error {
	formatter := outputFor(opts.RootOptions, cmd)

	ledger, err := report.Open(opts.LedgerPath)
	if err != nil {
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	defer ledger.Close()

	runs, err := ledger.Runs(cmd.Context(), opts.JourneyID)
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	if opts.Format == "json" {
		return formatter.Success(runs)
	}
	for _, r := range runs {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %d matched, %d blocked  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.JourneyID,
			r.Summary.Matched, r.Summary.Blocked, r.IRHash[:12])
	}
	return nil
}
