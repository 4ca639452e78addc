package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/stride/internal/compiler"
)

// JourneyValidation is one journey's compile preview.
type JourneyValidation struct {
	ID      string `json:"id"`
	Matched int    `json:"matched"`
	Blocked int    `json:"blocked"`
}

// ValidationResult summarizes a validate run.
type ValidationResult struct {
	Valid    int                 `json:"valid"`
	Invalid  int                 `json:"invalid"`
	Journeys []JourneyValidation `json:"journeys,omitempty"`
}

// NewValidateCommand creates the validate command. It parses and compiles
// journeys without rendering or writing anything, so would-be-blocked
// steps show up before anyone generates files.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <journeys-path>",
		Short: "Validate journey specs without generating output",
		Long: `Parse journey specs, check the metadata invariants (required
fields, unique criterion ids, non-empty steps, the clarified status
gate) and compile each valid journey to preview how many steps would
block. Nothing is rendered or written. Exits 1 when any journey fails.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(opts)
	defer logger.Sync()

	journeys, loadErrs, err := loadJourneys(path)
	if err != nil {
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	for _, lerr := range loadErrs {
		formatter.Error(ErrCodeInvalidJourney, lerr.Error(), nil)
	}

	snap, err := openSnapshot(opts, logger)
	if err != nil {
		formatter.Error(ErrCodeStoreCorrupt, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	comp := compiler.New(snap, logger)

	result := ValidationResult{Invalid: len(loadErrs)}
	for _, j := range journeys {
		_, sum, err := comp.Compile(j)
		if err != nil {
			formatter.Error(ErrCodeInvalidJourney, err.Error(), nil)
			result.Invalid++
			continue
		}
		result.Valid++
		result.Journeys = append(result.Journeys, JourneyValidation{
			ID:      j.ID,
			Matched: sum.Matched,
			Blocked: sum.Blocked,
		})
	}

	if opts.Format == "json" {
		formatter.Success(result)
	} else {
		for _, jv := range result.Journeys {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d matched, %d blocked\n", jv.ID, jv.Matched, jv.Blocked)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d valid, %d invalid\n", result.Valid, result.Invalid)
	}

	if result.Invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d journey(s) failed validation", result.Invalid))
	}
	return nil
}
