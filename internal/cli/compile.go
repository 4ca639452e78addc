package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/stride/internal/codegen"
	"github.com/roach88/stride/internal/compiler"
	"github.com/roach88/stride/internal/journey"
	"github.com/roach88/stride/internal/knowledge"
	"github.com/roach88/stride/internal/report"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	OutDir        string
	Target        string
	LegacyBlocked bool
	LedgerPath    string
}

// CompileResult is the per-journey outcome reported to the user.
type CompileResult struct {
	JourneyID string           `json:"journey_id"`
	File      string           `json:"file"`
	Summary   compiler.Summary `json:"summary"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <journeys-path>",
		Short: "Compile journey specs to Playwright test files",
		Long: `Compile clarified journey specs (CUE or YAML) into Playwright
TypeScript. Unrecognized steps render as blocked placeholders that fail
loudly; a compile with blocked steps exits 1 but still writes output.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", "e2e", "output directory")
	cmd.Flags().StringVar(&opts.Target, "target", string(codegen.TargetTestFile), "render target (test-file|support-module)")
	cmd.Flags().BoolVar(&opts.LegacyBlocked, "legacy-blocked", false, "render blocked steps as single-line comments")
	cmd.Flags().StringVar(&opts.LedgerPath, "ledger", "", "record compile runs to this SQLite ledger")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(opts.RootOptions)
	defer logger.Sync()

	journeys, loadErrs, err := loadJourneys(path)
	if err != nil {
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	for _, lerr := range loadErrs {
		formatter.Error(ErrCodeLoadFailed, lerr.Error(), nil)
	}
	if len(journeys) == 0 {
		msg := fmt.Sprintf("no compilable journeys in %s", path)
		formatter.Error(ErrCodeNoFiles, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}
	formatter.VerboseLog("Loaded %d journey(s) from %s", len(journeys), path)

	snap, err := openSnapshot(opts.RootOptions, logger)
	if err != nil {
		formatter.Error(ErrCodeStoreCorrupt, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	comp := compiler.New(snap, logger)
	renderer := &codegen.Renderer{
		Target:                codegen.Target(opts.Target),
		LegacyBlockedComments: opts.LegacyBlocked,
	}

	var ledger *report.Ledger
	if opts.LedgerPath != "" {
		ledger, err = report.Open(opts.LedgerPath)
		if err != nil {
			formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return NewExitError(ExitCommandError, err.Error())
		}
		defer ledger.Close()
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	var results []CompileResult
	blockedTotal := 0
	failed := len(loadErrs) > 0
	for _, j := range journeys {
		doc, sum, err := comp.Compile(j)
		if err != nil {
			formatter.Error(ErrCodeInvalidJourney, err.Error(), nil)
			failed = true
			continue
		}
		src, err := renderer.Render(doc)
		if err != nil {
			formatter.Error(ErrCodeGeneric, err.Error(), nil)
			failed = true
			continue
		}
		outPath := filepath.Join(opts.OutDir, renderer.Filename(j.ID))
		if err := os.WriteFile(outPath, []byte(src), 0o644); err != nil {
			formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			failed = true
			continue
		}
		if ledger != nil {
			if err := ledger.RecordRun(cmd.Context(), doc, sum); err != nil {
				formatter.VerboseLog("ledger: %v", err)
			}
		}
		blockedTotal += sum.Blocked
		results = append(results, CompileResult{JourneyID: j.ID, File: outPath, Summary: *sum})
		formatter.VerboseLog("%s: %d matched, %d blocked (%d learned)",
			j.ID, sum.Matched, sum.Blocked, sum.LearnedHits)
	}

	if opts.Format == "json" {
		formatter.Success(results)
	} else {
		for _, r := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d matched, %d blocked)\n",
				r.JourneyID, r.File, r.Summary.Matched, r.Summary.Blocked)
		}
	}

	if failed {
		return NewExitError(ExitCommandError, "compile finished with errors")
	}
	if blockedTotal > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d step(s) blocked", blockedTotal))
	}
	return nil
}

// loadJourneys accepts a journey file or a directory of journeys and
// collects all load errors rather than stopping at the first.
func loadJourneys(path string) ([]*journey.Journey, []error, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("path not found: %s", path)
	}
	if err != nil {
		return nil, nil, err
	}
	if info.IsDir() {
		journeys, errs := journey.LoadDir(path)
		return journeys, errs, nil
	}
	j, err := journey.Load(path)
	if err != nil {
		return nil, []error{err}, nil
	}
	return []*journey.Journey{j}, nil, nil
}

// openSnapshot reads the knowledge store snapshot when the store
// directory exists. A missing store compiles with builtins only.
func openSnapshot(opts *RootOptions, logger *zap.Logger) (*knowledge.Snapshot, error) {
	if _, err := os.Stat(opts.StoreDir); os.IsNotExist(err) {
		return nil, nil
	}
	store, err := knowledge.Open(opts.StoreDir, knowledge.DefaultConfig(), knowledge.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return store.Snapshot()
}
