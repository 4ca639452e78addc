package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/stride/internal/ir"
	"github.com/roach88/stride/internal/knowledge"
)

// openStore opens the knowledge store for a command.
func openStore(opts *RootOptions) (*knowledge.Store, error) {
	return knowledge.Open(opts.StoreDir, knowledge.DefaultConfig(),
		knowledge.WithLogger(newLogger(opts)))
}

// storeError maps a knowledge error to the CLI error code and exit code.
func storeError(formatter *OutputFormatter, err error) error {
	switch {
	case knowledge.IsRateLimited(err):
		formatter.Error(ErrCodeRateLimited, err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	case knowledge.IsDuplicate(err):
		formatter.Error(ErrCodeDuplicate, err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	case knowledge.IsLockTimeout(err):
		formatter.Error(ErrCodeStoreLocked, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	case knowledge.IsCorruptStore(err):
		formatter.Error(ErrCodeStoreCorrupt, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	default:
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
}

// NewLessonsCommand creates the lessons command group.
func NewLessonsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lessons",
		Short: "Manage recorded lessons",
	}
	cmd.AddCommand(newLessonsListCommand(rootOpts))
	cmd.AddCommand(newLessonsRecordCommand(rootOpts))
	cmd.AddCommand(newLessonsApplyCommand(rootOpts))
	cmd.AddCommand(newLessonsArchiveCommand(rootOpts))
	return cmd
}

func newLessonsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list <category>",
		Short:         "List lessons in a category with effective states",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := outputFor(rootOpts, cmd)
			store, err := openStore(rootOpts)
			if err != nil {
				return storeError(formatter, err)
			}
			lessons, err := store.QueryLessonsByCategory(args[0])
			if err != nil {
				return storeError(formatter, err)
			}
			if rootOpts.Format == "json" {
				return formatter.Success(lessons)
			}
			for _, l := range lessons {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-9s  %.2f  %s\n", l.ID, l.State, l.Confidence, l.Description)
			}
			return nil
		},
	}
}

func newLessonsRecordCommand(rootOpts *RootOptions) *cobra.Command {
	var journeyID string
	cmd := &cobra.Command{
		Use:           "record <category> <description>",
		Short:         "Record a lesson learned from a fix",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := outputFor(rootOpts, cmd)
			store, err := openStore(rootOpts)
			if err != nil {
				return storeError(formatter, err)
			}
			lesson, err := store.RecordLesson(cmd.Context(), knowledge.LessonInput{
				JourneyID:   journeyID,
				Category:    args[0],
				Description: args[1],
			})
			if err != nil {
				return storeError(formatter, err)
			}
			if rootOpts.Format == "json" {
				return formatter.Success(lesson)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recorded %s\n", lesson.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&journeyID, "journey", "", "journey the fix came from")
	return cmd
}

func newLessonsApplyCommand(rootOpts *RootOptions) *cobra.Command {
	var journeyID string
	var failed bool
	cmd := &cobra.Command{
		Use:           "apply <id>",
		Short:         "Record one reapplication outcome for a lesson",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := outputFor(rootOpts, cmd)
			store, err := openStore(rootOpts)
			if err != nil {
				return storeError(formatter, err)
			}
			lesson, err := store.MarkLessonApplied(cmd.Context(), args[0], journeyID, !failed)
			if err != nil {
				return storeError(formatter, err)
			}
			if rootOpts.Format == "json" {
				return formatter.Success(lesson)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s, confidence %.2f\n", lesson.ID, lesson.State, lesson.Confidence)
			return nil
		},
	}
	cmd.Flags().StringVar(&journeyID, "journey", "", "journey the lesson was applied to")
	cmd.Flags().BoolVar(&failed, "failed", false, "the reapplication failed")
	return cmd
}

func newLessonsArchiveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "archive <id>",
		Short:         "Archive a lesson (curation only, never deleted)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := outputFor(rootOpts, cmd)
			store, err := openStore(rootOpts)
			if err != nil {
				return storeError(formatter, err)
			}
			if err := store.ArchiveLesson(cmd.Context(), args[0]); err != nil {
				return storeError(formatter, err)
			}
			return formatter.Success(fmt.Sprintf("archived %s", args[0]))
		},
	}
}

// NewComponentsCommand creates the components command group.
func NewComponentsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "components",
		Short: "Manage reusable components",
	}
	cmd.AddCommand(newComponentsListCommand(rootOpts))
	cmd.AddCommand(newComponentsRecordCommand(rootOpts))
	cmd.AddCommand(newComponentsApplyCommand(rootOpts))
	cmd.AddCommand(newComponentsArchiveCommand(rootOpts))
	return cmd
}

func newComponentsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list <category>",
		Short:         "List components in a category with effective states",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := outputFor(rootOpts, cmd)
			store, err := openStore(rootOpts)
			if err != nil {
				return storeError(formatter, err)
			}
			components, err := store.QueryComponentsByCategory(args[0])
			if err != nil {
				return storeError(formatter, err)
			}
			if rootOpts.Format == "json" {
				return formatter.Success(components)
			}
			for _, c := range components {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-9s  %.2f  %s\n", c.ID, c.State, c.Confidence, c.Name)
			}
			return nil
		},
	}
}

func newComponentsRecordCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		journeyID   string
		provenance  string
		stepPattern string
		kind        string
		targetTpl   string
		valueTpl    string
	)
	cmd := &cobra.Command{
		Use:           "record <category> <name> <snippet>",
		Short:         "Record a reusable component snippet",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := outputFor(rootOpts, cmd)
			store, err := openStore(rootOpts)
			if err != nil {
				return storeError(formatter, err)
			}
			component, err := store.RecordComponent(cmd.Context(), knowledge.ComponentInput{
				JourneyID:      journeyID,
				Category:       args[0],
				Name:           args[1],
				Snippet:        args[2],
				Provenance:     provenance,
				StepPattern:    stepPattern,
				Kind:           ir.Kind(kind),
				TargetTemplate: targetTpl,
				ValueTemplate:  valueTpl,
			})
			if err != nil {
				return storeError(formatter, err)
			}
			if rootOpts.Format == "json" {
				return formatter.Success(component)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recorded %s\n", component.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&journeyID, "journey", "", "journey the component was mined from")
	cmd.Flags().StringVar(&provenance, "provenance", knowledge.ProvenanceManual, "provenance (static-analysis|mined|manual)")
	cmd.Flags().StringVar(&stepPattern, "step-pattern", "", "anchored regexp making this a learned matcher rule")
	cmd.Flags().StringVar(&kind, "kind", "", "action kind for the learned rule")
	cmd.Flags().StringVar(&targetTpl, "target", "", "target template for the learned rule ($1, $2 captures)")
	cmd.Flags().StringVar(&valueTpl, "value", "", "value template for the learned rule")
	return cmd
}

func newComponentsApplyCommand(rootOpts *RootOptions) *cobra.Command {
	var journeyID string
	var failed bool
	cmd := &cobra.Command{
		Use:           "apply <id>",
		Short:         "Record one reuse outcome for a component",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := outputFor(rootOpts, cmd)
			store, err := openStore(rootOpts)
			if err != nil {
				return storeError(formatter, err)
			}
			component, err := store.MarkComponentApplied(cmd.Context(), args[0], journeyID, !failed)
			if err != nil {
				return storeError(formatter, err)
			}
			if rootOpts.Format == "json" {
				return formatter.Success(component)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s, confidence %.2f\n", component.ID, component.State, component.Confidence)
			return nil
		},
	}
	cmd.Flags().StringVar(&journeyID, "journey", "", "journey the component was used in")
	cmd.Flags().BoolVar(&failed, "failed", false, "the reuse failed")
	return cmd
}

func newComponentsArchiveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "archive <id>",
		Short:         "Archive a component (curation only, never deleted)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := outputFor(rootOpts, cmd)
			store, err := openStore(rootOpts)
			if err != nil {
				return storeError(formatter, err)
			}
			if err := store.ArchiveComponent(cmd.Context(), args[0]); err != nil {
				return storeError(formatter, err)
			}
			return formatter.Success(fmt.Sprintf("archived %s", args[0]))
		},
	}
}

// NewSweepCommand creates the sweep command, persisting decay
// transitions for every record.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "sweep",
		Short:         "Persist decay transitions across the knowledge store",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := outputFor(rootOpts, cmd)
			store, err := openStore(rootOpts)
			if err != nil {
				return storeError(formatter, err)
			}
			if err := store.Sweep(cmd.Context()); err != nil {
				return storeError(formatter, err)
			}
			return formatter.Success("sweep complete")
		},
	}
}

// outputFor builds the standard formatter for a command.
func outputFor(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
