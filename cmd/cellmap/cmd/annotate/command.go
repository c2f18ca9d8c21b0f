package annotate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/cellmap"
	"github.com/agentstation/cellmap/internal/appcontext"
	"github.com/agentstation/cellmap/internal/assist"
	"github.com/agentstation/cellmap/pkg/constants"
)

// NewCommand creates the annotate command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var flags *Flags

	cmd := &cobra.Command{
		Use:     "annotate <sdrf-file> [output-file]",
		GroupID: "core",
		Short:   "Annotate a sample table against the registry",
		Args:    cobra.RangeArgs(1, 2),
		Long: `Annotate reads a tab-separated sample table, resolves each row's
cell line label against the registry, and writes the table back out
with the registry annotation columns appended plus a match rule audit
column. Rows whose label no rule resolves are still emitted, with
every annotation column set to "not available".

The input must carry "source name" and "characteristics[cell line]"
columns (discovered case-insensitively). All other columns pass
through unchanged. When no output file is given, the annotated copy
is written next to the input with an .annotated suffix.`,
		Example: `  cellmap annotate experiment.sdrf.tsv
  cellmap annotate experiment.sdrf.tsv annotated.tsv
  cellmap annotate experiment.sdrf.tsv --registry registry.tsv
  cellmap annotate experiment.sdrf.tsv --suggest`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			output := deriveOutputPath(input)
			if len(args) == 2 {
				output = args[1]
			}
			return ExecuteAnnotate(cmd.Context(), app, flags, input, output)
		},
	}

	// Add annotate-specific flags
	flags = addAnnotateFlags(cmd)

	return cmd
}

// ExecuteAnnotate annotates one sample table and reports the outcome.
func ExecuteAnnotate(ctx context.Context, app appcontext.Interface, flags *Flags, input, output string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.CommandTimeout)
	defer cancel()

	var opts []cellmap.Option
	if path := app.RegistryPath(); path != "" {
		opts = append(opts, cellmap.WithRegistry(path))
	}

	cm, err := app.Cellmap(opts...)
	if err != nil {
		return err
	}

	stats, err := cm.Annotate(ctx, input, output)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "✅ Annotated %d labels: %d matched, %d unmatched\n",
		stats.Labels, stats.Matched, stats.Unmatched)
	fmt.Fprintf(os.Stderr, "📁 Annotated table written to: %s\n", output)

	if flags.Suggest && len(stats.UnmatchedLabels) > 0 {
		suggestUnmatched(ctx, app, cm, flags, stats.UnmatchedLabels)
	}

	return nil
}

// suggestUnmatched asks the classifier to rank registry candidates for the
// labels no rule resolved. Suggestions are advisory and logged for curators;
// failures are warnings, never fatal.
func suggestUnmatched(ctx context.Context, app appcontext.Interface, cm cellmap.Cellmap, flags *Flags, labels []string) {
	logger := app.Logger()

	table, err := cm.Registry()
	if err != nil {
		logger.Warn().Err(err).Msg("suggestion pass skipped")
		return
	}

	classifier, err := assist.New(ctx, "",
		assist.WithModel(flags.Model),
		assist.WithLimit(flags.Limit))
	if err != nil {
		logger.Warn().Err(err).Msg("suggestion pass skipped")
		return
	}

	suggestions, err := classifier.Suggest(ctx, labels, table)
	if err != nil {
		logger.Warn().Err(err).Msg("suggestion pass failed")
		return
	}

	assist.LogSuggestions(ctx, suggestions)
}

// deriveOutputPath places the annotated copy next to the input with an
// .annotated suffix: experiment.sdrf.tsv becomes experiment.sdrf.annotated.tsv.
func deriveOutputPath(input string) string {
	ext := filepath.Ext(input)
	if ext == "" {
		ext = ".tsv"
	}
	return strings.TrimSuffix(input, ext) + ".annotated" + ext
}
