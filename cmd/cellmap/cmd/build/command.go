package build

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/cellmap/internal/appcontext"
	"github.com/agentstation/cellmap/pkg/constants"
)

// NewCommand creates the build command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var flags *Flags

	cmd := &cobra.Command{
		Use:     "build",
		GroupID: "core",
		Short:   "Build the cell-line registry from configured sources",
		Long: `Build parses the configured sources and reconciles them into one
canonical cell-line registry:

1. Cellosaurus catalog - names, accessions, synonyms, donor metadata
2. BTO and CL ontologies - cross-referenced tissue and cell type labels
3. Supplementary tables - listed in a YAML source manifest

Rows merge field by field in source priority order: the first source
to fill a field wins, later sources only fill gaps. The reconciled
registry is written as a TSV with one row per cell line.`,
		Example: `  cellmap build --catalog cellosaurus.txt --bto bto.obo --cl cl.obo
  cellmap build --catalog cellosaurus.txt --sources sources.yaml
  cellmap build --catalog cellosaurus.txt -o registry.tsv
  cellmap build --catalog cellosaurus.txt --merge-existing`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ExecuteBuild(cmd.Context(), app, flags)
		},
	}

	// Add build-specific flags
	flags = addBuildFlags(cmd)

	return cmd
}

// ExecuteBuild runs a full registry build and reports the outcome.
func ExecuteBuild(ctx context.Context, app appcontext.Interface, flags *Flags) error {
	ctx, cancel := context.WithTimeout(ctx, constants.BuildTimeout)
	defer cancel()

	cm, err := app.Cellmap(BuildOptions(app.RegistryPath(), flags)...)
	if err != nil {
		return err
	}

	result, err := cm.Build(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "✅ %s\n", result.Summary())
	if flags.Output != "" {
		fmt.Fprintf(os.Stderr, "📁 Registry written to: %s\n", flags.Output)
	}

	return nil
}
