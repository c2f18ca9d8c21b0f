// Package build provides the build command implementation.
package build

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/cellmap"
	"github.com/agentstation/cellmap/pkg/constants"
)

// Flags holds the build command's flag values.
type Flags struct {
	Catalog       string
	BTO           string
	CL            string
	Sources       string
	Output        string
	MergeExisting bool
}

// addBuildFlags adds build-specific flags to the build command.
func addBuildFlags(cmd *cobra.Command) *Flags {
	flags := &Flags{}

	cmd.Flags().StringVar(&flags.Catalog, "catalog", "",
		"Cellosaurus catalog flat file")
	cmd.Flags().StringVar(&flags.BTO, "bto", "",
		"BRENDA tissue ontology OBO file")
	cmd.Flags().StringVar(&flags.CL, "cl", "",
		"Cell ontology OBO file")
	cmd.Flags().StringVar(&flags.Sources, "sources", "",
		"YAML manifest listing supplementary sources in priority order")
	cmd.Flags().StringVarP(&flags.Output, "output", "o", constants.DefaultRegistryFile,
		"Output registry TSV path")
	cmd.Flags().BoolVar(&flags.MergeExisting, "merge-existing", false,
		"Fold the existing registry in as the lowest-priority source")

	return flags
}

// BuildOptions creates a slice of cellmap options from the resolved flag
// values. The registry path feeds the merge when --merge-existing is set.
func BuildOptions(registryPath string, flags *Flags) []cellmap.Option {
	var opts []cellmap.Option

	if registryPath != "" {
		opts = append(opts, cellmap.WithRegistry(registryPath))
	}
	if flags.BTO != "" || flags.CL != "" {
		opts = append(opts, cellmap.WithOntologies(flags.BTO, flags.CL))
	}
	if flags.Catalog != "" {
		opts = append(opts, cellmap.WithCatalog(flags.Catalog))
	}
	if flags.Sources != "" {
		opts = append(opts, cellmap.WithManifest(flags.Sources))
	}
	if flags.Output != "" {
		opts = append(opts, cellmap.WithOutput(flags.Output))
	}
	if flags.MergeExisting {
		opts = append(opts, cellmap.WithMergeExisting(true))
	}

	return opts
}
