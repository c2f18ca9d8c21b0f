// Package annotate provides the annotate command implementation.
package annotate

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/cellmap/internal/assist"
)

// Flags holds the annotate command's flag values.
type Flags struct {
	Suggest bool
	Model   string
	Limit   int
}

// addAnnotateFlags adds annotate-specific flags to the annotate command.
func addAnnotateFlags(cmd *cobra.Command) *Flags {
	flags := &Flags{}

	cmd.Flags().BoolVar(&flags.Suggest, "suggest", false,
		"Ask the classifier to rank registry candidates for unmatched labels")
	cmd.Flags().StringVar(&flags.Model, "model", assist.DefaultModel,
		"Classifier model used with --suggest")
	cmd.Flags().IntVar(&flags.Limit, "limit", assist.DefaultLimit,
		"Candidates suggested per unmatched label")

	return flags
}
