// Package lookup provides the lookup command implementation.
package lookup

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/cellmap"
	"github.com/agentstation/cellmap/internal/appcontext"
	"github.com/agentstation/cellmap/pkg/constants"
	"github.com/agentstation/cellmap/pkg/errors"
	"github.com/agentstation/cellmap/pkg/registry"
)

// NewCommand creates the lookup command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "lookup <label>",
		GroupID: "core",
		Short:   "Resolve a single cell-line label against the registry",
		Args:    cobra.ExactArgs(1),
		Long: `Lookup resolves one free-text label against the registry using the
same ranked matching rules as annotate: exact code, cellosaurus name,
cellosaurus accession, then synonym. It prints the matched row and
the rule that resolved it.`,
		Example: `  cellmap lookup HELA
  cellmap lookup CVCL_0030
  cellmap lookup "Hela S3" --registry registry.tsv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ExecuteLookup(cmd, app, args[0])
		},
	}
}

// ExecuteLookup resolves one label and prints the matched registry row.
func ExecuteLookup(cmd *cobra.Command, app appcontext.Interface, label string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), constants.DefaultTimeout)
	defer cancel()

	var opts []cellmap.Option
	if path := app.RegistryPath(); path != "" {
		opts = append(opts, cellmap.WithRegistry(path))
	}

	cm, err := app.Cellmap(opts...)
	if err != nil {
		return err
	}

	match, err := cm.Lookup(ctx, label)
	if err != nil {
		return err
	}

	if !match.Matched() {
		return &errors.NotFoundError{
			Resource: "cell line",
			ID:       label,
		}
	}

	cmd.Printf("%s resolved by rule %q\n\n", label, match.Rule)

	// Header and Values run in parallel; skip fields the registry has no
	// value for.
	values := match.Row.Values()
	for i, name := range registry.Header {
		if registry.IsMissing(values[i]) {
			continue
		}
		cmd.Printf("  %-22s %s\n", name, values[i])
	}

	return nil
}
