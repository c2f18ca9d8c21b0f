package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/cellmap/cmd/cellmap/cmd/annotate"
	"github.com/agentstation/cellmap/cmd/cellmap/cmd/build"
	"github.com/agentstation/cellmap/cmd/cellmap/cmd/lookup"
)

// NewBuildCommand creates the build command with app dependencies.
func (a *App) NewBuildCommand() *cobra.Command {
	return build.NewCommand(a)
}

// NewAnnotateCommand creates the annotate command with app dependencies.
func (a *App) NewAnnotateCommand() *cobra.Command {
	return annotate.NewCommand(a)
}

// NewLookupCommand creates the lookup command with app dependencies.
func (a *App) NewLookupCommand() *cobra.Command {
	return lookup.NewCommand(a)
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("cellmap %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
