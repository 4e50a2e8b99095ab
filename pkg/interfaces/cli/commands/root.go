package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var version = "dev"

// globalOptions are the persistent flags shared by every subcommand
type globalOptions struct {
	configFile string
	verbose    bool
}

// SetVersion sets the version reported by --version
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// NewRootCommand builds the rebalance command tree
func NewRootCommand() *cobra.Command {
	global := &globalOptions{}

	root := &cobra.Command{
		Use:     "rebalance",
		Version: version,
		Short:   "Capacity-constrained production reallocation",
		Long: `rebalance moves planned production between assembly lines and dates
so that one line-day reaches a target load without breaking due dates,
pallet sizes, line capability or capacity elsewhere.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")

	root.PersistentFlags().StringVar(&global.configFile, "config", "", "Path to YAML configuration (default: built-in plant configuration)")
	root.PersistentFlags().BoolVarP(&global.verbose, "verbose", "v", false, "Enable verbose output")

	root.AddCommand(newReallocateCmd(global), newFactsCmd(global), newImportCmd(global), newGenerateCmd(global))
	return root
}

// Execute executes the root command.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
