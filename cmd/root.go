package cmd

import (
	"os"

	"github.com/crytic/ethpm/logging"
	"github.com/crytic/ethpm/version"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// rootCmd represents the root CLI command object which all other commands stem from.
var rootCmd = &cobra.Command{
	Use:               "ethpm",
	Short:             "A toolkit for smart contract build artifact manifests",
	Long:              "ethpm inspects, fetches, verifies and caches smart contract build artifact manifests",
	Version:           version.GetInfo().Short(),
	PersistentPreRunE: cmdLoadProjectConfig,
	PersistentPostRun: cmdCloseLogFile,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// cmdLogger is the logger that will be used for the cmd package. It is replaced once the project configuration is
// loaded.
var cmdLogger = logging.NewLogger(zerolog.InfoLevel, true)

func init() {
	addRootFlags()
}

// Execute provides an exportable function to invoke the CLI. Returns an error if one was encountered.
func Execute() error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.Execute()
}
