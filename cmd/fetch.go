package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/crytic/ethpm/cmd/exitcodes"
	"github.com/crytic/ethpm/logging/colors"
	"github.com/crytic/ethpm/manifest"
	"github.com/crytic/ethpm/manifest/checksum"
	"github.com/crytic/ethpm/manifest/types"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// fetchCmd represents the command provider for fetch
var fetchCmd = &cobra.Command{
	Use:   "fetch <manifest>",
	Short: "Fetches the content of a manifest's sources and computes their checksums",
	Long: `Fetches the content of every source in a manifest which has none, computes its checksum, and writes the
updated manifest back to disk. Existing checksums are kept unless --force is provided.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: cmdValidUnusedFlags,
	RunE:              cmdRunFetch,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	fetchCmd.Flags().String("algorithm", "", "checksum algorithm to use (unless a config file is provided, default is md5)")
	fetchCmd.Flags().Bool("force", false, "refetch every source and recompute every checksum")
	fetchCmd.Flags().String("out", "", "output path for the updated manifest (default overwrites the input)")

	rootCmd.AddCommand(fetchCmd)
}

// cmdRunFetch executes the fetch CLI command
func cmdRunFetch(cmd *cobra.Command, args []string) error {
	algorithm := projectConfig.ChecksumAlgorithm
	if cmd.Flags().Changed("algorithm") {
		var err error
		if algorithm, err = cmd.Flags().GetString("algorithm"); err != nil {
			return err
		}
	}
	if !checksum.IsSupported(algorithm) {
		err := errors.Errorf("unsupported checksum algorithm '%s', expected one of %v", algorithm, checksum.SupportedAlgorithms())
		cmdLogger.Error("Failed to run the fetch command", err)
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = args[0]
	}

	m, err := manifest.ReadManifestFile(args[0])
	if err != nil {
		cmdLogger.Error("Failed to read the manifest", err)
		return err
	}

	// Stop fetching on keyboard interrupts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Count the sources we fetch for our summary
	fetchedCount := 0
	m.Events.SourceLoaded.Subscribe(func(event manifest.SourceLoadedEvent) error {
		if event.Fetched {
			fetchedCount++
		}
		return nil
	})

	client := &http.Client{Timeout: projectConfig.FetchTimeoutDuration()}
	loadErr := m.LoadSources(ctx, types.HTTPFetcher(client), algorithm, force)

	// Sources which were loaded are kept even if others failed.
	if err = m.WriteToFile(outputPath); err != nil {
		cmdLogger.Error("Failed to write the manifest", err)
		return err
	}

	if loadErr != nil {
		cmdLogger.Error("Failed to load one or more sources, the partially updated manifest was written to ", colors.Bold, outputPath, colors.Reset)
		return exitcodes.NewErrorWithExitCode(loadErr, exitcodes.ExitCodeHandledError)
	}
	cmdLogger.Info("Fetched ", fetchedCount, " source(s), manifest successfully output to: ", colors.Bold, outputPath, colors.Reset)
	return nil
}
