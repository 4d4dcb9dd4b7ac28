package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/crytic/ethpm/cmd/exitcodes"
	"github.com/crytic/ethpm/logging/colors"
	"github.com/crytic/ethpm/manifest"
	"github.com/crytic/ethpm/manifest/types"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// verifyCmd represents the command provider for verify
var verifyCmd = &cobra.Command{
	Use:   "verify <manifest>",
	Short: "Verifies the references and source checksums of a manifest",
	Long: `Verifies that every reference between the records of a manifest resolves, and that the content of every
source still matches its checksum. Exits with code 7 if verification fails.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: cmdValidUnusedFlags,
	RunE:              cmdRunVerify,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	verifyCmd.Flags().Bool("fetch", false, "fetch the content of sources which have none before verifying")

	rootCmd.AddCommand(verifyCmd)
}

// cmdRunVerify executes the verify CLI command
func cmdRunVerify(cmd *cobra.Command, args []string) error {
	fetch, err := cmd.Flags().GetBool("fetch")
	if err != nil {
		return err
	}

	m, err := manifest.ReadManifestFile(args[0])
	if err != nil {
		cmdLogger.Error("Failed to read the manifest", err)
		return err
	}

	if err = m.Validate(); err != nil {
		cmdLogger.Error("Manifest references are invalid", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeVerificationFailed)
	}

	if fetch {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		// Existing checksums are kept, so they can be compared against the fetched content.
		client := &http.Client{Timeout: projectConfig.FetchTimeoutDuration()}
		if err = m.LoadSources(ctx, types.HTTPFetcher(client), projectConfig.ChecksumAlgorithm, false); err != nil {
			cmdLogger.Error("Failed to load one or more sources", err)
			return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
		}
	}

	mismatched, err := m.VerifySources()
	if err != nil {
		cmdLogger.Error("Failed to verify sources", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	if len(mismatched) > 0 {
		for _, id := range mismatched {
			cmdLogger.Error("Source ", colors.Bold, id, colors.Reset, colors.Red, " does not match its checksum")
		}
		return exitcodes.NewErrorWithExitCode(errors.Errorf("%d source(s) do not match their checksum", len(mismatched)), exitcodes.ExitCodeVerificationFailed)
	}

	cmdLogger.Info("Manifest ", colors.Bold, args[0], colors.Reset, colors.Green, " verified successfully")
	return nil
}
