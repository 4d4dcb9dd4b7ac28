package cmd

import (
	"github.com/crytic/ethpm/logging/colors"
	"github.com/crytic/ethpm/manifest"
	"github.com/crytic/medusa-geth/common"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// linkCmd represents the command provider for link
var linkCmd = &cobra.Command{
	Use:   "link <manifest> <contract>",
	Short: "Links library addresses into the bytecode of a contract type",
	Long: `Writes library addresses into the deployment and runtime bytecode of a contract type at the offsets given by
its link references, along with any literal link dependencies, and writes the updated manifest back to disk.`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: cmdValidUnusedFlags,
	RunE:              cmdRunLink,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	linkCmd.Flags().StringToString("library", map[string]string{}, "library name to address mapping, e.g. --library SafeMath=0x1234...")
	linkCmd.Flags().String("out", "", "output path for the updated manifest (default overwrites the input)")

	rootCmd.AddCommand(linkCmd)
}

// cmdRunLink executes the link CLI command
func cmdRunLink(cmd *cobra.Command, args []string) error {
	libraries, err := cmd.Flags().GetStringToString("library")
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

	// Parse our library addresses
	addresses := make(map[string]common.Address, len(libraries))
	for name, address := range libraries {
		if !common.IsHexAddress(address) {
			err = errors.Errorf("library '%s' has malformed address '%s'", name, address)
			cmdLogger.Error("Failed to run the link command", err)
			return err
		}
		addresses[name] = common.HexToAddress(address)
	}

	m, err := manifest.ReadManifestFile(args[0])
	if err != nil {
		cmdLogger.Error("Failed to read the manifest", err)
		return err
	}
	contractType, ok := m.ContractTypes[args[1]]
	if !ok {
		err = errors.Errorf("manifest has no contract type named '%s'", args[1])
		cmdLogger.Error("Failed to run the link command", err)
		return err
	}

	if contractType.DeploymentBytecode != nil {
		if contractType.DeploymentBytecode, err = contractType.DeploymentBytecode.Link(addresses); err != nil {
			cmdLogger.Error("Failed to link the deployment bytecode", err)
			return err
		}
	}
	if contractType.RuntimeBytecode != nil {
		if contractType.RuntimeBytecode, err = contractType.RuntimeBytecode.Link(addresses); err != nil {
			cmdLogger.Error("Failed to link the runtime bytecode", err)
			return err
		}
	}

	if contractType.DeploymentBytecode != nil && !contractType.DeploymentBytecode.IsLinked() {
		cmdLogger.Warn("Contract ", colors.Bold, args[1], colors.Reset, " still has unlinked libraries: ", contractType.DeploymentBytecode.Placeholders())
	}

	if err = m.WriteToFile(outputPath); err != nil {
		cmdLogger.Error("Failed to write the manifest", err)
		return err
	}
	cmdLogger.Info("Linked manifest successfully output to: ", colors.Bold, outputPath, colors.Reset)
	return nil
}
