package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/crytic/ethpm/config"
	"github.com/crytic/ethpm/logging/colors"
	"github.com/crytic/ethpm/manifest/checksum"
	"github.com/crytic/ethpm/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// initCmd represents the command provider for init
var initCmd = &cobra.Command{
	Use:           "init",
	Short:         "Initializes a project configuration",
	Long:          `Initializes a project configuration with default values`,
	Args:          cobra.NoArgs,
	RunE:          cmdRunInit,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	initCmd.Flags().String("out", "", "output path for the new project configuration file")
	initCmd.Flags().String("algorithm", "",
		fmt.Sprintf("checksum algorithm to configure (default is %s)", config.DefaultProjectConfig().ChecksumAlgorithm))
	initCmd.Flags().Bool("force", false, "overwrite an existing configuration file")

	rootCmd.AddCommand(initCmd)
}

// cmdRunInit executes the init CLI command, writing a default project configuration updated with any flags.
func cmdRunInit(cmd *cobra.Command, args []string) error {
	outputPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	if outputPath == "" {
		workingDirectory, err := os.Getwd()
		if err != nil {
			return errors.WithStack(err)
		}
		outputPath = filepath.Join(workingDirectory, config.DefaultProjectConfigFilename)
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	if utils.FileExists(outputPath) && !force {
		err = errors.Errorf("a file already exists at %s, use --force to overwrite it", outputPath)
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}

	newConfig := config.DefaultProjectConfig()
	if cmd.Flags().Changed("algorithm") {
		newConfig.ChecksumAlgorithm, err = cmd.Flags().GetString("algorithm")
		if err != nil {
			return err
		}
		if !checksum.IsSupported(newConfig.ChecksumAlgorithm) {
			err = errors.Errorf("unsupported checksum algorithm '%s', expected one of %v", newConfig.ChecksumAlgorithm, checksum.SupportedAlgorithms())
			cmdLogger.Error("Failed to run the init command", err)
			return err
		}
	}

	err = newConfig.WriteToFile(outputPath)
	if err != nil {
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}

	if absoluteOutputPath, err := filepath.Abs(outputPath); err == nil {
		outputPath = absoluteOutputPath
	}
	cmdLogger.Info("Project configuration successfully output to: ", colors.Bold, outputPath, colors.Reset)
	return nil
}
