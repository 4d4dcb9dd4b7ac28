package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/crytic/ethpm/config"
	"github.com/crytic/ethpm/logging"
	"github.com/crytic/ethpm/logging/colors"
	"github.com/crytic/ethpm/utils"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// projectConfig describes the configuration loaded before any command runs.
var projectConfig *config.ProjectConfig

// logFile describes the structured log file opened for the current command, if logging to file is enabled.
var logFile *os.File

// addRootFlags adds the persistent flags shared by every command
func addRootFlags() {
	rootCmd.PersistentFlags().String("config", "",
		fmt.Sprintf("path to config file (default is %s in the working directory)", config.DefaultProjectConfigFilename))
	rootCmd.PersistentFlags().String("log-level", "",
		fmt.Sprintf("log level, one of trace, debug, info, warn, error (default is %v unless a config file is provided)", config.DefaultProjectConfig().Logging.Level))
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored console output")
}

// cmdLoadProjectConfig reads the project configuration and sets up logging before any command runs:
// #1: If --config was used, the file must exist and is read.
// #2: Otherwise, the default config file in the working directory is read if it exists.
// #3: Otherwise, the default project configuration is used.
func cmdLoadProjectConfig(cmd *cobra.Command, args []string) error {
	configFlagUsed := cmd.Flags().Changed("config")
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	if !configFlagUsed {
		workingDirectory, err := os.Getwd()
		if err != nil {
			return errors.WithStack(err)
		}
		configPath = filepath.Join(workingDirectory, config.DefaultProjectConfigFilename)
	}

	// Possibility #1 and #2: the file exists
	var usedDefaults bool
	if utils.FileExists(configPath) {
		projectConfig, err = config.ReadProjectConfigFromFile(configPath)
		if err != nil {
			cmdLogger.Error("Failed to read the configuration file", err)
			return err
		}
	} else if configFlagUsed {
		err = errors.Errorf("could not find the config file at %s", configPath)
		cmdLogger.Error("Failed to read the configuration file", err)
		return err
	} else {
		// Possibility #3
		projectConfig = config.DefaultProjectConfig()
		usedDefaults = true
	}

	err = updateProjectConfigWithRootFlags(cmd, projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to parse flags", err)
		return err
	}

	err = projectConfig.Validate()
	if err != nil {
		cmdLogger.Error("Invalid project configuration", err)
		return err
	}

	err = setupLogging(projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to set up logging", err)
		return err
	}

	if usedDefaults {
		cmdLogger.Debug("No config file found at ", colors.Bold, configPath, colors.Reset, ", using the default project configuration")
	} else {
		cmdLogger.Debug("Read the configuration file at ", colors.Bold, configPath, colors.Reset)
	}
	return nil
}

// updateProjectConfigWithRootFlags will update the given projectConfig with the persistent flags provided to any
// command.
func updateProjectConfigWithRootFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	if cmd.Flags().Changed("log-level") {
		levelString, err := cmd.Flags().GetString("log-level")
		if err != nil {
			return err
		}
		level, err := zerolog.ParseLevel(levelString)
		if err != nil {
			return errors.WithStack(err)
		}
		projectConfig.Logging.Level = level
	}

	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		return err
	}
	if noColor {
		colors.DisableColor()
	}
	return nil
}

// setupLogging replaces the global and cmd loggers with ones using the configured level, adding a structured log
// file writer if a log directory is configured.
func setupLogging(projectConfig *config.ProjectConfig) error {
	logging.GlobalLogger = logging.NewLogger(projectConfig.Logging.Level, true)

	if projectConfig.Logging.LogDirectory != "" {
		var err error
		logFile, err = utils.CreateFile(projectConfig.Logging.LogDirectory, fmt.Sprintf("ethpm-%d.log", time.Now().Unix()))
		if err != nil {
			return err
		}
		logging.GlobalLogger.AddWriter(logFile, logging.STRUCTURED)
	}

	cmdLogger = logging.GlobalLogger.NewSubLogger("module", logging.CLI_SERVICE)
	return nil
}

// cmdCloseLogFile closes the log file opened by setupLogging, if any.
func cmdCloseLogFile(cmd *cobra.Command, args []string) {
	if logFile == nil {
		return
	}
	logging.GlobalLogger.RemoveWriter(logFile)
	_ = logFile.Close()
	logFile = nil
}
