package cmd

import (
	"fmt"

	"github.com/crytic/ethpm/cache"
	"github.com/crytic/ethpm/logging"
	"github.com/crytic/ethpm/logging/colors"
	"github.com/crytic/ethpm/manifest"
	"github.com/crytic/ethpm/manifest/types"
	"github.com/spf13/cobra"
)

// cacheCmd represents the command provider for cache, which groups the artifact cache subcommands.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manages the on-disk artifact cache",
	Long:  `Stores and retrieves contract types and sources in the project's on-disk artifact cache`,
}

// cachePutCmd represents the command provider for cache put
var cachePutCmd = &cobra.Command{
	Use:           "put <manifest>",
	Short:         "Stores the contract types and sources of a manifest in the cache",
	Args:          cobra.ExactArgs(1),
	RunE:          cmdRunCachePut,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// cacheGetCmd represents the command provider for cache get
var cacheGetCmd = &cobra.Command{
	Use:           "get <name>",
	Short:         "Prints a cached contract type, or a cached source with --source",
	Args:          cobra.ExactArgs(1),
	RunE:          cmdRunCacheGet,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// cacheListCmd represents the command provider for cache ls
var cacheListCmd = &cobra.Command{
	Use:           "ls",
	Short:         "Lists the names of cached contract types",
	Args:          cobra.NoArgs,
	RunE:          cmdRunCacheList,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cacheGetCmd.Flags().Bool("source", false, "treat the name as a source identifier")
	cacheGetCmd.Flags().String("format", formatJSON, "output format, one of json, yaml")

	cacheCmd.AddCommand(cachePutCmd, cacheGetCmd, cacheListCmd)
	rootCmd.AddCommand(cacheCmd)
}

// openCache opens the artifact cache in the configured cache directory.
func openCache() (*cache.ArtifactCache, error) {
	c, err := cache.Open(projectConfig.CacheDirectory)
	if err != nil {
		cmdLogger.Error("Failed to open the artifact cache", err)
		return nil, err
	}
	return c, nil
}

// cmdRunCachePut executes the cache put CLI command
func cmdRunCachePut(cmd *cobra.Command, args []string) error {
	m, err := manifest.ReadManifestFile(args[0])
	if err != nil {
		cmdLogger.Error("Failed to read the manifest", err)
		return err
	}

	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	cache.NotifyArtifactHashStatus(m, c, logging.GlobalLogger.NewSubLogger("module", logging.CACHE_SERVICE))
	if err = c.PutManifest(m); err != nil {
		cmdLogger.Error("Failed to store the manifest in the artifact cache", err)
		return err
	}
	cmdLogger.Info("Cached ", len(m.ContractTypes), " contract type(s) and ", len(m.Sources), " source(s) in ", colors.Bold, projectConfig.CacheDirectory, colors.Reset)
	return nil
}

// cmdRunCacheGet executes the cache get CLI command
func cmdRunCacheGet(cmd *cobra.Command, args []string) error {
	isSource, err := cmd.Flags().GetBool("source")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}

	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	var value types.Serializable
	if isSource {
		value, err = c.GetSource(args[0])
	} else {
		value, err = c.GetContractType(args[0])
	}
	if err != nil {
		cmdLogger.Error("Failed to read '", args[0], "' from the artifact cache", err)
		return err
	}
	return writeRecord(cmd.OutOrStdout(), value, format)
}

// cmdRunCacheList executes the cache ls CLI command
func cmdRunCacheList(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	names, err := c.ContractTypeNames()
	if err != nil {
		cmdLogger.Error("Failed to list the artifact cache", err)
		return err
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}
