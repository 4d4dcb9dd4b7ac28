package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/crytic/ethpm/manifest"
	"github.com/crytic/ethpm/manifest/types"
	"github.com/crytic/ethpm/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats supported by commands which print records.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// inspectCmd represents the command provider for inspect
var inspectCmd = &cobra.Command{
	Use:               "inspect <manifest>",
	Short:             "Prints a summary of a manifest or one of its contract types",
	Long:              `Prints a summary of a manifest or one of its contract types, as text, JSON or YAML`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: cmdValidUnusedFlags,
	RunE:              cmdRunInspect,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	inspectCmd.Flags().String("format", formatText, "output format, one of text, json, yaml")
	inspectCmd.Flags().String("contract", "", "name of a contract type to inspect instead of the whole manifest")

	rootCmd.AddCommand(inspectCmd)
}

// cmdRunInspect executes the inspect CLI command
func cmdRunInspect(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	contractName, err := cmd.Flags().GetString("contract")
	if err != nil {
		return err
	}

	m, err := manifest.ReadManifestFile(args[0])
	if err != nil {
		cmdLogger.Error("Failed to read the manifest", err)
		return err
	}
	if m.Name == "" {
		m.Name = utils.GetFileNameWithoutExtension(args[0])
	}

	// Select what we are printing
	var record types.Serializable = m
	if contractName != "" {
		contractType, ok := m.ContractTypes[contractName]
		if !ok {
			err = errors.Errorf("manifest has no contract type named '%s'", contractName)
			cmdLogger.Error("Failed to inspect the manifest", err)
			return err
		}
		record = contractType
	}

	out := cmd.OutOrStdout()
	switch format {
	case formatText:
		if contractName != "" {
			return writeContractTypeSummary(out, m.ContractTypes[contractName])
		}
		return writeManifestSummary(out, m)
	default:
		return writeRecord(out, record, format)
	}
}

// writeRecord writes the record form of the value in the given structured format.
func writeRecord(out io.Writer, value types.Serializable, format string) error {
	var b []byte
	var err error
	switch format {
	case formatJSON:
		b, err = json.MarshalIndent(value, "", "\t")
		b = append(b, '\n')
	case formatYAML:
		b, err = yaml.Marshal(value.ToRecord())
	default:
		return errors.Errorf("unsupported output format '%s', expected one of %s, %s, %s", format, formatText, formatJSON, formatYAML)
	}
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = out.Write(b)
	return errors.WithStack(err)
}

// writeManifestSummary writes a human-readable overview of the manifest.
func writeManifestSummary(out io.Writer, m *manifest.Manifest) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Manifest %s", m.Name))
	if m.Version != "" {
		sb.WriteString("@" + m.Version)
	}
	if m.ManifestVersion != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", m.ManifestVersion))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Sources (%d):\n", len(m.Sources)))
	for _, id := range m.SourceIDs() {
		source := m.Sources[id]
		checksumString := "no checksum"
		if source.Checksum != nil {
			checksumString = source.Checksum.Algorithm + ":" + source.Checksum.Hash
		}
		loaded := "not loaded"
		if source.Content != "" {
			loaded = fmt.Sprintf("%d bytes", len(source.Content))
		}
		sb.WriteString(fmt.Sprintf("  %s  %s  urls=%d  %s\n", id, checksumString, len(source.URLs), loaded))
	}

	sb.WriteString(fmt.Sprintf("Contract types (%d):\n", len(m.ContractTypes)))
	for _, name := range m.ContractTypeNames() {
		contractType := m.ContractTypes[name]
		linked := "n/a"
		if contractType.DeploymentBytecode != nil {
			linked = fmt.Sprintf("%t", contractType.DeploymentBytecode.IsLinked())
		}
		sb.WriteString(fmt.Sprintf("  %s  source=%s  linked=%s\n", name, contractType.SourceID, linked))
	}

	if len(m.Compilers) > 0 {
		sb.WriteString(fmt.Sprintf("Compilers (%d):\n", len(m.Compilers)))
		for _, compiler := range m.Compilers {
			compilerVersion := compiler.Version
			if v, err := compiler.SemVer(); err == nil {
				compilerVersion = v.String()
			}
			sb.WriteString(fmt.Sprintf("  %s %s  %s\n", compiler.Name, compilerVersion, strings.Join(compiler.ContractTypes, ", ")))
		}
	}

	if len(m.Deployments) > 0 {
		sb.WriteString("Deployments:\n")
		for _, chain := range sortedKeys(m.Deployments) {
			instances := m.Deployments[chain]
			for _, name := range sortedKeys(instances) {
				instance := instances[name]
				address := instance.Address
				if parsed, err := instance.HexAddress(); err == nil {
					address = parsed.Hex()
				}
				sb.WriteString(fmt.Sprintf("  %s/%s  %s at %s\n", chain, name, instance.ContractType, address))
			}
		}
	}

	_, err := io.WriteString(out, sb.String())
	return errors.WithStack(err)
}

// writeContractTypeSummary writes a human-readable overview of a single contract type.
func writeContractTypeSummary(out io.Writer, contractType *types.ContractType) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Contract %s\n", contractType.ContractName))
	if contractType.SourceID != "" {
		sb.WriteString(fmt.Sprintf("  source:   %s\n", contractType.SourceID))
	}
	if contractType.SourcePath != "" {
		sb.WriteString(fmt.Sprintf("  path:     %s\n", contractType.SourcePath))
	}

	contractABI, err := contractType.ParseABI()
	if err != nil {
		sb.WriteString(fmt.Sprintf("  abi:      invalid (%v)\n", err))
	} else {
		sb.WriteString(fmt.Sprintf("  abi:      %d methods, %d events, %d errors\n", len(contractABI.Methods), len(contractABI.Events), len(contractABI.Errors)))
	}

	writeBytecodeSummary(&sb, "deployment", contractType.DeploymentBytecode)
	writeBytecodeSummary(&sb, "runtime", contractType.RuntimeBytecode)

	_, err = io.WriteString(out, sb.String())
	return errors.WithStack(err)
}

// writeBytecodeSummary describes the size, link status and compiler metadata of a bytecode.
func writeBytecodeSummary(sb *strings.Builder, label string, bytecode *types.Bytecode) {
	if bytecode == nil || bytecode.Bytecode == "" {
		return
	}

	if placeholders := bytecode.Placeholders(); len(placeholders) > 0 {
		sb.WriteString(fmt.Sprintf("  %-9s unlinked, libraries: %s\n", label+":", strings.Join(placeholders, ", ")))
		return
	}

	data, err := bytecode.Bytes()
	if err != nil {
		sb.WriteString(fmt.Sprintf("  %-9s invalid (%v)\n", label+":", err))
		return
	}
	sb.WriteString(fmt.Sprintf("  %-9s %d bytes", label+":", len(data)))
	if metadata := types.ExtractContractMetadata(data); metadata != nil {
		if compilerVersion := metadata.CompilerVersion(); compilerVersion != "" {
			sb.WriteString(", solc " + compilerVersion)
		}
		if hash := metadata.ExtractBytecodeHash(); hash != nil {
			sb.WriteString(", metadata " + hex.EncodeToString(hash))
		}
	}
	sb.WriteString("\n")
}
