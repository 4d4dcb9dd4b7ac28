package manifest

import (
	"sort"

	"github.com/crytic/ethpm/manifest/types"
	"github.com/pkg/errors"
)

// DefaultManifestVersion describes the manifest format version written by NewManifest.
const DefaultManifestVersion = "ethpm/3"

// Manifest describes a contract project's compiled output: its sources, the contract types compiled from them, the
// compilers used, and any known deployments.
type Manifest struct {
	// ManifestVersion describes the format version of the manifest.
	ManifestVersion string

	// Name describes the package name.
	Name string

	// Version describes the package version.
	Version string

	// Sources maps source identifiers to their Source.
	Sources map[string]*types.Source

	// ContractTypes maps contract names to their ContractType.
	ContractTypes map[string]*types.ContractType

	// Compilers describes the compilers which produced ContractTypes.
	Compilers []*types.Compiler

	// Deployments maps a chain identifier to a mapping of deployment names to ContractInstance.
	Deployments map[string]map[string]*types.ContractInstance

	// Events describes the event emitters used by LoadSources. They are not part of the serialized form.
	Events SourceEvents
}

// NewManifest creates an empty Manifest with the given package name and version.
func NewManifest(name string, version string) *Manifest {
	return &Manifest{
		ManifestVersion: DefaultManifestVersion,
		Name:            name,
		Version:         version,
		Sources:         make(map[string]*types.Source),
		ContractTypes:   make(map[string]*types.ContractType),
		Deployments:     make(map[string]map[string]*types.ContractInstance),
	}
}

// AddContractType adds or replaces a ContractType, keyed by its name.
func (m *Manifest) AddContractType(contractType *types.ContractType) {
	if m.ContractTypes == nil {
		m.ContractTypes = make(map[string]*types.ContractType)
	}
	m.ContractTypes[contractType.ContractName] = contractType
}

// ContractTypeNames returns the sorted names of all contract types in the manifest.
func (m *Manifest) ContractTypeNames() []string {
	return sortedKeys(m.ContractTypes)
}

// SourceIDs returns the sorted identifiers of all sources in the manifest.
func (m *Manifest) SourceIDs() []string {
	return sortedKeys(m.Sources)
}

// Validate checks references between the records of the manifest: contract type keys must match their names, every
// deployment must reference a known contract type, and every contract type listed by a compiler must exist.
func (m *Manifest) Validate() error {
	for name, contractType := range m.ContractTypes {
		if contractType == nil {
			return errors.Errorf("contract type '%s' is nil", name)
		}
		if contractType.ContractName != name {
			return errors.Errorf("contract type keyed as '%s' is named '%s'", name, contractType.ContractName)
		}
	}

	for chain, instances := range m.Deployments {
		for name, instance := range instances {
			if _, ok := m.ContractTypes[instance.ContractType]; !ok {
				return errors.Errorf("deployment '%s' on chain '%s' references unknown contract type '%s'", name, chain, instance.ContractType)
			}
		}
	}

	for _, compiler := range m.Compilers {
		for _, name := range compiler.ContractTypes {
			if _, ok := m.ContractTypes[name]; !ok {
				return errors.Errorf("compiler '%s' references unknown contract type '%s'", compiler.Name, name)
			}
		}
	}
	return nil
}

// sortedKeys returns the keys of a string-keyed map in sorted order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
