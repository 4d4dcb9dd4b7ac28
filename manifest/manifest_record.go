package manifest

import (
	"encoding/json"

	"github.com/crytic/ethpm/manifest/types"
	"github.com/pkg/errors"
)

// FromRecord constructs a Manifest from its untyped Record form, converting every nested record.
func FromRecord(record types.Record) (*Manifest, error) {
	m := &Manifest{
		Sources:       make(map[string]*types.Source),
		ContractTypes: make(map[string]*types.ContractType),
		Deployments:   make(map[string]map[string]*types.ContractInstance),
	}

	var err error
	if m.ManifestVersion, err = stringField(record, "manifest"); err != nil {
		return nil, err
	}
	if m.Name, err = stringField(record, "name"); err != nil {
		return nil, err
	}
	if m.Version, err = stringField(record, "version"); err != nil {
		return nil, err
	}

	sources, err := objectField(record, "sources")
	if err != nil {
		return nil, err
	}
	for id, value := range sources {
		sourceRecord, err := nestedRecord("sources", id, value)
		if err != nil {
			return nil, err
		}
		if m.Sources[id], err = types.SourceFromRecord(sourceRecord); err != nil {
			return nil, err
		}
	}

	contractTypes, err := objectField(record, "contractTypes")
	if err != nil {
		return nil, err
	}
	for name, value := range contractTypes {
		contractTypeRecord, err := nestedRecord("contractTypes", name, value)
		if err != nil {
			return nil, err
		}
		if m.ContractTypes[name], err = types.ContractTypeFromRecord(contractTypeRecord); err != nil {
			return nil, err
		}
	}

	if value, ok := record["compilers"]; ok && value != nil {
		items, ok := value.([]any)
		if !ok {
			return nil, errors.Errorf("manifest field 'compilers' must be a list, got %T", value)
		}
		for i, item := range items {
			compilerRecord, err := nestedRecord("compilers", i, item)
			if err != nil {
				return nil, err
			}
			compiler, err := types.CompilerFromRecord(compilerRecord)
			if err != nil {
				return nil, err
			}
			m.Compilers = append(m.Compilers, compiler)
		}
	}

	deployments, err := objectField(record, "deployments")
	if err != nil {
		return nil, err
	}
	for chain, value := range deployments {
		instances, err := nestedRecord("deployments", chain, value)
		if err != nil {
			return nil, err
		}
		m.Deployments[chain] = make(map[string]*types.ContractInstance)
		for name, instanceValue := range instances {
			instanceRecord, err := nestedRecord("deployments."+chain, name, instanceValue)
			if err != nil {
				return nil, err
			}
			if m.Deployments[chain][name], err = types.ContractInstanceFromRecord(instanceRecord); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// ToRecord renders the Manifest into its untyped Record form. Empty collections are omitted.
func (m Manifest) ToRecord() types.Record {
	record := make(types.Record)
	putString(record, "manifest", m.ManifestVersion)
	putString(record, "name", m.Name)
	putString(record, "version", m.Version)

	if len(m.Sources) > 0 {
		sources := make(types.Record, len(m.Sources))
		for id, source := range m.Sources {
			sources[id] = source.ToRecord()
		}
		record["sources"] = sources
	}

	if len(m.ContractTypes) > 0 {
		contractTypes := make(types.Record, len(m.ContractTypes))
		for name, contractType := range m.ContractTypes {
			contractTypes[name] = contractType.ToRecord()
		}
		record["contractTypes"] = contractTypes
	}

	if len(m.Compilers) > 0 {
		compilers := make([]any, 0, len(m.Compilers))
		for _, compiler := range m.Compilers {
			compilers = append(compilers, compiler.ToRecord())
		}
		record["compilers"] = compilers
	}

	if len(m.Deployments) > 0 {
		deployments := make(types.Record, len(m.Deployments))
		for chain, instances := range m.Deployments {
			chainRecord := make(types.Record, len(instances))
			for name, instance := range instances {
				chainRecord[name] = instance.ToRecord()
			}
			deployments[chain] = chainRecord
		}
		record["deployments"] = deployments
	}
	return record
}

// MarshalJSON encodes the Manifest through its Record form.
func (m Manifest) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToRecord())
}

// UnmarshalJSON decodes the Manifest through its Record form.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	var record types.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return errors.WithStack(err)
	}
	decoded, err := FromRecord(record)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

func putString(record types.Record, key string, value string) {
	if value != "" {
		record[key] = value
	}
}

func stringField(record types.Record, key string) (string, error) {
	value, ok := record[key]
	if !ok || value == nil {
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		return "", errors.Errorf("manifest field '%s' must be a string, got %T", key, value)
	}
	return s, nil
}

func objectField(record types.Record, key string) (types.Record, error) {
	value, ok := record[key]
	if !ok || value == nil {
		return nil, nil
	}
	object, ok := value.(types.Record)
	if !ok {
		return nil, errors.Errorf("manifest field '%s' must be an object, got %T", key, value)
	}
	return object, nil
}

func nestedRecord(field string, key any, value any) (types.Record, error) {
	object, ok := value.(types.Record)
	if !ok {
		return nil, errors.Errorf("manifest entry '%s[%v]' must be an object, got %T", field, key, value)
	}
	return object, nil
}
