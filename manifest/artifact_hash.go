package manifest

import (
	"crypto/sha256"
	"encoding/hex"
)

// ComputeArtifactHash computes a SHA-256 hash over every contract type's name and bytecode. Contract types are
// visited in name order, so the result is deterministic.
func (m *Manifest) ComputeArtifactHash() string {
	hasher := sha256.New()

	for _, name := range m.ContractTypeNames() {
		contractType := m.ContractTypes[name]
		hasher.Write([]byte(name))
		if contractType.DeploymentBytecode != nil {
			hasher.Write([]byte(contractType.DeploymentBytecode.Bytecode))
		}
		if contractType.RuntimeBytecode != nil {
			hasher.Write([]byte(contractType.RuntimeBytecode.Bytecode))
		}
	}

	return hex.EncodeToString(hasher.Sum(nil))
}
