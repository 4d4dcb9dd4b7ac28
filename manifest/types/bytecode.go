package types

import (
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/crytic/medusa-geth/common"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// placeholderRegex matches library placeholders emitted by the Solidity compiler, in either the legacy "__Name__"
// form or the hashed "__$<hash>$__" form.
var placeholderRegex = regexp.MustCompile(`__(\$[0-9a-zA-Z]*\$|\w*)__`)

// Bytecode describes hex-encoded contract bytecode along with the regions of it which must be linked before
// deployment.
type Bytecode struct {
	// Bytecode describes the hex-encoded bytecode, optionally prefixed with "0x". An empty value describes an
	// unlinked or unsaved artifact.
	Bytecode string

	// LinkReferences describes library placeholders within Bytecode.
	LinkReferences []LinkReference

	// LinkDependencies describes other values which must be written into Bytecode.
	LinkDependencies []LinkDependency
}

// BytecodeFromRecord constructs a Bytecode from its untyped Record form. Each element of the link lists is
// converted independently and list order is preserved.
func BytecodeFromRecord(record Record) (*Bytecode, error) {
	r := newRecordReader("Bytecode", record)
	bytecode, err := r.optionalString("bytecode")
	if err != nil {
		return nil, err
	}

	b := &Bytecode{Bytecode: bytecode}

	// Convert our link references
	references, err := r.records("linkReferences")
	if err != nil {
		return nil, err
	}
	for _, item := range references {
		reference, err := linkReferenceFromAny(item)
		if err != nil {
			return nil, err
		}
		b.LinkReferences = append(b.LinkReferences, *reference)
	}

	// Convert our link dependencies
	dependencies, err := r.records("linkDependencies")
	if err != nil {
		return nil, err
	}
	for _, item := range dependencies {
		dependency, err := linkDependencyFromAny(item)
		if err != nil {
			return nil, err
		}
		b.LinkDependencies = append(b.LinkDependencies, *dependency)
	}

	// Link information is meaningless without the bytecode it refers to.
	if b.Bytecode == "" && (len(b.LinkReferences) > 0 || len(b.LinkDependencies) > 0) {
		return nil, newValidationError("Bytecode", "bytecode", "is required when link references or dependencies are provided")
	}
	return b, nil
}

// bytecodeFromAny converts a nested field value which is either a Record or an already-typed Bytecode.
func bytecodeFromAny(typeName string, field string, value any) (*Bytecode, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case *Bytecode:
		return v.Clone(), nil
	case Bytecode:
		return v.Clone(), nil
	}
	record, err := asRecord(typeName, field, value)
	if err != nil {
		return nil, err
	}
	return BytecodeFromRecord(record)
}

func linkReferenceFromAny(value any) (*LinkReference, error) {
	switch v := value.(type) {
	case *LinkReference:
		return &LinkReference{Offsets: slices.Clone(v.Offsets), Length: v.Length, Name: v.Name}, nil
	case LinkReference:
		return &LinkReference{Offsets: slices.Clone(v.Offsets), Length: v.Length, Name: v.Name}, nil
	}
	record, err := asRecord("Bytecode", "linkReferences", value)
	if err != nil {
		return nil, err
	}
	return LinkReferenceFromRecord(record)
}

func linkDependencyFromAny(value any) (*LinkDependency, error) {
	switch v := value.(type) {
	case *LinkDependency:
		return &LinkDependency{Offsets: slices.Clone(v.Offsets), Type: v.Type, Value: v.Value}, nil
	case LinkDependency:
		return &LinkDependency{Offsets: slices.Clone(v.Offsets), Type: v.Type, Value: v.Value}, nil
	}
	record, err := asRecord("Bytecode", "linkDependencies", value)
	if err != nil {
		return nil, err
	}
	return LinkDependencyFromRecord(record)
}

// ToRecord renders the Bytecode into its untyped Record form.
func (b Bytecode) ToRecord() Record {
	rb := newRecordBuilder()
	rb.put("bytecode", b.Bytecode, pruneEmpty)

	var references []any
	for _, reference := range b.LinkReferences {
		references = append(references, reference.ToRecord())
	}
	rb.put("linkReferences", references, pruneEmpty)

	var dependencies []any
	for _, dependency := range b.LinkDependencies {
		dependencies = append(dependencies, dependency.ToRecord())
	}
	rb.put("linkDependencies", dependencies, pruneEmpty)
	return rb.record
}

// MarshalJSON encodes the Bytecode through its Record form.
func (b Bytecode) MarshalJSON() ([]byte, error) {
	return recordToJSON(b)
}

// UnmarshalJSON decodes the Bytecode through its Record form.
func (b *Bytecode) UnmarshalJSON(data []byte) error {
	record, err := recordFromJSON(data)
	if err != nil {
		return err
	}
	decoded, err := BytecodeFromRecord(record)
	if err != nil {
		return err
	}
	*b = *decoded
	return nil
}

// Clone returns a deep copy of the Bytecode. A nil receiver yields nil.
func (b *Bytecode) Clone() *Bytecode {
	if b == nil {
		return nil
	}
	clone := &Bytecode{Bytecode: b.Bytecode}
	for _, reference := range b.LinkReferences {
		reference.Offsets = slices.Clone(reference.Offsets)
		clone.LinkReferences = append(clone.LinkReferences, reference)
	}
	for _, dependency := range b.LinkDependencies {
		dependency.Offsets = slices.Clone(dependency.Offsets)
		clone.LinkDependencies = append(clone.LinkDependencies, dependency)
	}
	return clone
}

// Placeholders returns the unique library placeholder identifiers found in the bytecode, with their surrounding
// "__" and "$" delimiters removed, in order of first appearance.
func (b *Bytecode) Placeholders() []string {
	substrings := placeholderRegex.FindAllString(b.Bytecode, -1)

	placeholders := make([]string, 0)
	for _, substring := range substrings {
		// Strip all `_` and `$` from the substring
		placeholder := strings.ReplaceAll(strings.ReplaceAll(substring, "_", ""), "$", "")
		if !slices.Contains(placeholders, placeholder) {
			placeholders = append(placeholders, placeholder)
		}
	}
	return placeholders
}

// IsLinked indicates whether the bytecode is ready for deployment: it contains no placeholders and describes no
// unresolved link references or dependencies.
func (b *Bytecode) IsLinked() bool {
	return len(b.LinkReferences) == 0 && len(b.LinkDependencies) == 0 && len(b.Placeholders()) == 0
}

// Bytes decodes the hex-encoded bytecode. An error is returned if placeholders remain in it or it is otherwise not
// valid hex.
func (b *Bytecode) Bytes() ([]byte, error) {
	if placeholders := b.Placeholders(); len(placeholders) > 0 {
		return nil, errors.Errorf("bytecode contains %d unlinked library placeholder(s)", len(placeholders))
	}
	data, err := hex.DecodeString(strings.TrimPrefix(b.Bytecode, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "unable to decode bytecode")
	}
	return data, nil
}

// Metadata extracts the CBOR-encoded contract metadata appended to the bytecode by the compiler. Nil is returned if
// the bytecode cannot be decoded or carries no metadata.
func (b *Bytecode) Metadata() *ContractMetadata {
	data, err := b.Bytes()
	if err != nil {
		return nil
	}
	return ExtractContractMetadata(data)
}

// Link returns a copy of the Bytecode where every link reference whose Name is found in the provided address map is
// replaced by the library address, and every literal link dependency is written verbatim. Resolved references and
// dependencies are removed from the result, unresolved ones are kept.
func (b *Bytecode) Link(addresses map[string]common.Address) (*Bytecode, error) {
	hasPrefix := strings.HasPrefix(b.Bytecode, "0x")
	code := []byte(strings.TrimPrefix(b.Bytecode, "0x"))
	linked := &Bytecode{}

	for _, reference := range b.LinkReferences {
		address, ok := addresses[reference.Name]
		if reference.Name == "" || !ok {
			reference.Offsets = slices.Clone(reference.Offsets)
			linked.LinkReferences = append(linked.LinkReferences, reference)
			continue
		}

		// Addresses are left-padded or truncated to fit the placeholder region.
		value := common.LeftPadBytes(address.Bytes(), reference.Length)
		value = value[len(value)-reference.Length:]
		for _, offset := range reference.Offsets {
			if err := writeHexAt(code, offset, value); err != nil {
				return nil, errors.Wrapf(err, "could not link library '%s'", reference.Name)
			}
		}
	}

	for _, dependency := range b.LinkDependencies {
		if dependency.Type != LinkDependencyTypeLiteral {
			dependency.Offsets = slices.Clone(dependency.Offsets)
			linked.LinkDependencies = append(linked.LinkDependencies, dependency)
			continue
		}

		value, err := hex.DecodeString(strings.TrimPrefix(dependency.Value, "0x"))
		if err != nil {
			return nil, errors.Wrap(err, "could not decode literal link dependency value")
		}
		for _, offset := range dependency.Offsets {
			if err := writeHexAt(code, offset, value); err != nil {
				return nil, errors.Wrap(err, "could not link literal dependency")
			}
		}
	}

	linked.Bytecode = string(code)
	if hasPrefix {
		linked.Bytecode = "0x" + linked.Bytecode
	}
	return linked, nil
}

// writeHexAt overwrites the hex characters of code which describe the bytes at the given offset with value.
func writeHexAt(code []byte, offset int, value []byte) error {
	start := offset * 2
	end := start + len(value)*2
	if offset < 0 || end > len(code) {
		return errors.Errorf("offset %d with length %d exceeds bytecode size %d", offset, len(value), len(code)/2)
	}
	hex.Encode(code[start:end], value)
	return nil
}
