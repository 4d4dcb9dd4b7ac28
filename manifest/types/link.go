package types

import "golang.org/x/exp/slices"

// LinkDependency describes a value which must be written into bytecode at the given offsets before it can be
// deployed, e.g. the target of a proxy forwarder.
type LinkDependency struct {
	// Offsets describes the byte offsets within the bytecode at which Value must be written.
	Offsets []int

	// Type describes how Value should be interpreted (e.g. "literal" or "reference").
	Type string

	// Value describes the value to link, whose meaning depends on Type.
	Value string
}

// LinkDependencyTypeLiteral describes a LinkDependency whose Value is hex data to be written verbatim.
const LinkDependencyTypeLiteral = "literal"

// LinkReference describes a placeholder region within bytecode which must be patched with a library address before
// deployment.
type LinkReference struct {
	// Offsets describes the byte offsets within the bytecode at which the placeholder occurs.
	Offsets []int

	// Length describes the length of the placeholder region, in bytes.
	Length int

	// Name optionally describes the name of the library which should be linked here.
	Name string
}

// LinkDependencyFromRecord constructs a LinkDependency from its untyped Record form.
func LinkDependencyFromRecord(record Record) (*LinkDependency, error) {
	r := newRecordReader("LinkDependency", record)
	offsets, err := r.requiredOffsets("offsets")
	if err != nil {
		return nil, err
	}
	dependencyType, err := r.requiredString("type")
	if err != nil {
		return nil, err
	}
	value, err := r.requiredString("value")
	if err != nil {
		return nil, err
	}
	return &LinkDependency{Offsets: offsets, Type: dependencyType, Value: value}, nil
}

// ToRecord renders the LinkDependency into its untyped Record form.
func (l LinkDependency) ToRecord() Record {
	b := newRecordBuilder()
	b.put("offsets", cloneOffsets(l.Offsets), alwaysEmit)
	b.put("type", l.Type, alwaysEmit)
	b.put("value", l.Value, alwaysEmit)
	return b.record
}

// MarshalJSON encodes the LinkDependency through its Record form.
func (l LinkDependency) MarshalJSON() ([]byte, error) {
	return recordToJSON(l)
}

// UnmarshalJSON decodes the LinkDependency through its Record form.
func (l *LinkDependency) UnmarshalJSON(data []byte) error {
	record, err := recordFromJSON(data)
	if err != nil {
		return err
	}
	decoded, err := LinkDependencyFromRecord(record)
	if err != nil {
		return err
	}
	*l = *decoded
	return nil
}

// LinkReferenceFromRecord constructs a LinkReference from its untyped Record form.
func LinkReferenceFromRecord(record Record) (*LinkReference, error) {
	r := newRecordReader("LinkReference", record)
	offsets, err := r.requiredOffsets("offsets")
	if err != nil {
		return nil, err
	}
	length, err := r.requiredInt("length")
	if err != nil {
		return nil, err
	}
	if length <= 0 {
		return nil, newValidationError("LinkReference", "length", "must be positive, got %d", length)
	}
	name, err := r.optionalString("name")
	if err != nil {
		return nil, err
	}
	return &LinkReference{Offsets: offsets, Length: length, Name: name}, nil
}

// ToRecord renders the LinkReference into its untyped Record form.
func (l LinkReference) ToRecord() Record {
	b := newRecordBuilder()
	b.put("offsets", cloneOffsets(l.Offsets), alwaysEmit)
	b.put("length", l.Length, alwaysEmit)
	b.put("name", l.Name, pruneEmpty)
	return b.record
}

// MarshalJSON encodes the LinkReference through its Record form.
func (l LinkReference) MarshalJSON() ([]byte, error) {
	return recordToJSON(l)
}

// UnmarshalJSON decodes the LinkReference through its Record form.
func (l *LinkReference) UnmarshalJSON(data []byte) error {
	record, err := recordFromJSON(data)
	if err != nil {
		return err
	}
	decoded, err := LinkReferenceFromRecord(record)
	if err != nil {
		return err
	}
	*l = *decoded
	return nil
}

// cloneOffsets copies a list of offsets, never returning nil so required lists always render.
func cloneOffsets(offsets []int) []int {
	if offsets == nil {
		return []int{}
	}
	return slices.Clone(offsets)
}
