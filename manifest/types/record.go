package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Record describes an untyped, JSON-compatible mapping used as the interchange form of every manifest type.
type Record = map[string]any

// Serializable describes a manifest type which can be rendered into its untyped Record form.
type Serializable interface {
	// ToRecord renders the value into a plain nested mapping suitable for JSON encoding. Unset fields are pruned
	// unless the type marks them to always be emitted.
	ToRecord() Record
}

// fieldPolicy describes how a single field is treated when a Record is rendered.
type fieldPolicy int

const (
	// pruneEmpty omits the field when its value is unset or empty.
	pruneEmpty fieldPolicy = iota
	// alwaysEmit keeps the field whenever a value was provided, even an empty one.
	alwaysEmit
)

// ValidationError describes a failure to construct a manifest type from its untyped Record form.
type ValidationError struct {
	// Type is the name of the type that was being constructed.
	Type string
	// Field is the wire name of the offending field.
	Field string
	// Reason describes what was wrong with the field.
	Reason string
}

// Error returns the error message string, implementing the `error` interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: field '%s' %s", e.Type, e.Field, e.Reason)
}

// newValidationError creates a ValidationError carrying a stack trace.
func newValidationError(typeName string, field string, reason string, args ...any) error {
	return errors.WithStack(&ValidationError{
		Type:   typeName,
		Field:  field,
		Reason: fmt.Sprintf(reason, args...),
	})
}

// recordBuilder accumulates fields of a Record, applying a fieldPolicy to each one.
type recordBuilder struct {
	record Record
}

func newRecordBuilder() *recordBuilder {
	return &recordBuilder{record: make(Record)}
}

// put adds the value under the given key unless the policy says it should be pruned.
func (b *recordBuilder) put(key string, value any, policy fieldPolicy) {
	if policy == pruneEmpty && isEmptyValue(value) {
		return
	}
	b.record[key] = value
}

// isEmptyValue reports whether a rendered value counts as unset for pruning purposes.
func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []int:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case Record:
		return len(v) == 0
	}
	return false
}

// recordReader provides typed access to the fields of an input Record for a single type. It never mutates the
// underlying Record.
type recordReader struct {
	typeName string
	record   Record
}

func newRecordReader(typeName string, record Record) *recordReader {
	return &recordReader{typeName: typeName, record: record}
}

// has reports whether the field is present with a non-nil value.
func (r *recordReader) has(field string) bool {
	v, ok := r.record[field]
	return ok && v != nil
}

func (r *recordReader) missing(field string) error {
	return newValidationError(r.typeName, field, "is required")
}

// requiredString obtains a string field which must be present.
func (r *recordReader) requiredString(field string) (string, error) {
	if !r.has(field) {
		return "", r.missing(field)
	}
	return r.optionalString(field)
}

// optionalString obtains a string field, returning the empty string if it is absent.
func (r *recordReader) optionalString(field string) (string, error) {
	if !r.has(field) {
		return "", nil
	}
	s, ok := r.record[field].(string)
	if !ok {
		return "", newValidationError(r.typeName, field, "must be a string, got %T", r.record[field])
	}
	return s, nil
}

// documentString obtains a field which is a string on the wire but may be provided as any JSON value (as compilers
// emit ABI arrays). Non-string values are re-encoded as compact JSON. The boolean result reports presence.
func (r *recordReader) documentString(field string) (string, bool, error) {
	if !r.has(field) {
		return "", false, nil
	}
	if s, ok := r.record[field].(string); ok {
		return s, true, nil
	}
	b, err := json.Marshal(r.record[field])
	if err != nil {
		return "", false, newValidationError(r.typeName, field, "could not be encoded as JSON: %v", err)
	}
	return string(b), true, nil
}

// requiredInt obtains an integer field which must be present.
func (r *recordReader) requiredInt(field string) (int, error) {
	if !r.has(field) {
		return 0, r.missing(field)
	}
	n, ok := toInt(r.record[field])
	if !ok {
		return 0, newValidationError(r.typeName, field, "must be an integer, got %v", r.record[field])
	}
	return n, nil
}

// requiredOffsets obtains a list of non-negative integers which must be present.
func (r *recordReader) requiredOffsets(field string) ([]int, error) {
	if !r.has(field) {
		return nil, r.missing(field)
	}
	items, ok := toSlice(r.record[field])
	if !ok {
		return nil, newValidationError(r.typeName, field, "must be a list of integers, got %T", r.record[field])
	}
	offsets := make([]int, 0, len(items))
	for i, item := range items {
		n, ok := toInt(item)
		if !ok {
			return nil, newValidationError(r.typeName, field, "element %d must be an integer, got %v", i, item)
		}
		if n < 0 {
			return nil, newValidationError(r.typeName, field, "element %d must be non-negative, got %d", i, n)
		}
		offsets = append(offsets, n)
	}
	return offsets, nil
}

// optionalStrings obtains a list of strings, returning nil if it is absent.
func (r *recordReader) optionalStrings(field string) ([]string, error) {
	if !r.has(field) {
		return nil, nil
	}
	items, ok := toSlice(r.record[field])
	if !ok {
		return nil, newValidationError(r.typeName, field, "must be a list of strings, got %T", r.record[field])
	}
	values := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, newValidationError(r.typeName, field, "element %d must be a string, got %T", i, item)
		}
		values = append(values, s)
	}
	return values, nil
}

// requiredStrings obtains a list of strings which must be present, although it may be empty.
func (r *recordReader) requiredStrings(field string) ([]string, error) {
	if !r.has(field) {
		return nil, r.missing(field)
	}
	values, err := r.optionalStrings(field)
	if err != nil {
		return nil, err
	}
	return values, nil
}

// records obtains a list field whose elements are nested Records (or already-typed values), returning nil if it is
// absent.
func (r *recordReader) records(field string) ([]any, error) {
	if !r.has(field) {
		return nil, nil
	}
	items, ok := toSlice(r.record[field])
	if !ok {
		return nil, newValidationError(r.typeName, field, "must be a list, got %T", r.record[field])
	}
	return items, nil
}

// nested obtains a nested object field, returning nil if it is absent.
func (r *recordReader) nested(field string) any {
	if !r.has(field) {
		return nil
	}
	return r.record[field]
}

// asRecord converts a nested value into a Record, or returns an error describing the field.
func asRecord(typeName string, field string, value any) (Record, error) {
	if rec, ok := value.(Record); ok {
		return rec, nil
	}
	return nil, newValidationError(typeName, field, "must be an object, got %T", value)
}

// toSlice converts a list-like value into a []any.
func toSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []int:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return items, true
	case []string:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return items, true
	case []Record:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return items, true
	}
	return nil, false
}

// toInt converts a numeric value into an int, rejecting non-integral and out of range values.
func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		if v > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt || v < math.MinInt {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

// recordToJSON marshals a Serializable value through its Record form.
func recordToJSON(s Serializable) ([]byte, error) {
	return json.Marshal(s.ToRecord())
}

// recordFromJSON unmarshals JSON data into a Record. Numbers are kept as json.Number so large offsets survive.
func recordFromJSON(data []byte) (Record, error) {
	var record Record
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&record); err != nil {
		return nil, errors.WithStack(err)
	}
	return record, nil
}
