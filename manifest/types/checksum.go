package types

// Checksum describes a hash digest of some content along with the algorithm used to compute it.
type Checksum struct {
	// Algorithm describes the hash algorithm identifier, e.g. "md5".
	Algorithm string

	// Hash describes the hex-encoded digest.
	Hash string
}

// ChecksumFromRecord constructs a Checksum from its untyped Record form.
func ChecksumFromRecord(record Record) (*Checksum, error) {
	r := newRecordReader("Checksum", record)
	algorithm, err := r.requiredString("algorithm")
	if err != nil {
		return nil, err
	}
	hash, err := r.requiredString("hash")
	if err != nil {
		return nil, err
	}
	return &Checksum{Algorithm: algorithm, Hash: hash}, nil
}

// checksumFromAny converts a nested field value which is either a Record or an already-typed Checksum.
func checksumFromAny(value any) (*Checksum, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case *Checksum:
		c := *v
		return &c, nil
	case Checksum:
		return &v, nil
	}
	record, err := asRecord("Source", "checksum", value)
	if err != nil {
		return nil, err
	}
	return ChecksumFromRecord(record)
}

// ToRecord renders the Checksum into its untyped Record form.
func (c Checksum) ToRecord() Record {
	b := newRecordBuilder()
	b.put("algorithm", c.Algorithm, alwaysEmit)
	b.put("hash", c.Hash, alwaysEmit)
	return b.record
}

// MarshalJSON encodes the Checksum through its Record form.
func (c Checksum) MarshalJSON() ([]byte, error) {
	return recordToJSON(c)
}

// UnmarshalJSON decodes the Checksum through its Record form.
func (c *Checksum) UnmarshalJSON(data []byte) error {
	record, err := recordFromJSON(data)
	if err != nil {
		return err
	}
	decoded, err := ChecksumFromRecord(record)
	if err != nil {
		return err
	}
	*c = *decoded
	return nil
}
