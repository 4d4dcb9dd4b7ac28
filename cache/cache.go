package cache

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/crytic/ethpm/manifest"
	"github.com/crytic/ethpm/manifest/types"
	"github.com/crytic/ethpm/utils"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

// DatabaseFileName is the name of the database file created within the cache directory.
const DatabaseFileName = "artifacts.db"

var (
	contractTypesBucket = []byte("contractTypes")
	sourcesBucket       = []byte("sources")
	metaBucket          = []byte("meta")

	artifactHashKey = []byte("artifactHash")
)

// ErrCacheMiss is returned when a requested entry is not present in the cache.
var ErrCacheMiss = errors.New("not found in cache")

// ArtifactCache provides an on-disk store of contract types and sources, keyed by contract name and source
// identifier respectively. It is safe for concurrent use; bbolt serializes write transactions.
type ArtifactCache struct {
	db *bbolt.DB
}

// ArtifactHash describes the artifact hash of the last manifest stored in the cache.
type ArtifactHash struct {
	// Hash is the SHA-256 hash computed by manifest.Manifest.ComputeArtifactHash.
	Hash string `json:"hash"`
	// Timestamp is when the hash was stored.
	Timestamp time.Time `json:"timestamp"`
}

// Open opens (or creates) the artifact cache database within the given directory. The directory is created if it
// does not exist. An error is returned if another process holds the database for more than a second.
func Open(directory string) (*ArtifactCache, error) {
	if err := utils.MakeDirectory(directory); err != nil {
		return nil, errors.Wrap(err, "failed to create cache directory")
	}

	db, err := bbolt.Open(filepath.Join(directory, DatabaseFileName), 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "could not open artifact cache")
	}

	// Create our buckets if they do not exist
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{contractTypesBucket, sourcesBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.WithStack(err)
	}
	return &ArtifactCache{db: db}, nil
}

// Close releases the database. The ArtifactCache must not be used afterwards.
func (c *ArtifactCache) Close() error {
	return errors.WithStack(c.db.Close())
}

// put JSON-encodes value and stores it under key in the given bucket.
func (c *ArtifactCache) put(bucket []byte, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	}))
}

// get decodes the value stored under key in the given bucket into value. ErrCacheMiss is returned if there is none.
func (c *ArtifactCache) get(bucket []byte, key string, value any) error {
	found := false
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucket).Get([]byte(key))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, value)
	})
	if err != nil {
		return errors.Wrapf(err, "could not read '%s' from cache", key)
	}
	if !found {
		return errors.WithStack(ErrCacheMiss)
	}
	return nil
}

// PutContractType stores a contract type under its name, replacing any previous entry.
func (c *ArtifactCache) PutContractType(contractType *types.ContractType) error {
	if contractType.ContractName == "" {
		return errors.New("cannot cache a contract type without a name")
	}
	return c.put(contractTypesBucket, contractType.ContractName, contractType)
}

// GetContractType obtains the contract type stored under the given name, or ErrCacheMiss.
func (c *ArtifactCache) GetContractType(name string) (*types.ContractType, error) {
	var contractType types.ContractType
	if err := c.get(contractTypesBucket, name, &contractType); err != nil {
		return nil, err
	}
	return &contractType, nil
}

// ContractTypeNames returns the names of all cached contract types, in sorted order.
func (c *ArtifactCache) ContractTypeNames() ([]string, error) {
	names := make([]string, 0)
	err := c.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(contractTypesBucket).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return names, nil
}

// PutSource stores a source under the given identifier, replacing any previous entry.
func (c *ArtifactCache) PutSource(id string, source *types.Source) error {
	return c.put(sourcesBucket, id, source)
}

// GetSource obtains the source stored under the given identifier, or ErrCacheMiss.
func (c *ArtifactCache) GetSource(id string) (*types.Source, error) {
	var source types.Source
	if err := c.get(sourcesBucket, id, &source); err != nil {
		return nil, err
	}
	return &source, nil
}

// PutManifest stores every contract type and source of the manifest in a single transaction.
func (c *ArtifactCache) PutManifest(m *manifest.Manifest) error {
	return errors.WithStack(c.db.Update(func(tx *bbolt.Tx) error {
		contractTypes := tx.Bucket(contractTypesBucket)
		for _, name := range m.ContractTypeNames() {
			data, err := json.Marshal(m.ContractTypes[name])
			if err != nil {
				return err
			}
			if err = contractTypes.Put([]byte(name), data); err != nil {
				return err
			}
		}

		sources := tx.Bucket(sourcesBucket)
		for _, id := range m.SourceIDs() {
			data, err := json.Marshal(m.Sources[id])
			if err != nil {
				return err
			}
			if err = sources.Put([]byte(id), data); err != nil {
				return err
			}
		}
		return nil
	}))
}

// ArtifactHash obtains the stored artifact hash, or nil if none was stored yet.
func (c *ArtifactCache) ArtifactHash() (*ArtifactHash, error) {
	var hash ArtifactHash
	err := c.get(metaBucket, string(artifactHashKey), &hash)
	if errors.Is(err, ErrCacheMiss) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &hash, nil
}

// SetArtifactHash stores the given artifact hash, stamped with the current time.
func (c *ArtifactCache) SetArtifactHash(hash string) error {
	return c.put(metaBucket, string(artifactHashKey), &ArtifactHash{Hash: hash, Timestamp: time.Now()})
}
