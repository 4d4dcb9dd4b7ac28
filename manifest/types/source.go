package types

import (
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/crytic/ethpm/manifest/checksum"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// DefaultChecksumAlgorithm describes the algorithm used by Source.ComputeChecksum when none is provided.
const DefaultChecksumAlgorithm = "md5"

var (
	// ErrContentNotLoaded is returned when a checksum is requested for a Source whose content was never loaded.
	ErrContentNotLoaded = errors.New("content not loaded yet, can't compute checksum")

	// ErrInvalidUTF8 is returned when fetched source content is not valid UTF-8 text.
	ErrInvalidUTF8 = errors.New("source content is not valid UTF-8")
)

// computeChecksum is the hashing primitive used by Source. It is a variable so tests can observe invocations.
var computeChecksum = checksum.Compute

// Fetcher describes a blocking retrieval of the raw bytes located at a URL.
type Fetcher func(url string) ([]byte, error)

// DefaultFetcher retrieves the URL with an HTTP GET on http.DefaultClient. Responses with a non-2xx status code are
// returned as errors. No timeout is applied beyond the client's own.
func DefaultFetcher(url string) ([]byte, error) {
	return HTTPFetcher(http.DefaultClient)(url)
}

// HTTPFetcher returns a Fetcher which issues HTTP GET requests with the provided client.
func HTTPFetcher(client *http.Client) Fetcher {
	return func(url string) ([]byte, error) {
		response, err := client.Get(url)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		defer response.Body.Close()

		if response.StatusCode < 200 || response.StatusCode > 299 {
			return nil, errors.Errorf("could not fetch '%s': unexpected status %s", url, response.Status)
		}

		body, err := io.ReadAll(response.Body)
		if err != nil {
			return nil, errors.Wrapf(err, "could not read response body from '%s'", url)
		}
		return body, nil
	}
}

// Source describes a source file referenced by a manifest, along with where it can be retrieved from and how its
// integrity can be verified.
type Source struct {
	// Checksum describes the digest of Content, if one was provided or computed.
	Checksum *Checksum

	// URLs describes where the source can be retrieved from, in priority order. Only the first entry is fetched.
	URLs []string

	// Content describes the source text. An empty value means it has not been loaded.
	Content string

	// InstallPath describes where the source should be written within a project.
	InstallPath string

	// Type describes the kind of source, e.g. "solidity".
	Type string

	// License describes the license identifier of the source.
	License string
}

// SourceFromRecord constructs a Source from its untyped Record form. The "urls" field is required, but may be empty.
func SourceFromRecord(record Record) (*Source, error) {
	r := newRecordReader("Source", record)
	urls, err := r.requiredStrings("urls")
	if err != nil {
		return nil, err
	}
	s := &Source{URLs: urls}

	if s.Checksum, err = checksumFromAny(r.nested("checksum")); err != nil {
		return nil, err
	}
	if s.Content, err = r.optionalString("content"); err != nil {
		return nil, err
	}
	if s.InstallPath, err = r.optionalString("installPath"); err != nil {
		return nil, err
	}
	if s.Type, err = r.optionalString("type"); err != nil {
		return nil, err
	}
	if s.License, err = r.optionalString("license"); err != nil {
		return nil, err
	}
	return s, nil
}

// ToRecord renders the Source into its untyped Record form. The "urls" list is always emitted as it is required.
func (s Source) ToRecord() Record {
	b := newRecordBuilder()
	if s.Checksum != nil {
		b.put("checksum", s.Checksum.ToRecord(), pruneEmpty)
	}
	urls := slices.Clone(s.URLs)
	if urls == nil {
		urls = []string{}
	}
	b.put("urls", urls, alwaysEmit)
	b.put("content", s.Content, pruneEmpty)
	b.put("installPath", s.InstallPath, pruneEmpty)
	b.put("type", s.Type, pruneEmpty)
	b.put("license", s.License, pruneEmpty)
	return b.record
}

// MarshalJSON encodes the Source through its Record form.
func (s Source) MarshalJSON() ([]byte, error) {
	return recordToJSON(s)
}

// UnmarshalJSON decodes the Source through its Record form.
func (s *Source) UnmarshalJSON(data []byte) error {
	record, err := recordFromJSON(data)
	if err != nil {
		return err
	}
	decoded, err := SourceFromRecord(record)
	if err != nil {
		return err
	}
	*s = *decoded
	return nil
}

// LoadContent fetches the primary URL with DefaultFetcher and stores the result in Content. See LoadContentWith.
func (s *Source) LoadContent() error {
	return s.LoadContentWith(DefaultFetcher)
}

// LoadContentWith fetches the first entry of URLs with the provided Fetcher and stores the UTF-8 decoded result in
// Content, overwriting any prior value. It is a no-op if URLs is empty. Fetch errors are returned unmodified and
// leave Content untouched. The remaining URLs are never consulted.
func (s *Source) LoadContentWith(fetch Fetcher) error {
	if len(s.URLs) == 0 {
		return nil
	}

	body, err := fetch(s.URLs[0])
	if err != nil {
		return err
	}
	if !utf8.Valid(body) {
		return errors.WithStack(ErrInvalidUTF8)
	}
	s.Content = string(body)
	return nil
}

// ComputeChecksum computes the checksum of Content with the given algorithm and stores it in Checksum. An empty
// algorithm selects DefaultChecksumAlgorithm.
//
// If a checksum already exists and force is false, this is a no-op, even if the existing checksum was computed
// with a different algorithm. Callers switching algorithms must pass force.
//
// ErrContentNotLoaded is returned if a computation is required but Content is empty.
func (s *Source) ComputeChecksum(algorithm string, force bool) error {
	if s.Checksum != nil && !force {
		return nil
	}
	if s.Content == "" {
		return errors.WithStack(ErrContentNotLoaded)
	}
	if algorithm == "" {
		algorithm = DefaultChecksumAlgorithm
	}

	hash, err := computeChecksum([]byte(s.Content), algorithm)
	if err != nil {
		return err
	}
	s.Checksum = &Checksum{Algorithm: algorithm, Hash: hash}
	return nil
}

// VerifyChecksum recomputes the digest of Content with the algorithm of the stored Checksum and reports whether it
// matches. ErrContentNotLoaded is returned if Content is empty, and an error if no checksum is stored.
func (s *Source) VerifyChecksum() (bool, error) {
	if s.Checksum == nil {
		return false, errors.New("source has no checksum to verify")
	}
	if s.Content == "" {
		return false, errors.WithStack(ErrContentNotLoaded)
	}
	hash, err := computeChecksum([]byte(s.Content), s.Checksum.Algorithm)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(hash, s.Checksum.Hash), nil
}
