package manifest

import (
	"context"
	"sort"
	"strings"

	"github.com/crytic/ethpm/logging"
	"github.com/crytic/ethpm/logging/colors"
	"github.com/crytic/ethpm/manifest/types"
	"github.com/crytic/ethpm/utils"
	"github.com/pkg/errors"
)

// SourceErrors maps source identifiers to the error encountered while processing them.
type SourceErrors map[string]error

// Error returns the error message string, implementing the `error` interface. Entries are listed in source
// identifier order.
func (e SourceErrors) Error() string {
	ids := make([]string, 0, len(e))
	for id := range e {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	messages := make([]string, 0, len(ids))
	for _, id := range ids {
		messages = append(messages, id+": "+e[id].Error())
	}
	return strings.Join(messages, "; ")
}

// Unwrap returns the aggregated errors, so errors.Is and errors.As can match any of them.
func (e SourceErrors) Unwrap() []error {
	errs := make([]error, 0, len(e))
	for _, err := range e {
		errs = append(errs, err)
	}
	return errs
}

// LoadSources fetches the content of every source which has none (or every source, if force is set) and then
// computes its checksum with the given algorithm. Sources are processed in identifier order and a failing source
// does not stop the others; all failures are returned together as SourceErrors. Sources with neither URLs nor
// content are skipped. Cancelling ctx stops processing before the next source.
func (m *Manifest) LoadSources(ctx context.Context, fetch types.Fetcher, algorithm string, force bool) error {
	logger := logging.GlobalLogger.NewSubLogger("module", logging.MANIFEST_SERVICE)
	failures := make(SourceErrors)

	for _, id := range m.SourceIDs() {
		if utils.CheckContextDone(ctx) {
			return errors.WithStack(ctx.Err())
		}

		source := m.Sources[id]
		if len(source.URLs) == 0 && source.Content == "" {
			logger.Warn("Skipping source ", colors.Bold, id, colors.Reset, " which has no URLs or content")
			continue
		}

		fetched := (source.Content == "" || force) && len(source.URLs) > 0
		if fetched {
			logger.Debug("Fetching source ", colors.Bold, id, colors.Reset, " from ", source.URLs)
			if err := source.LoadContentWith(fetch); err != nil {
				logger.Error("Failed to fetch source ", colors.Bold, id, err)
				failures[id] = err
				continue
			}
		}

		if err := source.ComputeChecksum(algorithm, force); err != nil {
			logger.Error("Failed to compute checksum of source ", colors.Bold, id, err)
			failures[id] = err
			continue
		}
		logger.Info("Loaded source ", colors.Bold, id, colors.Reset, " (", source.Checksum.Algorithm, ": ", source.Checksum.Hash, ")")

		err := m.Events.SourceLoaded.Publish(SourceLoadedEvent{ID: id, Source: source, Fetched: fetched})
		if err != nil {
			failures[id] = err
		}
	}

	if len(failures) > 0 {
		return failures
	}
	return nil
}

// VerifySources recomputes the checksum of every source which has both content and a checksum, and returns the
// identifiers of those whose content no longer matches, in sorted order. Errors are aggregated as SourceErrors.
func (m *Manifest) VerifySources() ([]string, error) {
	mismatched := make([]string, 0)
	failures := make(SourceErrors)

	for _, id := range m.SourceIDs() {
		source := m.Sources[id]
		if source.Checksum == nil || source.Content == "" {
			continue
		}
		ok, err := source.VerifyChecksum()
		if err != nil {
			failures[id] = err
			continue
		}
		if !ok {
			mismatched = append(mismatched, id)
		}
	}

	if len(failures) > 0 {
		return mismatched, failures
	}
	return mismatched, nil
}
