package manifest

import (
	"github.com/crytic/ethpm/events"
	"github.com/crytic/ethpm/manifest/types"
)

// SourceEvents describes the event emitters used while processing the sources of a Manifest.
type SourceEvents struct {
	// SourceLoaded emits events when a source's content was loaded and its checksum computed by LoadSources.
	SourceLoaded events.EventEmitter[SourceLoadedEvent]
}

// SourceLoadedEvent describes an event where a source was loaded and checksummed.
type SourceLoadedEvent struct {
	// ID describes the identifier of the source within the manifest.
	ID string

	// Source describes the loaded source.
	Source *types.Source

	// Fetched indicates whether the content was fetched, rather than already present.
	Fetched bool
}
