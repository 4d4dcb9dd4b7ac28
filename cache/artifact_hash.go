package cache

import (
	"fmt"
	"time"

	"github.com/crytic/ethpm/logging"
	"github.com/crytic/ethpm/logging/colors"
	"github.com/crytic/ethpm/manifest"
)

// NotifyArtifactHashStatus compares the artifact hash of the manifest with the one stored in the cache, logs
// whether the artifacts are new or unchanged, and then stores the new hash. Manifests without contract types are
// ignored.
func NotifyArtifactHashStatus(m *manifest.Manifest, c *ArtifactCache, logger *logging.Logger) {
	if len(m.ContractTypes) == 0 {
		return
	}

	currentHash := m.ComputeArtifactHash()
	cachedHash, err := c.ArtifactHash()
	if err != nil {
		logger.Warn("Failed to read artifact hash from cache", err)
	}

	if cachedHash == nil || cachedHash.Hash != currentHash {
		logger.Info(
			colors.Bold, "artifacts: ", colors.Reset,
			"caching a ", colors.GreenBold, "new", colors.Reset, " set of build artifacts",
		)
	} else {
		logger.Warn(
			colors.Bold, "artifacts: ", colors.Reset,
			"build artifacts are the ", colors.YellowBold, "same", colors.Reset,
			" as previously cached (last update: ", formatDuration(time.Since(cachedHash.Timestamp)), " ago)",
		)
	}

	if err := c.SetArtifactHash(currentHash); err != nil {
		logger.Warn("Failed to save artifact hash to cache", err)
	}
}

// formatDuration formats a duration into a human-readable string, at the coarsest whole unit.
func formatDuration(d time.Duration) string {
	plural := func(n int, unit string) string {
		if n == 1 {
			return "1 " + unit
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}

	switch {
	case d < time.Minute:
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	default:
		return plural(int(d.Hours()/24), "day")
	}
}
