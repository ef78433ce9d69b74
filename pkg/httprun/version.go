package httprun

import (
	"github.com/bft-labs/httprun/pkg/lifecycle"
	"github.com/bft-labs/httprun/pkg/log"
)

// Version information for the httprun module.
const (
	// Version is the current version of the httprun module.
	Version = "1.0.0"

	// MinCompatibleVersion is the minimum version that is compatible with this version.
	MinCompatibleVersion = "1.0.0"
)

// ModuleVersions returns the versions of httprun and its sub-modules.
func ModuleVersions() map[string]string {
	return map[string]string{
		"httprun":   Version,
		"lifecycle": lifecycle.Version,
		"log":       log.Version,
	}
}
