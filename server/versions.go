// Package server implements the JSON-RPC dispatch shell: API version
// gatekeeping, the response envelope with warnings, and the mapping of engine
// errors to wire error codes.
package server

// APIVersion is a version of the aggregation JSON-RPC API. Version numbers
// are independent of the software version so either can introduce breaking
// changes without forcing the other to.
type APIVersion string

// APIVersionV0_0 is the only version currently served.
const APIVersionV0_0 APIVersion = "0.0"

// VersionsInfo lists the versions the server accepts and the subset it still
// accepts but warns about.
type VersionsInfo struct {
	VersionsSupported  []APIVersion `json:"versions_supported"`
	VersionsDeprecated []APIVersion `json:"versions_deprecated"`
}

var (
	supportedVersions = []APIVersion{APIVersionV0_0}
	// Deprecated versions still served. Empty today; the warning path is
	// exercised by tests with an injected set.
	deprecatedVersions = []APIVersion{}
)

// SupportedVersions returns the static version sets.
func SupportedVersions() VersionsInfo {
	return VersionsInfo{
		VersionsSupported:  supportedVersions,
		VersionsDeprecated: deprecatedVersions,
	}
}

// checkAPIVersion validates the declared version against the supported and
// deprecated sets. An unknown version is a fatal VersionError carrying both
// lists; a deprecated version is accepted with a warning attached.
func checkAPIVersion(version string) ([]Warning, error) {
	return checkAPIVersionAgainst(version, supportedVersions, deprecatedVersions)
}

func checkAPIVersionAgainst(version string, supported, deprecated []APIVersion) ([]Warning, error) {
	v := APIVersion(version)
	found := false
	for _, s := range supported {
		if v == s {
			found = true
			break
		}
	}
	if !found {
		return nil, &VersionError{
			Version: version,
			Versions: VersionsInfo{
				VersionsSupported:  supported,
				VersionsDeprecated: deprecated,
			},
		}
	}
	for _, d := range deprecated {
		if v == d {
			return []Warning{{
				Code:    WarnCodeDeprecatedVersion,
				Message: "API version " + version + " is deprecated and will be removed in a future release",
			}}, nil
		}
	}
	return nil, nil
}
