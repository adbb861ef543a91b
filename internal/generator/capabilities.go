// internal/generator/capabilities.go
package generator

import (
	"math"
	"strings"
)

const maxDevicePixelRatio = 4

// privacyBrowserMarkers are lower-case user-agent substrings of browsers that
// block or randomize canvas reads.
var privacyBrowserMarkers = []string{
	"brave",
	"duckduckgo",
	"torbrowser",
	"tor browser",
	"librewolf",
	"mullvad",
	"ungoogled",
	"bromite",
	"focus/",
	"klar/",
}

// Capabilities describes what the requesting client can do. The orchestrator
// picks a rendering method from it and never inspects the client itself.
type Capabilities struct {
	Canvas           bool    `json:"canvas"`
	PrivacyBrowser   bool    `json:"privacyBrowser"`
	DevicePixelRatio float64 `json:"devicePixelRatio"`
	UserAgent        string  `json:"userAgent,omitempty"`
}

// DetectCapabilities builds a descriptor from a user agent and the reported
// device pixel ratio.
func DetectCapabilities(userAgent string, devicePixelRatio float64) Capabilities {
	privacy := IsPrivacyBrowser(userAgent)
	return Capabilities{
		Canvas:           !privacy,
		PrivacyBrowser:   privacy,
		DevicePixelRatio: ClampPixelRatio(devicePixelRatio),
		UserAgent:        userAgent,
	}
}

// IsPrivacyBrowser matches userAgent against the known privacy browsers.
func IsPrivacyBrowser(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, marker := range privacyBrowserMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}

// ClampPixelRatio bounds a device pixel ratio to [1, 4]; unknown ratios are 1.
func ClampPixelRatio(ratio float64) float64 {
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return 1
	}
	return math.Min(math.Max(ratio, 1), maxDevicePixelRatio)
}
