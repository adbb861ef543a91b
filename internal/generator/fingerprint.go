// internal/generator/fingerprint.go
package generator

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Fingerprint derives the cache key for text rendered with cfg. Every field
// that changes the rendered output takes part; json.Marshal sorts map keys so
// the serialization is stable.
func Fingerprint(text string, cfg Config) string {
	fields := map[string]any{
		"text":                 text,
		"size":                 cfg.Size,
		"margin":               cfg.Margin,
		"errorCorrectionLevel": cfg.ErrorCorrectionLevel,
		"format":               cfg.Format,
		"foreground":           strings.ToUpper(cfg.Foreground),
		"background":           strings.ToUpper(cfg.Background),
	}
	if cfg.LogoURL != "" {
		fields["logoUrl"] = cfg.LogoURL
		fields["logoSize"] = cfg.LogoSize
		fields["logoBackground"] = strings.ToUpper(cfg.LogoBackground)
	}

	// Marshalling a map of strings and ints cannot fail.
	raw, _ := json.Marshal(fields)
	sum := sha256.Sum256(raw)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
