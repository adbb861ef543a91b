// internal/content/wifi.go
package content

import "strings"

const wifiPrefix = "WIFI:"

var wifiEscaper = strings.NewReplacer(`\`, `\\`, `;`, `\;`, `,`, `\,`, `"`, `\"`)

// EscapeWiFi prefixes the characters with special meaning in a WIFI: payload
// (backslash, semicolon, comma, double quote) with a backslash.
func EscapeWiFi(s string) string {
	return wifiEscaper.Replace(s)
}

// UnescapeWiFi reverses EscapeWiFi.
func UnescapeWiFi(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// wifiTokens splits the body of a WIFI: payload into key/value pairs on
// unescaped semicolons. Values stay escaped. Reports false if text is not a
// WIFI: payload.
func wifiTokens(text string) (map[string]string, bool) {
	if !strings.HasPrefix(text, wifiPrefix) {
		return nil, false
	}
	body := text[len(wifiPrefix):]

	fields := make(map[string]string)
	var segment strings.Builder
	flush := func() {
		s := segment.String()
		segment.Reset()
		if s == "" {
			return
		}
		key, value, ok := strings.Cut(s, ":")
		if !ok {
			return
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		if _, seen := fields[key]; !seen {
			fields[key] = value
		}
	}

	escaped := false
	for _, r := range body {
		switch {
		case escaped:
			segment.WriteRune(r)
			escaped = false
		case r == '\\':
			segment.WriteRune(r)
			escaped = true
		case r == ';':
			flush()
		default:
			segment.WriteRune(r)
		}
	}
	flush()
	return fields, true
}

func parseWiFi(text string) (WiFiFields, bool) {
	tokens, ok := wifiTokens(text)
	if !ok {
		return WiFiFields{}, false
	}
	ssid, hasSSID := tokens["S"]
	if !hasSSID {
		return WiFiFields{}, false
	}
	fields := WiFiFields{
		Security: UnescapeWiFi(tokens["T"]),
		SSID:     UnescapeWiFi(ssid),
		Password: UnescapeWiFi(tokens["P"]),
		Hidden:   strings.EqualFold(tokens["H"], "true"),
	}
	if fields.Security == "" {
		fields.Security = "WPA"
	}
	return fields, true
}
