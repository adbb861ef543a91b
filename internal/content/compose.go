// internal/content/compose.go
package content

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// BuildWiFi emits the canonical WIFI: payload. An empty security type
// defaults to WPA; password and hidden are omitted when empty.
func BuildWiFi(security, ssid, password, hidden string) string {
	if security == "" {
		security = "WPA"
	}
	var b strings.Builder
	b.WriteString(wifiPrefix)
	b.WriteString("T:" + EscapeWiFi(security) + ";")
	b.WriteString("S:" + EscapeWiFi(ssid) + ";")
	if password != "" {
		b.WriteString("P:" + EscapeWiFi(password) + ";")
	}
	if hidden != "" {
		b.WriteString("H:" + EscapeWiFi(hidden) + ";")
	}
	b.WriteString(";")
	return b.String()
}

// BuildEmail emits mailto:address with optional percent-encoded subject and body.
func BuildEmail(address, subject, body string) string {
	var params []string
	if subject != "" {
		params = append(params, "subject="+percentEncode(subject))
	}
	if body != "" {
		params = append(params, "body="+percentEncode(body))
	}
	out := "mailto:" + address
	if len(params) > 0 {
		out += "?" + strings.Join(params, "&")
	}
	return out
}

// BuildPhone emits tel: followed by the number without separators.
func BuildPhone(number string) string {
	return "tel:" + stripPhone(trimPrefixFold(strings.TrimSpace(number), "tel:"))
}

// BuildSMS emits sms:number with an optional body.
func BuildSMS(number, message string) string {
	out := "sms:" + stripPhone(number)
	if message != "" {
		out += "?body=" + percentEncode(message)
	}
	return out
}

// BuildLocation emits geo:lat,lng with an optional query component.
func BuildLocation(lat, lng float64, query string) string {
	out := "geo:" + strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
	if query != "" {
		out += "?" + query
	}
	return out
}

// percentEncode escapes s for a URI query, using %20 rather than '+' for
// spaces since mail and SMS clients do not decode '+'.
func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

var vcardFieldOrder = []string{"fn", "n", "org", "title", "tel", "email", "url", "adr", "note"}

// BuildVCard emits a version 3.0 vCard with CRLF line endings. Known fields
// come first in conventional order, the rest sorted by key.
func BuildVCard(fields VCardFields) string {
	lines := []string{"BEGIN:VCARD", "VERSION:3.0"}
	add := func(key string) {
		if v := strings.TrimSpace(fields[key]); v != "" {
			lines = append(lines, strings.ToUpper(key)+":"+v)
		}
	}
	for _, key := range vcardFieldOrder {
		add(key)
	}
	var rest []string
	for key := range fields {
		switch {
		case slices.Contains(vcardFieldOrder, key), key == "begin", key == "end", key == "version":
			continue
		}
		rest = append(rest, key)
	}
	slices.Sort(rest)
	for _, key := range rest {
		add(key)
	}
	lines = append(lines, "END:VCARD")
	return strings.Join(lines, "\r\n")
}
