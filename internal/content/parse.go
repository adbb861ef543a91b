// internal/content/parse.go
package content

import (
	"net/url"
	"strconv"
	"strings"
)

// Parse extracts structured fields for the given type. It never fails: a
// payload that does not fit its type yields an unstructured result holding
// the original text.
func Parse(text string, contentType ContentType) Parsed {
	t := strings.TrimSpace(text)

	switch contentType {
	case TypeWiFi:
		if f, ok := parseWiFi(t); ok {
			return structured(f, f.SSID)
		}
	case TypeEmail:
		if f, ok := parseEmail(t); ok {
			return structured(f, f.Email)
		}
	case TypePhone:
		f := PhoneFields{Phone: stripPhone(trimPrefixFold(t, "tel:"))}
		if f.Phone != "" {
			return structured(f, f.Phone)
		}
	case TypeURL:
		if f, ok := parseURL(t); ok {
			return structured(f, f.Hostname)
		}
	case TypeVCard:
		if f, ok := parseVCard(t); ok {
			return structured(f, vcardDisplayName(f))
		}
	case TypeSMS:
		if f, ok := parseSMS(t); ok {
			return structured(f, f.Phone)
		}
	case TypeLocation:
		f := parseLocation(t)
		return structured(f, strconv.FormatFloat(f.Latitude, 'f', -1, 64)+","+strconv.FormatFloat(f.Longitude, 'f', -1, 64))
	case TypeText:
		return structured(TextFields{Text: text}, displayText(t))
	}

	// Events are detected but not decomposed; everything else landing here
	// was malformed for its type.
	return Parsed{
		Type:        contentType,
		Fields:      TextFields{Text: text},
		DisplayName: displayText(t),
		Structured:  false,
	}
}

func structured(f Fields, displayName string) Parsed {
	return Parsed{
		Type:        f.ContentType(),
		Fields:      f,
		DisplayName: displayName,
		Structured:  true,
	}
}

func parseEmail(t string) (EmailFields, bool) {
	if !hasPrefixFold(t, "mailto:") {
		if emailPattern.MatchString(t) {
			return EmailFields{Email: t}, true
		}
		return EmailFields{}, false
	}
	u, err := url.Parse(t)
	if err != nil {
		return EmailFields{}, false
	}
	address := u.Opaque
	if address == "" {
		address = u.Path
	}
	if decoded, err := url.PathUnescape(address); err == nil {
		address = decoded
	}
	if address == "" {
		return EmailFields{}, false
	}
	q := u.Query()
	return EmailFields{
		Email:   address,
		Subject: q.Get("subject"),
		Body:    q.Get("body"),
	}, true
}

func parseURL(t string) (URLFields, bool) {
	u, err := url.Parse(t)
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return URLFields{}, false
	}
	return URLFields{
		URL:      t,
		Hostname: u.Hostname(),
		Protocol: strings.ToLower(u.Scheme),
	}, true
}

func parseVCard(t string) (VCardFields, bool) {
	fields := make(VCardFields)
	for _, line := range splitLines(t) {
		key, value, ok := strings.Cut(line, ":")
		if !ok || key == "" {
			continue
		}
		fields[strings.ToLower(key)] = value
	}
	if len(fields) == 0 {
		return nil, false
	}
	return fields, true
}

func vcardDisplayName(f VCardFields) string {
	if fn := f["fn"]; fn != "" {
		return fn
	}
	if n := f["n"]; n != "" {
		parts := strings.Split(n, ";")
		if len(parts) > 1 {
			return strings.TrimSpace(parts[1] + " " + parts[0])
		}
		return n
	}
	return "Contact"
}

func parseSMS(t string) (SMSFields, bool) {
	rest := trimPrefixFold(t, "sms:")
	number, query, _ := strings.Cut(rest, "?")
	number = stripPhone(number)
	if number == "" {
		return SMSFields{}, false
	}
	f := SMSFields{Phone: number}
	if body, ok := strings.CutPrefix(query, "body="); ok {
		if decoded, err := url.QueryUnescape(body); err == nil {
			body = decoded
		}
		f.Message = body
	}
	return f, true
}

// parseLocation accepts geo:lat,lng[?query] or a bare lat,lng pair. Halves
// that do not parse default to 0.
func parseLocation(t string) LocationFields {
	rest := trimPrefixFold(t, "geo:")
	rest, _, _ = strings.Cut(rest, "?")
	latStr, lngStr, _ := strings.Cut(rest, ",")
	lng, _, _ := strings.Cut(lngStr, ",")
	return LocationFields{
		Latitude:  parseFloatOrZero(latStr),
		Longitude: parseFloatOrZero(lng),
	}
}

func parseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func splitLines(t string) []string {
	raw := strings.Split(strings.ReplaceAll(t, "\r\n", "\n"), "\n")
	lines := raw[:0]
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func displayText(t string) string {
	const max = 50
	r := []rune(t)
	if len(r) <= max {
		return t
	}
	return string(r[:max]) + "..."
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func trimPrefixFold(s, prefix string) string {
	if hasPrefixFold(s, prefix) {
		return s[len(prefix):]
	}
	return s
}
