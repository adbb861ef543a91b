// internal/content/validate.go
package content

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const maxTextWarningLength = 2000

var (
	looseNumberPattern = regexp.MustCompile(`^\+?[\d\s\-()]+$`)
	controlCharPattern = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
)

var wifiSecurityTypes = map[string]bool{"WPA": true, "WEP": true, "nopass": true, "": true}

// ValidateAndOptimize checks raw against the rules of its content type and,
// when valid, returns the canonical encoding. hint overrides detection when
// it names a known type.
func ValidateAndOptimize(raw, hint string) Report {
	contentType, ok := ParseContentType(hint)
	if !ok {
		contentType = Detect(raw)
	}
	text := strings.TrimSpace(raw)

	v := &validation{report: Report{Type: contentType, Errors: []string{}, Warnings: []string{}}}
	switch contentType {
	case TypeWiFi:
		v.wifi(text)
	case TypeEmail:
		v.email(text)
	case TypePhone:
		v.phone(text)
	case TypeURL:
		v.url(text)
	case TypeVCard:
		v.block(text, "VCARD", []string{"VERSION:", "FN:"})
	case TypeEvent:
		v.block(text, "VEVENT", []string{"SUMMARY:", "DTSTART:"})
	case TypeLocation:
		v.location(text)
	case TypeSMS:
		v.sms(text)
	default:
		v.text(raw)
	}

	v.report.IsValid = len(v.report.Errors) == 0
	if !v.report.IsValid {
		v.report.OptimizedFormat = ""
	}
	return v.report
}

type validation struct {
	report Report
}

func (v *validation) errorf(format string, args ...any) {
	v.report.Errors = append(v.report.Errors, fmt.Sprintf(format, args...))
}

func (v *validation) warnf(format string, args ...any) {
	v.report.Warnings = append(v.report.Warnings, fmt.Sprintf(format, args...))
}

func (v *validation) wifi(text string) {
	tokens, ok := wifiTokens(text)
	if !ok {
		v.errorf("WiFi payload must start with %s", wifiPrefix)
		return
	}
	ssid := UnescapeWiFi(tokens["S"])
	if ssid == "" {
		v.errorf("WiFi network name (SSID) is required")
		return
	}
	security := UnescapeWiFi(tokens["T"])
	if !wifiSecurityTypes[security] {
		v.warnf("Unusual WiFi security type %q; expected WPA, WEP or nopass", security)
	}
	password := UnescapeWiFi(tokens["P"])
	hidden := tokens["H"]

	v.report.OptimizedFormat = BuildWiFi(security, ssid, password, hidden)
}

func (v *validation) email(text string) {
	if !hasPrefixFold(text, "mailto:") {
		v.errorf("Email payload must use the mailto: format")
		return
	}
	f, ok := parseEmail(text)
	if !ok || !isEmailAddress(f.Email) {
		v.errorf("Email address is not valid")
		return
	}
	v.report.OptimizedFormat = BuildEmail(f.Email, f.Subject, f.Body)
}

func isEmailAddress(addr string) bool {
	if strings.Count(addr, "@") != 1 {
		return false
	}
	local, domain, _ := strings.Cut(addr, "@")
	return local != "" && strings.Contains(domain, ".") &&
		!strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

func (v *validation) phone(text string) {
	if !hasPrefixFold(text, "tel:") {
		v.errorf("Phone payload must start with tel:")
		return
	}
	number := strings.TrimSpace(text[len("tel:"):])
	if !looseNumberPattern.MatchString(number) {
		v.errorf("Phone number contains invalid characters")
		return
	}
	if countDigits(number) < 7 {
		v.errorf("Phone number must contain at least 7 digits")
		return
	}
	v.report.OptimizedFormat = BuildPhone(number)
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func (v *validation) url(text string) {
	u, err := url.Parse(text)
	if err != nil || u.Scheme == "" || u.Host == "" {
		v.errorf("URL is not valid")
		return
	}
	if !strings.EqualFold(u.Scheme, "https") {
		v.warnf("URL does not use HTTPS")
	}
	v.report.OptimizedFormat = u.String()
}

// block validates BEGIN/END wrapped payloads (vCard, vEvent).
func (v *validation) block(text, name string, recommended []string) {
	hasBegin := strings.Contains(text, "BEGIN:"+name)
	hasEnd := strings.Contains(text, "END:"+name)
	if !hasBegin {
		v.errorf("Missing BEGIN:%s", name)
	}
	if !hasEnd {
		v.errorf("Missing END:%s", name)
	}
	if !hasBegin || !hasEnd {
		return
	}
	for _, field := range recommended {
		if !strings.Contains(text, "\n"+field) && !strings.HasPrefix(text, field) {
			v.warnf("Missing recommended field %s", strings.TrimSuffix(field, ":"))
		}
	}
	v.report.OptimizedFormat = strings.Join(splitLines(text), "\r\n")
}

func (v *validation) location(text string) {
	if !hasPrefixFold(text, "geo:") {
		v.errorf("Location payload must start with geo:")
		return
	}
	coords, query, hasQuery := strings.Cut(text[len("geo:"):], "?")
	latStr, lngStr, ok := strings.Cut(coords, ",")
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(firstField(lngStr)), 64)
	if !ok || latErr != nil || lngErr != nil {
		v.errorf("Location must contain latitude and longitude")
		return
	}
	if lat < -90 || lat > 90 {
		v.errorf("Latitude must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		v.errorf("Longitude must be between -180 and 180")
	}
	if !hasQuery {
		v.warnf("Location has no query component; some scanners show no label")
	}
	v.report.OptimizedFormat = BuildLocation(lat, lng, query)
}

func firstField(s string) string {
	f, _, _ := strings.Cut(s, ",")
	return f
}

func (v *validation) sms(text string) {
	if !hasPrefixFold(text, "sms:") {
		v.errorf("SMS payload must start with sms:")
		return
	}
	f, ok := parseSMS(text)
	if !ok {
		v.errorf("SMS payload must contain a phone number")
		return
	}
	v.report.OptimizedFormat = BuildSMS(f.Phone, f.Message)
}

func (v *validation) text(raw string) {
	if utf8.RuneCountInString(raw) > maxTextWarningLength {
		v.warnf("Text is longer than %d characters; the QR code may be hard to scan", maxTextWarningLength)
	}
	if controlCharPattern.MatchString(raw) {
		v.warnf("Text contains control characters")
	}
	v.report.OptimizedFormat = raw
}
