// internal/content/detect.go
package content

import (
	"regexp"
	"strings"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern    = regexp.MustCompile(`^\+?\d{7,15}$`)
	urlPattern      = regexp.MustCompile(`(?i)^(https?|ftps?)://\S+$`)
	latLngPattern   = regexp.MustCompile(`^-?\d{1,3}(\.\d+)?\s*,\s*-?\d{1,3}(\.\d+)?$`)
	phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "\t", "")
)

// Detect classifies text. The first matching rule wins; order matters because
// payloads overlap (a vCard usually contains an email address).
func Detect(text string) ContentType {
	t := strings.TrimSpace(text)
	if t == "" {
		return TypeText
	}
	lower := strings.ToLower(t)

	switch {
	case strings.HasPrefix(t, "WIFI:"):
		return TypeWiFi
	case strings.Contains(t, "BEGIN:VCARD"):
		return TypeVCard
	case strings.Contains(t, "BEGIN:VEVENT"):
		return TypeEvent
	case strings.HasPrefix(lower, "sms:"):
		return TypeSMS
	case strings.HasPrefix(lower, "mailto:") || emailPattern.MatchString(t):
		return TypeEmail
	case strings.HasPrefix(lower, "tel:") || isPhoneNumber(t):
		return TypePhone
	case urlPattern.MatchString(t):
		return TypeURL
	case strings.HasPrefix(lower, "geo:") || latLngPattern.MatchString(t):
		return TypeLocation
	}
	return TypeText
}

func isPhoneNumber(s string) bool {
	return phonePattern.MatchString(stripPhone(s))
}

func stripPhone(s string) string {
	return phoneSeparators.Replace(s)
}
