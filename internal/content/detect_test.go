package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want ContentType
	}{
		{"wifi", "WIFI:T:WPA;S:MyNet;P:pass123;;", TypeWiFi},
		{"vcard", "BEGIN:VCARD\nVERSION:3.0\nFN:Jane Doe\nEMAIL:jane@example.com\nEND:VCARD", TypeVCard},
		{"vcard embedded", "note\nBEGIN:VCARD\nEND:VCARD", TypeVCard},
		{"event", "BEGIN:VEVENT\nSUMMARY:Launch\nEND:VEVENT", TypeEvent},
		{"sms lower", "sms:+15551234567?body=hi", TypeSMS},
		{"sms upper", "SMS:+15551234567", TypeSMS},
		{"mailto", "mailto:a@b.com?subject=Hi", TypeEmail},
		{"bare email", "someone@example.co.uk", TypeEmail},
		{"tel", "tel:+1 555 123 4567", TypePhone},
		{"bare phone", "(555) 123-4567", TypePhone},
		{"https", "https://example.com", TypeURL},
		{"http", "http://example.com/path?q=1", TypeURL},
		{"ftp", "ftp://files.example.com/readme.txt", TypeURL},
		{"geo", "geo:37.7749,-122.4194", TypeLocation},
		{"bare lat lng", "37.7749, -122.4194", TypeLocation},
		{"plain", "hello world", TypeText},
		{"empty", "", TypeText},
		{"whitespace", "   ", TypeText},
		{"trimmed", "  https://example.com  ", TypeURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.text))
		})
	}
}

// Inputs that more than one rule could claim. The canonical order is
// wifi, vcard, event, sms, email, phone, url, location, text.
func TestDetectAmbiguousInputs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want ContentType
	}{
		{"vcard containing email and url", "BEGIN:VCARD\nEMAIL:a@b.com\nURL:https://x.io\nEND:VCARD", TypeVCard},
		{"digits only is phone not location", "1234567", TypePhone},
		{"short digits is text", "123456", TypeText},
		{"sixteen digits is text", "1234567890123456", TypeText},
		{"url with digits stays url", "https://15551234567.example.com", TypeURL},
		{"digit pair with comma is location", "12,34", TypeLocation},
		{"custom scheme is text", "myapp://open", TypeText},
		{"email-like inside url is url", "https://example.com/@user", TypeURL},
		{"sms wins over phone", "sms:5551234567", TypeSMS},
		{"wifi prefix is case sensitive", "wifi:T:WPA;S:x;;", TypeText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.text))
		})
	}
}
