package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWiFi(t *testing.T) {
	text := "WIFI:T:WPA;S:MyNet;P:pass123;;"
	require.Equal(t, TypeWiFi, Detect(text))

	got := Parse(text, TypeWiFi)
	assert.True(t, got.Structured)
	assert.Equal(t, WiFiFields{Security: "WPA", SSID: "MyNet", Password: "pass123", Hidden: false}, got.Fields)
	assert.Equal(t, "MyNet", got.DisplayName)
}

func TestParseWiFiDefaultsAndEscapes(t *testing.T) {
	got := Parse(`WIFI:S:Cafe\;Bar;P:a\,b\\c;H:true;;`, TypeWiFi)
	require.True(t, got.Structured)
	assert.Equal(t, WiFiFields{Security: "WPA", SSID: "Cafe;Bar", Password: `a,b\c`, Hidden: true}, got.Fields)
}

func TestParseWiFiMalformedFallsBack(t *testing.T) {
	got := Parse("WIFI:T:WPA;P:secret;;", TypeWiFi)
	assert.False(t, got.Structured)
	assert.Equal(t, TypeWiFi, got.Type)
	assert.Equal(t, TextFields{Text: "WIFI:T:WPA;P:secret;;"}, got.Fields)
}

func TestParseEmail(t *testing.T) {
	text := "mailto:a@b.com?subject=Hi"
	require.Equal(t, TypeEmail, Detect(text))

	got := Parse(text, TypeEmail)
	assert.True(t, got.Structured)
	assert.Equal(t, EmailFields{Email: "a@b.com", Subject: "Hi", Body: ""}, got.Fields)
}

func TestParseEmailDecodesQuery(t *testing.T) {
	got := Parse("mailto:team@example.com?subject=Hello%20there&body=See%20you", TypeEmail)
	assert.Equal(t, EmailFields{Email: "team@example.com", Subject: "Hello there", Body: "See you"}, got.Fields)
}

func TestParsePhone(t *testing.T) {
	got := Parse("tel:+1 (555) 123-4567", TypePhone)
	assert.Equal(t, PhoneFields{Phone: "+15551234567"}, got.Fields)
}

func TestParseURL(t *testing.T) {
	got := Parse("https://example.com/path", TypeURL)
	assert.Equal(t, URLFields{URL: "https://example.com/path", Hostname: "example.com", Protocol: "https"}, got.Fields)
	assert.Equal(t, "example.com", got.DisplayName)

	bad := Parse("not a url", TypeURL)
	assert.False(t, bad.Structured)
}

func TestParseVCard(t *testing.T) {
	got := Parse("BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Jane Doe\r\nTEL;TYPE=CELL:+15551234567\r\nEND:VCARD", TypeVCard)
	require.True(t, got.Structured)
	fields := got.Fields.(VCardFields)
	assert.Equal(t, "Jane Doe", fields["fn"])
	assert.Equal(t, "+15551234567", fields["tel;type=cell"])
	assert.Equal(t, "VCARD", fields["begin"])
	assert.Equal(t, "Jane Doe", got.DisplayName)
}

func TestParseSMS(t *testing.T) {
	got := Parse("sms:+1-555-123-4567?body=Running%20late", TypeSMS)
	assert.Equal(t, SMSFields{Phone: "+15551234567", Message: "Running late"}, got.Fields)

	noBody := Parse("SMS:5551234567", TypeSMS)
	assert.Equal(t, SMSFields{Phone: "5551234567"}, noBody.Fields)
}

func TestParseLocation(t *testing.T) {
	assert.Equal(t, LocationFields{Latitude: 37.7749, Longitude: -122.4194},
		Parse("geo:37.7749,-122.4194?q=SF", TypeLocation).Fields)
	assert.Equal(t, LocationFields{Latitude: 1.5, Longitude: 2.5},
		Parse("1.5, 2.5", TypeLocation).Fields)
	assert.Equal(t, LocationFields{Latitude: 0, Longitude: 2},
		Parse("geo:abc,2", TypeLocation).Fields)
}

func TestParseEventAndTextPassThrough(t *testing.T) {
	event := "BEGIN:VEVENT\nSUMMARY:Launch\nEND:VEVENT"
	got := Parse(event, TypeEvent)
	assert.False(t, got.Structured)
	assert.Equal(t, TextFields{Text: event}, got.Fields)

	text := Parse("hello", TypeText)
	assert.True(t, text.Structured)
	assert.Equal(t, TextFields{Text: "hello"}, text.Fields)
}
