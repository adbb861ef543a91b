// internal/models/qr.go
package models

import (
	"qrstudio-backend/internal/content"
	"qrstudio-backend/internal/generator"
)

type GenerateRequest struct {
	Text    string            `json:"text"`
	Options generator.Options `json:"options"`
	// UseCache defaults to true when omitted.
	UseCache         *bool   `json:"useCache,omitempty"`
	DevicePixelRatio float64 `json:"devicePixelRatio,omitempty"`
	// Save stores the code in the caller's history; ignored for guests.
	Save  bool   `json:"save,omitempty"`
	Title string `json:"title,omitempty"`
}

// CacheEnabled resolves the optional UseCache flag.
func (r GenerateRequest) CacheEnabled() bool {
	return r.UseCache == nil || *r.UseCache
}

type GenerateResponse struct {
	Result      *generator.Result   `json:"result"`
	ContentType content.ContentType `json:"contentType"`
	History     *SaveHistoryResult  `json:"history,omitempty"`
}

type DetectRequest struct {
	Text string `json:"text"`
}

type DetectResponse struct {
	Type content.ContentType `json:"type"`
}

type ParseRequest struct {
	Text string `json:"text"`
	// Type is detected when empty.
	Type string `json:"type,omitempty"`
}

type ValidateRequest struct {
	Text string `json:"text"`
	Type string `json:"type,omitempty"`
}

// ComposeLocation carries the optional geo query next to the coordinates.
type ComposeLocation struct {
	content.LocationFields
	Query string `json:"query,omitempty"`
}

// ComposeRequest names one content type and carries the matching fields.
type ComposeRequest struct {
	Type     content.ContentType  `json:"type"`
	WiFi     *content.WiFiFields  `json:"wifi,omitempty"`
	Email    *content.EmailFields `json:"email,omitempty"`
	Phone    *content.PhoneFields `json:"phone,omitempty"`
	SMS      *content.SMSFields   `json:"sms,omitempty"`
	Location *ComposeLocation     `json:"location,omitempty"`
	URL      *content.URLFields   `json:"url,omitempty"`
	VCard    content.VCardFields  `json:"vcard,omitempty"`
	Text     *content.TextFields  `json:"text,omitempty"`
}

type ComposeResponse struct {
	Text   string         `json:"text"`
	Report content.Report `json:"report"`
}

type ExportPDFRequest struct {
	Text    string            `json:"text"`
	Options generator.Options `json:"options"`
	Title   string            `json:"title,omitempty"`
}

// ClientInfo describes the HTTP client for usage records.
type ClientInfo struct {
	RequestID string
	IPAddress string
	UserAgent string
}
