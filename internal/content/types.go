// internal/content/types.go
package content

// ContentType is the semantic category of a QR payload.
type ContentType string

const (
	TypeText     ContentType = "text"
	TypeURL      ContentType = "url"
	TypeEmail    ContentType = "email"
	TypePhone    ContentType = "phone"
	TypeWiFi     ContentType = "wifi"
	TypeVCard    ContentType = "vcard"
	TypeEvent    ContentType = "event"
	TypeLocation ContentType = "location"
	TypeSMS      ContentType = "sms"
)

// AllTypes lists every content type in detection order.
var AllTypes = []ContentType{
	TypeWiFi, TypeVCard, TypeEvent, TypeSMS, TypeEmail,
	TypePhone, TypeURL, TypeLocation, TypeText,
}

// ParseContentType maps a string hint to a ContentType. Unknown hints report false.
func ParseContentType(s string) (ContentType, bool) {
	for _, t := range AllTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Fields is the structured payload extracted for one content type.
type Fields interface {
	ContentType() ContentType
}

type WiFiFields struct {
	Security string `json:"type"`
	SSID     string `json:"ssid"`
	Password string `json:"password"`
	Hidden   bool   `json:"hidden"`
}

type EmailFields struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type PhoneFields struct {
	Phone string `json:"phone"`
}

type URLFields struct {
	URL      string `json:"url"`
	Hostname string `json:"hostname"`
	Protocol string `json:"protocol"`
}

// VCardFields holds every KEY:VALUE line keyed by the lower-cased key.
type VCardFields map[string]string

type SMSFields struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type LocationFields struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type TextFields struct {
	Text string `json:"text"`
}

func (WiFiFields) ContentType() ContentType     { return TypeWiFi }
func (EmailFields) ContentType() ContentType    { return TypeEmail }
func (PhoneFields) ContentType() ContentType    { return TypePhone }
func (URLFields) ContentType() ContentType      { return TypeURL }
func (VCardFields) ContentType() ContentType    { return TypeVCard }
func (SMSFields) ContentType() ContentType      { return TypeSMS }
func (LocationFields) ContentType() ContentType { return TypeLocation }
func (TextFields) ContentType() ContentType     { return TypeText }

// Parsed is the outcome of Parse. Structured is false when the payload could
// not be decomposed and Fields carries only the original text.
type Parsed struct {
	Type        ContentType `json:"type"`
	Fields      Fields      `json:"fields"`
	DisplayName string      `json:"displayName"`
	Structured  bool        `json:"structured"`
}

// Report is the outcome of ValidateAndOptimize. Errors block use, warnings
// are advisory.
type Report struct {
	Type            ContentType `json:"type"`
	IsValid         bool        `json:"isValid"`
	Errors          []string    `json:"errors"`
	Warnings        []string    `json:"warnings"`
	OptimizedFormat string      `json:"optimizedFormat,omitempty"`
}
