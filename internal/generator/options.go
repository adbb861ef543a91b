// internal/generator/options.go
package generator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	apperrors "qrstudio-backend/pkg/errors"
)

// Limits and defaults for a QR request.
const (
	MaxTextLength = 4296
	MinSize       = 128
	MaxSize       = 2048
	MinMargin     = 0
	MaxMargin     = 20
	MinLogoSize   = 5
	MaxLogoSize   = 30

	DefaultSize       = 512
	DefaultMargin     = 4
	DefaultLevel      = LevelM
	DefaultForeground = "#000000"
	DefaultBackground = "#FFFFFF"
	DefaultFormat     = FormatPNG
	DefaultLogoSize   = 20

	// DefaultImageQuality is the encoder quality for JPEG output.
	DefaultImageQuality = 0.92

	minPDFPasswordLength = 4
)

// ErrorCorrectionLevel is the QR redundancy setting.
type ErrorCorrectionLevel string

const (
	LevelL ErrorCorrectionLevel = "L"
	LevelM ErrorCorrectionLevel = "M"
	LevelQ ErrorCorrectionLevel = "Q"
	LevelH ErrorCorrectionLevel = "H"
)

func (l ErrorCorrectionLevel) valid() bool {
	switch l {
	case LevelL, LevelM, LevelQ, LevelH:
		return true
	}
	return false
}

// Format is the output encoding of a generated code.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatWebP Format = "webp"
	FormatSVG  Format = "svg"
)

func (f Format) valid() bool {
	switch f {
	case FormatPNG, FormatJPEG, FormatWebP, FormatSVG:
		return true
	}
	return false
}

// MimeType returns the media type for f.
func (f Format) MimeType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatWebP:
		return "image/webp"
	case FormatSVG:
		return "image/svg+xml"
	default:
		return "image/png"
	}
}

var hexColorPattern = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

// IsValidHexColor reports whether c is #RGB or #RRGGBB.
func IsValidHexColor(c string) bool {
	return hexColorPattern.MatchString(c)
}

// Options are caller-supplied settings. Zero values mean "use the default";
// Margin is a pointer because 0 is a meaningful margin.
type Options struct {
	Size                 int                  `json:"size,omitempty"`
	Margin               *int                 `json:"margin,omitempty"`
	ErrorCorrectionLevel ErrorCorrectionLevel `json:"errorCorrectionLevel,omitempty"`
	Foreground           string               `json:"foreground,omitempty"`
	Background           string               `json:"background,omitempty"`
	Format               Format               `json:"format,omitempty"`
	LogoURL              string               `json:"logoUrl,omitempty"`
	LogoSize             int                  `json:"logoSize,omitempty"`
	LogoBackground       string               `json:"logoBackground,omitempty"`
	PDFPassword          string               `json:"pdfPassword,omitempty"`
	EnablePDFPassword    bool                 `json:"enablePdfPassword,omitempty"`
}

// Config is a fully resolved request configuration.
type Config struct {
	Size                 int                  `json:"size"`
	Margin               int                  `json:"margin"`
	ErrorCorrectionLevel ErrorCorrectionLevel `json:"errorCorrectionLevel"`
	Foreground           string               `json:"foreground"`
	Background           string               `json:"background"`
	Format               Format               `json:"format"`
	LogoURL              string               `json:"logoUrl,omitempty"`
	LogoSize             int                  `json:"logoSize,omitempty"`
	LogoBackground       string               `json:"logoBackground,omitempty"`
	PDFPassword          string               `json:"-"`
	EnablePDFPassword    bool                 `json:"enablePdfPassword,omitempty"`
}

// Resolve merges o over the defaults.
func (o Options) Resolve() Config {
	cfg := Config{
		Size:                 DefaultSize,
		Margin:               DefaultMargin,
		ErrorCorrectionLevel: DefaultLevel,
		Foreground:           DefaultForeground,
		Background:           DefaultBackground,
		Format:               DefaultFormat,
		LogoURL:              o.LogoURL,
		LogoBackground:       o.LogoBackground,
		PDFPassword:          o.PDFPassword,
		EnablePDFPassword:    o.EnablePDFPassword,
	}
	if o.Size != 0 {
		cfg.Size = o.Size
	}
	if o.Margin != nil {
		cfg.Margin = *o.Margin
	}
	if o.ErrorCorrectionLevel != "" {
		cfg.ErrorCorrectionLevel = ErrorCorrectionLevel(strings.ToUpper(string(o.ErrorCorrectionLevel)))
	}
	if o.Foreground != "" {
		cfg.Foreground = o.Foreground
	}
	if o.Background != "" {
		cfg.Background = o.Background
	}
	if o.Format != "" {
		cfg.Format = Format(strings.ToLower(string(o.Format)))
	}
	if o.LogoURL != "" {
		cfg.LogoSize = DefaultLogoSize
		if o.LogoSize != 0 {
			cfg.LogoSize = o.LogoSize
		}
	}
	return cfg
}

// Options converts cfg back to explicit options.
func (c Config) Options() Options {
	margin := c.Margin
	return Options{
		Size:                 c.Size,
		Margin:               &margin,
		ErrorCorrectionLevel: c.ErrorCorrectionLevel,
		Foreground:           c.Foreground,
		Background:           c.Background,
		Format:               c.Format,
		LogoURL:              c.LogoURL,
		LogoSize:             c.LogoSize,
		LogoBackground:       c.LogoBackground,
		PDFPassword:          c.PDFPassword,
		EnablePDFPassword:    c.EnablePDFPassword,
	}
}

// Validate checks text and every field of c, returning all violations in
// one VALIDATION_ERROR.
func (c Config) Validate(text string) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(text) == "" {
		add("Text content is required")
	} else if utf8.RuneCountInString(text) > MaxTextLength {
		add("Text content exceeds maximum length of %d characters", MaxTextLength)
	}
	if c.Size < MinSize || c.Size > MaxSize {
		add("Size must be between %d and %d pixels", MinSize, MaxSize)
	}
	if c.Margin < MinMargin || c.Margin > MaxMargin {
		add("Margin must be between %d and %d", MinMargin, MaxMargin)
	}
	if !c.ErrorCorrectionLevel.valid() {
		add("Error correction level must be one of L, M, Q, H")
	}
	if !IsValidHexColor(c.Foreground) {
		add("Foreground color must be a valid hex color")
	}
	if !IsValidHexColor(c.Background) {
		add("Background color must be a valid hex color")
	}
	if !c.Format.valid() {
		add("Format must be one of png, jpeg, webp, svg")
	}
	if c.LogoURL != "" {
		if !strings.HasPrefix(c.LogoURL, "data:image/") {
			add("Logo must be provided as a data:image URL")
		} else if _, err := checkLogo(c.LogoURL); errors.Is(err, errLogoTooLarge) {
			add("Logo must be at most %dx%d pixels", MaxLogoDimension, MaxLogoDimension)
		}
		if c.LogoSize < MinLogoSize || c.LogoSize > MaxLogoSize {
			add("Logo size must be between %d and %d percent", MinLogoSize, MaxLogoSize)
		}
		if c.LogoBackground != "" && !IsValidHexColor(c.LogoBackground) {
			add("Logo background must be a valid hex color")
		}
	}
	if c.EnablePDFPassword && len(c.PDFPassword) < minPDFPasswordLength {
		add("PDF password must be at least %d characters", minPDFPasswordLength)
	}

	if len(problems) > 0 {
		return apperrors.NewValidationError(problems)
	}
	return nil
}
