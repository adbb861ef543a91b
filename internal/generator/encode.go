// internal/generator/encode.go
package generator

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strconv"

	"github.com/HugoSmits86/nativewebp"
	"github.com/skip2/go-qrcode"
)

var recoveryLevels = map[ErrorCorrectionLevel]qrcode.RecoveryLevel{
	LevelL: qrcode.Low,
	LevelM: qrcode.Medium,
	LevelQ: qrcode.High,
	LevelH: qrcode.Highest,
}

// encodeBitmap runs the QR encoder and returns the module matrix without a
// quiet zone; callers add the configured margin themselves.
func encodeBitmap(text string, level ErrorCorrectionLevel) ([][]bool, error) {
	rl, ok := recoveryLevels[level]
	if !ok {
		return nil, fmt.Errorf("unsupported error correction level %q", level)
	}
	q, err := qrcode.New(text, rl)
	if err != nil {
		return nil, fmt.Errorf("encode QR: %w", err)
	}
	q.DisableBorder = true
	return q.Bitmap(), nil
}

// encodeImage serializes img in a raster format. quality applies to JPEG only.
func encodeImage(img image.Image, format Format, quality float64) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatPNG:
		err = png.Encode(&buf, img)
	case FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality(quality)})
	case FormatWebP:
		err = nativewebp.Encode(&buf, img, nil)
	default:
		return nil, fmt.Errorf("format %q is not a raster format", format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

func jpegQuality(q float64) int {
	if q <= 0 || q > 1 {
		q = DefaultImageQuality
	}
	return int(q*100 + 0.5)
}

// parseHexColor converts #RGB or #RRGGBB to an opaque color.
func parseHexColor(s string) (color.RGBA, error) {
	if !IsValidHexColor(s) {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, err
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
