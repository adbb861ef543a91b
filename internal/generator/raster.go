// internal/generator/raster.go
package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"golang.org/x/image/draw"
)

var errLogoTooLarge = errors.New("logo dimensions too large")

const (
	// MaxBackingStore caps the raster side length after pixel-ratio scaling.
	MaxBackingStore = 4096
	// MaxLogoDimension caps each side of a logo before it is decoded.
	MaxLogoDimension = 2048
)

// CanvasRenderer rasterizes into an in-memory canvas whose backing store is
// the logical size times the device pixel ratio, so exports stay crisp on
// high-DPI screens.
type CanvasRenderer struct {
	Quality float64
}

func (r *CanvasRenderer) Render(ctx context.Context, req RenderRequest) (*Rendered, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Config.Format == FormatSVG {
		return nil, fmt.Errorf("canvas renderer cannot produce svg")
	}
	img, err := rasterize(req.Text, req.Config, backingSize(req.Config.Size, req.PixelRatio))
	if err != nil {
		return nil, err
	}
	if req.Config.LogoURL != "" {
		if err := overlayLogo(img, req.Config); err != nil {
			return nil, err
		}
	}
	return encodeRendered(img, req.Config.Format, r.Quality)
}

// FallbackRenderer calls the encoder directly at the logical size with no
// canvas features: no pixel-ratio scaling and no logo. SVG requests get
// vector output.
type FallbackRenderer struct {
	Quality float64
}

func (r *FallbackRenderer) Render(ctx context.Context, req RenderRequest) (*Rendered, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Config.Format == FormatSVG {
		cfg := req.Config
		cfg.LogoURL = ""
		return renderSVG(req.Text, cfg)
	}
	img, err := rasterize(req.Text, req.Config, req.Config.Size)
	if err != nil {
		return nil, err
	}
	return encodeRendered(img, req.Config.Format, r.Quality)
}

func encodeRendered(img image.Image, format Format, quality float64) (*Rendered, error) {
	data, err := encodeImage(img, format, quality)
	if err != nil {
		return nil, err
	}
	return &Rendered{DataURL: EncodeDataURL(format.MimeType(), data)}, nil
}

func backingSize(size int, ratio float64) int {
	px := int(math.Round(float64(size) * ClampPixelRatio(ratio)))
	return min(px, MaxBackingStore)
}

// rasterize draws the module matrix plus margin onto a square of pixels.
// Module edges are rounded to whole pixels so the output is exactly pixels
// wide.
func rasterize(text string, cfg Config, pixels int) (*image.RGBA, error) {
	bitmap, err := encodeBitmap(text, cfg.ErrorCorrectionLevel)
	if err != nil {
		return nil, err
	}
	fg, err := parseHexColor(cfg.Foreground)
	if err != nil {
		return nil, err
	}
	bg, err := parseHexColor(cfg.Background)
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, pixels, pixels))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)

	total := len(bitmap) + 2*cfg.Margin
	edge := func(i int) int { return i * pixels / total }
	dark := &image.Uniform{C: fg}
	for y, row := range bitmap {
		for x, on := range row {
			if !on {
				continue
			}
			cell := image.Rect(edge(x+cfg.Margin), edge(y+cfg.Margin), edge(x+cfg.Margin+1), edge(y+cfg.Margin+1))
			draw.Draw(img, cell, dark, image.Point{}, draw.Src)
		}
	}
	return img, nil
}

// overlayLogo centres the configured logo over img, scaled to LogoSize percent
// of the width, optionally on a solid backdrop.
func overlayLogo(img *image.RGBA, cfg Config) error {
	data, err := checkLogo(cfg.LogoURL)
	if err != nil {
		return err
	}
	logo, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode logo: %w", err)
	}

	side := img.Bounds().Dx() * cfg.LogoSize / 100
	if side <= 0 {
		return nil
	}
	center := img.Bounds().Dx() / 2
	box := image.Rect(center-side/2, center-side/2, center-side/2+side, center-side/2+side)

	if cfg.LogoBackground != "" {
		c, err := parseHexColor(cfg.LogoBackground)
		if err != nil {
			return err
		}
		pad := max(side/10, 1)
		draw.Draw(img, box.Inset(-pad), &image.Uniform{C: c}, image.Point{}, draw.Src)
	}

	draw.CatmullRom.Scale(img, fitRect(box, logo.Bounds()), logo, logo.Bounds(), draw.Over, nil)
	return nil
}

// checkLogo reads only the image header of a logo data URL and rejects
// logos whose declared dimensions exceed MaxLogoDimension.
func checkLogo(logoURL string) ([]byte, error) {
	_, data, err := DecodeDataURL(logoURL)
	if err != nil {
		return nil, fmt.Errorf("logo: %w", err)
	}
	lc, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	if lc.Width > MaxLogoDimension || lc.Height > MaxLogoDimension {
		return nil, fmt.Errorf("%w: %dx%d", errLogoTooLarge, lc.Width, lc.Height)
	}
	return data, nil
}

// fitRect returns the largest rectangle with src's aspect ratio centred in box.
func fitRect(box, src image.Rectangle) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	if sw == 0 || sh == 0 {
		return box
	}
	w, h := box.Dx(), box.Dy()
	if sw*h > sh*w {
		h = w * sh / sw
	} else {
		w = h * sw / sh
	}
	x := box.Min.X + (box.Dx()-w)/2
	y := box.Min.Y + (box.Dy()-h)/2
	return image.Rect(x, y, x+w, y+h)
}
