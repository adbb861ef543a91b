// internal/generator/svg.go
package generator

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"strings"
)

// SVGRenderer produces vector output independent of pixel ratio.
type SVGRenderer struct{}

func (SVGRenderer) Render(ctx context.Context, req RenderRequest) (*Rendered, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return renderSVG(req.Text, req.Config)
}

// renderSVG draws the code in module units; the viewBox maps them onto the
// requested pixel size. Dark modules are emitted as one path of horizontal
// runs.
func renderSVG(text string, cfg Config) (*Rendered, error) {
	bitmap, err := encodeBitmap(text, cfg.ErrorCorrectionLevel)
	if err != nil {
		return nil, err
	}
	total := len(bitmap) + 2*cfg.Margin

	var path strings.Builder
	for y, row := range bitmap {
		for x := 0; x < len(row); {
			if !row[x] {
				x++
				continue
			}
			start := x
			for x < len(row) && row[x] {
				x++
			}
			fmt.Fprintf(&path, "M%d %dh%dv1h-%dz", start+cfg.Margin, y+cfg.Margin, x-start, x-start)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`,
		cfg.Size, cfg.Size, total, total)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="%s"/>`, total, total, html.EscapeString(cfg.Background))
	fmt.Fprintf(&b, `<path fill="%s" d="%s"/>`, html.EscapeString(cfg.Foreground), path.String())
	if cfg.LogoURL != "" {
		writeSVGLogo(&b, cfg, total)
	}
	b.WriteString(`</svg>`)

	svg := b.String()
	return &Rendered{
		DataURL: "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg)),
		SVG:     svg,
	}, nil
}

func writeSVGLogo(b *strings.Builder, cfg Config, total int) {
	side := float64(total) * float64(cfg.LogoSize) / 100
	offset := (float64(total) - side) / 2
	if cfg.LogoBackground != "" {
		pad := side / 10
		fmt.Fprintf(b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`,
			offset-pad, offset-pad, side+2*pad, side+2*pad, html.EscapeString(cfg.LogoBackground))
	}
	fmt.Fprintf(b, `<image x="%.2f" y="%.2f" width="%.2f" height="%.2f" href="%s" preserveAspectRatio="xMidYMid meet"/>`,
		offset, offset, side, side, html.EscapeString(cfg.LogoURL))
}
