// internal/generator/strategy.go
package generator

import (
	"context"
	"time"
)

// Method identifies how a code was rendered. It is diagnostic only.
type Method string

const (
	MethodServerSide   Method = "server-side"
	MethodClientCanvas Method = "client-canvas"
	MethodClientSVG    Method = "client-svg"
	MethodFallback     Method = "fallback"
)

// Strategy renders one QR code.
type Strategy interface {
	Render(ctx context.Context, req RenderRequest) (*Rendered, error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(ctx context.Context, req RenderRequest) (*Rendered, error)

func (f StrategyFunc) Render(ctx context.Context, req RenderRequest) (*Rendered, error) {
	return f(ctx, req)
}

// RenderRequest is the input handed to a strategy.
type RenderRequest struct {
	Text   string
	Config Config
	// PixelRatio scales the raster backing store; 1 for strategies that
	// ignore it.
	PixelRatio float64
}

// Rendered is the raw output of a strategy.
type Rendered struct {
	DataURL string
	SVG     string
}

// Result is the normalized outcome of a generation. Results are never mutated
// after creation; a new generation supersedes rather than updates them.
type Result struct {
	ID          string       `json:"id"`
	DataURL     string       `json:"dataUrl"`
	SVG         string       `json:"svgString,omitempty"`
	Format      Format       `json:"format"`
	Size        int          `json:"size"`
	Timestamp   int64        `json:"timestamp"`
	Method      Method       `json:"method"`
	BrowserInfo Capabilities `json:"browserInfo"`
	// Cached is set on results served from the generation cache.
	Cached bool `json:"cached"`
}

// CreatedAt returns the generation time.
func (r *Result) CreatedAt() time.Time {
	return time.UnixMilli(r.Timestamp)
}
