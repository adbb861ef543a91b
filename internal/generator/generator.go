// internal/generator/generator.go
package generator

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	apperrors "qrstudio-backend/pkg/errors"
)

// Generator validates requests, picks a rendering method from the caller's
// capabilities and memoizes results. A failed render is retried exactly once
// with the fallback method.
type Generator struct {
	strategies map[Method]Strategy
	cache      *Cache
	group      singleflight.Group
	logger     *zap.Logger
	now        func() time.Time
	quality    float64
	// renderTimeout bounds a coalesced render, which runs detached from the
	// callers waiting on it.
	renderTimeout time.Duration
}

type Option func(*Generator)

// WithStrategy installs s for method m. Installing MethodServerSide enables
// remote rendering.
func WithStrategy(m Method, s Strategy) Option {
	return func(g *Generator) { g.strategies[m] = s }
}

func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithImageQuality sets the JPEG quality in (0, 1].
func WithImageQuality(q float64) Option {
	return func(g *Generator) {
		if q > 0 && q <= 1 {
			g.quality = q
		}
	}
}

// WithRenderTimeout bounds renders shared between concurrent callers.
func WithRenderTimeout(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.renderTimeout = d
		}
	}
}

// New builds a generator. A nil cache disables caching regardless of the
// useCache argument to Generate.
func New(cache *Cache, opts ...Option) *Generator {
	g := &Generator{
		strategies: make(map[Method]Strategy),
		cache:      cache,
		logger:     zap.L(),
		now:        time.Now,
		quality:    DefaultImageQuality,

		renderTimeout: DefaultRenderTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	if _, ok := g.strategies[MethodClientCanvas]; !ok {
		g.strategies[MethodClientCanvas] = &CanvasRenderer{Quality: g.quality}
	}
	if _, ok := g.strategies[MethodClientSVG]; !ok {
		g.strategies[MethodClientSVG] = SVGRenderer{}
	}
	if _, ok := g.strategies[MethodFallback]; !ok {
		g.strategies[MethodFallback] = &FallbackRenderer{Quality: g.quality}
	}
	return g
}

// Generate renders text with opts for a client with caps. With useCache set,
// a live cached result for the same fingerprint is returned as is, and
// concurrent calls for one fingerprint share a single render.
func (g *Generator) Generate(ctx context.Context, text string, opts Options, caps Capabilities, useCache bool) (*Result, error) {
	cfg := opts.Resolve()
	if err := cfg.Validate(text); err != nil {
		return nil, err
	}
	useCache = useCache && g.cache != nil
	if !useCache {
		return g.render(ctx, text, cfg, caps)
	}

	fp := Fingerprint(text, cfg)
	if r, ok := g.cache.Get(fp); ok {
		r.Cached = true
		return r, nil
	}

	ch := g.group.DoChan(fp, func() (any, error) {
		// A concurrent caller may have filled the slot between our miss and
		// entering the group.
		if r, ok := g.cache.peek(fp); ok {
			r.Cached = true
			return r, nil
		}
		// The render is shared, so no single caller's cancellation may end it.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.renderTimeout)
		defer cancel()
		r, err := g.render(rctx, text, cfg, caps)
		if err != nil {
			return nil, err
		}
		g.cache.Set(fp, r)
		return r, nil
	})

	select {
	case <-ctx.Done():
		return nil, apperrors.Wrap(ctx.Err(), apperrors.ErrGeneration, http.StatusInternalServerError, "QR code generation failed")
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		r := *res.Val.(*Result)
		return &r, nil
	}
}

// RenderLocal renders without the remote method or the cache. It backs the
// render endpoint, which must never call itself.
func (g *Generator) RenderLocal(ctx context.Context, text string, opts Options) (*Result, error) {
	cfg := opts.Resolve()
	if err := cfg.Validate(text); err != nil {
		return nil, err
	}
	caps := Capabilities{Canvas: true, DevicePixelRatio: 1}
	return g.execute(ctx, text, cfg, caps, selectMethod(cfg, caps, false))
}

func (g *Generator) render(ctx context.Context, text string, cfg Config, caps Capabilities) (*Result, error) {
	_, remote := g.strategies[MethodServerSide]
	return g.execute(ctx, text, cfg, caps, selectMethod(cfg, caps, remote))
}

func (g *Generator) execute(ctx context.Context, text string, cfg Config, caps Capabilities, method Method) (*Result, error) {
	req := RenderRequest{Text: text, Config: cfg, PixelRatio: caps.DevicePixelRatio}

	out, err := g.strategies[method].Render(ctx, req)
	if err != nil {
		generationsTotal.WithLabelValues(string(method), string(cfg.Format), "error").Inc()
		if method == MethodFallback || ctx.Err() != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrGeneration, http.StatusInternalServerError, "QR code generation failed")
		}

		g.logger.Warn("QR rendering failed, retrying with fallback",
			zap.String("method", string(method)),
			zap.String("format", string(cfg.Format)),
			zap.Error(err),
		)
		generationFallbacksTotal.Inc()

		var fbErr error
		out, fbErr = g.strategies[MethodFallback].Render(ctx, RenderRequest{Text: text, Config: cfg, PixelRatio: 1})
		if fbErr != nil {
			generationsTotal.WithLabelValues(string(MethodFallback), string(cfg.Format), "error").Inc()
			return nil, apperrors.Wrap(errors.Join(err, fbErr), apperrors.ErrGeneration, http.StatusInternalServerError, "QR code generation failed")
		}
		method = MethodFallback
	}
	generationsTotal.WithLabelValues(string(method), string(cfg.Format), "success").Inc()

	return &Result{
		ID:          uuid.NewString(),
		DataURL:     out.DataURL,
		SVG:         out.SVG,
		Format:      cfg.Format,
		Size:        cfg.Size,
		Timestamp:   g.now().UnixMilli(),
		Method:      method,
		BrowserInfo: caps,
	}, nil
}

// selectMethod maps a capability descriptor to a rendering method. Privacy
// browsers are kept off the canvas path since their canvas reads may be
// randomized.
func selectMethod(cfg Config, caps Capabilities, allowRemote bool) Method {
	switch {
	case cfg.Format == FormatSVG:
		return MethodClientSVG
	case caps.PrivacyBrowser && allowRemote:
		return MethodServerSide
	case caps.PrivacyBrowser:
		return MethodFallback
	case caps.Canvas:
		return MethodClientCanvas
	case allowRemote:
		return MethodServerSide
	default:
		return MethodFallback
	}
}
