package generator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	apperrors "qrstudio-backend/pkg/errors"
)

// spyStrategy counts renders and returns a fixed data URL or error.
type spyStrategy struct {
	calls   atomic.Int32
	dataURL string
	err     error
	block   chan struct{}
}

func (s *spyStrategy) Render(ctx context.Context, req RenderRequest) (*Rendered, error) {
	s.calls.Add(1)
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &Rendered{DataURL: s.dataURL}, nil
}

var canvasCaps = Capabilities{Canvas: true, DevicePixelRatio: 1}

func newTestGenerator(opts ...Option) *Generator {
	return New(NewCache(0, 0), append([]Option{WithLogger(zap.NewNop())}, opts...)...)
}

func TestGenerateCacheIdempotence(t *testing.T) {
	spy := &spyStrategy{dataURL: "data:image/png;base64,AQID"}
	g := newTestGenerator(WithStrategy(MethodClientCanvas, spy))

	first, err := g.Generate(context.Background(), "hello", Options{}, canvasCaps, true)
	require.NoError(t, err)
	second, err := g.Generate(context.Background(), "hello", Options{}, canvasCaps, true)
	require.NoError(t, err)

	assert.Equal(t, first.DataURL, second.DataURL)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int32(1), spy.calls.Load())
	assert.Equal(t, MethodClientCanvas, first.Method)
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
}

func TestGenerateWithoutCache(t *testing.T) {
	spy := &spyStrategy{dataURL: "data:image/png;base64,AQID"}
	g := newTestGenerator(WithStrategy(MethodClientCanvas, spy))

	for range 3 {
		_, err := g.Generate(context.Background(), "hello", Options{}, canvasCaps, false)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), spy.calls.Load())
	assert.Equal(t, 0, g.cache.Len())
}

func TestGenerateCacheExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewCache(0, 0)
	cache.now = clock.Now

	spy := &spyStrategy{dataURL: "data:image/png;base64,AQID"}
	g := New(cache, WithLogger(zap.NewNop()), WithClock(clock.Now), WithStrategy(MethodClientCanvas, spy))

	first, err := g.Generate(context.Background(), "hello", Options{}, canvasCaps, true)
	require.NoError(t, err)
	assert.Equal(t, clock.t.UnixMilli(), first.Timestamp)

	clock.Advance(5 * time.Minute)
	second, err := g.Generate(context.Background(), "hello", Options{}, canvasCaps, true)
	require.NoError(t, err)

	assert.Equal(t, int32(2), spy.calls.Load())
	assert.NotEqual(t, first.ID, second.ID)
}

func TestGenerateValidationSkipsRendering(t *testing.T) {
	spy := &spyStrategy{dataURL: "x"}
	g := newTestGenerator(WithStrategy(MethodClientCanvas, spy))

	_, err := g.Generate(context.Background(), "   ", Options{}, canvasCaps, true)
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrValidation))
	assert.Contains(t, err.Error(), "Text content is required")

	_, err = g.Generate(context.Background(), "hello", Options{Size: 2049}, canvasCaps, true)
	require.Error(t, err)
	assert.Equal(t, int32(0), spy.calls.Load())
}

func TestGenerateFallsBackOnce(t *testing.T) {
	primary := &spyStrategy{err: errors.New("canvas context unavailable")}
	fallback := &spyStrategy{dataURL: "data:image/png;base64,Zg=="}
	g := newTestGenerator(
		WithStrategy(MethodClientCanvas, primary),
		WithStrategy(MethodFallback, fallback),
	)

	r, err := g.Generate(context.Background(), "hello", Options{}, canvasCaps, true)
	require.NoError(t, err)

	assert.Equal(t, MethodFallback, r.Method)
	assert.Equal(t, "data:image/png;base64,Zg==", r.DataURL)
	assert.Equal(t, int32(1), primary.calls.Load())
	assert.Equal(t, int32(1), fallback.calls.Load())
}

func TestGenerateSurfacesErrorAfterFallback(t *testing.T) {
	canvasErr := errors.New("canvas context unavailable")
	fallbackErr := errors.New("encoder exploded")
	primary := &spyStrategy{err: canvasErr}
	fallback := &spyStrategy{err: fallbackErr}
	g := newTestGenerator(
		WithStrategy(MethodClientCanvas, primary),
		WithStrategy(MethodFallback, fallback),
	)

	_, err := g.Generate(context.Background(), "hello", Options{}, canvasCaps, true)
	require.Error(t, err)

	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrGeneration))
	assert.Equal(t, http.StatusInternalServerError, apperrors.GetStatusCode(err))
	assert.ErrorIs(t, err, canvasErr)
	assert.ErrorIs(t, err, fallbackErr)
	assert.Equal(t, int32(1), primary.calls.Load())
	assert.Equal(t, int32(1), fallback.calls.Load())
	assert.Equal(t, 0, g.cache.Len(), "failures are not cached")
}

func TestGenerateFallbackFailureIsNotRetried(t *testing.T) {
	fallback := &spyStrategy{err: errors.New("boom")}
	g := newTestGenerator(WithStrategy(MethodFallback, fallback))

	_, err := g.Generate(context.Background(), "hello", Options{}, Capabilities{}, true)
	require.Error(t, err)
	assert.Equal(t, int32(1), fallback.calls.Load())
}

func TestGenerateUsesRemoteForPrivacyBrowsers(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"dataUrl":"data:image/png;base64,cmVtb3Rl","method":"server-side"}`))
	}))
	defer srv.Close()

	g := newTestGenerator(WithStrategy(MethodServerSide, NewRemoteRenderer(srv.URL, time.Second)))
	caps := DetectCapabilities("Mozilla/5.0 Brave/120", 2)

	r, err := g.Generate(context.Background(), "hello", Options{}, caps, true)
	require.NoError(t, err)
	assert.Equal(t, MethodServerSide, r.Method)
	assert.Equal(t, "data:image/png;base64,cmVtb3Rl", r.DataURL)
	assert.True(t, r.BrowserInfo.PrivacyBrowser)
	assert.Equal(t, int32(1), hits.Load())
}

func TestGenerateRemoteFailureFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := newTestGenerator(WithStrategy(MethodServerSide, NewRemoteRenderer(srv.URL, time.Second)))

	r, err := g.Generate(context.Background(), "hello", Options{Size: 128}, Capabilities{PrivacyBrowser: true}, true)
	require.NoError(t, err)
	assert.Equal(t, MethodFallback, r.Method)

	_, img := decodeResult(t, r.DataURL)
	assert.Equal(t, 128, img.Bounds().Dx())
}

func TestGenerateSVG(t *testing.T) {
	g := newTestGenerator()

	r, err := g.Generate(context.Background(), "hello", Options{Format: FormatSVG}, canvasCaps, false)
	require.NoError(t, err)
	assert.Equal(t, MethodClientSVG, r.Method)
	assert.NotEmpty(t, r.SVG)
	assert.Equal(t, FormatSVG, r.Format)
}

func TestGenerateCoalescesConcurrentCalls(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	spy := &spyStrategy{dataURL: "data:image/png;base64,AQID", block: make(chan struct{})}
	g := newTestGenerator(WithStrategy(MethodClientCanvas, spy))

	const callers = 8
	results := make([]*Result, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := g.Generate(context.Background(), "hello", Options{}, canvasCaps, true)
			assert.NoError(t, err)
			results[i] = r
		}()
	}

	require.Eventually(t, func() bool { return spy.calls.Load() == 1 }, time.Second, time.Millisecond)
	close(spy.block)
	wg.Wait()

	// Callers either shared the in-flight render or hit the cache it filled.
	assert.Equal(t, int32(1), spy.calls.Load())
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, results[0].ID, r.ID)
	}
}

func TestGenerateCoalescedRenderOutlivesCancelledCaller(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	spy := &spyStrategy{dataURL: "data:image/png;base64,AQID", block: make(chan struct{})}
	g := newTestGenerator(WithStrategy(MethodClientCanvas, spy))

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := g.Generate(firstCtx, "hello", Options{}, canvasCaps, true)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return spy.calls.Load() == 1 }, time.Second, time.Millisecond)

	type outcome struct {
		result *Result
		err    error
	}
	second := make(chan outcome, 1)
	go func() {
		r, err := g.Generate(context.Background(), "hello", Options{}, canvasCaps, true)
		second <- outcome{r, err}
	}()

	cancel()
	err := <-firstErr
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrGeneration))

	close(spy.block)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, "data:image/png;base64,AQID", got.result.DataURL)
	assert.Equal(t, int32(1), spy.calls.Load())
}

func TestGenerateCountsOneMissPerRender(t *testing.T) {
	g := newTestGenerator(WithStrategy(MethodClientCanvas, &spyStrategy{dataURL: "x"}))
	misses := testutil.ToFloat64(cacheMissesTotal)
	hits := testutil.ToFloat64(cacheHitsTotal)

	_, err := g.Generate(context.Background(), "counted once", Options{}, canvasCaps, true)
	require.NoError(t, err)
	assert.Equal(t, misses+1, testutil.ToFloat64(cacheMissesTotal))
	assert.Equal(t, hits, testutil.ToFloat64(cacheHitsTotal))

	_, err = g.Generate(context.Background(), "counted once", Options{}, canvasCaps, true)
	require.NoError(t, err)
	assert.Equal(t, misses+1, testutil.ToFloat64(cacheMissesTotal))
	assert.Equal(t, hits+1, testutil.ToFloat64(cacheHitsTotal))
}

func TestRenderLocalNeverUsesRemote(t *testing.T) {
	remote := &spyStrategy{dataURL: "x"}
	g := newTestGenerator(WithStrategy(MethodServerSide, remote))

	r, err := g.RenderLocal(context.Background(), "hello", Options{Size: 128})
	require.NoError(t, err)
	assert.Equal(t, MethodClientCanvas, r.Method)
	assert.Equal(t, int32(0), remote.calls.Load())
}

func TestWithImageQualityIgnoresOutOfRange(t *testing.T) {
	assert.Equal(t, 0.8, New(nil, WithImageQuality(0.8)).quality)
	assert.Equal(t, DefaultImageQuality, New(nil, WithImageQuality(1.5)).quality)
}
