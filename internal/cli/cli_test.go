package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrstudio-backend/internal/content"
	"qrstudio-backend/internal/generator"
	apperrors "qrstudio-backend/pkg/errors"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestDetect(t *testing.T) {
	out, err := run(t, "", "detect", "mailto:ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "email\n", out)

	out, err = run(t, "BEGIN:VCARD\nFN:Ada\nEND:VCARD\n", "detect", "-")
	require.NoError(t, err)
	assert.Equal(t, "vcard\n", out)
}

func TestParseWithType(t *testing.T) {
	out, err := run(t, "", "parse", "--type", "wifi", `WIFI:T:WPA;S:My\;Net;P:pw;;`)
	require.NoError(t, err)

	var parsed struct {
		Type       content.ContentType `json:"type"`
		Structured bool                `json:"structured"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, content.TypeWiFi, parsed.Type)
	assert.Contains(t, out, "My;Net")
}

func TestValidate(t *testing.T) {
	out, err := run(t, "", "validate", "geo:52.52,13.405")
	require.NoError(t, err)
	var report content.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.IsValid)
	assert.Equal(t, "geo:52.52,13.405", report.OptimizedFormat)

	out, err = run(t, "", "validate", "geo:95,13")
	assert.ErrorIs(t, err, ErrInvalidContent)
	assert.Contains(t, out, "Latitude must be between -90 and 90")
}

func TestGenerateStdout(t *testing.T) {
	out, err := run(t, "", "generate", "https://example.com")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "data:image/png;base64,"))

	out, err = run(t, "", "generate", "--format", "svg", "hello")
	require.NoError(t, err)
	assert.Contains(t, out, "<svg")
}

func TestGenerateToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "code.jpeg")

	out, err := run(t, "", "generate", "--format", "jpeg", "--size", "256", "-o", path, "hello")
	require.NoError(t, err)
	assert.Contains(t, out, "client-canvas")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", http.DetectContentType(data))
}

func TestGenerateValidationError(t *testing.T) {
	_, err := run(t, "", "generate", "--size", "50", "--foreground", "red", "hello")
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrValidation))
}

func TestGenerateReadsConfigAndEnv(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "qrcli.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("format: jpeg\nsize: 200\n"), 0o644))

	out, err := run(t, "", "--config", cfg, "generate", "hello")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "data:image/jpeg;base64,"))

	t.Setenv("QRCLI_FORMAT", "webp")
	out, err = run(t, "", "generate", "hello")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "data:image/webp;base64,"))

	// Flags win over the environment.
	out, err = run(t, "", "generate", "--format", "png", "hello")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "data:image/png;base64,"))

	_, err = run(t, "", "--config", filepath.Join(dir, "missing.yaml"), "detect", "x")
	assert.Error(t, err)
}

func TestGenerateViaEndpoint(t *testing.T) {
	png := generator.EncodeDataURL("image/png", []byte("\x89PNG\r\n\x1a\nfake"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generator.RenderEndpointRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(generator.RenderEndpointResponse{Success: req.Text == "hello", DataURL: png})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "remote.png")
	out, err := run(t, "", "generate", "--endpoint", srv.URL, "-o", path, "hello")
	require.NoError(t, err)
	assert.Contains(t, out, "server-side")

	// A failing endpoint falls back to local rendering.
	out, err = run(t, "", "generate", "--endpoint", srv.URL, "-o", path, "other")
	require.NoError(t, err)
	assert.Contains(t, out, "fallback")
}

func TestPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "code.pdf")

	out, err := run(t, "", "pdf", "--title", "Site", "--password", "s3cret", "-o", path, "https://example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "code.pdf")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	_, err = run(t, "", "pdf", "https://example.com")
	assert.EqualError(t, err, "--output is required")

	_, err = run(t, "", "pdf", "--password", "abc", "-o", path, "https://example.com")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrValidation))
}
