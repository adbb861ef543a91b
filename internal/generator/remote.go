// internal/generator/remote.go
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultRemoteTimeout = 10 * time.Second

// RenderEndpointRequest is the body accepted by a render endpoint.
type RenderEndpointRequest struct {
	Text    string                `json:"text"`
	Options RenderEndpointOptions `json:"options"`
}

type RenderEndpointOptions struct {
	Size                 int                  `json:"size"`
	Margin               int                  `json:"margin"`
	ErrorCorrectionLevel ErrorCorrectionLevel `json:"errorCorrectionLevel"`
	Foreground           string               `json:"foreground"`
	Background           string               `json:"background"`
	Format               Format               `json:"format"`
}

// RenderEndpointResponse is the body returned by a render endpoint.
type RenderEndpointResponse struct {
	Success   bool   `json:"success"`
	DataURL   string `json:"dataUrl,omitempty"`
	Error     string `json:"error,omitempty"`
	Size      int    `json:"size,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Method    Method `json:"method,omitempty"`
}

// NewRenderEndpointRequest builds the wire request for text and cfg.
func NewRenderEndpointRequest(text string, cfg Config) RenderEndpointRequest {
	return RenderEndpointRequest{
		Text: text,
		Options: RenderEndpointOptions{
			Size:                 cfg.Size,
			Margin:               cfg.Margin,
			ErrorCorrectionLevel: cfg.ErrorCorrectionLevel,
			Foreground:           cfg.Foreground,
			Background:           cfg.Background,
			Format:               cfg.Format,
		},
	}
}

// RemoteRenderer delegates rendering to an HTTP render endpoint.
type RemoteRenderer struct {
	httpClient *http.Client
	endpoint   string
}

func NewRemoteRenderer(endpoint string, timeout time.Duration) *RemoteRenderer {
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	return &RemoteRenderer{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
	}
}

func (r *RemoteRenderer) Render(ctx context.Context, req RenderRequest) (*Rendered, error) {
	jsonData, err := json.Marshal(NewRenderEndpointRequest(req.Text, req.Config))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal render request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create render request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call render endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read render response: %w", err)
	}

	var apiResponse RenderEndpointResponse
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		if !successStatus(resp.StatusCode) {
			return nil, fmt.Errorf("render endpoint returned status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to parse render response: %w", err)
	}
	if !successStatus(resp.StatusCode) || !apiResponse.Success {
		msg := apiResponse.Error
		if msg == "" {
			msg = "unknown error"
		}
		return nil, fmt.Errorf("render endpoint returned status %d: %s", resp.StatusCode, msg)
	}
	if apiResponse.DataURL == "" {
		return nil, fmt.Errorf("render endpoint returned no image")
	}
	return &Rendered{DataURL: apiResponse.DataURL}, nil
}

func successStatus(code int) bool {
	return code >= 200 && code <= 299
}
