package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrstudio-backend/internal/models"
	apperrors "qrstudio-backend/pkg/errors"
)

func TestSendErrorResponseValidation(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/qr/generate", nil)
	w := httptest.NewRecorder()

	SendErrorResponse(w, r, apperrors.NewValidationError([]string{"Text content is required", "Size must be between 128 and 2048 pixels"}))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperrors.ErrValidation, body.Type)
	assert.Len(t, body.Errors, 2)
}

func TestSendErrorResponseHidesPlainErrors(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	w := httptest.NewRecorder()

	SendErrorResponse(w, r, errors.New("mongo: connection string leaked"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "leaked")
	assert.Contains(t, w.Body.String(), apperrors.ErrInternalServer)
}

func TestDecodeJSONBody(t *testing.T) {
	var dst struct {
		Text string `json:"text"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"hello"}`))
	require.NoError(t, DecodeJSONBody(r, &dst))
	assert.Equal(t, "hello", dst.Text)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":`))
	err := DecodeJSONBody(r, &dst)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrBadRequest))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	err = DecodeJSONBody(r, &dst)
	assert.Equal(t, http.StatusBadRequest, apperrors.GetStatusCode(err))
}

func TestDecodeJSONBodyTooLarge(t *testing.T) {
	var dst struct {
		Text string `json:"text"`
	}
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"`+strings.Repeat("a", 64)+`"}`))
	r.Body = http.MaxBytesReader(w, r.Body, 16)

	err := DecodeJSONBody(r, &dst)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrPayloadTooLarge))
	assert.Equal(t, http.StatusRequestEntityTooLarge, apperrors.GetStatusCode(err))
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded header ignored", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:5000", "10.0.0.2"},
		{"real ip header ignored", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.2:5000", "10.0.0.2"},
		{"remote addr", nil, "192.0.2.1:1234", "192.0.2.1"},
		{"remote without port", nil, "192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetClientIP(r))
		})
	}
}
