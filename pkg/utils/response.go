// pkg/utils/response.go
package utils

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"qrstudio-backend/internal/models"
	apperrors "qrstudio-backend/pkg/errors"
)

// SendJSONResponse writes data as JSON with the given status.
func SendJSONResponse(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	render.Status(r, statusCode)
	render.JSON(w, r, data)
}

// SendErrorResponse maps err to its status code and writes an ErrorResponse.
// Errors that are not AppErrors are reported as internal errors without
// leaking their text.
func SendErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		zap.L().Error("Unhandled error",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		SendJSONResponse(w, r, http.StatusInternalServerError, models.ErrorResponse{
			Error: "Internal server error",
			Type:  apperrors.ErrInternalServer,
		})
		return
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		zap.L().Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.String("type", appErr.Type),
			zap.Error(err))
	}

	SendJSONResponse(w, r, appErr.StatusCode, models.ErrorResponse{
		Error:   appErr.Message,
		Type:    appErr.Type,
		Details: appErr.Details,
		Errors:  appErr.Errors,
	})
}

// DecodeJSONBody decodes the request body into dst. An empty or malformed
// body is a BAD_REQUEST; one cut off by the size limit is PAYLOAD_TOO_LARGE.
func DecodeJSONBody(r *http.Request, dst interface{}) error {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewAppError(apperrors.ErrBadRequest, http.StatusBadRequest, "request body is required")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.NewAppError(apperrors.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		}
		return apperrors.NewAppError(apperrors.ErrBadRequest, http.StatusBadRequest, "invalid JSON format", err.Error())
	}
	return nil
}

// GetClientIP returns the remote address without its port. Forwarding
// headers are not consulted here; when the server trusts its proxy, the
// RealIP middleware has already rewritten RemoteAddr.
func GetClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
