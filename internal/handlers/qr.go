// internal/handlers/qr.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"qrstudio-backend/internal/generator"
	"qrstudio-backend/internal/middleware"
	"qrstudio-backend/internal/models"
	"qrstudio-backend/internal/services"
	apperrors "qrstudio-backend/pkg/errors"
	"qrstudio-backend/pkg/utils"
)

type QRHandler struct {
	qrService services.QRService
	logger    *zap.Logger
}

func NewQRHandler(qrService services.QRService) *QRHandler {
	return &QRHandler{
		qrService: qrService,
		logger:    zap.L(),
	}
}

func clientInfo(r *http.Request) models.ClientInfo {
	return models.ClientInfo{
		RequestID: chimiddleware.GetReqID(r.Context()),
		IPAddress: utils.GetClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

func (h *QRHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}

	caps := generator.DetectCapabilities(r.UserAgent(), req.DevicePixelRatio)
	identity := middleware.IdentityFromContext(r.Context())

	response, err := h.qrService.Generate(r.Context(), identity, &req, caps, clientInfo(r))
	if err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}

	h.logger.Debug("QR code generated",
		zap.String("method", string(response.Result.Method)),
		zap.String("content_type", string(response.ContentType)),
		zap.Bool("cached", response.Result.Cached),
		zap.Bool("guest", identity.IsGuest()))

	utils.SendJSONResponse(w, r, http.StatusOK, response)
}

func (h *QRHandler) Detect(w http.ResponseWriter, r *http.Request) {
	var req models.DetectRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}
	utils.SendJSONResponse(w, r, http.StatusOK, models.DetectResponse{Type: h.qrService.Detect(req.Text)})
}

// Parse falls back to detection when the type hint is empty or unknown.
func (h *QRHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req models.ParseRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}
	utils.SendJSONResponse(w, r, http.StatusOK, h.qrService.Parse(req.Text, req.Type))
}

func (h *QRHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req models.ValidateRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}
	utils.SendJSONResponse(w, r, http.StatusOK, h.qrService.Validate(req.Text, req.Type))
}

func (h *QRHandler) Compose(w http.ResponseWriter, r *http.Request) {
	var req models.ComposeRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}
	response, err := h.qrService.Compose(&req)
	if err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}
	utils.SendJSONResponse(w, r, http.StatusOK, response)
}

// ExportPDF streams the document as an attachment.
func (h *QRHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	var req models.ExportPDFRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}

	pdf, err := h.qrService.ExportPDF(r.Context(), middleware.IdentityFromContext(r.Context()), &req, clientInfo(r))
	if err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}

	filename := fmt.Sprintf("qrcode-%d.pdf", time.Now().UnixMilli())
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		h.logger.Warn("Failed to write PDF response", zap.Error(err))
	}
}

// Render is the rendering endpoint used by server-side generation. Failures
// are reported in the body with success=false.
func (h *QRHandler) Render(w http.ResponseWriter, r *http.Request) {
	var req generator.RenderEndpointRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.SendJSONResponse(w, r, http.StatusBadRequest, generator.RenderEndpointResponse{Error: "invalid JSON format"})
		return
	}

	result, err := h.qrService.Render(r.Context(), &req)
	if err != nil {
		utils.SendJSONResponse(w, r, apperrors.GetStatusCode(err), generator.RenderEndpointResponse{Error: err.Error()})
		return
	}

	utils.SendJSONResponse(w, r, http.StatusOK, generator.RenderEndpointResponse{
		Success:   true,
		DataURL:   result.DataURL,
		Size:      result.Size,
		Timestamp: result.Timestamp,
		Method:    result.Method,
	})
}
