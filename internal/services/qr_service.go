// internal/services/qr_service.go
package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"qrstudio-backend/internal/content"
	"qrstudio-backend/internal/export"
	"qrstudio-backend/internal/generator"
	"qrstudio-backend/internal/models"
	apperrors "qrstudio-backend/pkg/errors"
)

const (
	OperationGenerate = "generate"
	OperationExport   = "export_pdf"
	OperationRender   = "render"
)

type QRService interface {
	Generate(ctx context.Context, identity models.Identity, req *models.GenerateRequest, caps generator.Capabilities, client models.ClientInfo) (*models.GenerateResponse, error)
	Detect(text string) content.ContentType
	Parse(text, hint string) content.Parsed
	Validate(text, hint string) content.Report
	Compose(req *models.ComposeRequest) (*models.ComposeResponse, error)
	ExportPDF(ctx context.Context, identity models.Identity, req *models.ExportPDFRequest, client models.ClientInfo) ([]byte, error)
	// Render serves the rendering endpoint. It never calls a remote renderer.
	Render(ctx context.Context, req *generator.RenderEndpointRequest) (*generator.Result, error)
}

type qrService struct {
	generator      *generator.Generator
	historyService HistoryService
	usageService   UsageService
	logger         *zap.Logger
}

func NewQRService(gen *generator.Generator, historyService HistoryService, usageService UsageService) QRService {
	return &qrService{
		generator:      gen,
		historyService: historyService,
		usageService:   usageService,
		logger:         zap.L(),
	}
}

func (s *qrService) Generate(ctx context.Context, identity models.Identity, req *models.GenerateRequest, caps generator.Capabilities, client models.ClientInfo) (*models.GenerateResponse, error) {
	start := time.Now()
	contentType := content.Detect(req.Text)

	result, err := s.generator.Generate(ctx, req.Text, req.Options, caps, req.CacheEnabled())

	usage := &models.UsageTrackingRequest{
		UserID:      identity.Subject,
		Operation:   OperationGenerate,
		ContentType: string(contentType),
		Format:      string(req.Options.Resolve().Format),
		Success:     err == nil,
		RequestID:   client.RequestID,
		IPAddress:   client.IPAddress,
		UserAgent:   client.UserAgent,
		ProcessTime: time.Since(start).Milliseconds(),
	}
	if err != nil {
		// Validation failures are the caller's mistake, not usage.
		if !apperrors.IsErrorType(err, apperrors.ErrValidation) {
			usage.ErrorMsg = err.Error()
			s.usageService.TrackAsync(usage)
		}
		return nil, err
	}
	usage.Method = string(result.Method)
	usage.CacheHit = result.Cached
	s.usageService.TrackAsync(usage)

	resp := &models.GenerateResponse{Result: result, ContentType: contentType}
	if req.Save && !identity.IsGuest() {
		saved, err := s.historyService.Save(ctx, identity.Subject, req.Text, contentType, req.Title, models.SettingsFromConfig(req.Options.Resolve()))
		if err != nil {
			s.logger.Error("Failed to save QR history",
				zap.String("user_id", identity.Subject),
				zap.Error(err))
		} else {
			resp.History = saved
		}
	}
	return resp, nil
}

func (s *qrService) Detect(text string) content.ContentType {
	return content.Detect(text)
}

func (s *qrService) Parse(text, hint string) content.Parsed {
	contentType, ok := content.ParseContentType(hint)
	if !ok {
		contentType = content.Detect(text)
	}
	return content.Parse(text, contentType)
}

func (s *qrService) Validate(text, hint string) content.Report {
	return content.ValidateAndOptimize(text, hint)
}

func (s *qrService) Compose(req *models.ComposeRequest) (*models.ComposeResponse, error) {
	text, err := composeText(req)
	if err != nil {
		return nil, err
	}
	report := content.ValidateAndOptimize(text, string(req.Type))
	if report.IsValid && report.OptimizedFormat != "" {
		text = report.OptimizedFormat
	}
	return &models.ComposeResponse{Text: text, Report: report}, nil
}

func composeText(req *models.ComposeRequest) (string, error) {
	missing := func() error {
		return apperrors.NewValidationError([]string{fmt.Sprintf("Fields for content type %q are required", req.Type)})
	}

	switch req.Type {
	case content.TypeWiFi:
		if req.WiFi == nil {
			return "", missing()
		}
		hidden := ""
		if req.WiFi.Hidden {
			hidden = "true"
		}
		return content.BuildWiFi(req.WiFi.Security, req.WiFi.SSID, req.WiFi.Password, hidden), nil
	case content.TypeEmail:
		if req.Email == nil {
			return "", missing()
		}
		return content.BuildEmail(req.Email.Email, req.Email.Subject, req.Email.Body), nil
	case content.TypePhone:
		if req.Phone == nil {
			return "", missing()
		}
		return content.BuildPhone(req.Phone.Phone), nil
	case content.TypeSMS:
		if req.SMS == nil {
			return "", missing()
		}
		return content.BuildSMS(req.SMS.Phone, req.SMS.Message), nil
	case content.TypeLocation:
		if req.Location == nil {
			return "", missing()
		}
		return content.BuildLocation(req.Location.Latitude, req.Location.Longitude, req.Location.Query), nil
	case content.TypeURL:
		if req.URL == nil {
			return "", missing()
		}
		return req.URL.URL, nil
	case content.TypeVCard:
		if len(req.VCard) == 0 {
			return "", missing()
		}
		return content.BuildVCard(req.VCard), nil
	case content.TypeText:
		if req.Text == nil {
			return "", missing()
		}
		return req.Text.Text, nil
	default:
		return "", apperrors.NewValidationError([]string{fmt.Sprintf("Content type %q cannot be composed", req.Type)})
	}
}

func (s *qrService) ExportPDF(ctx context.Context, identity models.Identity, req *models.ExportPDFRequest, client models.ClientInfo) ([]byte, error) {
	start := time.Now()
	opts := req.Options
	if f := opts.Resolve().Format; f != generator.FormatJPEG {
		opts.Format = generator.FormatPNG
	}

	result, err := s.generator.RenderLocal(ctx, req.Text, opts)
	if err != nil {
		return nil, err
	}
	mimeType, data, err := generator.DecodeDataURL(result.DataURL)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrGeneration, http.StatusInternalServerError, "QR code generation failed")
	}

	cfg := opts.Resolve()
	imageType := "PNG"
	if mimeType == generator.FormatJPEG.MimeType() {
		imageType = "JPG"
	}
	pdf, err := export.RenderPDF(data, export.PDFOptions{
		Title:          req.Title,
		Caption:        req.Text,
		ImageType:      imageType,
		EnablePassword: cfg.EnablePDFPassword,
		Password:       cfg.PDFPassword,
		CreatedAt:      start,
	})

	s.usageService.TrackAsync(&models.UsageTrackingRequest{
		UserID:      identity.Subject,
		Operation:   OperationExport,
		ContentType: string(content.Detect(req.Text)),
		Method:      string(result.Method),
		Format:      "pdf",
		Success:     err == nil,
		RequestID:   client.RequestID,
		IPAddress:   client.IPAddress,
		UserAgent:   client.UserAgent,
		ProcessTime: time.Since(start).Milliseconds(),
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrGeneration, http.StatusInternalServerError, "PDF export failed")
	}
	return pdf, nil
}

func (s *qrService) Render(ctx context.Context, req *generator.RenderEndpointRequest) (*generator.Result, error) {
	margin := req.Options.Margin
	return s.generator.RenderLocal(ctx, req.Text, generator.Options{
		Size:                 req.Options.Size,
		Margin:               &margin,
		ErrorCorrectionLevel: req.Options.ErrorCorrectionLevel,
		Foreground:           req.Options.Foreground,
		Background:           req.Options.Background,
		Format:               req.Options.Format,
	})
}
