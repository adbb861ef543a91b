// internal/services/usage_service.go
package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"qrstudio-backend/internal/models"
	"qrstudio-backend/internal/repository"
)

const trackTimeout = 5 * time.Second

type UsageService interface {
	TrackUsage(ctx context.Context, req *models.UsageTrackingRequest) error
	// TrackAsync records usage in the background; failures are logged only.
	TrackAsync(req *models.UsageTrackingRequest)
	// Wait blocks until background tracking has finished.
	Wait()
	GetUserSummary(ctx context.Context, userID string, startDate, endDate *time.Time) (*models.UserUsageSummary, error)
	GetGlobalStats(ctx context.Context, groupBy string, startDate, endDate *time.Time) ([]models.UsageStats, error)
	GetUserUsageHistory(ctx context.Context, userID string, limit, skip int) ([]models.GenerationUsage, error)
}

type usageService struct {
	usageRepo repository.UsageRepository
	logger    *zap.Logger
	wg        sync.WaitGroup
}

func NewUsageService(usageRepo repository.UsageRepository) UsageService {
	return &usageService{
		usageRepo: usageRepo,
		logger:    zap.L(),
	}
}

func (s *usageService) TrackUsage(ctx context.Context, req *models.UsageTrackingRequest) error {
	usage := &models.GenerationUsage{
		UserID:      req.UserID,
		Operation:   req.Operation,
		ContentType: req.ContentType,
		Method:      req.Method,
		Format:      req.Format,
		CacheHit:    req.CacheHit,
		Success:     req.Success,
		ErrorMsg:    req.ErrorMsg,
		RequestID:   req.RequestID,
		IPAddress:   req.IPAddress,
		UserAgent:   req.UserAgent,
		ProcessTime: req.ProcessTime,
	}

	return s.usageRepo.CreateUsage(ctx, usage)
}

func (s *usageService) TrackAsync(req *models.UsageTrackingRequest) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		trackCtx, cancel := context.WithTimeout(context.Background(), trackTimeout)
		defer cancel()

		if err := s.TrackUsage(trackCtx, req); err != nil {
			s.logger.Warn("Failed to track usage",
				zap.String("operation", req.Operation),
				zap.String("request_id", req.RequestID),
				zap.Error(err))
		}
	}()
}

func (s *usageService) Wait() {
	s.wg.Wait()
}

func (s *usageService) GetUserSummary(ctx context.Context, userID string, startDate, endDate *time.Time) (*models.UserUsageSummary, error) {
	summary := &models.UserUsageSummary{UserID: userID}

	groups := []struct {
		by  string
		dst *[]models.UsageStats
	}{
		{repository.GroupByMethod, &summary.ByMethod},
		{repository.GroupByFormat, &summary.ByFormat},
		{repository.GroupByContentType, &summary.ByContentType},
	}
	for _, g := range groups {
		stats, err := s.usageRepo.GetUserStats(ctx, userID, g.by, startDate, endDate)
		if err != nil {
			return nil, err
		}
		*g.dst = stats
	}
	for _, st := range summary.ByMethod {
		summary.TotalCalls += st.TotalCalls
	}
	return summary, nil
}

func (s *usageService) GetGlobalStats(ctx context.Context, groupBy string, startDate, endDate *time.Time) ([]models.UsageStats, error) {
	return s.usageRepo.GetGlobalStats(ctx, groupBy, startDate, endDate)
}

func (s *usageService) GetUserUsageHistory(ctx context.Context, userID string, limit, skip int) ([]models.GenerationUsage, error) {
	return s.usageRepo.GetUserUsageHistory(ctx, userID, limit, skip)
}
