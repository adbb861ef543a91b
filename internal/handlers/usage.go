// internal/handlers/usage.go
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"qrstudio-backend/internal/middleware"
	"qrstudio-backend/internal/repository"
	"qrstudio-backend/internal/services"
	apperrors "qrstudio-backend/pkg/errors"
	"qrstudio-backend/pkg/utils"
)

const maxUsageHistoryLimit = 1000

type UsageHandler struct {
	usageService services.UsageService
}

func NewUsageHandler(usageService services.UsageService) *UsageHandler {
	return &UsageHandler{
		usageService: usageService,
	}
}

// GetMyUsage returns the caller's usage broken down by method, format and
// content type.
func (h *UsageHandler) GetMyUsage(w http.ResponseWriter, r *http.Request) {
	startDate, endDate := parseDateRange(r)
	identity := middleware.IdentityFromContext(r.Context())

	summary, err := h.usageService.GetUserSummary(r.Context(), identity.Subject, startDate, endDate)
	if err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}
	utils.SendJSONResponse(w, r, http.StatusOK, summary)
}

func (h *UsageHandler) GetMyUsageHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 50)
	skip := parseIntQuery(r, "skip", 0)
	if limit < 1 || limit > maxUsageHistoryLimit || skip < 0 {
		utils.SendErrorResponse(w, r, apperrors.NewValidationError([]string{"limit must be between 1 and 1000 and skip must not be negative"}))
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	history, err := h.usageService.GetUserUsageHistory(r.Context(), identity.Subject, limit, skip)
	if err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}

	utils.SendJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"history": history,
		"limit":   limit,
		"skip":    skip,
	})
}

// GetGlobalStats aggregates every caller's usage by ?group_by=, defaulting to
// the rendering method.
func (h *UsageHandler) GetGlobalStats(w http.ResponseWriter, r *http.Request) {
	groupBy := r.URL.Query().Get("group_by")
	if groupBy == "" {
		groupBy = repository.GroupByMethod
	}
	startDate, endDate := parseDateRange(r)

	stats, err := h.usageService.GetGlobalStats(r.Context(), groupBy, startDate, endDate)
	if err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}

	utils.SendJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"group_by": groupBy,
		"stats":    stats,
		"date_range": map[string]interface{}{
			"start_date": startDate,
			"end_date":   endDate,
		},
	})
}

// parseDateRange reads start_date and end_date as YYYY-MM-DD; end_date
// covers the whole day. Malformed dates are ignored.
func parseDateRange(r *http.Request) (*time.Time, *time.Time) {
	var startDate, endDate *time.Time

	if startStr := r.URL.Query().Get("start_date"); startStr != "" {
		if parsed, err := time.Parse(time.DateOnly, startStr); err == nil {
			startDate = &parsed
		}
	}

	if endStr := r.URL.Query().Get("end_date"); endStr != "" {
		if parsed, err := time.Parse(time.DateOnly, endStr); err == nil {
			endTime := parsed.Add(24*time.Hour - time.Nanosecond)
			endDate = &endTime
		}
	}

	return startDate, endDate
}

func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	if str := r.URL.Query().Get(key); str != "" {
		if val, err := strconv.Atoi(str); err == nil {
			return val
		}
	}
	return defaultValue
}
