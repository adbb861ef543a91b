// internal/handlers/history.go
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"qrstudio-backend/internal/content"
	"qrstudio-backend/internal/middleware"
	"qrstudio-backend/internal/models"
	"qrstudio-backend/internal/services"
	apperrors "qrstudio-backend/pkg/errors"
	"qrstudio-backend/pkg/utils"
)

type HistoryHandler struct {
	historyService services.HistoryService
}

func NewHistoryHandler(historyService services.HistoryService) *HistoryHandler {
	return &HistoryHandler{
		historyService: historyService,
	}
}

// parseHistoryQuery reads ?before=&limit=&favorites=&type= and reports every
// malformed parameter at once.
func parseHistoryQuery(r *http.Request) (models.HistoryQuery, error) {
	var (
		query    models.HistoryQuery
		problems []string
	)
	values := r.URL.Query()

	if before := values.Get("before"); before != "" {
		t, err := time.Parse(time.RFC3339Nano, before)
		if err != nil {
			problems = append(problems, "before must be an RFC 3339 timestamp")
		}
		query.Before = t
	}
	if limit := values.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			problems = append(problems, "limit must be a positive integer")
		}
		query.Limit = n
	}
	if favorites := values.Get("favorites"); favorites != "" {
		b, err := strconv.ParseBool(favorites)
		if err != nil {
			problems = append(problems, "favorites must be true or false")
		}
		query.FavoritesOnly = b
	}
	if contentType := values.Get("type"); contentType != "" {
		ct, ok := content.ParseContentType(contentType)
		if !ok {
			problems = append(problems, "type must be a known content type")
		}
		query.ContentType = ct
	}

	if len(problems) > 0 {
		return models.HistoryQuery{}, apperrors.NewValidationError(problems)
	}
	return query, nil
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	query, err := parseHistoryQuery(r)
	if err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	page, err := h.historyService.List(r.Context(), identity.Subject, query)
	if err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}
	utils.SendJSONResponse(w, r, http.StatusOK, page)
}

func (h *HistoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit := models.DefaultHistoryPageSize
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			utils.SendErrorResponse(w, r, apperrors.NewValidationError([]string{"limit must be a positive integer"}))
			return
		}
		limit = min(n, models.MaxHistoryPageSize)
	}

	identity := middleware.IdentityFromContext(r.Context())
	items, err := h.historyService.Search(r.Context(), identity.Subject, r.URL.Query().Get("q"), limit)
	if err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}
	if items == nil {
		items = []models.QRHistory{}
	}
	utils.SendJSONResponse(w, r, http.StatusOK, items)
}

func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	entry, err := h.historyService.Get(r.Context(), identity.Subject, chi.URLParam(r, "id"))
	if err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}
	utils.SendJSONResponse(w, r, http.StatusOK, entry)
}

func (h *HistoryHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var patch models.HistoryPatch
	if err := utils.DecodeJSONBody(r, &patch); err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	entry, err := h.historyService.Patch(r.Context(), identity.Subject, chi.URLParam(r, "id"), patch)
	if err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}
	utils.SendJSONResponse(w, r, http.StatusOK, entry)
}

func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if err := h.historyService.Delete(r.Context(), identity.Subject, chi.URLParam(r, "id")); err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}
	utils.SendJSONResponse(w, r, http.StatusOK, models.DeleteResponse{Message: "History record deleted", Deleted: 1})
}

func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	deleted, err := h.historyService.Clear(r.Context(), identity.Subject)
	if err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}
	utils.SendJSONResponse(w, r, http.StatusOK, models.DeleteResponse{Message: "History cleared", Deleted: deleted})
}
