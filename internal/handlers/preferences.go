// internal/handlers/preferences.go
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"qrstudio-backend/internal/middleware"
	"qrstudio-backend/internal/models"
	"qrstudio-backend/internal/services"
	"qrstudio-backend/pkg/utils"
)

type PreferencesHandler struct {
	preferencesService services.PreferencesService
}

func NewPreferencesHandler(preferencesService services.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{
		preferencesService: preferencesService,
	}
}

func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	prefs, err := h.preferencesService.Get(r.Context(), identity.Subject)
	if err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}
	utils.SendJSONResponse(w, r, http.StatusOK, prefs)
}

// UpdateDefaults replaces the default settings; presets are kept.
func (h *PreferencesHandler) UpdateDefaults(w http.ResponseWriter, r *http.Request) {
	var settings models.QRSettings
	if err := utils.DecodeJSONBody(r, &settings); err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	prefs, err := h.preferencesService.UpdateDefaults(r.Context(), identity.Subject, settings)
	if err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}
	utils.SendJSONResponse(w, r, http.StatusOK, prefs)
}

func (h *PreferencesHandler) AddPreset(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePresetRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	preset, err := h.preferencesService.AddPreset(r.Context(), identity.Subject, &req)
	if err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}
	utils.SendJSONResponse(w, r, http.StatusCreated, preset)
}

func (h *PreferencesHandler) DeletePreset(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if err := h.preferencesService.DeletePreset(r.Context(), identity.Subject, chi.URLParam(r, "presetId")); err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}
	utils.SendJSONResponse(w, r, http.StatusOK, models.DeleteResponse{Message: "Preset deleted", Deleted: 1})
}
