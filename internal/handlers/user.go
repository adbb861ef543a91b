// internal/handlers/user.go
package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"qrstudio-backend/internal/middleware"
	"qrstudio-backend/internal/services"
	"qrstudio-backend/pkg/utils"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// EnsureUser creates or refreshes the caller's account record before the
// request is handled. It must run after RequireAuth.
func (h *UserHandler) EnsureUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.IdentityFromContext(r.Context())
		if _, err := h.userService.EnsureUser(r.Context(), identity); err != nil {
			zap.L().Error("Failed to ensure user", zap.String("user_id", identity.Subject), zap.Error(err))
			utils.SendErrorResponse(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Me returns the caller's profile.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	user, err := h.userService.GetProfile(r.Context(), identity.Subject)
	if err != nil {
		utils.SendErrorResponse(w, r, err)
		return
	}
	utils.SendJSONResponse(w, r, http.StatusOK, user)
}
