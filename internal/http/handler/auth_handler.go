package handler

import (
	"net/http"

	"github.com/merkur-erp/erp-api/internal/auth"
	"github.com/merkur-erp/erp-api/internal/domain"
	"go.uber.org/zap"
)

type AuthHandler struct {
	logger *zap.Logger
}

func NewAuthHandler(logger *zap.Logger) *AuthHandler {
	return &AuthHandler{logger: logger}
}

// Me godoc
// @Summary Get current authenticated user
// @Description Returns the current authenticated user with the roles decoded from the token
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.AuthUserDTO
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	dto := domain.AuthUserDTO{
		ID:    userCtx.UserID.String(),
		Name:  userCtx.DisplayName,
		Email: userCtx.Email,
		Roles: userCtx.RolesAsStrings(),
	}

	respondJSON(w, http.StatusOK, dto)
}
