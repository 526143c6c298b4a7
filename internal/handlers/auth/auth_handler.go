// internal/handlers/auth/auth_handler.go
package auth

import (
	"context"
	"net/http"
	"time"

	"crm-insight/internal/domain/auth"
	"crm-insight/internal/middleware"
	"crm-insight/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenRevoker is satisfied by *session.Revocations.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
}

type AuthHandler struct {
	revoker TokenRevoker
	logger  *zap.Logger
}

func NewAuthHandler(revoker TokenRevoker, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		revoker: revoker,
		logger:  logger,
	}
}

// GetMe returns the authenticated operator (requires auth)
func (h *AuthHandler) GetMe(c *gin.Context) {
	jti, _ := middleware.GetJTI(c)
	response.Success(c, http.StatusOK, "operator retrieved", auth.OperatorProfile{
		OperatorID: middleware.MustGetOperatorID(c),
		Name:       middleware.GetOperatorName(c),
		Roles:      middleware.GetRoles(c),
		TokenID:    jti,
		ExpiresAt:  middleware.GetTokenExpiry(c),
	})
}

// Logout revokes the presented token until it expires (requires auth)
func (h *AuthHandler) Logout(c *gin.Context) {
	operatorID := middleware.MustGetOperatorID(c)
	jti, ok := middleware.GetJTI(c)
	if !ok || jti == "" {
		response.Error(c, http.StatusBadRequest, "token cannot be revoked", nil)
		return
	}

	if err := h.revoker.Revoke(c.Request.Context(), jti, middleware.GetTokenExpiry(c)); err != nil {
		h.logger.Error("logout failed",
			zap.String("operator_id", operatorID),
			zap.Error(err),
		)
		response.Error(c, http.StatusInternalServerError, "logout failed", err)
		return
	}

	h.logger.Info("operator logged out", zap.String("operator_id", operatorID), zap.String("jti", jti))
	response.Success(c, http.StatusOK, "logout successful", nil)
}
