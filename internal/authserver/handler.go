// Package authserver serves the Beams auth endpoint: device SDKs call it with
// the signed-in user's session and receive a Beams token for that user.
package authserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmerrifield20/beams/internal/identity"
	"github.com/jmerrifield20/beams/pkg/beams"
	"go.uber.org/zap"
)

// TokenGenerator is satisfied by *beams.Client.
type TokenGenerator interface {
	GenerateToken(userID string) (*beams.Token, error)
}

// AuthHandler issues Beams tokens to authenticated users.
type AuthHandler struct {
	tokens  TokenGenerator
	metrics *Metrics
	logger  *zap.Logger
}

// NewAuthHandler creates an AuthHandler. A nil metrics gets a fresh registry.
func NewAuthHandler(tokens TokenGenerator, metrics *Metrics, logger *zap.Logger) *AuthHandler {
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &AuthHandler{tokens: tokens, metrics: metrics, logger: logger}
}

// Register wires the auth endpoint at path behind session authentication.
func (h *AuthHandler) Register(r gin.IRoutes, path string, sessions identity.Verifier) {
	r.GET(path, identity.RequireSession(sessions), h.BeamsAuth)
}

// BeamsAuth handles GET {path}?user_id=<id>.
//
//	Response: {"token":"eyJhbGciOi..."}
//
// The session established by RequireSession must belong to user_id; a user
// can only obtain a token for themselves.
func (h *AuthHandler) BeamsAuth(c *gin.Context) {
	var raw any
	if v, ok := c.GetQuery("user_id"); ok {
		raw = v
	}
	userID, err := beams.ValidateTokenUserID(raw)
	if err != nil {
		h.metrics.tokenRequest(outcomeInvalidUserID)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if sessionUser := identity.SessionUserFromCtx(c); sessionUser != userID {
		h.metrics.tokenRequest(outcomeSessionMismatch)
		h.logger.Warn("beams auth: user mismatch",
			zap.String("session_user", sessionUser),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user_id does not match the authenticated session"})
		return
	}

	tok, err := h.tokens.GenerateToken(userID)
	if err != nil {
		var be *beams.Error
		if errors.As(err, &be) && be.IsValidation() {
			h.metrics.tokenRequest(outcomeInvalidUserID)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.metrics.tokenRequest(outcomeSigningFailed)
		h.logger.Error("beams auth: generate token", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	h.metrics.tokenRequest(outcomeIssued)
	h.logger.Info("beams token issued", zap.String("user_id", userID))
	c.JSON(http.StatusOK, tok)
}
