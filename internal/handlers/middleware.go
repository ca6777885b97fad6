package handlers

import (
	"net/http"
	"strings"

	"github.com/Petroo-2/marnstack4/internal/models"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// identityMiddleware is the authorization boundary entry point: it rejects
// requests without a valid token and attaches the verified identity to the
// context. No protected handler runs without passing through here.
func (h *Handler) identityMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	ident, err := h.services.VerifyToken(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	c.Set(identityKey, ident)
	c.Next()
}

// identityFromContext returns the identity the middleware attached. The bool
// is false only if a protected handler was wired without the middleware.
func identityFromContext(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	ident, ok := v.(models.Identity)
	return ident, ok
}
