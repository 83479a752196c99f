package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

const (
	userIDHeader = "X-User-ID"

	// ContextUserID is the gin context key holding the caller's user ID.
	ContextUserID = "userID"
	// ContextProfile is the gin context key holding the caller's profile.
	ContextProfile = "profile"
)

// AuthMiddleware returns middleware that resolves the X-User-ID header
// to a profile. Unknown users get 401; deactivated accounts get 403;
// banned users may read but any mutating method gets 403.
func AuthMiddleware(profileRepo repository.ProfileRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(userIDHeader)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + userIDHeader + " header"})
			return
		}

		profile, err := profileRepo.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}

		if profile.Deactivated {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account is deactivated"})
			return
		}

		if profile.Banned && c.Request.Method != http.MethodGet {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account is banned"})
			return
		}

		c.Set(ContextUserID, profile.ID)
		c.Set(ContextProfile, profile)
		c.Next()
	}
}

// ProfileFromContext returns the authenticated profile set by AuthMiddleware.
func ProfileFromContext(c *gin.Context) (*domain.Profile, bool) {
	v, ok := c.Get(ContextProfile)
	if !ok {
		return nil, false
	}
	profile, ok := v.(*domain.Profile)
	return profile, ok
}
