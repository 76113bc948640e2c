package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ActorAuthConfig holds configuration for the actor authentication middleware
type ActorAuthConfig struct {
	// Required rejects requests without a resolved actor when true
	Required bool

	// DefaultActorID is used when no actor header is present and Required is false
	DefaultActorID string
}

// DefaultActorAuthConfig returns the strict default: every core operation
// needs a resolved actor identity before any business check runs
func DefaultActorAuthConfig() *ActorAuthConfig {
	return &ActorAuthConfig{Required: true}
}

// ActorAuth extracts the acting user from request headers and stores it in
// the Gin context. Requests without an actor are rejected with 401 when the
// config requires one.
func ActorAuth(config *ActorAuthConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultActorAuthConfig()
	}

	return func(c *gin.Context) {
		actorID := c.GetHeader(HeaderActorID)
		if actorID == "" && !config.Required {
			actorID = config.DefaultActorID
		}

		if actorID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "actor identity is required",
				"code":    "UNAUTHORIZED",
			})
			return
		}

		c.Set(ContextKeyActorID, actorID)

		if plantID := c.GetHeader(HeaderPlantID); plantID != "" {
			c.Set("plantId", plantID)
		}

		c.Next()
	}
}

// GetActorID returns the resolved actor from the Gin context
func GetActorID(c *gin.Context) string {
	actorID, _ := c.Get(ContextKeyActorID)
	id, _ := actorID.(string)
	return id
}
