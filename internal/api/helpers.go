package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forkline/forkline/backend/internal/agent"
	"github.com/forkline/forkline/backend/internal/secrets"
)

// currentUserID reads the authenticated user from the request context.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return uuid.Nil, false
	}
	return userID, true
}

// pathID parses a UUID path parameter, responding 400 on garbage.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// respondGenerationError maps pipeline failures to client responses.
// Internal detail is logged, never leaked: schema failures and provider
// outages both surface as an opaque generation failure.
func respondGenerationError(c *gin.Context, component string, err error) {
	var schemaErr *agent.SchemaError
	var credErr *secrets.CredentialError
	var tokenErr *secrets.TokenError

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &credErr), errors.As(err, &tokenErr):
		log.Printf("[%s] Provider credential failure: %v", component, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "generation failed"})
	case errors.As(err, &schemaErr):
		log.Printf("[%s] Draft failed schema %s: %s (raw: %.200s)", component, schemaErr.Schema, schemaErr.Reason, schemaErr.RawPayload)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generation failed"})
	default:
		log.Printf("[%s] Generation failed: %v", component, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generation failed"})
	}
}
