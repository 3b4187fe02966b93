// Package httpapi groups the HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"voiceagent-platform/internal/agents"
	"voiceagent-platform/internal/auth"
	"voiceagent-platform/internal/calls"
	"voiceagent-platform/internal/credits"
	"voiceagent-platform/internal/knowledge"
	"voiceagent-platform/internal/numbers"
	"voiceagent-platform/internal/prompts"
	"voiceagent-platform/internal/webhooks"
)

type Handlers struct {
	Auth      *auth.Service
	Agents    *agents.Service
	Numbers   *numbers.Service
	Prompts   *prompts.Service
	Credits   *credits.Service
	Calls     *calls.Service
	Knowledge *knowledge.Service
}

// abortError maps service errors onto HTTP statuses. The duplicate-number
// error carries its reconciliation branch into the response body so the UI
// can offer (or refuse) the update-existing flow.
func abortError(c *gin.Context, err error) {
	var dup *numbers.DuplicateError
	if errors.As(err, &dup) {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":                dup.Error(),
			"phone_number":         dup.PhoneNumber,
			"same_user":            dup.SameUser,
			"existing_id":          dup.ExistingID,
			"assigned_to_agent_id": dup.AssignedToAgentID,
		})
		return
	}

	switch {
	case errors.Is(err, agents.ErrNotFound),
		errors.Is(err, numbers.ErrNotFound),
		errors.Is(err, prompts.ErrNotFound),
		errors.Is(err, knowledge.ErrNotFound),
		errors.Is(err, calls.ErrNotFound),
		errors.Is(err, credits.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, agents.ErrNotOwner),
		errors.Is(err, numbers.ErrNotOwner),
		errors.Is(err, prompts.ErrNotOwner),
		errors.Is(err, knowledge.ErrNotOwner):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, agents.ErrInsufficientCredits),
		errors.Is(err, credits.ErrInsufficientCredits):
		c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, agents.ErrSubmitInFlight),
		errors.Is(err, agents.ErrDuplicateSubmit),
		errors.Is(err, agents.ErrNumberTaken),
		errors.Is(err, numbers.ErrPhoneNumberExists):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, agents.ErrFormInvalid),
		errors.Is(err, agents.ErrNumberNotSelected),
		errors.Is(err, agents.ErrNumberNotResolvable),
		errors.Is(err, numbers.ErrFormInvalid),
		errors.Is(err, prompts.ErrInvalidArgument),
		errors.Is(err, credits.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, webhooks.ErrTimeout):
		c.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{"error": "external service timed out"})
	case errors.Is(err, webhooks.ErrNotConfigured),
		errors.Is(err, prompts.ErrNotConfigured):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "integration not configured"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// identity pulls the authenticated user id, aborting with 401 when absent.
func identity(c *gin.Context) (string, bool) {
	uid, err := auth.UserID(c.Request.Context())
	if err != nil || uid == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return "", false
	}
	return uid, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return false
	}
	return true
}
