package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voiceagent-platform/internal/credits"
)

func (h Handlers) GetBalance(c *gin.Context) {
	uid, ok := identity(c)
	if !ok {
		return
	}
	bal, err := h.Credits.GetBalance(c.Request.Context(), uid)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, bal)
}

type manualCreditRequest struct {
	AmountMinor    int64  `json:"amount_minor" binding:"required"`
	Currency       string `json:"currency"`
	ExternalRef    string `json:"external_ref"`
	IdempotencyKey string `json:"idempotency_key"`
	Metadata       string `json:"metadata"`
}

// ManualCredit is the admin top-up endpoint; the target user comes from the
// path, not the token.
func (h Handlers) ManualCredit(c *gin.Context) {
	if _, ok := identity(c); !ok {
		return
	}
	var req manualCreditRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, bal, err := h.Credits.Credit(c.Request.Context(), c.Param("userID"), credits.CreditRequest{
		AmountMinor:    req.AmountMinor,
		Currency:       req.Currency,
		ExternalRef:    req.ExternalRef,
		IdempotencyKey: req.IdempotencyKey,
		Metadata:       req.Metadata,
	})
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry, "balance": bal})
}
