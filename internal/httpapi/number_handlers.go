package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voiceagent-platform/internal/numbers"
)

func (h Handlers) ListNumbers(c *gin.Context) {
	uid, ok := identity(c)
	if !ok {
		return
	}
	out, err := h.Numbers.List(c.Request.Context(), uid)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"numbers": out})
}

func (h Handlers) ImportNumber(c *gin.Context) {
	uid, ok := identity(c)
	if !ok {
		return
	}
	var form numbers.ImportForm
	if !bindJSON(c, &form) {
		return
	}
	n, err := h.Numbers.Import(c.Request.Context(), uid, form)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

// ConfirmNumberUpdate runs the update-existing reconciliation the import
// duplicate dialog confirmed.
func (h Handlers) ConfirmNumberUpdate(c *gin.Context) {
	uid, ok := identity(c)
	if !ok {
		return
	}
	var form numbers.ImportForm
	if !bindJSON(c, &form) {
		return
	}
	n, err := h.Numbers.ConfirmUpdate(c.Request.Context(), uid, c.Param("id"), form)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}
