package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"voiceagent-platform/internal/calls"
)

func (h Handlers) ListCalls(c *gin.Context) {
	uid, ok := identity(c)
	if !ok {
		return
	}
	f := calls.ListFilter{
		AgentID: c.Query("agent_id"),
		Status:  calls.CallStatus(c.Query("status")),
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		f.Limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
			return
		}
		f.Offset = n
	}
	out, err := h.Calls.List(c.Request.Context(), uid, f)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": out})
}

func (h Handlers) GetCall(c *gin.Context) {
	uid, ok := identity(c)
	if !ok {
		return
	}
	call, err := h.Calls.Get(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, call)
}

func (h Handlers) CallStatistics(c *gin.Context) {
	uid, ok := identity(c)
	if !ok {
		return
	}
	stats, err := h.Calls.Statistics(c.Request.Context(), uid)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
