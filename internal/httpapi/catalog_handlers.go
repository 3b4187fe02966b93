package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voiceagent-platform/internal/catalog"
)

func (h Handlers) ListVoices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"voices": catalog.Voices()})
}

func (h Handlers) ListTimezones(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"timezones": catalog.Timezones()})
}

func (h Handlers) ListCountryCodes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"country_codes": catalog.CountryCodes()})
}

func (h Handlers) ListKnowledgeBases(c *gin.Context) {
	uid, ok := identity(c)
	if !ok {
		return
	}
	out, err := h.Knowledge.List(c.Request.Context(), uid)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"knowledge_bases": out})
}

func (h Handlers) GetKnowledgeBase(c *gin.Context) {
	uid, ok := identity(c)
	if !ok {
		return
	}
	snap, err := h.Knowledge.Resolve(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
