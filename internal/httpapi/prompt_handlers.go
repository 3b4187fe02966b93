package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voiceagent-platform/internal/prompts"
)

func (h Handlers) ListPrompts(c *gin.Context) {
	uid, ok := identity(c)
	if !ok {
		return
	}
	out, err := h.Prompts.List(c.Request.Context(), uid)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompts": out})
}

func (h Handlers) GetPrompt(c *gin.Context) {
	uid, ok := identity(c)
	if !ok {
		return
	}
	p, err := h.Prompts.Get(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h Handlers) CreatePrompt(c *gin.Context) {
	uid, ok := identity(c)
	if !ok {
		return
	}
	var p prompts.AIPrompt
	if !bindJSON(c, &p) {
		return
	}
	created, err := h.Prompts.Create(c.Request.Context(), uid, p)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h Handlers) UpdatePrompt(c *gin.Context) {
	uid, ok := identity(c)
	if !ok {
		return
	}
	var p prompts.AIPrompt
	if !bindJSON(c, &p) {
		return
	}
	p.ID = c.Param("id")
	updated, err := h.Prompts.Update(c.Request.Context(), uid, p)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h Handlers) DeletePrompt(c *gin.Context) {
	uid, ok := identity(c)
	if !ok {
		return
	}
	if err := h.Prompts.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		abortError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Handlers) GeneratePrompt(c *gin.Context) {
	if _, ok := identity(c); !ok {
		return
	}
	var profile prompts.AgentPromptProfile
	if !bindJSON(c, &profile) {
		return
	}
	gen, err := h.Prompts.Generate(c.Request.Context(), profile)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gen)
}

type generateFromTextRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h Handlers) GeneratePromptFromText(c *gin.Context) {
	if _, ok := identity(c); !ok {
		return
	}
	var req generateFromTextRequest
	if !bindJSON(c, &req) {
		return
	}
	gen, err := h.Prompts.GenerateFromText(c.Request.Context(), req.Text)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gen)
}

type formatPromptRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

func (h Handlers) FormatPrompt(c *gin.Context) {
	if _, ok := identity(c); !ok {
		return
	}
	var req formatPromptRequest
	if !bindJSON(c, &req) {
		return
	}
	formatted, err := h.Prompts.Format(c.Request.Context(), req.Prompt)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompt": formatted})
}

type extractProfileRequest struct {
	Document prompts.DocumentRef        `json:"document" binding:"required"`
	Existing prompts.AgentPromptProfile `json:"existing"`
}

// ExtractProfile pulls structured agent fields out of an uploaded document
// and merges them over the profile the wizard already holds.
func (h Handlers) ExtractProfile(c *gin.Context) {
	if _, ok := identity(c); !ok {
		return
	}
	var req extractProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.Prompts.ProfileFromDocument(c.Request.Context(), req.Document, req.Existing)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
