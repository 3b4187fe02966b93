package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voiceagent-platform/internal/agents"
)

func (h Handlers) ListAgents(c *gin.Context) {
	uid, ok := identity(c)
	if !ok {
		return
	}
	out, err := h.Agents.List(c.Request.Context(), uid)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agents": out})
}

func (h Handlers) GetAgent(c *gin.Context) {
	uid, ok := identity(c)
	if !ok {
		return
	}
	a, err := h.Agents.Get(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

type draftRequest struct {
	AgentID string           `json:"agent_id,omitempty"`
	Form    agents.FormState `json:"form"`
}

func (h Handlers) SaveDraft(c *gin.Context) {
	uid, ok := identity(c)
	if !ok {
		return
	}
	var req draftRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.Agents.SaveDraft(c.Request.Context(), uid, req.AgentID, req.Form)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

type submitRequest struct {
	AgentID string           `json:"agent_id,omitempty"`
	Form    agents.FormState `json:"form"`
}

func (h Handlers) SubmitAgent(c *gin.Context) {
	uid, ok := identity(c)
	if !ok {
		return
	}
	var req submitRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.Agents.Submit(c.Request.Context(), uid, req.AgentID, req.Form)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h Handlers) DeleteAgent(c *gin.Context) {
	uid, ok := identity(c)
	if !ok {
		return
	}
	if err := h.Agents.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		abortError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type validateFormRequest struct {
	Form agents.FormState `json:"form"`
}

// ValidateForm returns the per-section completeness and the progress
// percentage the wizard's indicator renders.
func (h Handlers) ValidateForm(c *gin.Context) {
	var req validateFormRequest
	if !bindJSON(c, &req) {
		return
	}
	sections := map[string]bool{}
	for _, s := range []agents.Section{agents.SectionDetails, agents.SectionVoice, agents.SectionSettings, agents.SectionSchedules} {
		sections[string(s)] = agents.SectionComplete(req.Form, s)
	}
	c.JSON(http.StatusOK, gin.H{
		"sections":           sections,
		"completion_percent": agents.CompletionPercent(req.Form),
		"form_valid":         agents.FormValid(req.Form),
	})
}

type autofillRequest struct {
	PromptID string           `json:"prompt_id"`
	Form     agents.FormState `json:"form"`
}

// Autofill merges a saved prompt into the wizard form and bumps the
// prompt's usage counter.
func (h Handlers) Autofill(c *gin.Context) {
	uid, ok := identity(c)
	if !ok {
		return
	}
	var req autofillRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Prompts.Get(c.Request.Context(), uid, req.PromptID)
	if err != nil {
		abortError(c, err)
		return
	}
	merged := agents.ApplyPrompt(req.Form, p)

	// Usage counting never blocks the merge.
	_ = h.Prompts.MarkUsed(c.Request.Context(), p.ID)

	c.JSON(http.StatusOK, gin.H{"form": merged})
}
