package main

import (
	"voiceagent-platform/internal/httpapi"
	"voiceagent-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")

	// AUTH routes (token issuance) stay outside the auth middleware.
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.GET("/exists", h.CheckUserExists)
	}

	protected := v1.Group("")
	protected.Use(authMW)
	protected.Use(rbac.RequireUser())
	{
		protected.POST("/auth/change-password", h.ChangePassword)

		agents := protected.Group("/agents")
		{
			agents.GET("", h.ListAgents)
			agents.GET("/:id", h.GetAgent)
			agents.POST("/draft", h.SaveDraft)
			agents.POST("/submit", h.SubmitAgent)
			agents.POST("/validate", h.ValidateForm)
			agents.POST("/autofill", h.Autofill)
			agents.DELETE("/:id", h.DeleteAgent)
		}

		nums := protected.Group("/numbers")
		{
			nums.GET("", h.ListNumbers)
			nums.POST("/import", h.ImportNumber)
			nums.POST("/:id/confirm-update", h.ConfirmNumberUpdate)
		}

		promptGroup := protected.Group("/prompts")
		{
			promptGroup.GET("", h.ListPrompts)
			promptGroup.POST("", h.CreatePrompt)
			promptGroup.GET("/:id", h.GetPrompt)
			promptGroup.PUT("/:id", h.UpdatePrompt)
			promptGroup.DELETE("/:id", h.DeletePrompt)
			promptGroup.POST("/generate", h.GeneratePrompt)
			promptGroup.POST("/generate-from-text", h.GeneratePromptFromText)
			promptGroup.POST("/format", h.FormatPrompt)
			promptGroup.POST("/extract-profile", h.ExtractProfile)
		}

		callGroup := protected.Group("/calls")
		{
			callGroup.GET("", h.ListCalls)
			callGroup.GET("/statistics", h.CallStatistics)
			callGroup.GET("/:id", h.GetCall)
		}

		protected.GET("/credits/balance", h.GetBalance)

		kb := protected.Group("/knowledge-bases")
		{
			kb.GET("", h.ListKnowledgeBases)
			kb.GET("/:id", h.GetKnowledgeBase)
		}

		catalogGroup := protected.Group("/catalog")
		{
			catalogGroup.GET("/voices", h.ListVoices)
			catalogGroup.GET("/timezones", h.ListTimezones)
			catalogGroup.GET("/country-codes", h.ListCountryCodes)
		}

		// ADMIN routes.
		admin := protected.Group("/admin")
		admin.Use(rbac.RequireAnyRole(rbac.RoleAdmin, rbac.RoleSuperAdmin))
		{
			admin.POST("/credits/:userID/manual-credit", h.ManualCredit)
		}
	}
}
