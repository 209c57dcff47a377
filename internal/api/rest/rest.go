package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/satenders/tender-indexer/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Tender endpoints (public read access)
		v1.GET("/tenders", handler.ListTenders)
		v1.GET("/tenders/:id", handler.GetTender)
		v1.GET("/tenders/:id/documents", handler.GetTenderDocuments)
		v1.GET("/tenders/:id/contacts", handler.GetTenderContacts)
		v1.GET("/tenders/:id/changes", handler.GetTenderChanges)

		// Preference write; JWT-gated only when a key is deployed
		if authCfg.Enabled() {
			v1.POST("/user/preferences", middleware.Auth(authCfg), handler.SavePreferences)
		} else {
			v1.POST("/user/preferences", handler.SavePreferences)
		}
	}
}
