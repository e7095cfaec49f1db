package main

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/unitrack-api/internal/handler"
	internalmiddleware "github.com/noah-isme/unitrack-api/internal/middleware"
)

type routeDeps struct {
	auth        internalmiddleware.TokenValidator
	rateLimiter *internalmiddleware.RateLimiter

	authH       *handler.AuthHandler
	navigationH *handler.NavigationHandler
	dashboardH  *handler.DashboardHandler
	universityH *handler.UniversityHandler
	analyticsH  *handler.AnalyticsHandler
	settingsH   *handler.SettingsHandler
	// reportH is nil when exports are disabled.
	reportH *handler.ReportHandler
}

func registerRoutes(api *gin.RouterGroup, deps routeDeps) {
	api.Use(internalmiddleware.WithResponseMeta())

	requireAuth := internalmiddleware.JWT(deps.auth)
	// Record views resolve the caller themselves so anonymous requests get
	// the per-view "must be logged in" message.
	identify := internalmiddleware.OptionalJWT(deps.auth)

	auth := api.Group("/auth")
	auth.POST("/signup", deps.rateLimiter.Handler(), deps.authH.SignUp)
	auth.POST("/login", deps.rateLimiter.Handler(), deps.authH.Login)
	auth.POST("/refresh", deps.authH.Refresh)
	auth.POST("/logout", requireAuth, deps.authH.Logout)
	auth.GET("/me", requireAuth, deps.authH.Me)

	api.GET("/navigation", deps.navigationH.Get)

	records := api.Group("", identify)
	records.GET("/dashboard", deps.dashboardH.Get)
	records.GET("/analytics", deps.analyticsH.Summary)

	universities := records.Group("/universities")
	universities.GET("", deps.universityH.List)
	universities.POST("", deps.universityH.Create)
	universities.GET("/:id", deps.universityH.Get)
	universities.GET("/:id/form", deps.universityH.Form)
	universities.PUT("/:id", deps.universityH.Update)
	universities.DELETE("/:id", deps.universityH.Delete)

	settings := api.Group("/settings", requireAuth)
	settings.GET("", deps.settingsH.Get)
	settings.DELETE("/account", deps.settingsH.DeleteAccount)
	settings.POST("/export", deps.settingsH.ExportData)

	if deps.reportH != nil {
		records.POST("/reports", deps.reportH.Create)
		records.GET("/reports/:id", deps.reportH.Status)
		api.GET("/export/:token", deps.reportH.Download)
	}
}
