// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"assettrack/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	SessionHandler *handler.SessionHandler
	AssetHandler   *handler.AssetHandler
	TagHandler     *handler.TagHandler
	AdminHandler   *handler.AdminHandler
	ReportHandler  *handler.ReportHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	session *handler.SessionHandler
	assets  *handler.AssetHandler
	tags    *handler.TagHandler
	admin   *handler.AdminHandler
	reports *handler.ReportHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		session: params.SessionHandler,
		assets:  params.AssetHandler,
		tags:    params.TagHandler,
		admin:   params.AdminHandler,
		reports: params.ReportHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	api := e.Group("/api")

	api.GET("/session", r.session.Status)
	api.POST("/session", r.session.Login)
	api.DELETE("/session", r.session.Logout)

	api.GET("/state", r.assets.State)
	api.PUT("/state/selected/:id", r.assets.Select)
	api.DELETE("/state/error", r.assets.ClearError)

	assets := api.Group("/assets")
	{
		assets.GET("", r.assets.List)
		assets.POST("", r.assets.Create)
		assets.POST("/refresh", r.assets.Refresh)
		assets.POST("/import", r.assets.Import)
		assets.GET("/:id", r.assets.Get)
		assets.PUT("/:id", r.assets.Update)
		assets.DELETE("/:id", r.assets.Delete)
		assets.POST("/:id/scan", r.assets.Scan)
		assets.GET("/:id/label.png", r.assets.Label)

		assets.POST("/:id/digital-assets/:kind", r.tags.Generate)
		assets.GET("/:id/digital-assets/:kind/status", r.tags.Status)
		assets.DELETE("/:id/digital-assets/:kind", r.tags.Close)
		assets.POST("/:id/sub-assets/:category/:index/digital-assets/:kind", r.tags.Generate)
		assets.GET("/:id/sub-assets/:category/:index/digital-assets/:kind/status", r.tags.Status)
		assets.DELETE("/:id/sub-assets/:category/:index/digital-assets/:kind", r.tags.Close)
	}

	api.POST("/scans", r.assets.ScanPayload)
	api.POST("/webhooks/digital-assets", r.tags.Webhook)

	types := api.Group("/asset-types")
	{
		types.GET("", r.admin.ListAssetTypes)
		types.POST("", r.admin.CreateAssetType)
		types.PUT("/:id", r.admin.UpdateAssetType)
		types.DELETE("/:id", r.admin.DeleteAssetType)
	}

	api.GET("/audit-trails", r.admin.ListAuditTrails)

	reports := api.Group("/reports")
	{
		reports.GET("/assets.pdf", r.reports.AssetsPDF)
		reports.GET("/assets.xlsx", r.reports.AssetsXLSX)
		reports.GET("/labels.pdf", r.reports.LabelsPDF)
		reports.GET("/audit-trails.pdf", r.reports.AuditTrailsPDF)
		reports.GET("/audit-trails.xlsx", r.reports.AuditTrailsXLSX)
	}

	permissions := api.Group("/admin/permissions/assets")
	{
		permissions.GET("/:role", r.admin.GetAssetPermissions)
		permissions.PUT("/admin", r.admin.UpdateAdminAssetPermissions)
		permissions.POST("", r.admin.GrantAssetPermission)
	}
}
