package handler

import (
	"log/slog"
	"net/http"

	"assettrack/internal/delivery/http/response"
	"assettrack/internal/domain/entity"
	"assettrack/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AdminHandlerParams holds dependencies for AdminHandler, injected by Fx.
type AdminHandlerParams struct {
	fx.In

	AdminUC usecase.AdminUsecase
	Logger  *slog.Logger
}

// AdminHandler serves asset types, audit trails and permissions.
type AdminHandler struct {
	adminUC usecase.AdminUsecase
	logger  *slog.Logger
}

// NewAdminHandler is the constructor for AdminHandler
func NewAdminHandler(params AdminHandlerParams) *AdminHandler {
	return &AdminHandler{
		adminUC: params.AdminUC,
		logger:  params.Logger,
	}
}

// ListAssetTypes returns all asset types.
func (h *AdminHandler) ListAssetTypes(c echo.Context) error {
	types, err := h.adminUC.ListAssetTypes(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, types, "")
}

// CreateAssetType creates an asset type.
func (h *AdminHandler) CreateAssetType(c echo.Context) error {
	var assetType entity.AssetType
	if err := c.Bind(&assetType); err != nil {
		return response.BindingError(c, "Invalid asset type input")
	}

	created, err := h.adminUC.CreateAssetType(c.Request().Context(), &assetType)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, created, "Asset type created successfully")
}

// UpdateAssetType replaces an asset type.
func (h *AdminHandler) UpdateAssetType(c echo.Context) error {
	var assetType entity.AssetType
	if err := c.Bind(&assetType); err != nil {
		return response.BindingError(c, "Invalid asset type input")
	}

	updated, err := h.adminUC.UpdateAssetType(c.Request().Context(), c.Param("id"), &assetType)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, updated, "Asset type updated successfully")
}

// DeleteAssetType removes an asset type.
func (h *AdminHandler) DeleteAssetType(c echo.Context) error {
	if err := h.adminUC.DeleteAssetType(c.Request().Context(), c.Param("id")); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, nil, "Asset type deleted successfully")
}

// ListAuditTrails returns a filtered, sorted and paginated audit trail.
func (h *AdminHandler) ListAuditTrails(c echo.Context) error {
	query, err := auditQuery(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}
	page, pageSize, err := pageParams(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	logs, err := h.adminUC.ListAuditTrails(c.Request().Context(), query)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, response.Paginate(logs, page, pageSize), "")
}

// GetAssetPermissions reads the capabilities of a role.
func (h *AdminHandler) GetAssetPermissions(c echo.Context) error {
	perms, err := h.adminUC.GetAssetPermissions(c.Request().Context(), c.Param("role"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, perms, "")
}

// UpdateAdminAssetPermissions replaces the admin role's capabilities.
func (h *AdminHandler) UpdateAdminAssetPermissions(c echo.Context) error {
	var perms entity.AssetPermissions
	if err := c.Bind(&perms); err != nil {
		return response.BindingError(c, "Invalid permissions input")
	}
	if perms.Role == "" {
		perms.Role = "admin"
	}

	updated, err := h.adminUC.UpdateAdminAssetPermissions(c.Request().Context(), &perms)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, updated, "Permissions updated successfully")
}

// GrantAssetPermission gives a user capabilities on an asset.
func (h *AdminHandler) GrantAssetPermission(c echo.Context) error {
	var grant entity.AssetPermissionGrant
	if err := c.Bind(&grant); err != nil {
		return response.BindingError(c, "Invalid permission grant input")
	}

	if err := h.adminUC.GrantAssetPermission(c.Request().Context(), &grant); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, nil, "Permission granted")
}
