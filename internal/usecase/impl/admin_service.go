package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "assettrack/internal/delivery/context"
	"assettrack/internal/domain/entity"
	domainerrors "assettrack/internal/domain/errors"
	"assettrack/internal/domain/service"
	"assettrack/internal/usecase"
	"assettrack/internal/usecase/filter"
	"assettrack/internal/validation"
)

// adminService implements the AdminUsecase interface.
type adminService struct {
	api    service.AssetAPI
	logger *slog.Logger
}

// NewAdminService is the constructor for adminService.
func NewAdminService(api service.AssetAPI, logger *slog.Logger) usecase.AdminUsecase {
	return &adminService{
		api:    api,
		logger: logger,
	}
}

func (srv *adminService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ListAssetTypes returns every asset type.
func (srv *adminService) ListAssetTypes(ctx context.Context) ([]entity.AssetType, error) {
	return srv.api.ListAssetTypes(ctx)
}

// CreateAssetType validates and creates an asset type.
func (srv *adminService) CreateAssetType(ctx context.Context, assetType *entity.AssetType) (*entity.AssetType, error) {
	if err := validateAssetType(assetType); err != nil {
		return nil, err
	}
	srv.log(ctx).Info("Creating asset type", slog.String("name", assetType.Name))

	return srv.api.CreateAssetType(ctx, assetType)
}

// UpdateAssetType validates and replaces an asset type.
func (srv *adminService) UpdateAssetType(ctx context.Context, id string, assetType *entity.AssetType) (*entity.AssetType, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domainerrors.ErrValidation.WithDetails("asset type id is required")
	}
	if err := validateAssetType(assetType); err != nil {
		return nil, err
	}
	srv.log(ctx).Info("Updating asset type", slog.String("id", id))

	return srv.api.UpdateAssetType(ctx, id, assetType)
}

// DeleteAssetType removes an asset type. Assets keep referring to it by name.
func (srv *adminService) DeleteAssetType(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domainerrors.ErrValidation.WithDetails("asset type id is required")
	}
	srv.log(ctx).Info("Deleting asset type", slog.String("id", id))

	return srv.api.DeleteAssetType(ctx, id)
}

func validateAssetType(assetType *entity.AssetType) error {
	if assetType == nil {
		return domainerrors.ErrValidation.WithDetails("asset type is required")
	}
	assetType.Name = strings.TrimSpace(assetType.Name)

	return validation.Struct(assetType)
}

// ListAuditTrails fetches the audit trail for the date range and applies the
// local filter and sort.
func (srv *adminService) ListAuditTrails(ctx context.Context, query usecase.AuditLogQuery) ([]entity.AuditLog, error) {
	if !query.StartDate.IsZero() && !query.EndDate.IsZero() && query.EndDate.Before(query.StartDate) {
		return nil, domainerrors.ErrValidation.WithDetails("endDate is before startDate")
	}

	logs, err := srv.api.ListAuditTrails(ctx, service.AuditQuery{
		StartDate: query.StartDate,
		EndDate:   query.EndDate,
	})
	if err != nil {
		return nil, err
	}

	return applyAuditQuery(logs, query), nil
}

func applyAuditQuery(logs []entity.AuditLog, query usecase.AuditLogQuery) []entity.AuditLog {
	view := filter.FilterAuditLogs(logs, query.Search, query.Action, query.ResourceType)
	if query.SortField != "" {
		view = filter.SortAuditLogs(view, query.SortField, filter.ParseDirection(query.SortDirection))
	}

	return view
}

// GetAssetPermissions reads the capabilities of a role.
func (srv *adminService) GetAssetPermissions(ctx context.Context, role string) (*entity.AssetPermissions, error) {
	if strings.TrimSpace(role) == "" {
		return nil, domainerrors.ErrValidation.WithDetails("role is required")
	}

	return srv.api.GetAssetPermissions(ctx, role)
}

// UpdateAdminAssetPermissions replaces the admin capability set wholesale.
func (srv *adminService) UpdateAdminAssetPermissions(ctx context.Context, perms *entity.AssetPermissions) (*entity.AssetPermissions, error) {
	if perms == nil || perms.Capabilities == nil {
		return nil, domainerrors.ErrValidation.WithDetails("permissions are required")
	}
	srv.log(ctx).Info("Replacing admin asset permissions", slog.Int("capabilities", len(perms.Capabilities)))

	return srv.api.UpdateAdminAssetPermissions(ctx, perms)
}

// GrantAssetPermission replaces the capabilities of one user on one asset.
func (srv *adminService) GrantAssetPermission(ctx context.Context, grant *entity.AssetPermissionGrant) error {
	if grant == nil {
		return domainerrors.ErrValidation.WithDetails("grant is required")
	}
	if err := validation.Struct(grant); err != nil {
		return err
	}
	srv.log(ctx).Info("Granting asset permissions",
		slog.String("user_id", grant.UserID),
		slog.String("asset_id", grant.AssetID),
	)

	return srv.api.GrantAssetPermission(ctx, grant)
}
