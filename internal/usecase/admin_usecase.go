package usecase

import (
	"context"
	"time"

	"assettrack/internal/domain/entity"
)

// AuditLogQuery describes a filtered and sorted view of the audit trail.
// StartDate and EndDate are sent to the backend; the rest is applied locally.
type AuditLogQuery struct {
	Search        string
	Action        string
	ResourceType  string
	SortField     string
	SortDirection string
	StartDate     time.Time
	EndDate       time.Time
}

// AdminUsecase defines the interface for asset types, audit trails and permissions.
type AdminUsecase interface {
	ListAssetTypes(ctx context.Context) ([]entity.AssetType, error)
	CreateAssetType(ctx context.Context, assetType *entity.AssetType) (*entity.AssetType, error)
	UpdateAssetType(ctx context.Context, id string, assetType *entity.AssetType) (*entity.AssetType, error)
	DeleteAssetType(ctx context.Context, id string) error

	ListAuditTrails(ctx context.Context, query AuditLogQuery) ([]entity.AuditLog, error)

	GetAssetPermissions(ctx context.Context, role string) (*entity.AssetPermissions, error)
	UpdateAdminAssetPermissions(ctx context.Context, perms *entity.AssetPermissions) (*entity.AssetPermissions, error)
	GrantAssetPermission(ctx context.Context, grant *entity.AssetPermissionGrant) error
}
