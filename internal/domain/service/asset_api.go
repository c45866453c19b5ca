// Package service declares the contracts the use cases depend on; the infra
// packages provide the implementations.
package service

import (
	"context"
	"io"
	"time"

	"assettrack/internal/domain/entity"
)

// ScanRequest is the body of a scan event submitted for an asset.
type ScanRequest struct {
	ScanType string `json:"scanType" validate:"required,oneof=qr barcode nfc manual"`
	Location string `json:"location,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// SubAssetRef addresses one sub-asset by collection and position.
type SubAssetRef struct {
	Category string `json:"category" validate:"required,oneof=movable immovable"`
	Index    int    `json:"index" validate:"min=0"`
}

// AuditQuery narrows the audit trail export server-side. Zero values are omitted.
type AuditQuery struct {
	StartDate time.Time
	EndDate   time.Time
}

// ImportResult summarises a bulk import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// AssetAPI is the typed client of the asset backend. Every call reads the
// current token; none of them retry.
type AssetAPI interface {
	ListAssets(ctx context.Context) ([]entity.Asset, error)
	GetAsset(ctx context.Context, id string) (*entity.Asset, error)
	CreateAsset(ctx context.Context, asset *entity.Asset) (*entity.Asset, error)
	// UpdateAsset never transmits tag ids, neither the asset's nor its sub-assets'.
	UpdateAsset(ctx context.Context, id string, asset *entity.Asset) (*entity.Asset, error)
	DeleteAsset(ctx context.Context, id string) error
	ScanAsset(ctx context.Context, id string, req *ScanRequest) (*entity.Asset, error)
	ImportAssets(ctx context.Context, filename string, content io.Reader) (*ImportResult, error)

	ListAssetTypes(ctx context.Context) ([]entity.AssetType, error)
	CreateAssetType(ctx context.Context, assetType *entity.AssetType) (*entity.AssetType, error)
	UpdateAssetType(ctx context.Context, id string, assetType *entity.AssetType) (*entity.AssetType, error)
	DeleteAssetType(ctx context.Context, id string) error

	ListAuditTrails(ctx context.Context, query AuditQuery) ([]entity.AuditLog, error)

	// GenerateTag asks the backend to mint a tag. The image is produced
	// asynchronously; the returned block may still be incomplete.
	GenerateTag(ctx context.Context, assetID string, kind entity.TagKind) (*entity.DigitalTag, error)
	GenerateSubAssetTag(ctx context.Context, assetID string, ref SubAssetRef, kind entity.TagKind) (*entity.DigitalTag, error)

	GetAssetPermissions(ctx context.Context, role string) (*entity.AssetPermissions, error)
	UpdateAdminAssetPermissions(ctx context.Context, perms *entity.AssetPermissions) (*entity.AssetPermissions, error)
	GrantAssetPermission(ctx context.Context, grant *entity.AssetPermissionGrant) error
}
