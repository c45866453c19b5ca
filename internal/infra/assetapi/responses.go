package assetapi

import (
	"encoding/json"

	"assettrack/internal/domain/entity"
	"assettrack/internal/domain/service"
)

// The backend is not consistent about where it puts the payload: some
// endpoints use a named key, others "data". Each response struct accepts both.

type assetListResponse struct {
	envelope
	Assets []entity.Asset `json:"assets"`
	Data   []entity.Asset `json:"data"`
}

func (r *assetListResponse) items() []entity.Asset {
	if r.Assets != nil {
		return r.Assets
	}
	if r.Data != nil {
		return r.Data
	}

	return []entity.Asset{}
}

type assetResponse struct {
	envelope
	Asset *entity.Asset `json:"asset"`
	Data  *entity.Asset `json:"data"`
}

func (r *assetResponse) item() *entity.Asset {
	if r.Asset != nil {
		return r.Asset
	}

	return r.Data
}

type importResponse struct {
	envelope
	Imported int                   `json:"imported"`
	Failed   int                   `json:"failed"`
	Errors   []string              `json:"errors"`
	Data     *service.ImportResult `json:"data"`
}

func (r *importResponse) result() *service.ImportResult {
	if r.Data != nil {
		return r.Data
	}

	return &service.ImportResult{Imported: r.Imported, Failed: r.Failed, Errors: r.Errors}
}

type assetTypeListResponse struct {
	envelope
	AssetTypes []entity.AssetType `json:"assetTypes"`
	Data       []entity.AssetType `json:"data"`
}

func (r *assetTypeListResponse) items() []entity.AssetType {
	if r.AssetTypes != nil {
		return r.AssetTypes
	}
	if r.Data != nil {
		return r.Data
	}

	return []entity.AssetType{}
}

type assetTypeResponse struct {
	envelope
	AssetType *entity.AssetType `json:"assetType"`
	Data      *entity.AssetType `json:"data"`
}

func (r *assetTypeResponse) item() *entity.AssetType {
	if r.AssetType != nil {
		return r.AssetType
	}

	return r.Data
}

type auditTrailResponse struct {
	envelope
	AuditTrails []entity.AuditLog `json:"auditTrails"`
	Logs        []entity.AuditLog `json:"logs"`
	Data        []entity.AuditLog `json:"data"`
}

func (r *auditTrailResponse) items() []entity.AuditLog {
	switch {
	case r.AuditTrails != nil:
		return r.AuditTrails
	case r.Logs != nil:
		return r.Logs
	case r.Data != nil:
		return r.Data
	default:
		return []entity.AuditLog{}
	}
}

// digitalAssetResponse carries the freshly minted block. Some deployments
// answer with the block itself, others with the whole updated asset.
type digitalAssetResponse struct {
	envelope
	DigitalAsset *entity.DigitalTag `json:"digitalAsset"`
	Data         json.RawMessage    `json:"data"`
}

func (r *digitalAssetResponse) tag(kind entity.TagKind) *entity.DigitalTag {
	if r.DigitalAsset != nil {
		return r.DigitalAsset
	}
	if len(r.Data) == 0 {
		return nil
	}

	var asset struct {
		DigitalAssets *entity.DigitalAssets `json:"digitalAssets"`
	}
	if err := json.Unmarshal(r.Data, &asset); err == nil && asset.DigitalAssets != nil {
		return asset.DigitalAssets.Get(kind)
	}

	var tag entity.DigitalTag
	if err := json.Unmarshal(r.Data, &tag); err == nil {
		return &tag
	}

	return nil
}

type permissionsResponse struct {
	envelope
	Role        string                   `json:"role"`
	Permissions map[string]bool          `json:"permissions"`
	Data        *entity.AssetPermissions `json:"data"`
}

func (r *permissionsResponse) item(role string) *entity.AssetPermissions {
	if r.Data != nil {
		return r.Data
	}
	if r.Role != "" {
		role = r.Role
	}
	perms := r.Permissions
	if perms == nil {
		perms = map[string]bool{}
	}

	return &entity.AssetPermissions{Role: role, Capabilities: perms}
}
