package entity

// Well-known asset capabilities.
const (
	CapabilityView         = "view"
	CapabilityCreate       = "create"
	CapabilityEdit         = "edit"
	CapabilityDelete       = "delete"
	CapabilityExport       = "export"
	CapabilityGenerateTags = "generateTags"
	CapabilityScan         = "scan"
)

// AssetPermissions maps a role to its asset capabilities. It is always
// replaced as a whole.
type AssetPermissions struct {
	Role         string          `json:"role"`
	Capabilities map[string]bool `json:"permissions"`
}

// Allows reports whether capability is granted.
func (p *AssetPermissions) Allows(capability string) bool {
	if p == nil {
		return false
	}

	return p.Capabilities[capability]
}

// AssetPermissionGrant gives one user capabilities on one asset.
type AssetPermissionGrant struct {
	UserID       string          `json:"userId" validate:"required"`
	AssetID      string          `json:"assetId" validate:"required"`
	Capabilities map[string]bool `json:"permissions" validate:"required"`
}
