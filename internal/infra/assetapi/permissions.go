package assetapi

import (
	"context"
	"net/http"
	"net/url"

	"assettrack/internal/domain/entity"
)

func (c *Client) GetAssetPermissions(ctx context.Context, role string) (*entity.AssetPermissions, error) {
	var resp permissionsResponse
	if err := c.do(ctx, http.MethodGet, "/admin/permissions/assets/"+url.PathEscape(role), nil, &resp); err != nil {
		return nil, err
	}

	return resp.item(role), nil
}

// UpdateAdminAssetPermissions replaces the admin role's capabilities wholesale.
func (c *Client) UpdateAdminAssetPermissions(ctx context.Context, perms *entity.AssetPermissions) (*entity.AssetPermissions, error) {
	body := map[string]any{"permissions": perms.Capabilities}

	var resp permissionsResponse
	if err := c.do(ctx, http.MethodPut, "/admin/permissions/assets/admin", body, &resp); err != nil {
		return nil, err
	}

	out := resp.item("admin")
	if len(out.Capabilities) == 0 {
		out.Capabilities = perms.Capabilities
	}

	return out, nil
}

func (c *Client) GrantAssetPermission(ctx context.Context, grant *entity.AssetPermissionGrant) error {
	var resp envelope

	return c.do(ctx, http.MethodPost, "/admin/permissions/assets", grant, &resp)
}
