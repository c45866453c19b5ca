package assetapi

import (
	"context"
	"net/http"
	"net/url"

	"assettrack/internal/domain/entity"
	"assettrack/internal/errors"
)

func (c *Client) ListAssetTypes(ctx context.Context) ([]entity.AssetType, error) {
	var resp assetTypeListResponse
	if err := c.do(ctx, http.MethodGet, "/asset-types", nil, &resp); err != nil {
		return nil, err
	}

	return resp.items(), nil
}

func (c *Client) CreateAssetType(ctx context.Context, assetType *entity.AssetType) (*entity.AssetType, error) {
	var resp assetTypeResponse
	if err := c.do(ctx, http.MethodPost, "/asset-types", assetType, &resp); err != nil {
		return nil, err
	}

	return requireAssetType(resp.item())
}

func (c *Client) UpdateAssetType(ctx context.Context, id string, assetType *entity.AssetType) (*entity.AssetType, error) {
	var resp assetTypeResponse
	if err := c.do(ctx, http.MethodPut, "/asset-types/"+url.PathEscape(id), assetType, &resp); err != nil {
		return nil, err
	}

	return requireAssetType(resp.item())
}

func (c *Client) DeleteAssetType(ctx context.Context, id string) error {
	var resp envelope

	return c.do(ctx, http.MethodDelete, "/asset-types/"+url.PathEscape(id), nil, &resp)
}

func requireAssetType(t *entity.AssetType) (*entity.AssetType, error) {
	if t == nil {
		return nil, errors.New("asset type response carried no asset type")
	}

	return t, nil
}
