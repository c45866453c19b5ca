package assetapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"assettrack/internal/domain/entity"
	"assettrack/internal/domain/service"
)

// GenerateTag asks the backend to mint a tag for an asset. The returned block
// may lack its image; callers poll the asset until it is ready.
func (c *Client) GenerateTag(ctx context.Context, assetID string, kind entity.TagKind) (*entity.DigitalTag, error) {
	path := "/digital-assets/" + string(kind) + "/" + url.PathEscape(assetID)

	var resp digitalAssetResponse
	if err := c.do(ctx, http.MethodPost, path, struct{}{}, &resp); err != nil {
		return nil, err
	}

	return resp.tag(kind), nil
}

// GenerateSubAssetTag mints a tag for one sub-asset of assetID.
func (c *Client) GenerateSubAssetTag(ctx context.Context, assetID string, ref service.SubAssetRef, kind entity.TagKind) (*entity.DigitalTag, error) {
	path := "/digital-assets/sub-asset/" + url.PathEscape(assetID) +
		"/" + strconv.Itoa(ref.Index) +
		"/" + url.PathEscape(ref.Category) +
		"/" + string(kind)

	var resp digitalAssetResponse
	if err := c.do(ctx, http.MethodPost, path, struct{}{}, &resp); err != nil {
		return nil, err
	}

	return resp.tag(kind), nil
}
