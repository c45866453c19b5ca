package assetapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"assettrack/internal/domain/entity"
	"assettrack/internal/domain/service"
	"assettrack/internal/errors"
)

// ListAssets fetches every asset visible to the caller.
func (c *Client) ListAssets(ctx context.Context) ([]entity.Asset, error) {
	var resp assetListResponse
	if err := c.do(ctx, http.MethodGet, "/assets", nil, &resp); err != nil {
		return nil, err
	}

	return resp.items(), nil
}

func (c *Client) GetAsset(ctx context.Context, id string) (*entity.Asset, error) {
	var resp assetResponse
	if err := c.do(ctx, http.MethodGet, "/assets/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}

	return requireAsset(resp.item(), "get asset")
}

func (c *Client) CreateAsset(ctx context.Context, asset *entity.Asset) (*entity.Asset, error) {
	var resp assetResponse
	if err := c.do(ctx, http.MethodPost, "/assets", asset, &resp); err != nil {
		return nil, err
	}

	return requireAsset(resp.item(), "create asset")
}

// UpdateAsset sends the sanitized asset; see sanitizeForUpdate.
func (c *Client) UpdateAsset(ctx context.Context, id string, asset *entity.Asset) (*entity.Asset, error) {
	payload, err := sanitizeForUpdate(asset)
	if err != nil {
		return nil, err
	}

	var resp assetResponse
	if err := c.do(ctx, http.MethodPut, "/assets/"+url.PathEscape(id), json.RawMessage(payload), &resp); err != nil {
		return nil, err
	}

	return requireAsset(resp.item(), "update asset")
}

func (c *Client) DeleteAsset(ctx context.Context, id string) error {
	var resp envelope

	return c.do(ctx, http.MethodDelete, "/assets/"+url.PathEscape(id), nil, &resp)
}

// ScanAsset records a scan event and returns the asset with its extended history.
func (c *Client) ScanAsset(ctx context.Context, id string, req *service.ScanRequest) (*entity.Asset, error) {
	var resp assetResponse
	if err := c.do(ctx, http.MethodPost, "/assets/"+url.PathEscape(id)+"/scan", req, &resp); err != nil {
		return nil, err
	}

	return requireAsset(resp.item(), "scan asset")
}

// ImportAssets uploads a spreadsheet as the multipart field "file".
func (c *Client) ImportAssets(ctx context.Context, filename string, content io.Reader) (*service.ImportResult, error) {
	body := &multipartBody{field: "file", filename: filename, content: content}

	var resp importResponse
	if err := c.do(ctx, http.MethodPost, "/assets/import", body, &resp); err != nil {
		return nil, err
	}

	return resp.result(), nil
}

func requireAsset(asset *entity.Asset, op string) (*entity.Asset, error) {
	if asset == nil {
		return nil, errors.Errorf("%s: response carried no asset", op)
	}

	return asset, nil
}
