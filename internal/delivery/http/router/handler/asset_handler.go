package handler

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"assettrack/internal/delivery/http/response"
	"assettrack/internal/domain/entity"
	"assettrack/internal/domain/service"
	"assettrack/internal/errors"
	"assettrack/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AssetHandlerParams holds dependencies for AssetHandler, injected by Fx.
type AssetHandlerParams struct {
	fx.In

	AssetUC usecase.AssetUsecase
	Logger  *slog.Logger
}

// AssetHandler exposes the asset store and its operations.
type AssetHandler struct {
	assetUC usecase.AssetUsecase
	logger  *slog.Logger
}

// NewAssetHandler is the constructor for AssetHandler
func NewAssetHandler(params AssetHandlerParams) *AssetHandler {
	return &AssetHandler{
		assetUC: params.AssetUC,
		logger:  params.Logger,
	}
}

// StateResponse is the store state without the asset list.
type StateResponse struct {
	Loading       bool          `json:"loading"`
	Error         string        `json:"error,omitempty"`
	SelectedAsset *entity.Asset `json:"selectedAsset,omitempty"`
	AssetCount    int           `json:"assetCount"`
}

// ScanPayloadRequest is text read by a hardware scanner.
type ScanPayloadRequest struct {
	Payload  string `json:"payload" validate:"required"`
	ScanType string `json:"scanType" validate:"omitempty,oneof=qr barcode nfc manual"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

// State reports the loading and error flags and the selection.
func (h *AssetHandler) State(c echo.Context) error {
	state := h.assetUC.State()

	return response.Success(c, http.StatusOK, StateResponse{
		Loading:       state.Loading,
		Error:         state.Error,
		SelectedAsset: state.SelectedAsset,
		AssetCount:    len(state.Assets),
	}, "")
}

// Select marks an asset as selected.
func (h *AssetHandler) Select(c echo.Context) error {
	if err := h.assetUC.Select(c.Param("id")); err != nil {
		return response.HandleAppError(c, err)
	}

	return h.State(c)
}

// ClearError dismisses the stored error.
func (h *AssetHandler) ClearError(c echo.Context) error {
	h.assetUC.ClearError()

	return h.State(c)
}

// List returns a filtered, sorted and paginated view of the assets.
func (h *AssetHandler) List(c echo.Context) error {
	query, err := assetQuery(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}
	page, pageSize, err := pageParams(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	assets, err := h.assetUC.Query(c.Request().Context(), query)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, response.Paginate(assets, page, pageSize), "")
}

// Refresh re-fetches the asset list.
func (h *AssetHandler) Refresh(c echo.Context) error {
	assets, err := h.assetUC.Refresh(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]int{"count": len(assets)}, "Assets refreshed")
}

// Get re-fetches one asset.
func (h *AssetHandler) Get(c echo.Context) error {
	asset, err := h.assetUC.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, asset, "")
}

// Create creates an asset.
func (h *AssetHandler) Create(c echo.Context) error {
	var asset entity.Asset
	if err := c.Bind(&asset); err != nil {
		return response.BindingError(c, "Invalid asset input")
	}

	created, err := h.assetUC.Create(c.Request().Context(), &asset)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, created, "Asset created successfully")
}

// Update replaces an asset. Tag ids in the body are ignored.
func (h *AssetHandler) Update(c echo.Context) error {
	var asset entity.Asset
	if err := c.Bind(&asset); err != nil {
		return response.BindingError(c, "Invalid asset input")
	}

	updated, err := h.assetUC.Update(c.Request().Context(), c.Param("id"), &asset)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, updated, "Asset updated successfully")
}

// Delete removes an asset.
func (h *AssetHandler) Delete(c echo.Context) error {
	if err := h.assetUC.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, nil, "Asset deleted successfully")
}

// Scan records a scan of a known asset.
func (h *AssetHandler) Scan(c echo.Context) error {
	var req service.ScanRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return response.BindingError(c, "Invalid scan input")
		}
	}
	if req.ScanType == "" {
		req.ScanType = "manual"
	}

	asset, err := h.assetUC.Scan(c.Request().Context(), c.Param("id"), &req)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, asset, "Scan recorded")
}

// ScanPayload resolves a scanned tag payload to its asset and records the scan.
func (h *AssetHandler) ScanPayload(c echo.Context) error {
	var req ScanPayloadRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid scan input")
	}
	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, err)
	}
	if req.ScanType == "" {
		req.ScanType = string(entity.TagKindQR)
	}

	asset, err := h.assetUC.ScanPayload(c.Request().Context(), req.Payload, &service.ScanRequest{
		ScanType: req.ScanType,
		Location: req.Location,
		Notes:    req.Notes,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, asset, "Scan recorded")
}

// Import uploads a bulk import file from the multipart field "file".
func (h *AssetHandler) Import(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Multipart field \"file\" is required")
	}
	file, err := header.Open()
	if err != nil {
		return errors.Wrap(err, "open uploaded file")
	}
	defer file.Close()

	result, err := h.assetUC.Import(c.Request().Context(), filepath.Base(header.Filename), file)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, result, "Import finished")
}

// Label renders the asset's QR label as PNG.
func (h *AssetHandler) Label(c echo.Context) error {
	png, err := h.assetUC.RenderLabel(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}
