package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"assettrack/internal/delivery/http/response"
	"assettrack/internal/domain/entity"
	domainerrors "assettrack/internal/domain/errors"
	"assettrack/internal/domain/service"
	"assettrack/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// TagHandlerParams holds dependencies for TagHandler, injected by Fx.
type TagHandlerParams struct {
	fx.In

	TagUC  usecase.TagUsecase
	Logger *slog.Logger
}

// TagHandler starts, reports and closes digital tag generation flows.
type TagHandler struct {
	tagUC  usecase.TagUsecase
	logger *slog.Logger
}

// NewTagHandler is the constructor for TagHandler
func NewTagHandler(params TagHandlerParams) *TagHandler {
	return &TagHandler{
		tagUC:  params.TagUC,
		logger: params.Logger,
	}
}

// WebhookResponse reports how many flows a push completed.
type WebhookResponse struct {
	Completed int `json:"completed"`
}

// Generate starts a generation flow. With wait=true the request blocks until
// the flow settles.
func (h *TagHandler) Generate(c echo.Context) error {
	target, err := tagTarget(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	ctx := c.Request().Context()
	status, err := h.tagUC.Generate(ctx, target, nil)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	if wait, _ := strconv.ParseBool(c.QueryParam("wait")); wait {
		status, err = h.tagUC.Wait(ctx, target)
		if err != nil {
			return response.HandleAppError(c, err)
		}

		return response.Success(c, http.StatusOK, status, "Tag generated")
	}

	return response.Success(c, http.StatusAccepted, status, "Tag generation started")
}

// Status reports the flow of an asset tag.
func (h *TagHandler) Status(c echo.Context) error {
	target, err := tagTarget(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, h.tagUC.Status(target), "")
}

// Close dismisses the flow of an asset tag.
func (h *TagHandler) Close(c echo.Context) error {
	target, err := tagTarget(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, h.tagUC.Close(target), "Tag flow closed")
}

// Webhook accepts a pushed asset, either bare or wrapped as {"asset": ...}.
func (h *TagHandler) Webhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return response.BindingError(c, "Unable to read webhook body")
	}

	asset, err := decodeWebhookAsset(body)
	if err != nil || asset.ID == "" {
		return response.BindingError(c, "Webhook body must carry an asset with an id")
	}

	completed := h.tagUC.HandleWebhook(c.Request().Context(), asset)
	h.logger.Debug("Digital tag webhook received",
		slog.String("assetId", asset.ID),
		slog.Int("completed", completed),
	)

	return response.Success(c, http.StatusOK, WebhookResponse{Completed: completed}, "")
}

func decodeWebhookAsset(body []byte) (*entity.Asset, error) {
	var envelope struct {
		Asset *entity.Asset `json:"asset"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	if envelope.Asset != nil {
		return envelope.Asset, nil
	}

	var asset entity.Asset
	if err := json.Unmarshal(body, &asset); err != nil {
		return nil, err
	}

	return &asset, nil
}

// tagTarget reads :id, :kind and the optional :category/:index pair.
func tagTarget(c echo.Context) (usecase.TagTarget, error) {
	kind, ok := entity.ParseTagKind(c.Param("kind"))
	if !ok {
		return usecase.TagTarget{}, domainerrors.ErrValidation.WithDetails("kind must be one of: qr, barcode, nfc")
	}
	target := usecase.TagTarget{AssetID: c.Param("id"), Kind: kind}

	if category := c.Param("category"); category != "" {
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			return usecase.TagTarget{}, domainerrors.ErrValidation.WithDetails("index must be an integer")
		}
		target.SubAsset = &service.SubAssetRef{Category: category, Index: index}
	}

	return target, nil
}
