// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"assettrack/config"
	deliverycontext "assettrack/internal/delivery/context"
	"assettrack/internal/domain/entity"
	domainerrors "assettrack/internal/domain/errors"
	"assettrack/internal/domain/service"
	"assettrack/internal/errors"
	"assettrack/internal/infra/report"
	"assettrack/internal/usecase"
	"assettrack/internal/usecase/filter"
	"assettrack/internal/usecase/store"
	"assettrack/internal/validation"

	"go.uber.org/fx"
)

// createRules are the checks an asset must pass before it is sent for creation.
type createRules struct {
	TagID     string `json:"tagId" validate:"required"`
	AssetType string `json:"assetType" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=active inactive maintenance retired"`
	Priority  string `json:"priority" validate:"required,oneof=low medium high critical"`
	Mobility  string `json:"mobilityCategory" validate:"omitempty,oneof=movable immovable"`
}

// updateRules are the checks for an update; unset fields keep their stored value.
type updateRules struct {
	Status   string `json:"status" validate:"omitempty,oneof=active inactive maintenance retired"`
	Priority string `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Mobility string `json:"mobilityCategory" validate:"omitempty,oneof=movable immovable"`
}

// AssetServiceParams holds dependencies for the asset service, injected by Fx.
type AssetServiceParams struct {
	fx.In

	Config   *config.Config
	Store    *store.Store
	API      service.AssetAPI
	Codec    service.TagCodec
	Geocoder service.Geocoder `optional:"true"`
	Logger   *slog.Logger
}

// assetService implements the AssetUsecase interface.
type assetService struct {
	store             *store.Store
	api               service.AssetAPI
	codec             service.TagCodec
	geocoder          service.Geocoder
	requireAssignment bool
	logger            *slog.Logger

	loaded atomic.Bool
}

// NewAssetService creates the asset service for Fx.
func NewAssetService(params AssetServiceParams) usecase.AssetUsecase {
	requireAssignment := params.Config.Assets != nil && params.Config.Assets.RequireAssignment

	return NewAssetServiceWith(params.Store, params.API, params.Codec, params.Geocoder, requireAssignment, params.Logger)
}

// NewAssetServiceWith creates the asset service from explicit collaborators.
// geocoder may be nil.
func NewAssetServiceWith(
	st *store.Store,
	api service.AssetAPI,
	codec service.TagCodec,
	geocoder service.Geocoder,
	requireAssignment bool,
	logger *slog.Logger,
) usecase.AssetUsecase {
	return &assetService{
		store:             st,
		api:               api,
		codec:             codec,
		geocoder:          geocoder,
		requireAssignment: requireAssignment,
		logger:            logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *assetService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Refresh re-fetches the asset list into the store.
func (srv *assetService) Refresh(ctx context.Context) ([]entity.Asset, error) {
	assets, err := srv.store.FetchAssets(ctx)
	if err != nil {
		return nil, err
	}
	srv.loaded.Store(true)

	return assets, nil
}

// Query derives a filtered and sorted view of the stored list, fetching it
// first when asked to or when it was never loaded.
func (srv *assetService) Query(ctx context.Context, query usecase.AssetQuery) ([]entity.Asset, error) {
	if query.Refresh || !srv.loaded.Load() {
		if _, err := srv.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	return applyAssetQuery(srv.store.Snapshot().Assets, query), nil
}

func applyAssetQuery(assets []entity.Asset, query usecase.AssetQuery) []entity.Asset {
	view := filter.FilterAssets(assets, query.Search, query.Status, query.Priority, query.AssetType)
	if query.Near != nil {
		view = filter.FilterNearby(view, query.Near.Center, query.Near.RadiusMeters)
	}
	if query.SortField != "" {
		view = filter.SortAssets(view, query.SortField, filter.ParseDirection(query.SortDirection))
	}

	return view
}

// Get re-fetches one asset and returns the stored copy.
func (srv *assetService) Get(ctx context.Context, id string) (*entity.Asset, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domainerrors.ErrValidation.WithDetails("asset id is required")
	}

	return srv.store.GetAsset(ctx, id)
}

// Create validates the asset, resolves missing coordinates and creates it.
func (srv *assetService) Create(ctx context.Context, asset *entity.Asset) (*entity.Asset, error) {
	if asset == nil {
		return nil, domainerrors.ErrValidation.WithDetails("asset is required")
	}
	if asset.Status == "" {
		asset.Status = entity.StatusActive
	}
	if asset.Priority == "" {
		asset.Priority = entity.PriorityMedium
	}
	if err := validation.Struct(&createRules{
		TagID:     strings.TrimSpace(asset.TagID),
		AssetType: strings.TrimSpace(asset.AssetType),
		Status:    asset.Status,
		Priority:  asset.Priority,
		Mobility:  asset.MobilityCategory,
	}); err != nil {
		return nil, err
	}
	if err := srv.checkAssignment(asset, false); err != nil {
		return nil, err
	}
	srv.resolveCoordinates(ctx, asset)

	srv.log(ctx).Info("Creating asset", slog.String("tag_id", asset.TagID))

	return srv.store.CreateAsset(ctx, asset)
}

// Update validates the asset and submits it. Tag ids are never sent.
func (srv *assetService) Update(ctx context.Context, id string, asset *entity.Asset) (*entity.Asset, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domainerrors.ErrValidation.WithDetails("asset id is required")
	}
	if asset == nil {
		return nil, domainerrors.ErrValidation.WithDetails("asset is required")
	}
	if err := validation.Struct(&updateRules{
		Status:   asset.Status,
		Priority: asset.Priority,
		Mobility: asset.MobilityCategory,
	}); err != nil {
		return nil, err
	}
	if err := srv.checkAssignment(asset, true); err != nil {
		return nil, err
	}
	srv.resolveCoordinates(ctx, asset)

	srv.log(ctx).Info("Updating asset", slog.String("asset_id", id))

	return srv.store.UpdateAsset(ctx, id, asset)
}

// Delete removes the asset.
func (srv *assetService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domainerrors.ErrValidation.WithDetails("asset id is required")
	}
	srv.log(ctx).Info("Deleting asset", slog.String("asset_id", id))

	return srv.store.DeleteAsset(ctx, id)
}

// Scan records a scan event for the asset.
func (srv *assetService) Scan(ctx context.Context, id string, req *service.ScanRequest) (*entity.Asset, error) {
	if req == nil {
		req = &service.ScanRequest{ScanType: "manual"}
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	return srv.store.ScanAsset(ctx, id, req)
}

// ScanPayload resolves the scanned payload to an asset by asset id or tag id.
func (srv *assetService) ScanPayload(ctx context.Context, raw string, req *service.ScanRequest) (*entity.Asset, error) {
	payload, err := srv.codec.Parse(raw)
	if err != nil {
		return nil, err
	}
	if req == nil {
		req = &service.ScanRequest{ScanType: string(entity.TagKindQR)}
	}

	id := payload.AssetID
	if id == "" {
		if _, err := srv.Query(ctx, usecase.AssetQuery{}); err != nil {
			return nil, err
		}
		asset, ok := srv.findByTagID(payload.TagID)
		if !ok {
			return nil, domainerrors.ErrAssetNotFound.WithDetails("no asset with tag id " + payload.TagID)
		}
		id = asset.ID
	}

	srv.log(ctx).Info("Recording scan", slog.String("asset_id", id), slog.String("tag_id", payload.TagID))

	return srv.Scan(ctx, id, req)
}

func (srv *assetService) findByTagID(tagID string) (*entity.Asset, bool) {
	state := srv.store.Snapshot()
	for i := range state.Assets {
		if strings.EqualFold(state.Assets[i].TagID, tagID) {
			return &state.Assets[i], true
		}
	}

	return nil, false
}

// Import uploads a bulk import file and reloads the list.
func (srv *assetService) Import(ctx context.Context, filename string, content io.Reader) (*service.ImportResult, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domainerrors.ErrValidation.WithDetails("import file name is required")
	}

	result, err := srv.api.ImportAssets(ctx, filename, content)
	if err != nil {
		return nil, err
	}
	srv.log(ctx).Info("Imported assets",
		slog.String("file", filename),
		slog.Int("imported", result.Imported),
		slog.Int("failed", result.Failed),
	)

	if _, err := srv.Refresh(ctx); err != nil {
		srv.log(ctx).Warn("Failed to reload assets after import", slog.Any("error", err))
	}

	return result, nil
}

// Select marks a stored asset as selected.
func (srv *assetService) Select(id string) error {
	return srv.store.Select(id)
}

// ClearError resets the stored error message.
func (srv *assetService) ClearError() {
	srv.store.ClearError()
}

// State returns a copy of the store state.
func (srv *assetService) State() store.State {
	return srv.store.Snapshot()
}

// RenderLabel renders the QR label of a stored asset, fetching it when unknown.
func (srv *assetService) RenderLabel(ctx context.Context, id string) ([]byte, error) {
	asset, ok := srv.store.Find(id)
	if !ok {
		var err error
		if asset, err = srv.store.GetAsset(ctx, id); err != nil {
			return nil, err
		}
	}

	payload := report.LabelPayload(asset)
	if payload.TagID == "" {
		return nil, domainerrors.ErrTagNotGenerated.WithDetails("asset " + id + " has no tag id")
	}

	png, err := srv.codec.RenderPNG(payload)
	if err != nil {
		return nil, errors.Wrap(err, "render label")
	}

	return png, nil
}

// checkAssignment enforces an assignee and a project. With partial set, only
// the references present in asset are checked; absent ones keep their
// stored value.
func (srv *assetService) checkAssignment(asset *entity.Asset, partial bool) error {
	if !srv.requireAssignment {
		return nil
	}
	if (asset.AssignedTo != nil || !partial) && (asset.AssignedTo == nil || strings.TrimSpace(asset.AssignedTo.ID) == "") {
		return domainerrors.ErrValidation.WithDetails("please select a user to assign")
	}
	if (asset.Project != nil || !partial) && (asset.Project == nil || strings.TrimSpace(asset.Project.ID) == "") {
		return domainerrors.ErrValidation.WithDetails("please select a project")
	}

	return nil
}

// resolveCoordinates fills missing coordinates from the address. Failures are
// logged and the save continues without them.
func (srv *assetService) resolveCoordinates(ctx context.Context, asset *entity.Asset) {
	loc := asset.Location
	if srv.geocoder == nil || loc == nil || loc.IsSet() || strings.TrimSpace(loc.Address) == "" {
		return
	}

	point, err := srv.geocoder.Forward(ctx, loc.Address)
	if err != nil {
		srv.log(ctx).Warn("Failed to geocode asset address",
			slog.String("address", loc.Address),
			slog.Any("error", err),
		)

		return
	}
	loc.SetPoint(point)
}
