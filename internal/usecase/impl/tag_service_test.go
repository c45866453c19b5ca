package impl

import (
	"context"
	"testing"
	"time"

	"assettrack/config"
	"assettrack/internal/domain/entity"
	domainerrors "assettrack/internal/domain/errors"
	"assettrack/internal/domain/service"
	mockService "assettrack/internal/mocks/service"
	"assettrack/internal/usecase"
	"assettrack/internal/usecase/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fastTiming = config.TagGenerationConfig{
	InitialDelay:    time.Millisecond,
	InitialInterval: time.Millisecond,
	MaxInterval:     2 * time.Millisecond,
	MaxElapsed:      200 * time.Millisecond,
}

var slowTiming = config.TagGenerationConfig{
	InitialDelay:    time.Hour,
	InitialInterval: time.Second,
	MaxInterval:     time.Second,
	MaxElapsed:      time.Hour,
}

type tagFixture struct {
	api     *mockService.MockAssetAPI
	store   *store.Store
	service usecase.TagUsecase
}

func newTagFixture(t *testing.T, timing config.TagGenerationConfig, publisher service.EventPublisher, stored ...entity.Asset) *tagFixture {
	t.Helper()
	api := mockService.NewMockAssetAPI(t)
	st := store.New(api, publisher, discardLogger())
	if len(stored) > 0 {
		api.On("ListAssets", mock.Anything).Return(stored, nil).Once()
		_, err := st.FetchAssets(context.Background())
		require.NoError(t, err)
	}
	srv := NewTagServiceWith(st, api, timing, discardLogger())
	t.Cleanup(srv.Shutdown)

	return &tagFixture{api: api, store: st, service: srv}
}

func withQR(asset entity.Asset, url string, generatedAt time.Time) *entity.Asset {
	c := asset.Clone()
	c.DigitalAssets = &entity.DigitalAssets{QRCode: &entity.DigitalTag{
		Data:        entity.TagPayload{TagID: asset.TagID, AssetID: asset.ID},
		URL:         url,
		GeneratedAt: generatedAt,
	}}

	return &c
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	return ctx
}

func TestTagService_Generate_PollsUntilReady(t *testing.T) {
	asset := entity.Asset{ID: "a1", TagID: "PJ-A001"}
	f := newTagFixture(t, fastTiming, nil, asset)
	target := usecase.TagTarget{AssetID: "a1", Kind: entity.TagKindQR}
	generatedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	f.api.On("GenerateTag", mock.Anything, "a1", entity.TagKindQR).Return(&entity.DigitalTag{}, nil).Once()
	f.api.On("GetAsset", mock.Anything, "a1").Return(&asset, nil).Twice()
	f.api.On("GetAsset", mock.Anything, "a1").Return(withQR(asset, "https://cdn/qr/a1.png", generatedAt), nil)

	callback := make(chan *entity.Asset, 1)
	status, err := f.service.Generate(context.Background(), target, func(a *entity.Asset) { callback <- a })
	require.NoError(t, err)
	assert.Equal(t, usecase.TagFlowGenerating, status.State)

	status, err = f.service.Wait(waitCtx(t), target)
	require.NoError(t, err)
	assert.Equal(t, usecase.TagFlowSuccess, status.State)
	require.NotNil(t, status.Tag)
	assert.Equal(t, "https://cdn/qr/a1.png", status.Tag.URL)
	assert.NotNil(t, status.FinishedAt)

	got := <-callback
	assert.Equal(t, "https://cdn/qr/a1.png", got.DigitalAssets.QRCode.URL)

	stored, ok := f.store.Find("a1")
	require.True(t, ok)
	assert.Equal(t, generatedAt, stored.DigitalAssets.QRCode.GeneratedAt)
}

func TestTagService_Generate_RejectsWhileGenerating(t *testing.T) {
	f := newTagFixture(t, slowTiming, nil, entity.Asset{ID: "a1", TagID: "PJ-A001"})
	target := usecase.TagTarget{AssetID: "a1", Kind: entity.TagKindBarcode}

	f.api.On("GenerateTag", mock.Anything, "a1", entity.TagKindBarcode).Return(&entity.DigitalTag{}, nil).Once()

	_, err := f.service.Generate(context.Background(), target, nil)
	require.NoError(t, err)

	_, err = f.service.Generate(context.Background(), target, nil)
	assert.ErrorIs(t, err, domainerrors.ErrGenerationInProgress)

	last := f.service.Close(target)
	assert.Equal(t, usecase.TagFlowGenerating, last.State)
	assert.Equal(t, usecase.TagFlowIdle, f.service.Status(target).State)
	assert.Equal(t, usecase.TagFlowIdle, f.service.Close(target).State, "closing an idle flow is a no-op")
}

func TestTagService_Generate_ErrorThenRetry(t *testing.T) {
	asset := entity.Asset{ID: "a1", TagID: "PJ-A001"}
	f := newTagFixture(t, fastTiming, nil, asset)
	target := usecase.TagTarget{AssetID: "a1", Kind: "qrCode"}

	f.api.On("GenerateTag", mock.Anything, "a1", entity.TagKindQR).Return(nil, domainerrors.NewAPIError(500, "")).Once()

	status, err := f.service.Generate(context.Background(), target, nil)
	require.Error(t, err)
	assert.Equal(t, usecase.TagFlowError, status.State)
	assert.Equal(t, "HTTP error! status: 500", status.Error)
	assert.Equal(t, usecase.TagFlowError, f.service.Status(usecase.TagTarget{AssetID: "a1", Kind: entity.TagKindQR}).State)

	f.api.On("GenerateTag", mock.Anything, "a1", entity.TagKindQR).Return(&entity.DigitalTag{}, nil).Once()
	f.api.On("GetAsset", mock.Anything, "a1").Return(withQR(asset, "https://cdn/qr/a1.png", time.Now()), nil)

	_, err = f.service.Generate(context.Background(), target, nil)
	require.NoError(t, err)

	status, err = f.service.Wait(waitCtx(t), usecase.TagTarget{AssetID: "a1", Kind: entity.TagKindQR})
	require.NoError(t, err)
	assert.Equal(t, usecase.TagFlowSuccess, status.State)
	assert.Empty(t, status.Error)
}

func TestTagService_Generate_PollingExhausted(t *testing.T) {
	asset := entity.Asset{ID: "a1", TagID: "PJ-A001"}
	timing := fastTiming
	timing.MaxElapsed = 20 * time.Millisecond
	f := newTagFixture(t, timing, nil, asset)
	target := usecase.TagTarget{AssetID: "a1", Kind: entity.TagKindNFC}

	f.api.On("GenerateTag", mock.Anything, "a1", entity.TagKindNFC).Return(&entity.DigitalTag{}, nil).Once()
	f.api.On("GetAsset", mock.Anything, "a1").Return(&asset, nil)

	_, err := f.service.Generate(context.Background(), target, nil)
	require.NoError(t, err)

	status, err := f.service.Wait(waitCtx(t), target)
	assert.ErrorIs(t, err, domainerrors.ErrTagNotReady)
	assert.Equal(t, usecase.TagFlowError, status.State)
}

func TestTagService_Generate_StopsPollingOnUnauthorized(t *testing.T) {
	asset := entity.Asset{ID: "a1", TagID: "PJ-A001"}
	f := newTagFixture(t, fastTiming, nil, asset)
	target := usecase.TagTarget{AssetID: "a1", Kind: entity.TagKindQR}

	f.api.On("GenerateTag", mock.Anything, "a1", entity.TagKindQR).Return(&entity.DigitalTag{}, nil).Once()
	f.api.On("GetAsset", mock.Anything, "a1").Return(nil, domainerrors.NewAPIError(401, "jwt expired")).Once()

	_, err := f.service.Generate(context.Background(), target, nil)
	require.NoError(t, err)

	status, err := f.service.Wait(waitCtx(t), target)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	assert.Equal(t, "jwt expired", status.Error)
}

func TestTagService_HandleWebhook(t *testing.T) {
	previous := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	asset := *withQR(entity.Asset{ID: "a1", TagID: "PJ-A001", Brand: "Dell"}, "https://cdn/qr/old.png", previous)

	publisher := mockService.NewMockEventPublisher(t)
	publisher.On("PublishAssetEvent", mock.Anything, mock.MatchedBy(func(e *service.AssetEvent) bool {
		return e.Type == service.EventTagGenerated && e.AssetID == "a1" && e.TagKind == "qr"
	})).Return(nil).Once()

	f := newTagFixture(t, slowTiming, publisher, asset)
	target := usecase.TagTarget{AssetID: "a1", Kind: entity.TagKindQR}
	f.api.On("GenerateTag", mock.Anything, "a1", entity.TagKindQR).Return(&entity.DigitalTag{}, nil).Once()

	_, err := f.service.Generate(context.Background(), target, nil)
	require.NoError(t, err)

	newBlock := previous.Add(time.Minute)
	pushed := withQR(asset, "https://evil.example/qr.png", newBlock)
	pushed.Brand = "Tampered"

	f.api.On("GetAsset", mock.Anything, "a1").Return(&asset, nil).Once()
	assert.Zero(t, f.service.HandleWebhook(context.Background(), pushed), "the backend still has the old block")
	assert.Equal(t, usecase.TagFlowGenerating, f.service.Status(target).State)

	f.api.On("GetAsset", mock.Anything, "a1").Return(nil, domainerrors.NewAPIError(503, "")).Once()
	assert.Zero(t, f.service.HandleWebhook(context.Background(), pushed))
	assert.Equal(t, usecase.TagFlowGenerating, f.service.Status(target).State)

	fetched := withQR(asset, "https://cdn/qr/new.png", newBlock)
	f.api.On("GetAsset", mock.Anything, "a1").Return(fetched, nil).Once()
	assert.Equal(t, 1, f.service.HandleWebhook(context.Background(), pushed))
	assert.Zero(t, f.service.HandleWebhook(context.Background(), pushed), "completion happens once")

	status, err := f.service.Wait(waitCtx(t), target)
	require.NoError(t, err)
	assert.Equal(t, usecase.TagFlowSuccess, status.State)
	assert.Equal(t, "https://cdn/qr/new.png", status.Tag.URL)

	stored, ok := f.store.Find("a1")
	require.True(t, ok)
	assert.Equal(t, "https://cdn/qr/new.png", stored.DigitalAssets.QRCode.URL)
	assert.Equal(t, "Dell", stored.Brand, "pushed fields never reach the store")
}

func TestTagService_HandleWebhook_IgnoresAssetsWithoutFlow(t *testing.T) {
	f := newTagFixture(t, slowTiming, nil, entity.Asset{ID: "a1", Brand: "Dell"})

	pushed := withQR(entity.Asset{ID: "a1", Brand: "Tampered"}, "https://evil.example/qr.png", time.Now())
	assert.Zero(t, f.service.HandleWebhook(context.Background(), pushed))
	assert.Zero(t, f.service.HandleWebhook(context.Background(), &entity.Asset{}))

	stored, ok := f.store.Find("a1")
	require.True(t, ok)
	assert.Equal(t, "Dell", stored.Brand)
	assert.Nil(t, stored.DigitalAssets)
}

func TestTagService_Generate_SubAsset(t *testing.T) {
	asset := entity.Asset{
		ID:        "a1",
		TagID:     "PJ-A001",
		SubAssets: &entity.SubAssets{Movable: []entity.SubAsset{{AssetName: "Compressor"}}},
	}
	f := newTagFixture(t, slowTiming, nil, asset)

	missing := usecase.TagTarget{AssetID: "a1", Kind: entity.TagKindQR, SubAsset: &service.SubAssetRef{Category: "movable", Index: 3}}
	status, err := f.service.Generate(context.Background(), missing, nil)
	assert.ErrorIs(t, err, domainerrors.ErrSubAssetNotFound)
	assert.Equal(t, usecase.TagFlowError, status.State)

	target := usecase.TagTarget{AssetID: "a1", Kind: entity.TagKindQR, SubAsset: &service.SubAssetRef{Category: "movable", Index: 0}}
	f.api.On("GenerateSubAssetTag", mock.Anything, "a1", service.SubAssetRef{Category: "movable", Index: 0}, entity.TagKindQR).
		Return(&entity.DigitalTag{}, nil).Once()

	_, err = f.service.Generate(context.Background(), target, nil)
	require.NoError(t, err)
	assert.Equal(t, "a1/movable/0/qr", target.Key())

	pushed := asset.Clone()
	pushed.SubAssets.Movable[0].DigitalAssets = &entity.DigitalAssets{QRCode: &entity.DigitalTag{
		URL:         "https://cdn/qr/a1-0.png",
		GeneratedAt: time.Now(),
	}}
	f.api.On("GetAsset", mock.Anything, "a1").Return(&pushed, nil).Once()
	assert.Equal(t, 1, f.service.HandleWebhook(context.Background(), &entity.Asset{ID: "a1"}))
}

func TestTagService_Generate_Validation(t *testing.T) {
	f := newTagFixture(t, slowTiming, nil)

	_, err := f.service.Generate(context.Background(), usecase.TagTarget{AssetID: "a1", Kind: "hologram"}, nil)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = f.service.Generate(context.Background(), usecase.TagTarget{Kind: entity.TagKindQR}, nil)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = f.service.Generate(context.Background(), usecase.TagTarget{
		AssetID:  "a1",
		Kind:     entity.TagKindQR,
		SubAsset: &service.SubAssetRef{Category: "floating"},
	}, nil)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}
