package impl

import (
	"io"
	"log/slog"
	"testing"

	"assettrack/internal/infra/qrcode"
	mockService "assettrack/internal/mocks/service"
	"assettrack/internal/usecase"
	"assettrack/internal/usecase/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type assetFixture struct {
	api      *mockService.MockAssetAPI
	geocoder *mockService.MockGeocoder
	store    *store.Store
	service  usecase.AssetUsecase
}

func newAssetFixture(t *testing.T, requireAssignment bool) *assetFixture {
	t.Helper()
	api := mockService.NewMockAssetAPI(t)
	geocoder := mockService.NewMockGeocoder(t)
	st := store.New(api, nil, discardLogger())

	return &assetFixture{
		api:      api,
		geocoder: geocoder,
		store:    st,
		service:  NewAssetServiceWith(st, api, qrcode.NewTagCodec(128, "M"), geocoder, requireAssignment, discardLogger()),
	}
}
