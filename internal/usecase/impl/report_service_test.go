package impl

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"assettrack/internal/domain/entity"
	domainerrors "assettrack/internal/domain/errors"
	"assettrack/internal/domain/service"
	"assettrack/internal/errors"
	"assettrack/internal/infra/qrcode"
	"assettrack/internal/infra/report"
	mockService "assettrack/internal/mocks/service"
	"assettrack/internal/usecase"
	"assettrack/internal/usecase/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type reportFixture struct {
	api     *mockService.MockAssetAPI
	sink    *mockService.MockArtifactSink
	service usecase.ReportUsecase
}

func newReportFixture(t *testing.T, withSink bool) *reportFixture {
	t.Helper()
	api := mockService.NewMockAssetAPI(t)
	st := store.New(api, nil, discardLogger())
	codec := qrcode.NewTagCodec(128, "M")

	params := ReportServiceParams{
		Assets: NewAssetServiceWith(st, api, codec, nil, false, discardLogger()),
		Admin:  NewAdminService(api, discardLogger()),
		Store:  st,
		PDF:    report.NewPDFExporter(codec),
		Excel:  report.NewExcelExporter(nil, 2, "Address unavailable", discardLogger()),
		Logger: discardLogger(),
	}
	f := &reportFixture{api: api}
	if withSink {
		f.sink = mockService.NewMockArtifactSink(t)
		params.Sink = f.sink
	}
	f.service = NewReportService(params)

	return f
}

var reportAssets = []entity.Asset{
	{ID: "1", TagID: "PJ-A001", AssetType: "Computer", Brand: "Dell", Status: "active"},
	{ID: "2", TagID: "PJ-A002", AssetType: "HVAC", Brand: "Daikin", Status: "maintenance"},
	{ID: "3", TagID: "PJ-A003", AssetType: "Computer", Brand: "Lenovo", Status: "active"},
}

func TestReportService_ExportAssets_Excel(t *testing.T) {
	f := newReportFixture(t, true)
	ctx := context.Background()

	f.api.On("ListAssets", ctx).Return(reportAssets, nil).Once()
	f.sink.On("Put", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "reports/assets-") && strings.HasSuffix(key, ".xlsx")
	}), usecase.ContentTypeXLSX, mock.Anything).Return("mem://exports#reports/assets.xlsx", nil).Once()

	result, err := f.service.ExportAssets(ctx, usecase.AssetQuery{AssetType: "computer"}, "excel")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Records)
	assert.Equal(t, usecase.ContentTypeXLSX, result.ContentType)
	assert.Equal(t, "mem://exports#reports/assets.xlsx", result.Location)

	wb, err := excelize.OpenReader(bytes.NewReader(result.Data))
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows(report.SheetAssets)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestReportService_ExportAssets_PDFUploadFailureIsNotFatal(t *testing.T) {
	f := newReportFixture(t, true)
	ctx := context.Background()

	f.api.On("ListAssets", ctx).Return(reportAssets, nil).Once()
	f.sink.On("Put", ctx, mock.Anything, usecase.ContentTypePDF, mock.Anything).Return("", errors.New("bucket gone")).Once()

	result, err := f.service.ExportAssets(ctx, usecase.AssetQuery{}, "PDF")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Records)
	assert.Empty(t, result.Location)
	assert.True(t, bytes.HasPrefix(result.Data, []byte("%PDF")))
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
}

func TestReportService_ExportAssets_UnsupportedFormat(t *testing.T) {
	f := newReportFixture(t, false)

	_, err := f.service.ExportAssets(context.Background(), usecase.AssetQuery{}, "docx")
	assert.ErrorIs(t, err, domainerrors.ErrUnsupportedFormat)
}

func TestReportService_ExportFailureIsWrapped(t *testing.T) {
	f := newReportFixture(t, false)
	ctx, cancel := context.WithCancel(context.Background())

	f.api.On("ListAssets", ctx).Return(reportAssets, nil).Once()
	_, err := f.service.ExportAssets(ctx, usecase.AssetQuery{}, "pdf")
	require.NoError(t, err)

	cancel()
	_, err = f.service.ExportAssets(ctx, usecase.AssetQuery{}, "pdf")
	assert.ErrorIs(t, err, domainerrors.ErrExportFailed)
}

func TestReportService_ExportAuditTrails(t *testing.T) {
	f := newReportFixture(t, false)
	ctx := context.Background()

	f.api.On("ListAuditTrails", ctx, service.AuditQuery{}).Return([]entity.AuditLog{
		{ID: "1", Action: "create", ResourceType: "asset", Timestamp: time.Now()},
		{ID: "2", Action: "update", ResourceType: "asset", Timestamp: time.Now()},
	}, nil).Once()

	result, err := f.service.ExportAuditTrails(ctx, usecase.AuditLogQuery{}, "xlsx")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Records)
	assert.True(t, strings.HasPrefix(result.Filename, "audit-trails-"))
}

func TestReportService_ExportLabels(t *testing.T) {
	f := newReportFixture(t, false)
	ctx := context.Background()

	assets := append([]entity.Asset{{ID: "4"}}, reportAssets...)
	f.api.On("ListAssets", ctx).Return(assets, nil).Once()

	result, err := f.service.ExportLabels(ctx, usecase.AssetQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Records, "assets without a tag id get no label")
	assert.Equal(t, usecase.ContentTypePDF, result.ContentType)
}

func TestReportFilename(t *testing.T) {
	at := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "assets-20260102-150405.pdf", ReportFilename("assets", "pdf", at))
}
