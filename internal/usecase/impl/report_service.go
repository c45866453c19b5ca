package impl

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	deliverycontext "assettrack/internal/delivery/context"
	domainerrors "assettrack/internal/domain/errors"
	"assettrack/internal/domain/service"
	"assettrack/internal/errors"
	"assettrack/internal/infra/report"
	"assettrack/internal/usecase"
	"assettrack/internal/usecase/store"

	"go.uber.org/fx"
)

const reportKeyPrefix = "reports/"

// ReportServiceParams holds dependencies for the report service, injected by Fx.
type ReportServiceParams struct {
	fx.In

	Assets usecase.AssetUsecase
	Admin  usecase.AdminUsecase
	Store  *store.Store
	PDF    *report.PDFExporter
	Excel  *report.ExcelExporter
	Sink   service.ArtifactSink `optional:"true"`
	Logger *slog.Logger
}

// reportService implements the ReportUsecase interface.
type reportService struct {
	assets usecase.AssetUsecase
	admin  usecase.AdminUsecase
	store  *store.Store
	pdf    *report.PDFExporter
	excel  *report.ExcelExporter
	sink   service.ArtifactSink
	logger *slog.Logger
	now    func() time.Time
}

// NewReportService is the constructor for reportService. Sink may be nil.
func NewReportService(params ReportServiceParams) usecase.ReportUsecase {
	return &reportService{
		assets: params.Assets,
		admin:  params.Admin,
		store:  params.Store,
		pdf:    params.PDF,
		excel:  params.Excel,
		sink:   params.Sink,
		logger: params.Logger,
		now:    time.Now,
	}
}

func (srv *reportService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ExportAssets renders the asset view described by query.
func (srv *reportService) ExportAssets(ctx context.Context, query usecase.AssetQuery, format string) (*usecase.ReportResult, error) {
	normalized, ok := usecase.NormalizeFormat(format)
	if !ok {
		return nil, domainerrors.ErrUnsupportedFormat.WithDetails(format)
	}
	format = normalized

	assets, err := srv.assets.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	generatedAt := srv.now()
	var buf bytes.Buffer
	switch format {
	case usecase.FormatPDF:
		err = srv.pdf.ExportAssets(ctx, &buf, assets, report.Options{Title: "Asset Report", GeneratedAt: generatedAt})
	default:
		err = srv.excel.ExportAssets(ctx, &buf, assets)
	}
	if err != nil {
		return nil, srv.exportFailed(ctx, "assets", err)
	}

	return srv.finish(ctx, "assets", format, generatedAt, buf.Bytes(), len(assets))
}

// ExportLabels renders a printable QR label sheet of the asset view.
func (srv *reportService) ExportLabels(ctx context.Context, query usecase.AssetQuery) (*usecase.ReportResult, error) {
	assets, err := srv.assets.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	generatedAt := srv.now()
	var buf bytes.Buffer
	placed, err := srv.pdf.ExportLabels(ctx, &buf, assets, report.Options{GeneratedAt: generatedAt})
	if err != nil {
		return nil, srv.exportFailed(ctx, "labels", err)
	}

	return srv.finish(ctx, "labels", usecase.FormatPDF, generatedAt, buf.Bytes(), placed)
}

// ExportAuditTrails renders the audit trail view described by query.
func (srv *reportService) ExportAuditTrails(ctx context.Context, query usecase.AuditLogQuery, format string) (*usecase.ReportResult, error) {
	normalized, ok := usecase.NormalizeFormat(format)
	if !ok {
		return nil, domainerrors.ErrUnsupportedFormat.WithDetails(format)
	}
	format = normalized

	logs, err := srv.admin.ListAuditTrails(ctx, query)
	if err != nil {
		return nil, err
	}

	generatedAt := srv.now()
	var buf bytes.Buffer
	switch format {
	case usecase.FormatPDF:
		err = srv.pdf.ExportAuditLogs(ctx, &buf, logs, report.Options{Title: "Audit Trail Report", GeneratedAt: generatedAt})
	default:
		err = srv.excel.ExportAuditLogs(ctx, &buf, logs)
	}
	if err != nil {
		return nil, srv.exportFailed(ctx, "audit-trails", err)
	}

	return srv.finish(ctx, "audit-trails", format, generatedAt, buf.Bytes(), len(logs))
}

func (srv *reportService) exportFailed(ctx context.Context, name string, err error) error {
	srv.log(ctx).Error("Report export failed", slog.String("report", name), slog.Any("error", err))

	return errors.Wrap(domainerrors.ErrExportFailed.WithDetails(err.Error()), name)
}

// finish names the artifact, uploads it when a sink is configured and
// announces it. Upload failures are logged; the rendered report is still returned.
func (srv *reportService) finish(ctx context.Context, name, format string, generatedAt time.Time, data []byte, records int) (*usecase.ReportResult, error) {
	result := &usecase.ReportResult{
		Filename:    ReportFilename(name, format, generatedAt),
		ContentType: contentType(format),
		Data:        data,
		Records:     records,
	}

	if srv.sink != nil {
		location, err := srv.sink.Put(ctx, reportKeyPrefix+result.Filename, result.ContentType, data)
		if err != nil {
			srv.log(ctx).Warn("Failed to upload report", slog.String("file", result.Filename), slog.Any("error", err))
		} else {
			result.Location = location
		}
	}

	srv.log(ctx).Info("Report exported",
		slog.String("file", result.Filename),
		slog.Int("records", records),
		slog.Int("bytes", len(data)),
	)
	srv.store.Publish(ctx, &service.AssetEvent{
		Type:       service.EventReportCreated,
		Artifact:   firstNonEmpty(result.Location, result.Filename),
		OccurredAt: generatedAt,
	})

	return result, nil
}

// ReportFilename names a report artifact, e.g. assets-20260102-150405.pdf.
func ReportFilename(name, format string, generatedAt time.Time) string {
	return name + "-" + generatedAt.UTC().Format("20060102-150405") + "." + format
}

func contentType(format string) string {
	if format == usecase.FormatPDF {
		return usecase.ContentTypePDF
	}

	return usecase.ContentTypeXLSX
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
