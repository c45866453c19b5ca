package report

import (
	"log/slog"

	"assettrack/config"
	"assettrack/internal/domain/service"

	"go.uber.org/fx"
)

// ExcelParams holds dependencies for the Excel exporter, injected by Fx.
type ExcelParams struct {
	fx.In

	Config   *config.Config
	Geocoder service.Geocoder `optional:"true"`
	Logger   *slog.Logger
}

// NewConfiguredExcelExporter creates the Excel exporter from the export section.
func NewConfiguredExcelExporter(params ExcelParams) *ExcelExporter {
	return NewExcelExporter(
		params.Geocoder,
		params.Config.Export.GeocodeConcurrency,
		params.Config.Export.AddressPlaceholder,
		params.Logger,
	)
}

// Module provides the report exporters.
var Module = fx.Module("report",
	fx.Provide(
		NewPDFExporter,
		NewConfiguredExcelExporter,
	),
)
