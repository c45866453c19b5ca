package handler

import (
	"log/slog"

	"assettrack/internal/delivery/http/response"
	"assettrack/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// HeaderXReportLocation carries the bucket key of an uploaded report.
const HeaderXReportLocation = "X-Report-Location"

// ReportHandlerParams holds dependencies for ReportHandler, injected by Fx.
type ReportHandlerParams struct {
	fx.In

	ReportUC usecase.ReportUsecase
	Logger   *slog.Logger
}

// ReportHandler streams PDF and Excel exports.
type ReportHandler struct {
	reportUC usecase.ReportUsecase
	logger   *slog.Logger
}

// NewReportHandler is the constructor for ReportHandler
func NewReportHandler(params ReportHandlerParams) *ReportHandler {
	return &ReportHandler{
		reportUC: params.ReportUC,
		logger:   params.Logger,
	}
}

// AssetsPDF exports the filtered asset list as PDF.
func (h *ReportHandler) AssetsPDF(c echo.Context) error {
	return h.exportAssets(c, usecase.FormatPDF)
}

// AssetsXLSX exports the filtered asset list as an Excel workbook.
func (h *ReportHandler) AssetsXLSX(c echo.Context) error {
	return h.exportAssets(c, usecase.FormatXLSX)
}

// LabelsPDF exports printable QR labels of the filtered assets.
func (h *ReportHandler) LabelsPDF(c echo.Context) error {
	query, err := assetQuery(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	result, err := h.reportUC.ExportLabels(c.Request().Context(), query)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return sendReport(c, result)
}

// AuditTrailsPDF exports the filtered audit trail as PDF.
func (h *ReportHandler) AuditTrailsPDF(c echo.Context) error {
	return h.exportAuditTrails(c, usecase.FormatPDF)
}

// AuditTrailsXLSX exports the filtered audit trail as an Excel workbook.
func (h *ReportHandler) AuditTrailsXLSX(c echo.Context) error {
	return h.exportAuditTrails(c, usecase.FormatXLSX)
}

func (h *ReportHandler) exportAssets(c echo.Context, format string) error {
	query, err := assetQuery(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	result, err := h.reportUC.ExportAssets(c.Request().Context(), query, format)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return sendReport(c, result)
}

func (h *ReportHandler) exportAuditTrails(c echo.Context, format string) error {
	query, err := auditQuery(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	result, err := h.reportUC.ExportAuditTrails(c.Request().Context(), query, format)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return sendReport(c, result)
}

func sendReport(c echo.Context, result *usecase.ReportResult) error {
	if result.Location != "" {
		c.Response().Header().Set(HeaderXReportLocation, result.Location)
	}

	return response.Attachment(c, result.Filename, result.ContentType, result.Data)
}
