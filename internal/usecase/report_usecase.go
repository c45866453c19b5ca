package usecase

import (
	"context"
	"strings"
)

// Report formats.
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

// Content types of the report formats.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// NormalizeFormat maps user input onto a report format; ok is false for
// anything unsupported.
func NormalizeFormat(s string) (string, bool) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "pdf":
		return FormatPDF, true
	case "xlsx", "excel":
		return FormatXLSX, true
	default:
		return "", false
	}
}

// ReportResult is a rendered report.
type ReportResult struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"-"`
	Records     int    `json:"records"`

	// Location is set when the artifact was also uploaded to the export bucket.
	Location string `json:"location,omitempty"`
}

// ReportUsecase renders asset and audit trail reports.
type ReportUsecase interface {
	ExportAssets(ctx context.Context, query AssetQuery, format string) (*ReportResult, error)
	ExportLabels(ctx context.Context, query AssetQuery) (*ReportResult, error)
	ExportAuditTrails(ctx context.Context, query AuditLogQuery, format string) (*ReportResult, error)
}
