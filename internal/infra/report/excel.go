package report

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"assettrack/internal/domain/entity"
	"assettrack/internal/domain/service"
	"assettrack/internal/errors"

	"github.com/paulmach/orb"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

// Sheet names.
const (
	SheetSummary     = "Summary"
	SheetAssets      = "Assets"
	SheetAuditTrails = "Audit Trails"
)

// ExcelExporter writes workbooks with excelize. Asset addresses are resolved
// through the geocoder, best-effort.
type ExcelExporter struct {
	geocoder    service.Geocoder
	concurrency int
	placeholder string
	logger      *slog.Logger
}

// NewExcelExporter creates an exporter. geocoder may be nil, in which case
// only addresses stored on the asset are used.
func NewExcelExporter(geocoder service.Geocoder, concurrency int, placeholder string, logger *slog.Logger) *ExcelExporter {
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ExcelExporter{
		geocoder:    geocoder,
		concurrency: concurrency,
		placeholder: placeholder,
		logger:      logger,
	}
}

var assetSheetHeader = []any{
	"Tag ID", "Asset Type", "Subcategory", "Brand", "Model", "Serial Number", "Status", "Priority",
	"Assigned To", "Project", "Building", "Floor", "Room", "Latitude", "Longitude", "Address",
	"Created At", "Updated At",
}

var auditSheetHeader = []any{
	"Timestamp", "User", "Email", "Action", "Resource Type", "Resource ID", "Tag ID", "Details",
}

// ExportAssets writes a Summary sheet and an Assets sheet. Geocoding failures
// never fail the export.
func (e *ExcelExporter) ExportAssets(ctx context.Context, w io.Writer, assets []entity.Asset) error {
	addresses := e.resolveAddresses(ctx, assets)
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	wb, err := newWorkbook()
	if err != nil {
		return err
	}
	defer wb.close()

	byType := countBy(assets, func(a *entity.Asset) string { return a.AssetType })
	byStatus := countBy(assets, func(a *entity.Asset) string { return a.Status })
	if err := wb.summary(len(assets), summaryBlock{"Asset Type", byType}, summaryBlock{"Status", byStatus}); err != nil {
		return err
	}

	rows := make([][]any, len(assets))
	for i := range assets {
		a := &assets[i]
		var building, floor, room, lat, lng string
		if a.Location != nil {
			building, floor, room = a.Location.Building, a.Location.Floor, a.Location.Room
			if a.Location.IsSet() {
				lat, lng = a.Location.Latitude, a.Location.Longitude
			}
		}
		rows[i] = []any{
			a.TagID, a.AssetType, a.Subcategory, a.Brand, a.Model, a.SerialNumber, a.Status, a.Priority,
			a.AssignedName(), a.ProjectName(), building, floor, room, lat, lng, addresses[i],
			formatTime(a.CreatedAt), formatTime(a.UpdatedAt),
		}
	}
	if err := wb.table(SheetAssets, assetSheetHeader, rows); err != nil {
		return err
	}

	return wb.write(w)
}

// ExportAuditLogs writes a Summary sheet and an Audit Trails sheet.
func (e *ExcelExporter) ExportAuditLogs(ctx context.Context, w io.Writer, logs []entity.AuditLog) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	wb, err := newWorkbook()
	if err != nil {
		return err
	}
	defer wb.close()

	byAction := countBy(logs, func(l *entity.AuditLog) string { return l.Action })
	byResource := countBy(logs, func(l *entity.AuditLog) string { return l.ResourceType })
	if err := wb.summary(len(logs), summaryBlock{"Action", byAction}, summaryBlock{"Resource Type", byResource}); err != nil {
		return err
	}

	rows := make([][]any, len(logs))
	for i := range logs {
		l := &logs[i]
		rows[i] = []any{
			formatTime(l.Timestamp), l.UserName(), l.UserEmail(), l.Action, l.ResourceType, l.ResourceID,
			l.Details.TagID, describeDetails(&l.Details),
		}
	}
	if err := wb.table(SheetAuditTrails, auditSheetHeader, rows); err != nil {
		return err
	}

	return wb.write(w)
}

// resolveAddresses returns one address per asset. Stored addresses win;
// otherwise each distinct coordinate is reverse geocoded once with bounded
// concurrency. Lookups that fail yield the placeholder.
func (e *ExcelExporter) resolveAddresses(ctx context.Context, assets []entity.Asset) []string {
	out := make([]string, len(assets))
	pending := map[string]orb.Point{}
	keys := make([]string, len(assets))

	for i := range assets {
		loc := assets[i].Location
		if loc == nil {
			continue
		}
		if loc.Address != "" {
			out[i] = loc.Address

			continue
		}
		p, ok := loc.Point()
		if !ok {
			continue
		}
		if e.geocoder == nil {
			out[i] = e.placeholder

			continue
		}
		key := coordinateKey(p)
		keys[i] = key
		pending[key] = p
	}
	if len(pending) == 0 {
		return out
	}

	var (
		mu       sync.Mutex
		resolved = make(map[string]string, len(pending))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for key, p := range pending {
		g.Go(func() error {
			address, err := e.geocoder.Reverse(gctx, p)
			if err != nil || address == "" {
				e.logger.Warn("Reverse geocoding failed, using placeholder",
					slog.String("coordinate", key),
					slog.Any("error", err),
				)
				address = e.placeholder
			}
			mu.Lock()
			resolved[key] = address
			mu.Unlock()

			return nil
		})
	}
	_ = g.Wait()

	for i, key := range keys {
		if key != "" {
			out[i] = resolved[key]
		}
	}

	return out
}

func coordinateKey(p orb.Point) string {
	return strconv.FormatFloat(p.Lat(), 'f', 6, 64) + "," + strconv.FormatFloat(p.Lon(), 'f', 6, 64)
}

type summaryBlock struct {
	Title  string
	Counts []count
}

type workbook struct {
	f      *excelize.File
	header int
	bold   int
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		_ = f.Close()

		return nil, errors.WithStack(err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E1E6F0"}, Pattern: 1},
	})
	if err != nil {
		_ = f.Close()

		return nil, errors.WithStack(err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()

		return nil, errors.WithStack(err)
	}

	return &workbook{f: f, header: header, bold: bold}, nil
}

func (wb *workbook) close() {
	_ = wb.f.Close()
}

func (wb *workbook) setRow(sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(wb.f.SetSheetRow(sheet, cell, &values))
}

func (wb *workbook) styleRow(sheet string, row, columns, style int) error {
	from, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.WithStack(err)
	}
	to, err := excelize.CoordinatesToCellName(columns, row)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(wb.f.SetCellStyle(sheet, from, to, style))
}

// summary fills the Summary sheet: one two-column block per breakdown and a
// total line.
func (wb *workbook) summary(total int, blocks ...summaryBlock) error {
	row := 1
	for _, block := range blocks {
		if err := wb.setRow(SheetSummary, row, []any{block.Title, "Count"}); err != nil {
			return err
		}
		if err := wb.styleRow(SheetSummary, row, 2, wb.header); err != nil {
			return err
		}
		row++
		for _, c := range block.Counts {
			if err := wb.setRow(SheetSummary, row, []any{c.Label, c.N}); err != nil {
				return err
			}
			row++
		}
		row++
	}

	if err := wb.setRow(SheetSummary, row, []any{"Total", total}); err != nil {
		return err
	}
	if err := wb.styleRow(SheetSummary, row, 2, wb.bold); err != nil {
		return err
	}

	return errors.WithStack(wb.f.SetColWidth(SheetSummary, "A", "A", 28))
}

func (wb *workbook) table(sheet string, header []any, rows [][]any) error {
	if _, err := wb.f.NewSheet(sheet); err != nil {
		return errors.WithStack(err)
	}
	if err := wb.setRow(sheet, 1, header); err != nil {
		return err
	}
	if err := wb.styleRow(sheet, 1, len(header), wb.header); err != nil {
		return err
	}
	for i, values := range rows {
		if err := wb.setRow(sheet, i+2, values); err != nil {
			return err
		}
	}

	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(wb.f.SetColWidth(sheet, "A", last, 18))
}

func (wb *workbook) write(w io.Writer) error {
	if err := wb.f.Write(w); err != nil {
		return errors.Wrap(err, "render workbook")
	}

	return nil
}
