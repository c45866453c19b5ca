package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"assettrack/internal/errors"
	"assettrack/internal/infra/assetapi"
	"assettrack/internal/usecase"
	"assettrack/internal/util"
)

const reportFileMode = 0o644

func runExport(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("export", "-report assets|labels|audit [-format pdf|xlsx] [-o file] [filters]")
	reportName := fs.String("report", "assets", "assets, labels or audit")
	format := fs.String("format", usecase.FormatPDF, "pdf or xlsx (labels are always pdf)")
	output := fs.String("o", "", "Output file or directory (defaults to the generated name in the current directory)")
	filters := addAssetFilters(fs)
	action := fs.String("action", "all", "Audit action filter")
	resourceType := fs.String("resource-type", "all", "Audit resource type filter")
	startDate := fs.String("start", "", "Audit start date, YYYY-MM-DD")
	endDate := fs.String("end", "", "Audit end date, YYYY-MM-DD")
	_ = fs.Parse(args)

	var (
		result *usecase.ReportResult
		err    error
	)
	switch *reportName {
	case "assets", "labels":
		query, qerr := filters.query()
		if qerr != nil {
			return qerr
		}
		if *reportName == "labels" {
			result, err = a.reports.ExportLabels(ctx, query)
		} else {
			result, err = a.reports.ExportAssets(ctx, query, *format)
		}
	case "audit":
		query := usecase.AuditLogQuery{
			Search:        *filters.search,
			Action:        *action,
			ResourceType:  *resourceType,
			SortField:     *filters.sort,
			SortDirection: *filters.order,
		}
		if query.StartDate, err = parseOptionalDate(*startDate); err != nil {
			return err
		}
		if query.EndDate, err = parseOptionalDate(*endDate); err != nil {
			return err
		}
		result, err = a.reports.ExportAuditTrails(ctx, query, *format)
	default:
		return errors.Errorf("unknown report %q", *reportName)
	}
	if err != nil {
		return err
	}

	path := outputPath(*output, result.Filename)
	if err := os.WriteFile(path, result.Data, reportFileMode); err != nil {
		return errors.Wrap(err, "write report")
	}

	fmt.Fprintf(a.out, "Wrote %s (%s, %d record(s))\n", path, util.HumanBytes(int64(len(result.Data))), result.Records)
	if result.Location != "" {
		fmt.Fprintf(a.out, "Uploaded to %s\n", result.Location)
	}

	return nil
}

// outputPath places filename inside output when output is a directory.
func outputPath(output, filename string) string {
	if output == "" {
		return filename
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, filename)
	}

	return output
}

func parseOptionalDate(s string) (t time.Time, err error) {
	if s == "" {
		return t, nil
	}
	if t, err = assetapi.ParseAuditDate(s); err != nil {
		return t, errors.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}

	return t, nil
}
