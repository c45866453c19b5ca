package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"assettrack/internal/domain/entity"
	"assettrack/internal/domain/service"
	"assettrack/internal/errors"
	"assettrack/internal/usecase"
	"assettrack/internal/util"

	"github.com/paulmach/orb"
)

type assetFilterFlags struct {
	search   *string
	status   *string
	priority *string
	kind     *string
	sort     *string
	order    *string
	near     *string
	radius   *float64
}

func addAssetFilters(fs *flag.FlagSet) assetFilterFlags {
	return assetFilterFlags{
		search:   fs.String("search", "", "Match tag id, brand, model, assignee or project"),
		status:   fs.String("status", "all", "active, inactive, maintenance, retired or all"),
		priority: fs.String("priority", "all", "low, medium, high, critical or all"),
		kind:     fs.String("type", "all", "Asset type name or all"),
		sort:     fs.String("sort", "", "Sort field, e.g. tagId, priority, createdAt"),
		order:    fs.String("order", "asc", "asc or desc"),
		near:     fs.String("near", "", "Only assets near \"lat,lng\""),
		radius:   fs.Float64("radius", 500, "Radius in meters for -near"),
	}
}

func (f assetFilterFlags) query() (usecase.AssetQuery, error) {
	query := usecase.AssetQuery{
		Search:        *f.search,
		Status:        *f.status,
		Priority:      *f.priority,
		AssetType:     *f.kind,
		SortField:     *f.sort,
		SortDirection: *f.order,
		Refresh:       true,
	}
	if *f.near == "" {
		return query, nil
	}

	lat, lng, ok := strings.Cut(*f.near, ",")
	if !ok {
		return query, errors.New("-near must be \"lat,lng\"")
	}
	latV, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return query, errors.Wrap(err, "parse -near latitude")
	}
	lngV, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return query, errors.Wrap(err, "parse -near longitude")
	}
	if *f.radius <= 0 {
		return query, errors.New("-radius must be positive")
	}
	query.Near = &usecase.NearbyQuery{Center: orb.Point{lngV, latV}, RadiusMeters: *f.radius}

	return query, nil
}

func runList(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("list", "[filters] [-json]")
	filters := addAssetFilters(fs)
	asJSON := fs.Bool("json", false, "Print JSON instead of a table")
	_ = fs.Parse(args)

	query, err := filters.query()
	if err != nil {
		return err
	}
	assets, err := a.assets.Query(ctx, query)
	if err != nil {
		return err
	}
	if *asJSON {
		return printJSON(a, assets)
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTAG ID\tTYPE\tBRAND\tMODEL\tSTATUS\tPRIORITY\tASSIGNED TO\tTAGS")
	for i := range assets {
		asset := &assets[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			asset.ID, asset.TagID, asset.AssetType, asset.Brand, asset.Model,
			asset.Status, asset.Priority, asset.AssignedName(), tagSummary(asset.DigitalAssets))
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "write table")
	}
	fmt.Fprintf(a.out, "\n%d asset(s)\n", len(assets))

	return nil
}

// tagSummary lists the generated tag kinds, e.g. "qr,nfc".
func tagSummary(d *entity.DigitalAssets) string {
	var kinds []string
	for _, kind := range []entity.TagKind{entity.TagKindQR, entity.TagKindBarcode, entity.TagKindNFC} {
		if tag := d.Get(kind); tag != nil && tag.URL != "" {
			kinds = append(kinds, string(kind))
		}
	}
	if len(kinds) == 0 {
		return "-"
	}

	return strings.Join(kinds, ",")
}

func runGet(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("get", "-id <asset id>")
	id := fs.String("id", "", "Asset id")
	_ = fs.Parse(args)

	if *id == "" {
		return errors.New("-id is required")
	}
	asset, err := a.assets.Get(ctx, *id)
	if err != nil {
		return err
	}

	return printJSON(a, asset)
}

func runScan(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("scan", "(-id <asset id> | -payload <scanned text>) [-type qr] [-location ...] [-notes ...]")
	id := fs.String("id", "", "Asset id")
	payload := fs.String("payload", "", "Text read from a QR code, barcode or NFC tag")
	scanType := fs.String("type", "", "qr, barcode, nfc or manual")
	location := fs.String("location", "", "Where the scan happened")
	notes := fs.String("notes", "", "Free text notes")
	_ = fs.Parse(args)

	req := &service.ScanRequest{ScanType: *scanType, Location: *location, Notes: *notes}

	var (
		asset *entity.Asset
		err   error
	)
	switch {
	case *id != "" && *payload != "":
		return errors.New("use either -id or -payload")
	case *id != "":
		if req.ScanType == "" {
			req.ScanType = "manual"
		}
		asset, err = a.assets.Scan(ctx, *id, req)
	case *payload != "":
		if req.ScanType == "" {
			req.ScanType = string(entity.TagKindQR)
		}
		asset, err = a.assets.ScanPayload(ctx, *payload, req)
	default:
		return errors.New("-id or -payload is required")
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Recorded %s scan of %s (%s), %d scan(s) on record.\n",
		req.ScanType, asset.TagID, asset.ID, len(asset.ScanHistory))

	return nil
}

func runImport(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("import", "-file <path>")
	path := fs.String("file", "", "CSV or Excel file to import")
	_ = fs.Parse(args)

	if *path == "" {
		return errors.New("-file is required")
	}
	digest, size, err := util.FileDigest(*path)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploading %s (%s, sha256 %s)\n", filepath.Base(*path), util.HumanBytes(size), digest[:12])

	file, err := os.Open(*path)
	if err != nil {
		return errors.Wrap(err, "open import file")
	}
	defer file.Close()

	result, err := a.assets.Import(ctx, filepath.Base(*path), file)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Imported %d, failed %d.\n", result.Imported, result.Failed)
	for _, msg := range result.Errors {
		fmt.Fprintf(a.out, "  - %s\n", msg)
	}

	return nil
}

func runTypes(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("types", "")
	_ = fs.Parse(args)

	types, err := a.admin.ListAssetTypes(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tFIELDS")
	for _, t := range types {
		labels := make([]string, 0, len(t.Fields))
		for _, f := range t.Fields {
			labels = append(labels, f.Label+" ("+f.FieldType+")")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.ID, t.Name, strings.Join(labels, ", "))
	}

	return errors.Wrap(w.Flush(), "write table")
}

func printJSON(a *app, v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")

	return errors.Wrap(enc.Encode(v), "encode JSON")
}
