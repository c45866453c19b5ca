package report

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"assettrack/internal/domain/entity"
	"assettrack/internal/errors"

	"github.com/go-pdf/fpdf"
)

// A4 sheet of 3 x 7 labels, 63.5 x 38.1 mm each.
const (
	labelColumns   = 3
	labelRows      = 7
	labelWidth     = 63.5
	labelHeight    = 38.1
	labelMarginX   = 7.2
	labelMarginTop = 15.1
	labelQRSize    = 30.0
	labelPadding   = 3.0
)

// LabelPayload is what a printed label encodes for asset. A server generated
// QR block wins; otherwise the payload is built from the asset itself.
func LabelPayload(asset *entity.Asset) *entity.TagPayload {
	if tag := asset.DigitalAssets.Get(entity.TagKindQR); tag != nil && tag.Data.TagID != "" {
		payload := tag.Data

		return &payload
	}

	return &entity.TagPayload{
		TagID:     asset.TagID,
		AssetID:   asset.ID,
		AssetType: asset.AssetType,
		Brand:     asset.Brand,
		Model:     asset.Model,
	}
}

// ExportLabels writes printable QR labels for every asset that has a tag id.
// It returns how many labels were placed.
func (e *PDFExporter) ExportLabels(ctx context.Context, w io.Writer, assets []entity.Asset, opts Options) (int, error) {
	opts = opts.withDefaults("Asset Labels")

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(labelMarginX, labelMarginTop, labelMarginX)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(opts.GeneratedAt)
	pdf.SetTitle(opts.Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	placed := 0
	for i := range assets {
		if err := ctx.Err(); err != nil {
			return placed, errors.WithStack(err)
		}

		asset := &assets[i]
		if asset.TagID == "" {
			continue
		}

		png, err := e.codec.RenderPNG(LabelPayload(asset))
		if err != nil {
			return placed, errors.Wrapf(err, "render label for %s", asset.TagID)
		}

		slot := placed % (labelColumns * labelRows)
		if slot == 0 {
			pdf.AddPage()
		}
		x := labelMarginX + float64(slot%labelColumns)*labelWidth
		y := labelMarginTop + float64(slot/labelColumns)*labelHeight

		imageName := fmt.Sprintf("qr-%d", i)
		imageOpts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(imageName, imageOpts, bytes.NewReader(png))
		pdf.ImageOptions(imageName, x+labelPadding, y+(labelHeight-labelQRSize)/2, labelQRSize, labelQRSize, false, imageOpts, 0, "")

		textX := x + labelPadding*2 + labelQRSize
		textWidth := labelWidth - labelQRSize - labelPadding*3

		pdf.SetFont(fontFamily, "B", 9)
		pdf.SetXY(textX, y+labelPadding+2)
		pdf.CellFormat(textWidth, 5, tr(latin1(asset.TagID)), "", 2, "L", false, 0, "")

		pdf.SetFont(fontFamily, "", 7)
		for _, line := range []string{asset.AssetType, asset.Brand + " " + asset.Model, asset.ProjectName()} {
			for _, part := range pdf.SplitText(latin1(line), textWidth) {
				pdf.SetX(textX)
				pdf.CellFormat(textWidth, 3.5, tr(part), "", 2, "L", false, 0, "")
			}
		}
		placed++
	}

	if placed == 0 {
		pdf.AddPage()
		pdf.SetFont(fontFamily, "", 10)
		pdf.CellFormat(0, 10, "No tagged assets to print.", "", 1, "L", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return placed, errors.Wrap(err, "render label sheet")
	}

	return placed, nil
}
