package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"assettrack/internal/domain/entity"
	"assettrack/internal/domain/service"
	"assettrack/internal/errors"

	"github.com/go-pdf/fpdf"
)

// Page geometry of the landscape table reports, in mm.
const (
	pageMarginX      = 10.0
	pageMarginTop    = 12.0
	pageMarginBottom = 18.0
	lineHeight       = 5.0
	bodyFontSize     = 8.0
	headerFontSize   = 8.5
	titleFontSize    = 16.0
	fontFamily       = "Helvetica"
)

// Options are the caller supplied parts of a report.
type Options struct {
	Title       string
	GeneratedAt time.Time
}

func (o Options) withDefaults(title string) Options {
	if o.Title == "" {
		o.Title = title
	}
	if o.GeneratedAt.IsZero() {
		o.GeneratedAt = time.Now()
	}

	return o
}

// PDFExporter renders tables and label sheets with fpdf.
type PDFExporter struct {
	codec service.TagCodec
}

// NewPDFExporter creates a PDF exporter. codec renders the QR codes of label
// sheets.
func NewPDFExporter(codec service.TagCodec) *PDFExporter {
	return &PDFExporter{codec: codec}
}

// ExportAssets writes the asset table followed by a per asset type summary.
func (e *PDFExporter) ExportAssets(ctx context.Context, w io.Writer, assets []entity.Asset, opts Options) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}
	opts = opts.withDefaults("Asset Report")

	doc := newTableDocument(opts, len(assets))
	doc.table(titles(assetColumns), widths(assetColumns), cells(assetColumns, assets))
	doc.summary("Summary by Asset Type", countBy(assets, func(a *entity.Asset) string { return a.AssetType }), len(assets))

	return doc.output(w)
}

// ExportAuditLogs writes the audit table followed by a per action summary.
func (e *PDFExporter) ExportAuditLogs(ctx context.Context, w io.Writer, logs []entity.AuditLog, opts Options) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}
	opts = opts.withDefaults("Audit Trail Report")

	doc := newTableDocument(opts, len(logs))
	doc.table(titles(auditColumns), widths(auditColumns), cells(auditColumns, logs))
	doc.summary("Summary by Action", countBy(logs, func(l *entity.AuditLog) string { return l.Action }), len(logs))

	return doc.output(w)
}

// tableDocument is a landscape A4 document with a title block on page one and
// page numbers in the footer.
type tableDocument struct {
	pdf      *fpdf.Fpdf
	tr       func(string) string
	geometry tableGeometry
	cursorY  float64
}

func newTableDocument(opts Options, records int) *tableDocument {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pageMarginX, pageMarginTop, pageMarginX)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(opts.GeneratedAt)
	pdf.SetTitle(opts.Title, true)
	pdf.AliasNbPages("")

	doc := &tableDocument{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.SetTextColor(110, 110, 110)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()
	_, pageHeight := pdf.GetPageSize()

	pdf.SetXY(pageMarginX, pageMarginTop)
	pdf.SetFont(fontFamily, "B", titleFontSize)
	pdf.CellFormat(0, 9, doc.text(opts.Title), "", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 9)
	pdf.CellFormat(0, 5, "Generated: "+opts.GeneratedAt.Format("2006-01-02 15:04:05 MST"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Records: %d", records), "", 1, "L", false, 0, "")

	doc.geometry = tableGeometry{
		FirstPageTop: pdf.GetY() + 4,
		PageTop:      pageMarginTop,
		PageBottom:   pageHeight - pageMarginBottom,
		LineHeight:   lineHeight,
	}

	return doc
}

// text maps s onto the core font code page.
func (d *tableDocument) text(s string) string {
	return d.tr(latin1(s))
}

// SplitText implements textMeasurer with the current font. latin1 keeps only
// runes whose cp1252 code equals the code point, so widths measured here are
// the widths of the translated text drawRow prints. fpdf indexes its width
// table by rune, so translated bytes must not be measured.
func (d *tableDocument) SplitText(text string, width float64) []string {
	return d.pdf.SplitText(latin1(text), width)
}

func (d *tableDocument) table(header []string, colWidths []float64, rows [][]string) {
	d.pdf.SetFont(fontFamily, "", bodyFontSize)
	pages := layoutTable(d, colWidths, header, rows, d.geometry)

	for i, page := range pages {
		if i > 0 {
			d.pdf.AddPage()
		}

		d.pdf.SetFont(fontFamily, "B", headerFontSize)
		d.pdf.SetFillColor(225, 230, 240)
		d.drawRow(colWidths, page.HeaderY, page.HeaderHeight, page.HeaderLines, "FD")

		d.pdf.SetFont(fontFamily, "", bodyFontSize)
		for _, row := range page.Rows {
			style := "D"
			if row.Index%2 == 1 {
				d.pdf.SetFillColor(246, 246, 246)
				style = "FD"
			}
			d.drawRow(colWidths, row.Y, row.Height, row.Lines, style)
		}
		d.cursorY = page.EndY
	}
}

func (d *tableDocument) drawRow(colWidths []float64, y, height float64, lines [][]string, style string) {
	x := pageMarginX
	for c, w := range colWidths {
		d.pdf.Rect(x, y, w, height, style)
		for li, line := range lines[c] {
			d.pdf.SetXY(x, y+float64(li)*lineHeight)
			d.pdf.CellFormat(w, lineHeight, d.tr(line), "", 0, "L", false, 0, "")
		}
		x += w
	}
}

// summary appends the category counts below the table, breaking pages line
// by line when needed.
func (d *tableDocument) summary(title string, counts []count, total int) {
	const labelWidth, valueWidth = 70.0, 20.0

	y := d.cursorY + 8
	if y+3*lineHeight > d.geometry.PageBottom {
		d.pdf.AddPage()
		y = d.geometry.PageTop
	}

	d.pdf.SetFont(fontFamily, "B", 10)
	d.pdf.SetXY(pageMarginX, y)
	d.pdf.CellFormat(labelWidth+valueWidth, lineHeight+1, d.text(title), "B", 0, "L", false, 0, "")
	y += lineHeight + 2

	line := func(label, value string) {
		if y+lineHeight > d.geometry.PageBottom {
			d.pdf.AddPage()
			y = d.geometry.PageTop
		}
		d.pdf.SetXY(pageMarginX, y)
		d.pdf.CellFormat(labelWidth, lineHeight, d.text(label), "", 0, "L", false, 0, "")
		d.pdf.CellFormat(valueWidth, lineHeight, value, "", 0, "R", false, 0, "")
		y += lineHeight
	}

	d.pdf.SetFont(fontFamily, "", 9)
	for _, c := range counts {
		line(c.Label, fmt.Sprintf("%d", c.N))
	}
	d.pdf.SetFont(fontFamily, "B", 9)
	line("Total", fmt.Sprintf("%d", total))
	d.cursorY = y
}

func (d *tableDocument) output(w io.Writer) error {
	if err := d.pdf.Output(w); err != nil {
		return errors.Wrap(err, "render pdf")
	}

	return nil
}

// latin1 replaces what the core fonts cannot show.
func latin1(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t':
			return ' '
		case r > 0xFF, r >= 0x80 && r < 0xA0:
			return '?'
		default:
			return r
		}
	}, s)
}
