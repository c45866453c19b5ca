package report

import (
	"math"
	"strings"
	"unicode/utf8"
)

// truncationMarker ends the last kept line of a cell cut to fit a page.
const truncationMarker = "..."

// textMeasurer wraps text to a column width.
type textMeasurer interface {
	SplitText(text string, width float64) []string
}

// tableGeometry fixes the vertical extent available to a table, in mm.
type tableGeometry struct {
	FirstPageTop float64 // below the title block on page one
	PageTop      float64 // on every following page
	PageBottom   float64 // no row may extend below this
	LineHeight   float64
}

type placedRow struct {
	Index  int
	Y      float64
	Height float64
	Lines  [][]string // per column
}

type tablePage struct {
	HeaderY      float64
	HeaderHeight float64
	HeaderLines  [][]string
	Rows         []placedRow
	EndY         float64
}

// layoutTable places the header and rows on pages: a running cursor, a page
// break whenever the next row would cross PageBottom and the header repeated
// at the top of each page. Rows taller than a whole page are truncated to fit,
// with truncationMarker on the last kept line of every cut cell.
func layoutTable(m textMeasurer, colWidths []float64, header []string, rows [][]string, g tableGeometry) []tablePage {
	headerLines := wrapRow(m, colWidths, header)
	headerHeight := float64(maxLines(headerLines)) * g.LineHeight

	capacity := int(math.Floor((g.PageBottom - g.PageTop - headerHeight) / g.LineHeight))
	capacity = max(capacity, 1)

	newPage := func(top float64) tablePage {
		return tablePage{
			HeaderY:      top,
			HeaderHeight: headerHeight,
			HeaderLines:  headerLines,
			EndY:         top + headerHeight,
		}
	}

	pages := []tablePage{newPage(g.FirstPageTop)}
	for i, row := range rows {
		lines := wrapRow(m, colWidths, row)
		n := maxLines(lines)
		if n > capacity {
			for c := range lines {
				if len(lines[c]) > capacity {
					lines[c] = lines[c][:capacity]
					lines[c][capacity-1] = ellipsize(m, lines[c][capacity-1], colWidths[c])
				}
			}
			n = capacity
		}
		height := float64(n) * g.LineHeight

		page := &pages[len(pages)-1]
		if page.EndY+height > g.PageBottom && (len(page.Rows) > 0 || page.HeaderY != g.PageTop) {
			pages = append(pages, newPage(g.PageTop))
			page = &pages[len(pages)-1]
		}

		page.Rows = append(page.Rows, placedRow{Index: i, Y: page.EndY, Height: height, Lines: lines})
		page.EndY += height
	}

	return pages
}

// ellipsize shortens line until it still fits width on one line with
// truncationMarker appended.
func ellipsize(m textMeasurer, line string, width float64) string {
	for {
		candidate := strings.TrimRight(line, " ") + truncationMarker
		if line == "" || len(m.SplitText(candidate, width)) <= 1 {
			return candidate
		}
		_, size := utf8.DecodeLastRuneInString(line)
		line = line[:len(line)-size]
	}
}

func wrapRow(m textMeasurer, colWidths []float64, row []string) [][]string {
	out := make([][]string, len(colWidths))
	for c, w := range colWidths {
		text := ""
		if c < len(row) {
			text = row[c]
		}
		lines := m.SplitText(text, w)
		if len(lines) == 0 {
			lines = []string{""}
		}
		out[c] = lines
	}

	return out
}

func maxLines(lines [][]string) int {
	n := 1
	for _, l := range lines {
		n = max(n, len(l))
	}

	return n
}
