package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// charMeasurer wraps at a fixed number of characters per mm.
type charMeasurer struct {
	perMM float64
}

func (m charMeasurer) SplitText(text string, width float64) []string {
	limit := int(width * m.perMM)
	if text == "" {
		return nil
	}
	var lines []string
	for len(text) > limit {
		lines = append(lines, text[:limit])
		text = text[limit:]
	}

	return append(lines, text)
}

func TestLayoutTable_RepeatsHeaderAndRespectsBottom(t *testing.T) {
	g := tableGeometry{FirstPageTop: 40, PageTop: 10, PageBottom: 100, LineHeight: 5}
	colWidths := []float64{10, 10}
	header := []string{"Tag", "Type"}

	rows := make([][]string, 0, 60)
	for i := range 60 {
		rows = append(rows, []string{"T", strings.Repeat("x", 1+i%25)})
	}

	pages := layoutTable(charMeasurer{perMM: 1}, colWidths, header, rows, g)
	require.Greater(t, len(pages), 1)

	assert.InDelta(t, 40, pages[0].HeaderY, 1e-9)
	placed := 0
	for i, page := range pages {
		if i > 0 {
			assert.InDelta(t, 10, page.HeaderY, 1e-9, "header starts each continuation page")
		}
		assert.Equal(t, []string{"Tag"}, page.HeaderLines[0])
		y := page.HeaderY + page.HeaderHeight
		for _, row := range page.Rows {
			assert.InDelta(t, y, row.Y, 1e-9, "rows follow the running cursor")
			assert.LessOrEqual(t, row.Y+row.Height, g.PageBottom)
			assert.Equal(t, placed, row.Index)
			y += row.Height
			placed++
		}
	}
	assert.Equal(t, len(rows), placed)
}

func TestLayoutTable_WrapsCellsToColumnWidth(t *testing.T) {
	g := tableGeometry{FirstPageTop: 10, PageTop: 10, PageBottom: 200, LineHeight: 4}

	pages := layoutTable(charMeasurer{perMM: 1}, []float64{5, 20}, []string{"A", "B"},
		[][]string{{"abcdefghijkl", "short"}}, g)
	require.Len(t, pages, 1)
	require.Len(t, pages[0].Rows, 1)

	row := pages[0].Rows[0]
	assert.Equal(t, []string{"abcde", "fghij", "kl"}, row.Lines[0])
	assert.Equal(t, []string{"short"}, row.Lines[1])
	assert.InDelta(t, 12, row.Height, 1e-9)
}

func TestLayoutTable_TruncatesRowsTallerThanAPage(t *testing.T) {
	g := tableGeometry{FirstPageTop: 10, PageTop: 10, PageBottom: 50, LineHeight: 5}

	pages := layoutTable(charMeasurer{perMM: 1}, []float64{4, 4}, []string{"H", "I"},
		[][]string{{strings.Repeat("y", 100), "ok"}}, g)

	require.Len(t, pages, 1)
	require.Len(t, pages[0].Rows, 1)
	row := pages[0].Rows[0]
	assert.LessOrEqual(t, row.Y+row.Height, g.PageBottom)

	cut := row.Lines[0]
	require.NotEmpty(t, cut)
	for _, line := range cut[:len(cut)-1] {
		assert.Equal(t, "yyyy", line)
	}
	assert.Equal(t, "y...", cut[len(cut)-1], "a cut cell ends with the truncation marker")
	assert.Equal(t, []string{"ok"}, row.Lines[1], "cells that fit are left alone")
}

func TestEllipsize_FitsWidth(t *testing.T) {
	m := charMeasurer{perMM: 1}

	assert.Equal(t, "ab...", ellipsize(m, "abcde", 5))
	assert.Equal(t, "abc...", ellipsize(m, "abc ", 6))
	assert.Equal(t, "...", ellipsize(m, "abc", 2), "the marker alone is the floor")
}

func TestLayoutTable_EmptyTableStillHasHeader(t *testing.T) {
	g := tableGeometry{FirstPageTop: 30, PageTop: 10, PageBottom: 100, LineHeight: 5}

	pages := layoutTable(charMeasurer{perMM: 1}, []float64{10}, []string{"Tag"}, nil, g)
	require.Len(t, pages, 1)
	assert.Empty(t, pages[0].Rows)
	assert.InDelta(t, 35, pages[0].EndY, 1e-9)
}
