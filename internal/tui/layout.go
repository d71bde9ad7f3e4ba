package tui

import (
	"image"
	"strings"

	"github.com/csheth/cardscout/internal/artwork"
)

const (
	// frameRows counts everything outside the body except the log viewport:
	// hero, input box, status line, meter, log header, help and the blank
	// separators between them.
	frameRows = 19
	// bodyChromeRows counts the grid header, the results header and the
	// separators stacked in the left column.
	bodyChromeRows = 6
	// previewChromeRows is the caption plus the top and bottom border.
	previewChromeRows = 3
	minPreviewColumns = 8
)

type pageLayout struct {
	windowWidth    int
	windowHeight   int
	contentWidth   int
	maxPreview     int
	previewColumns int
	previewWidth   int
	resultsHeight  int
	logHeight      int
}

func newPageLayout(previewColumns int) pageLayout {
	return pageLayout{
		contentWidth:   80,
		maxPreview:     previewColumns,
		previewColumns: previewColumns,
		previewWidth:   previewColumns + 2,
		resultsHeight:  12,
		logHeight:      5,
	}
}

// Update sizes every pane for a width x height window. gridHeight is the
// height of the candidate grid currently on screen. The preview shrinks until
// its mounted artwork fits next to the grid and results.
func (l *pageLayout) Update(width, height, gridHeight int) {
	l.windowWidth = width
	l.windowHeight = height

	usable := height - frameRows - bodyChromeRows - gridHeight
	l.logHeight = usable / 5
	if l.logHeight < 3 {
		l.logHeight = 3
	}
	if l.logHeight > 8 {
		l.logHeight = 8
	}
	l.resultsHeight = usable - l.logHeight
	if l.resultsHeight < 3 {
		l.resultsHeight = 3
	}

	body := height - frameRows - l.logHeight
	l.previewColumns = l.maxPreview
	for l.previewColumns > minPreviewColumns && previewRows(l.previewColumns) > body {
		l.previewColumns--
	}
	l.previewWidth = l.previewColumns + 2

	inner := width - viewportHorizontalPadding - l.previewWidth
	if inner < minViewportWidth {
		inner = minViewportWidth
	}
	if inner > 3*gridCellOuterWidth+20 {
		inner = 3*gridCellOuterWidth + 20
	}
	l.contentWidth = inner
}

// previewRows is the on-screen height of the preview panel with artwork
// mounted at the given width.
func previewRows(columns int) int {
	_, rows := artwork.CellSize(image.Rect(0, 0, artwork.TargetWidth, artwork.TargetHeight), columns)
	return rows + previewChromeRows
}

// clipToHeight keeps the bottom height lines of view, as the renderer does
// with a frame taller than the terminal. It returns the clipped frame and the
// number of rows dropped from the top.
func clipToHeight(view string, height int) (string, int) {
	if height <= 0 {
		return view, 0
	}
	lines := strings.Split(view, "\n")
	if len(lines) <= height {
		return view, 0
	}
	dropped := len(lines) - height
	return strings.Join(lines[dropped:], "\n"), dropped
}
