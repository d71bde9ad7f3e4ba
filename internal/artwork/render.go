package artwork

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xdraw "golang.org/x/image/draw"
)

const halfBlock = "▀"

// CellSize returns the terminal cell grid an image occupies when rendered
// columns wide. Each cell stacks two pixels vertically.
func CellSize(bounds image.Rectangle, columns int) (int, int) {
	if columns <= 0 || bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return 0, 0
	}
	pixelRows := columns * bounds.Dy() / bounds.Dx()
	if pixelRows < 2 {
		pixelRows = 2
	}
	return columns, (pixelRows + 1) / 2
}

// Render draws img as half-block terminal art, columns cells wide.
func Render(img image.Image, columns int) string {
	if img == nil {
		return ""
	}
	cols, rows := CellSize(img.Bounds(), columns)
	if cols == 0 || rows == 0 {
		return ""
	}
	sampled := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	xdraw.ApproxBiLinear.Scale(sampled, sampled.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	lines := make([]string, rows)
	for y := 0; y < rows; y++ {
		var b strings.Builder
		for x := 0; x < cols; x++ {
			top := hexColor(sampled.RGBAAt(x, y*2))
			bottom := hexColor(sampled.RGBAAt(x, y*2+1))
			b.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom)).
				Render(halfBlock))
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
