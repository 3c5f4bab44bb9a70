package explorer

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"github.com/alexballas/xexplorer/grid"
)

const (
	fileIconSize      = 64
	fileIconCellWidth = fileIconSize * 1.8
	zoomLevelKey      = "xexplorer:zoomLevel"
	showHiddenKey     = "xexplorer:showHidden"
	sortOrderKey      = "xexplorer:sortOrder"

	// Clicks this soon after a marquee drag ended are ignored.
	dragClickGuard = 200
)

// calculateItemSize is the cell size for a cell width: an icon in the same
// proportion as the default cell plus three and a half lines of label. A zero
// width uses the default cell width.
func calculateItemSize(width float32) fyne.Size {
	if width <= 0 {
		width = fileIconCellWidth
	}
	s, _ := fyne.CurrentApp().Driver().RenderedTextSize("A", theme.TextSize(), fyne.TextStyle{}, nil)
	icon := width * fileIconSize / fileIconCellWidth
	return fyne.NewSize(width, icon+s.Height*3.5+theme.Padding()*3.0)
}

func toGridSize(s fyne.Size) grid.Size {
	return grid.Size{Width: s.Width, Height: s.Height}
}

func toFyneSize(s grid.Size) fyne.Size {
	return fyne.NewSize(s.Width, s.Height)
}

func toFynePos(p grid.Position) fyne.Position {
	return fyne.NewPos(p.X, p.Y)
}

func toGridPos(p fyne.Position) grid.Position {
	return grid.Position{X: p.X, Y: p.Y}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
