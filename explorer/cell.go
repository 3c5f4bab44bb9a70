package explorer

import (
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/FyshOS/fancyfs"

	"github.com/alexballas/xexplorer/entity"
)

// itemCell draws one grid item. Cells are pooled by the grid content and
// rebound to a different index as the viewport moves.
type itemCell struct {
	widget.BaseWidget
	view  *View
	index int
	item  entity.Item

	icon       *widget.FileIcon
	customIcon *widget.Icon
	thumbnail  *canvas.Image
	label      *widget.Label
	bg         *canvas.Rectangle

	identity  string
	path      string
	width     float32
	lastClick time.Time
	loadTimer *time.Timer
}

func newItemCell(v *View) *itemCell {
	c := &itemCell{
		view:       v,
		index:      -1,
		icon:       widget.NewFileIcon(nil),
		customIcon: widget.NewIcon(nil),
		thumbnail:  canvas.NewImageFromImage(nil),
		label:      widget.NewLabel(""),
		bg:         canvas.NewRectangle(theme.Color(theme.ColorNameSelection)),
	}
	c.thumbnail.FillMode = canvas.ImageFillContain
	c.thumbnail.Hide()
	c.customIcon.Hide()
	c.bg.Hide()
	c.label.Alignment = fyne.TextAlignCenter
	c.label.Wrapping = fyne.TextWrapBreak
	c.label.Truncation = fyne.TextTruncateClip
	c.ExtendBaseWidget(c)
	return c
}

func (c *itemCell) CreateRenderer() fyne.WidgetRenderer {
	return &itemCellRenderer{cell: c}
}

// bind points the cell at index. Content is only rebuilt when the item's
// identity or the cell width changed; selection and cut state always are.
func (c *itemCell) bind(index int, ri RenderItem, width float32) {
	c.index = index
	c.item = ri.Item

	id := entity.IdentityOf(ri.Item)
	if id != c.identity || width != c.width {
		c.identity, c.width = id, width
		c.setItem(ri.Item)
	}

	if ri.Selected {
		c.bg.Show()
	} else {
		c.bg.Hide()
	}
	if ri.Cut {
		c.label.Importance = widget.LowImportance
		c.thumbnail.Translucency = 0.5
	} else {
		c.label.Importance = widget.MediumImportance
		c.thumbnail.Translucency = 0
	}
	c.Refresh()
}

func (c *itemCell) setItem(item entity.Item) {
	d := entity.DataOf(item)
	c.path = d.Path

	var uri fyne.URI
	if d.Path != "" {
		uri = storage.NewFileURI(d.Path)
	}
	c.icon.SetURI(uri)
	c.label.SetText(c.shortenName(d.FullName()))

	if c.loadTimer != nil {
		c.loadTimer.Stop()
		c.loadTimer = nil
	}
	c.icon.Show()
	c.customIcon.Hide()
	c.thumbnail.Hide()
	c.thumbnail.File = ""
	c.thumbnail.Image = nil
	c.thumbnail.FillMode = canvas.ImageFillContain

	if res := kindIcon(item.Kind()); res != nil {
		c.customIcon.SetResource(res)
		c.icon.Hide()
		c.customIcon.Show()
		return
	}

	if d.IsDir {
		if uri == nil {
			return
		}
		if details, err := fancyfs.DetailsForFolder(uri); err == nil && details != nil {
			if details.BackgroundResource != nil {
				c.customIcon.SetResource(details.BackgroundResource)
				c.icon.Hide()
				c.customIcon.Show()
			}
			if details.BackgroundURI != nil {
				c.thumbnail.File = details.BackgroundURI.Path()
				c.thumbnail.FillMode = details.BackgroundFill
				c.icon.Hide()
				c.customIcon.Hide()
				c.thumbnail.Show()
			}
		}
		return
	}

	thumbs := c.view.thumbs
	if thumbs == nil || d.Path == "" || !Thumbnailable(d.Path) {
		return
	}
	if img := thumbs.LoadMemoryOnly(d.Path); img != nil {
		c.showThumbnail(img)
		return
	}

	// Wait for the cell to settle before queuing, so fast scrolling does not
	// flood the workers with cells that are already gone.
	path := d.Path
	c.loadTimer = time.AfterFunc(thumbnailDelay, func() {
		thumbs.Load(path, func(img *canvas.Image) {
			fyne.Do(func() {
				if c.path != path || img == nil {
					return
				}
				c.showThumbnail(img)
			})
		})
	})
}

func (c *itemCell) showThumbnail(img *canvas.Image) {
	c.thumbnail.Image = img.Image
	c.thumbnail.Refresh()
	c.icon.Hide()
	c.customIcon.Hide()
	c.thumbnail.Show()
}

// shortenName keeps the extension of names longer than about three lines
// and elides the middle.
func (c *itemCell) shortenName(name string) string {
	safeLimit := float32(2.4) * c.width
	if safeLimit <= 0 {
		return name
	}

	textSize := theme.TextSize()
	textStyle := c.label.TextStyle
	measure := func(s string) float32 {
		size, _ := fyne.CurrentApp().Driver().RenderedTextSize(s, textSize, textStyle, nil)
		return size.Width
	}
	if measure(name) <= safeLimit {
		return name
	}

	ext := filepath.Ext(name)
	dots := ".."
	head := safeLimit - measure(dots) - measure(ext)
	if head <= 0 {
		return dots + ext
	}

	base := name[:len(name)-len(ext)]
	low, high, best := 0, len(base), 0
	for low <= high {
		mid := (low + high) / 2
		if measure(base[:mid]) <= head {
			best = mid
			low = mid + 1
		} else {
			high = mid - 1
		}
	}
	return base[:best] + dots + ext
}

func kindIcon(kind entity.Kind) fyne.Resource {
	switch kind {
	case entity.KindLocation:
		return theme.StorageIcon()
	case entity.KindSpacedropPeer:
		return theme.ComputerIcon()
	case entity.KindLabel:
		return theme.ListIcon()
	}
	return nil
}

func (c *itemCell) Tapped(*fyne.PointEvent) {
	if c.index < 0 {
		return
	}
	if fyne.CurrentDevice().IsMobile() {
		c.view.selectIndex(c.index)
		return
	}
	if c.view.recentlyDragged() {
		return
	}

	now := time.Now()
	if now.Sub(c.lastClick) < fyne.CurrentApp().Driver().DoubleTapDelay() {
		c.view.open(c.index)
	}
	c.lastClick = now
}

var _ desktop.Mouseable = (*itemCell)(nil)

func (c *itemCell) MouseDown(*desktop.MouseEvent) {
	c.view.DismissMenu()
}

func (c *itemCell) MouseUp(e *desktop.MouseEvent) {
	if c.index < 0 {
		return
	}
	if e.Button == desktop.MouseButtonSecondary {
		c.view.showContextMenu(c.index, e.Position, c)
		return
	}
	if e.Button != desktop.MouseButtonPrimary || c.view.recentlyDragged() {
		return
	}

	switch {
	case e.Modifier&fyne.KeyModifierControl != 0:
		c.view.toggleIndex(c.index)
	case e.Modifier&fyne.KeyModifierShift != 0:
		c.view.extendTo(c.index)
	default:
		c.view.selectIndex(c.index)
	}
}

func (c *itemCell) SecondaryTapped(e *fyne.PointEvent) {
	if c.index < 0 {
		return
	}
	c.view.showContextMenu(c.index, e.Position, c)
}

type itemCellRenderer struct {
	cell *itemCell
}

func (r *itemCellRenderer) Layout(size fyne.Size) {
	c := r.cell
	c.bg.Resize(size)

	s, _ := fyne.CurrentApp().Driver().RenderedTextSize("A", theme.TextSize(), c.label.TextStyle, nil)
	lineHeight := s.Height
	pad := theme.Padding()

	// The icon takes what the label's lines leave over, up to the zoomed icon size.
	side := min(size.Width-pad*2, size.Height-lineHeight*3-pad*3, fileIconSize*c.view.zoom.scale())
	side = max(side, 16)
	iconSize := fyne.NewSquareSize(side)
	iconPos := fyne.NewPos((size.Width-side)/2, pad)

	c.icon.Resize(iconSize)
	c.icon.Move(iconPos)
	c.customIcon.Resize(iconSize)
	c.customIcon.Move(iconPos)
	c.thumbnail.Resize(iconSize)
	c.thumbnail.Move(iconPos)

	labelTop := side + pad*1.5
	c.label.Resize(fyne.NewSize(size.Width, max(size.Height-labelTop, lineHeight)))
	c.label.Move(fyne.NewPos(0, labelTop))
}

func (r *itemCellRenderer) MinSize() fyne.Size {
	return fyne.NewSize(0, 0)
}

func (r *itemCellRenderer) Refresh() {
	c := r.cell
	c.bg.Refresh()
	c.icon.Refresh()
	c.customIcon.Refresh()
	c.thumbnail.Refresh()
	c.label.Refresh()
}

func (r *itemCellRenderer) Objects() []fyne.CanvasObject {
	c := r.cell
	return []fyne.CanvasObject{c.bg, c.icon, c.customIcon, c.thumbnail, c.label}
}

func (r *itemCellRenderer) Destroy() {
	if r.cell.loadTimer != nil {
		r.cell.loadTimer.Stop()
	}
}
