package explorer

import (
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// breadcrumb shows one button per ancestor of the current directory.
type breadcrumb struct {
	navigate func(path string)
	content  *fyne.Container
	scroll   *container.Scroll
}

func newBreadcrumb(navigate func(path string)) *breadcrumb {
	b := &breadcrumb{
		navigate: navigate,
		content:  container.NewHBox(),
	}
	b.scroll = container.NewHScroll(container.NewPadded(b.content))
	return b
}

func (b *breadcrumb) update(dir string) {
	b.content.Objects = nil
	for _, p := range ancestors(dir) {
		p := p
		name := filepath.Base(p)
		if name == string(filepath.Separator) || name == "." || name == "" {
			name = p
		}
		b.content.Add(widget.NewButton(name, func() {
			b.navigate(p)
		}))
	}
	b.content.Refresh()
	b.scroll.Offset.X = max(b.content.MinSize().Width-b.scroll.Size().Width, 0)
	b.scroll.Refresh()
}

// ancestors lists dir and its parents, root first.
func ancestors(dir string) []string {
	dir = filepath.Clean(dir)
	var out []string
	for {
		out = append(out, dir)
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
