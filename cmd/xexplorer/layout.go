package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexballas/xexplorer/grid"
)

var layoutFlags struct {
	width, height         float32
	count, total          int
	columns, rows         int
	itemWidth, itemHeight float32
	gap, padding          float32
	horizontal, reverse   bool
	scrollX, scrollY      float32
	overscan              int
	loadMoreSize          float32
}

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the grid geometry for a viewport without opening a window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, overscan := layoutOptions(cmd)
		offset := grid.Position{X: layoutFlags.scrollX, Y: layoutFlags.scrollY}
		return printLayout(cmd.OutOrStdout(), opts, offset, overscan)
	},
}

func init() {
	f := layoutCmd.Flags()
	f.Float32Var(&layoutFlags.width, "width", 800, "viewport width")
	f.Float32Var(&layoutFlags.height, "height", 600, "viewport height")
	f.IntVar(&layoutFlags.count, "count", 100, "loaded items")
	f.IntVar(&layoutFlags.total, "total", 0, "total items, 0 if unknown")
	f.IntVar(&layoutFlags.columns, "columns", 0, "fixed column count")
	f.IntVar(&layoutFlags.rows, "rows", 0, "fixed row count of a horizontal grid")
	f.Float32Var(&layoutFlags.itemWidth, "item-width", 0, "item width")
	f.Float32Var(&layoutFlags.itemHeight, "item-height", 0, "item height, 0 copies the width")
	f.Float32Var(&layoutFlags.gap, "gap", 0, "gap between items")
	f.Float32Var(&layoutFlags.padding, "padding", 0, "padding around the grid")
	f.BoolVar(&layoutFlags.horizontal, "horizontal", false, "lay out a horizontal strip")
	f.BoolVar(&layoutFlags.reverse, "reverse", false, "reverse the main axis")
	f.Float32Var(&layoutFlags.scrollX, "scroll-x", 0, "horizontal scroll offset")
	f.Float32Var(&layoutFlags.scrollY, "scroll-y", 0, "vertical scroll offset")
	f.IntVar(&layoutFlags.overscan, "overscan", 0, "extra rows and columns around the viewport")
	f.Float32Var(&layoutFlags.loadMoreSize, "load-more-size", 0, "load more area size")
	rootCmd.AddCommand(layoutCmd)
}

// layoutOptions builds grid options from the flags, taking unset sizes from
// the explorer config.
func layoutOptions(cmd *cobra.Command) (grid.Options, int) {
	f := cmd.Flags()
	e := cfg.Explorer

	opts := grid.Options{
		Width:        layoutFlags.width,
		Height:       layoutFlags.height,
		Count:        layoutFlags.count,
		TotalCount:   layoutFlags.total,
		Columns:      e.Columns,
		Rows:         layoutFlags.rows,
		ItemSize:     grid.Size{Width: e.ItemSize, Height: layoutFlags.itemHeight},
		Gap:          grid.Gap{X: e.Gap, Y: e.Gap},
		Padding:      grid.Padding{Top: e.Padding, Right: e.Padding, Bottom: e.Padding, Left: e.Padding},
		Horizontal:   layoutFlags.horizontal,
		Reverse:      layoutFlags.reverse,
		LoadMoreSize: e.LoadMoreSize,
	}
	overscan := e.Overscan

	if f.Changed("columns") {
		opts.Columns = layoutFlags.columns
	}
	if f.Changed("item-width") {
		opts.ItemSize.Width = layoutFlags.itemWidth
	}
	if f.Changed("gap") {
		opts.Gap = grid.Gap{X: layoutFlags.gap, Y: layoutFlags.gap}
	}
	if f.Changed("padding") {
		p := layoutFlags.padding
		opts.Padding = grid.Padding{Top: p, Right: p, Bottom: p, Left: p}
	}
	if f.Changed("load-more-size") {
		opts.LoadMoreSize = layoutFlags.loadMoreSize
	}
	if f.Changed("overscan") {
		overscan = layoutFlags.overscan
	}
	return opts, overscan
}

// printLayout computes opts, scrolls a window to offset and describes what
// it would render.
func printLayout(out io.Writer, opts grid.Options, offset grid.Position, overscan int) error {
	loadMore := 0
	opts.LoadMore = func() { loadMore++ }

	l := grid.Compute(opts)
	if l.Empty() {
		return fmt.Errorf("nothing to lay out: width %.0f, item width %.0f, columns %d",
			opts.Width, opts.ItemSize.Width, opts.Columns)
	}

	w := grid.NewWindow(l, overscan)
	w.SetViewport(offset, grid.Size{Width: opts.Width, Height: opts.Height})

	content := w.ContentSize()
	fmt.Fprintf(out, "columns:   %d of %d\n", l.ColumnCount, l.TotalColumnCount)
	fmt.Fprintf(out, "rows:      %d of %d\n", l.RowCount, l.TotalRowCount)
	fmt.Fprintf(out, "item:      %gx%g\n", l.ItemWidth, l.ItemHeight)
	fmt.Fprintf(out, "content:   %gx%g\n", content.Width, content.Height)

	if r, ok := l.LoadMoreRect(); ok {
		fmt.Fprintf(out, "load more: %g,%g %gx%g (in view: %t)\n", r.X, r.Y, r.Width, r.Height, loadMore > 0)
	} else {
		fmt.Fprintln(out, "load more: none")
	}

	r0, r1 := w.RowRange()
	c0, c1 := w.ColumnRange()
	fmt.Fprintf(out, "window:    rows [%d,%d) columns [%d,%d)\n", r0, r1, c0, c1)

	cells := w.Visible()
	indices := make([]string, len(cells))
	for i, c := range cells {
		indices[i] = fmt.Sprint(c.Index)
	}
	fmt.Fprintf(out, "visible:   %d [%s]\n", len(cells), strings.Join(indices, " "))
	return nil
}
