package main

import (
	"fmt"
	"net/url"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alexballas/xexplorer/entity"
	"github.com/alexballas/xexplorer/explorer"
	"github.com/alexballas/xexplorer/internal/config"
	"github.com/alexballas/xexplorer/internal/logging"
)

var browseFlags struct {
	pageSize     int
	itemSize     float32
	columns      int
	showHidden   bool
	singleSelect bool
	noThumbnails bool
	ffmpeg       string
}

var browseCmd = &cobra.Command{
	Use:   "browse [dir]",
	Short: "Open the explorer window on a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBrowse,
}

func init() {
	f := browseCmd.Flags()
	f.IntVar(&browseFlags.pageSize, "page-size", 0, "entries fetched per page")
	f.Float32Var(&browseFlags.itemSize, "item-size", 0, "item width in pixels")
	f.IntVar(&browseFlags.columns, "columns", 0, "fixed column count, 0 fits the width")
	f.BoolVar(&browseFlags.showHidden, "hidden", false, "show hidden files")
	f.BoolVar(&browseFlags.singleSelect, "single", false, "single selection mode")
	f.BoolVar(&browseFlags.noThumbnails, "no-thumbnails", false, "disable image and video thumbnails")
	f.StringVar(&browseFlags.ffmpeg, "ffmpeg", "", "ffmpeg binary used for video thumbnails")
	rootCmd.AddCommand(browseCmd)
}

// applyBrowseFlags copies the flags the user set over the loaded config.
func applyBrowseFlags(cmd *cobra.Command, c *config.Config) error {
	f := cmd.Flags()
	if f.Changed("page-size") {
		c.Explorer.PageSize = browseFlags.pageSize
	}
	if f.Changed("item-size") {
		c.Explorer.ItemSize = browseFlags.itemSize
	}
	if f.Changed("columns") {
		c.Explorer.Columns = browseFlags.columns
	}
	if f.Changed("hidden") {
		c.Explorer.ShowHidden = browseFlags.showHidden
	}
	if f.Changed("single") {
		c.Explorer.SingleSelect = browseFlags.singleSelect
	}
	if f.Changed("no-thumbnails") {
		c.Thumbnails.Enabled = !browseFlags.noThumbnails
	}
	if f.Changed("ffmpeg") {
		c.Thumbnails.FFmpeg = browseFlags.ffmpeg
	}
	return c.Validate()
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if err := applyBrowseFlags(cmd, cfg); err != nil {
		return err
	}
	log := logging.Named("browse")

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	} else if home, err := os.UserHomeDir(); err == nil {
		dir = home
	}
	if st, err := os.Stat(dir); err != nil {
		return err
	} else if !st.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	var thumbs *explorer.ThumbnailManager
	if cfg.Thumbnails.Enabled {
		var err error
		thumbs, err = explorer.NewThumbnailManager(cfg.Thumbnails, logging.Named("thumbnails"))
		if err != nil {
			log.Warn("thumbnails disabled", zap.Error(err))
		} else {
			defer thumbs.Close()
		}
	}

	a := app.NewWithID("io.github.alexballas.xexplorer")
	w := a.NewWindow("xexplorer")

	b := explorer.NewBrowser(w, cfg.Explorer, thumbs)
	b.OnOpen = func(item entity.Item) {
		path := entity.DataOf(item).Path
		if path == "" {
			return
		}
		u := &url.URL{Scheme: "file", Path: path}
		if err := a.OpenURL(u); err != nil {
			log.Warn("open", zap.String("path", path), zap.Error(err))
		}
	}
	b.SetLocation(dir)

	w.SetContent(b.Content())
	w.Resize(fyne.NewSize(1000, 700))
	w.ShowAndRun()
	return nil
}
