package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexballas/xexplorer/grid"
	"github.com/alexballas/xexplorer/query"
)

// ---------------------------------------------------------------------------
// layout
// ---------------------------------------------------------------------------

func layoutFixture() grid.Options {
	return grid.Options{
		Width:      300,
		Height:     150,
		Count:      30,
		TotalCount: 60,
		ItemSize:   grid.Size{Width: 100},
	}
}

func TestPrintLayout(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printLayout(&out, layoutFixture(), grid.Position{}, 0))

	got := out.String()
	assert.Contains(t, got, "columns:   3 of 3\n")
	assert.Contains(t, got, "rows:      10 of 20\n")
	assert.Contains(t, got, "item:      100x100\n")
	assert.Contains(t, got, "content:   300x2000\n")
	assert.Contains(t, got, "load more: 0,850 300x1150 (in view: false)\n")
	assert.Contains(t, got, "visible:   6 [0 1 2 3 4 5]\n")
}

func TestPrintLayout_ScrolledToLoadMore(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printLayout(&out, layoutFixture(), grid.Position{Y: 900}, 0))

	got := out.String()
	assert.Contains(t, got, "(in view: true)")
	assert.Contains(t, got, "visible:   3 [27 28 29]\n", "rows past the loaded ones have no cells")
}

func TestPrintLayout_Empty(t *testing.T) {
	var out bytes.Buffer
	err := printLayout(&out, grid.Options{Count: 10}, grid.Position{}, 0)
	assert.ErrorContains(t, err, "nothing to lay out")
	assert.Empty(t, out.String())
}

func TestLayoutCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"layout",
		"--width", "300", "--height", "150",
		"--count", "10", "--total", "10",
		"--item-width", "100", "--gap", "0", "--padding", "0",
	})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, Execute())
	assert.Contains(t, out.String(), "columns:   3 of 3\n")
	assert.Contains(t, out.String(), "rows:      4 of 4\n")
	assert.Contains(t, out.String(), "load more: none\n")
}

// ---------------------------------------------------------------------------
// resolve
// ---------------------------------------------------------------------------

func writeJSON(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestResolvePages(t *testing.T) {
	dir := t.TempDir()
	first := writeJSON(t, dir, "1.json", `{
		"nodes": [{"__type": "FilePath", "__id": "1", "pub_id": [1, 2], "name": "a",
			"extension": "txt", "materialized_path": "/x/"}],
		"items": [{"type": "Path", "item": {"__type": "FilePath", "__id": "1"}}]
	}`)
	// The second page only references the node of the first.
	second := writeJSON(t, dir, "2.json", `{
		"items": [
			{"type": "Path", "item": {"__type": "FilePath", "__id": "1"}},
			{"type": "NonIndexedPath", "item": {"path": "/tmp/b.png", "name": "b", "extension": "png"}}
		]
	}`)

	pages, err := readPages([]string{first, second}, "")
	require.NoError(t, err)
	require.Len(t, pages, 2)

	var out bytes.Buffer
	require.NoError(t, resolvePages(context.Background(), &out, pages))
	assert.Equal(t,
		"0\tPath\t0102\ta.txt\t/x/a.txt\n"+
			"1\tPath\t0102\ta.txt\t/x/a.txt\n"+
			"2\tNonIndexedPath\t/tmp/b.png\tb.png\t/tmp/b.png\n"+
			"3 items, 1 nodes (FilePath)\n",
		out.String())
}

func TestResolvePages_MissingNode(t *testing.T) {
	pages := []query.Page{{Items: []any{map[string]any{
		"type": "Path", "item": map[string]any{"__type": "FilePath", "__id": "404"},
	}}}}
	var out bytes.Buffer
	err := resolvePages(context.Background(), &out, pages)
	require.Error(t, err)
	assert.True(t, query.IsDataError(err))
	assert.Contains(t, err.Error(), "page 1")
}

func TestReadPages_JSONPath(t *testing.T) {
	dir := t.TempDir()
	file := writeJSON(t, dir, "wrapped.json", `{"data": {"page": {"items": [], "cursor": "next"}}}`)

	pages, err := readPages([]string{file}, "$.data.page")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "next", pages[0].NextCursor)

	_, err = readPages([]string{file}, "$.nope")
	assert.ErrorContains(t, err, "nothing at $.nope")

	_, err = readPages([]string{file}, "$[")
	assert.ErrorContains(t, err, "invalid jsonpath")

	bad := writeJSON(t, dir, "bad.json", `[1, 2]`)
	_, err = readPages([]string{bad}, "")
	assert.ErrorIs(t, err, query.ErrInvalidPage)
}
