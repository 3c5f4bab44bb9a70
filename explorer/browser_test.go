package explorer

import (
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexballas/xexplorer/entity"
	"github.com/alexballas/xexplorer/internal/config"
)

func fruitDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"apple.txt", "banana.txt", "cherry.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "seeds"), 0o755))
	return dir
}

func newTestBrowser(t *testing.T, dir string) (*Browser, fyne.Window) {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)
	w := a.NewWindow("Test")

	b := NewBrowser(w, config.Default().Explorer, nil)
	w.SetContent(b.Content())
	b.SetLocation(dir)
	b.View().Session().Wait()
	return b, w
}

func TestBrowser_TypeToSearch(t *testing.T) {
	dir := fruitDir(t)
	b, w := newTestBrowser(t, dir)
	require.Equal(t, []string{"seeds", "apple.txt", "banana.txt", "cherry.png"}, names(b.View().Session().Items()))

	w.Canvas().Unfocus()
	b.typedRuneHook('n')
	assert.Equal(t, "n", b.search.Text)
	assert.Equal(t, b.search, w.Canvas().Focused())

	b.View().Session().Wait()
	assert.Equal(t, []string{"seeds", "banana.txt"}, names(b.View().Session().Items()))

	// With the entry focused the entry handles the rune itself.
	b.typedRuneHook('a')
	assert.Equal(t, "n", b.search.Text)

	// Other inputs are left alone.
	other := widget.NewEntry()
	w.SetContent(container.NewVBox(b.Content(), other))
	w.Canvas().Focus(other)
	b.typedRuneHook('x')
	assert.Equal(t, "n", b.search.Text)
}

func TestBrowser_SetLocationClearsSearch(t *testing.T) {
	dir := fruitDir(t)
	b, _ := newTestBrowser(t, dir)

	b.search.SetText("apple")
	b.View().Session().Wait()
	require.Equal(t, []string{"apple.txt"}, names(b.View().Session().Items()))

	b.SetLocation(filepath.Join(dir, "seeds"))
	b.View().Session().Wait()
	assert.Empty(t, b.search.Text)
	assert.Empty(t, b.filter)
	assert.Equal(t, filepath.Join(dir, "seeds"), b.Location())
}

func TestBrowser_EnterOpensSelection(t *testing.T) {
	dir := fruitDir(t)
	b, w := newTestBrowser(t, dir)

	var opened []string
	b.OnOpen = func(item entity.Item) {
		opened = append(opened, entity.DataOf(item).FullName())
	}
	s := b.View().Session()
	s.Selection().SelectIndices([]int{1, 3})

	w.Canvas().Unfocus()
	b.typedKeyHook(&fyne.KeyEvent{Name: fyne.KeyReturn})
	assert.Equal(t, []string{"apple.txt", "cherry.png"}, opened)

	b.typedKeyHook(&fyne.KeyEvent{Name: fyne.KeyEnter})
	assert.Len(t, opened, 4)

	b.typedKeyHook(&fyne.KeyEvent{Name: fyne.KeyEscape})
	assert.Len(t, opened, 4)

	// Return in the search entry does not open.
	w.Canvas().Focus(b.search)
	b.typedKeyHook(&fyne.KeyEvent{Name: fyne.KeyReturn})
	assert.Len(t, opened, 4)
}

func TestBrowser_EnterNavigatesIntoDirectory(t *testing.T) {
	dir := fruitDir(t)
	b, w := newTestBrowser(t, dir)

	b.View().Session().Selection().Select(0)
	w.Canvas().Unfocus()
	b.typedKeyHook(&fyne.KeyEvent{Name: fyne.KeyReturn})
	b.View().Session().Wait()

	assert.Equal(t, filepath.Join(dir, "seeds"), b.Location())
	assert.Empty(t, b.View().Session().Items())
}

func TestBrowser_ChainsCanvasHandlers(t *testing.T) {
	a := test.NewApp()
	t.Cleanup(a.Quit)
	w := a.NewWindow("Test")

	var runes []rune
	var keys []fyne.KeyName
	w.Canvas().SetOnTypedRune(func(r rune) { runes = append(runes, r) })
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) { keys = append(keys, ev.Name) })

	b := NewBrowser(w, config.Default().Explorer, nil)
	w.SetContent(b.Content())

	w.Canvas().OnTypedRune()('q')
	w.Canvas().OnTypedKey()(&fyne.KeyEvent{Name: fyne.KeyF2})
	assert.Equal(t, []rune{'q'}, runes)
	assert.Equal(t, []fyne.KeyName{fyne.KeyF2}, keys)
	assert.Equal(t, "q", b.search.Text)
}
