package explorer

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2/canvas"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/alexballas/xexplorer/internal/config"
	"github.com/alexballas/xexplorer/internal/logging"
)

type thumbnailRequest struct {
	path     string
	callback func(*canvas.Image)
}

// ThumbnailManager renders square thumbnails of local images and videos on a
// pool of workers. Results are kept in a bounded memory cache and as JPEG
// files in a disk cache.
type ThumbnailManager struct {
	memory     *lru.Cache[string, *canvas.Image]
	requests   []thumbnailRequest
	reqLock    sync.Mutex
	reqCond    *sync.Cond
	closed     bool
	ffmpegPath string
	cacheDir   string
	log        *zap.Logger
	workers    sync.WaitGroup
}

var (
	MaxCacheSize  int64 = 500 * 1024 * 1024 // 500MB
	MaxCacheFiles int   = 10000
)

const (
	thumbnailSize  = 128
	maxPending     = 100
	thumbnailDelay = 200 * time.Millisecond
)

var durationPattern = regexp.MustCompile(`Duration: (\d{2}):(\d{2}):(\d{2})\.(\d{2})`)

// NewThumbnailManager starts cfg.Workers workers. An empty cfg.CacheDir uses
// the user cache directory; if that cannot be created only the memory cache
// is used.
func NewThumbnailManager(cfg config.Thumbnails, log *zap.Logger) (*ThumbnailManager, error) {
	if log == nil {
		log = logging.Named("thumbnails")
	}
	entries := cfg.MemoryEntries
	if entries <= 0 {
		entries = 256
	}
	memory, err := lru.New[string, *canvas.Image](entries)
	if err != nil {
		return nil, fmt.Errorf("thumbnail memory cache: %w", err)
	}

	m := &ThumbnailManager{
		memory:     memory,
		requests:   make([]thumbnailRequest, 0, maxPending),
		ffmpegPath: cfg.FFmpeg,
		log:        log,
	}
	if m.ffmpegPath == "" {
		m.ffmpegPath = "ffmpeg"
	}
	m.reqCond = sync.NewCond(&m.reqLock)

	dir := cfg.CacheDir
	if dir == "" {
		if userCache, err := os.UserCacheDir(); err == nil {
			dir = filepath.Join(userCache, "xexplorer", "thumbnails")
		}
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Warn("thumbnail disk cache disabled", zap.String("dir", dir), zap.Error(err))
		} else {
			m.cacheDir = dir
			go m.cleanupCache()
		}
	}

	workers := max(cfg.Workers, 1)
	m.workers.Add(workers)
	for i := 0; i < workers; i++ {
		go m.worker()
	}
	return m, nil
}

// Close stops the workers. Pending requests are dropped.
func (m *ThumbnailManager) Close() {
	m.reqLock.Lock()
	m.closed = true
	m.requests = nil
	m.reqCond.Broadcast()
	m.reqLock.Unlock()
	m.workers.Wait()
}

func (m *ThumbnailManager) SetFFmpegPath(path string) {
	m.reqLock.Lock()
	m.ffmpegPath = path
	m.reqLock.Unlock()
}

// LoadMemoryOnly returns the thumbnail of path if it is in memory.
func (m *ThumbnailManager) LoadMemoryOnly(path string) *canvas.Image {
	img, _ := m.memory.Get(path)
	return img
}

// Load calls callback with the thumbnail of path, from a worker goroutine
// unless it is cached. Unsupported files never call back.
func (m *ThumbnailManager) Load(path string, callback func(*canvas.Image)) {
	if path == "" || !Thumbnailable(path) {
		return
	}
	if img, ok := m.memory.Get(path); ok {
		callback(img)
		return
	}
	if img := m.loadFromDisk(path); img != nil {
		callback(img)
		return
	}

	m.reqLock.Lock()
	defer m.reqLock.Unlock()
	if m.closed {
		return
	}
	// LIFO: the newest requests are the cells on screen now. Drop the oldest.
	if len(m.requests) >= maxPending {
		m.requests = m.requests[1:]
	}
	m.requests = append(m.requests, thumbnailRequest{path: path, callback: callback})
	m.reqCond.Signal()
}

// Prewarm moves disk cached thumbnails of paths into memory in the background.
func (m *ThumbnailManager) Prewarm(paths []string) {
	if m.cacheDir == "" {
		return
	}
	go func() {
		for _, path := range paths {
			if !Thumbnailable(path) || m.memory.Contains(path) {
				continue
			}
			m.loadFromDisk(path)
			time.Sleep(5 * time.Millisecond)
		}
	}()
}

func (m *ThumbnailManager) loadFromDisk(path string) *canvas.Image {
	if m.cacheDir == "" {
		return nil
	}
	key, err := m.generateCacheKey(path)
	if err != nil {
		return nil
	}
	img, err := loadImage(filepath.Join(m.cacheDir, key+".jpg"))
	if err != nil {
		return nil
	}
	c := newThumbnailImage(img)
	m.memory.Add(path, c)
	return c
}

func (m *ThumbnailManager) worker() {
	defer m.workers.Done()
	for {
		m.reqLock.Lock()
		for len(m.requests) == 0 && !m.closed {
			m.reqCond.Wait()
		}
		if m.closed {
			m.reqLock.Unlock()
			return
		}
		last := len(m.requests) - 1
		req := m.requests[last]
		m.requests = m.requests[:last]
		ffmpeg := m.ffmpegPath
		m.reqLock.Unlock()

		if img, ok := m.memory.Get(req.path); ok {
			req.callback(img)
			continue
		}

		img, err := m.render(req.path, ffmpeg)
		if err != nil {
			m.log.Debug("thumbnail failed", zap.String("path", req.path), zap.Error(err))
			continue
		}

		c := newThumbnailImage(img)
		m.memory.Add(req.path, c)
		m.saveToDisk(req.path, img)
		req.callback(c)
	}
}

func (m *ThumbnailManager) render(path, ffmpeg string) (*image.RGBA, error) {
	var src image.Image
	var err error
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case isSupportedImage(ext):
		src, err = loadImage(path)
	case isSupportedVideo(ext):
		src, err = videoFrame(ffmpeg, path)
	default:
		return nil, fmt.Errorf("unsupported extension %q", ext)
	}
	if err != nil {
		return nil, err
	}
	return letterbox(src, thumbnailSize)
}

// letterbox scales src into a black square of size pixels, keeping its
// aspect ratio.
func letterbox(src image.Image, size int) (*image.RGBA, error) {
	srcBounds := src.Bounds()
	srcW, srcH := srcBounds.Dx(), srcBounds.Dy()
	if srcW == 0 || srcH == 0 {
		return nil, fmt.Errorf("empty image")
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: image.Black}, image.Point{}, draw.Src)

	var scaledW, scaledH int
	ratio := float64(srcW) / float64(srcH)
	if ratio > 1 {
		scaledW = size
		scaledH = int(float64(size) / ratio)
	} else {
		scaledH = size
		scaledW = int(float64(size) * ratio)
	}

	x := (size - scaledW) / 2
	y := (size - scaledH) / 2
	draw.ApproxBiLinear.Scale(dst, image.Rect(x, y, x+scaledW, y+scaledH), src, srcBounds, draw.Over, nil)
	return dst, nil
}

func (m *ThumbnailManager) saveToDisk(path string, img image.Image) {
	if m.cacheDir == "" {
		return
	}
	key, err := m.generateCacheKey(path)
	if err != nil {
		return
	}
	f, err := os.Create(filepath.Join(m.cacheDir, key+".jpg"))
	if err != nil {
		m.log.Debug("thumbnail cache write", zap.Error(err))
		return
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 85}); err != nil {
		m.log.Debug("thumbnail encode", zap.Error(err))
	}
}

func newThumbnailImage(img image.Image) *canvas.Image {
	c := canvas.NewImageFromImage(img)
	c.FillMode = canvas.ImageFillContain
	return c
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// videoFrame grabs the frame in the middle of a video with ffmpeg.
func videoFrame(ffmpeg, path string) (image.Image, error) {
	duration, err := videoDuration(ffmpeg, path)
	if err != nil {
		duration = time.Second
	}

	seek := duration / 2
	seekStr := fmt.Sprintf("%02d:%02d:%02d.%03d",
		int(seek.Hours()),
		int(seek.Minutes())%60,
		int(seek.Seconds())%60,
		seek.Milliseconds()%1000)

	// Seeking before -i is input seeking: fast, accurate enough for a thumbnail.
	cmd := exec.Command(ffmpeg, "-ss", seekStr, "-i", path, "-vframes", "1", "-f", "image2", "-strict", "unofficial", "-")
	applyHiddenWindow(cmd)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg frame of %s: %w", path, err)
	}

	img, _, err := image.Decode(&buf)
	return img, err
}

func videoDuration(ffmpeg, path string) (time.Duration, error) {
	cmd := exec.Command(ffmpeg, "-i", path)
	applyHiddenWindow(cmd)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	// Exits non zero without an output file; the header is still printed.
	_ = cmd.Run()
	return parseDuration(stderr.String())
}

func parseDuration(out string) (time.Duration, error) {
	matches := durationPattern.FindStringSubmatch(out)
	if len(matches) < 5 {
		return 0, fmt.Errorf("could not find duration in output")
	}

	var hours, minutes, seconds, centis int
	fmt.Sscanf(matches[1], "%d", &hours)
	fmt.Sscanf(matches[2], "%d", &minutes)
	fmt.Sscanf(matches[3], "%d", &seconds)
	fmt.Sscanf(matches[4], "%d", &centis)

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(centis*10)*time.Millisecond, nil
}

// Thumbnailable reports whether the manager can render path.
func Thumbnailable(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return isSupportedImage(ext) || isSupportedVideo(ext)
}

func isSupportedImage(ext string) bool {
	return ext == ".jpg" || ext == ".jpeg" || ext == ".png"
}

func isSupportedVideo(ext string) bool {
	return ext == ".mp4" || ext == ".mkv" || ext == ".avi" || ext == ".webm" || ext == ".mov"
}

// generateCacheKey hashes the absolute path, modification time, size and
// first 32KB of the file.
func (m *ThumbnailManager) generateCacheKey(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	h.Write([]byte(absPath))
	h.Write([]byte(info.ModTime().String()))
	fmt.Fprintf(h, "%d", info.Size())

	if f, err := os.Open(absPath); err == nil {
		defer f.Close()
		buf := make([]byte, 32*1024)
		n, _ := f.Read(buf)
		h.Write(buf[:n])
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// cleanupCache evicts the oldest files once the disk cache is over its size
// or file limit, down to 80% of both.
func (m *ThumbnailManager) cleanupCache() {
	if m.cacheDir == "" {
		return
	}

	files, err := os.ReadDir(m.cacheDir)
	if err != nil {
		return
	}

	type fileInfo struct {
		name string
		size int64
		time time.Time
	}

	var cached []fileInfo
	var totalSize int64
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".jpg" {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		cached = append(cached, fileInfo{name: f.Name(), size: info.Size(), time: info.ModTime()})
		totalSize += info.Size()
	}

	if totalSize <= MaxCacheSize && len(cached) <= MaxCacheFiles {
		return
	}

	sort.Slice(cached, func(i, j int) bool {
		return cached[i].time.Before(cached[j].time)
	})

	removed := 0
	for len(cached) > 0 {
		if totalSize <= int64(float64(MaxCacheSize)*0.8) && len(cached) <= int(float64(MaxCacheFiles)*0.8) {
			break
		}
		_ = os.Remove(filepath.Join(m.cacheDir, cached[0].name))
		totalSize -= cached[0].size
		cached = cached[1:]
		removed++
	}
	m.log.Debug("thumbnail cache cleaned", zap.Int("removed", removed), zap.Int64("bytes", totalSize))
}
