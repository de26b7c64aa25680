package cache

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/tkwok/vidsum/core/internal/logging"
	"github.com/tkwok/vidsum/core/internal/models"
	"github.com/tkwok/vidsum/core/internal/telemetry"
)

// evictionWatermark is the fraction of the cap eviction drains to.
// Draining only to the cap would re-trigger eviction on the very next
// write; the lower watermark amortizes the scan across many writes.
const evictionWatermark = 0.8

// maxDownloadBytes bounds a single thumbnail download.
const maxDownloadBytes = 20 * 1024 * 1024

// ThumbnailCache downloads and persists remote thumbnails to local files,
// one per video, and evicts least-recently-modified files when the
// directory grows past the configured cap.
//
// A file's existence is keyed by video identity alone: once cached, a
// changed remote image at the same URL is never re-fetched.
type ThumbnailCache struct {
	dir      string
	capBytes int64
	maxWidth int
	client   *http.Client
	info     *InfoStore
	rec      *telemetry.Recorder
	log      *logging.Logger
}

// NewThumbnailCache creates a cache rooted at dir with the given size cap.
// maxWidth > 0 downscales oversized thumbnails before storing; 0 stores
// them as downloaded. rec may be nil.
func NewThumbnailCache(dir string, capBytes int64, maxWidth int, info *InfoStore, rec *telemetry.Recorder, log *logging.Logger) (*ThumbnailCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Get()
	}
	return &ThumbnailCache{
		dir:      dir,
		capBytes: capBytes,
		maxWidth: maxWidth,
		client:   &http.Client{Timeout: 30 * time.Second},
		info:     info,
		rec:      rec,
		log:      log,
	}, nil
}

// CacheImage ensures a local file exists for videoID, downloading from url
// on first request. Returns the local path, or "" on any failure; callers
// fall back to the remote URL.
func (c *ThumbnailCache) CacheImage(ctx context.Context, url, videoID string) string {
	path := c.pathFor(videoID)

	if _, err := os.Stat(path); err == nil {
		c.rec.Incr(telemetry.CounterCacheHits)
		return path
	}
	c.rec.Incr(telemetry.CounterCacheMisses)

	data, err := c.download(ctx, url)
	if err != nil {
		c.log.Warn("Thumbnail download failed",
			map[string]interface{}{"video_id": videoID, "url": url, "error": err.Error()})
		return ""
	}

	data, err = c.prepare(data)
	if err != nil {
		c.log.Warn("Thumbnail not a decodable image, not caching",
			map[string]interface{}{"video_id": videoID, "error": err.Error()})
		return ""
	}

	if err := writeFileAtomic(path, data); err != nil {
		c.log.Error("Failed to write thumbnail file", err,
			map[string]interface{}{"video_id": videoID})
		return ""
	}

	size := int64(len(data))
	c.rec.Add(telemetry.CounterBytesDownloaded, size)
	if c.info != nil {
		c.info.Update(ctx, func(info *models.CacheInfo) {
			info.ThumbnailsSize += size
		})
	}

	c.ApplyLRUEvictionIfNeeded(ctx)
	return path
}

// GetCachedImage returns the local path for videoID if a cached file
// exists. No network fallback.
func (c *ThumbnailCache) GetCachedImage(videoID string) string {
	path := c.pathFor(videoID)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// GetCacheSize returns the authoritative cache size by scanning the cache
// directory, and overwrites the bookkeeping estimate with the result.
// This is the only operation that reconciles drift.
func (c *ThumbnailCache) GetCacheSize(ctx context.Context) int64 {
	files, err := c.scan()
	if err != nil {
		c.log.Error("Failed to scan thumbnail cache", err)
		return 0
	}

	var total int64
	for _, f := range files {
		total += f.size
	}

	if c.info != nil {
		c.info.Update(ctx, func(info *models.CacheInfo) {
			info.ThumbnailsSize = total
		})
	}
	return total
}

// ClearImageCache deletes every file in the cache directory and resets
// the bookkeeping. Returns whether the sweep completed without error.
func (c *ThumbnailCache) ClearImageCache(ctx context.Context) bool {
	files, err := c.scan()
	if err != nil {
		c.log.Error("Failed to scan thumbnail cache", err)
		return false
	}

	clean := true
	for _, f := range files {
		if err := os.Remove(f.path); err != nil {
			c.log.Error("Failed to remove thumbnail", err,
				map[string]interface{}{"path": f.path})
			clean = false
		}
	}

	if c.info != nil {
		c.info.Update(ctx, func(info *models.CacheInfo) {
			info.ThumbnailsSize = 0
		})
	}

	c.log.Info("Thumbnail cache cleared",
		map[string]interface{}{"removed": len(files)})
	return clean
}

// ApplyLRUEvictionIfNeeded evicts least-recently-modified files until the
// size estimate falls to the watermark. No-op while the tracked size is
// below the cap. Returns whether at least one file was removed.
//
// Recency is file modification time, not access time: repeated reads do
// not protect a file from eviction.
func (c *ThumbnailCache) ApplyLRUEvictionIfNeeded(ctx context.Context) bool {
	var tracked int64
	if c.info != nil {
		tracked = c.info.Get(ctx).ThumbnailsSize
	} else {
		tracked = c.GetCacheSize(ctx)
	}

	if tracked < c.capBytes {
		return false
	}

	files, err := c.scan()
	if err != nil {
		c.log.Error("Failed to scan thumbnail cache for eviction", err)
		return false
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	watermark := int64(float64(c.capBytes) * evictionWatermark)
	running := tracked
	removed := 0

	for _, f := range files {
		if running <= watermark {
			break
		}
		if err := os.Remove(f.path); err != nil {
			c.log.Error("Failed to evict thumbnail", err,
				map[string]interface{}{"path": f.path})
			continue
		}
		running -= f.size
		removed++
	}

	if c.info != nil {
		c.info.Update(ctx, func(info *models.CacheInfo) {
			info.ThumbnailsSize = running
		})
	}

	if removed > 0 {
		c.rec.Add(telemetry.CounterCacheEvictions, int64(removed))
		c.log.Info("Evicted thumbnails",
			map[string]interface{}{"removed": removed, "remaining_bytes": running})
	}
	return removed > 0
}

// cachedFile is one scanned cache entry.
type cachedFile struct {
	path    string
	size    int64
	modTime time.Time
}

// scan lists every regular file in the cache directory.
func (c *ThumbnailCache) scan() ([]cachedFile, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, err
	}

	var files []cachedFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, cachedFile{
			path:    filepath.Join(c.dir, entry.Name()),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
	}
	return files, nil
}

// download fetches the thumbnail bytes.
func (c *ThumbnailCache) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &httpStatusError{status: resp.StatusCode}
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
}

// prepare validates the downloaded bytes decode as an image and, when a
// max width is configured, downscales oversized thumbnails before storage.
func (c *ThumbnailCache) prepare(data []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if c.maxWidth <= 0 || cfg.Width <= c.maxWidth {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	resized := imaging.Resize(img, c.maxWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pathFor returns the deterministic local path for a video identifier.
func (c *ThumbnailCache) pathFor(videoID string) string {
	return filepath.Join(c.dir, sanitizeID(videoID)+".jpg")
}

// sanitizeID keeps video identifiers filesystem-safe.
func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, id)
}

// writeFileAtomic writes data via a temp file plus rename so a crashed
// download never leaves a truncated cache entry.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".thumb-*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// httpStatusError reports a non-200 thumbnail response.
type httpStatusError struct {
	status int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.status)
}
