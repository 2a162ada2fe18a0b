package tiles

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strconv"

	"github.com/littleearth/osmmap/proj"
)

// DiskCache keeps tiles as zoom/x/y.png files under a root directory and
// falls through to an inner provider on miss. Fetched tiles are written
// back; a failed write is logged and otherwise ignored, the tile is still
// served.
type DiskCache struct {
	dir      string
	provider Provider
}

// NewDiskCache returns a cache rooted at dir in front of provider.
func NewDiskCache(dir string, provider Provider) *DiskCache {
	return &DiskCache{dir: dir, provider: provider}
}

// Path returns the file a tile is stored at.
func (c *DiskCache) Path(tile proj.Tile) string {
	return filepath.Join(c.dir,
		strconv.Itoa(tile.Zoom), strconv.Itoa(tile.X), strconv.Itoa(tile.Y)+".png")
}

// GetTile serves the tile from disk when present, otherwise fetches it from
// the inner provider and stores it.
func (c *DiskCache) GetTile(tile proj.Tile) (image.Image, error) {
	path := c.Path(tile)

	if f, err := os.Open(path); err == nil {
		img, err := png.Decode(f)
		f.Close()
		if err == nil {
			return img, nil
		}
		// Corrupt file: drop it and refetch.
		logger().Warn("corrupt cached tile", "path", path, "error", err)
		os.Remove(path)
	}

	img, err := c.provider.GetTile(tile)
	if err != nil {
		return nil, err
	}

	if err := c.store(path, img); err != nil {
		logger().Warn("tile cache write failed", "path", path, "error", err)
	}
	return img, nil
}

func (c *DiskCache) store(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating tile directory: %w", err)
	}

	// Write to a temp name first so readers never see half a tile.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tile-*")
	if err != nil {
		return fmt.Errorf("creating temp tile: %w", err)
	}
	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encoding tile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp tile: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("renaming temp tile: %w", err)
	}
	return nil
}
