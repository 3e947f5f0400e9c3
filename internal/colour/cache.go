package colour

import (
	"crypto/md5" // #nosec G501 - cache key, not security sensitive
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// CacheVersion is bumped whenever palette generation changes output.
const CacheVersion = 3

type cacheEntry struct {
	Palette []string `json:"palette"`
	Version int      `json:"version"`
}

// PaletteCache stores extracted palettes keyed by image path, mtime and mode.
type PaletteCache struct {
	dir string
}

// NewPaletteCache creates a cache rooted at dir. An empty dir means
// ~/.cache/kuntatinte/color-cache.
func NewPaletteCache(dir string) *PaletteCache {
	if dir == "" {
		home, err := homedir.Dir()
		if err != nil {
			home = "."
		}
		dir = filepath.Join(home, ".cache", "kuntatinte", "color-cache")
	}
	return &PaletteCache{dir: dir}
}

// Dir returns the cache directory.
func (c *PaletteCache) Dir() string {
	return c.dir
}

// Key derives the cache key for an image in the given mode.
func (c *PaletteCache) Key(imagePath string, light bool) (string, error) {
	info, err := os.Stat(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to stat image: %w", err)
	}
	mode := "dark"
	if light {
		mode = "light"
	}
	sum := md5.Sum(fmt.Appendf(nil, "%s-%d-%s", imagePath, info.ModTime().Unix(), mode)) // #nosec G401
	return hex.EncodeToString(sum[:]), nil
}

// Load returns a cached palette. Entries from older versions or with the
// wrong size count as misses.
func (c *PaletteCache) Load(key string) ([]string, bool) {
	data, err := os.ReadFile(filepath.Join(c.dir, key+".json")) // #nosec G304 - cache file
	if err != nil {
		return nil, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if entry.Version != CacheVersion || len(entry.Palette) != ANSIPaletteSize {
		return nil, false
	}
	return entry.Palette, true
}

// Save writes a palette to the cache.
func (c *PaletteCache) Save(key string, palette []string) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	data, err := json.MarshalIndent(cacheEntry{Palette: palette, Version: CacheVersion}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key+".json"), data, 0o600)
}
